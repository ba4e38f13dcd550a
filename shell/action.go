package shell

import (
	"context"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/graphics"
	"github.com/jakebf/layershell/internal/logx"
	"github.com/jakebf/layershell/runtime/action"
	"github.com/jakebf/layershell/system"
)

// runAction applies one action on the reactor goroutine. Nothing here
// blocks: replies go to buffered channels and information queries run on
// the executor. Actions drained after an exit are dropped.
func (s *State) runAction(a action.Action) {
	if s.exiting {
		s.log.Trace("shell action after exit dropped", "type", a)
		return
	}
	switch a := a.(type) {
	case action.Output:
		s.messages = append(s.messages, a.Message)

	case action.ClipboardRead:
		contents, ok := s.clipboard.Read(a.Kind)
		reply(a.Reply, core.ClipboardContents{Contents: contents, OK: ok})
	case action.ClipboardWrite:
		s.clipboard.Write(a.Kind, a.Contents)

	case action.WindowGetSize:
		w, ok := s.windows.Get(a.ID)
		if !ok {
			closeReply(a.Reply)
			return
		}
		reply(a.Reply, w.Size())
	case action.WindowGetScaleFactor:
		w, ok := s.windows.Get(a.ID)
		if !ok {
			closeReply(a.Reply)
			return
		}
		reply(a.Reply, w.ScaleFactor())
	case action.WindowGetLatest:
		w, ok := s.windows.Last()
		if !ok {
			closeReply(a.Reply)
			return
		}
		reply(a.Reply, w.id)

	case action.Open:
		s.openLayer(a.ID, a.Settings, a.Done)
	case action.Close:
		s.closeWindow(a.ID)

	case action.QueryInformation:
		var info graphics.Information
		if s.compositor != nil {
			info = s.compositor.FetchInformation()
		}
		s.runtime.Spawn(func(context.Context) { reply(a.Reply, system.Gather(info)) })

	case action.Widget:
		s.operate(a.Operation)

	case action.LoadFont:
		if s.compositor == nil {
			s.pendingFonts = append(s.pendingFonts, a)
			return
		}
		reply(a.Reply, s.compositor.LoadFont(a.Bytes))

	case action.Reload:
		s.log.Debug("shell reload", "windows", s.windows.Len())
		s.wrapper.reload(s.windows)

	case action.Exit:
		s.log.Debug("shell exit requested")
		s.exit(nil)

	default:
		s.log.Warn("shell unknown action", "type", a)
	}
}

func reply[T any](ch chan<- T, v T) {
	if ch == nil {
		return
	}
	select {
	case ch <- v:
	default:
	}
}

func closeReply[T any](ch chan<- T) {
	if ch != nil {
		close(ch)
	}
}

// operate applies op to every window's tree in id order, following chained
// operations within the same pass.
func (s *State) operate(op core.Operation) {
	for op != nil {
		s.windows.Each(func(id core.WindowID, w *Window) {
			if ui, ok := s.wrapper.ui(id); ok {
				ui.Operate(w.renderer, op)
			}
		})
		outcome := op.Finish()
		if outcome.Kind != core.OutcomeChain {
			return
		}
		op = outcome.Next
	}
}

// openLayer asks the platform for a layer surface. The window is created
// when the surface is first configured.
func (s *State) openLayer(id core.WindowID, settings core.LayerSettings, done chan<- core.WindowID) {
	if s.isOpening(id) {
		logx.WithWindow(s.log, id).Warn("shell open ignored", "err", ErrWindowExists)
		(&inProgressWindow{id: id, done: done}).cancel()
		return
	}
	surface, err := s.conn.CreateLayerSurface(settings)
	pending := &inProgressWindow{id: id, surface: surface, settings: settings, done: done}
	if err != nil {
		logx.WithWindow(s.log, id).Warn("shell open failed", "err", err)
		pending.cancel()
		return
	}
	logx.WithSurface(s.log, id, surface).Debug("shell open requested", "layer", settings.Layer.String(), "namespace", settings.Namespace)
	s.inProgress[surface] = pending
}

// isOpening reports whether id is open or waiting for its first configure.
func (s *State) isOpening(id core.WindowID) bool {
	if _, ok := s.windows.Get(id); ok {
		return true
	}
	for _, pending := range s.inProgress {
		if pending.id == id {
			return true
		}
	}
	return false
}

// closeWindow closes id, or cancels its open if the surface was never
// configured. Outside daemon mode, closing the last window exits.
func (s *State) closeWindow(id core.WindowID) {
	for surface, pending := range s.inProgress {
		if pending.id == id {
			delete(s.inProgress, surface)
			s.conn.DestroySurface(surface)
			pending.cancel()
		}
	}

	if _, ok := s.windows.Get(id); ok {
		s.wrapper.remove(id)
	}
	if w, ok := s.windows.Remove(id); ok {
		logx.WithSurface(s.log, id, w.surfaceID).Debug("shell window closed")
		s.conn.DestroySurface(w.surfaceID)
		s.pushEvent(id, core.WindowClosed{})
		s.forgetWindow(id)
	}

	if s.windows.IsEmpty() {
		s.compositor = nil
		if !s.daemon && len(s.inProgress) == 0 {
			s.exit(nil)
		}
	}
}

// forgetWindow drops keyboard focus and touch contacts that point at id.
func (s *State) forgetWindow(id core.WindowID) {
	for kb, focused := range s.keyboardFocus {
		if focused == id {
			delete(s.keyboardFocus, kb)
		}
	}
	for _, contacts := range s.touches {
		for touchID, c := range contacts {
			if c.window == id {
				delete(contacts, touchID)
			}
		}
	}
}
