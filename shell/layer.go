package shell

import (
	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/internal/logx"
	"github.com/jakebf/layershell/platform"
	"github.com/jakebf/layershell/runtime"
)

// handlePlatform translates one protocol event into window state changes
// and buffered events.
func (s *State) handlePlatform(ev platform.Event) {
	switch ev := ev.(type) {
	case platform.LayerConfigure:
		s.onConfigure(ev.Surface, core.PhysicalSize{Width: ev.Width, Height: ev.Height})
	case platform.LayerClosed:
		s.onLayerClosed(ev.Surface)
	case platform.Frame:
		s.onFrame(ev.Surface)
	case platform.ScaleChanged:
		s.onScaleChanged(ev.Surface, ev.Factor)

	case platform.CapabilityAdded:
		s.onCapabilityAdded(ev)
	case platform.CapabilityRemoved:
		s.onCapabilityRemoved(ev)

	case platform.KeyboardEnter:
		s.onKeyboardEnter(ev.Keyboard, ev.Surface)
	case platform.KeyboardLeave:
		s.onKeyboardLeave(ev.Keyboard, ev.Surface)
	case platform.Key:
		s.onKey(ev)
	case platform.Modifiers:
		s.onModifiers(ev.Keyboard, ev.Modifiers)

	case platform.PointerFrame:
		s.onPointerFrame(ev.Pointer, ev.Events)

	case platform.TouchDown:
		s.onTouchDown(ev)
	case platform.TouchUp:
		s.onTouchUp(ev.Touch, ev.ID)
	case platform.TouchMotion:
		s.onTouchMotion(ev)
	case platform.TouchCancel:
		s.onTouchCancel(ev.Touch)

	case platform.OutputAdded:
		s.runtime.Broadcast(runtime.OutputAdded{Name: ev.Name})
	case platform.OutputRemoved:
		s.runtime.Broadcast(runtime.OutputRemoved{Name: ev.Name})

	default:
		s.log.Trace("shell platform event ignored", "type", ev)
	}
}

// onConfigure either completes an open handshake or resizes a live window.
func (s *State) onConfigure(surface platform.SurfaceID, size core.PhysicalSize) {
	pending, ok := s.inProgress[surface]
	if !ok {
		w, ok := s.windows.GetByAlias(surface)
		if !ok {
			return
		}
		w.state.resize(size)
		w.requestRedraw(core.NextFrame)
		s.pushEvent(w.id, core.WindowResized{Size: w.state.logicalSize()})
		return
	}
	delete(s.inProgress, surface)
	log := logx.WithSurface(s.log, pending.id, surface)

	if s.compositor == nil {
		if err := s.createCompositor(surface); err != nil {
			log.Error("shell compositor creation failed", "err", err)
			pending.cancel()
			s.exit(&Error{Kind: GraphicsCreationFailed, Err: err})
			return
		}
	}

	w, err := s.windows.Insert(pending.id, surface, size, s.wrapper.program, s.compositor)
	if err != nil {
		log.Warn("shell window creation failed", "err", err)
		pending.cancel()
		s.conn.DestroySurface(surface)
		if s.windows.IsEmpty() && !s.daemon && len(s.inProgress) == 0 {
			s.exit(nil)
		}
		return
	}
	s.wrapper.insert(w)

	log.Info("shell window opened", "width", size.Width, "height", size.Height)
	s.pushEvent(w.id, core.LayerOpened{Size: w.Size()})
	pending.complete()
	w.requestRedraw(core.NextFrame)
}

// onLayerClosed handles a compositor-initiated close.
func (s *State) onLayerClosed(surface platform.SurfaceID) {
	if w, ok := s.windows.GetByAlias(surface); ok {
		s.closeWindow(w.id)
		return
	}
	if pending, ok := s.inProgress[surface]; ok {
		s.closeWindow(pending.id)
	}
}

// onScaleChanged applies a new preferred buffer scale.
func (s *State) onScaleChanged(surface platform.SurfaceID, factor float64) {
	w, ok := s.windows.GetByAlias(surface)
	if !ok || factor <= 0 || factor == w.state.windowScaleFactor {
		return
	}
	w.state.rescale(factor)
	w.requestRedraw(core.NextFrame)
	s.pushEvent(w.id, core.WindowResized{Size: w.state.logicalSize()})
}
