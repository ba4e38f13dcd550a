package shell

import (
	"errors"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/graphics"
	"github.com/jakebf/layershell/internal/logx"
	"github.com/jakebf/layershell/platform"
	"github.com/jakebf/layershell/runtime"
)

// onFrame draws and presents a window once the compositor is ready for its
// next frame. The window's redraw state is back to Wait when this returns
// unless the draw itself asked for another frame.
func (s *State) onFrame(surface platform.SurfaceID) {
	if s.compositor == nil {
		return
	}
	w, ok := s.windows.GetByAlias(surface)
	if !ok {
		return
	}
	w.redrawAt = core.Wait

	physical := w.state.physicalSize()
	if physical.IsEmpty() {
		return
	}
	ui, ok := s.wrapper.ui(w.id)
	if !ok {
		return
	}

	if w.viewportVersion != w.state.viewportVersion {
		ui = ui.Relayout(w.state.logicalSize(), w.renderer)
		s.wrapper.set(w.id, ui)
		s.compositor.ConfigureSurface(w.surface, physical.Width, physical.Height)
		w.viewportVersion = w.state.viewportVersion
	}

	redraw := core.RedrawRequested{At: s.clock.Now()}
	cursor := w.state.cursor()
	state, _ := ui.Update([]core.Event{redraw}, cursor, w.renderer, s.clipboard, &s.messages)
	ui.Draw(w.renderer, w.state.theme, w.state.style, cursor)
	s.runtime.Broadcast(runtime.Interaction{Window: w.id, Event: redraw, Status: core.StatusIgnored})

	if state.Outdated {
		s.stale = true
	} else {
		w.requestRedraw(state.RedrawRequest)
		w.requestInputMethod(state.InputMethod)
		w.updateMouse(state.MouseInteraction)
	}

	w.drawPreedit()

	err := s.compositor.Present(w.renderer, w.surface, w.state.viewport, w.state.style.BackgroundColor)
	switch {
	case err == nil:
	case errors.Is(err, graphics.ErrOutOfMemory):
		logx.WithWindow(s.log, w.id).Error("shell present out of memory", "err", err)
		panic(err)
	default:
		if _, ok := s.presentLimiter.Allow(w.id); ok {
			logx.WithWindow(s.log, w.id).Error("shell present failed", "err", err)
		}
		s.windows.Each(func(_ core.WindowID, other *Window) {
			other.requestRedraw(core.NextFrame)
		})
	}
}
