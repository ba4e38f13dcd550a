package shell

import (
	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/program"
	"github.com/jakebf/layershell/runtime"
)

// aboutToWait is the idle pass run after every loop iteration. It feeds each
// window's buffered events to its UI tree, then, if messages were produced
// or a tree is outdated, commits them to the program and rebuilds every
// tree.
func (s *State) aboutToWait() {
	if len(s.events) == 0 && len(s.messages) == 0 && !s.stale && s.windows.IsIdle() {
		return
	}

	stale := s.stale
	s.stale = false

	s.windows.Each(func(id core.WindowID, w *Window) {
		batch := s.takeEvents(id)
		if len(batch) == 0 && len(s.messages) == 0 {
			return
		}
		ui, ok := s.wrapper.ui(id)
		if !ok {
			return
		}

		state, statuses := ui.Update(batch, w.state.cursor(), w.renderer, s.clipboard, &s.messages)
		if state.Outdated {
			stale = true
		} else {
			w.updateMouse(state.MouseInteraction)
			w.requestRedraw(state.RedrawRequest)
			w.requestInputMethod(state.InputMethod)
		}

		for i, ev := range batch {
			status := core.StatusIgnored
			if i < len(statuses) {
				status = statuses[i]
			}
			s.runtime.Broadcast(runtime.Interaction{Window: id, Event: ev, Status: status})
		}
	})

	// Whatever is left is addressed to windows that are gone.
	for _, e := range s.events {
		s.runtime.Broadcast(runtime.Interaction{Window: e.window, Event: e.event, Status: core.StatusIgnored})
	}
	s.events = s.events[:0]

	if len(s.messages) > 0 || stale {
		s.commit()
	}

	s.scheduleWakeIfNeeded()
}

// takeEvents removes and returns the buffered events of id in arrival order.
func (s *State) takeEvents(id core.WindowID) []core.Event {
	var batch []core.Event
	kept := s.events[:0]
	for _, e := range s.events {
		if e.window == id {
			batch = append(batch, e.event)
			continue
		}
		kept = append(kept, e)
	}
	clear(s.events[len(kept):])
	s.events = kept
	return batch
}

// commit drains the pending messages through the program, reinstalls its
// subscription and synchronizes every window with the new program state.
func (s *State) commit() {
	messages := s.messages
	s.messages = nil
	s.log.Trace("shell commit", "messages", len(messages))

	s.wrapper.commit(s.windows, func(p program.Program) {
		for _, msg := range messages {
			s.runtime.Run(p.Update(msg))
		}
		s.runtime.Track(p.Subscription())

		s.windows.Each(func(id core.WindowID, w *Window) {
			w.state.synchronize(p, id)
			w.requestRedraw(core.NextFrame)
		})
	})
}
