package shell

import (
	"maps"
	"slices"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/platform"
)

func (s *State) onCapabilityAdded(ev platform.CapabilityAdded) {
	switch ev.Capability {
	case platform.CapabilityKeyboard:
		s.keyboards[ev.Seat] = ev.Device
	case platform.CapabilityPointer:
		s.pointers[ev.Seat] = ev.Device
	case platform.CapabilityTouch:
		s.touchDevices[ev.Seat] = ev.Device
	}
	s.log.Debug("shell capability added", "seat", uint64(ev.Seat), "capability", ev.Capability.String())
}

func (s *State) onCapabilityRemoved(ev platform.CapabilityRemoved) {
	switch ev.Capability {
	case platform.CapabilityKeyboard:
		keyboard, ok := s.keyboards[ev.Seat]
		if !ok {
			return
		}
		delete(s.keyboards, ev.Seat)
		id, ok := s.keyboardFocus[keyboard]
		if !ok {
			return
		}
		delete(s.keyboardFocus, keyboard)
		if w, ok := s.windows.Get(id); ok {
			s.unfocus(w)
		}
	case platform.CapabilityPointer:
		pointer, ok := s.pointers[ev.Seat]
		if !ok {
			return
		}
		delete(s.pointers, ev.Seat)
		s.windows.Each(func(_ core.WindowID, w *Window) {
			delete(w.pointers, pointer)
		})
	case platform.CapabilityTouch:
		touch, ok := s.touchDevices[ev.Seat]
		if !ok {
			return
		}
		delete(s.touchDevices, ev.Seat)
		s.onTouchCancel(touch)
	}
	s.log.Debug("shell capability removed", "seat", uint64(ev.Seat), "capability", ev.Capability.String())
}

// unfocus clears the window's modifiers and tells it focus is gone.
func (s *State) unfocus(w *Window) {
	w.state.modifiers = 0
	s.pushEvent(w.id, core.ModifiersChanged{})
	s.pushEvent(w.id, core.WindowUnfocused{})
}

func (s *State) onKeyboardEnter(keyboard platform.DeviceID, surface platform.SurfaceID) {
	w, ok := s.windows.GetByAlias(surface)
	if !ok {
		return
	}
	s.keyboardFocus[keyboard] = w.id
	s.pushEvent(w.id, core.WindowFocused{})
}

func (s *State) onKeyboardLeave(keyboard platform.DeviceID, surface platform.SurfaceID) {
	delete(s.keyboardFocus, keyboard)
	if w, ok := s.windows.GetByAlias(surface); ok {
		s.unfocus(w)
	}
}

// focused resolves the window a keyboard is focused on.
func (s *State) focused(keyboard platform.DeviceID) (*Window, bool) {
	id, ok := s.keyboardFocus[keyboard]
	if !ok {
		return nil, false
	}
	return s.windows.Get(id)
}

func (s *State) onKey(ev platform.Key) {
	w, ok := s.focused(ev.Keyboard)
	if !ok {
		return
	}
	key := convertKey(ev.Sym)
	physical := convertPhysical(ev.Sym, ev.RawCode)
	location := convertLocation(ev.Sym)
	if ev.Pressed {
		s.pushEvent(w.id, core.KeyPressed{
			Key:         key,
			ModifiedKey: key,
			PhysicalKey: physical,
			Location:    location,
			Modifiers:   w.state.modifiers,
			Text:        ev.Text,
		})
		return
	}
	s.pushEvent(w.id, core.KeyReleased{
		Key:         key,
		ModifiedKey: key,
		PhysicalKey: physical,
		Location:    location,
		Modifiers:   w.state.modifiers,
	})
}

func (s *State) onModifiers(keyboard platform.DeviceID, state platform.ModifierState) {
	w, ok := s.focused(keyboard)
	if !ok {
		return
	}
	w.state.modifiers = convertModifiers(state)
	s.pushEvent(w.id, core.ModifiersChanged{Modifiers: w.state.modifiers})
}

// onPointerFrame dispatches every event of a pointer frame to the window
// under it. Motion is reported in logical coordinates.
func (s *State) onPointerFrame(pointer platform.DeviceID, events []platform.PointerEvent) {
	for _, ev := range events {
		w, ok := s.windows.GetByAlias(ev.Surface)
		if !ok {
			continue
		}
		position := core.Point{X: float32(ev.X), Y: float32(ev.Y)}
		switch ev.Kind {
		case platform.PointerEnter:
			w.pointers[pointer] = struct{}{}
			w.state.updateCursor(&position)
			s.pushEvent(w.id, core.CursorEntered{})
		case platform.PointerMotion:
			w.state.updateCursor(&position)
			scale := float32(w.state.scaleFactor)
			s.pushEvent(w.id, core.CursorMoved{Position: core.Point{X: position.X / scale, Y: position.Y / scale}})
		case platform.PointerPress:
			s.pushEvent(w.id, core.ButtonPressed{Button: convertButton(ev.Button)})
		case platform.PointerRelease:
			s.pushEvent(w.id, core.ButtonReleased{Button: convertButton(ev.Button)})
		case platform.PointerAxis:
			s.pushEvent(w.id, core.WheelScrolled{Delta: core.ScrollDelta{
				Unit: core.ScrollPixels,
				X:    float32(ev.Horizontal),
				Y:    float32(ev.Vertical),
			}})
		case platform.PointerLeave:
			delete(w.pointers, pointer)
			w.state.updateCursor(nil)
			s.pushEvent(w.id, core.CursorLeft{})
		}
	}
}

func (s *State) onTouchDown(ev platform.TouchDown) {
	w, ok := s.windows.GetByAlias(ev.Surface)
	if !ok {
		return
	}
	position := core.Point{X: float32(ev.X), Y: float32(ev.Y)}
	contacts, ok := s.touches[ev.Touch]
	if !ok {
		contacts = make(map[int32]touchContact)
		s.touches[ev.Touch] = contacts
	}
	contacts[ev.ID] = touchContact{window: w.id, position: position}
	w.state.updateCursor(&position)
	s.pushEvent(w.id, core.FingerPressed{ID: core.Finger(ev.ID), Position: position})
}

func (s *State) onTouchUp(touch platform.DeviceID, id int32) {
	contact, ok := s.touches[touch][id]
	if !ok {
		return
	}
	delete(s.touches[touch], id)
	s.pushEvent(contact.window, core.FingerLifted{ID: core.Finger(id), Position: contact.position})
}

func (s *State) onTouchMotion(ev platform.TouchMotion) {
	contacts := s.touches[ev.Touch]
	contact, ok := contacts[ev.ID]
	if !ok {
		return
	}
	w, ok := s.windows.Get(contact.window)
	if !ok {
		return
	}
	contact.position = core.Point{X: float32(ev.X), Y: float32(ev.Y)}
	contacts[ev.ID] = contact
	w.state.updateCursor(&contact.position)
	s.pushEvent(w.id, core.FingerMoved{ID: core.Finger(ev.ID), Position: contact.position})
}

// onTouchCancel reports every active contact of touch as lost, in contact
// id order.
func (s *State) onTouchCancel(touch platform.DeviceID) {
	contacts, ok := s.touches[touch]
	if !ok {
		return
	}
	delete(s.touches, touch)
	for _, id := range slices.Sorted(maps.Keys(contacts)) {
		c := contacts[id]
		s.pushEvent(c.window, core.FingerLost{ID: core.Finger(id), Position: c.position})
	}
}
