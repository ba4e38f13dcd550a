package core

import "time"

// Event is an input or lifecycle event addressed to a window.
//
// The concrete types below form a closed set: window, keyboard, mouse, touch
// and layer events.
type Event interface {
	isEvent()
}

// ─── Window ──────────────────────────────────────────────────────────────────

type WindowFocused struct{}

type WindowUnfocused struct{}

// WindowResized carries the new logical size.
type WindowResized struct {
	Size Size
}

type WindowClosed struct{}

// RedrawRequested is issued into the UI tree right before it is drawn.
type RedrawRequested struct {
	At time.Time
}

// LayerOpened is the first event a layer window receives.
type LayerOpened struct {
	Size Size
}

// ─── Keyboard ────────────────────────────────────────────────────────────────

type KeyPressed struct {
	Key         Key
	ModifiedKey Key
	PhysicalKey Physical
	Location    Location
	Modifiers   Modifiers
	Text        string
}

type KeyReleased struct {
	Key         Key
	ModifiedKey Key
	PhysicalKey Physical
	Location    Location
	Modifiers   Modifiers
}

type ModifiersChanged struct {
	Modifiers Modifiers
}

// ─── Mouse ───────────────────────────────────────────────────────────────────

type CursorEntered struct{}

type CursorMoved struct {
	Position Point
}

type CursorLeft struct{}

type ButtonPressed struct {
	Button Button
}

type ButtonReleased struct {
	Button Button
}

type WheelScrolled struct {
	Delta ScrollDelta
}

// ─── Touch ───────────────────────────────────────────────────────────────────

type FingerPressed struct {
	ID       Finger
	Position Point
}

type FingerMoved struct {
	ID       Finger
	Position Point
}

type FingerLifted struct {
	ID       Finger
	Position Point
}

type FingerLost struct {
	ID       Finger
	Position Point
}

func (WindowFocused) isEvent()    {}
func (WindowUnfocused) isEvent()  {}
func (WindowResized) isEvent()    {}
func (WindowClosed) isEvent()     {}
func (RedrawRequested) isEvent()  {}
func (LayerOpened) isEvent()      {}
func (KeyPressed) isEvent()       {}
func (KeyReleased) isEvent()      {}
func (ModifiersChanged) isEvent() {}
func (CursorEntered) isEvent()    {}
func (CursorMoved) isEvent()      {}
func (CursorLeft) isEvent()       {}
func (ButtonPressed) isEvent()    {}
func (ButtonReleased) isEvent()   {}
func (WheelScrolled) isEvent()    {}
func (FingerPressed) isEvent()    {}
func (FingerMoved) isEvent()      {}
func (FingerLifted) isEvent()     {}
func (FingerLost) isEvent()       {}
