package core

// ButtonKind names a mouse button.
type ButtonKind uint8

const (
	ButtonLeft ButtonKind = iota
	ButtonRight
	ButtonMiddle
	ButtonBack
	ButtonForward
	ButtonOther
)

// Button is a mouse button. Code is only meaningful for ButtonOther.
type Button struct {
	Kind ButtonKind
	Code uint16
}

// ScrollUnit is the unit of a ScrollDelta.
type ScrollUnit uint8

const (
	ScrollLines ScrollUnit = iota
	ScrollPixels
)

// ScrollDelta is the amount scrolled by a wheel or touchpad.
type ScrollDelta struct {
	Unit ScrollUnit
	X, Y float32
}

// Interaction is the mouse cursor a UI tree asks for.
type Interaction uint8

const (
	InteractionNone Interaction = iota
	InteractionIdle
	InteractionPointer
	InteractionGrab
	InteractionText
	InteractionCrosshair
	InteractionWorking
	InteractionGrabbing
	InteractionResizingHorizontally
	InteractionResizingVertically
	InteractionNotAllowed
	InteractionZoomIn
	InteractionHidden
)

// Cursor is the mouse position as seen by a UI tree.
type Cursor struct {
	Available bool
	Position  Point
}

// CursorAt returns an available cursor at p.
func CursorAt(p Point) Cursor {
	return Cursor{Available: true, Position: p}
}

// Finger identifies a touch contact.
type Finger uint64
