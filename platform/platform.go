// Package platform is the boundary to the windowing-protocol transport. A
// Connection delivers raw protocol events and accepts the handful of requests
// the shell makes of the compositor; framing and handshakes live behind it.
package platform

import "github.com/jakebf/layershell/core"

// SurfaceID is the native handle of a surface. It is what protocol events
// refer to and what the window manager aliases to a window id.
type SurfaceID uint64

// SeatID identifies a seat (a group of input devices).
type SeatID uint64

// DeviceID identifies a keyboard, pointer or touch device.
type DeviceID uint64

// Capability is a kind of input device a seat can expose.
type Capability uint8

const (
	CapabilityKeyboard Capability = iota
	CapabilityPointer
	CapabilityTouch
)

func (c Capability) String() string {
	switch c {
	case CapabilityKeyboard:
		return "keyboard"
	case CapabilityPointer:
		return "pointer"
	case CapabilityTouch:
		return "touch"
	}
	return "unknown"
}

// TextInputState configures the platform input method for a surface. A nil
// state disables it.
type TextInputState struct {
	Position core.Point
	Purpose  core.Purpose
}

// Connection is a live connection to the compositor.
type Connection interface {
	// Events returns the protocol event queue. It is closed when the
	// connection goes away.
	Events() <-chan Event
	// CreateLayerSurface issues an open request. The surface becomes usable
	// once a LayerConfigure event for it arrives.
	CreateLayerSurface(settings core.LayerSettings) (SurfaceID, error)
	DestroySurface(surface SurfaceID)
	// RequestFrame asks to be notified with a Frame event before the next
	// frame of surface is shown.
	RequestFrame(surface SurfaceID)
	Commit(surface SurfaceID)
	SetCursor(pointer DeviceID, icon core.Interaction)
	SetInputMethod(surface SurfaceID, state *TextInputState)
	Close() error
}
