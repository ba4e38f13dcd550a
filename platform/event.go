package platform

// Event is a raw protocol event.
type Event interface {
	isPlatformEvent()
}

// LayerConfigure is sent when the compositor assigns a size to a layer
// surface. The first one completes the open handshake.
type LayerConfigure struct {
	Surface       SurfaceID
	Width, Height uint32
}

// LayerClosed is sent when the compositor closes a layer surface.
type LayerClosed struct {
	Surface SurfaceID
}

// Frame is the answer to Connection.RequestFrame: the surface may draw now.
type Frame struct {
	Surface SurfaceID
	Time    uint32
}

// ScaleChanged reports a new preferred buffer scale for a surface.
type ScaleChanged struct {
	Surface SurfaceID
	Factor  float64
}

type CapabilityAdded struct {
	Seat       SeatID
	Capability Capability
	Device     DeviceID
}

type CapabilityRemoved struct {
	Seat       SeatID
	Capability Capability
}

type KeyboardEnter struct {
	Keyboard DeviceID
	Surface  SurfaceID
}

type KeyboardLeave struct {
	Keyboard DeviceID
	Surface  SurfaceID
}

// Key is a key press or release on a focused keyboard.
type Key struct {
	Keyboard DeviceID
	Pressed  bool
	Sym      Keysym
	RawCode  uint32
	// Text is the UTF-8 text the key produced, if any.
	Text string
}

// ModifierState is the raw modifier state of a keyboard.
type ModifierState struct {
	Shift, Ctrl, Alt, Logo bool
}

type Modifiers struct {
	Keyboard  DeviceID
	Modifiers ModifierState
}

// PointerKind is the kind of a PointerEvent.
type PointerKind uint8

const (
	PointerEnter PointerKind = iota
	PointerLeave
	PointerMotion
	PointerPress
	PointerRelease
	PointerAxis
)

// PointerEvent is one entry of a pointer frame. Button is an evdev button
// code; Horizontal and Vertical are absolute axis values.
type PointerEvent struct {
	Surface    SurfaceID
	X, Y       float64
	Kind       PointerKind
	Button     uint32
	Horizontal float64
	Vertical   float64
}

// PointerFrame groups pointer events that belong together.
type PointerFrame struct {
	Pointer DeviceID
	Events  []PointerEvent
}

type TouchDown struct {
	Touch   DeviceID
	Surface SurfaceID
	ID      int32
	X, Y    float64
}

type TouchUp struct {
	Touch DeviceID
	ID    int32
}

type TouchMotion struct {
	Touch DeviceID
	ID    int32
	X, Y  float64
}

// TouchCancel reports that every active contact of Touch was lost.
type TouchCancel struct {
	Touch DeviceID
}

type OutputAdded struct {
	Name string
}

type OutputRemoved struct {
	Name string
}

func (LayerConfigure) isPlatformEvent()    {}
func (LayerClosed) isPlatformEvent()       {}
func (Frame) isPlatformEvent()             {}
func (ScaleChanged) isPlatformEvent()      {}
func (CapabilityAdded) isPlatformEvent()   {}
func (CapabilityRemoved) isPlatformEvent() {}
func (KeyboardEnter) isPlatformEvent()     {}
func (KeyboardLeave) isPlatformEvent()     {}
func (Key) isPlatformEvent()               {}
func (Modifiers) isPlatformEvent()         {}
func (PointerFrame) isPlatformEvent()      {}
func (TouchDown) isPlatformEvent()         {}
func (TouchUp) isPlatformEvent()           {}
func (TouchMotion) isPlatformEvent()       {}
func (TouchCancel) isPlatformEvent()       {}
func (OutputAdded) isPlatformEvent()       {}
func (OutputRemoved) isPlatformEvent()     {}
