package core

// Purpose hints what kind of text an input method is editing.
type Purpose uint8

const (
	PurposeNormal Purpose = iota
	PurposeSecure
	PurposeTerminal
)

// Preedit is uncommitted input-method text. Selection, when set, is a byte
// range into Content.
type Preedit struct {
	Content   string
	Selection *[2]int
	// TextSize overrides the renderer's default size when non-zero.
	TextSize float32
}

// InputMethod is what a UI tree asks of the platform input method after an
// update. The zero value disables it.
type InputMethod struct {
	Enabled  bool
	Position Point
	Purpose  Purpose
	Preedit  *Preedit
}

// InputMethodDisabled is the zero request.
var InputMethodDisabled = InputMethod{}

// EnableInputMethod requests an input method at position.
func EnableInputMethod(position Point, purpose Purpose, preedit *Preedit) InputMethod {
	return InputMethod{Enabled: true, Position: position, Purpose: purpose, Preedit: preedit}
}
