package core

import "strings"

// Named identifies a non-character key.
type Named uint16

const (
	NamedUnidentified Named = iota
	NamedAlt
	NamedCapsLock
	NamedControl
	NamedFn
	NamedNumLock
	NamedScrollLock
	NamedShift
	NamedMeta
	NamedHyper
	NamedSuper
	NamedEnter
	NamedTab
	NamedSpace
	NamedArrowDown
	NamedArrowLeft
	NamedArrowRight
	NamedArrowUp
	NamedEnd
	NamedHome
	NamedPageDown
	NamedPageUp
	NamedBackspace
	NamedClear
	NamedDelete
	NamedInsert
	NamedEscape
)

var namedKeys = [...]string{
	"Unidentified", "Alt", "CapsLock", "Control", "Fn", "NumLock", "ScrollLock", "Shift",
	"Meta", "Hyper", "Super", "Enter", "Tab", "Space", "ArrowDown", "ArrowLeft", "ArrowRight",
	"ArrowUp", "End", "Home", "PageDown", "PageUp", "Backspace", "Clear", "Delete", "Insert",
	"Escape",
}

func (n Named) String() string {
	if int(n) < len(namedKeys) {
		return namedKeys[n]
	}
	return "Unidentified"
}

// Key is the logical key of a keyboard event: either a named key or the
// character it produces. The zero value is an unidentified key.
type Key struct {
	Named     Named
	Character string
}

// NamedKey returns a key for n.
func NamedKey(n Named) Key {
	return Key{Named: n}
}

// CharacterKey returns a key producing s.
func CharacterKey(s string) Key {
	return Key{Character: s}
}

// IsCharacter reports whether the key produces text.
func (k Key) IsCharacter() bool {
	return k.Character != ""
}

func (k Key) String() string {
	if k.Character != "" {
		return k.Character
	}
	return k.Named.String()
}

// Code identifies a physical key position.
type Code uint16

const (
	CodeUnidentified Code = iota
	CodeCapsLock
	CodeFn
	CodeNumLock
	CodeScrollLock
	CodeMeta
	CodeHyper
	CodeEnter
	CodeTab
	CodeSpace
	CodeArrowDown
	CodeArrowLeft
	CodeArrowRight
	CodeArrowUp
	CodeEnd
	CodeHome
	CodePageDown
	CodePageUp
	CodeBackspace
	CodeDelete
	CodeInsert
	CodeEscape
)

// Physical is the physical key of a keyboard event. When Code is
// CodeUnidentified, Native carries the raw platform scan code.
type Physical struct {
	Code   Code
	Native uint32
}

// Location distinguishes keys that appear more than once on a keyboard.
type Location uint8

const (
	LocationStandard Location = iota
	LocationLeft
	LocationRight
	LocationNumpad
)

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModLogo
)

func (m Modifiers) Shift() bool   { return m&ModShift != 0 }
func (m Modifiers) Control() bool { return m&ModCtrl != 0 }
func (m Modifiers) Alt() bool     { return m&ModAlt != 0 }
func (m Modifiers) Logo() bool    { return m&ModLogo != 0 }

func (m Modifiers) String() string {
	var parts []string
	if m.Control() {
		parts = append(parts, "ctrl")
	}
	if m.Alt() {
		parts = append(parts, "alt")
	}
	if m.Shift() {
		parts = append(parts, "shift")
	}
	if m.Logo() {
		parts = append(parts, "logo")
	}
	return strings.Join(parts, "+")
}
