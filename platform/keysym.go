package platform

// Keysym is an XKB keysym.
type Keysym uint32

// The subset of XKB keysyms the shell names explicitly.
const (
	KeyBackSpace  Keysym = 0xff08
	KeyTab        Keysym = 0xff09
	KeyClear      Keysym = 0xff0b
	KeyReturn     Keysym = 0xff0d
	KeyScrollLock Keysym = 0xff14
	KeyEscape     Keysym = 0xff1b
	KeyHome       Keysym = 0xff50
	KeyLeft       Keysym = 0xff51
	KeyUp         Keysym = 0xff52
	KeyRight      Keysym = 0xff53
	KeyDown       Keysym = 0xff54
	KeyPageUp     Keysym = 0xff55
	KeyPageDown   Keysym = 0xff56
	KeyEnd        Keysym = 0xff57
	KeyInsert     Keysym = 0xff63
	KeyNumLock    Keysym = 0xff7f
	KeyKPSpace    Keysym = 0xff80
	KeyKPEnter    Keysym = 0xff8d
	KeyKPEqual    Keysym = 0xffbd
	KeyShiftL     Keysym = 0xffe1
	KeyShiftR     Keysym = 0xffe2
	KeyControlL   Keysym = 0xffe3
	KeyControlR   Keysym = 0xffe4
	KeyCapsLock   Keysym = 0xffe5
	KeyMetaL      Keysym = 0xffe7
	KeyMetaR      Keysym = 0xffe8
	KeyAltL       Keysym = 0xffe9
	KeyAltR       Keysym = 0xffea
	KeySuperL     Keysym = 0xffeb
	KeySuperR     Keysym = 0xffec
	KeyHyperL     Keysym = 0xffed
	KeyHyperR     Keysym = 0xffee
	KeyDelete     Keysym = 0xffff
	KeyISOEnter   Keysym = 0xfe34
)

const unicodeOffset = 0x01000000

// KeysymFromRune returns the keysym producing r.
func KeysymFromRune(r rune) Keysym {
	if (r >= 0x20 && r <= 0x7e) || (r >= 0xa0 && r <= 0xff) {
		return Keysym(r)
	}
	return Keysym(unicodeOffset + uint32(r))
}

// Rune returns the character a keysym produces, if it is a character keysym.
func (k Keysym) Rune() (rune, bool) {
	switch {
	case (k >= 0x20 && k <= 0x7e) || (k >= 0xa0 && k <= 0xff):
		return rune(k), true
	case k >= unicodeOffset+0x100 && k <= unicodeOffset+0x10ffff:
		return rune(k - unicodeOffset), true
	}
	return 0, false
}

// IsKeypad reports whether the keysym is on the numeric keypad.
func (k Keysym) IsKeypad() bool {
	return k >= KeyKPSpace && k <= KeyKPEqual
}
