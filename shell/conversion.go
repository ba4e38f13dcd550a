package shell

import (
	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/platform"
)

// evdev button codes.
const (
	btnLeft    = 0x110
	btnRight   = 0x111
	btnMiddle  = 0x112
	btnForward = 0x115
	btnBack    = 0x116
)

func convertButton(code uint32) core.Button {
	switch code {
	case btnLeft:
		return core.Button{Kind: core.ButtonLeft}
	case btnRight:
		return core.Button{Kind: core.ButtonRight}
	case btnMiddle:
		return core.Button{Kind: core.ButtonMiddle}
	case btnBack:
		return core.Button{Kind: core.ButtonBack}
	case btnForward:
		return core.Button{Kind: core.ButtonForward}
	}
	return core.Button{Kind: core.ButtonOther, Code: uint16(code)}
}

func convertModifiers(m platform.ModifierState) core.Modifiers {
	var out core.Modifiers
	if m.Shift {
		out |= core.ModShift
	}
	if m.Ctrl {
		out |= core.ModCtrl
	}
	if m.Alt {
		out |= core.ModAlt
	}
	if m.Logo {
		out |= core.ModLogo
	}
	return out
}

var namedKeysyms = map[platform.Keysym]core.Named{
	platform.KeyAltL:       core.NamedAlt,
	platform.KeyAltR:       core.NamedAlt,
	platform.KeyCapsLock:   core.NamedCapsLock,
	platform.KeyControlL:   core.NamedControl,
	platform.KeyControlR:   core.NamedControl,
	platform.KeyNumLock:    core.NamedNumLock,
	platform.KeyScrollLock: core.NamedScrollLock,
	platform.KeyShiftL:     core.NamedShift,
	platform.KeyShiftR:     core.NamedShift,
	platform.KeyMetaL:      core.NamedMeta,
	platform.KeyMetaR:      core.NamedMeta,
	platform.KeyHyperL:     core.NamedHyper,
	platform.KeyHyperR:     core.NamedHyper,
	platform.KeySuperL:     core.NamedSuper,
	platform.KeySuperR:     core.NamedSuper,
	platform.KeyReturn:     core.NamedEnter,
	platform.KeyKPEnter:    core.NamedEnter,
	platform.KeyISOEnter:   core.NamedEnter,
	platform.KeyTab:        core.NamedTab,
	platform.KeyKPSpace:    core.NamedSpace,
	platform.KeyDown:       core.NamedArrowDown,
	platform.KeyLeft:       core.NamedArrowLeft,
	platform.KeyRight:      core.NamedArrowRight,
	platform.KeyUp:         core.NamedArrowUp,
	platform.KeyEnd:        core.NamedEnd,
	platform.KeyHome:       core.NamedHome,
	platform.KeyPageDown:   core.NamedPageDown,
	platform.KeyPageUp:     core.NamedPageUp,
	platform.KeyBackSpace:  core.NamedBackspace,
	platform.KeyClear:      core.NamedClear,
	platform.KeyDelete:     core.NamedDelete,
	platform.KeyInsert:     core.NamedInsert,
	platform.KeyEscape:     core.NamedEscape,
}

var codeKeysyms = map[platform.Keysym]core.Code{
	platform.KeyCapsLock:   core.CodeCapsLock,
	platform.KeyNumLock:    core.CodeNumLock,
	platform.KeyScrollLock: core.CodeScrollLock,
	platform.KeyMetaL:      core.CodeMeta,
	platform.KeyMetaR:      core.CodeMeta,
	platform.KeyHyperL:     core.CodeHyper,
	platform.KeyHyperR:     core.CodeHyper,
	platform.KeyReturn:     core.CodeEnter,
	platform.KeyKPEnter:    core.CodeEnter,
	platform.KeyISOEnter:   core.CodeEnter,
	platform.KeyTab:        core.CodeTab,
	platform.KeyKPSpace:    core.CodeSpace,
	platform.KeyDown:       core.CodeArrowDown,
	platform.KeyLeft:       core.CodeArrowLeft,
	platform.KeyRight:      core.CodeArrowRight,
	platform.KeyUp:         core.CodeArrowUp,
	platform.KeyEnd:        core.CodeEnd,
	platform.KeyHome:       core.CodeHome,
	platform.KeyPageDown:   core.CodePageDown,
	platform.KeyPageUp:     core.CodePageUp,
	platform.KeyBackSpace:  core.CodeBackspace,
	platform.KeyDelete:     core.CodeDelete,
	platform.KeyInsert:     core.CodeInsert,
	platform.KeyEscape:     core.CodeEscape,
}

// convertKey maps a keysym to a logical key. Keysyms without a name fall
// back to the character they produce.
func convertKey(sym platform.Keysym) core.Key {
	if named, ok := namedKeysyms[sym]; ok {
		return core.NamedKey(named)
	}
	if r, ok := sym.Rune(); ok {
		return core.CharacterKey(string(r))
	}
	return core.Key{}
}

// convertPhysical maps a keysym to a key position. Unknown positions carry
// the raw scan code.
func convertPhysical(sym platform.Keysym, raw uint32) core.Physical {
	if code, ok := codeKeysyms[sym]; ok {
		return core.Physical{Code: code}
	}
	return core.Physical{Code: core.CodeUnidentified, Native: raw}
}

func convertLocation(sym platform.Keysym) core.Location {
	switch {
	case sym.IsKeypad():
		return core.LocationNumpad
	case sym == platform.KeyAltL, sym == platform.KeyControlL, sym == platform.KeyShiftL,
		sym == platform.KeyMetaL, sym == platform.KeyHyperL, sym == platform.KeySuperL:
		return core.LocationLeft
	case sym == platform.KeyAltR, sym == platform.KeyControlR, sym == platform.KeyShiftR,
		sym == platform.KeyMetaR, sym == platform.KeyHyperR, sym == platform.KeySuperR:
		return core.LocationRight
	}
	return core.LocationStandard
}
