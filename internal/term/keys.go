package term

import (
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jakebf/layershell/platform"
)

// keyMap holds the bindings the terminal keeps for itself. Every other key
// goes to the focused surface.
type keyMap struct {
	NextWindow key.Binding
	Close      key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		NextWindow: key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "next window")),
		Close:      key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("ctrl+q", "close window")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextWindow, k.Close, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// keyStroke is one key press decoded from terminal input.
type keyStroke struct {
	sym  platform.Keysym
	text string
	mods platform.ModifierState
}

var shift = platform.ModifierState{Shift: true}
var ctrl = platform.ModifierState{Ctrl: true}

var namedTeaKeys = map[tea.KeyType]keyStroke{
	tea.KeyEnter:      {sym: platform.KeyReturn, text: "\r"},
	tea.KeyTab:        {sym: platform.KeyTab, text: "\t"},
	tea.KeyShiftTab:   {sym: platform.KeyTab, mods: shift},
	tea.KeyBackspace:  {sym: platform.KeyBackSpace},
	tea.KeyDelete:     {sym: platform.KeyDelete},
	tea.KeyEsc:        {sym: platform.KeyEscape},
	tea.KeySpace:      {sym: platform.KeysymFromRune(' '), text: " "},
	tea.KeyUp:         {sym: platform.KeyUp},
	tea.KeyDown:       {sym: platform.KeyDown},
	tea.KeyLeft:       {sym: platform.KeyLeft},
	tea.KeyRight:      {sym: platform.KeyRight},
	tea.KeyShiftUp:    {sym: platform.KeyUp, mods: shift},
	tea.KeyShiftDown:  {sym: platform.KeyDown, mods: shift},
	tea.KeyShiftLeft:  {sym: platform.KeyLeft, mods: shift},
	tea.KeyShiftRight: {sym: platform.KeyRight, mods: shift},
	tea.KeyCtrlUp:     {sym: platform.KeyUp, mods: ctrl},
	tea.KeyCtrlDown:   {sym: platform.KeyDown, mods: ctrl},
	tea.KeyCtrlLeft:   {sym: platform.KeyLeft, mods: ctrl},
	tea.KeyCtrlRight:  {sym: platform.KeyRight, mods: ctrl},
	tea.KeyHome:       {sym: platform.KeyHome},
	tea.KeyEnd:        {sym: platform.KeyEnd},
	tea.KeyPgUp:       {sym: platform.KeyPageUp},
	tea.KeyPgDown:     {sym: platform.KeyPageDown},
	tea.KeyInsert:     {sym: platform.KeyInsert},
}

// decodeKey turns a terminal key message into key strokes. Pasted or
// buffered input yields one stroke per rune.
func decodeKey(msg tea.KeyMsg) []keyStroke {
	if k, ok := namedTeaKeys[msg.Type]; ok {
		k.mods.Alt = msg.Alt
		return []keyStroke{k}
	}
	switch {
	case msg.Type == tea.KeyRunes:
		strokes := make([]keyStroke, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			k := keyStroke{sym: platform.KeysymFromRune(r), text: string(r)}
			k.mods.Shift = unicode.IsUpper(r)
			k.mods.Alt = msg.Alt
			if msg.Alt {
				k.text = ""
			}
			strokes = append(strokes, k)
		}
		return strokes
	case msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ:
		r := 'a' + rune(msg.Type-tea.KeyCtrlA)
		return []keyStroke{{sym: platform.KeysymFromRune(r), mods: platform.ModifierState{Ctrl: true, Alt: msg.Alt}}}
	}
	return nil
}
