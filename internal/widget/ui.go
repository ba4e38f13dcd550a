package widget

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/graphics"
	"github.com/jakebf/layershell/program"
)

// UI is a laid out widget tree.
type UI struct {
	kit     *Toolkit
	view    program.Element
	size    core.Size
	cache   *Cache
	root    *node
	hovered string
}

func (u *UI) layout(r graphics.Renderer) {
	lc := &layoutCtx{
		kit:      u.kit,
		renderer: r,
		cache:    u.cache,
		markdown: make(map[markdownKey][]string),
		seen:     make(map[string]bool),
	}
	u.root = lc.layout(u.view, core.Origin, u.size.Width)
	u.cache.markdown = lc.markdown
	for id := range u.cache.inputs {
		if !lc.seen[id] {
			delete(u.cache.inputs, id)
		}
	}
	if !lc.seen[u.cache.focused] {
		u.cache.focused = ""
	}
	if !lc.seen[u.cache.pressed] {
		u.cache.pressed = ""
	}
}

func (u *UI) find(id string) *node {
	if id == "" {
		return nil
	}
	var found *node
	u.root.walk(func(n *node) {
		if found == nil && n.id == id && (n.kind == kindButton || n.kind == kindInput) {
			found = n
		}
	})
	return found
}

func (u *UI) Update(events []core.Event, cursor core.Cursor, renderer graphics.Renderer, clipboard core.Clipboard, messages *[]any) (program.UIState, []core.Status) {
	statuses := make([]core.Status, len(events))
	redraw := core.Wait
	for i, ev := range events {
		var status core.Status
		switch ev := ev.(type) {
		case core.CursorMoved:
			cursor = core.CursorAt(ev.Position)
			redraw = redraw.Combine(u.hover(cursor))
		case core.CursorLeft:
			cursor = core.Cursor{}
			redraw = redraw.Combine(u.hover(cursor))
		case core.ButtonPressed:
			if ev.Button.Kind == core.ButtonLeft && cursor.Available {
				status = u.press(cursor.Position)
				redraw = core.NextFrame
			}
		case core.ButtonReleased:
			if ev.Button.Kind == core.ButtonLeft {
				status = u.release(cursor, messages)
				redraw = redraw.Combine(u.redrawIf(status))
			}
		case core.FingerPressed:
			status = u.press(ev.Position)
			redraw = core.NextFrame
		case core.FingerLifted:
			status = u.release(core.CursorAt(ev.Position), messages)
			redraw = redraw.Combine(u.redrawIf(status))
		case core.FingerLost:
			u.cache.pressed = ""
		case core.KeyPressed:
			status = u.key(ev, clipboard, messages)
			redraw = redraw.Combine(u.redrawIf(status))
		case core.RedrawRequested:
			redraw = redraw.Combine(u.blink(ev))
		}
		statuses[i] = status
	}

	return program.UIState{
		MouseInteraction: u.interaction(cursor),
		RedrawRequest:    redraw,
		InputMethod:      u.inputMethod(renderer),
	}, statuses
}

func (u *UI) redrawIf(status core.Status) core.RedrawRequest {
	if status == core.StatusCaptured {
		return core.NextFrame
	}
	return core.Wait
}

func (u *UI) hover(cursor core.Cursor) core.RedrawRequest {
	var id string
	if cursor.Available {
		if n := u.root.hit(cursor.Position); n != nil {
			id = n.id
		}
	}
	if id == u.hovered {
		return core.Wait
	}
	u.hovered = id
	return core.NextFrame
}

func (u *UI) press(p core.Point) core.Status {
	n := u.root.hit(p)
	if n == nil {
		u.cache.focus("")
		return core.StatusIgnored
	}
	if n.kind == kindButton {
		if n.button.OnPress == nil {
			return core.StatusIgnored
		}
		u.cache.pressed = n.id
	}
	u.cache.focus(n.id)
	return core.StatusCaptured
}

func (u *UI) release(cursor core.Cursor, messages *[]any) core.Status {
	id := u.cache.pressed
	if id == "" {
		return core.StatusIgnored
	}
	u.cache.pressed = ""
	if !cursor.Available {
		return core.StatusCaptured
	}
	if n := u.root.hit(cursor.Position); n != nil && n.id == id && n.kind == kindButton {
		*messages = append(*messages, n.button.OnPress)
	}
	return core.StatusCaptured
}

func (u *UI) key(ev core.KeyPressed, clipboard core.Clipboard, messages *[]any) core.Status {
	n := u.find(u.cache.focused)
	if n == nil {
		return core.StatusIgnored
	}
	if n.kind == kindButton {
		if n.button.OnPress == nil {
			return core.StatusIgnored
		}
		if ev.Key == core.NamedKey(core.NamedEnter) || ev.Key == core.CharacterKey(" ") {
			*messages = append(*messages, n.button.OnPress)
			return core.StatusCaptured
		}
		return core.StatusIgnored
	}

	in := n.input
	m := u.cache.editor(in.ID, in.Value, in.Secure)
	before, pos := m.Value(), m.Position()
	switch {
	case ev.Key == core.NamedKey(core.NamedEnter):
		if in.OnSubmit != nil {
			*messages = append(*messages, in.OnSubmit)
		}
		return core.StatusCaptured
	case ev.Key == core.NamedKey(core.NamedEscape):
		u.cache.focus("")
		return core.StatusCaptured
	case ev.Modifiers.Control() && strings.EqualFold(ev.Key.Character, "v"):
		text, ok := clipboard.Read(core.ClipboardStandard)
		if !ok {
			return core.StatusCaptured
		}
		text = strings.NewReplacer("\r", "", "\n", " ").Replace(text)
		runes := []rune(before)
		m.SetValue(string(runes[:pos]) + text + string(runes[pos:]))
		m.SetCursor(pos + len([]rune(text)))
	case ev.Modifiers.Control() && strings.EqualFold(ev.Key.Character, "c"):
		if !in.Secure {
			clipboard.Write(core.ClipboardStandard, before)
		}
		return core.StatusCaptured
	default:
		msg, ok := keyMsg(ev)
		if !ok {
			return core.StatusIgnored
		}
		updated, _ := m.Update(msg)
		*m = updated
	}

	u.cache.resetBlink()
	if after := m.Value(); after != before {
		if in.OnInput == nil {
			m.SetValue(before)
			m.SetCursor(pos)
		} else {
			*messages = append(*messages, in.OnInput(after))
			// Later events in this batch edit the new value.
			n.input.Value = after
		}
	}
	return core.StatusCaptured
}

// keyMsg converts a key press into the message a textinput understands.
func keyMsg(ev core.KeyPressed) (tea.KeyMsg, bool) {
	alt, ctrl := ev.Modifiers.Alt(), ev.Modifiers.Control()
	switch ev.Key.Named {
	case core.NamedBackspace:
		return tea.KeyMsg{Type: tea.KeyBackspace, Alt: alt}, true
	case core.NamedDelete:
		return tea.KeyMsg{Type: tea.KeyDelete, Alt: alt}, true
	case core.NamedArrowLeft:
		if ctrl {
			return tea.KeyMsg{Type: tea.KeyCtrlLeft}, true
		}
		return tea.KeyMsg{Type: tea.KeyLeft, Alt: alt}, true
	case core.NamedArrowRight:
		if ctrl {
			return tea.KeyMsg{Type: tea.KeyCtrlRight}, true
		}
		return tea.KeyMsg{Type: tea.KeyRight, Alt: alt}, true
	case core.NamedHome:
		return tea.KeyMsg{Type: tea.KeyHome}, true
	case core.NamedEnd:
		return tea.KeyMsg{Type: tea.KeyEnd}, true
	case core.NamedSpace:
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, true
	}
	if !ev.Key.IsCharacter() {
		return tea.KeyMsg{}, false
	}
	if ctrl {
		r := []rune(strings.ToLower(ev.Key.Character))
		if len(r) != 1 || r[0] < 'a' || r[0] > 'z' {
			return tea.KeyMsg{}, false
		}
		return tea.KeyMsg{Type: tea.KeyCtrlA + tea.KeyType(r[0]-'a'), Alt: alt}, true
	}
	text := ev.Text
	if text == "" {
		text = ev.Key.Character
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text), Alt: alt}, true
}

// blink toggles the caret of a focused input and schedules the next toggle.
func (u *UI) blink(ev core.RedrawRequested) core.RedrawRequest {
	n := u.find(u.cache.focused)
	if n == nil || n.kind != kindInput {
		return core.Wait
	}
	c := u.cache
	if u.kit.CaretBlink <= 0 {
		c.caretOn = true
		return core.Wait
	}
	if !ev.At.Before(c.blinkAt) {
		c.caretOn = !c.caretOn
		c.blinkAt = ev.At.Add(u.kit.CaretBlink)
	}
	return core.RedrawAtTime(c.blinkAt)
}

func (u *UI) interaction(cursor core.Cursor) core.Interaction {
	if !cursor.Available {
		return core.InteractionNone
	}
	n := u.root.hit(cursor.Position)
	switch {
	case n == nil:
		return core.InteractionIdle
	case n.kind == kindInput:
		return core.InteractionText
	case n.button.OnPress == nil:
		return core.InteractionNotAllowed
	}
	return core.InteractionPointer
}

// display returns what an input shows and the caret offset within it.
func (u *UI) display(n *node) (text string, caret string) {
	m := u.cache.inputs[n.id]
	if m == nil {
		return n.input.Value, ""
	}
	runes := []rune(m.Value())
	pos := min(m.Position(), len(runes))
	if m.EchoMode == textinput.EchoPassword {
		mask := string(m.EchoCharacter)
		return strings.Repeat(mask, len(runes)), strings.Repeat(mask, pos)
	}
	return string(runes), string(runes[:pos])
}

func (u *UI) inputMethod(r graphics.Renderer) core.InputMethod {
	n := u.find(u.cache.focused)
	if n == nil || n.kind != kindInput {
		return core.InputMethodDisabled
	}
	inner := n.inner(u.kit)
	_, prefix := u.display(n)
	x := inner.X + r.MeasureText(prefix, n.textSize).Width
	purpose := core.PurposeNormal
	if n.input.Secure {
		purpose = core.PurposeSecure
	}
	return core.EnableInputMethod(core.Point{X: x, Y: inner.Y + n.lineH}, purpose, nil)
}

func mix(a, b core.Color, t float32) core.Color {
	return core.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}

func (u *UI) Draw(r graphics.Renderer, theme core.Theme, style core.Style, cursor core.Cursor) {
	palette := theme.Palette
	u.root.walk(func(n *node) {
		switch n.kind {
		case kindText:
			for i, line := range n.lines {
				r.FillText(graphics.Text{
					Content: line,
					Bounds:  core.Rectangle{X: n.bounds.X, Y: n.bounds.Y + float32(i)*n.lineH, Width: n.bounds.Width, Height: n.lineH},
					Color:   style.TextColor,
					Size:    n.textSize,
				})
			}
		case kindButton:
			bg := palette.Primary
			switch {
			case n.button.OnPress == nil:
				bg = mix(palette.Background, palette.Text, 0.3)
			case u.cache.pressed == n.id:
				bg = palette.Success
			case u.cache.focused == n.id || (cursor.Available && n.bounds.Contains(cursor.Position)):
				bg = mix(bg, core.White, 0.2)
			}
			r.FillQuad(n.bounds, bg)
			r.FillText(graphics.Text{Content: n.lines[0], Bounds: n.inner(u.kit), Color: core.White, Size: n.textSize})
		case kindInput:
			r.FillQuad(n.bounds, mix(palette.Background, palette.Text, 0.12))
			inner := n.inner(u.kit)
			r.WithLayer(inner, func() {
				text, prefix := u.display(n)
				color := style.TextColor
				if text == "" {
					text, color = n.input.Placeholder, mix(palette.Text, palette.Background, 0.5)
				}
				r.FillText(graphics.Text{Content: text, Bounds: inner, Color: color, Size: n.textSize})
				if u.cache.focused == n.id && u.cache.caretOn {
					x := inner.X + r.MeasureText(prefix, n.textSize).Width
					r.FillQuad(core.Rectangle{X: x, Y: inner.Y, Width: u.kit.CaretWidth, Height: n.lineH}, style.TextColor)
				}
			})
		}
	})
}

type focusHandle struct {
	cache *Cache
	id    string
}

func (f focusHandle) IsFocused() bool { return f.cache.focused == f.id }
func (f focusHandle) Focus()          { f.cache.focus(f.id) }
func (f focusHandle) Unfocus() {
	if f.cache.focused == f.id {
		f.cache.focus("")
	}
}

func (u *UI) Operate(_ graphics.Renderer, op core.Operation) {
	u.root.walk(func(n *node) {
		switch n.kind {
		case kindColumn:
			op.Container(n.id, n.bounds)
		case kindText:
			op.Text(n.id, n.bounds, strings.Join(n.lines, "\n"))
		case kindButton, kindInput:
			if n.id != "" {
				op.Focusable(n.id, n.bounds, focusHandle{cache: u.cache, id: n.id})
			}
		}
	})
}

func (u *UI) Relayout(size core.Size, renderer graphics.Renderer) program.UserInterface {
	u.size = size
	u.layout(renderer)
	return u
}

func (u *UI) IntoCache() program.Cache { return u.cache }
