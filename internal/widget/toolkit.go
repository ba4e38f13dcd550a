package widget

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/graphics"
	"github.com/jakebf/layershell/program"
)

// Toolkit builds UI trees from widget elements.
type Toolkit struct {
	// MarkdownStyle is the glamour style of Markdown elements that do not
	// name one.
	MarkdownStyle string
	// Padding surrounds button labels and input text.
	Padding core.Padding
	// CaretWidth is the width of the text input caret.
	CaretWidth float32
	// CaretBlink is the caret blink interval. Zero disables blinking.
	CaretBlink time.Duration
}

// New returns a toolkit with the defaults used by the terminal backend.
func New(markdownStyle string) *Toolkit {
	if markdownStyle == "" {
		markdownStyle = "dark"
	}
	return &Toolkit{
		MarkdownStyle: markdownStyle,
		Padding:       core.Padding{Left: 1, Right: 1},
		CaretWidth:    1,
		CaretBlink:    500 * time.Millisecond,
	}
}

// Cache is the widget state that survives rebuilds: focus, pressed buttons,
// text input editors and rendered markdown.
type Cache struct {
	focused string
	pressed string
	inputs  map[string]*textinput.Model
	caretOn bool
	blinkAt time.Time
	// markdown holds the renderings used by the last build.
	markdown map[markdownKey][]string
}

func newCache() *Cache {
	return &Cache{
		inputs:   make(map[string]*textinput.Model),
		markdown: make(map[markdownKey][]string),
	}
}

// Focused returns the id of the focused widget.
func (c *Cache) Focused() string { return c.focused }

// focus moves focus to id and restarts the caret blink.
func (c *Cache) focus(id string) {
	if c.focused == id {
		return
	}
	if m := c.inputs[c.focused]; m != nil {
		m.Blur()
	}
	c.focused = id
	c.resetBlink()
	if m := c.inputs[id]; m != nil {
		_ = m.Focus()
		m.CursorEnd()
	}
}

func (c *Cache) resetBlink() {
	c.caretOn = false
	c.blinkAt = time.Time{}
}

// editor returns the editor of input id, synchronized with value.
func (c *Cache) editor(id, value string, secure bool) *textinput.Model {
	m := c.inputs[id]
	if m == nil {
		ti := textinput.New()
		ti.Prompt = ""
		m = &ti
		c.inputs[id] = m
		if c.focused == id {
			_ = m.Focus()
		}
	}
	if secure {
		m.EchoMode = textinput.EchoPassword
	} else {
		m.EchoMode = textinput.EchoNormal
	}
	if m.Value() != value {
		pos := m.Position()
		m.SetValue(value)
		m.SetCursor(pos)
	}
	return m
}

// Build lays view out against size, reusing the state in cache.
func (k *Toolkit) Build(view program.Element, size core.Size, cache program.Cache, renderer graphics.Renderer) program.UserInterface {
	c, _ := cache.(*Cache)
	if c == nil {
		c = newCache()
	}
	ui := &UI{kit: k, view: view, size: size, cache: c}
	ui.layout(renderer)
	return ui
}

type nodeKind uint8

const (
	kindColumn nodeKind = iota
	kindText
	kindButton
	kindInput
)

type node struct {
	kind     nodeKind
	id       string
	bounds   core.Rectangle
	lines    []string
	textSize float32
	lineH    float32
	button   Button
	input    TextInput
	children []*node
}

// inner returns the node bounds without the toolkit padding.
func (n *node) inner(k *Toolkit) core.Rectangle {
	if n.kind == kindButton || n.kind == kindInput {
		return n.bounds.Shrink(k.Padding)
	}
	return n.bounds
}

type layoutCtx struct {
	kit      *Toolkit
	renderer graphics.Renderer
	cache    *Cache
	markdown map[markdownKey][]string
	seen     map[string]bool
}

func (lc *layoutCtx) lineHeight(size float32) float32 {
	return lc.renderer.MeasureText("M", size).Height
}

func (lc *layoutCtx) textBlock(n *node, lines []string, size float32, at core.Point) {
	if size == 0 {
		size = lc.renderer.DefaultTextSize()
	}
	n.lines = lines
	n.textSize = size
	n.lineH = lc.lineHeight(size)
	var width float32
	for _, line := range lines {
		width = max(width, lc.renderer.MeasureText(line, size).Width)
	}
	n.bounds = core.Rectangle{X: at.X, Y: at.Y, Width: width, Height: n.lineH * float32(len(lines))}
}

func (lc *layoutCtx) layout(e program.Element, at core.Point, width float32) *node {
	switch e := e.(type) {
	case Column:
		n := &node{kind: kindColumn, id: e.ID}
		y := at.Y + e.Padding.Top
		inner := max(width-e.Padding.Left-e.Padding.Right, 0)
		for i, child := range e.Children {
			if i > 0 {
				y += e.Spacing
			}
			c := lc.layout(child, core.Point{X: at.X + e.Padding.Left, Y: y}, inner)
			n.children = append(n.children, c)
			y += c.bounds.Height
		}
		n.bounds = core.Rectangle{X: at.X, Y: at.Y, Width: width, Height: y + e.Padding.Bottom - at.Y}
		return n
	case Text:
		n := &node{kind: kindText, id: e.ID}
		lc.textBlock(n, strings.Split(e.Content, "\n"), e.Size, at)
		return n
	case string:
		return lc.layout(Text{Content: e}, at, width)
	case Markdown:
		style := e.Style
		if style == "" {
			style = lc.kit.MarkdownStyle
		}
		key := markdownKey{source: e.Source, style: style, width: int(width)}
		lines, ok := lc.cache.markdown[key]
		if !ok {
			lines = renderMarkdown(e.Source, style, int(width))
		}
		lc.markdown[key] = lines
		n := &node{kind: kindText, id: e.ID}
		lc.textBlock(n, lines, 0, at)
		return n
	case Button:
		n := &node{kind: kindButton, id: e.ID, button: e}
		lc.textBlock(n, []string{e.Label}, 0, at)
		pad := lc.kit.Padding
		n.bounds.Width += pad.Left + pad.Right
		n.bounds.Height += pad.Top + pad.Bottom
		lc.seen[e.ID] = true
		return n
	case TextInput:
		n := &node{kind: kindInput, id: e.ID, input: e}
		lc.cache.editor(e.ID, e.Value, e.Secure)
		size := lc.renderer.DefaultTextSize()
		n.textSize = size
		n.lineH = lc.lineHeight(size)
		pad := lc.kit.Padding
		n.bounds = core.Rectangle{X: at.X, Y: at.Y, Width: width, Height: n.lineH + pad.Top + pad.Bottom}
		lc.seen[e.ID] = true
		return n
	case nil:
		return &node{kind: kindColumn, bounds: core.Rectangle{X: at.X, Y: at.Y}}
	default:
		return lc.layout(Text{Content: fmt.Sprint(e)}, at, width)
	}
}

// walk visits n and its descendants depth first.
func (n *node) walk(f func(*node)) {
	f(n)
	for _, c := range n.children {
		c.walk(f)
	}
}

// hit returns the deepest interactive node containing p.
func (n *node) hit(p core.Point) *node {
	if !n.bounds.Contains(p) && n.kind != kindColumn {
		return nil
	}
	for _, c := range n.children {
		if h := c.hit(p); h != nil {
			return h
		}
	}
	if n.kind == kindButton || n.kind == kindInput {
		return n
	}
	return nil
}
