package shell

import (
	"slices"
	"unicode/utf8"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/graphics"
)

const (
	underlineHeight = 2
	// hairSpace marks an empty selection so the caret stays visible.
	hairSpace = "\u200a"
)

type span struct {
	text     string
	selected bool
}

// preedit is the overlay painting uncommitted input-method text above the
// UI tree, anchored at the input method position.
type preedit struct {
	position core.Point
	spans    []span
	size     float32
	bounds   core.Size
}

func (p *preedit) update(position core.Point, pe core.Preedit, r graphics.Renderer) {
	p.position = position

	spans := []span{{text: pe.Content}}
	if sel := pe.Selection; sel != nil {
		start, end := clampRange(sel[0], sel[1], pe.Content)
		selected := pe.Content[start:end]
		if start == end {
			selected = hairSpace
		}
		spans = []span{
			{text: pe.Content[:start]},
			{text: selected, selected: true},
			{text: pe.Content[end:]},
		}
	}

	size := pe.TextSize
	if size <= 0 {
		size = r.DefaultTextSize()
	}
	if size == p.size && slices.Equal(spans, p.spans) {
		return
	}
	p.spans = spans
	p.size = size
	p.bounds = core.Size{}
	for _, s := range spans {
		m := r.MeasureText(s.text, size)
		p.bounds.Width += m.Width
		p.bounds.Height = max(p.bounds.Height, m.Height)
	}
}

// draw paints the overlay clamped inside viewport.
func (p *preedit) draw(r graphics.Renderer, color, background core.Color, viewport core.Rectangle) {
	if p.bounds.Width < 1 {
		return
	}
	bounds := core.NewRectangle(
		p.position.Add(core.Vector{Y: -p.bounds.Height}),
		p.bounds,
	)
	bounds.X = min(max(bounds.X, viewport.X), viewport.X+viewport.Width-bounds.Width)
	bounds.Y = min(max(bounds.Y, viewport.Y), viewport.Y+viewport.Height-bounds.Height)

	r.WithLayer(bounds, func() {
		r.FillQuad(bounds, background)

		x := bounds.X
		for _, s := range p.spans {
			m := r.MeasureText(s.text, p.size)
			spanBounds := core.Rectangle{X: x, Y: bounds.Y, Width: m.Width, Height: bounds.Height}
			textColor := color
			if s.selected {
				r.FillQuad(spanBounds, color)
				textColor = background
			}
			r.FillText(graphics.Text{Content: s.text, Bounds: spanBounds, Color: textColor, Size: p.size})
			x += m.Width
		}

		r.FillQuad(bounds.Shrink(core.Padding{Top: bounds.Height - underlineHeight}), color)
	})
}

// clampRange clamps a byte range into s and moves both ends back to the
// start of the rune they fall in.
func clampRange(start, end int, s string) (int, int) {
	start = min(max(start, 0), len(s))
	end = min(max(end, start), len(s))
	return runeStart(s, start), runeStart(s, end)
}

func runeStart(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
