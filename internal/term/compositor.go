package term

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/graphics"
	"github.com/jakebf/layershell/platform"
)

// Compositor rasterizes renderer output into terminal cells. One cell is one
// physical pixel of the surface.
type Compositor struct {
	conn     *Conn
	settings graphics.Settings

	mu    sync.Mutex
	fonts int
}

// Surface is a pane-backed render target.
type Surface struct {
	id            platform.SurfaceID
	width, height uint32
}

func (c *Compositor) CreateSurface(window graphics.RawWindow, width, height uint32) (graphics.Surface, error) {
	id, ok := window.(platform.SurfaceID)
	if !ok {
		return nil, fmt.Errorf("term: unexpected window handle %T", window)
	}
	return &Surface{id: id, width: width, height: height}, nil
}

func (c *Compositor) CreateRenderer() graphics.Renderer {
	return &Renderer{textSize: c.settings.DefaultTextSize}
}

func (c *Compositor) ConfigureSurface(surface graphics.Surface, width, height uint32) {
	if s, ok := surface.(*Surface); ok {
		s.width, s.height = width, height
	}
}

// Present rasterizes what r recorded since the last present and hands the
// frame to the pane.
func (c *Compositor) Present(r graphics.Renderer, surface graphics.Surface, viewport graphics.Viewport, background core.Color) error {
	s, ok := surface.(*Surface)
	if !ok {
		return graphics.ErrSurfaceLost
	}
	rr, ok := r.(*Renderer)
	if !ok {
		return fmt.Errorf("term: unexpected renderer %T", r)
	}
	g := newGrid(int(s.width), int(s.height), background)
	g.paint(rr.take(), viewport.ScaleFactor())
	return c.conn.setFrame(s.id, g.String())
}

// LoadFont accepts font data and discards it; terminals render with their
// own font.
func (c *Compositor) LoadFont(font []byte) error {
	if len(font) == 0 {
		return errors.New("term: empty font data")
	}
	c.mu.Lock()
	c.fonts++
	c.mu.Unlock()
	return nil
}

func (c *Compositor) FetchInformation() graphics.Information {
	adapter := "terminal"
	if out := c.conn.output; out != nil {
		if size, err := winsize(out); err == nil && size.cols > 0 {
			adapter = fmt.Sprintf("terminal %dx%d cells", size.cols, size.rows)
			if size.xpix > 0 {
				adapter += fmt.Sprintf(" (%dx%d px)", size.xpix, size.ypix)
			}
		}
	}
	return graphics.Information{Adapter: adapter, Backend: "lipgloss"}
}

type command struct {
	clip   core.Rectangle
	quad   bool
	bounds core.Rectangle
	color  core.Color
	text   graphics.Text
}

// Renderer records draw commands for the next Present.
type Renderer struct {
	textSize float32
	clips    []core.Rectangle
	commands []command
}

var unbounded = core.Rectangle{X: -math.MaxFloat32 / 2, Y: -math.MaxFloat32 / 2, Width: math.MaxFloat32, Height: math.MaxFloat32}

func (r *Renderer) clip() core.Rectangle {
	if len(r.clips) == 0 {
		return unbounded
	}
	return r.clips[len(r.clips)-1]
}

func (r *Renderer) FillQuad(bounds core.Rectangle, background core.Color) {
	r.commands = append(r.commands, command{clip: r.clip(), quad: true, bounds: bounds, color: background})
}

func (r *Renderer) FillText(text graphics.Text) {
	r.commands = append(r.commands, command{clip: r.clip(), text: text, color: text.Color})
}

func (r *Renderer) WithLayer(bounds core.Rectangle, f func()) {
	r.clips = append(r.clips, intersect(r.clip(), bounds))
	defer func() { r.clips = r.clips[:len(r.clips)-1] }()
	f()
}

// MeasureText measures in cells. Every line is one row whatever the size.
func (r *Renderer) MeasureText(content string, _ float32) core.Size {
	return core.Size{Width: float32(lipgloss.Width(content)), Height: float32(lipgloss.Height(content))}
}

func (r *Renderer) DefaultTextSize() float32 { return r.textSize }

func (r *Renderer) take() []command {
	cmds := r.commands
	r.commands = nil
	r.clips = r.clips[:0]
	return cmds
}

func intersect(a, b core.Rectangle) core.Rectangle {
	x0, y0 := max(a.X, b.X), max(a.Y, b.Y)
	x1, y1 := min(a.X+a.Width, b.X+b.Width), min(a.Y+a.Height, b.Y+b.Height)
	if x1 <= x0 || y1 <= y0 {
		return core.Rectangle{X: x0, Y: y0}
	}
	return core.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

type cell struct {
	r         string
	fg, bg    core.Color
	underline bool
	// cont marks the right half of a wide rune.
	cont bool
}

type grid struct {
	width, height int
	cells         []cell
}

func newGrid(width, height int, background core.Color) *grid {
	g := &grid{width: width, height: height, cells: make([]cell, width*height)}
	bg := blend(core.Black, background)
	for i := range g.cells {
		g.cells[i] = cell{r: " ", bg: bg, fg: core.White}
	}
	return g
}

func (g *grid) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return nil
	}
	return &g.cells[y*g.width+x]
}

const cellLimit = 1 << 20

// toCell scales a logical coordinate into a cell index.
func toCell(v, scale float32, round func(float64) float64) int {
	x := round(float64(v) * float64(scale))
	return int(min(max(x, -cellLimit), cellLimit))
}

// paint applies the commands in order. Coordinates are logical and scaled
// by scale into cells.
func (g *grid) paint(cmds []command, scale float64) {
	s := float32(scale)
	for _, cmd := range cmds {
		if cmd.quad {
			area := intersect(cmd.bounds, cmd.clip)
			x0, y0 := toCell(area.X, s, math.Round), toCell(area.Y, s, math.Round)
			x1 := toCell(area.X+area.Width, s, math.Round)
			y1 := toCell(area.Y+area.Height, s, math.Round)
			for y := max(y0, 0); y < min(y1, g.height); y++ {
				for x := max(x0, 0); x < min(x1, g.width); x++ {
					c := g.at(x, y)
					c.bg = blend(c.bg, cmd.color)
				}
			}
			continue
		}
		g.text(cmd.text, cmd.clip, s)
	}
}

func (g *grid) text(t graphics.Text, clip core.Rectangle, s float32) {
	cx0, cy0 := toCell(clip.X, s, math.Floor), toCell(clip.Y, s, math.Floor)
	cx1 := toCell(clip.X+clip.Width, s, math.Ceil)
	cy1 := toCell(clip.Y+clip.Height, s, math.Ceil)
	x0, y := toCell(t.Bounds.X, s, math.Round), toCell(t.Bounds.Y, s, math.Round)
	for _, line := range strings.Split(t.Content, "\n") {
		x := x0
		for _, r := range line {
			w := ansi.StringWidth(string(r))
			if w == 0 {
				continue
			}
			if y >= cy0 && y < cy1 && x >= cx0 && x+w <= cx1 && x+w <= g.width {
				g.put(x, y, w, string(r), t)
			}
			x += w
		}
		y++
	}
}

// put writes a rune w cells wide at x, y.
func (g *grid) put(x, y, w int, r string, t graphics.Text) {
	c := g.at(x, y)
	if c == nil {
		return
	}
	c.r = r
	c.fg = blend(c.bg, t.Color)
	c.underline = t.Underline
	c.cont = false
	for i := 1; i < w; i++ {
		next := g.at(x+i, y)
		next.r, next.cont = "", true
		next.bg = c.bg
	}
	if next := g.at(x+w, y); next != nil && next.cont {
		next.r, next.cont = " ", false
	}
}

// blend composites src over an opaque dst.
func blend(dst, src core.Color) core.Color {
	a := min(max(src.A, 0), 1)
	return core.Color{
		R: dst.R*(1-a) + src.R*a,
		G: dst.G*(1-a) + src.G*a,
		B: dst.B*(1-a) + src.B*a,
		A: 1,
	}
}

func hex(c core.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA8()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}

// String renders the grid with one lipgloss style per run of equal cells.
func (g *grid) String() string {
	var out strings.Builder
	for y := 0; y < g.height; y++ {
		if y > 0 {
			out.WriteByte('\n')
		}
		row := g.cells[y*g.width : (y+1)*g.width]
		for start := 0; start < len(row); {
			end := start
			var run strings.Builder
			for end < len(row) && sameStyle(row[start], row[end]) {
				run.WriteString(row[end].r)
				end++
			}
			c := row[start]
			style := lipgloss.NewStyle().Foreground(hex(c.fg)).Background(hex(c.bg)).Underline(c.underline)
			out.WriteString(style.Render(run.String()))
			start = end
		}
	}
	return out.String()
}

func sameStyle(a, b cell) bool {
	return a.fg == b.fg && a.bg == b.bg && a.underline == b.underline
}
