package shell

import (
	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/graphics"
	"github.com/jakebf/layershell/program"
)

// windowState is the part of a window derived from the program and the
// platform: title, scale, viewport, cursor and modifiers, theme and style.
type windowState struct {
	title             string
	scaleFactor       float64
	windowScaleFactor float64
	viewport          graphics.Viewport
	viewportVersion   uint64
	cursorPosition    *core.Point
	modifiers         core.Modifiers
	theme             core.Theme
	style             core.Style
}

func newWindowState(p program.Program, id core.WindowID, physical core.PhysicalSize, windowScale float64) windowState {
	scale := p.ScaleFactor(id)
	theme := p.Theme(id)
	return windowState{
		title:             p.Title(id),
		scaleFactor:       scale,
		windowScaleFactor: windowScale,
		viewport:          graphics.NewViewport(physical, windowScale*scale),
		theme:             theme,
		style:             p.Style(theme),
	}
}

func (s *windowState) physicalSize() core.PhysicalSize { return s.viewport.PhysicalSize() }
func (s *windowState) logicalSize() core.Size          { return s.viewport.LogicalSize() }

// cursor returns the cursor in logical coordinates.
func (s *windowState) cursor() core.Cursor {
	if s.cursorPosition == nil {
		return core.Cursor{}
	}
	scale := float32(s.scaleFactor)
	return core.CursorAt(core.Point{X: s.cursorPosition.X / scale, Y: s.cursorPosition.Y / scale})
}

func (s *windowState) updateCursor(position *core.Point) {
	s.cursorPosition = position
}

// resize and rescale bump the viewport version by exactly one.
func (s *windowState) resize(physical core.PhysicalSize) {
	s.viewport = graphics.NewViewport(physical, s.windowScaleFactor*s.scaleFactor)
	s.viewportVersion++
}

func (s *windowState) rescale(windowScale float64) {
	s.windowScaleFactor = windowScale
	s.viewport = graphics.NewViewport(s.viewport.PhysicalSize(), windowScale*s.scaleFactor)
	s.viewportVersion++
}

// synchronize pulls title, scale factor, theme and style from the program.
// It is called right after the program was mutated.
func (s *windowState) synchronize(p program.Program, id core.WindowID) {
	s.title = p.Title(id)
	if scale := p.ScaleFactor(id); scale != s.scaleFactor {
		s.scaleFactor = scale
		s.viewport = graphics.NewViewport(s.viewport.PhysicalSize(), s.windowScaleFactor*scale)
		s.viewportVersion++
	}
	s.theme = p.Theme(id)
	s.style = p.Style(s.theme)
}
