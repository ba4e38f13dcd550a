package shell

import (
	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/graphics"
	"github.com/jakebf/layershell/platform"
)

// Window is the runtime state of one open layer surface.
type Window struct {
	id        core.WindowID
	surfaceID platform.SurfaceID
	conn      platform.Connection

	state windowState
	// viewportVersion is the state's viewport version at the last draw.
	viewportVersion  uint64
	mouseInteraction core.Interaction
	pointers         map[platform.DeviceID]struct{}
	redrawAt         core.RedrawRequest

	preedit *preedit
	ime     *platform.TextInputState

	surface  graphics.Surface
	renderer graphics.Renderer
}

// ID returns the window's id.
func (w *Window) ID() core.WindowID { return w.id }

// SurfaceID returns the native surface handle the window is aliased by.
func (w *Window) SurfaceID() platform.SurfaceID { return w.surfaceID }

// Size returns the logical size.
func (w *Window) Size() core.Size { return w.state.logicalSize() }

// ScaleFactor returns the combined program and surface scale.
func (w *Window) ScaleFactor() float64 { return w.state.viewport.ScaleFactor() }

// RedrawRequest returns the pending redraw.
func (w *Window) RedrawRequest() core.RedrawRequest { return w.redrawAt }

// ViewportVersion changes whenever the viewport is resized or rescaled.
func (w *Window) ViewportVersion() uint64 { return w.state.viewportVersion }

// Title returns the title last taken from the program.
func (w *Window) Title() string { return w.state.title }

// requestRedraw merges req into the window's redraw state. Becoming
// NextFrame asks the platform for a frame callback and commits the surface;
// a window already waiting for its frame is left alone.
func (w *Window) requestRedraw(req core.RedrawRequest) {
	if w.redrawAt.IsNextFrame() {
		return
	}
	w.redrawAt = w.redrawAt.Combine(req)
	if w.redrawAt.IsNextFrame() {
		w.conn.RequestFrame(w.surfaceID)
		w.conn.Commit(w.surfaceID)
	}
}

// updateMouse records the interaction and pushes the matching cursor to
// every pointer over the window.
func (w *Window) updateMouse(interaction core.Interaction) {
	for pointer := range w.pointers {
		w.conn.SetCursor(pointer, interaction)
	}
	w.mouseInteraction = interaction
}

func (w *Window) requestInputMethod(im core.InputMethod) {
	if !im.Enabled {
		w.disableIME()
		return
	}
	w.enableIME(im.Position, im.Purpose)

	if im.Preedit == nil || im.Preedit.Content == "" {
		w.preedit = nil
		return
	}
	if w.preedit == nil {
		w.preedit = &preedit{}
	}
	w.preedit.update(im.Position, *im.Preedit, w.renderer)
}

func (w *Window) enableIME(position core.Point, purpose core.Purpose) {
	next := platform.TextInputState{Position: position, Purpose: purpose}
	if w.ime != nil && *w.ime == next {
		return
	}
	w.ime = &next
	w.conn.SetInputMethod(w.surfaceID, w.ime)
}

func (w *Window) disableIME() {
	if w.ime != nil {
		w.ime = nil
		w.conn.SetInputMethod(w.surfaceID, nil)
	}
	w.preedit = nil
}

func (w *Window) drawPreedit() {
	if w.preedit == nil {
		return
	}
	w.preedit.draw(w.renderer, w.state.style.TextColor, w.state.style.BackgroundColor,
		core.NewRectangle(core.Origin, w.state.logicalSize()))
}
