package shell

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/graphics"
	"github.com/jakebf/layershell/platform"
	"github.com/jakebf/layershell/program"
	"github.com/jakebf/layershell/runtime"
)

// ─── Connection ──────────────────────────────────────────────────────────────

type fakeConn struct {
	mu        sync.Mutex
	events    chan platform.Event
	next      platform.SurfaceID
	createErr error
	created   []core.LayerSettings
	destroyed []platform.SurfaceID
	frames    []platform.SurfaceID
	commits   int
	cursors   map[platform.DeviceID]core.Interaction
	ime       map[platform.SurfaceID]*platform.TextInputState
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		events:  make(chan platform.Event, 256),
		cursors: make(map[platform.DeviceID]core.Interaction),
		ime:     make(map[platform.SurfaceID]*platform.TextInputState),
	}
}

func (c *fakeConn) Events() <-chan platform.Event { return c.events }

func (c *fakeConn) CreateLayerSurface(settings core.LayerSettings) (platform.SurfaceID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return 0, c.createErr
	}
	c.next++
	c.created = append(c.created, settings)
	return c.next, nil
}

func (c *fakeConn) DestroySurface(surface platform.SurfaceID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyed = append(c.destroyed, surface)
}

func (c *fakeConn) RequestFrame(surface platform.SurfaceID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, surface)
}

func (c *fakeConn) Commit(platform.SurfaceID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commits++
}

func (c *fakeConn) SetCursor(pointer platform.DeviceID, icon core.Interaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursors[pointer] = icon
}

func (c *fakeConn) SetInputMethod(surface platform.SurfaceID, state *platform.TextInputState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ime[surface] = state
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) frameRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *fakeConn) createdCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.created)
}

// ─── Graphics ────────────────────────────────────────────────────────────────

type fakeRenderer struct {
	quads []core.Rectangle
	texts []graphics.Text
}

func (r *fakeRenderer) FillQuad(bounds core.Rectangle, _ core.Color) { r.quads = append(r.quads, bounds) }
func (r *fakeRenderer) FillText(text graphics.Text)                 { r.texts = append(r.texts, text) }
func (r *fakeRenderer) WithLayer(_ core.Rectangle, f func())         { f() }
func (r *fakeRenderer) DefaultTextSize() float32                     { return 16 }

func (r *fakeRenderer) MeasureText(content string, size float32) core.Size {
	return core.Size{Width: float32(len([]rune(content))) * size / 2, Height: size}
}

type fakeSurface struct {
	window        graphics.RawWindow
	width, height uint32
}

type fakeCompositor struct {
	presentErr error
	presents   int
	configured []core.PhysicalSize
	fonts      int
	renderers  []*fakeRenderer
}

func (c *fakeCompositor) CreateSurface(window graphics.RawWindow, width, height uint32) (graphics.Surface, error) {
	return &fakeSurface{window: window, width: width, height: height}, nil
}

func (c *fakeCompositor) CreateRenderer() graphics.Renderer {
	r := &fakeRenderer{}
	c.renderers = append(c.renderers, r)
	return r
}

func (c *fakeCompositor) ConfigureSurface(surface graphics.Surface, width, height uint32) {
	s := surface.(*fakeSurface)
	s.width, s.height = width, height
	c.configured = append(c.configured, core.PhysicalSize{Width: width, Height: height})
}

func (c *fakeCompositor) Present(graphics.Renderer, graphics.Surface, graphics.Viewport, core.Color) error {
	c.presents++
	return c.presentErr
}

func (c *fakeCompositor) LoadFont([]byte) error {
	c.fonts++
	return nil
}

func (c *fakeCompositor) FetchInformation() graphics.Information {
	return graphics.Information{Adapter: "fake", Backend: "test"}
}

func factoryFor(c *fakeCompositor) graphics.Factory {
	return func(context.Context, graphics.Settings, graphics.RawWindow) (graphics.Compositor, error) {
		return c, nil
	}
}

// ─── Program ─────────────────────────────────────────────────────────────────

type fakeProgram struct {
	count    int
	scale    float64
	updates  []any
	onUpdate func(msg any) runtime.Task
	sub      runtime.Subscription
}

func (p *fakeProgram) View(id core.WindowID) program.Element {
	return fmt.Sprintf("%s:%d", id, p.count)
}

func (p *fakeProgram) Update(msg any) runtime.Task {
	p.updates = append(p.updates, msg)
	if msg == "inc" {
		p.count++
	}
	if p.onUpdate != nil {
		return p.onUpdate(msg)
	}
	return runtime.None()
}

func (p *fakeProgram) Subscription() runtime.Subscription { return p.sub }
func (p *fakeProgram) Title(core.WindowID) string         { return "counter" }
func (p *fakeProgram) Theme(core.WindowID) core.Theme     { return core.ThemeDark }
func (p *fakeProgram) Style(t core.Theme) core.Style      { return core.DefaultStyle(t) }

func (p *fakeProgram) ScaleFactor(core.WindowID) float64 {
	if p.scale == 0 {
		return 1
	}
	return p.scale
}

// ─── Toolkit ─────────────────────────────────────────────────────────────────

type fakeCache struct {
	builds int
}

type fakeToolkit struct {
	builds int
	uis    []*fakeUI
	// state is returned by every tree's next update.
	state program.UIState
	// emit is appended to the messages of the next update that sees an event.
	emit []any
}

func (k *fakeToolkit) Build(view program.Element, size core.Size, cache program.Cache, _ graphics.Renderer) program.UserInterface {
	k.builds++
	ui := &fakeUI{kit: k, view: view.(string), size: size}
	if c, ok := cache.(fakeCache); ok {
		ui.cache = c
	}
	ui.cache.builds++
	k.uis = append(k.uis, ui)
	return ui
}

type fakeUI struct {
	kit       *fakeToolkit
	view      string
	size      core.Size
	cache     fakeCache
	events    []core.Event
	draws     int
	relayouts int
	ops       int
}

func (u *fakeUI) Update(events []core.Event, _ core.Cursor, _ graphics.Renderer, _ core.Clipboard, messages *[]any) (program.UIState, []core.Status) {
	u.events = append(u.events, events...)
	statuses := make([]core.Status, len(events))
	for i, ev := range events {
		if _, ok := ev.(core.KeyPressed); ok {
			statuses[i] = core.StatusCaptured
		}
	}
	if len(events) > 0 && len(u.kit.emit) > 0 {
		*messages = append(*messages, u.kit.emit...)
		u.kit.emit = nil
	}
	return u.kit.state, statuses
}

func (u *fakeUI) Draw(r graphics.Renderer, _ core.Theme, style core.Style, _ core.Cursor) {
	u.draws++
	r.FillText(graphics.Text{Content: u.view, Bounds: core.NewRectangle(core.Origin, u.size), Color: style.TextColor})
}

func (u *fakeUI) Operate(_ graphics.Renderer, op core.Operation) {
	u.ops++
	op.Container(u.view, core.NewRectangle(core.Origin, u.size))
}

func (u *fakeUI) Relayout(size core.Size, _ graphics.Renderer) program.UserInterface {
	u.relayouts++
	u.size = size
	return u
}

func (u *fakeUI) IntoCache() program.Cache { return u.cache }

// ─── Fixture ─────────────────────────────────────────────────────────────────

type fixture struct {
	s     *State
	conn  *fakeConn
	comp  *fakeCompositor
	prog  *fakeProgram
	kit   *fakeToolkit
	clock *clock.Mock
}

// newFixture builds a reactor without running its loop; tests drive it
// through its handlers.
func newFixture(t *testing.T, configure ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		conn:  newFakeConn(),
		comp:  &fakeCompositor{},
		prog:  &fakeProgram{},
		kit:   &fakeToolkit{},
		clock: clock.NewMock(),
	}
	opts := Options{
		Connection: f.conn,
		Compositor: factoryFor(f.comp),
		Toolkit:    f.kit,
		Settings:   graphics.DefaultSettings(),
		Layer:      core.DefaultLayerSettings(),
		Clock:      f.clock,
	}
	for _, c := range configure {
		c(&opts)
	}
	s, err := newState(context.Background(), f.prog, opts)
	require.NoError(t, err)
	t.Cleanup(s.shutdown)
	f.s = s
	return f
}

// drain applies every queued action.
func (f *fixture) drain() {
	for {
		select {
		case <-f.s.source.Wake():
			f.s.source.Drain(f.s.runAction)
		default:
			return
		}
	}
}

// configure completes the open handshake of surface.
func (f *fixture) configure(t *testing.T, surface platform.SurfaceID, width, height uint32) *Window {
	t.Helper()
	f.s.handlePlatform(platform.LayerConfigure{Surface: surface, Width: width, Height: height})
	w, ok := f.s.windows.GetByAlias(surface)
	require.True(t, ok, "surface %d has no window", surface)
	return w
}

// openFirst drains the startup open and configures it.
func (f *fixture) openFirst(t *testing.T) *Window {
	t.Helper()
	f.drain()
	require.Equal(t, 1, f.conn.createdCount())
	return f.configure(t, 1, 640, 480)
}

// openAnother runs an open task and configures the new surface.
func (f *fixture) openAnother(t *testing.T, width, height uint32) *Window {
	t.Helper()
	_, task := runtime.OpenLayer(core.DefaultLayerSettings(), nil)
	f.s.runtime.Run(task)
	f.drain()
	return f.configure(t, platform.SurfaceID(f.conn.createdCount()), width, height)
}

// eventsFor returns the buffered events of id without consuming them.
func (f *fixture) eventsFor(id core.WindowID) []core.Event {
	var out []core.Event
	for _, e := range f.s.events {
		if e.window == id {
			out = append(out, e.event)
		}
	}
	return out
}

func (f *fixture) uiFor(t *testing.T, id core.WindowID) *fakeUI {
	t.Helper()
	ui, ok := f.s.wrapper.ui(id)
	require.True(t, ok)
	return ui.(*fakeUI)
}
