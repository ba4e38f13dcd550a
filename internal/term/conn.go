// Package term is a terminal backend for the shell. Layer surfaces become
// panes stacked down the screen, input is decoded by bubbletea and frames
// are rasterized into styled cells with lipgloss.
package term

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"pkt.systems/pslog"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/graphics"
	"github.com/jakebf/layershell/platform"
)

const (
	seat     platform.SeatID   = 1
	keyboard platform.DeviceID = 1
	pointer  platform.DeviceID = 2

	// statusRows is the height of the status line under the panes.
	statusRows = 1
)

// Options configure Open.
type Options struct {
	Logger pslog.Logger
	// FrameInterval paces frame callbacks. Zero means 60 frames a second.
	FrameInterval time.Duration
	// Output is the terminal queried for its size. Defaults to os.Stdout.
	Output *os.File
	// ProgramOptions are appended to the alt screen and mouse options.
	ProgramOptions []tea.ProgramOption
}

type pane struct {
	id            platform.SurfaceID
	settings      core.LayerSettings
	x, y          int
	width, height int
	configured    bool
	frame         string
}

// Conn is a platform.Connection backed by the terminal.
type Conn struct {
	log      pslog.Logger
	program  *tea.Program
	output   *os.File
	keys     keyMap
	help     help.Model
	interval time.Duration
	started  time.Time

	events chan platform.Event
	notify chan struct{}
	done   chan struct{}
	stop   sync.Once

	repaintPending atomic.Bool

	mu         sync.Mutex
	queue      []platform.Event
	panes      []*pane
	nextID     platform.SurfaceID
	cols, rows int
	focus      platform.SurfaceID
	hover      platform.SurfaceID
	pressed    uint32
	frames     map[platform.SurfaceID]bool
	frameTimer *time.Timer
	cursor     core.Interaction
	ime        map[platform.SurfaceID]platform.TextInputState
}

func newConn(opts Options) *Conn {
	log := opts.Logger
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = time.Second / 60
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	c := &Conn{
		log:      log,
		output:   out,
		keys:     newKeyMap(),
		help:     help.New(),
		interval: interval,
		started:  time.Now(),
		events:   make(chan platform.Event, 64),
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		frames:   make(map[platform.SurfaceID]bool),
		ime:      make(map[platform.SurfaceID]platform.TextInputState),
	}
	c.mu.Lock()
	c.emit(platform.CapabilityAdded{Seat: seat, Capability: platform.CapabilityKeyboard, Device: keyboard})
	c.emit(platform.CapabilityAdded{Seat: seat, Capability: platform.CapabilityPointer, Device: pointer})
	c.emit(platform.OutputAdded{Name: outputName(out)})
	c.mu.Unlock()
	go c.pump()
	return c
}

func outputName(f *os.File) string {
	size, err := winsize(f)
	if err != nil || size.cols == 0 {
		return "tty"
	}
	return fmt.Sprintf("tty %dx%d", size.cols, size.rows)
}

// Open takes over the terminal. The connection ends when ctx is done, the
// quit binding is pressed or Close is called.
func Open(ctx context.Context, opts Options) (*Conn, error) {
	c := newConn(opts)
	programOpts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	}, opts.ProgramOptions...)
	c.program = tea.NewProgram(screen{c: c}, programOpts...)
	go func() {
		defer c.shutdown()
		if _, err := c.program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			c.log.Warn("term program stopped", "err", err)
		}
	}()
	return c, nil
}

func (c *Conn) shutdown() {
	c.stop.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.frameTimer != nil {
			c.frameTimer.Stop()
		}
		c.mu.Unlock()
	})
}

// emit queues an event for the shell. c.mu must be held.
func (c *Conn) emit(ev platform.Event) {
	c.queue = append(c.queue, ev)
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// pump moves queued events to the events channel so the terminal goroutine
// never blocks on the shell.
func (c *Conn) pump() {
	defer close(c.events)
	for {
		select {
		case <-c.notify:
		case <-c.done:
			return
		}
		c.mu.Lock()
		batch := c.queue
		c.queue = nil
		c.mu.Unlock()
		for _, ev := range batch {
			select {
			case c.events <- ev:
			case <-c.done:
				return
			}
		}
	}
}

func (c *Conn) Events() <-chan platform.Event { return c.events }

func (c *Conn) CreateLayerSurface(settings core.LayerSettings) (platform.SurfaceID, error) {
	select {
	case <-c.done:
		return 0, errors.New("term: connection closed")
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.panes = append(c.panes, &pane{id: id, settings: settings})
	if c.focus == 0 && settings.KeyboardInteractivity != core.KeyboardNone {
		c.focus = id
	}
	c.log.Debug("term surface created", "surface", uint64(id), "namespace", settings.Namespace)
	c.layout()
	return id, nil
}

func (c *Conn) DestroySurface(surface platform.SurfaceID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.paneIndex(surface)
	if i < 0 {
		return
	}
	c.panes = append(c.panes[:i], c.panes[i+1:]...)
	delete(c.frames, surface)
	delete(c.ime, surface)
	if c.hover == surface {
		c.hover = 0
	}
	if c.focus == surface {
		c.focus = 0
		c.focusFirst()
	}
	c.log.Debug("term surface destroyed", "surface", uint64(surface))
	c.layout()
	c.repaint()
}

func (c *Conn) RequestFrame(surface platform.SurfaceID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames[surface] = true
	if c.frameTimer == nil {
		c.frameTimer = time.AfterFunc(c.interval, c.flushFrames)
	}
}

func (c *Conn) flushFrames() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frameTimer = nil
	ms := uint32(time.Since(c.started).Milliseconds())
	for _, p := range c.panes {
		if c.frames[p.id] {
			c.emit(platform.Frame{Surface: p.id, Time: ms})
		}
	}
	clear(c.frames)
}

func (c *Conn) Commit(platform.SurfaceID) {}

// SetCursor records the requested pointer icon. Terminals draw their own
// pointer.
func (c *Conn) SetCursor(_ platform.DeviceID, icon core.Interaction) {
	c.mu.Lock()
	c.cursor = icon
	c.mu.Unlock()
}

func (c *Conn) SetInputMethod(surface platform.SurfaceID, state *platform.TextInputState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if state == nil {
		delete(c.ime, surface)
		return
	}
	c.ime[surface] = *state
}

// Close restores the terminal and ends the event stream.
func (c *Conn) Close() error {
	if c.program != nil {
		c.program.Quit()
		<-c.done
		return nil
	}
	c.shutdown()
	return nil
}

// Factory returns the compositor factory drawing into this terminal.
func (c *Conn) Factory() graphics.Factory {
	return func(_ context.Context, settings graphics.Settings, window graphics.RawWindow) (graphics.Compositor, error) {
		if _, ok := window.(platform.SurfaceID); !ok {
			return nil, fmt.Errorf("term: unexpected window handle %T", window)
		}
		return &Compositor{conn: c, settings: settings}, nil
	}
}

// setFrame stores the last presented frame of a surface.
func (c *Conn) setFrame(surface platform.SurfaceID, frame string) error {
	c.mu.Lock()
	i := c.paneIndex(surface)
	if i >= 0 {
		c.panes[i].frame = frame
	}
	c.mu.Unlock()
	if i < 0 {
		return graphics.ErrSurfaceLost
	}
	c.repaint()
	return nil
}

// repaint asks the terminal program to render again. Requests coalesce until
// the program handles one.
func (c *Conn) repaint() {
	if c.program == nil || !c.repaintPending.CompareAndSwap(false, true) {
		return
	}
	go c.program.Send(repaintMsg{})
}

func (c *Conn) paneIndex(surface platform.SurfaceID) int {
	for i, p := range c.panes {
		if p.id == surface {
			return i
		}
	}
	return -1
}

func (c *Conn) pane(surface platform.SurfaceID) *pane {
	if i := c.paneIndex(surface); i >= 0 {
		return c.panes[i]
	}
	return nil
}

// layout stacks the panes down the screen and configures every pane whose
// size changed. c.mu must be held.
func (c *Conn) layout() {
	if c.cols <= 0 || c.rows <= 0 {
		return
	}
	avail := max(c.rows-statusRows, 0)
	y := 0
	for _, p := range c.panes {
		s := p.settings
		width, height := int(s.Size.Width), int(s.Size.Height)
		if s.Anchor&(core.AnchorLeft|core.AnchorRight) == core.AnchorLeft|core.AnchorRight || width == 0 {
			width = c.cols
		}
		width = min(width, c.cols)
		top := y + int(s.Margin.Top)
		remaining := max(avail-top, 0)
		if s.Anchor&(core.AnchorTop|core.AnchorBottom) == core.AnchorTop|core.AnchorBottom || height == 0 {
			height = remaining
		}
		height = min(height, remaining)

		x := (c.cols - width) / 2
		switch {
		case s.Anchor&core.AnchorLeft != 0:
			x = int(s.Margin.Left)
		case s.Anchor&core.AnchorRight != 0:
			x = c.cols - width - int(s.Margin.Right)
		}
		p.x, p.y = min(max(x, 0), c.cols-width), top

		if !p.configured || width != p.width || height != p.height {
			first := !p.configured
			p.width, p.height, p.configured = width, height, true
			c.emit(platform.LayerConfigure{Surface: p.id, Width: uint32(width), Height: uint32(height)})
			if first && c.focus == p.id {
				c.emit(platform.KeyboardEnter{Keyboard: keyboard, Surface: p.id})
			}
		}
		y = top + height + int(s.Margin.Bottom)
	}
}

// focusFirst gives keyboard focus to the first pane that takes it. c.mu
// must be held.
func (c *Conn) focusFirst() {
	for _, p := range c.panes {
		if p.settings.KeyboardInteractivity != core.KeyboardNone {
			c.setFocus(p.id)
			return
		}
	}
}

// setFocus moves keyboard focus. c.mu must be held.
func (c *Conn) setFocus(surface platform.SurfaceID) {
	if surface == c.focus {
		return
	}
	if c.focus != 0 {
		c.emit(platform.KeyboardLeave{Keyboard: keyboard, Surface: c.focus})
	}
	c.focus = surface
	if p := c.pane(surface); p != nil && p.configured {
		c.emit(platform.KeyboardEnter{Keyboard: keyboard, Surface: surface})
	}
}
