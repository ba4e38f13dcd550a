// Package shell runs a program on layer surfaces. A single reactor goroutine
// multiplexes platform events, actions sent by tasks and the redraw timer,
// feeds input to each window's UI tree, drives the program's update cycle
// and presents frames when the platform asks for them.
package shell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/joeycumines/go-catrate"
	"pkt.systems/pslog"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/graphics"
	"github.com/jakebf/layershell/platform"
	"github.com/jakebf/layershell/program"
	"github.com/jakebf/layershell/proxy"
	"github.com/jakebf/layershell/runtime"
	"github.com/jakebf/layershell/runtime/action"
)

// platformBurst bounds how many queued platform events one loop iteration
// dispatches before running the idle pass.
const platformBurst = 64

// Options configure Run. Connection, Compositor and Toolkit are required.
type Options struct {
	Connection platform.Connection
	Compositor graphics.Factory
	Toolkit    program.Toolkit
	Settings   graphics.Settings

	// Layer is the window opened at startup unless Daemon is set.
	Layer core.LayerSettings
	// Daemon keeps the shell running with no window open.
	Daemon bool

	Clipboard core.Clipboard
	Logger    pslog.Logger
	Clock     clock.Clock
	// ExecutorLimit caps concurrently running tasks. Zero means no limit.
	ExecutorLimit  int
	ActionCapacity int
}

func (o *Options) validate() error {
	switch {
	case o.Connection == nil:
		return errors.New("shell: no platform connection")
	case o.Compositor == nil:
		return errors.New("shell: no compositor factory")
	case o.Toolkit == nil:
		return errors.New("shell: no toolkit")
	}
	return nil
}

// Run drives p until it exits, the last window closes outside daemon mode,
// ctx ends or the platform connection goes away. Run does not close the
// connection.
func Run(ctx context.Context, p program.Program, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	s, err := newState(ctx, p, opts)
	if err != nil {
		return err
	}
	defer s.shutdown()
	return s.loop(ctx)
}

type windowEvent struct {
	window core.WindowID
	event  core.Event
}

type touchContact struct {
	window   core.WindowID
	position core.Point
}

type inProgressWindow struct {
	id       core.WindowID
	surface  platform.SurfaceID
	settings core.LayerSettings
	done     chan<- core.WindowID
}

// complete fires the completion signal with the window id.
func (w *inProgressWindow) complete() {
	if w.done == nil {
		return
	}
	select {
	case w.done <- w.id:
	default:
	}
}

// cancel closes the completion signal without a value.
func (w *inProgressWindow) cancel() {
	if w.done != nil {
		close(w.done)
	}
}

// State is the reactor. It is only ever touched from the goroutine running
// the loop.
type State struct {
	log       pslog.Logger
	conn      platform.Connection
	factory   graphics.Factory
	settings  graphics.Settings
	clipboard core.Clipboard
	clock     clock.Clock
	daemon    bool

	runtime      *runtime.Runtime
	source       *proxy.Source[action.Action]
	wrapper      *programWrapper
	compositor   graphics.Compositor
	pendingFonts []action.LoadFont

	windows    *WindowManager
	inProgress map[platform.SurfaceID]*inProgressWindow

	keyboards     map[platform.SeatID]platform.DeviceID
	pointers      map[platform.SeatID]platform.DeviceID
	touchDevices  map[platform.SeatID]platform.DeviceID
	keyboardFocus map[platform.DeviceID]core.WindowID
	touches       map[platform.DeviceID]map[int32]touchContact

	events   []windowEvent
	messages []any
	// stale is set when a tree reported itself outdated outside the idle
	// pass; the next pass rebuilds all trees.
	stale bool

	timer          wakeTimer
	presentLimiter *catrate.Limiter

	exiting bool
	err     error
}

func newState(ctx context.Context, p program.Program, opts Options) (*State, error) {
	log := opts.Logger
	if log == nil {
		log = pslog.Ctx(ctx)
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	clipboard := opts.Clipboard
	if clipboard == nil {
		clipboard = core.NullClipboard{}
	}
	capacity := opts.ActionCapacity
	if capacity <= 0 {
		capacity = proxy.DefaultCapacity
	}

	exec, err := runtime.NewExecutor(ctx, opts.ExecutorLimit)
	if err != nil {
		return nil, &Error{Kind: ExecutorCreationFailed, Err: err}
	}
	sink, source := proxy.New[action.Action](capacity, action.Exit{})
	// The runtime holds its own sink; once it closes, the source delivers Exit.
	defer sink.Close()
	rt := runtime.New(exec, sink, log, clk)

	s := &State{
		log:           log,
		conn:          opts.Connection,
		factory:       opts.Compositor,
		settings:      opts.Settings,
		clipboard:     clipboard,
		clock:         clk,
		daemon:        opts.Daemon,
		runtime:       rt,
		source:        source,
		wrapper:       newProgramWrapper(p, opts.Toolkit),
		windows:       NewWindowManager(opts.Connection),
		inProgress:    make(map[platform.SurfaceID]*inProgressWindow),
		keyboards:     make(map[platform.SeatID]platform.DeviceID),
		pointers:      make(map[platform.SeatID]platform.DeviceID),
		touchDevices:  make(map[platform.SeatID]platform.DeviceID),
		keyboardFocus: make(map[platform.DeviceID]core.WindowID),
		touches:       make(map[platform.DeviceID]map[int32]touchContact),
		timer:         wakeTimer{clock: clk},
		presentLimiter: catrate.NewLimiter(map[time.Duration]int{
			time.Second: 1,
			time.Minute: 10,
		}),
	}

	task := runtime.None()
	if b, ok := p.(program.Booter); ok {
		task = b.Boot()
	}
	if !opts.Daemon {
		_, open := runtime.OpenLayer(opts.Layer, nil)
		task = runtime.Batch(open, task)
	}
	rt.Run(task)
	rt.Track(p.Subscription())

	log.Info("shell started", "daemon", opts.Daemon, "executor_limit", opts.ExecutorLimit, "capacity", capacity)
	return s, nil
}

func (s *State) loop(ctx context.Context) error {
	events := s.conn.Events()
	for !s.exiting {
		select {
		case <-ctx.Done():
			s.log.Debug("shell context done", "err", ctx.Err())
			return nil
		case ev, ok := <-events:
			if !ok {
				return ErrConnectionClosed
			}
			s.handlePlatform(ev)
			for range platformBurst {
				select {
				case ev, ok := <-events:
					if !ok {
						return ErrConnectionClosed
					}
					s.handlePlatform(ev)
					continue
				default:
				}
				break
			}
		case <-s.source.Wake():
			s.source.Drain(s.runAction)
		case now := <-s.timer.C():
			s.onTimerWake(now)
		}
		if s.exiting {
			break
		}
		s.aboutToWait()
	}
	return s.err
}

// exit stops the loop after the current iteration. The first error wins.
func (s *State) exit(err error) {
	if !s.exiting {
		s.err = err
	}
	s.exiting = true
}

func (s *State) shutdown() {
	s.timer.disarm()
	for surface, pending := range s.inProgress {
		delete(s.inProgress, surface)
		s.conn.DestroySurface(surface)
		pending.cancel()
	}
	s.source.Close()
	s.runtime.Close()
	s.log.Debug("shell stopped", "windows", s.windows.Len())
}

func (s *State) pushEvent(id core.WindowID, ev core.Event) {
	s.events = append(s.events, windowEvent{window: id, event: ev})
}

// createCompositor builds the compositor from the first window. This is the
// one blocking wait on the reactor goroutine.
func (s *State) createCompositor(window graphics.RawWindow) error {
	ctx := context.Background()
	if timeout := s.settings.CompositorTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	compositor, err := s.factory(ctx, s.settings, window)
	if err != nil {
		return err
	}
	if compositor == nil {
		return fmt.Errorf("compositor factory returned nothing")
	}
	for _, font := range s.settings.Fonts {
		if err := compositor.LoadFont(font); err != nil {
			s.log.Warn("shell font load failed", "err", err)
		}
	}
	s.compositor = compositor
	for _, req := range s.pendingFonts {
		reply(req.Reply, compositor.LoadFont(req.Bytes))
	}
	s.pendingFonts = nil
	s.log.Debug("shell compositor created", "backend", compositor.FetchInformation().Backend)
	return nil
}
