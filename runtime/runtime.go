package runtime

import (
	"context"
	"errors"
	"sync"

	"github.com/benbjohnson/clock"
	"pkt.systems/pslog"

	"github.com/jakebf/layershell/proxy"
	"github.com/jakebf/layershell/runtime/action"
)

const inboxDepth = 128

// Runtime runs tasks and keeps the program's subscriptions alive. All
// methods except the running work itself are called from the reactor
// goroutine.
type Runtime struct {
	exec  *Executor
	sink  *proxy.Sink[action.Action]
	log   pslog.Logger
	clock clock.Clock

	subs    map[string]*running
	wg      sync.WaitGroup
	dropped uint64
}

type running struct {
	cancel context.CancelFunc
	inbox  chan Event
}

// New returns a runtime sending through its own clone of sink.
func New(exec *Executor, sink *proxy.Sink[action.Action], log pslog.Logger, clk clock.Clock) *Runtime {
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Runtime{
		exec:  exec,
		sink:  sink.Clone(),
		log:   log,
		clock: clk,
		subs:  make(map[string]*running),
	}
}

// Run starts t. Ready actions are enqueued in order without blocking; if the
// channel fills up the rest are sent, still in order, from a spawned unit.
func (r *Runtime) Run(t Task) {
	for i, a := range t.ready {
		err := r.sink.TrySend(a)
		if err == nil {
			continue
		}
		if !errors.Is(err, proxy.ErrFull) {
			r.log.Debug("runtime action dropped", "err", err)
			break
		}
		rest := t.ready[i:]
		r.exec.Spawn(func(ctx context.Context) error {
			for _, a := range rest {
				if err := r.sink.Send(ctx, a); err != nil {
					return err
				}
			}
			return nil
		}, r.report)
		break
	}
	for _, u := range t.units {
		r.exec.Spawn(func(ctx context.Context) error {
			return u(ctx, func(a action.Action) error { return r.sink.Send(ctx, a) })
		}, r.report)
	}
}

// Spawn runs f on the executor. Close waits for it to return.
func (r *Runtime) Spawn(f func(ctx context.Context)) {
	r.exec.Spawn(func(ctx context.Context) error {
		f(ctx)
		return nil
	}, nil)
}

func (r *Runtime) report(err error) {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, proxy.ErrDisconnected) {
		return
	}
	r.log.Warn("runtime task failed", "err", err)
}

// Track installs s: recipes whose id is new are started, recipes whose id
// disappeared are cancelled, the rest keep running untouched.
func (r *Runtime) Track(s Subscription) {
	seen := make(map[string]struct{}, len(s.recipes))
	for _, recipe := range s.recipes {
		if _, dup := seen[recipe.ID]; dup {
			continue
		}
		seen[recipe.ID] = struct{}{}
		if _, ok := r.subs[recipe.ID]; ok {
			continue
		}
		r.start(recipe)
	}
	for id, sub := range r.subs {
		if _, ok := seen[id]; !ok {
			sub.cancel()
			delete(r.subs, id)
			r.log.Trace("runtime subscription stopped", "id", id)
		}
	}
}

func (r *Runtime) start(recipe Recipe) {
	ctx, cancel := context.WithCancel(r.exec.Context())
	inbox := make(chan Event, inboxDepth)
	r.subs[recipe.ID] = &running{cancel: cancel, inbox: inbox}
	env := Env{
		Events: inbox,
		Clock:  r.clock,
		Emit: func(msg any) error {
			return r.sink.Send(ctx, action.Output{Message: msg})
		},
	}
	r.log.Trace("runtime subscription started", "id", recipe.ID)
	r.wg.Go(func() {
		defer cancel()
		r.report(recipe.Run(ctx, env))
	})
}

// Subscriptions reports how many recipes are running.
func (r *Runtime) Subscriptions() int { return len(r.subs) }

// Broadcast hands ev to every running recipe without blocking.
func (r *Runtime) Broadcast(ev Event) {
	dropped := 0
	for _, sub := range r.subs {
		select {
		case sub.inbox <- ev:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		r.dropped += uint64(dropped)
		r.log.Trace("runtime broadcast dropped", "count", dropped, "total", r.dropped)
	}
}

// Close cancels every subscription and task and waits for them.
func (r *Runtime) Close() {
	for id, sub := range r.subs {
		sub.cancel()
		delete(r.subs, id)
	}
	r.exec.Close()
	r.wg.Wait()
	r.sink.Close()
}
