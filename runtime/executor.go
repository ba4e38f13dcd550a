package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrExecutor is returned by NewExecutor for an invalid concurrency limit.
var ErrExecutor = errors.New("runtime: invalid executor limit")

// Executor runs asynchronous work with a concurrency limit. Work never fails
// the group: errors are handed to the callback passed to Spawn.
type Executor struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
	spill  sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewExecutor returns an executor bound to ctx. A limit of zero means no
// limit; a negative limit is an error.
func NewExecutor(ctx context.Context, limit int) (*Executor, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrExecutor, limit)
	}
	ctx, cancel := context.WithCancel(ctx)
	e := &Executor{ctx: ctx, cancel: cancel}
	if limit > 0 {
		e.group.SetLimit(limit)
	}
	return e, nil
}

// Spawn runs f. When every slot is busy f is queued on a goroutine that
// waits for one, so Spawn never blocks the caller.
func (e *Executor) Spawn(f func(ctx context.Context) error, done func(error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	run := func() error {
		err := f(e.ctx)
		if done != nil {
			done(err)
		}
		return nil
	}
	if e.group.TryGo(run) {
		return
	}
	e.spill.Go(func() {
		if e.ctx.Err() != nil {
			return
		}
		e.group.Go(run)
	})
}

// Context is cancelled when the executor closes.
func (e *Executor) Context() context.Context { return e.ctx }

// Close cancels running work and waits for it to return.
func (e *Executor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.cancel()
	e.spill.Wait()
	_ = e.group.Wait()
}
