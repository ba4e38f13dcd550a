// Package proxy carries actions from task goroutines to the reactor. It is a
// bounded multi-producer single-consumer queue with a level-triggered wake
// that the reactor selects on next to its other event sources.
package proxy

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the number of in-flight items a channel buffers.
const DefaultCapacity = 100

var (
	// ErrFull is returned by TrySend while the buffer is full.
	ErrFull = errors.New("proxy: channel full")
	// ErrClosed is returned when sending on a sink handle that was closed.
	ErrClosed = errors.New("proxy: sink closed")
	// ErrDisconnected is returned once the consumer has gone away.
	ErrDisconnected = errors.New("proxy: consumer disconnected")
)

type channel[T any] struct {
	items    chan T
	wake     chan struct{}
	done     chan struct{}
	terminal T

	mu        sync.Mutex
	senders   int
	finished  bool
	delivered bool
	closeOnce sync.Once
}

func (c *channel[T]) ping() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *channel[T]) isFinished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finished
}

// New returns a connected sink and source. terminal is what the source
// delivers, once, after every sink has been closed and the buffer drained.
func New[T any](capacity int, terminal T) (*Sink[T], *Source[T]) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &channel[T]{
		items:    make(chan T, capacity),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		terminal: terminal,
		senders:  1,
	}
	return &Sink[T]{ch: c}, &Source[T]{ch: c}
}

// ─── Sink ────────────────────────────────────────────────────────────────────

// Sink is one producer handle. Handles are safe for concurrent use; Clone
// creates another handle that keeps the channel open independently.
type Sink[T any] struct {
	ch     *channel[T]
	closed atomic.Bool
}

// Send enqueues v, waiting while the buffer is full. It returns ctx's error
// if ctx ends first, or ErrDisconnected if the source is closed.
func (s *Sink[T]) Send(ctx context.Context, v T) error {
	if s.closed.Load() {
		return ErrClosed
	}
	select {
	case <-s.ch.done:
		return ErrDisconnected
	default:
	}
	select {
	case s.ch.items <- v:
		s.ch.ping()
		return nil
	case <-s.ch.done:
		return ErrDisconnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend enqueues v without waiting.
func (s *Sink[T]) TrySend(v T) error {
	if s.closed.Load() {
		return ErrClosed
	}
	select {
	case <-s.ch.done:
		return ErrDisconnected
	default:
	}
	select {
	case s.ch.items <- v:
		s.ch.ping()
		return nil
	default:
		return ErrFull
	}
}

// Clone returns a new handle on the same channel. Cloning after the channel
// finished returns a closed handle.
func (s *Sink[T]) Clone() *Sink[T] {
	c := s.ch
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := &Sink[T]{ch: c}
	if c.finished {
		clone.closed.Store(true)
		return clone
	}
	c.senders++
	return clone
}

// Close releases this handle. Closing the last open handle finishes the
// channel and wakes the source. Close is idempotent per handle.
func (s *Sink[T]) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	c := s.ch
	c.mu.Lock()
	c.senders--
	last := c.senders == 0
	if last {
		c.finished = true
	}
	c.mu.Unlock()
	if last {
		c.ping()
	}
}

// ─── Source ──────────────────────────────────────────────────────────────────

// Source is the single consumer handle.
type Source[T any] struct {
	ch *channel[T]
}

// Wake fires whenever items may be waiting. Pings coalesce: one receive may
// stand for many sends.
func (s *Source[T]) Wake() <-chan struct{} {
	return s.ch.wake
}

// Drain hands at most capacity buffered items to handle and re-arms the wake
// when more remain. Once every sink is closed and the buffer is empty it
// hands over the terminal value exactly once. It reports whether the
// channel is still open.
func (s *Source[T]) Drain(handle func(T)) bool {
	c := s.ch
	c.mu.Lock()
	delivered := c.delivered
	c.mu.Unlock()
	if delivered {
		return false
	}
	for range cap(c.items) {
		select {
		case v := <-c.items:
			handle(v)
			continue
		default:
		}
		return s.finishIfDone(handle)
	}
	if len(c.items) > 0 || c.isFinished() {
		c.ping()
	}
	return true
}

func (s *Source[T]) finishIfDone(handle func(T)) bool {
	c := s.ch
	c.mu.Lock()
	if !c.finished || c.delivered || len(c.items) > 0 {
		c.mu.Unlock()
		return true
	}
	c.delivered = true
	c.mu.Unlock()
	handle(c.terminal)
	return false
}

// Close disconnects the consumer. Blocked and future sends fail with
// ErrDisconnected.
func (s *Source[T]) Close() {
	s.ch.closeOnce.Do(func() { close(s.ch.done) })
}
