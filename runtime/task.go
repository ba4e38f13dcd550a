// Package runtime runs the effects a program asks for. Tasks and
// subscriptions execute on their own goroutines and reach the reactor only
// by sending actions through the proxy channel.
package runtime

import (
	"context"
	"iter"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/runtime/action"
	"github.com/jakebf/layershell/system"
)

// unit is one pending piece of asynchronous work. It emits actions through
// emit, which blocks while the action channel is full.
type unit func(ctx context.Context, emit func(action.Action) error) error

// Task is what Update returns: actions that are ready now plus asynchronous
// units still to run. The zero Task does nothing.
type Task struct {
	ready []action.Action
	units []unit
}

// Ready returns the actions available without running anything.
func (t Task) Ready() []action.Action { return t.ready }

// Pending reports how many asynchronous units the task carries.
func (t Task) Pending() int { return len(t.units) }

// IsNone reports whether the task has no effect.
func (t Task) IsNone() bool { return len(t.ready) == 0 && len(t.units) == 0 }

// None returns a task with no effect.
func None() Task { return Task{} }

// Done produces msg immediately.
func Done(msg any) Task {
	return Effect(action.Output{Message: msg})
}

// Effect produces a raw action.
func Effect(a action.Action) Task {
	return Task{ready: []action.Action{a}}
}

// Perform runs f asynchronously and maps its result to a message.
func Perform[T any](f func(ctx context.Context) T, m func(T) any) Task {
	return Task{units: []unit{func(ctx context.Context, emit func(action.Action) error) error {
		v := f(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		return emit(action.Output{Message: m(v)})
	}}}
}

// Run maps every value of stream to a message until the stream ends.
func Run[T any](stream iter.Seq[T], m func(T) any) Task {
	return Task{units: []unit{func(ctx context.Context, emit func(action.Action) error) error {
		for v := range stream {
			if err := emit(action.Output{Message: m(v)}); err != nil {
				return err
			}
		}
		return nil
	}}}
}

// Batch combines tasks. Ready actions keep their order.
func Batch(tasks ...Task) Task {
	var out Task
	for _, t := range tasks {
		out.ready = append(out.ready, t.ready...)
		out.units = append(out.units, t.units...)
	}
	return out
}

// Map applies f to every message t produces.
func Map(t Task, f func(any) any) Task {
	out := Task{
		ready: make([]action.Action, len(t.ready)),
		units: make([]unit, len(t.units)),
	}
	for i, a := range t.ready {
		out.ready[i] = mapAction(a, f)
	}
	for i, u := range t.units {
		out.units[i] = func(ctx context.Context, emit func(action.Action) error) error {
			return u(ctx, func(a action.Action) error { return emit(mapAction(a, f)) })
		}
	}
	return out
}

func mapAction(a action.Action, f func(any) any) action.Action {
	if o, ok := a.(action.Output); ok {
		return action.Output{Message: f(o.Message)}
	}
	return a
}

// oneshot sends the action built by request and maps its single reply. A
// closed reply channel maps to the zero value with ok false; a nil message
// is not emitted.
func oneshot[T any](request func(chan<- T) action.Action, m func(v T, ok bool) any) Task {
	reply := make(chan T, 1)
	t := Effect(request(reply))
	if m == nil {
		return t
	}
	t.units = []unit{func(ctx context.Context, emit func(action.Action) error) error {
		select {
		case v, ok := <-reply:
			msg := m(v, ok)
			if msg == nil {
				return nil
			}
			return emit(action.Output{Message: msg})
		case <-ctx.Done():
			return ctx.Err()
		}
	}}
	return t
}

func wrapReply[T any](f func(T) any) func(T, bool) any {
	if f == nil {
		return nil
	}
	return func(v T, ok bool) any {
		if !ok {
			return nil
		}
		return f(v)
	}
}

// ─── Window and shell tasks ──────────────────────────────────────────────────

// OpenLayer opens a new layer surface. opened, when non-nil, maps the id to a
// message once the compositor has configured the surface.
func OpenLayer(settings core.LayerSettings, opened func(core.WindowID) any) (core.WindowID, Task) {
	id := core.NewWindowID()
	t := oneshot(func(done chan<- core.WindowID) action.Action {
		return action.Open{ID: id, Settings: settings, Done: done}
	}, wrapReply(opened))
	return id, t
}

func CloseLayer(id core.WindowID) Task { return Effect(action.Close{ID: id}) }

func Exit() Task { return Effect(action.Exit{}) }

func Reload() Task { return Effect(action.Reload{}) }

// Operate applies a widget operation to every window.
func Operate(op core.Operation) Task { return Effect(action.Widget{Operation: op}) }

// LoadFont loads font bytes into the compositor. loaded receives the load
// error, nil on success.
func LoadFont(font []byte, loaded func(error) any) Task {
	return oneshot(func(reply chan<- error) action.Action {
		return action.LoadFont{Bytes: font, Reply: reply}
	}, wrapReply(loaded))
}

// QueryInformation gathers system information off the reactor goroutine.
func QueryInformation(f func(system.Information) any) Task {
	return oneshot(func(reply chan<- system.Information) action.Action {
		return action.QueryInformation{Reply: reply}
	}, wrapReply(f))
}

func ReadClipboard(kind core.ClipboardKind, f func(contents string, ok bool) any) Task {
	var m func(core.ClipboardContents, bool) any
	if f != nil {
		m = func(c core.ClipboardContents, ok bool) any {
			if !ok {
				return nil
			}
			return f(c.Contents, c.OK)
		}
	}
	return oneshot(func(reply chan<- core.ClipboardContents) action.Action {
		return action.ClipboardRead{Kind: kind, Reply: reply}
	}, m)
}

func WriteClipboard(kind core.ClipboardKind, contents string) Task {
	return Effect(action.ClipboardWrite{Kind: kind, Contents: contents})
}

// GetSize maps the logical size of id. Nothing is produced if id is not open.
func GetSize(id core.WindowID, f func(core.Size) any) Task {
	return oneshot(func(reply chan<- core.Size) action.Action {
		return action.WindowGetSize{ID: id, Reply: reply}
	}, wrapReply(f))
}

func GetScaleFactor(id core.WindowID, f func(float64) any) Task {
	return oneshot(func(reply chan<- float64) action.Action {
		return action.WindowGetScaleFactor{ID: id, Reply: reply}
	}, wrapReply(f))
}

// GetLatest maps the most recently opened window, with ok false when no
// window is open.
func GetLatest(f func(id core.WindowID, ok bool) any) Task {
	var m func(core.WindowID, bool) any
	if f != nil {
		m = func(v core.WindowID, ok bool) any { return f(v, ok) }
	}
	return oneshot(func(reply chan<- core.WindowID) action.Action {
		return action.WindowGetLatest{Reply: reply}
	}, m)
}
