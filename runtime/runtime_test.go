package runtime

import (
	"context"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/proxy"
	"github.com/jakebf/layershell/runtime/action"
)

type harness struct {
	rt    *Runtime
	src   *proxy.Source[action.Action]
	sink  *proxy.Sink[action.Action]
	clock *clock.Mock
	queue []action.Action
}

func newHarness(t *testing.T, capacity, limit int) *harness {
	t.Helper()
	exec, err := NewExecutor(context.Background(), limit)
	require.NoError(t, err)
	sink, src := proxy.New[action.Action](capacity, action.Exit{})
	mock := clock.NewMock()
	h := &harness{rt: New(exec, sink, nil, mock), src: src, sink: sink, clock: mock}
	t.Cleanup(func() {
		h.rt.Close()
		sink.Close()
	})
	return h
}

// next waits for the next action on the channel.
func (h *harness) next(t *testing.T) action.Action {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for len(h.queue) == 0 {
		h.src.Drain(func(a action.Action) { h.queue = append(h.queue, a) })
		if len(h.queue) > 0 {
			break
		}
		select {
		case <-h.src.Wake():
		case <-deadline:
			t.Fatal("timed out waiting for an action")
		}
	}
	a := h.queue[0]
	h.queue = h.queue[1:]
	return a
}

func TestNewExecutorRejectsNegativeLimit(t *testing.T) {
	_, err := NewExecutor(context.Background(), -1)
	assert.ErrorIs(t, err, ErrExecutor)
}

func TestDoneIsReady(t *testing.T) {
	task := Done("hi")
	assert.Equal(t, []action.Action{action.Output{Message: "hi"}}, task.Ready())
	assert.Zero(t, task.Pending())
	assert.True(t, None().IsNone())
}

func TestBatchKeepsOrder(t *testing.T) {
	task := Batch(Done(1), Exit(), Done(2))
	assert.Equal(t, []action.Action{
		action.Output{Message: 1},
		action.Exit{},
		action.Output{Message: 2},
	}, task.Ready())
}

func TestMapRewritesOutputs(t *testing.T) {
	task := Map(Batch(Done(1), Reload()), func(m any) any { return m.(int) * 10 })
	assert.Equal(t, []action.Action{action.Output{Message: 10}, action.Reload{}}, task.Ready())
}

func TestRunSendsReadyActions(t *testing.T) {
	h := newHarness(t, 4, 0)
	h.rt.Run(Done("a"))
	assert.Equal(t, action.Output{Message: "a"}, h.next(t))
}

func TestRunSpillsWhenFull(t *testing.T) {
	h := newHarness(t, 1, 0)
	h.rt.Run(Batch(Done(1), Done(2), Done(3)))

	var got []any
	for len(got) < 3 {
		got = append(got, h.next(t).(action.Output).Message)
	}
	assert.Equal(t, []any{1, 2, 3}, got)
}

func TestPerform(t *testing.T) {
	h := newHarness(t, 4, 2)
	h.rt.Run(Perform(func(context.Context) int { return 21 }, func(v int) any { return v * 2 }))
	assert.Equal(t, action.Output{Message: 42}, h.next(t))
}

func TestRunStream(t *testing.T) {
	h := newHarness(t, 4, 1)
	h.rt.Run(Run(slices.Values([]string{"x", "y"}), func(s string) any { return s }))
	assert.Equal(t, action.Output{Message: "x"}, h.next(t))
	assert.Equal(t, action.Output{Message: "y"}, h.next(t))
}

func TestOpenLayerCompletes(t *testing.T) {
	h := newHarness(t, 4, 0)
	settings := core.DefaultLayerSettings()
	id, task := OpenLayer(settings, func(id core.WindowID) any { return id })
	h.rt.Run(task)

	open, ok := h.next(t).(action.Open)
	require.True(t, ok)
	assert.Equal(t, id, open.ID)
	assert.Equal(t, settings, open.Settings)

	open.Done <- id
	assert.Equal(t, action.Output{Message: id}, h.next(t))
}

func TestOpenLayerCancelledProducesNothing(t *testing.T) {
	h := newHarness(t, 4, 0)
	_, task := OpenLayer(core.DefaultLayerSettings(), func(id core.WindowID) any { return id })
	h.rt.Run(task)

	open := h.next(t).(action.Open)
	close(open.Done)
	h.rt.Run(Done("after"))
	assert.Equal(t, action.Output{Message: "after"}, h.next(t))
}

func TestGetLatestReportsMissing(t *testing.T) {
	h := newHarness(t, 4, 0)
	h.rt.Run(GetLatest(func(id core.WindowID, ok bool) any { return ok }))
	req := h.next(t).(action.WindowGetLatest)
	close(req.Reply)
	assert.Equal(t, action.Output{Message: false}, h.next(t))
}

func TestTrackStartsAndStops(t *testing.T) {
	h := newHarness(t, 8, 0)
	var stopped atomic.Bool
	sub := Stream("s", func(ctx context.Context, emit func(any) error) error {
		if err := emit("started"); err != nil {
			return err
		}
		<-ctx.Done()
		stopped.Store(true)
		return nil
	})

	h.rt.Track(sub)
	assert.Equal(t, action.Output{Message: "started"}, h.next(t))

	h.rt.Track(sub)
	assert.Equal(t, 1, h.rt.Subscriptions())

	h.rt.Track(NoSubscription())
	assert.Equal(t, 0, h.rt.Subscriptions())
	assert.Eventually(t, stopped.Load, time.Second, 5*time.Millisecond)
}

func TestListenForwardsIgnoredInteractions(t *testing.T) {
	h := newHarness(t, 8, 0)
	h.rt.Track(Listen())

	captured := Interaction{Window: 1, Event: core.CursorLeft{}, Status: core.StatusCaptured}
	ignored := Interaction{Window: 1, Event: core.CursorEntered{}, Status: core.StatusIgnored}
	h.rt.Broadcast(captured)
	h.rt.Broadcast(OutputAdded{Name: "DP-1"})
	h.rt.Broadcast(ignored)

	assert.Equal(t, action.Output{Message: ignored}, h.next(t))
}

func TestEveryTicksOnClock(t *testing.T) {
	h := newHarness(t, 8, 0)
	h.rt.Track(Every(time.Second, func(now time.Time) any { return "tick" }))

	assert.Eventually(t, func() bool {
		h.clock.Add(time.Second)
		var got bool
		h.src.Drain(func(a action.Action) { got = got || a == action.Output{Message: "tick"} })
		return got
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMapSubscriptionPrefixesID(t *testing.T) {
	sub := MapSubscription(Listen(), "win", func(m any) any { return m })
	require.Len(t, sub.Recipes(), 1)
	assert.Equal(t, "win/listen/ignored", sub.Recipes()[0].ID)
}

func TestCloseStopsUnits(t *testing.T) {
	h := newHarness(t, 4, 1)
	started := make(chan struct{})
	h.rt.Run(Perform(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}, func(err error) any { return err }))
	<-started

	done := make(chan struct{})
	go func() {
		h.rt.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
}

func TestCloseWaitsForSpawnedWork(t *testing.T) {
	h := newHarness(t, 4, 0)
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	h.rt.Spawn(func(context.Context) {
		close(started)
		<-release
		finished.Store(true)
	})
	<-started

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	h.rt.Close()
	assert.True(t, finished.Load())
}
