package shell

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jakebf/layershell/core"
)

// wakeTimer is the reactor's single redraw timer. It only ever moves to an
// earlier deadline between wakes.
type wakeTimer struct {
	clock    clock.Clock
	timer    *clock.Timer
	deadline time.Time
}

func (t *wakeTimer) C() <-chan time.Time {
	if t.timer == nil {
		return nil
	}
	return t.timer.C
}

func (t *wakeTimer) armed() (time.Time, bool) {
	return t.deadline, t.timer != nil
}

func (t *wakeTimer) arm(at time.Time) {
	t.disarm()
	t.deadline = at
	t.timer = t.clock.Timer(max(at.Sub(t.clock.Now()), 0))
}

func (t *wakeTimer) disarm() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.deadline = time.Time{}
}

// fired clears the timer after its channel delivered.
func (t *wakeTimer) fired() {
	t.timer = nil
	t.deadline = time.Time{}
}

// scheduleWakeIfNeeded arms the timer for the earliest scheduled redraw if
// that is earlier than the current deadline.
func (s *State) scheduleWakeIfNeeded() {
	next, ok := s.windows.RedrawAt()
	if !ok {
		return
	}
	if current, armed := s.timer.armed(); armed && !current.After(next) {
		return
	}
	s.timer.arm(next)
}

// onTimerWake promotes every window whose scheduled redraw is due and rearms
// the timer for the next one.
func (s *State) onTimerWake(now time.Time) {
	s.timer.fired()
	s.windows.Each(func(_ core.WindowID, w *Window) {
		if at, ok := w.redrawAt.Scheduled(); ok && !at.After(now) {
			w.requestRedraw(core.NextFrame)
		}
	})
	if next, ok := s.windows.RedrawAt(); ok {
		s.timer.arm(next)
	}
}
