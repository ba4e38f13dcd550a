package core

import (
	"fmt"
	"time"
)

// RedrawKind is the state of a window's redraw schedule.
type RedrawKind uint8

const (
	// RedrawWait means no redraw is scheduled.
	RedrawWait RedrawKind = iota
	// RedrawAt means a timer wake will promote the window at RedrawRequest.At.
	RedrawAt
	// RedrawNextFrame means a frame callback was requested from the compositor.
	RedrawNextFrame
)

// RedrawRequest is both what a UI tree asks for and what a window tracks.
type RedrawRequest struct {
	Kind RedrawKind
	At   time.Time
}

var (
	Wait      = RedrawRequest{Kind: RedrawWait}
	NextFrame = RedrawRequest{Kind: RedrawNextFrame}
)

// RedrawAtTime schedules a redraw at t.
func RedrawAtTime(t time.Time) RedrawRequest {
	return RedrawRequest{Kind: RedrawAt, At: t}
}

func (r RedrawRequest) IsWait() bool      { return r.Kind == RedrawWait }
func (r RedrawRequest) IsNextFrame() bool { return r.Kind == RedrawNextFrame }

// Scheduled returns the instant of a RedrawAt request.
func (r RedrawRequest) Scheduled() (time.Time, bool) {
	if r.Kind != RedrawAt {
		return time.Time{}, false
	}
	return r.At, true
}

// Combine merges a new request into the current one. NextFrame is sticky,
// At keeps the earliest instant and Wait never cancels a pending redraw.
func (r RedrawRequest) Combine(next RedrawRequest) RedrawRequest {
	switch {
	case r.Kind == RedrawNextFrame:
		return r
	case next.Kind == RedrawNextFrame:
		return next
	case next.Kind == RedrawWait:
		return r
	case r.Kind == RedrawAt && r.At.Before(next.At):
		return r
	default:
		return next
	}
}

func (r RedrawRequest) String() string {
	switch r.Kind {
	case RedrawAt:
		return fmt.Sprintf("at(%s)", r.At.Format(time.RFC3339Nano))
	case RedrawNextFrame:
		return "next-frame"
	default:
		return "wait"
	}
}
