// Package core holds the value types shared by the shell, its collaborators
// and applications: window identifiers, geometry, the input event taxonomy,
// redraw requests and layer settings.
package core

import (
	"fmt"
	"sync/atomic"
)

// WindowID identifies a window for the lifetime of the process.
type WindowID uint64

var lastWindowID atomic.Uint64

// NewWindowID returns a process-unique id. Ids increase monotonically.
func NewWindowID() WindowID {
	return WindowID(lastWindowID.Add(1))
}

func (id WindowID) String() string {
	return fmt.Sprintf("window#%d", uint64(id))
}

// Status reports whether a UI tree consumed an event.
type Status uint8

const (
	StatusIgnored Status = iota
	StatusCaptured
)

func (s Status) String() string {
	if s == StatusCaptured {
		return "captured"
	}
	return "ignored"
}

// Merge returns StatusCaptured if either status captured the event.
func (s Status) Merge(other Status) Status {
	if s == StatusCaptured || other == StatusCaptured {
		return StatusCaptured
	}
	return StatusIgnored
}
