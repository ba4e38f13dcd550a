package shell

import (
	"errors"
	"fmt"
)

// ErrConnectionClosed is returned by Run when the platform connection goes
// away while the shell is running.
var ErrConnectionClosed = errors.New("shell: platform connection closed")

// ErrorKind classifies construction failures.
type ErrorKind uint8

const (
	// ExecutorCreationFailed means the task executor could not be created.
	ExecutorCreationFailed ErrorKind = iota + 1
	// GraphicsCreationFailed means the compositor could not be created.
	GraphicsCreationFailed
)

func (k ErrorKind) String() string {
	switch k {
	case ExecutorCreationFailed:
		return "the task executor could not be created"
	case GraphicsCreationFailed:
		return "the graphics context could not be created"
	}
	return "unknown error"
}

// Error is a construction failure returned by Run. The cause is kept for
// errors.Is and errors.As.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Kind == e.Kind
}
