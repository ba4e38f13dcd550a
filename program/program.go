// Package program is the boundary between the shell and an application: the
// Program the shell drives and the UI trees a Toolkit builds from its views.
package program

import (
	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/graphics"
	"github.com/jakebf/layershell/runtime"
)

// Element is the description of a view. Its concrete type belongs to the
// toolkit that builds it.
type Element any

// Program is an application. The shell calls every method from its reactor
// goroutine; Update is the only one allowed to mutate the program.
type Program interface {
	View(id core.WindowID) Element
	Update(msg any) runtime.Task
	Subscription() runtime.Subscription
	Title(id core.WindowID) string
	Theme(id core.WindowID) core.Theme
	Style(theme core.Theme) core.Style
	ScaleFactor(id core.WindowID) float64
}

// Booter is implemented by programs that start with a task.
type Booter interface {
	Boot() runtime.Task
}

// Cache is the inert state of a UI tree. It holds no reference to the
// program it was built from and survives program mutations.
type Cache any

// UIState is the outcome of a UI tree update. Outdated means the tree no
// longer matches the program and must be rebuilt through its cache.
type UIState struct {
	Outdated         bool
	MouseInteraction core.Interaction
	RedrawRequest    core.RedrawRequest
	InputMethod      core.InputMethod
}

// UserInterface is a live UI tree. It is only valid while the program it was
// built from is unchanged.
type UserInterface interface {
	// Update feeds events to the tree and appends produced messages. It
	// returns one status per event.
	Update(events []core.Event, cursor core.Cursor, renderer graphics.Renderer, clipboard core.Clipboard, messages *[]any) (UIState, []core.Status)
	Draw(renderer graphics.Renderer, theme core.Theme, style core.Style, cursor core.Cursor)
	Operate(renderer graphics.Renderer, op core.Operation)
	// Relayout returns the tree laid out against a new logical size.
	Relayout(size core.Size, renderer graphics.Renderer) UserInterface
	IntoCache() Cache
}

// Toolkit builds UI trees. A nil cache builds a fresh tree.
type Toolkit interface {
	Build(view Element, size core.Size, cache Cache, renderer graphics.Renderer) UserInterface
}
