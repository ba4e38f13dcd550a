// Package action defines the effects tasks send to the reactor.
package action

import (
	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/system"
)

// Action is an effect consumed by the reactor goroutine.
type Action interface {
	isAction()
}

// Output queues Message for the program's Update.
type Output struct {
	Message any
}

type ClipboardRead struct {
	Kind  core.ClipboardKind
	Reply chan<- core.ClipboardContents
}

type ClipboardWrite struct {
	Kind     core.ClipboardKind
	Contents string
}

// WindowGetSize replies with the logical size of ID. Reply is closed when the
// window does not exist.
type WindowGetSize struct {
	ID    core.WindowID
	Reply chan<- core.Size
}

type WindowGetScaleFactor struct {
	ID    core.WindowID
	Reply chan<- float64
}

// WindowGetLatest replies with the most recently opened window. Reply is
// closed when there is none.
type WindowGetLatest struct {
	Reply chan<- core.WindowID
}

// Open requests a layer surface. Done receives ID once the compositor has
// configured it, or is closed if the open fails or is cancelled.
type Open struct {
	ID       core.WindowID
	Settings core.LayerSettings
	Done     chan<- core.WindowID
}

type Close struct {
	ID core.WindowID
}

type QueryInformation struct {
	Reply chan<- system.Information
}

// Widget applies Operation to every window's UI tree.
type Widget struct {
	Operation core.Operation
}

type LoadFont struct {
	Bytes []byte
	Reply chan<- error
}

// Reload rebuilds every UI tree against the unchanged program.
type Reload struct{}

// Exit stops the reactor.
type Exit struct{}

func (Output) isAction()               {}
func (ClipboardRead) isAction()        {}
func (ClipboardWrite) isAction()       {}
func (WindowGetSize) isAction()        {}
func (WindowGetScaleFactor) isAction() {}
func (WindowGetLatest) isAction()      {}
func (Open) isAction()                 {}
func (Close) isAction()                {}
func (QueryInformation) isAction()     {}
func (Widget) isAction()               {}
func (LoadFont) isAction()             {}
func (Reload) isAction()               {}
func (Exit) isAction()                 {}
