// Package widget is a small retained toolkit: views are trees of the element
// types below, laid out top to bottom and painted through a
// graphics.Renderer.
package widget

import (
	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/program"
)

// Column stacks its children vertically.
type Column struct {
	ID       string
	Children []program.Element
	Spacing  float32
	Padding  core.Padding
}

// Text is a static block of text. Content may span several lines.
type Text struct {
	ID      string
	Content string
	// Size overrides the renderer default when non-zero.
	Size float32
}

// Button produces OnPress when clicked, tapped, or activated with Enter or
// Space while focused. A nil OnPress disables it.
type Button struct {
	ID      string
	Label   string
	OnPress any
}

// TextInput is a single-line editor. Its content is owned by the program:
// every edit produces OnInput with the new value, and the next view is
// expected to carry it back in Value.
type TextInput struct {
	ID          string
	Placeholder string
	Value       string
	OnInput     func(string) any
	OnSubmit    any
	Secure      bool
}

// Markdown renders its source with glamour.
type Markdown struct {
	ID     string
	Source string
	// Style is a glamour standard style. Empty uses the toolkit's.
	Style string
}

// Col is shorthand for a Column without spacing or padding.
func Col(children ...program.Element) Column {
	return Column{Children: children}
}
