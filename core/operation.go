package core

// Focusable is the focus state a widget exposes to operations.
type Focusable interface {
	IsFocused() bool
	Focus()
	Unfocus()
}

// Operation walks the widgets of every window's UI tree. After each walk the
// shell calls Finish; an OutcomeChain result is applied in the same pass.
type Operation interface {
	Container(id string, bounds Rectangle)
	Focusable(id string, bounds Rectangle, state Focusable)
	Text(id string, bounds Rectangle, text string)
	Finish() Outcome
}

// OutcomeKind tells the shell what to do after an operation.
type OutcomeKind uint8

const (
	OutcomeNone OutcomeKind = iota
	OutcomeSome
	OutcomeChain
)

// Outcome is the result of Operation.Finish.
type Outcome struct {
	Kind OutcomeKind
	Next Operation
}

// Chain continues with next.
func Chain(next Operation) Outcome {
	return Outcome{Kind: OutcomeChain, Next: next}
}

// ─── Focus operations ────────────────────────────────────────────────────────

// FocusID focuses the focusable widget with the given id and unfocuses the
// rest.
func FocusID(id string) Operation {
	return &focusOp{target: id}
}

type focusOp struct {
	target string
	found  bool
}

func (o *focusOp) Container(string, Rectangle) {}
func (o *focusOp) Text(string, Rectangle, string) {}

func (o *focusOp) Focusable(id string, _ Rectangle, state Focusable) {
	if id != "" && id == o.target {
		state.Focus()
		o.found = true
		return
	}
	state.Unfocus()
}

func (o *focusOp) Finish() Outcome {
	if o.found {
		return Outcome{Kind: OutcomeSome}
	}
	return Outcome{}
}

// FocusNext moves focus to the next focusable widget across the walk. It
// counts focusables first, then chains into the operation that moves focus.
func FocusNext() Operation {
	return &countFocusables{focused: -1}
}

type countFocusables struct {
	total   int
	focused int
}

func (o *countFocusables) Container(string, Rectangle) {}
func (o *countFocusables) Text(string, Rectangle, string) {}

func (o *countFocusables) Focusable(_ string, _ Rectangle, state Focusable) {
	if state.IsFocused() {
		o.focused = o.total
	}
	o.total++
}

func (o *countFocusables) Finish() Outcome {
	if o.total == 0 {
		return Outcome{}
	}
	target := 0
	if o.focused >= 0 {
		target = (o.focused + 1) % o.total
	}
	return Chain(&focusIndex{target: target})
}

type focusIndex struct {
	target  int
	current int
}

func (o *focusIndex) Container(string, Rectangle) {}
func (o *focusIndex) Text(string, Rectangle, string) {}

func (o *focusIndex) Focusable(_ string, _ Rectangle, state Focusable) {
	if o.current == o.target {
		state.Focus()
	} else {
		state.Unfocus()
	}
	o.current++
}

func (o *focusIndex) Finish() Outcome {
	return Outcome{Kind: OutcomeSome}
}
