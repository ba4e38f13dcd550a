package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type focusState struct{ focused bool }

func (f *focusState) IsFocused() bool { return f.focused }
func (f *focusState) Focus()          { f.focused = true }
func (f *focusState) Unfocus()        { f.focused = false }

// walk applies op to the focusables the way the shell does: every pass over
// every tree, following chains.
func walk(op Operation, trees ...[]*focusState) {
	for op != nil {
		for _, tree := range trees {
			for i, s := range tree {
				op.Focusable(string(rune('a'+i)), Rectangle{}, s)
			}
		}
		outcome := op.Finish()
		if outcome.Kind != OutcomeChain {
			return
		}
		op = outcome.Next
	}
}

func focused(trees ...[]*focusState) []bool {
	var out []bool
	for _, tree := range trees {
		for _, s := range tree {
			out = append(out, s.focused)
		}
	}
	return out
}

func TestFocusID(t *testing.T) {
	tree := []*focusState{{focused: true}, {}, {}}
	op := FocusID("c")
	walk(op, tree)
	assert.Equal(t, []bool{false, false, true}, focused(tree))
	assert.Equal(t, OutcomeSome, op.Finish().Kind)
}

func TestFocusNextWrapsAcrossTrees(t *testing.T) {
	first := []*focusState{{}, {}}
	second := []*focusState{{focused: true}}

	walk(FocusNext(), first, second)
	assert.Equal(t, []bool{true, false, false}, focused(first, second))

	walk(FocusNext(), first, second)
	assert.Equal(t, []bool{false, true, false}, focused(first, second))
}

func TestFocusNextWithoutFocusables(t *testing.T) {
	op := FocusNext()
	walk(op)
	assert.Equal(t, OutcomeNone, op.Finish().Kind)
}
