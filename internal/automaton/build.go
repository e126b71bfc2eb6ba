package automaton

import (
	"context"

	"github.com/jacoelho/afa/internal/algebra"
	"github.com/jacoelho/afa/internal/boolexpr"
)

// Empty returns the automaton accepting nothing.
func Empty[P any]() *Automaton[P] {
	return &Automaton[P]{
		initial:         boolexpr.False,
		states:          idSet(nil),
		finals:          idSet(nil),
		lookaheadFinals: idSet(nil),
		inputs:          map[int][]InputMove[P]{},
		epsilons:        map[int][]EpsilonMove{},
		maxStateID:      -1,
	}
}

// Epsilon returns the automaton accepting only the empty word.
func Epsilon[P any]() *Automaton[P] {
	return &Automaton[P]{
		initial:         boolexpr.NewState(0),
		states:          idSet([]int{0}),
		finals:          idSet([]int{0}),
		lookaheadFinals: idSet(nil),
		inputs:          map[int][]InputMove[P]{},
		epsilons:        map[int][]EpsilonMove{},
		maxStateID:      0,
	}
}

// Universal returns the automaton accepting every word.
func Universal[P, S any](alg algebra.Algebra[P, S]) *Automaton[P] {
	a := Epsilon[P]()
	a.inputs[0] = []InputMove[P]{{From: 0, Guard: alg.True(), To: boolexpr.NewState(0)}}
	return a
}

// Predicate returns the automaton accepting the one-value words whose
// value satisfies p.
func Predicate[P, S any](ctx context.Context, alg algebra.Algebra[P, S], p P) (*Automaton[P], error) {
	return New(ctx, alg, Spec[P]{
		Initial:    boolexpr.NewState(0),
		Inputs:     []InputMove[P]{{From: 0, Guard: p, To: boolexpr.NewState(1)}},
		Finals:     []int{1},
		MaxStateID: 1,
	})
}

// orEpsilon maps the zero automaton to Epsilon.
func orEpsilon[P any](a *Automaton[P]) *Automaton[P] {
	if a.IsZero() {
		return Epsilon[P]()
	}
	return a
}
