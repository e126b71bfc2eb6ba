package automaton

import (
	"context"

	"github.com/jacoelho/afa/internal/algebra"
	"github.com/jacoelho/afa/internal/boolexpr"
)

// PositiveLookAhead returns an automaton that accepts exactly the empty
// continuation at its own position while requiring the remainder of the
// input to be in L(a).
//
// A fresh state n moves by epsilon to a's initial configuration conjoined
// with a fresh continuation state c. c is the only final state; a's final
// and lookahead-final states become lookahead-final, so the branch checking
// a accepts at end of input without acting as a join point for whatever is
// concatenated after the lookahead. Bodies that should match only a prefix
// of the remainder must end in Σ*.
func PositiveLookAhead[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a *Automaton[P]) (*Automaton[P], error) {
	a = orEpsilon(a)
	inner := a.spec(0)
	al := newAllocator(inner.MaxStateID)
	n, c := al.fresh(), al.fresh()

	return New(ctx, alg, Spec[P]{
		Initial:         boolexpr.NewState(n),
		Inputs:          inner.Inputs,
		Epsilons:        append(inner.Epsilons, EpsilonMove{From: n, To: boolexpr.MkAnd(inner.Initial, boolexpr.NewState(c))}),
		Finals:          []int{c},
		LookaheadFinals: append(inner.Finals, inner.LookaheadFinals...),
		MaxStateID:      al.highWater(),
	})
}
