package automaton

import (
	"context"

	afaerrors "github.com/jacoelho/afa/errors"
	"github.com/jacoelho/afa/internal/algebra"
	"github.com/jacoelho/afa/internal/boolexpr"
)

// Negate returns an automaton for the complement of L(a). a must be
// epsilon-free.
//
// The automaton is normalized and completed, then every move target and
// the initial configuration are dualized. Final and lookahead-final states
// both count as accepting, so the new final states are exactly the states
// that accepted neither way; the result has no lookahead-final states.
func Negate[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a *Automaton[P]) (*Automaton[P], error) {
	a = orEpsilon(a)
	if !a.IsEpsilonFree() {
		return nil, afaerrors.New(afaerrors.KindUnsupportedConstruct, "negate", "automaton has epsilon moves")
	}
	switch a.initial {
	case boolexpr.False:
		return Universal(alg), nil
	case boolexpr.True:
		return Empty[P](), nil
	}
	n, err := Normalize(ctx, alg, a)
	if err != nil {
		return nil, err
	}
	c, err := Complete(ctx, alg, n)
	if err != nil {
		return nil, err
	}

	spec := Spec[P]{
		Initial:    boolexpr.Dual(c.initial),
		MaxStateID: c.maxStateID,
	}
	accepting := c.Accepting()
	for _, s := range c.States() {
		if !accepting.Test(uint(s)) {
			spec.Finals = append(spec.Finals, s)
		}
		for _, m := range c.inputs[s] {
			spec.Inputs = append(spec.Inputs, InputMove[P]{From: s, Guard: m.Guard, To: boolexpr.Dual(m.To)})
		}
	}
	return New(ctx, alg, spec)
}

// Complement removes epsilon moves and negates.
func Complement[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a *Automaton[P]) (*Automaton[P], error) {
	free, err := RemoveEpsilonMoves(ctx, alg, a)
	if err != nil {
		return nil, err
	}
	return Negate(ctx, alg, free)
}
