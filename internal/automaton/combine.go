package automaton

import (
	"context"

	"github.com/jacoelho/afa/internal/algebra"
	"github.com/jacoelho/afa/internal/boolexpr"
)

// Union returns an automaton for L(a) ∪ L(b).
//
// b is renumbered above a, both sides' finals feed a fresh final state by
// epsilon, and lookahead-final states of both sides are kept.
func Union[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a, b *Automaton[P]) (*Automaton[P], error) {
	a, b = orEpsilon(a), orEpsilon(b)
	k := a.maxStateID + 1
	left, right := a.spec(0), b.spec(k)
	al := newAllocator(max(left.MaxStateID, right.MaxStateID))
	final := al.fresh()

	spec := Spec[P]{
		Initial:         boolexpr.MkOr(left.Initial, right.Initial),
		Inputs:          append(left.Inputs, right.Inputs...),
		Epsilons:        append(left.Epsilons, right.Epsilons...),
		Finals:          []int{final},
		LookaheadFinals: append(left.LookaheadFinals, right.LookaheadFinals...),
	}
	for _, f := range append(left.Finals, right.Finals...) {
		spec.Epsilons = append(spec.Epsilons, EpsilonMove{From: f, To: boolexpr.NewState(final)})
	}
	spec.MaxStateID = al.highWater()
	return New(ctx, alg, spec)
}

// Concatenate returns an automaton for L(a)·L(b).
//
// The zero automaton is the identity on either side. Each final state of a
// gets an epsilon move to b's initial configuration; a's lookahead-final
// states stay lookahead-final so lookaheads opened in a keep their
// obligations across the join.
func Concatenate[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a, b *Automaton[P]) (*Automaton[P], error) {
	if a.IsZero() {
		return b, nil
	}
	if b.IsZero() {
		return a, nil
	}
	k := a.maxStateID + 1
	left, right := a.spec(0), b.spec(k)
	spec := Spec[P]{
		Initial:         left.Initial,
		Inputs:          append(left.Inputs, right.Inputs...),
		Epsilons:        append(left.Epsilons, right.Epsilons...),
		Finals:          right.Finals,
		LookaheadFinals: append(left.LookaheadFinals, right.LookaheadFinals...),
		MaxStateID:      max(left.MaxStateID, right.MaxStateID),
	}
	for _, f := range left.Finals {
		spec.Epsilons = append(spec.Epsilons, EpsilonMove{From: f, To: right.Initial})
	}
	return New(ctx, alg, spec)
}

// Star returns an automaton for L(a)*.
//
// A fresh state is both initial and the only final state; it moves by
// epsilon into a, and a's finals move by epsilon back to it.
func Star[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a *Automaton[P]) (*Automaton[P], error) {
	if a.IsZero() {
		return Epsilon[P](), nil
	}
	inner := a.spec(0)
	al := newAllocator(inner.MaxStateID)
	loop := al.fresh()

	spec := Spec[P]{
		Initial:         boolexpr.NewState(loop),
		Inputs:          inner.Inputs,
		Epsilons:        append(inner.Epsilons, EpsilonMove{From: loop, To: inner.Initial}),
		Finals:          []int{loop},
		LookaheadFinals: inner.LookaheadFinals,
	}
	for _, f := range inner.Finals {
		spec.Epsilons = append(spec.Epsilons, EpsilonMove{From: f, To: boolexpr.NewState(loop)})
	}
	spec.MaxStateID = al.highWater()
	return New(ctx, alg, spec)
}

// Concat folds Concatenate over as, starting from the zero automaton.
func Concat[P, S any](ctx context.Context, alg algebra.Algebra[P, S], as ...*Automaton[P]) (*Automaton[P], error) {
	var out *Automaton[P]
	for _, a := range as {
		var err error
		if out, err = Concatenate(ctx, alg, out, a); err != nil {
			return nil, err
		}
	}
	return orEpsilon(out), nil
}
