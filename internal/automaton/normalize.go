package automaton

import (
	"context"

	"github.com/jacoelho/afa/internal/algebra"
	"github.com/jacoelho/afa/internal/boolexpr"
)

// Normalize returns an equivalent automaton in which the guards leaving
// each state are pairwise disjoint: one move per minterm of the state's
// guards, targeting the disjunction of the targets the minterm implies.
// Epsilon moves are kept.
func Normalize[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a *Automaton[P]) (*Automaton[P], error) {
	a = orEpsilon(a)
	spec := a.spec(0)
	spec.Inputs = nil
	for _, s := range a.States() {
		moves := a.inputs[s]
		if len(moves) == 0 {
			continue
		}
		guards := make([]P, len(moves))
		for i, m := range moves {
			guards[i] = m.Guard
		}
		minterms, err := alg.Minterms(ctx, guards)
		if err != nil {
			return nil, err
		}
		for _, mt := range minterms {
			var targets []boolexpr.Expr
			for i, m := range moves {
				if mt.Implies(i) {
					targets = append(targets, m.To)
				}
			}
			if len(targets) == 0 {
				continue
			}
			spec.Inputs = append(spec.Inputs, InputMove[P]{From: s, Guard: mt.Pred, To: boolexpr.MkOr(targets...)})
		}
	}
	return New(ctx, alg, spec)
}

// Complete returns an equivalent automaton in which every state has a move
// for every input value. Missing values lead to a fresh non-accepting sink
// that loops on True. The sink is added only when some state needs it.
func Complete[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a *Automaton[P]) (*Automaton[P], error) {
	a = orEpsilon(a)
	spec := a.spec(0)
	al := newAllocator(spec.MaxStateID)
	sink := -1
	for _, s := range a.States() {
		guards := make([]P, 0, len(a.inputs[s]))
		for _, m := range a.inputs[s] {
			guards = append(guards, m.Guard)
		}
		residual := alg.Not(alg.Or(guards...))
		ok, err := alg.IsSatisfiable(ctx, residual)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if sink < 0 {
			sink = al.fresh()
			spec.Inputs = append(spec.Inputs, InputMove[P]{From: sink, Guard: alg.True(), To: boolexpr.NewState(sink)})
		}
		spec.Inputs = append(spec.Inputs, InputMove[P]{From: s, Guard: residual, To: boolexpr.NewState(sink)})
	}
	spec.MaxStateID = al.highWater()
	return New(ctx, alg, spec)
}
