package automaton

import (
	"context"

	"github.com/jacoelho/afa/internal/algebra"
	"github.com/jacoelho/afa/internal/boolexpr"
)

// Simplify replaces dead states by False and drops what becomes
// unreachable. A state is dead when no finite run from it reaches an
// accepting configuration: its least-fixpoint distance to the accepting
// states stays unbounded, where disjunctions take the nearest operand and
// conjunctions the farthest.
func Simplify[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a *Automaton[P]) (*Automaton[P], error) {
	a = orEpsilon(a)
	states := a.States()
	unbounded := len(states) + 2
	dist := make(map[int]int, len(states))
	accepting := a.Accepting()
	for _, s := range states {
		if accepting.Test(uint(s)) {
			dist[s] = 0
		} else {
			dist[s] = unbounded
		}
	}

	var measure func(e boolexpr.Expr) int
	measure = func(e boolexpr.Expr) int {
		switch v := e.(type) {
		case boolexpr.State:
			if d, ok := dist[int(v)]; ok {
				return d
			}
			return unbounded
		case boolexpr.Const:
			if v {
				return 0
			}
			return unbounded
		case *boolexpr.And:
			return max(measure(v.L), measure(v.R))
		case *boolexpr.Or:
			return min(measure(v.L), measure(v.R))
		default:
			return unbounded
		}
	}

	for changed := true; changed; {
		if err := algebra.Deadline(ctx, "simplify"); err != nil {
			return nil, err
		}
		changed = false
		for _, s := range states {
			best := dist[s]
			for _, m := range a.inputs[s] {
				best = min(best, measure(m.To)+1)
			}
			for _, m := range a.epsilons[s] {
				best = min(best, measure(m.To)+1)
			}
			if best < dist[s] {
				dist[s] = best
				changed = true
			}
		}
	}

	live := func(id int) boolexpr.Expr {
		if dist[id] >= unbounded {
			return boolexpr.False
		}
		return boolexpr.NewState(id)
	}
	spec := Spec[P]{
		Initial:         boolexpr.Substitute(a.initial, live),
		MaxStateID:      a.maxStateID,
		Finals:          a.Finals(),
		LookaheadFinals: a.LookaheadFinals(),
	}
	if spec.Initial == boolexpr.False {
		return Empty[P](), nil
	}
	for _, s := range states {
		if dist[s] >= unbounded {
			continue
		}
		for _, m := range a.inputs[s] {
			spec.Inputs = append(spec.Inputs, InputMove[P]{From: s, Guard: m.Guard, To: boolexpr.Substitute(m.To, live)})
		}
		for _, m := range a.epsilons[s] {
			spec.Epsilons = append(spec.Epsilons, EpsilonMove{From: s, To: boolexpr.Substitute(m.To, live)})
		}
	}
	return New(ctx, alg, spec)
}
