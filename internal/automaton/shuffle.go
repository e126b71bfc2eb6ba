package automaton

import (
	"context"

	afaerrors "github.com/jacoelho/afa/errors"
	"github.com/jacoelho/afa/internal/algebra"
	"github.com/jacoelho/afa/internal/boolexpr"
)

// Shuffle returns an automaton for the interleavings of L(a) and L(b).
// Both operands must be free of universal branching.
//
// The product runs over pairs of states; each pair moves either side on its
// own. A pair is final when both sides accept.
func Shuffle[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a, b *Automaton[P]) (*Automaton[P], error) {
	a, b = orEpsilon(a), orEpsilon(b)
	if a.HasUniversalBranching() || b.HasUniversalBranching() {
		return nil, afaerrors.New(afaerrors.KindUnsupportedConstruct, "shuffle", "operand has universal branching")
	}
	left, err := RemoveEpsilonMoves(ctx, alg, a)
	if err != nil {
		return nil, err
	}
	right, err := RemoveEpsilonMoves(ctx, alg, b)
	if err != nil {
		return nil, err
	}
	if boolexpr.HasConst(left.initial) && left.initial != boolexpr.False ||
		boolexpr.HasConst(right.initial) && right.initial != boolexpr.False {
		return nil, afaerrors.New(afaerrors.KindUnsupportedConstruct, "shuffle", "constant initial configuration")
	}

	leftAccepting, rightAccepting := left.Accepting(), right.Accepting()
	p := &product{ids: make(map[[2]int]int)}
	var spec Spec[P]
	var disjuncts []boolexpr.Expr
	for _, l := range stateLeaves(left.initial) {
		for _, r := range stateLeaves(right.initial) {
			disjuncts = append(disjuncts, p.state(l, r))
		}
	}
	spec.Initial = boolexpr.MkOr(disjuncts...)

	for len(p.queue) > 0 {
		if err := algebra.Deadline(ctx, "shuffle"); err != nil {
			return nil, err
		}
		pair := p.queue[0]
		p.queue = p.queue[1:]
		from := p.ids[pair]
		l, r := pair[0], pair[1]
		if leftAccepting.Test(uint(l)) && rightAccepting.Test(uint(r)) {
			spec.Finals = append(spec.Finals, from)
		}
		for _, m := range left.inputs[l] {
			if boolexpr.HasConst(m.To) {
				return nil, afaerrors.New(afaerrors.KindUnsupportedConstruct, "shuffle", "constant move target")
			}
			var to []boolexpr.Expr
			for _, next := range stateLeaves(m.To) {
				to = append(to, p.state(next, r))
			}
			spec.Inputs = append(spec.Inputs, InputMove[P]{From: from, Guard: m.Guard, To: boolexpr.MkOr(to...)})
		}
		for _, m := range right.inputs[r] {
			if boolexpr.HasConst(m.To) {
				return nil, afaerrors.New(afaerrors.KindUnsupportedConstruct, "shuffle", "constant move target")
			}
			var to []boolexpr.Expr
			for _, next := range stateLeaves(m.To) {
				to = append(to, p.state(l, next))
			}
			spec.Inputs = append(spec.Inputs, InputMove[P]{From: from, Guard: m.Guard, To: boolexpr.MkOr(to...)})
		}
	}
	spec.MaxStateID = len(p.ids) - 1

	out, err := New(ctx, alg, spec)
	if err != nil {
		return nil, err
	}
	return Simplify(ctx, alg, out)
}

type product struct {
	ids   map[[2]int]int
	queue [][2]int
}

func (p *product) state(l, r int) boolexpr.Expr {
	key := [2]int{l, r}
	id, ok := p.ids[key]
	if !ok {
		id = len(p.ids)
		p.ids[key] = id
		p.queue = append(p.queue, key)
	}
	return boolexpr.NewState(id)
}

func stateLeaves(e boolexpr.Expr) []int {
	var out []int
	boolexpr.ForEachState(e, func(id int) { out = append(out, id) })
	return out
}
