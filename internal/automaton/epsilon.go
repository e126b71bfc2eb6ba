package automaton

import (
	"context"

	"github.com/jacoelho/afa/internal/algebra"
	"github.com/jacoelho/afa/internal/boolexpr"
)

// step is the one-step behaviour of a configuration: the input moves it
// can take and whether it accepts the empty word. final is set when the
// acceptance goes through a final state rather than only through
// lookahead-final ones. Moves are kept merged by target.
type step[P any] struct {
	order   []string
	moves   map[string]InputMove[P]
	accepts bool
	final   bool
}

func newStep[P any]() *step[P] {
	return &step[P]{moves: make(map[string]InputMove[P])}
}

// addMove merges guard → to into st. It reports whether the behaviour grew.
func addMove[P, S any](ctx context.Context, alg algebra.Algebra[P, S], st *step[P], guard P, to boolexpr.Expr) (bool, error) {
	key := to.Key()
	old, ok := st.moves[key]
	if !ok {
		st.order = append(st.order, key)
		st.moves[key] = InputMove[P]{Guard: guard, To: to}
		return true, nil
	}
	grows, err := alg.IsSatisfiable(ctx, alg.And(guard, alg.Not(old.Guard)))
	if err != nil || !grows {
		return false, err
	}
	old.Guard = alg.Or(old.Guard, guard)
	st.moves[key] = old
	return true, nil
}

// stepper computes one-step behaviours of configurations from per-state
// behaviours.
type stepper[P, S any] struct {
	alg    algebra.Algebra[P, S]
	states map[int]*step[P]
}

func (sp *stepper[P, S]) of(ctx context.Context, e boolexpr.Expr) (*step[P], error) {
	switch v := e.(type) {
	case boolexpr.State:
		if st, ok := sp.states[int(v)]; ok {
			return st, nil
		}
		return newStep[P](), nil
	case boolexpr.Const:
		st := newStep[P]()
		if v {
			st.accepts, st.final = true, true
			st.order = []string{boolexpr.True.Key()}
			st.moves[boolexpr.True.Key()] = InputMove[P]{Guard: sp.alg.True(), To: boolexpr.True}
		}
		return st, nil
	case *boolexpr.Or:
		l, err := sp.of(ctx, v.L)
		if err != nil {
			return nil, err
		}
		r, err := sp.of(ctx, v.R)
		if err != nil {
			return nil, err
		}
		out := newStep[P]()
		out.accepts = l.accepts || r.accepts
		out.final = l.final || r.final
		for _, side := range []*step[P]{l, r} {
			for _, key := range side.order {
				m := side.moves[key]
				if _, err := addMove(ctx, sp.alg, out, m.Guard, m.To); err != nil {
					return nil, err
				}
			}
		}
		return out, nil
	case *boolexpr.And:
		l, err := sp.of(ctx, v.L)
		if err != nil {
			return nil, err
		}
		r, err := sp.of(ctx, v.R)
		if err != nil {
			return nil, err
		}
		out := newStep[P]()
		out.accepts = l.accepts && r.accepts
		out.final = out.accepts && (l.final || r.final)
		for _, lk := range l.order {
			lm := l.moves[lk]
			for _, rk := range r.order {
				rm := r.moves[rk]
				guard := sp.alg.And(lm.Guard, rm.Guard)
				ok, err := sp.alg.IsSatisfiable(ctx, guard)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
				if _, err := addMove(ctx, sp.alg, out, guard, boolexpr.MkAnd(lm.To, rm.To)); err != nil {
					return nil, err
				}
			}
		}
		return out, nil
	default:
		return newStep[P](), nil
	}
}

// RemoveEpsilonMoves returns an equivalent automaton without epsilon moves.
//
// Every state takes over the one-step behaviour of its epsilon targets,
// computed as a least fixpoint; conjunctive targets contribute the pairwise
// conjunction of their operands' moves. A state becomes final when its
// closure accepts the empty word through a final state, and lookahead-final
// when it accepts only through lookahead-final ones.
func RemoveEpsilonMoves[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a *Automaton[P]) (*Automaton[P], error) {
	a = orEpsilon(a)
	if a.IsEpsilonFree() {
		return a, nil
	}
	sp, err := closure(ctx, alg, a)
	if err != nil {
		return nil, err
	}
	spec := Spec[P]{
		Initial:         a.initial,
		LookaheadFinals: a.LookaheadFinals(),
		MaxStateID:      a.maxStateID,
	}
	for _, s := range a.States() {
		st := sp.states[s]
		switch {
		case a.IsLookaheadFinal(s):
		case st.final:
			spec.Finals = append(spec.Finals, s)
		case st.accepts:
			spec.LookaheadFinals = append(spec.LookaheadFinals, s)
		}
		for _, key := range st.order {
			m := st.moves[key]
			spec.Inputs = append(spec.Inputs, InputMove[P]{From: s, Guard: m.Guard, To: m.To})
		}
	}
	return New(ctx, alg, spec)
}

// closure computes the one-step behaviour of every state of a, following
// epsilon moves.
func closure[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a *Automaton[P]) (*stepper[P, S], error) {
	sp := &stepper[P, S]{alg: alg, states: make(map[int]*step[P])}
	for _, s := range a.States() {
		st := newStep[P]()
		st.final = a.IsFinal(s)
		st.accepts = st.final || a.IsLookaheadFinal(s)
		for _, m := range a.inputs[s] {
			if _, err := addMove(ctx, alg, st, m.Guard, m.To); err != nil {
				return nil, err
			}
		}
		sp.states[s] = st
	}
	for changed := true; changed; {
		if err := algebra.Deadline(ctx, "remove-epsilon"); err != nil {
			return nil, err
		}
		changed = false
		for _, s := range a.States() {
			st := sp.states[s]
			for _, e := range a.epsilons[s] {
				target, err := sp.of(ctx, e.To)
				if err != nil {
					return nil, err
				}
				if target.accepts && !st.accepts {
					st.accepts = true
					changed = true
				}
				if target.final && !st.final {
					st.final = true
					changed = true
				}
				for _, key := range target.order {
					m := target.moves[key]
					grew, err := addMove(ctx, alg, st, m.Guard, m.To)
					if err != nil {
						return nil, err
					}
					changed = changed || grew
				}
			}
		}
	}
	return sp, nil
}

// RemoveEmptyWord returns an automaton for L(a) \ {ε}.
//
// a is kept as is, epsilon moves and conjunctive joins included, so final
// states still work as join points when the result is concatenated. A
// fresh non-final start state takes over the one-step moves of a's
// initial configuration.
func RemoveEmptyWord[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a *Automaton[P]) (*Automaton[P], error) {
	a = orEpsilon(a)
	sp, err := closure(ctx, alg, a)
	if err != nil {
		return nil, err
	}
	first, err := sp.of(ctx, a.initial)
	if err != nil {
		return nil, err
	}
	spec := a.spec(0)
	al := newAllocator(spec.MaxStateID)
	start := al.fresh()
	spec.Initial = boolexpr.NewState(start)
	for _, key := range first.order {
		m := first.moves[key]
		spec.Inputs = append(spec.Inputs, InputMove[P]{From: start, Guard: m.Guard, To: m.To})
	}
	spec.MaxStateID = al.highWater()
	return New(ctx, alg, spec)
}
