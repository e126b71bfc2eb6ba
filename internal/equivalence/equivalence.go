// Package equivalence decides language equivalence and emptiness of
// alternating automata by bisimulation up to congruence.
package equivalence

import (
	"context"
	"slices"
	"time"

	"github.com/bits-and-blooms/bitset"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	afaerrors "github.com/jacoelho/afa/errors"
	"github.com/jacoelho/afa/internal/algebra"
	"github.com/jacoelho/afa/internal/automaton"
	"github.com/jacoelho/afa/internal/boolexpr"
)

// Result is the verdict of a query. Witness is set only when the
// languages differ: it is a word exactly one side accepts.
type Result[S any] struct {
	Witness    []S
	Equivalent bool
}

// IsEquivalent decides whether a and b accept the same language.
func IsEquivalent[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a, b *automaton.Automaton[P], opts ...Option) (Result[S], error) {
	o := buildOptions(opts)
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	ctx, span := tracer.Start(ctx, "equivalence.IsEquivalent",
		trace.WithAttributes(
			attribute.Int("left.states", a.StateCount()),
			attribute.Int("right.states", b.StateCount()),
		),
	)
	defer span.End()

	start := time.Now()
	res, pairs, err := bisimulate(ctx, alg, a, b, o)
	queryDuration.WithLabelValues("bisimulation").Observe(time.Since(start).Seconds())
	pairsTotal.Add(float64(pairs))
	span.SetAttributes(attribute.Int("pairs", pairs))

	if err != nil {
		queriesTotal.WithLabelValues(resultError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "equivalence query failed")
		o.logger.Debug("equivalence query failed", "pairs", pairs, "error", err)
		return Result[S]{}, err
	}
	if res.Equivalent {
		queriesTotal.WithLabelValues(resultEquivalent).Inc()
	} else {
		queriesTotal.WithLabelValues(resultInequivalent).Inc()
		span.SetAttributes(attribute.Int("witness.length", len(res.Witness)))
	}
	span.SetStatus(codes.Ok, "")
	o.logger.Debug("equivalence query done",
		"equivalent", res.Equivalent,
		"pairs", pairs,
		"duration", time.Since(start),
	)
	return res, nil
}

// IsEmpty decides whether a accepts nothing. When it does accept
// something, the witness is an accepted word.
func IsEmpty[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a *automaton.Automaton[P], opts ...Option) (Result[S], error) {
	return IsEquivalent(ctx, alg, a, automaton.Empty[P](), opts...)
}

// space is the shared transition space of two epsilon-free automata, the
// second renumbered above the first.
type space[P any] struct {
	moves     map[int][]automaton.InputMove[P]
	accepting *bitset.BitSet
	offset    int
}

func newSpace[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a, b *automaton.Automaton[P]) (*space[P], boolexpr.Expr, boolexpr.Expr, error) {
	left, err := automaton.RemoveEpsilonMoves(ctx, alg, a)
	if err != nil {
		return nil, nil, nil, err
	}
	right, err := automaton.RemoveEpsilonMoves(ctx, alg, b)
	if err != nil {
		return nil, nil, nil, err
	}
	k := left.MaxStateID() + 1
	sp := &space[P]{
		moves:     make(map[int][]automaton.InputMove[P]),
		accepting: left.Accepting(),
		offset:    k,
	}
	for _, s := range left.States() {
		sp.moves[s] = left.InputMoves(s)
	}
	for _, s := range right.States() {
		for _, m := range right.InputMoves(s) {
			sp.moves[s+k] = append(sp.moves[s+k], automaton.InputMove[P]{From: s + k, Guard: m.Guard, To: boolexpr.Offset(m.To, k)})
		}
	}
	for _, s := range right.Finals() {
		sp.accepting.Set(uint(s + k))
	}
	for _, s := range right.LookaheadFinals() {
		sp.accepting.Set(uint(s + k))
	}
	return sp, left.Initial(), boolexpr.Offset(right.Initial(), k), nil
}

func bisimulate[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a, b *automaton.Automaton[P], o options) (Result[S], int, error) {
	sp, c1, c2, err := newSpace(ctx, alg, a, b)
	if err != nil {
		return Result[S]{}, 0, err
	}
	rel := newSimilar(sp.accepting)
	if !rel.add(c1, c2) {
		return Result[S]{Witness: []S{}}, 0, nil
	}
	var work worklist[S]
	work.push(c1, c2, []S{})

	pairs := 0
	for work.Len() > 0 {
		if err := algebra.Deadline(ctx, "equivalence"); err != nil {
			return Result[S]{}, pairs, err
		}
		pairs++
		if o.maxPairs > 0 && pairs > o.maxPairs {
			return Result[S]{}, pairs, afaerrors.Newf(afaerrors.KindTimeout, "equivalence", "explored more than %d pairs", o.maxPairs)
		}
		item := work.pop()
		if pairs%1024 == 0 {
			o.logger.Debug("equivalence search progress",
				"pairs", pairs,
				"pending", work.Len(),
				"sat_queries", rel.queries,
			)
		}

		var guards []P
		var owners []automaton.InputMove[P]
		mentioned := boolexpr.States(item.left)
		mentioned.InPlaceUnion(boolexpr.States(item.right))
		for i, ok := mentioned.NextSet(0); ok; i, ok = mentioned.NextSet(i + 1) {
			for _, m := range sp.moves[int(i)] {
				guards = append(guards, m.Guard)
				owners = append(owners, m)
			}
		}
		if len(guards) == 0 {
			continue
		}
		minterms, err := alg.Minterms(ctx, guards)
		if err != nil {
			return Result[S]{}, pairs, err
		}
		for _, mt := range minterms {
			value, err := alg.GenerateWitness(ctx, mt.Pred)
			if err != nil {
				return Result[S]{}, pairs, err
			}
			succ := successor(owners, mt)
			left := boolexpr.Substitute(item.left, succ)
			right := boolexpr.Substitute(item.right, succ)
			witness := append(slices.Clone(item.witness), value)
			if rel.isMember(left, right) {
				continue
			}
			if !rel.add(left, right) {
				return Result[S]{Witness: witness}, pairs, nil
			}
			work.push(left, right, witness)
		}
	}
	return Result[S]{Equivalent: true}, pairs, nil
}

// successor maps each state to the disjunction of the targets of its moves
// whose guard contains the minterm.
func successor[P any](moves []automaton.InputMove[P], mt algebra.Minterm[P]) func(int) boolexpr.Expr {
	targets := make(map[int][]boolexpr.Expr)
	for i, m := range moves {
		if mt.Implies(i) {
			targets[m.From] = append(targets[m.From], m.To)
		}
	}
	return func(id int) boolexpr.Expr {
		return boolexpr.MkOr(targets[id]...)
	}
}
