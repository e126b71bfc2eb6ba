package equivalence

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bits-and-blooms/bitset"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	afaerrors "github.com/jacoelho/afa/errors"
	"github.com/jacoelho/afa/internal/algebra"
	"github.com/jacoelho/afa/internal/automaton"
	"github.com/jacoelho/afa/internal/boolexpr"
)

// AreReverseEquivalent decides equivalence of two automata without
// universal branching by running Hopcroft-Karp over the subset
// construction of their reversals. It gives no witness.
func AreReverseEquivalent[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a, b *automaton.Automaton[P], opts ...Option) (bool, error) {
	o := buildOptions(opts)
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	ctx, span := tracer.Start(ctx, "equivalence.AreReverseEquivalent")
	defer span.End()

	start := time.Now()
	ok, pairs, err := reverseEquivalent(ctx, alg, a, b, o)
	queryDuration.WithLabelValues("reverse").Observe(time.Since(start).Seconds())
	pairsTotal.Add(float64(pairs))
	span.SetAttributes(attribute.Int("pairs", pairs))
	switch {
	case err != nil:
		queriesTotal.WithLabelValues(resultError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "reverse equivalence failed")
		return false, err
	case ok:
		queriesTotal.WithLabelValues(resultEquivalent).Inc()
	default:
		queriesTotal.WithLabelValues(resultInequivalent).Inc()
	}
	o.logger.Debug("reverse equivalence done", "equivalent", ok, "pairs", pairs)
	return ok, nil
}

func reverseEquivalent[P, S any](ctx context.Context, alg algebra.Algebra[P, S], a, b *automaton.Automaton[P], o options) (bool, int, error) {
	if a.HasUniversalBranching() || b.HasUniversalBranching() {
		return false, 0, afaerrors.New(afaerrors.KindUnsupportedConstruct, "reverse-equivalence", "operand has universal branching")
	}
	sp, c1, c2, err := newSpace(ctx, alg, a, b)
	if err != nil {
		return false, 0, err
	}

	var guards []P
	var moves []automaton.InputMove[P]
	for _, s := range slices.Sorted(maps.Keys(sp.moves)) {
		for _, m := range sp.moves[s] {
			guards = append(guards, m.Guard)
			moves = append(moves, m)
		}
	}
	minterms, err := alg.Minterms(ctx, guards)
	if err != nil {
		return false, 0, err
	}

	// The reversal of side i starts from its accepting states and accepts
	// once the subset satisfies its initial configuration.
	split := func(upper bool) *bitset.BitSet {
		out := bitset.New(0)
		for i, ok := sp.accepting.NextSet(0); ok; i, ok = sp.accepting.NextSet(i + 1) {
			if (int(i) >= sp.offset) == upper {
				out.Set(i)
			}
		}
		return out
	}
	leftStart, rightStart := split(false), split(true)

	uf := newUnionFind()
	type pair struct{ x, y *bitset.BitSet }
	queue := []pair{{leftStart, rightStart}}
	uf.union(subsetKey(leftStart), subsetKey(rightStart))
	pairs := 0
	for len(queue) > 0 {
		if err := algebra.Deadline(ctx, "reverse-equivalence"); err != nil {
			return false, pairs, err
		}
		pairs++
		if o.maxPairs > 0 && pairs > o.maxPairs {
			return false, pairs, afaerrors.Newf(afaerrors.KindTimeout, "reverse-equivalence", "explored more than %d pairs", o.maxPairs)
		}
		p := queue[0]
		queue = queue[1:]
		if boolexpr.HasModel(c1, p.x) != boolexpr.HasModel(c2, p.y) {
			return false, pairs, nil
		}
		for _, mt := range minterms {
			x, y := predecessors(moves, mt, p.x), predecessors(moves, mt, p.y)
			kx, ky := subsetKey(x), subsetKey(y)
			if uf.find(kx) == uf.find(ky) {
				continue
			}
			uf.union(kx, ky)
			queue = append(queue, pair{x, y})
		}
	}
	return true, pairs, nil
}

// predecessors returns the states with a move inside mt whose target holds
// under current.
func predecessors[P any](moves []automaton.InputMove[P], mt algebra.Minterm[P], current *bitset.BitSet) *bitset.BitSet {
	out := bitset.New(0)
	for i, m := range moves {
		if mt.Implies(i) && boolexpr.HasModel(m.To, current) {
			out.Set(uint(m.From))
		}
	}
	return out
}

func subsetKey(b *bitset.BitSet) string {
	var sb strings.Builder
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		sb.WriteString(strconv.FormatUint(uint64(i), 10))
		sb.WriteByte(',')
	}
	return sb.String()
}

type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) find(x string) string {
	for {
		p, ok := u.parent[x]
		if !ok || p == x {
			return x
		}
		if gp, ok := u.parent[p]; ok {
			u.parent[x] = gp
		}
		x = p
	}
}

func (u *unionFind) union(x, y string) {
	rx, ry := u.find(x), u.find(y)
	if rx != ry {
		u.parent[rx] = ry
	}
}
