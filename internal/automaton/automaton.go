// Package automaton implements symbolic alternating automata and the
// combinators regex compilation is built from.
//
// Transition targets and the initial configuration are positive boolean
// expressions over state ids: Or is ordinary nondeterminism, And is
// universal branching (lookaheads). Guards are predicates of an
// algebra.Algebra. Automata are immutable once New returns; combinators
// build fresh automata and never touch their operands.
package automaton

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bits-and-blooms/bitset"

	afaerrors "github.com/jacoelho/afa/errors"
	"github.com/jacoelho/afa/internal/algebra"
	"github.com/jacoelho/afa/internal/boolexpr"
)

// InputMove consumes one value satisfying Guard.
type InputMove[P any] struct {
	Guard P
	To    boolexpr.Expr
	From  int
}

// EpsilonMove is taken without consuming input.
type EpsilonMove struct {
	To   boolexpr.Expr
	From int
}

// Spec is the raw material New builds an automaton from.
type Spec[P any] struct {
	Initial         boolexpr.Expr
	Inputs          []InputMove[P]
	Epsilons        []EpsilonMove
	Finals          []int
	LookaheadFinals []int
	MaxStateID      int
}

// Automaton is a symbolic alternating automaton.
//
// The zero value has no initial configuration; it is the identity of
// Concatenate and otherwise behaves as Epsilon.
type Automaton[P any] struct {
	initial         boolexpr.Expr
	states          *bitset.BitSet
	finals          *bitset.BitSet
	lookaheadFinals *bitset.BitSet
	inputs          map[int][]InputMove[P]
	epsilons        map[int][]EpsilonMove
	maxStateID      int
}

// New builds an automaton from spec. It rejects overlapping final and
// lookahead-final sets, drops moves whose guard is unsatisfiable or whose
// target is False, and keeps only the states reachable from the initial
// configuration.
func New[P, S any](ctx context.Context, alg algebra.Algebra[P, S], spec Spec[P]) (*Automaton[P], error) {
	if spec.Initial == nil {
		return nil, afaerrors.New(afaerrors.KindMalformedAutomaton, "new", "missing initial configuration")
	}
	finals := idSet(spec.Finals)
	lookaheadFinals := idSet(spec.LookaheadFinals)
	if finals.IntersectionCardinality(lookaheadFinals) != 0 {
		return nil, afaerrors.Newf(afaerrors.KindMalformedAutomaton, "new",
			"states %v are both final and lookahead-final", members(finals.Intersection(lookaheadFinals)))
	}
	if minState(spec.Initial) < 0 {
		return nil, afaerrors.New(afaerrors.KindMalformedAutomaton, "new", "negative state id in initial configuration")
	}

	inputs := make(map[int][]InputMove[P])
	satisfiable := make(map[string]bool)
	for _, m := range spec.Inputs {
		if m.From < 0 || minState(m.To) < 0 {
			return nil, afaerrors.Newf(afaerrors.KindMalformedAutomaton, "new", "negative state id in move from %d", m.From)
		}
		if m.To == nil || m.To == boolexpr.False {
			continue
		}
		key := fmt.Sprint(m.Guard)
		ok, seen := satisfiable[key]
		if !seen {
			var err error
			ok, err = alg.IsSatisfiable(ctx, m.Guard)
			if err != nil {
				return nil, err
			}
			satisfiable[key] = ok
		}
		if ok {
			inputs[m.From] = append(inputs[m.From], m)
		}
	}
	epsilons := make(map[int][]EpsilonMove)
	for _, m := range spec.Epsilons {
		if m.From < 0 || minState(m.To) < 0 {
			return nil, afaerrors.Newf(afaerrors.KindMalformedAutomaton, "new", "negative state id in epsilon move from %d", m.From)
		}
		if m.To == nil || m.To == boolexpr.False {
			continue
		}
		epsilons[m.From] = append(epsilons[m.From], m)
	}

	reachable := boolexpr.States(spec.Initial)
	queue := members(reachable)
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		visit := func(id int) {
			if !reachable.Test(uint(id)) {
				reachable.Set(uint(id))
				queue = append(queue, id)
			}
		}
		for _, m := range inputs[s] {
			boolexpr.ForEachState(m.To, visit)
		}
		for _, m := range epsilons[s] {
			boolexpr.ForEachState(m.To, visit)
		}
	}

	a := &Automaton[P]{
		initial:         spec.Initial,
		states:          reachable,
		finals:          finals.Intersection(reachable),
		lookaheadFinals: lookaheadFinals.Intersection(reachable),
		inputs:          make(map[int][]InputMove[P]),
		epsilons:        make(map[int][]EpsilonMove),
		maxStateID:      spec.MaxStateID,
	}
	for _, s := range members(reachable) {
		if ms := inputs[s]; len(ms) > 0 {
			a.inputs[s] = ms
		}
		if ms := epsilons[s]; len(ms) > 0 {
			a.epsilons[s] = ms
		}
		a.maxStateID = max(a.maxStateID, s)
	}
	return a, nil
}

// IsZero reports whether a is the zero automaton.
func (a *Automaton[P]) IsZero() bool {
	return a == nil || a.initial == nil
}

// Initial returns the initial configuration.
func (a *Automaton[P]) Initial() boolexpr.Expr {
	if a.IsZero() {
		return boolexpr.False
	}
	return a.initial
}

// States returns the state ids in ascending order.
func (a *Automaton[P]) States() []int {
	if a.IsZero() {
		return nil
	}
	return members(a.states)
}

// StateCount returns the number of states.
func (a *Automaton[P]) StateCount() int {
	if a.IsZero() {
		return 0
	}
	return int(a.states.Count())
}

// MaxStateID returns the high-water mark of allocated ids, or -1.
func (a *Automaton[P]) MaxStateID() int {
	if a.IsZero() {
		return -1
	}
	return a.maxStateID
}

// InputMoves returns the input moves leaving state s.
func (a *Automaton[P]) InputMoves(s int) []InputMove[P] {
	if a.IsZero() {
		return nil
	}
	return slices.Clone(a.inputs[s])
}

// EpsilonMoves returns the epsilon moves leaving state s.
func (a *Automaton[P]) EpsilonMoves(s int) []EpsilonMove {
	if a.IsZero() {
		return nil
	}
	return slices.Clone(a.epsilons[s])
}

// Finals returns the final states in ascending order.
func (a *Automaton[P]) Finals() []int {
	if a.IsZero() {
		return nil
	}
	return members(a.finals)
}

// LookaheadFinals returns the lookahead-final states in ascending order.
func (a *Automaton[P]) LookaheadFinals() []int {
	if a.IsZero() {
		return nil
	}
	return members(a.lookaheadFinals)
}

// IsFinal reports whether s is a final state.
func (a *Automaton[P]) IsFinal(s int) bool {
	return !a.IsZero() && a.finals.Test(uint(s))
}

// IsLookaheadFinal reports whether s is a lookahead-final state.
func (a *Automaton[P]) IsLookaheadFinal(s int) bool {
	return !a.IsZero() && a.lookaheadFinals.Test(uint(s))
}

// Accepting returns finals ∪ lookaheadFinals.
func (a *Automaton[P]) Accepting() *bitset.BitSet {
	if a.IsZero() {
		return bitset.New(0)
	}
	return a.finals.Union(a.lookaheadFinals)
}

// InputMoveCount returns the number of input moves.
func (a *Automaton[P]) InputMoveCount() int {
	n := 0
	if a.IsZero() {
		return n
	}
	for _, ms := range a.inputs {
		n += len(ms)
	}
	return n
}

// EpsilonMoveCount returns the number of epsilon moves.
func (a *Automaton[P]) EpsilonMoveCount() int {
	n := 0
	if a.IsZero() {
		return n
	}
	for _, ms := range a.epsilons {
		n += len(ms)
	}
	return n
}

// IsEpsilonFree reports whether a has no epsilon moves.
func (a *Automaton[P]) IsEpsilonFree() bool {
	return a.EpsilonMoveCount() == 0
}

// HasUniversalBranching reports whether a conjunction occurs in the
// initial configuration or in any move target.
func (a *Automaton[P]) HasUniversalBranching() bool {
	if a.IsZero() {
		return false
	}
	if !boolexpr.IsExistential(a.initial) {
		return true
	}
	for _, ms := range a.inputs {
		for _, m := range ms {
			if !boolexpr.IsExistential(m.To) {
				return true
			}
		}
	}
	for _, ms := range a.epsilons {
		for _, m := range ms {
			if !boolexpr.IsExistential(m.To) {
				return true
			}
		}
	}
	return false
}

// String renders a one move per line, for debugging.
func (a *Automaton[P]) String() string {
	if a.IsZero() {
		return "automaton <zero>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "initial: %s\n", a.initial)
	fmt.Fprintf(&b, "finals: %v lookahead-finals: %v\n", a.Finals(), a.LookaheadFinals())
	for _, s := range a.States() {
		for _, m := range a.inputs[s] {
			fmt.Fprintf(&b, "%d --%v--> %s\n", s, m.Guard, m.To)
		}
		for _, m := range a.epsilons[s] {
			fmt.Fprintf(&b, "%d --eps--> %s\n", s, m.To)
		}
	}
	return b.String()
}

// spec returns a's contents with every state id shifted by k.
func (a *Automaton[P]) spec(k int) Spec[P] {
	out := Spec[P]{
		Initial:    boolexpr.Offset(a.initial, k),
		MaxStateID: a.maxStateID + k,
	}
	for _, s := range members(a.states) {
		for _, m := range a.inputs[s] {
			out.Inputs = append(out.Inputs, InputMove[P]{From: m.From + k, Guard: m.Guard, To: boolexpr.Offset(m.To, k)})
		}
		for _, m := range a.epsilons[s] {
			out.Epsilons = append(out.Epsilons, EpsilonMove{From: m.From + k, To: boolexpr.Offset(m.To, k)})
		}
	}
	for _, s := range members(a.finals) {
		out.Finals = append(out.Finals, s+k)
	}
	for _, s := range members(a.lookaheadFinals) {
		out.LookaheadFinals = append(out.LookaheadFinals, s+k)
	}
	return out
}

// allocator hands out fresh state ids above a high-water mark.
// Every construction owns its allocator.
type allocator struct {
	next int
}

func newAllocator(highWater int) *allocator {
	return &allocator{next: highWater + 1}
}

func (al *allocator) fresh() int {
	id := al.next
	al.next++
	return id
}

func (al *allocator) highWater() int {
	return al.next - 1
}

func idSet(ids []int) *bitset.BitSet {
	b := bitset.New(0)
	for _, id := range ids {
		if id >= 0 {
			b.Set(uint(id))
		}
	}
	return b
}

func members(b *bitset.BitSet) []int {
	if b == nil {
		return nil
	}
	out := make([]int, 0, b.Count())
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

func minState(e boolexpr.Expr) int {
	out := 0
	boolexpr.ForEachState(e, func(id int) { out = min(out, id) })
	return out
}
