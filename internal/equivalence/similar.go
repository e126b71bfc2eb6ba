package equivalence

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/jacoelho/afa/internal/boolexpr"
)

// similar is the congruence closure of the configuration pairs recorded so
// far. States are propositional variables; a pair (x, y) is a member when
// the recorded equivalences entail x ⇔ y, which is decided by asking the
// SAT solver for a model of the recorded equivalences that separates x
// and y.
type similar struct {
	circuit   *logic.C
	vars      map[int]z.Lit
	lits      map[string]z.Lit
	facts     []z.Lit
	accepting *bitset.BitSet
	queries   int
}

func newSimilar(accepting *bitset.BitSet) *similar {
	return &similar{
		circuit:   logic.NewC(),
		vars:      make(map[int]z.Lit),
		lits:      make(map[string]z.Lit),
		accepting: accepting,
	}
}

// isMember reports whether x ⇔ y follows from the recorded pairs.
func (s *similar) isMember(x, y boolexpr.Expr) bool {
	if x.Key() == y.Key() {
		return true
	}
	c := s.circuit
	lx, ly := s.lit(x), s.lit(y)
	separated := c.Or(c.And(lx, ly.Not()), c.And(lx.Not(), ly))
	if separated == c.F {
		return true
	}
	s.queries++
	g := gini.New()
	c.ToCnf(g)
	g.Assume(s.facts...)
	g.Assume(separated)
	return g.Solve() == -1
}

// add records x ⇔ y. It returns false when x and y disagree on accepting
// the empty continuation, which proves the pair inequivalent.
func (s *similar) add(x, y boolexpr.Expr) bool {
	if boolexpr.HasModel(x, s.accepting) != boolexpr.HasModel(y, s.accepting) {
		return false
	}
	c := s.circuit
	lx, ly := s.lit(x), s.lit(y)
	same := c.Or(c.And(lx, ly), c.And(lx.Not(), ly.Not()))
	if same != c.T {
		s.facts = append(s.facts, same)
	}
	return true
}

func (s *similar) lit(e boolexpr.Expr) z.Lit {
	if l, ok := s.lits[e.Key()]; ok {
		return l
	}
	c := s.circuit
	var l z.Lit
	switch v := e.(type) {
	case boolexpr.State:
		var ok bool
		if l, ok = s.vars[int(v)]; !ok {
			l = c.Lit()
			s.vars[int(v)] = l
		}
	case boolexpr.Const:
		l = c.F
		if v {
			l = c.T
		}
	case *boolexpr.And:
		l = c.And(s.lit(v.L), s.lit(v.R))
	case *boolexpr.Or:
		l = c.Or(s.lit(v.L), s.lit(v.R))
	default:
		l = c.F
	}
	s.lits[e.Key()] = l
	return l
}
