package regex

import (
	"context"
	"strings"

	afaerrors "github.com/jacoelho/afa/errors"
	"github.com/jacoelho/afa/internal/automaton"
	"github.com/jacoelho/afa/internal/charset"
)

// Semantics selects which matches of a pattern make a word accepted.
type Semantics uint8

const (
	// FirstMatch accepts w when the match a backtracking engine anchored at
	// offset 0 returns first spans all of w.
	FirstMatch Semantics = iota
	// AnyMatch accepts w when some way of matching the pattern spans all
	// of w. Atomic groups still commit to their first match.
	AnyMatch
)

func (s Semantics) String() string {
	switch s {
	case FirstMatch:
		return "first-match"
	case AnyMatch:
		return "any-match"
	default:
		return "unknown"
	}
}

// ParseSemantics parses the names printed by Semantics.String.
func ParseSemantics(name string) (Semantics, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "first-match", "first":
		return FirstMatch, nil
	case "any-match", "any":
		return AnyMatch, nil
	default:
		return 0, afaerrors.Newf(afaerrors.KindUnsupportedConstruct, "semantics", "unknown semantics %q", name)
	}
}

// Stats describes one compilation.
type Stats struct {
	Nodes             int
	Lookaheads        int
	PriorityGuards    int
	SkippedGuards     int
	States            int
	InputMoves        int
	EpsilonMoves      int
	Finals            int
	LookaheadFinals   int
	UniversalBranches bool
}

type fa = *automaton.Automaton[charset.Set]

// Compile parses pattern and builds its automaton under sem.
func Compile(ctx context.Context, pattern string, sem Semantics) (fa, Stats, error) {
	tree, err := Parse(pattern)
	if err != nil {
		return nil, Stats{}, err
	}
	return CompileAST(ctx, Expand(tree), sem)
}

// CompileAST builds the automaton of an expanded AST.
func CompileAST(ctx context.Context, tree *AST, sem Semantics) (fa, Stats, error) {
	c := &compiler{tree: tree, existential: make(map[NodeID]fa)}
	c.stats.Nodes = tree.Len()
	var (
		a   fa
		err error
	)
	if sem == AnyMatch {
		a, err = c.ex(ctx, tree.Root)
	} else {
		a, err = c.pri(ctx, tree.Root)
	}
	if err != nil {
		return nil, Stats{}, err
	}
	c.stats.States = a.StateCount()
	c.stats.InputMoves = a.InputMoveCount()
	c.stats.EpsilonMoves = a.EpsilonMoveCount()
	c.stats.Finals = len(a.Finals())
	c.stats.LookaheadFinals = len(a.LookaheadFinals())
	c.stats.UniversalBranches = a.HasUniversalBranching()
	return a, c.stats, nil
}

type compiler struct {
	alg         charset.Algebra
	tree        *AST
	existential map[NodeID]fa
	stats       Stats
}

// ex builds the automaton matching id in any way. Atomic groups inside
// still match by priority.
func (c *compiler) ex(ctx context.Context, id NodeID) (fa, error) {
	if a, ok := c.existential[id]; ok {
		return a, nil
	}
	n := c.tree.Node(id)
	var (
		a   fa
		err error
	)
	switch n.Kind {
	case KindConcat:
		parts := make([]fa, len(n.Children))
		for i, child := range n.Children {
			if parts[i], err = c.ex(ctx, child); err != nil {
				return nil, err
			}
		}
		a, err = automaton.Concat(ctx, c.alg, parts...)
	case KindUnion:
		for _, child := range n.Children {
			alt, err := c.ex(ctx, child)
			if err != nil {
				return nil, err
			}
			if a == nil {
				a = alt
				continue
			}
			if a, err = automaton.Union(ctx, c.alg, a, alt); err != nil {
				return nil, err
			}
		}
	case KindStar:
		var body fa
		if body, err = c.ex(ctx, n.Children[0]); err != nil {
			return nil, err
		}
		a, err = automaton.Star(ctx, c.alg, body)
	case KindAtomic:
		a, err = c.pri(ctx, n.Children[0])
	default:
		a, err = c.leaf(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	c.existential[id] = a
	return a, nil
}

// pri builds the automaton matching id the way a backtracking engine
// does: a union alternative or a star exit is taken only when nothing of
// higher priority could have matched from the same position.
func (c *compiler) pri(ctx context.Context, id NodeID) (fa, error) {
	n := c.tree.Node(id)
	switch n.Kind {
	case KindConcat:
		parts := make([]fa, len(n.Children))
		for i, child := range n.Children {
			var err error
			if parts[i], err = c.pri(ctx, child); err != nil {
				return nil, err
			}
		}
		return automaton.Concat(ctx, c.alg, parts...)
	case KindUnion:
		return c.priUnion(ctx, id)
	case KindStar:
		return c.priStar(ctx, id)
	case KindAtomic:
		return c.pri(ctx, n.Children[0])
	default:
		return c.leaf(ctx, id)
	}
}

func (c *compiler) leaf(ctx context.Context, id NodeID) (fa, error) {
	n := c.tree.Node(id)
	switch n.Kind {
	case KindClass:
		return automaton.Predicate(ctx, c.alg, n.Set)
	case KindEmpty:
		return automaton.Epsilon[charset.Set](), nil
	case KindLookahead:
		body, err := c.ex(ctx, n.Children[0])
		if err != nil {
			return nil, err
		}
		c.stats.Lookaheads++
		return c.lookahead(ctx, body, n.Negated)
	default:
		return nil, afaerrors.Newf(afaerrors.KindUnsupportedConstruct, "compile", "%s node is not expanded", n.Kind)
	}
}

// priUnion guards alternative i with (?!(E0|...|Ei-1)·follow).
func (c *compiler) priUnion(ctx context.Context, id NodeID) (fa, error) {
	n := c.tree.Node(id)
	follow, bounded := c.tree.follow(id)
	followFirst, followNullable := c.tree.firstSeq(follow)

	var (
		out, earlier, followFA fa
		earlierNullable        bool
	)
	earlierFirst := charset.Empty()
	for i, child := range n.Children {
		alt, err := c.pri(ctx, child)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			xFirst, xNullable := earlierFirst, earlierNullable && followNullable
			if earlierNullable {
				xFirst = xFirst.Union(followFirst)
			}
			yFirst, yNullable := c.tree.first(child), c.tree.nullable(child) && followNullable
			if c.tree.nullable(child) {
				yFirst = yFirst.Union(followFirst)
			}
			if redundant(xFirst, xNullable, yFirst, yNullable, bounded) {
				c.stats.SkippedGuards++
			} else {
				if followFA == nil {
					if followFA, err = c.exSeq(ctx, follow); err != nil {
						return nil, err
					}
				}
				blocker, err := automaton.Concatenate(ctx, c.alg, earlier, followFA)
				if err != nil {
					return nil, err
				}
				guard, err := c.lookahead(ctx, blocker, true)
				if err != nil {
					return nil, err
				}
				c.stats.PriorityGuards++
				if alt, err = automaton.Concatenate(ctx, c.alg, guard, alt); err != nil {
					return nil, err
				}
			}
		}

		if out == nil {
			out = alt
		} else if out, err = automaton.Union(ctx, c.alg, out, alt); err != nil {
			return nil, err
		}

		exAlt, err := c.ex(ctx, child)
		if err != nil {
			return nil, err
		}
		if earlier == nil {
			earlier = exAlt
		} else if earlier, err = automaton.Union(ctx, c.alg, earlier, exAlt); err != nil {
			return nil, err
		}
		earlierFirst = earlierFirst.Union(c.tree.first(child))
		earlierNullable = earlierNullable || c.tree.nullable(child)
	}
	return out, nil
}

// priStar builds t(E)*·(?!E⁺·E*·follow), where E⁺ is E without the empty
// word.
func (c *compiler) priStar(ctx context.Context, id NodeID) (fa, error) {
	child := c.tree.Node(id).Children[0]
	body, err := c.pri(ctx, child)
	if err != nil {
		return nil, err
	}
	loop, err := automaton.Star(ctx, c.alg, body)
	if err != nil {
		return nil, err
	}

	follow, bounded := c.tree.follow(id)
	followFirst, followNullable := c.tree.firstSeq(follow)
	if redundant(c.tree.first(child), false, followFirst, followNullable, bounded) {
		c.stats.SkippedGuards++
		return loop, nil
	}

	exChild, err := c.ex(ctx, child)
	if err != nil {
		return nil, err
	}
	once, err := automaton.RemoveEmptyWord(ctx, c.alg, exChild)
	if err != nil {
		return nil, err
	}
	again, err := c.ex(ctx, id)
	if err != nil {
		return nil, err
	}
	rest, err := c.exSeq(ctx, follow)
	if err != nil {
		return nil, err
	}
	blocker, err := automaton.Concat(ctx, c.alg, once, again, rest)
	if err != nil {
		return nil, err
	}
	guard, err := c.lookahead(ctx, blocker, true)
	if err != nil {
		return nil, err
	}
	c.stats.PriorityGuards++
	return automaton.Concatenate(ctx, c.alg, loop, guard)
}

func (c *compiler) exSeq(ctx context.Context, ids []NodeID) (fa, error) {
	parts := make([]fa, len(ids))
	for i, id := range ids {
		var err error
		if parts[i], err = c.ex(ctx, id); err != nil {
			return nil, err
		}
	}
	return automaton.Concat(ctx, c.alg, parts...)
}

// lookahead builds (?=body) or (?!body) where body matches a prefix of the
// remaining input.
func (c *compiler) lookahead(ctx context.Context, body fa, negated bool) (fa, error) {
	prefix, err := automaton.Concatenate(ctx, c.alg, body, automaton.Universal(c.alg))
	if err != nil {
		return nil, err
	}
	if negated {
		if prefix, err = automaton.Complement(ctx, c.alg, prefix); err != nil {
			return nil, err
		}
	}
	return automaton.PositiveLookAhead(ctx, c.alg, prefix)
}

// redundant reports whether (?!X) always holds where Y is about to match:
// X cannot match empty and no value can start both X and Y, and Y either
// consumes at least one value or runs to the end of the input.
func redundant(xFirst charset.Set, xNullable bool, yFirst charset.Set, yNullable, bounded bool) bool {
	if xNullable {
		return false
	}
	if !xFirst.Intersect(yFirst).IsEmpty() {
		return false
	}
	return !yNullable || !bounded
}
