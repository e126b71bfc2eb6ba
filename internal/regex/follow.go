package regex

import (
	"slices"

	"github.com/jacoelho/afa/internal/charset"
)

// follow returns the nodes matched after id, in order, up to the nearest
// enclosing atomic group or lookahead. bounded reports whether such a
// boundary ended the walk; when it did not, the nodes run to the end of
// the input.
//
// Concatenations contribute their later siblings and stars contribute
// themselves, since a finished iteration may start another one.
func (t *AST) follow(id NodeID) (nodes []NodeID, bounded bool) {
	cur := id
	for {
		parent := t.Node(cur).Parent
		if parent == NoNode {
			return nodes, false
		}
		pn := t.Node(parent)
		switch pn.Kind {
		case KindConcat:
			i := slices.Index(pn.Children, cur)
			nodes = append(nodes, pn.Children[i+1:]...)
		case KindStar:
			nodes = append(nodes, parent)
		case KindAtomic, KindLookahead:
			return nodes, true
		}
		cur = parent
	}
}

// nullable reports whether id can match the empty word. Lookaheads count
// as nullable.
func (t *AST) nullable(id NodeID) bool {
	n := t.Node(id)
	switch n.Kind {
	case KindClass:
		return false
	case KindConcat:
		for _, c := range n.Children {
			if !t.nullable(c) {
				return false
			}
		}
		return true
	case KindUnion:
		for _, c := range n.Children {
			if t.nullable(c) {
				return true
			}
		}
		return false
	case KindPlus, KindAtomic:
		return t.nullable(n.Children[0])
	case KindRepeat:
		return n.Min == 0 || t.nullable(n.Children[0])
	default:
		return true
	}
}

// first over-approximates the values a non-empty match of id can start
// with.
func (t *AST) first(id NodeID) charset.Set {
	n := t.Node(id)
	switch n.Kind {
	case KindClass:
		return n.Set
	case KindConcat:
		out, _ := t.firstSeq(n.Children)
		return out
	case KindUnion:
		out := charset.Empty()
		for _, c := range n.Children {
			out = out.Union(t.first(c))
		}
		return out
	case KindStar, KindPlus, KindOptional, KindRepeat, KindAtomic:
		return t.first(n.Children[0])
	default:
		return charset.Empty()
	}
}

// firstSeq returns first and nullable of the concatenation of ids.
func (t *AST) firstSeq(ids []NodeID) (charset.Set, bool) {
	out := charset.Empty()
	for _, id := range ids {
		out = out.Union(t.first(id))
		if !t.nullable(id) {
			return out, false
		}
	}
	return out, true
}
