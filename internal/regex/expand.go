package regex

// Expand returns a copy of t in which Plus, Optional and Repeat are
// rewritten into Concat, Union and Star, with parent links rebuilt. Every
// occurrence of a repeated operand is a fresh copy, so follow sets are
// computed per occurrence.
func Expand(t *AST) *AST {
	out := &AST{}
	out.Root = expand(t, out, t.Root)
	out.link()
	return out
}

func expand(src, dst *AST, id NodeID) NodeID {
	n := src.Node(id)
	switch n.Kind {
	case KindClass:
		return dst.class(n.Set)
	case KindEmpty:
		return dst.empty()
	case KindConcat, KindUnion:
		children := make([]NodeID, len(n.Children))
		for i, c := range n.Children {
			children[i] = expand(src, dst, c)
		}
		return dst.add(Node{Kind: n.Kind, Children: children})
	case KindStar:
		return dst.unary(KindStar, expand(src, dst, n.Children[0]))
	case KindPlus:
		// E+ is E·E*, greedy on the first copy.
		head := expand(src, dst, n.Children[0])
		return dst.seq(head, dst.unary(KindStar, expand(src, dst, n.Children[0])))
	case KindOptional:
		return dst.alt(expand(src, dst, n.Children[0]), dst.empty())
	case KindRepeat:
		return expandRepeat(src, dst, n.Children[0], n.Min, n.Max)
	case KindLookahead:
		return dst.add(Node{Kind: KindLookahead, Children: []NodeID{expand(src, dst, n.Children[0])}, Negated: n.Negated})
	case KindAtomic:
		return dst.unary(KindAtomic, expand(src, dst, n.Children[0]))
	default:
		return dst.empty()
	}
}

// expandRepeat rewrites E{lo,hi} as lo copies of E followed by E* when hi
// is unbounded, or by hi-lo nested optionals (E(E(E)?)?)? otherwise.
func expandRepeat(src, dst *AST, child NodeID, lo, hi int) NodeID {
	parts := make([]NodeID, 0, lo+1)
	for range lo {
		parts = append(parts, expand(src, dst, child))
	}
	switch {
	case hi == Unbounded:
		parts = append(parts, dst.unary(KindStar, expand(src, dst, child)))
	case hi > lo:
		tail := NoNode
		for range hi - lo {
			inner := expand(src, dst, child)
			if tail != NoNode {
				inner = dst.seq(inner, tail)
			}
			tail = dst.alt(inner, dst.empty())
		}
		parts = append(parts, tail)
	}
	return dst.seq(parts...)
}
