// Package regex parses patterns into an arena AST and compiles them into
// alternating automata over character sets.
package regex

import (
	"strconv"
	"strings"

	"github.com/jacoelho/afa/internal/charset"
)

// NodeID indexes a node in its AST arena.
type NodeID int

// NoNode is the parent of the root.
const NoNode NodeID = -1

// Unbounded is the Max of an open repetition.
const Unbounded = -1

// Kind is the variant of a node.
type Kind uint8

const (
	KindClass Kind = iota
	KindEmpty
	KindConcat
	KindUnion
	KindStar
	KindPlus
	KindOptional
	KindRepeat
	KindLookahead
	KindAtomic
)

var kindNames = [...]string{
	KindClass:     "class",
	KindEmpty:     "empty",
	KindConcat:    "concat",
	KindUnion:     "union",
	KindStar:      "star",
	KindPlus:      "plus",
	KindOptional:  "optional",
	KindRepeat:    "repeat",
	KindLookahead: "lookahead",
	KindAtomic:    "atomic",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Node is one AST node. Children are ordered by priority for unions and by
// position for concatenations.
type Node struct {
	Set      charset.Set
	Children []NodeID
	Parent   NodeID
	Min, Max int
	Kind     Kind
	Negated  bool
}

// AST is an arena of nodes with parent links by id.
type AST struct {
	nodes []Node
	Root  NodeID
}

// Node returns the node with the given id.
func (t *AST) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Len returns the number of nodes in the arena.
func (t *AST) Len() int {
	return len(t.nodes)
}

func (t *AST) add(n Node) NodeID {
	n.Parent = NoNode
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

func (t *AST) class(s charset.Set) NodeID {
	return t.add(Node{Kind: KindClass, Set: s})
}

func (t *AST) empty() NodeID {
	return t.add(Node{Kind: KindEmpty})
}

func (t *AST) unary(k Kind, child NodeID) NodeID {
	return t.add(Node{Kind: k, Children: []NodeID{child}})
}

// seq returns the concatenation of ids, collapsing trivial cases.
func (t *AST) seq(ids ...NodeID) NodeID {
	switch len(ids) {
	case 0:
		return t.empty()
	case 1:
		return ids[0]
	default:
		return t.add(Node{Kind: KindConcat, Children: ids})
	}
}

// alt returns the union of ids, collapsing trivial cases.
func (t *AST) alt(ids ...NodeID) NodeID {
	if len(ids) == 1 {
		return ids[0]
	}
	return t.add(Node{Kind: KindUnion, Children: ids})
}

// link sets every node's parent from the root down. Nodes not reachable
// from the root keep NoNode.
func (t *AST) link() {
	for i := range t.nodes {
		t.nodes[i].Parent = NoNode
	}
	stack := []NodeID{t.Root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range t.nodes[id].Children {
			t.nodes[c].Parent = id
			stack = append(stack, c)
		}
	}
}

// String renders the subtree at id as a pattern.
func (t *AST) String(id NodeID) string {
	var b strings.Builder
	t.write(&b, id)
	return b.String()
}

func (t *AST) write(b *strings.Builder, id NodeID) {
	n := t.Node(id)
	switch n.Kind {
	case KindClass:
		if r, ok := singleRune(n.Set); ok {
			b.WriteString(quoteLiteral(r))
			return
		}
		b.WriteString(n.Set.String())
	case KindEmpty:
		b.WriteString("(?:)")
	case KindConcat:
		for _, c := range n.Children {
			if t.Node(c).Kind == KindUnion {
				b.WriteString("(?:")
				t.write(b, c)
				b.WriteString(")")
				continue
			}
			t.write(b, c)
		}
	case KindUnion:
		for i, c := range n.Children {
			if i > 0 {
				b.WriteByte('|')
			}
			t.write(b, c)
		}
	case KindStar, KindPlus, KindOptional, KindRepeat:
		t.writeOperand(b, n.Children[0])
		switch n.Kind {
		case KindStar:
			b.WriteByte('*')
		case KindPlus:
			b.WriteByte('+')
		case KindOptional:
			b.WriteByte('?')
		default:
			b.WriteString(repeatString(n.Min, n.Max))
		}
	case KindLookahead:
		if n.Negated {
			b.WriteString("(?!")
		} else {
			b.WriteString("(?=")
		}
		t.write(b, n.Children[0])
		b.WriteByte(')')
	case KindAtomic:
		b.WriteString("(?>")
		t.write(b, n.Children[0])
		b.WriteByte(')')
	}
}

func (t *AST) writeOperand(b *strings.Builder, id NodeID) {
	switch t.Node(id).Kind {
	case KindClass, KindLookahead, KindAtomic, KindEmpty:
		t.write(b, id)
	default:
		b.WriteString("(?:")
		t.write(b, id)
		b.WriteByte(')')
	}
}

func repeatString(lo, hi int) string {
	switch {
	case hi == Unbounded:
		return "{" + strconv.Itoa(lo) + ",}"
	case lo == hi:
		return "{" + strconv.Itoa(lo) + "}"
	default:
		return "{" + strconv.Itoa(lo) + "," + strconv.Itoa(hi) + "}"
	}
}

func singleRune(s charset.Set) (rune, bool) {
	rs := s.Ranges()
	if len(rs) == 1 && rs[0].Lo == rs[0].Hi {
		return rs[0].Lo, true
	}
	return 0, false
}

func quoteLiteral(r rune) string {
	if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
		return `\` + string(r)
	}
	if r < ' ' || r == 0x7f {
		return `\x{` + strconv.FormatInt(int64(r), 16) + `}`
	}
	return string(r)
}
