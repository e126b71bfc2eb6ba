// Package boolexpr implements positive boolean expressions over automaton
// state ids. They are the transition targets and configurations of
// alternating automata.
package boolexpr

import (
	"slices"
	"strconv"
	"strings"
)

// Expr is a monotone boolean expression over state ids.
// The variants are State, *And, *Or and Const; the set is closed.
type Expr interface {
	// Key returns a canonical string; equal keys mean structurally equal expressions.
	Key() string
	// Size returns the number of nodes in the expression tree.
	Size() int
	String() string
	isExpr()
}

// State is a leaf naming one state id.
type State int

// Const is the constant True or False.
type Const bool

const (
	// True holds independently of successor states.
	True Const = true
	// False never holds.
	False Const = false
)

// And is the conjunction of two expressions.
type And struct {
	L, R Expr
	key  string
	size int
}

// Or is the disjunction of two expressions.
type Or struct {
	L, R Expr
	key  string
	size int
}

func (State) isExpr()  {}
func (Const) isExpr()  {}
func (*And) isExpr()   {}
func (*Or) isExpr()    {}
func (State) Size() int { return 1 }
func (Const) Size() int { return 1 }
func (e *And) Size() int  { return e.size }
func (e *Or) Size() int   { return e.size }

// Key returns "s<id>".
func (s State) Key() string { return "s" + strconv.Itoa(int(s)) }

// Key returns "T" or "F".
func (c Const) Key() string {
	if c {
		return "T"
	}
	return "F"
}

// Key returns the canonical form of the conjunction.
func (e *And) Key() string { return e.key }

// Key returns the canonical form of the disjunction.
func (e *Or) Key() string { return e.key }

func (s State) String() string { return strconv.Itoa(int(s)) }

func (c Const) String() string {
	if c {
		return "true"
	}
	return "false"
}

func (e *And) String() string { return "(" + e.L.String() + " & " + e.R.String() + ")" }
func (e *Or) String() string  { return "(" + e.L.String() + " | " + e.R.String() + ")" }

// NewState returns the leaf for id.
func NewState(id int) Expr {
	return State(id)
}

// MkAnd returns the canonical conjunction of xs: nested conjunctions are
// flattened, operands are sorted and deduplicated, True is dropped and any
// False operand makes the result False. MkAnd() is True.
func MkAnd(xs ...Expr) Expr {
	ops, absorbed := flatten(xs, true)
	if absorbed {
		return False
	}
	if len(ops) == 0 {
		return True
	}
	out := ops[len(ops)-1]
	for i := len(ops) - 2; i >= 0; i-- {
		out = &And{L: ops[i], R: out, key: "&(" + ops[i].Key() + "," + out.Key() + ")", size: 1 + ops[i].Size() + out.Size()}
	}
	return out
}

// MkOr returns the canonical disjunction of xs, dual to MkAnd. MkOr() is False.
func MkOr(xs ...Expr) Expr {
	ops, absorbed := flatten(xs, false)
	if absorbed {
		return True
	}
	if len(ops) == 0 {
		return False
	}
	out := ops[len(ops)-1]
	for i := len(ops) - 2; i >= 0; i-- {
		out = &Or{L: ops[i], R: out, key: "|(" + ops[i].Key() + "," + out.Key() + ")", size: 1 + ops[i].Size() + out.Size()}
	}
	return out
}

// flatten collects the operands of a conjunction (conj) or disjunction.
// It reports absorbed when the absorbing constant appears.
func flatten(xs []Expr, conj bool) ([]Expr, bool) {
	identity := Const(conj)
	var ops []Expr
	seen := make(map[string]struct{}, len(xs))
	var walk func(e Expr) bool
	walk = func(e Expr) bool {
		switch v := e.(type) {
		case nil:
			return true
		case Const:
			return v == identity
		case *And:
			if conj {
				return walk(v.L) && walk(v.R)
			}
		case *Or:
			if !conj {
				return walk(v.L) && walk(v.R)
			}
		}
		k := e.Key()
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			ops = append(ops, e)
		}
		return true
	}
	for _, x := range xs {
		if !walk(x) {
			return nil, true
		}
	}
	slices.SortFunc(ops, func(a, b Expr) int { return strings.Compare(a.Key(), b.Key()) })
	return ops, false
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Expr) bool {
	return a.Key() == b.Key()
}
