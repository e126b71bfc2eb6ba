package boolexpr

import "github.com/bits-and-blooms/bitset"

// States returns the set of state ids mentioned in e.
func States(e Expr) *bitset.BitSet {
	out := bitset.New(0)
	ForEachState(e, func(id int) { out.Set(uint(id)) })
	return out
}

// ForEachState calls fn for every state leaf of e, in tree order.
// Ids mentioned more than once are visited more than once.
func ForEachState(e Expr, fn func(id int)) {
	switch v := e.(type) {
	case State:
		fn(int(v))
	case *And:
		ForEachState(v.L, fn)
		ForEachState(v.R, fn)
	case *Or:
		ForEachState(v.L, fn)
		ForEachState(v.R, fn)
	}
}

// HasModel evaluates e with State(id) true iff id is in active.
func HasModel(e Expr, active *bitset.BitSet) bool {
	return Eval(e, func(id int) bool { return active != nil && active.Test(uint(id)) })
}

// Eval evaluates e with the given valuation of state leaves.
func Eval(e Expr, value func(id int) bool) bool {
	switch v := e.(type) {
	case State:
		return value(int(v))
	case Const:
		return bool(v)
	case *And:
		return Eval(v.L, value) && Eval(v.R, value)
	case *Or:
		return Eval(v.L, value) || Eval(v.R, value)
	default:
		return false
	}
}

// Offset adds k to every state id of e.
func Offset(e Expr, k int) Expr {
	if k == 0 {
		return e
	}
	return Substitute(e, func(id int) Expr { return State(id + k) })
}

// Substitute replaces every state leaf with f(id) and re-canonicalizes.
func Substitute(e Expr, f func(id int) Expr) Expr {
	switch v := e.(type) {
	case State:
		return f(int(v))
	case Const:
		return v
	case *And:
		return MkAnd(Substitute(v.L, f), Substitute(v.R, f))
	case *Or:
		return MkOr(Substitute(v.L, f), Substitute(v.R, f))
	default:
		return False
	}
}

// Dual swaps And with Or and True with False, keeping state leaves.
func Dual(e Expr) Expr {
	switch v := e.(type) {
	case State:
		return v
	case Const:
		return !v
	case *And:
		return MkOr(Dual(v.L), Dual(v.R))
	case *Or:
		return MkAnd(Dual(v.L), Dual(v.R))
	default:
		return True
	}
}

// IsExistential reports whether e has no conjunction.
func IsExistential(e Expr) bool {
	switch v := e.(type) {
	case *And:
		return false
	case *Or:
		return IsExistential(v.L) && IsExistential(v.R)
	default:
		return true
	}
}

// HasConst reports whether a True or False leaf occurs in e.
func HasConst(e Expr) bool {
	switch v := e.(type) {
	case Const:
		return true
	case *And:
		return HasConst(v.L) || HasConst(v.R)
	case *Or:
		return HasConst(v.L) || HasConst(v.R)
	default:
		return false
	}
}

// MaxState returns the largest state id in e, or -1 when e has none.
func MaxState(e Expr) int {
	out := -1
	ForEachState(e, func(id int) { out = max(out, id) })
	return out
}

// Conjuncts returns the operands of a top-level conjunction, or e itself.
func Conjuncts(e Expr) []Expr {
	if v, ok := e.(*And); ok {
		return append(Conjuncts(v.L), Conjuncts(v.R)...)
	}
	return []Expr{e}
}

// Disjuncts returns the operands of a top-level disjunction, or e itself.
func Disjuncts(e Expr) []Expr {
	if v, ok := e.(*Or); ok {
		return append(Disjuncts(v.L), Disjuncts(v.R)...)
	}
	return []Expr{e}
}
