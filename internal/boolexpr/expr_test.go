package boolexpr

import (
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func set(ids ...uint) *bitset.BitSet {
	b := bitset.New(0)
	for _, id := range ids {
		b.Set(id)
	}
	return b
}

func members(b *bitset.BitSet) []uint {
	var out []uint
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		out = append(out, i)
	}
	return out
}

func TestMkAndCanonical(t *testing.T) {
	a := MkAnd(State(2), MkAnd(State(1), State(2)), True)
	b := MkAnd(State(1), State(2))
	assert.Equal(t, b.Key(), a.Key())
	assert.Equal(t, 3, a.Size())

	assert.Equal(t, False, MkAnd(State(1), False))
	assert.Equal(t, True, MkAnd())
	assert.Equal(t, State(4), MkAnd(State(4), True))
}

func TestMkOrCanonical(t *testing.T) {
	a := MkOr(State(3), MkOr(State(1), State(3)), False)
	b := MkOr(State(1), State(3))
	assert.True(t, Equal(a, b))

	assert.Equal(t, True, MkOr(State(1), True))
	assert.Equal(t, False, MkOr())
	assert.NotEqual(t, MkAnd(State(1), State(2)).Key(), MkOr(State(1), State(2)).Key())
}

func TestHasModel(t *testing.T) {
	e := MkOr(MkAnd(State(0), State(1)), State(5))

	tests := []struct {
		name   string
		active *bitset.BitSet
		want   bool
	}{
		{name: "empty", active: set(), want: false},
		{name: "one conjunct", active: set(0), want: false},
		{name: "both conjuncts", active: set(0, 1), want: true},
		{name: "other disjunct", active: set(5), want: true},
		{name: "nil set", active: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasModel(e, tt.active))
		})
	}

	assert.True(t, HasModel(True, nil))
	assert.False(t, HasModel(False, set(1, 2, 3)))
}

func TestStatesAndOffset(t *testing.T) {
	e := MkOr(MkAnd(State(0), State(3)), State(3))
	assert.Equal(t, []uint{0, 3}, members(States(e)))
	assert.Equal(t, 3, MaxState(e))
	assert.Equal(t, -1, MaxState(True))

	shifted := Offset(e, 10)
	assert.Equal(t, []uint{10, 13}, members(States(shifted)))
	assert.Equal(t, e.Key(), Offset(e, 0).Key())
}

func TestSubstitute(t *testing.T) {
	e := MkAnd(State(0), MkOr(State(1), State(2)))

	got := Substitute(e, func(id int) Expr {
		switch id {
		case 0:
			return True
		case 1:
			return False
		default:
			return State(7)
		}
	})
	assert.Equal(t, State(7), got)

	dead := Substitute(e, func(int) Expr { return False })
	assert.Equal(t, False, dead)
}

func TestDual(t *testing.T) {
	e := MkAnd(State(0), MkOr(State(1), True))
	require.Equal(t, State(0), e)

	f := MkAnd(State(0), MkOr(State(1), State(2)))
	d := Dual(f)
	assert.Equal(t, MkOr(State(0), MkAnd(State(1), State(2))).Key(), d.Key())
	assert.Equal(t, f.Key(), Dual(d).Key())
	assert.Equal(t, False, Dual(True))
}

func TestIsExistential(t *testing.T) {
	assert.True(t, IsExistential(MkOr(State(0), State(1))))
	assert.False(t, IsExistential(MkOr(State(0), MkAnd(State(1), State(2)))))
	assert.True(t, IsExistential(False))
}

func TestConjunctsDisjuncts(t *testing.T) {
	assert.Len(t, Conjuncts(MkAnd(State(0), State(1), State(2))), 3)
	assert.Len(t, Disjuncts(MkOr(State(0), State(1))), 2)
	assert.Len(t, Conjuncts(State(0)), 1)
}
