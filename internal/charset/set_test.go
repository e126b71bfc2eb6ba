package charset

import (
	"context"
	"errors"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	afaerrors "github.com/jacoelho/afa/errors"
)

func TestSetNormalization(t *testing.T) {
	s := Of(Range{'d', 'f'}, Range{'a', 'c'}, Range{'x', 'z'}, Range{'e', 'g'})
	assert.Equal(t, []Range{{'a', 'g'}, {'x', 'z'}}, s.Ranges())
	assert.True(t, NewRange('z', 'a').IsEmpty())
}

func TestSetOperations(t *testing.T) {
	az := NewRange('a', 'z')
	digits := Digit()

	tests := []struct {
		name string
		got  Set
		want Set
	}{
		{name: "union", got: az.Union(digits), want: Of(Range{'0', '9'}, Range{'a', 'z'})},
		{name: "intersect", got: az.Intersect(NewRange('x', 'Z'+100)), want: NewRange('x', 'z')},
		{name: "disjoint intersect", got: az.Intersect(digits), want: Empty()},
		{name: "minus", got: az.Minus(NewRange('b', 'y')), want: Of(Range{'a', 'a'}, Range{'z', 'z'})},
		{name: "double complement", got: az.Complement().Complement(), want: az},
		{name: "complement of empty", got: Empty().Complement(), want: Any()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.got.Equal(tt.want), "got %s, want %s", tt.got, tt.want)
		})
	}
}

func TestSetContains(t *testing.T) {
	s := Of(Range{'a', 'c'}, Range{'x', 'x'})
	for _, r := range "abcx" {
		assert.True(t, s.Contains(r), "%q", r)
	}
	for _, r := range "dwy`" {
		assert.False(t, s.Contains(r), "%q", r)
	}
	assert.False(t, Empty().Contains('a'))
	assert.True(t, Any().Contains(unicode.MaxRune))
}

func TestSetString(t *testing.T) {
	assert.Equal(t, "a", Rune('a').String())
	assert.Equal(t, `[\-a-c]`, Of(Range{'a', 'c'}, Range{'-', '-'}).String())
	assert.Equal(t, "[]", Empty().String())
	assert.Equal(t, "[^]", Any().String())
	assert.Equal(t, `\n`, Rune('\n').String())
}

func TestClasses(t *testing.T) {
	assert.True(t, Dot().Contains('x'))
	assert.False(t, Dot().Contains('\n'))
	assert.True(t, Dot().Contains('\r'))
	assert.True(t, Dot().Contains('\u2028'))
	assert.True(t, Word().Contains('_'))
	assert.False(t, Word().Contains('-'))
	assert.True(t, Space().Contains('\t'))

	greek, ok := Property("Greek")
	require.True(t, ok)
	assert.True(t, greek.Contains('λ'))

	lu, ok := Property("Lu")
	require.True(t, ok)
	assert.True(t, lu.Contains('Q'))
	assert.False(t, lu.Contains('q'))

	_, ok = Property("NoSuchCategory")
	assert.False(t, ok)
}

func TestAlgebra(t *testing.T) {
	var alg Algebra
	ctx := t.Context()

	ok, err := alg.IsSatisfiable(ctx, alg.And(NewRange('a', 'm'), NewRange('k', 'z')))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = alg.IsSatisfiable(ctx, alg.And(NewRange('a', 'm'), alg.Not(NewRange('a', 'm'))))
	require.NoError(t, err)
	assert.False(t, ok)

	w, err := alg.GenerateWitness(ctx, NewRange('k', 'z'))
	require.NoError(t, err)
	assert.Equal(t, 'k', w)

	w, err = alg.GenerateWitness(ctx, Rune('\n').Union(Rune('q')))
	require.NoError(t, err)
	assert.Equal(t, 'q', w, "printable members are preferred")

	_, err = alg.GenerateWitness(ctx, alg.False())
	assert.True(t, errors.Is(err, afaerrors.ErrUnsatisfiable))
}

func TestMinterms(t *testing.T) {
	var alg Algebra
	ps := []Set{NewRange('a', 'm'), NewRange('k', 'z'), Digit()}

	mts, err := alg.Minterms(t.Context(), ps)
	require.NoError(t, err)

	union := Empty()
	for i, m := range mts {
		require.False(t, m.Pred.IsEmpty())
		union = union.Union(m.Pred)
		for j := i + 1; j < len(mts); j++ {
			assert.True(t, m.Pred.Intersect(mts[j].Pred).IsEmpty(), "minterms %d and %d overlap", i, j)
		}
		for k, p := range ps {
			inside := m.Pred.Minus(p).IsEmpty()
			disjoint := m.Pred.Intersect(p).IsEmpty()
			require.True(t, inside || disjoint, "minterm %s straddles %s", m.Pred, p)
			assert.Equal(t, inside, m.Implies(k))
		}
	}
	assert.True(t, union.IsFull())
	assert.Len(t, mts, 5)
}

func TestMintermsHonorDeadline(t *testing.T) {
	var alg Algebra
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := alg.Minterms(ctx, []Set{Digit()})
	assert.True(t, errors.Is(err, afaerrors.ErrTimeout))
}
