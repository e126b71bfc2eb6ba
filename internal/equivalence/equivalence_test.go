package equivalence

import (
	"context"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	afaerrors "github.com/jacoelho/afa/errors"
	"github.com/jacoelho/afa/internal/automaton"
	"github.com/jacoelho/afa/internal/boolexpr"
	"github.com/jacoelho/afa/internal/charset"
)

var alg = charset.Algebra{}

type fa = *automaton.Automaton[charset.Set]

func must(t *testing.T) func(fa, error) fa {
	return func(a fa, err error) fa {
		t.Helper()
		require.NoError(t, err)
		return a
	}
}

func class(t *testing.T, s charset.Set) fa {
	return must(t)(automaton.Predicate(t.Context(), alg, s))
}

func lit(t *testing.T, s string) fa {
	t.Helper()
	var parts []fa
	for _, r := range s {
		parts = append(parts, class(t, charset.Rune(r)))
	}
	return must(t)(automaton.Concat(t.Context(), alg, parts...))
}

func union(t *testing.T, a, b fa) fa { return must(t)(automaton.Union(t.Context(), alg, a, b)) }
func concat(t *testing.T, as ...fa) fa {
	return must(t)(automaton.Concat(t.Context(), alg, as...))
}
func star(t *testing.T, a fa) fa { return must(t)(automaton.Star(t.Context(), alg, a)) }

// lookahead builds (?=body) or (?!body) with body matching a prefix of the
// remaining input.
func lookahead(t *testing.T, body fa, negated bool) fa {
	body = concat(t, body, automaton.Universal(alg))
	if negated {
		body = must(t)(automaton.Complement(t.Context(), alg, body))
	}
	return must(t)(automaton.PositiveLookAhead(t.Context(), alg, body))
}

func assertWitness(t *testing.T, a, b fa, res Result[rune]) {
	t.Helper()
	require.False(t, res.Equivalent)
	require.NotNil(t, res.Witness)
	assert.NotEqual(t,
		automaton.Accepts(a, alg, res.Witness),
		automaton.Accepts(b, alg, res.Witness),
		"witness %q", string(res.Witness))
}

func TestIsEquivalent(t *testing.T) {
	ab := union(t, lit(t, "a"), lit(t, "b"))
	tests := []struct {
		name string
		a, b fa
		want bool
	}{
		{"reflexive literal", lit(t, "abc"), lit(t, "abc"), true},
		{"star of star", star(t, lit(t, "a")), star(t, star(t, lit(t, "a"))), true},
		{"star of union", star(t, ab), star(t, concat(t, star(t, lit(t, "a")), star(t, lit(t, "b")))), true},
		{"union commutes", union(t, lit(t, "x"), lit(t, "yz")), union(t, lit(t, "yz"), lit(t, "x")), true},
		{"class vs union", class(t, charset.NewRange('a', 'b')), ab, true},
		{"order matters", lit(t, "ab"), lit(t, "ba"), false},
		{"star vs plus", star(t, lit(t, "a")), concat(t, lit(t, "a"), star(t, lit(t, "a"))), false},
		{"empty vs epsilon", automaton.Empty[charset.Set](), automaton.Epsilon[charset.Set](), false},
		{"positive lookahead", concat(t, lookahead(t, lit(t, "a"), false), lit(t, "a")), lit(t, "a"), true},
		{"negative lookahead", concat(t, lookahead(t, lit(t, "a"), true), class(t, charset.NewRange('a', 'z'))), class(t, charset.NewRange('b', 'z')), true},
		{"lookahead restricts", concat(t, lookahead(t, lit(t, "ab"), false), class(t, charset.Any()), class(t, charset.Any())), lit(t, "ab"), true},
		{"lookahead differs", concat(t, lookahead(t, lit(t, "a"), false), star(t, class(t, charset.Any()))), star(t, class(t, charset.Any())), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := IsEquivalent(t.Context(), alg, tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Equivalent)
			if !tt.want {
				assertWitness(t, tt.a, tt.b, res)
			} else {
				assert.Nil(t, res.Witness)
			}

			rev, err := IsEquivalent(t.Context(), alg, tt.b, tt.a)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rev.Equivalent)
			if !tt.want {
				assertWitness(t, tt.b, tt.a, rev)
			}
		})
	}
}

func TestIsEmpty(t *testing.T) {
	res, err := IsEmpty(t.Context(), alg, automaton.Empty[charset.Set]())
	require.NoError(t, err)
	assert.True(t, res.Equivalent)

	contradiction := concat(t, lookahead(t, lit(t, "a"), false), lit(t, "b"))
	res, err = IsEmpty(t.Context(), alg, contradiction)
	require.NoError(t, err)
	assert.True(t, res.Equivalent)

	a := concat(t, lit(t, "a"), star(t, lit(t, "b")))
	res, err = IsEmpty(t.Context(), alg, a)
	require.NoError(t, err)
	assert.False(t, res.Equivalent)
	assert.True(t, automaton.Accepts(a, alg, res.Witness))

	res, err = IsEmpty(t.Context(), alg, automaton.Epsilon[charset.Set]())
	require.NoError(t, err)
	assert.False(t, res.Equivalent)
	assert.Empty(t, res.Witness)
}

func TestMaxPairs(t *testing.T) {
	_, err := IsEquivalent(t.Context(), alg, lit(t, "aaa"), lit(t, "aab"), WithMaxPairs(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, afaerrors.ErrTimeout)
}

func TestCanceled(t *testing.T) {
	a, b := star(t, lit(t, "a")), lit(t, "a")
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := IsEquivalent(ctx, alg, a, b)
	assert.ErrorIs(t, err, afaerrors.ErrTimeout)

	_, err = AreReverseEquivalent(ctx, alg, a, b)
	assert.ErrorIs(t, err, afaerrors.ErrTimeout)
}

func TestAreReverseEquivalent(t *testing.T) {
	ab := union(t, lit(t, "a"), lit(t, "b"))
	tests := []struct {
		name string
		a, b fa
		want bool
	}{
		{"star of union", star(t, ab), star(t, concat(t, star(t, lit(t, "a")), star(t, lit(t, "b")))), true},
		{"order matters", lit(t, "ab"), lit(t, "ba"), false},
		{"suffix", concat(t, star(t, ab), lit(t, "a")), concat(t, star(t, ab), lit(t, "b")), false},
		{"class vs union", class(t, charset.NewRange('a', 'b')), ab, true},
		{"empty", automaton.Empty[charset.Set](), must(t)(automaton.Predicate(t.Context(), alg, charset.Empty())), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AreReverseEquivalent(t.Context(), alg, tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			res, err := IsEquivalent(t.Context(), alg, tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, got, res.Equivalent)
		})
	}

	_, err := AreReverseEquivalent(t.Context(), alg, lookahead(t, lit(t, "a"), false), lit(t, "a"))
	assert.ErrorIs(t, err, afaerrors.ErrUnsupportedConstruct)
}

func TestSimilar(t *testing.T) {
	s := func(id int) boolexpr.Expr { return boolexpr.NewState(id) }
	accepting := bitset.New(0).Set(3)
	rel := newSimilar(accepting)

	assert.True(t, rel.isMember(s(1), s(1)))
	assert.False(t, rel.isMember(s(1), s(2)))
	assert.True(t, rel.isMember(boolexpr.MkOr(s(1), s(2)), boolexpr.MkOr(s(2), s(1))))
	assert.True(t, rel.isMember(boolexpr.MkAnd(s(1), boolexpr.MkOr(s(1), s(2))), s(1)))

	require.True(t, rel.add(s(1), s(2)))
	assert.True(t, rel.isMember(s(1), s(2)))
	assert.True(t, rel.isMember(boolexpr.MkOr(s(1), s(4)), boolexpr.MkOr(s(2), s(4))))
	assert.True(t, rel.isMember(boolexpr.MkAnd(s(1), s(5)), boolexpr.MkAnd(s(5), s(2))))
	assert.False(t, rel.isMember(s(1), s(4)))

	assert.False(t, rel.add(s(3), s(4)))
	assert.True(t, rel.add(s(3), boolexpr.MkOr(s(3), s(4))))
}

func TestWorklistOrder(t *testing.T) {
	s := func(id int) boolexpr.Expr { return boolexpr.NewState(id) }
	var w worklist[rune]
	big := boolexpr.MkOr(s(1), s(2), s(3))
	w.push(big, s(1), nil)
	w.push(s(1), s(2), []rune("ab"))
	w.push(s(3), s(4), []rune("a"))
	w.push(s(5), s(6), []rune("b"))

	assert.Equal(t, []rune("a"), w.pop().witness)
	assert.Equal(t, []rune("b"), w.pop().witness)
	assert.Equal(t, []rune("ab"), w.pop().witness)
	assert.Equal(t, big, w.pop().left)
	assert.Equal(t, 0, w.Len())
}
