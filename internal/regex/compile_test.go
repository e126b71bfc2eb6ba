package regex

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	afaerrors "github.com/jacoelho/afa/errors"
	"github.com/jacoelho/afa/internal/automaton"
	"github.com/jacoelho/afa/internal/charset"
	"github.com/jacoelho/afa/internal/equivalence"
)

var alg = charset.Algebra{}

func compile(t *testing.T, pattern string, sem Semantics) fa {
	t.Helper()
	a, _, err := Compile(t.Context(), pattern, sem)
	require.NoError(t, err, "pattern %q", pattern)
	return a
}

func accepts(a fa, w string) bool {
	return automaton.Accepts(a, alg, []rune(w))
}

func words(alphabet string, n int) []string {
	out := []string{""}
	frontier := []string{""}
	for range n {
		var next []string
		for _, w := range frontier {
			for _, r := range alphabet {
				next = append(next, w+string(r))
			}
		}
		out = append(out, next...)
		frontier = next
	}
	return out
}

func TestCompileUnionFinals(t *testing.T) {
	a, stats, err := Compile(t.Context(), "abc|de", FirstMatch)
	require.NoError(t, err)
	assert.Len(t, a.Finals(), 1)
	assert.Empty(t, a.LookaheadFinals())
	assert.Equal(t, 1, stats.Finals)
	assert.Zero(t, stats.PriorityGuards)
	assert.Equal(t, 1, stats.SkippedGuards)

	for _, w := range []string{"abc", "de"} {
		assert.True(t, accepts(a, w), w)
	}
	assert.False(t, accepts(a, "ab"))
}

func TestCompileScenarios(t *testing.T) {
	tests := []struct {
		pattern string
		accept  []string
		reject  []string
	}{
		// The match of (?=aa)a is a single value, so no two-value word is
		// spanned by it; a second value is needed to consume the rest.
		{"(?=aa)a", nil, []string{"a", "aa", "aaa"}},
		{"(?=aa)a.", []string{"aa"}, []string{"a", "aaa", "ab"}},
		{"a(?!b(?!c))..", []string{"abc", "acd"}, []string{"abd", "ab"}},
		{"(?=a(?=b))ab", []string{"ab"}, []string{"ba", "a", "abb"}},
		{"(?!a)[a-z]", []string{"b", "z"}, []string{"a", "", "bb"}},
		{"(?>a|ab)c", []string{"ac"}, []string{"abc"}},
		{"(?>a*)a", nil, []string{"a", "aa", "aaa"}},
		{"a*+b", []string{"b", "aab"}, []string{"aa"}},
		{"(?>a*)b", []string{"b", "aab"}, []string{"aa"}},
		{"a|ab", []string{"a"}, []string{"ab"}},
		{"ab|a", []string{"a", "ab"}, []string{"b"}},
		{"a{2,3}", []string{"aa", "aaa"}, []string{"a", "aaaa"}},
		{"", []string{""}, []string{"a"}},
		{`\d+\.\d{2}`, []string{"1.50", "10.00"}, []string{"1.5", "1.500"}},
		{"a.b", []string{"a\rb", "a b"}, []string{"a\nb", "ab"}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			a := compile(t, tt.pattern, FirstMatch)
			for _, w := range tt.accept {
				assert.True(t, accepts(a, w), "should accept %q", w)
			}
			for _, w := range tt.reject {
				assert.False(t, accepts(a, w), "should reject %q", w)
			}
		})
	}
}

func TestCompileAnyMatch(t *testing.T) {
	a := compile(t, "a|ab", AnyMatch)
	assert.True(t, accepts(a, "a"))
	assert.True(t, accepts(a, "ab"))

	a = compile(t, "(?>a|ab)c", AnyMatch)
	assert.True(t, accepts(a, "ac"))
	assert.False(t, accepts(a, "abc"))

	a = compile(t, "(?=aa)a", AnyMatch)
	assert.False(t, accepts(a, "aa"))
}

// Patterns without lookarounds or atomic groups must agree with Go's
// leftmost-first matcher anchored at offset 0.
func TestFirstMatchAgreesWithBacktracking(t *testing.T) {
	patterns := []string{
		"a|ab",
		"ab|a",
		"(a|ab)(c|bcd)",
		"a*a",
		"a*(b|abb)",
		"a*(abb|b)",
		"a*(ab)*b",
		"abb|a*(ab)*b",
		"(a|b)*c",
		"(a|ab)*c",
		"(ab|a)*b?",
		"a?a",
		"a{2,3}",
		"(a|b|ab)*",
		"((a|ab)c)*",
		"[ab]*b",
		"a+b*",
	}
	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			re := regexp.MustCompile(`^(?:` + pattern + `)`)
			a := compile(t, pattern, FirstMatch)
			for _, w := range words("abc", 4) {
				m := re.FindStringIndex(w)
				want := m != nil && m[1] == len(w)
				assert.Equal(t, want, accepts(a, w), "word %q", w)
			}
		})
	}
}

// Expected sets follow a backtracking engine anchored at offset 0: a word
// is accepted when the first match found spans all of it.
func TestFirstMatchQuantifiedLookarounds(t *testing.T) {
	tests := []struct {
		pattern string
		accept  []string
		reject  []string
	}{
		{"(?:a(?!b))*(?:ab|b)", []string{"ab", "aab", "aaab", "b"}, []string{"", "a", "aa", "abb", "ba"}},
		{"(?:a(?!b))+(?:ab|b)", []string{"aab", "aaab"}, []string{"ab", "b", "a", "aabb"}},
		{"(?:a(?!a))*", []string{"", "a"}, []string{"aa", "b"}},
		{"(?:a(?=a))*ab", []string{"ab", "aab", "aaab"}, []string{"b", "aa", "abb"}},
		{"(?:a(?=b))+b", []string{"ab"}, []string{"b", "aab", "abb"}},
		{"(?:(?!ab)[ab])*", []string{"", "aa", "ba", "bba"}, []string{"ab", "bab", "aab"}},
		{"(?:(?=ab)a|b)*", []string{"", "ab", "bb", "abb"}, []string{"a", "aa", "ba"}},
		{"(?>a|ab)*c", []string{"c", "ac", "aac"}, []string{"abc", "bc", "a"}},
		{"(?:(?>a|ab)b)*", []string{"", "ab", "abab"}, []string{"abb", "a", "b"}},
		{"(?:a(?>b|bc))*c", []string{"c", "abc", "ababc"}, []string{"abcc", "ac", "ab"}},
		{"(?:a*+b)+", []string{"b", "ab", "aabab"}, []string{"", "a", "aba"}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			a := compile(t, tt.pattern, FirstMatch)
			for _, w := range tt.accept {
				assert.True(t, accepts(a, w), "should accept %q", w)
			}
			for _, w := range tt.reject {
				assert.False(t, accepts(a, w), "should reject %q", w)
			}
		})
	}
}

func TestCompileEquivalence(t *testing.T) {
	left := compile(t, "a*(b|abb)", FirstMatch)
	right := compile(t, "a*(abb|b)", FirstMatch)
	res, err := equivalence.IsEquivalent(t.Context(), alg, left, right)
	require.NoError(t, err)
	assert.True(t, res.Equivalent)
	assert.Nil(t, res.Witness)

	left = compile(t, "a*(ab)*b", FirstMatch)
	right = compile(t, "abb|a*(ab)*b", FirstMatch)
	res, err = equivalence.IsEquivalent(t.Context(), alg, left, right)
	require.NoError(t, err)
	require.False(t, res.Equivalent)
	assert.NotEqual(t, automaton.Accepts(left, alg, res.Witness), automaton.Accepts(right, alg, res.Witness))
}

func TestRemoveEpsilonOnLookaheads(t *testing.T) {
	a := compile(t, "(?=a(?=b))ab", FirstMatch)
	free, err := automaton.RemoveEpsilonMoves(t.Context(), alg, a)
	require.NoError(t, err)
	assert.True(t, free.IsEpsilonFree())
	assert.True(t, accepts(free, "ab"))
	assert.False(t, accepts(free, "ba"))
}

func TestCompileErrors(t *testing.T) {
	_, _, err := Compile(t.Context(), `a\b`, FirstMatch)
	assert.ErrorIs(t, err, afaerrors.ErrUnsupportedConstruct)

	_, _, err = Compile(t.Context(), "(a", FirstMatch)
	assert.ErrorIs(t, err, afaerrors.ErrSyntax)
}

func TestParseSemantics(t *testing.T) {
	for name, want := range map[string]Semantics{"": FirstMatch, "first-match": FirstMatch, "ANY": AnyMatch, "any-match": AnyMatch} {
		got, err := ParseSemantics(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
		if name != "" && name != "ANY" {
			assert.Equal(t, name, got.String())
		}
	}
	_, err := ParseSemantics("posix")
	assert.Error(t, err)
}
