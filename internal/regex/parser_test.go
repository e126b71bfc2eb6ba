package regex

import (
	"errors"
	"testing"

	afaerrors "github.com/jacoelho/afa/errors"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"abc", "abc"},
		{"a|bc|", "a|bc|(?:)"},
		{"(?:ab)*c", "(?:ab)*c"},
		{"(ab)+", "(?:ab)+"},
		{"a?b{2}c{1,}d{2,3}", "a?b{2}c{1,}d{2,3}"},
		{"(?=a)b(?!c)", "(?=a)b(?!c)"},
		{"(?>a|b)c", "(?>a|b)c"},
		{"a*+b++c?+", "(?>a*)(?>b+)(?>c?)"},
		{`\*\(\)`, `\*\(\)`},
		{"a{", `a\{`},
		{"a{,3}", `a\{,3\}`},
		{"(?<name>a)(?P<x>b)", "ab"},
		{`\x41\x{42}C`, "ABC"},
		{"[a]", "a"},
		{"[]]", `\]`},
	}
	for _, tt := range tests {
		tree, err := Parse(tt.pattern)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.pattern, err)
		}
		if got := tree.String(tree.Root); got != tt.want {
			t.Fatalf("Parse(%q).String() = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestParseClasses(t *testing.T) {
	tests := []struct {
		pattern string
		in      []rune
		out     []rune
	}{
		{"[a-c]", []rune("abc"), []rune("d-")},
		{"[^a-c]", []rune("d\n"), []rune("abc")},
		{"[a-]", []rune("a-"), []rune("b")},
		{`[\d_]`, []rune("09_"), []rune("a")},
		{`[\w-z]`, []rune("aZ_-"), []rune(" ")},
		{`[\n-\r]`, []rune("\n\v\r"), []rune("\t")},
		{`\D`, []rune("a "), []rune("5")},
		{`\S`, []rune("a"), []rune(" \t")},
		{`\W`, []rune("-"), []rune("a_")},
		{`\p{Greek}`, []rune("αΩ"), []rune("a")},
		{`\P{L}`, []rune("1 "), []rune("aé")},
		{`\pN`, []rune("7"), []rune("x")},
		{`[\b]`, []rune("\b"), []rune("b")},
		{".", []rune("a \t\r\u2028"), []rune("\n")},
	}
	for _, tt := range tests {
		tree, err := Parse(tt.pattern)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.pattern, err)
		}
		n := tree.Node(tree.Root)
		if n.Kind != KindClass {
			t.Fatalf("Parse(%q) kind = %s, want class", tt.pattern, n.Kind)
		}
		for _, r := range tt.in {
			if !n.Set.Contains(r) {
				t.Fatalf("Parse(%q) class does not contain %q", tt.pattern, r)
			}
		}
		for _, r := range tt.out {
			if n.Set.Contains(r) {
				t.Fatalf("Parse(%q) class contains %q", tt.pattern, r)
			}
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		pattern string
		want    error
	}{
		{"(", afaerrors.ErrSyntax},
		{"a)", afaerrors.ErrSyntax},
		{"[a", afaerrors.ErrSyntax},
		{"*a", afaerrors.ErrSyntax},
		{"a**", afaerrors.ErrSyntax},
		{"a{2}{3}", afaerrors.ErrSyntax},
		{"[z-a]", afaerrors.ErrSyntax},
		{`\q`, afaerrors.ErrSyntax},
		{"a{3,2}", afaerrors.ErrSyntax},
		{"a{1001}", afaerrors.ErrSyntax},
		{`\p{Nope}`, afaerrors.ErrSyntax},
		{`\xZZ`, afaerrors.ErrSyntax},
		{`a\`, afaerrors.ErrSyntax},
		{"\xff", afaerrors.ErrSyntax},
		{"^a", afaerrors.ErrUnsupportedConstruct},
		{"a$", afaerrors.ErrUnsupportedConstruct},
		{`\ba`, afaerrors.ErrUnsupportedConstruct},
		{`a\B`, afaerrors.ErrUnsupportedConstruct},
		{`(a)\1`, afaerrors.ErrUnsupportedConstruct},
		{`(?<n>a)\k<n>`, afaerrors.ErrUnsupportedConstruct},
		{"(?<=a)b", afaerrors.ErrUnsupportedConstruct},
		{"(?<!a)b", afaerrors.ErrUnsupportedConstruct},
		{"a*?", afaerrors.ErrUnsupportedConstruct},
		{"a{2,}?", afaerrors.ErrUnsupportedConstruct},
		{"(?i)a", afaerrors.ErrUnsupportedConstruct},
	}
	for _, tt := range tests {
		_, err := Parse(tt.pattern)
		if err == nil {
			t.Fatalf("Parse(%q) error = nil, want %v", tt.pattern, tt.want)
		}
		if !errors.Is(err, tt.want) {
			t.Fatalf("Parse(%q) error = %v, want %v", tt.pattern, err, tt.want)
		}
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"a+", "aa*"},
		{"a?", "a|(?:)"},
		{"a{3}", "aaa"},
		{"a{0}", "(?:)"},
		{"a{2,}", "aaa*"},
		{"a{1,3}", "a(?:a(?:a|(?:))|(?:))"},
		{"(?=b+)", "(?=bb*)"},
		{"(?>a?)", "(?>a|(?:))"},
	}
	for _, tt := range tests {
		tree, err := Parse(tt.pattern)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.pattern, err)
		}
		out := Expand(tree)
		if got := out.String(out.Root); got != tt.want {
			t.Fatalf("Expand(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
		for i := range out.Len() {
			switch out.Node(NodeID(i)).Kind {
			case KindPlus, KindOptional, KindRepeat:
				t.Fatalf("Expand(%q) left a %s node", tt.pattern, out.Node(NodeID(i)).Kind)
			}
		}
	}
}

func TestFollow(t *testing.T) {
	tree, err := Parse("(?:a|b)*c(?>d|e)f")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	tree = Expand(tree)
	root := tree.Node(tree.Root)
	star := root.Children[0]
	union := tree.Node(star).Children[0]
	nodes, bounded := tree.follow(union)
	if bounded {
		t.Fatalf("follow(union) bounded = true, want false")
	}
	if got, want := len(nodes), 4; got != want {
		t.Fatalf("follow(union) = %d nodes, want %d", got, want)
	}
	if nodes[0] != star {
		t.Fatalf("follow(union)[0] = %d, want star %d", nodes[0], star)
	}

	atomic := tree.Node(root.Children[2])
	inner := atomic.Children[0]
	nodes, bounded = tree.follow(inner)
	if !bounded || len(nodes) != 0 {
		t.Fatalf("follow(atomic body) = %v, %v, want [], true", nodes, bounded)
	}
}
