package charset

import (
	"context"

	afaerrors "github.com/jacoelho/afa/errors"
	"github.com/jacoelho/afa/internal/algebra"
)

// Algebra is the predicate algebra of code point sets.
// Satisfiability is emptiness of the interval list, so the only blocking
// it does is the deadline check.
type Algebra struct{}

var _ algebra.Algebra[Set, rune] = Algebra{}

// True returns the full set.
func (Algebra) True() Set { return Any() }

// False returns the empty set.
func (Algebra) False() Set { return Empty() }

// And intersects ps; And() is the full set.
func (Algebra) And(ps ...Set) Set {
	out := Any()
	for _, p := range ps {
		out = out.Intersect(p)
	}
	return out
}

// Or unions ps; Or() is the empty set.
func (Algebra) Or(ps ...Set) Set {
	var out Set
	for _, p := range ps {
		out = out.Union(p)
	}
	return out
}

// Not complements p.
func (Algebra) Not(p Set) Set { return p.Complement() }

// IsSatisfiable reports whether p is non-empty.
func (Algebra) IsSatisfiable(ctx context.Context, p Set) (bool, error) {
	if err := algebra.Deadline(ctx, "is-satisfiable"); err != nil {
		return false, err
	}
	return !p.IsEmpty(), nil
}

// HasModel reports whether r is in p.
func (Algebra) HasModel(p Set, r rune) bool { return p.Contains(r) }

// GenerateWitness returns the smallest member of p. Printable ASCII
// members are preferred so that counterexamples read well.
func (Algebra) GenerateWitness(ctx context.Context, p Set) (rune, error) {
	if err := algebra.Deadline(ctx, "generate-witness"); err != nil {
		return 0, err
	}
	if printable := p.Intersect(NewRange(' ', '~')); !printable.IsEmpty() {
		r, _ := printable.Min()
		return r, nil
	}
	r, ok := p.Min()
	if !ok {
		return 0, afaerrors.New(afaerrors.KindUnsatisfiable, "generate-witness", "empty character set")
	}
	return r, nil
}

// Minterms partitions the code point space induced by ps.
func (a Algebra) Minterms(ctx context.Context, ps []Set) ([]algebra.Minterm[Set], error) {
	return algebra.Split[Set, rune](ctx, a, ps)
}
