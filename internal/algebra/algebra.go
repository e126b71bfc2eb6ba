// Package algebra defines the predicate algebra automata are built over.
//
// An algebra is a decision procedure over a predicate type P and a value
// type S. Automaton guards are predicates, input words are sequences of
// values. Symbolic algorithms never enumerate S: they partition the space
// implied by the guards they meet into minterms and pick one witness per
// minterm.
package algebra

import (
	"context"

	"github.com/bits-and-blooms/bitset"

	afaerrors "github.com/jacoelho/afa/errors"
)

// Algebra is the decision procedure for predicates P over values S.
//
// IsSatisfiable, GenerateWitness and Minterms may block on an external
// solver; they honor ctx and fail with a KindTimeout error once it is done.
type Algebra[P, S any] interface {
	True() P
	False() P
	And(ps ...P) P
	Or(ps ...P) P
	Not(p P) P
	IsSatisfiable(ctx context.Context, p P) (bool, error)
	HasModel(p P, s S) bool
	// GenerateWitness returns a value satisfying p, or a KindUnsatisfiable error.
	GenerateWitness(ctx context.Context, p P) (S, error)
	// Minterms partitions the space implied by ps into disjoint, jointly
	// exhaustive satisfiable predicates. Callers must not rely on the count.
	Minterms(ctx context.Context, ps []P) ([]Minterm[P], error)
}

// Minterm is one class of a minterm partition.
// Tags has bit i set iff Pred implies the i-th input predicate.
type Minterm[P any] struct {
	Pred P
	Tags *bitset.BitSet
}

// Implies reports whether the minterm lies inside input predicate i.
func (m Minterm[P]) Implies(i int) bool {
	return m.Tags != nil && m.Tags.Test(uint(i))
}

// Deadline returns a KindTimeout error once ctx is done.
func Deadline(ctx context.Context, op string) error {
	return afaerrors.Timeout(ctx, op)
}

// Split computes minterms by refining the partition {True} with each
// predicate in turn, keeping the satisfiable halves. Any algebra can
// delegate its Minterms to Split; the result order depends only on the
// order of ps.
func Split[P, S any](ctx context.Context, alg Algebra[P, S], ps []P) ([]Minterm[P], error) {
	parts := []Minterm[P]{{Pred: alg.True(), Tags: bitset.New(uint(len(ps)))}}
	for i, p := range ps {
		if err := Deadline(ctx, "minterms"); err != nil {
			return nil, err
		}
		notP := alg.Not(p)
		next := make([]Minterm[P], 0, len(parts)*2)
		for _, part := range parts {
			in := alg.And(part.Pred, p)
			ok, err := alg.IsSatisfiable(ctx, in)
			if err != nil {
				return nil, err
			}
			if ok {
				tags := part.Tags.Clone()
				tags.Set(uint(i))
				next = append(next, Minterm[P]{Pred: in, Tags: tags})
			}
			out := alg.And(part.Pred, notP)
			ok, err = alg.IsSatisfiable(ctx, out)
			if err != nil {
				return nil, err
			}
			if ok {
				next = append(next, Minterm[P]{Pred: out, Tags: part.Tags})
			}
		}
		parts = next
	}
	return parts, nil
}
