package automaton

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/jacoelho/afa/internal/algebra"
	"github.com/jacoelho/afa/internal/boolexpr"
)

// Accepts decides membership of word by backward evaluation: starting from
// the accepting states it computes, for each suffix of word, the set of
// states whose language contains that suffix, and finally evaluates the
// initial configuration against the set for the whole word.
func Accepts[P, S any](a *Automaton[P], alg algebra.Algebra[P, S], word []S) bool {
	if a.IsZero() {
		return len(word) == 0
	}
	current := a.closeEpsilon(a.Accepting())
	for i := len(word) - 1; i >= 0; i-- {
		prev := bitset.New(uint(a.maxStateID + 1))
		for s, moves := range a.inputs {
			for _, m := range moves {
				if boolexpr.HasModel(m.To, current) && alg.HasModel(m.Guard, word[i]) {
					prev.Set(uint(s))
					break
				}
			}
		}
		current = a.closeEpsilon(prev)
	}
	return boolexpr.HasModel(a.initial, current)
}

// closeEpsilon adds every state with an epsilon move whose target holds
// under active, until nothing changes. active is modified in place.
func (a *Automaton[P]) closeEpsilon(active *bitset.BitSet) *bitset.BitSet {
	for changed := true; changed; {
		changed = false
		for s, moves := range a.epsilons {
			if active.Test(uint(s)) {
				continue
			}
			for _, m := range moves {
				if boolexpr.HasModel(m.To, active) {
					active.Set(uint(s))
					changed = true
					break
				}
			}
		}
	}
	return active
}
