// Package charset implements predicates over Unicode code points as sorted
// interval sets, and the predicate algebra regex automata are built over.
package charset

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Range is a closed interval of code points.
type Range struct {
	Lo, Hi rune
}

// Set is an immutable set of code points kept as sorted, disjoint,
// non-adjacent ranges. The zero value is the empty set.
type Set struct {
	ranges []Range
}

// Empty returns the empty set.
func Empty() Set { return Set{} }

// Any returns the set of all code points.
func Any() Set { return Set{ranges: []Range{{0, unicode.MaxRune}}} }

// Rune returns the singleton {r}.
func Rune(r rune) Set { return Set{ranges: []Range{{r, r}}} }

// NewRange returns [lo, hi], or the empty set when lo > hi.
func NewRange(lo, hi rune) Set {
	if lo > hi {
		return Set{}
	}
	return Set{ranges: []Range{{max(lo, 0), min(hi, unicode.MaxRune)}}}
}

// Of builds a set from arbitrary, possibly overlapping ranges.
func Of(ranges ...Range) Set {
	return normalize(slices.Clone(ranges))
}

func normalize(rs []Range) Set {
	rs = slices.DeleteFunc(rs, func(r Range) bool { return r.Lo > r.Hi })
	if len(rs) == 0 {
		return Set{}
	}
	slices.SortFunc(rs, func(a, b Range) int {
		if a.Lo != b.Lo {
			return int(a.Lo - b.Lo)
		}
		return int(a.Hi - b.Hi)
	})
	out := rs[:1]
	for _, r := range rs[1:] {
		last := &out[len(out)-1]
		if r.Lo <= last.Hi+1 {
			last.Hi = max(last.Hi, r.Hi)
			continue
		}
		out = append(out, r)
	}
	return Set{ranges: out}
}

// Ranges returns a copy of the intervals in ascending order.
func (s Set) Ranges() []Range { return slices.Clone(s.ranges) }

// IsEmpty reports whether s has no members.
func (s Set) IsEmpty() bool { return len(s.ranges) == 0 }

// IsFull reports whether s contains every code point.
func (s Set) IsFull() bool {
	return len(s.ranges) == 1 && s.ranges[0].Lo == 0 && s.ranges[0].Hi == unicode.MaxRune
}

// Contains reports whether r is a member of s.
func (s Set) Contains(r rune) bool {
	_, found := slices.BinarySearchFunc(s.ranges, r, func(x Range, t rune) int {
		switch {
		case x.Hi < t:
			return -1
		case x.Lo > t:
			return 1
		default:
			return 0
		}
	})
	return found
}

// Min returns the smallest member; ok is false for the empty set.
func (s Set) Min() (rune, bool) {
	if len(s.ranges) == 0 {
		return 0, false
	}
	return s.ranges[0].Lo, true
}

// Union returns s ∪ o.
func (s Set) Union(o Set) Set {
	if len(o.ranges) == 0 {
		return s
	}
	if len(s.ranges) == 0 {
		return o
	}
	rs := make([]Range, 0, len(s.ranges)+len(o.ranges))
	rs = append(rs, s.ranges...)
	rs = append(rs, o.ranges...)
	return normalize(rs)
}

// Intersect returns s ∩ o.
func (s Set) Intersect(o Set) Set {
	var out []Range
	i, j := 0, 0
	for i < len(s.ranges) && j < len(o.ranges) {
		a, b := s.ranges[i], o.ranges[j]
		lo, hi := max(a.Lo, b.Lo), min(a.Hi, b.Hi)
		if lo <= hi {
			out = append(out, Range{lo, hi})
		}
		if a.Hi < b.Hi {
			i++
		} else {
			j++
		}
	}
	return Set{ranges: out}
}

// Complement returns every code point not in s.
func (s Set) Complement() Set {
	var out []Range
	next := rune(0)
	for _, r := range s.ranges {
		if r.Lo > next {
			out = append(out, Range{next, r.Lo - 1})
		}
		next = r.Hi + 1
	}
	if next <= unicode.MaxRune {
		out = append(out, Range{next, unicode.MaxRune})
	}
	return Set{ranges: out}
}

// Minus returns s \ o.
func (s Set) Minus(o Set) Set {
	return s.Intersect(o.Complement())
}

// Equal reports whether s and o have the same members.
func (s Set) Equal(o Set) bool {
	return slices.Equal(s.ranges, o.ranges)
}

// String renders s as a bracket expression, e.g. [a-z0-9].
func (s Set) String() string {
	switch {
	case s.IsEmpty():
		return "[]"
	case s.IsFull():
		return "[^]"
	case len(s.ranges) == 1 && s.ranges[0].Lo == s.ranges[0].Hi:
		return quote(s.ranges[0].Lo)
	}
	var b strings.Builder
	b.WriteByte('[')
	for _, r := range s.ranges {
		b.WriteString(quote(r.Lo))
		if r.Hi != r.Lo {
			b.WriteByte('-')
			b.WriteString(quote(r.Hi))
		}
	}
	b.WriteByte(']')
	return b.String()
}

func quote(r rune) string {
	if strings.ContainsRune(`[]^-\`, r) {
		return `\` + string(r)
	}
	if !unicode.IsPrint(r) {
		q := strconv.QuoteRuneToASCII(r)
		return q[1 : len(q)-1]
	}
	return string(r)
}
