package charset

import "unicode"

// Dot is the set matched by '.': everything except '\n', as in Go's regexp.
func Dot() Set {
	return Rune('\n').Complement()
}

// Digit is \d.
func Digit() Set { return NewRange('0', '9') }

// Word is \w.
func Word() Set {
	return Of(Range{'a', 'z'}, Range{'A', 'Z'}, Range{'0', '9'}, Range{'_', '_'})
}

// Space is \s.
func Space() Set {
	return Of(Range{' ', ' '}, Range{'\t', '\r'})
}

// FromTable converts a unicode range table into a set.
func FromTable(t *unicode.RangeTable) Set {
	if t == nil {
		return Set{}
	}
	rs := make([]Range, 0, len(t.R16)+len(t.R32))
	for _, r := range t.R16 {
		rs = appendStrided(rs, rune(r.Lo), rune(r.Hi), rune(r.Stride))
	}
	for _, r := range t.R32 {
		rs = appendStrided(rs, rune(r.Lo), rune(r.Hi), rune(r.Stride))
	}
	return normalize(rs)
}

func appendStrided(rs []Range, lo, hi, stride rune) []Range {
	if stride == 1 {
		return append(rs, Range{lo, hi})
	}
	for r := lo; r <= hi; r += stride {
		rs = append(rs, Range{r, r})
	}
	return rs
}

// Property resolves a \p{name} category or script name.
// Single-letter categories (L, N, ...) and two-letter ones (Lu, Nd, ...)
// come from unicode.Categories, script names from unicode.Scripts.
func Property(name string) (Set, bool) {
	if t, ok := unicode.Categories[name]; ok {
		return FromTable(t), true
	}
	if t, ok := unicode.Scripts[name]; ok {
		return FromTable(t), true
	}
	if len(name) > 2 && name[:2] == "Is" {
		if t, ok := unicode.Scripts[name[2:]]; ok {
			return FromTable(t), true
		}
	}
	return Set{}, false
}
