package regex

import (
	"strconv"
	"strings"
	"unicode/utf8"

	afaerrors "github.com/jacoelho/afa/errors"
	"github.com/jacoelho/afa/internal/charset"
)

// maxRepeat bounds the counts of {n,m} repetitions.
const maxRepeat = 1000

type parser struct {
	tree    *AST
	pattern string
	pos     int
}

type atomHandler func(*parser) (NodeID, error)

type quantifierHandler func(*parser, NodeID) (NodeID, bool, error)

var (
	// atomHandlers covers atoms that do not nest; groups are parsed by
	// parseAtom directly.
	atomHandlers = map[byte]atomHandler{
		'[':  (*parser).parseClass,
		'\\': (*parser).parseEscapeAtom,
		'.': func(p *parser) (NodeID, error) {
			p.pos++
			return p.tree.class(charset.Dot()), nil
		},
		'^': func(p *parser) (NodeID, error) {
			return 0, p.unsupportedf("anchor '^' at position %d", p.pos)
		},
		'$': func(p *parser) (NodeID, error) {
			return 0, p.unsupportedf("anchor '$' at position %d", p.pos)
		},
		'*': nothingToRepeat,
		'+': nothingToRepeat,
		'?': nothingToRepeat,
	}
	quantifierHandlers = map[byte]quantifierHandler{
		'*': func(p *parser, operand NodeID) (NodeID, bool, error) {
			p.pos++
			return p.tree.unary(KindStar, operand), true, nil
		},
		'+': func(p *parser, operand NodeID) (NodeID, bool, error) {
			p.pos++
			return p.tree.unary(KindPlus, operand), true, nil
		},
		'?': func(p *parser, operand NodeID) (NodeID, bool, error) {
			p.pos++
			return p.tree.unary(KindOptional, operand), true, nil
		},
		'{': (*parser).parseRepeat,
	}
)

// groupPrefixes are tried in order after '('. A nil wrap keeps the body
// as is.
var groupPrefixes = []struct {
	wrap        func(*AST, NodeID) NodeID
	prefix      string
	unsupported string
}{
	{prefix: "?:"},
	{prefix: "?=", wrap: lookahead(false)},
	{prefix: "?!", wrap: lookahead(true)},
	{prefix: "?>", wrap: func(t *AST, body NodeID) NodeID { return t.unary(KindAtomic, body) }},
	{prefix: "?<=", unsupported: "lookbehind"},
	{prefix: "?<!", unsupported: "negative lookbehind"},
}

func lookahead(negated bool) func(*AST, NodeID) NodeID {
	return func(t *AST, body NodeID) NodeID {
		return t.add(Node{Kind: KindLookahead, Children: []NodeID{body}, Negated: negated})
	}
}

func nothingToRepeat(p *parser) (NodeID, error) {
	return 0, p.syntaxf("nothing to repeat at position %d", p.pos)
}

// Parse parses pattern into an AST with parent links.
func Parse(pattern string) (*AST, error) {
	if !utf8.ValidString(pattern) {
		return nil, afaerrors.New(afaerrors.KindSyntax, "parse", "pattern is not valid UTF-8")
	}
	p := &parser{pattern: pattern, tree: &AST{}}
	root, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.syntaxf("unmatched ')' at position %d", p.pos)
	}
	p.tree.Root = root
	p.tree.link()
	return p.tree, nil
}

func (p *parser) eof() bool {
	return p.pos >= len(p.pattern)
}

func (p *parser) peek() byte {
	return p.pattern[p.pos]
}

func (p *parser) next() rune {
	r, size := utf8.DecodeRuneInString(p.pattern[p.pos:])
	p.pos += size
	return r
}

func (p *parser) syntaxf(format string, args ...any) error {
	return afaerrors.Newf(afaerrors.KindSyntax, "parse", format+" in %q", append(args, p.pattern)...)
}

func (p *parser) unsupportedf(format string, args ...any) error {
	return afaerrors.Newf(afaerrors.KindUnsupportedConstruct, "parse", format+" in %q", append(args, p.pattern)...)
}

func (p *parser) parseAlternation() (NodeID, error) {
	var alts []NodeID
	for {
		seq, err := p.parseSequence()
		if err != nil {
			return 0, err
		}
		alts = append(alts, seq)
		if p.eof() || p.peek() != '|' {
			return p.tree.alt(alts...), nil
		}
		p.pos++
	}
}

func (p *parser) parseSequence() (NodeID, error) {
	var items []NodeID
	for !p.eof() && p.peek() != '|' && p.peek() != ')' {
		atom, err := p.parseAtom()
		if err != nil {
			return 0, err
		}
		if atom, err = p.parseQuantifier(atom); err != nil {
			return 0, err
		}
		items = append(items, atom)
	}
	return p.tree.seq(items...), nil
}

func (p *parser) parseAtom() (NodeID, error) {
	if p.peek() == '(' {
		return p.parseGroup()
	}
	if handler, ok := atomHandlers[p.peek()]; ok {
		return handler(p)
	}
	return p.tree.class(charset.Rune(p.next())), nil
}

// parseQuantifier applies at most one quantifier, with its lazy or
// possessive suffix, to operand.
func (p *parser) parseQuantifier(operand NodeID) (NodeID, error) {
	if p.eof() {
		return operand, nil
	}
	handler, ok := quantifierHandlers[p.peek()]
	if !ok {
		return operand, nil
	}
	start := p.pos
	node, applied, err := handler(p, operand)
	if err != nil || !applied {
		return operand, err
	}
	if !p.eof() {
		switch p.peek() {
		case '?':
			return 0, p.unsupportedf("lazy quantifier %q", p.pattern[start:p.pos+1])
		case '+':
			p.pos++
			node = p.tree.unary(KindAtomic, node)
		}
	}
	if p.atQuantifier() {
		return 0, p.syntaxf("nested repetition at position %d", p.pos)
	}
	return node, nil
}

func (p *parser) atQuantifier() bool {
	if p.eof() {
		return false
	}
	switch p.peek() {
	case '*', '+', '?':
		return true
	case '{':
		end := strings.IndexByte(p.pattern[p.pos:], '}')
		if end < 0 {
			return false
		}
		_, _, ok := parseBounds(p.pattern[p.pos+1 : p.pos+end])
		return ok
	}
	return false
}

// parseRepeat parses {n}, {n,} or {n,m}. A brace that does not start a
// well-formed repetition is left for the atom parser as a literal.
func (p *parser) parseRepeat(operand NodeID) (NodeID, bool, error) {
	end := strings.IndexByte(p.pattern[p.pos:], '}')
	if end < 0 {
		return operand, false, nil
	}
	body := p.pattern[p.pos+1 : p.pos+end]
	lo, hi, ok := parseBounds(body)
	if !ok {
		return operand, false, nil
	}
	if lo > maxRepeat || hi > maxRepeat {
		return 0, false, p.syntaxf("repetition count above %d in {%s}", maxRepeat, body)
	}
	if hi != Unbounded && lo > hi {
		return 0, false, p.syntaxf("invalid repetition {%s}: minimum exceeds maximum", body)
	}
	p.pos += end + 1
	return p.tree.add(Node{Kind: KindRepeat, Children: []NodeID{operand}, Min: lo, Max: hi}), true, nil
}

func parseBounds(body string) (int, int, bool) {
	loText, hiText, hasComma := strings.Cut(body, ",")
	lo, err := strconv.Atoi(loText)
	if err != nil || lo < 0 || !isDigits(loText) {
		return 0, 0, false
	}
	if !hasComma {
		return lo, lo, true
	}
	if hiText == "" {
		return lo, Unbounded, true
	}
	hi, err := strconv.Atoi(hiText)
	if err != nil || !isDigits(hiText) {
		return 0, 0, false
	}
	return lo, hi, true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func (p *parser) parseGroup() (NodeID, error) {
	open := p.pos
	p.pos++
	var wrap func(*AST, NodeID) NodeID
	rest := p.pattern[p.pos:]
	matched := false
	for _, g := range groupPrefixes {
		if !strings.HasPrefix(rest, g.prefix) {
			continue
		}
		if g.unsupported != "" {
			return 0, p.unsupportedf("%s at position %d", g.unsupported, open)
		}
		wrap, matched = g.wrap, true
		p.pos += len(g.prefix)
		break
	}
	if !matched && strings.HasPrefix(rest, "?") {
		name, ok := groupName(rest)
		if !ok {
			return 0, p.unsupportedf("group flags at position %d", open)
		}
		p.pos += len(name)
	}

	body, err := p.parseAlternation()
	if err != nil {
		return 0, err
	}
	if p.eof() || p.peek() != ')' {
		return 0, p.syntaxf("unclosed '(' at position %d", open)
	}
	p.pos++
	if wrap == nil {
		return body, nil
	}
	return wrap(p.tree, body), nil
}

// groupName returns the "?<name>" or "?P<name>" prefix of a named group.
func groupName(rest string) (string, bool) {
	var prefix string
	switch {
	case strings.HasPrefix(rest, "?P<"):
		prefix = "?P<"
	case strings.HasPrefix(rest, "?<"):
		prefix = "?<"
	default:
		return "", false
	}
	end := strings.IndexByte(rest, '>')
	if end <= len(prefix) {
		return "", false
	}
	return rest[:end+1], true
}

func (p *parser) parseEscapeAtom() (NodeID, error) {
	set, err := p.parseEscape(false)
	if err != nil {
		return 0, err
	}
	return p.tree.class(set), nil
}

func (p *parser) parseClass() (NodeID, error) {
	open := p.pos
	p.pos++
	negated := false
	if !p.eof() && p.peek() == '^' {
		negated = true
		p.pos++
	}
	set := charset.Empty()
	first := true
	for {
		if p.eof() {
			return 0, p.syntaxf("unclosed character class at position %d", open)
		}
		if p.peek() == ']' && !first {
			p.pos++
			break
		}
		first = false
		item, err := p.parseClassItem()
		if err != nil {
			return 0, err
		}
		if r, ok := singleRune(item); ok && p.pos+1 < len(p.pattern) && p.peek() == '-' && p.pattern[p.pos+1] != ']' {
			p.pos++
			hiSet, err := p.parseClassItem()
			if err != nil {
				return 0, err
			}
			hi, ok := singleRune(hiSet)
			if !ok {
				return 0, p.syntaxf("invalid range end in character class at position %d", open)
			}
			if r > hi {
				return 0, p.syntaxf("invalid range '%c-%c' (start > end) in character class at position %d", r, hi, open)
			}
			set = set.Union(charset.NewRange(r, hi))
			continue
		}
		set = set.Union(item)
	}
	if negated {
		set = set.Complement()
	}
	return p.tree.class(set), nil
}

// parseClassItem parses one literal or escape inside brackets.
func (p *parser) parseClassItem() (charset.Set, error) {
	if p.peek() == '\\' {
		return p.parseEscape(true)
	}
	return charset.Rune(p.next()), nil
}

// parseEscape parses the escape at p.pos. inClass selects the meaning of
// escapes that differ inside brackets.
func (p *parser) parseEscape(inClass bool) (charset.Set, error) {
	start := p.pos
	p.pos++
	if p.eof() {
		return charset.Set{}, p.syntaxf("escape sequence at end of pattern")
	}
	c := p.next()
	switch c {
	case 'd':
		return charset.Digit(), nil
	case 'D':
		return charset.Digit().Complement(), nil
	case 'w':
		return charset.Word(), nil
	case 'W':
		return charset.Word().Complement(), nil
	case 's':
		return charset.Space(), nil
	case 'S':
		return charset.Space().Complement(), nil
	case 'p', 'P':
		return p.parseProperty(c == 'P', start)
	case 'n':
		return charset.Rune('\n'), nil
	case 'r':
		return charset.Rune('\r'), nil
	case 't':
		return charset.Rune('\t'), nil
	case 'f':
		return charset.Rune('\f'), nil
	case 'v':
		return charset.Rune('\v'), nil
	case 'a':
		return charset.Rune('\a'), nil
	case 'e':
		return charset.Rune(0x1b), nil
	case '0':
		return charset.Rune(0), nil
	case 'x':
		return p.parseHexEscape(start)
	case 'u':
		return p.parseFixedHex(4, start)
	case 'b':
		if inClass {
			return charset.Rune('\b'), nil
		}
		return charset.Set{}, p.unsupportedf("word boundary \\b at position %d", start)
	case 'B', 'A', 'z', 'Z', 'G':
		return charset.Set{}, p.unsupportedf("anchor \\%c at position %d", c, start)
	case 'k':
		return charset.Set{}, p.unsupportedf("named backreference at position %d", start)
	case 'Q', 'E':
		return charset.Set{}, p.unsupportedf("quoting \\%c at position %d", c, start)
	}
	switch {
	case c >= '1' && c <= '9':
		return charset.Set{}, p.unsupportedf("backreference \\%c at position %d", c, start)
	case c < utf8.RuneSelf && isAlnum(byte(c)):
		return charset.Set{}, p.syntaxf("invalid escape \\%c at position %d", c, start)
	default:
		return charset.Rune(c), nil
	}
}

func (p *parser) parseProperty(negated bool, start int) (charset.Set, error) {
	if p.eof() {
		return charset.Set{}, p.syntaxf("incomplete property escape at position %d", start)
	}
	var name string
	if p.peek() == '{' {
		end := strings.IndexByte(p.pattern[p.pos:], '}')
		if end < 0 {
			return charset.Set{}, p.syntaxf("unclosed property escape at position %d", start)
		}
		name = p.pattern[p.pos+1 : p.pos+end]
		p.pos += end + 1
		if rest, ok := strings.CutPrefix(name, "^"); ok {
			name, negated = rest, !negated
		}
	} else {
		name = string(p.next())
	}
	set, ok := charset.Property(name)
	if !ok {
		return charset.Set{}, p.syntaxf("unknown property %q at position %d", name, start)
	}
	if negated {
		set = set.Complement()
	}
	return set, nil
}

func (p *parser) parseHexEscape(start int) (charset.Set, error) {
	if p.eof() || p.peek() != '{' {
		return p.parseFixedHex(2, start)
	}
	end := strings.IndexByte(p.pattern[p.pos:], '}')
	if end < 0 {
		return charset.Set{}, p.syntaxf("unclosed hex escape at position %d", start)
	}
	digits := p.pattern[p.pos+1 : p.pos+end]
	p.pos += end + 1
	return hexRune(p, digits, start)
}

func (p *parser) parseFixedHex(n, start int) (charset.Set, error) {
	if p.pos+n > len(p.pattern) {
		return charset.Set{}, p.syntaxf("incomplete hex escape at position %d", start)
	}
	digits := p.pattern[p.pos : p.pos+n]
	p.pos += n
	return hexRune(p, digits, start)
}

func hexRune(p *parser, digits string, start int) (charset.Set, error) {
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || digits == "" || v > utf8.MaxRune {
		return charset.Set{}, p.syntaxf("invalid hex escape %q at position %d", digits, start)
	}
	return charset.Rune(rune(v)), nil
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
