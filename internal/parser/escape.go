package parser

import (
	"strconv"

	"github.com/KromDaniel/regcps/internal/ast"
)

// controlEscape maps \n, \t, \r, \f and \v to their characters.
func controlEscape(r rune) (rune, bool) {
	switch r {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case 'f':
		return '\f', true
	case 'v':
		return '\v', true
	}
	return 0, false
}

// parseEscape parses a backslash sequence outside of a character class.
func (p *Parser) parseEscape() ast.Node {
	start := p.pos
	p.pos++ // \
	if p.eof() {
		return p.stub(start, "dangling escape at end of pattern")
	}

	r := p.next()
	switch r {
	case 'd', 'D', 'w', 'W', 's', 'S':
		return &ast.EscapeClass{Class: r}
	case 'A':
		return &ast.Anchor{Kind: ast.AnchorBOS}
	case 'z':
		return &ast.Anchor{Kind: ast.AnchorEOS}
	case 'b', 'B':
		return p.stub(start, "unsupported word boundary %s", p.text(start, p.pos))
	case 'p', 'P':
		p.skipEscapeArg('{', '}')
		return p.stub(start, "unsupported Unicode property class %s", p.text(start, p.pos))
	case 'k':
		p.skipEscapeArg('<', '>')
		return p.stub(start, "unsupported named backreference %s", p.text(start, p.pos))
	}

	if r >= '1' && r <= '9' {
		for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
			p.pos++
		}
		return p.stub(start, "unsupported backreference %s", p.text(start, p.pos))
	}
	if c, ok := controlEscape(r); ok {
		return p.literal(string(c))
	}
	return p.literal(string(r))
}

// skipEscapeArg consumes the argument of \p, \P or \k: either a delimited
// name or a single character.
func (p *Parser) skipEscapeArg(open, end rune) {
	if p.eof() {
		return
	}
	if p.peek() != open {
		p.pos++
		return
	}
	for !p.eof() {
		if p.next() == end {
			return
		}
	}
}

// parseClass parses a bracketed class. A missing ']' is tolerated.
func (p *Parser) parseClass() ast.Node {
	start := p.pos
	p.pos++ // [
	cc := &ast.CharClass{}
	if !p.eof() && p.peek() == '^' {
		cc.Negated = true
		p.pos++
	}

	for !p.eof() && p.peek() != ']' {
		at := p.pos
		lo := p.next()
		if lo == '\\' {
			cc.AddSingle(p.classEscape(at))
			continue
		}
		if p.peek() == '-' && p.pos+1 < len(p.pattern) && p.peekAt(1) != ']' {
			p.pos++ // -
			hiAt := p.pos
			hi := p.next()
			if hi == '\\' {
				hi = p.classEscape(hiAt)
			}
			if hi < lo {
				p.note(at, "inverted class range %s", p.text(at, p.pos))
			}
			cc.Ranges = append(cc.Ranges, ast.Range{Lo: lo, Hi: hi})
			continue
		}
		cc.AddSingle(lo)
	}

	if p.eof() {
		p.note(start, "unterminated character class")
	} else {
		p.pos++ // ]
	}
	return cc
}

// classEscape reads the character after a backslash inside a class. Escape
// classes are not expanded there.
func (p *Parser) classEscape(at int) rune {
	if p.eof() {
		return '\\'
	}
	r := p.next()
	if c, ok := controlEscape(r); ok {
		return c
	}
	switch r {
	case 'd', 'D', 'w', 'W', 's', 'S':
		p.note(at, "escape class \\%c inside a character class is matched literally", r)
	}
	return r
}

// parseBraces parses {n}, {n,} and {n,m} at the cursor. On failure the
// cursor is left after the offending text, which runs through the next '}'
// unless a group or alternation boundary comes first.
func (p *Parser) parseBraces() (op ast.RepeatOp, lo, hi int, ok bool) {
	p.pos++ // {
	lo, ok = p.count()
	if !ok {
		p.skipToBrace()
		return 0, 0, 0, false
	}

	if !p.eof() && p.peek() == '}' {
		p.pos++
		return ast.Exact, lo, lo, true
	}
	if !p.eof() && p.peek() == ',' {
		p.pos++
		if !p.eof() && p.peek() == '}' {
			p.pos++
			return ast.AtLeast, lo, -1, true
		}
		hi, ok = p.count()
		if ok && !p.eof() && p.peek() == '}' {
			p.pos++
			if hi < lo {
				return 0, 0, 0, false
			}
			return ast.Between, lo, hi, true
		}
	}
	p.skipToBrace()
	return 0, 0, 0, false
}

// count reads a run of decimal digits.
func (p *Parser) count() (int, bool) {
	start := p.pos
	for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, false
	}
	n, err := strconv.Atoi(p.text(start, p.pos))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (p *Parser) skipToBrace() {
	for i := p.pos; i < len(p.pattern); i++ {
		switch p.pattern[i] {
		case '}':
			p.pos = i + 1
			return
		case '(', ')', '|':
			return
		}
	}
}
