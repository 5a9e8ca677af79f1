package parser

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/KromDaniel/regcps/internal/ast"
)

// inlineFlags are the letters accepted in (?flags) groups. 'm' is
// recognized but has no effect on emission.
const inlineFlags = "ims"

// parseGroup parses every form that starts with '('.
func (p *Parser) parseGroup() ast.Node {
	start := p.pos
	p.pos++ // (

	if p.eof() || p.peek() != '?' {
		inner := p.parseExpression()
		p.closeGroup(start)
		return &ast.Group{Inner: inner, Capturing: true}
	}

	switch {
	case p.has("?:"):
		p.pos += 2
		inner := p.parseExpression()
		p.closeGroup(start)
		return &ast.Group{Inner: inner}
	case p.has("?="):
		return p.skipUnsupported(start, "lookahead")
	case p.has("?!"):
		return p.skipUnsupported(start, "negative lookahead")
	case p.has("?<="):
		return p.skipUnsupported(start, "lookbehind")
	case p.has("?<!"):
		return p.skipUnsupported(start, "negative lookbehind")
	case p.has("?P<"):
		p.pos += 3
		return p.parseNamedGroup(start)
	case p.has("?<"):
		p.pos += 2
		return p.parseNamedGroup(start)
	}
	return p.parseFlagGroup(start)
}

// closeGroup consumes the ')' of a group opened at start.
func (p *Parser) closeGroup(start int) {
	if !p.eof() && p.peek() == ')' {
		p.pos++
		return
	}
	p.note(start, "unterminated group")
}

// skipBalanced moves the cursor from the '(' at from past its matching ')'.
// Escaped parentheses are not counted. It reports false when the input ends
// first.
func (p *Parser) skipBalanced(from int) bool {
	p.pos = from
	depth := 0
	for !p.eof() {
		switch p.next() {
		case '\\':
			if !p.eof() {
				p.pos++
			}
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// skipUnsupported replaces the group opened at start with a stub.
func (p *Parser) skipUnsupported(start int, kind string) *ast.Stub {
	if !p.skipBalanced(start) {
		p.note(start, "unterminated group")
	}
	return p.stub(start, "unsupported %s %s", kind, p.text(start, p.pos))
}

// parseNamedGroup parses the name and body of (?P<name>...) or
// (?<name>...). The cursor is just past the '<'.
func (p *Parser) parseNamedGroup(start int) ast.Node {
	nameStart := p.pos
	for !p.eof() && isNameRune(p.peek()) {
		p.pos++
	}
	name := p.text(nameStart, p.pos)
	if name == "" || p.eof() || p.peek() != '>' {
		return p.skipMalformed(start, "malformed group name")
	}
	p.pos++ // >

	inner := p.parseExpression()
	p.closeGroup(start)
	return &ast.Group{Inner: inner, Capturing: true, Name: name}
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (p *Parser) skipMalformed(start int, what string) *ast.Stub {
	if !p.skipBalanced(start) {
		p.note(start, "unterminated group")
	}
	return p.stub(start, "%s %s", what, p.text(start, p.pos))
}

// parseFlagGroup handles (?flags). The flags are process-wide for the
// rest of the pattern, so the group itself matches nothing.
func (p *Parser) parseFlagGroup(start int) ast.Node {
	p.pos++ // ?
	letters := p.pos
	for !p.eof() && (unicode.IsLetter(p.peek()) || p.peek() == '-') {
		p.pos++
	}
	set := p.text(letters, p.pos)

	switch {
	case set != "" && !p.eof() && p.peek() == ':':
		return p.skipMalformed(start, "unsupported scoped flag group")
	case set == "" || p.eof() || p.peek() != ')':
		return p.skipMalformed(start, "unsupported group syntax")
	case strings.Contains(set, "-"):
		return p.skipMalformed(start, "unsupported flag negation")
	}

	for _, r := range set {
		if !strings.ContainsRune(inlineFlags, r) {
			return p.skipMalformed(start, "unsupported inline flag "+strconv.QuoteRune(r)+" in")
		}
	}
	p.pos++ // )

	for _, r := range set {
		switch r {
		case 'i':
			p.flags.FoldCase = true
		case 's':
			p.flags.DotAll = true
		}
	}
	return &ast.Sequence{}
}
