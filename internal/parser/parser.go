// Package parser implements a recovering recursive-descent parser for regex
// patterns.
//
// The parser never fails. Constructs it cannot translate become ast.Stub
// nodes and parsing resumes after them.
package parser

import (
	"fmt"
	"strings"

	"github.com/KromDaniel/regcps/internal/ast"
)

// metachars are the characters that end a literal run.
const metachars = `^$.*+?()[]{}\|`

// Diagnostic describes a malformed or unsupported part of the pattern.
type Diagnostic struct {
	Offset  int    // rune offset into the pattern
	Message string // human readable description
	Stub    bool   // true when the construct was replaced by an ast.Stub
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("offset %d: %s", d.Offset, d.Message)
}

// Result is the outcome of parsing one pattern.
type Result struct {
	Pattern     string
	Root        ast.Node
	Diagnostics []Diagnostic
	// Flags are the emission flags in effect after the whole pattern was read.
	Flags ast.Flags
	// Offset is the rune offset where the top-level parse stopped.
	Offset int
	length int
}

// Complete reports whether the whole pattern was consumed.
func (r *Result) Complete() bool {
	return r.Offset >= r.length
}

// Leftover returns the unconsumed tail of the pattern.
func (r *Result) Leftover() string {
	runes := []rune(r.Pattern)
	if r.Offset >= len(runes) {
		return ""
	}
	return string(runes[r.Offset:])
}

// Stubs returns the diagnostics that produced stub nodes.
func (r *Result) Stubs() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Stub {
			out = append(out, d)
		}
	}
	return out
}

// Parser holds the cursor state for one pattern.
type Parser struct {
	pattern []rune
	pos     int
	flags   ast.Flags
	diags   []Diagnostic
}

// New creates a parser for pattern.
func New(pattern string) *Parser {
	return &Parser{pattern: []rune(pattern)}
}

// Parse parses pattern and returns the best-effort tree.
func Parse(pattern string) *Result {
	p := New(pattern)
	root := p.parseExpression()
	return &Result{
		Pattern:     pattern,
		Root:        root,
		Diagnostics: p.diags,
		Flags:       p.flags,
		Offset:      p.pos,
		length:      len(p.pattern),
	}
}

func (p *Parser) eof() bool {
	return p.pos >= len(p.pattern)
}

// peek returns the current rune, or 0 at end of input.
func (p *Parser) peek() rune {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) rune {
	if p.pos+n >= len(p.pattern) {
		return 0
	}
	return p.pattern[p.pos+n]
}

// has reports whether the next runes spell s.
func (p *Parser) has(s string) bool {
	i := p.pos
	for _, r := range s {
		if i >= len(p.pattern) || p.pattern[i] != r {
			return false
		}
		i++
	}
	return true
}

func (p *Parser) next() rune {
	r := p.pattern[p.pos]
	p.pos++
	return r
}

func (p *Parser) text(from, to int) string {
	if to > len(p.pattern) {
		to = len(p.pattern)
	}
	return string(p.pattern[from:to])
}

func (p *Parser) note(offset int, format string, args ...interface{}) {
	p.diags = append(p.diags, Diagnostic{Offset: offset, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) stub(offset int, format string, args ...interface{}) *ast.Stub {
	msg := fmt.Sprintf(format, args...)
	p.diags = append(p.diags, Diagnostic{Offset: offset, Message: msg, Stub: true})
	return &ast.Stub{Message: msg}
}

// parseExpression parses '|'-separated terms. A single term is returned
// as a bare sequence.
func (p *Parser) parseExpression() ast.Node {
	first := p.parseTerm()
	if p.eof() || p.peek() != '|' {
		return first
	}
	arms := []*ast.Sequence{first}
	for !p.eof() && p.peek() == '|' {
		p.pos++
		arms = append(arms, p.parseTerm())
	}
	return &ast.Alternation{Arms: arms}
}

// parseTerm concatenates factors up to a '|' or ')' boundary.
func (p *Parser) parseTerm() *ast.Sequence {
	seq := &ast.Sequence{}
	for !p.eof() {
		if r := p.peek(); r == '|' || r == ')' {
			break
		}
		seq.Children = append(seq.Children, p.parseFactor()...)
	}
	return seq
}

// parseFactor parses an atom and its optional quantifier. A malformed
// brace quantifier yields the atom followed by a stub.
func (p *Parser) parseFactor() []ast.Node {
	atom := p.parseAtom()
	if p.eof() {
		return []ast.Node{atom}
	}

	q := &ast.Quantifier{Atom: atom, Greedy: true}
	switch p.peek() {
	case '*':
		p.pos++
		q.Op = ast.ZeroOrMore
	case '+':
		p.pos++
		q.Op = ast.OneOrMore
	case '?':
		p.pos++
		q.Op = ast.ZeroOrOne
	case '{':
		start := p.pos
		op, lo, hi, ok := p.parseBraces()
		if !ok {
			return []ast.Node{atom, p.stub(start, "malformed quantifier %s", p.text(start, p.pos))}
		}
		q.Op, q.Min, q.Max = op, lo, hi
	default:
		return []ast.Node{atom}
	}

	if !p.eof() && p.peek() == '?' {
		p.pos++
		q.Greedy = false
	}
	return []ast.Node{q}
}

func isMeta(r rune) bool {
	return strings.ContainsRune(metachars, r)
}

func isQuantifierStart(r rune) bool {
	return r == '*' || r == '+' || r == '?' || r == '{'
}

// parseAtom dispatches on the next character.
func (p *Parser) parseAtom() ast.Node {
	start := p.pos
	switch r := p.peek(); r {
	case '^':
		p.pos++
		return &ast.Anchor{Kind: ast.AnchorBOL}
	case '$':
		p.pos++
		return &ast.Anchor{Kind: ast.AnchorEOL}
	case '.':
		p.pos++
		return &ast.Dot{DotAll: p.flags.DotAll}
	case '(':
		return p.parseGroup()
	case '[':
		return p.parseClass()
	case '\\':
		return p.parseEscape()
	case '*', '+', '?':
		p.pos++
		return p.stub(start, "quantifier %c has nothing to repeat", r)
	case '{', '}', ']':
		p.pos++
		return p.literal(string(r))
	}

	for !p.eof() && !isMeta(p.peek()) {
		p.pos++
	}
	// A quantifier binds to the last character only, so the run gives that
	// character back: abc* is ab followed by c*, not a repeated "abc".
	// This deliberately splits what would otherwise be one maximal run.
	if p.pos-start > 1 && !p.eof() && isQuantifierStart(p.peek()) {
		p.pos--
	}
	return p.literal(p.text(start, p.pos))
}

func (p *Parser) literal(text string) *ast.Literal {
	return &ast.Literal{Text: text, Fold: p.flags.FoldCase}
}
