// Package ast defines the regex syntax tree produced by the parser and
// consumed by the compiler.
//
// The tree is immutable once parsing completes. Every parent owns its
// children exclusively, there are no cycles.
package ast

// Node is a node of the regex syntax tree.
type Node interface {
	node()
}

// Flags holds the emission flags toggled by inline flag groups.
type Flags struct {
	FoldCase bool // (?i)
	DotAll   bool // (?s)
}

// Sequence is a concatenation of nodes. An empty sequence matches the empty string.
type Sequence struct {
	Children []Node
}

// Alternation is an ordered choice between two or more arms.
type Alternation struct {
	Arms []*Sequence
}

// Group wraps a parenthesized expression.
type Group struct {
	Inner     Node
	Capturing bool
	Name      string // set for (?P<name>...) and (?<name>...)
}

// Literal matches Text character by character.
type Literal struct {
	Text string
	Fold bool // case-insensitivity in effect where the literal appeared
}

// Dot matches any single character.
type Dot struct {
	DotAll bool // dot-all in effect where the dot appeared
}

// AnchorKind selects a zero-width position assertion.
type AnchorKind int

const (
	AnchorBOL AnchorKind = iota // ^
	AnchorEOL                   // $
	AnchorBOS                   // \A
	AnchorEOS                   // \z
)

func (k AnchorKind) String() string {
	switch k {
	case AnchorBOL:
		return "bol"
	case AnchorEOL:
		return "eol"
	case AnchorBOS:
		return "bos"
	case AnchorEOS:
		return "eos"
	}
	return "anchor?"
}

// Anchor is a zero-width position assertion.
type Anchor struct {
	Kind AnchorKind
}

// Range is an inclusive character range inside a class.
type Range struct {
	Lo, Hi rune
}

// CharClass is a bracketed character class. Singles and ranges are not
// canonicalized and may overlap.
type CharClass struct {
	Negated bool
	Singles []rune
	Ranges  []Range
}

// AddSingle adds r to the singles set unless it is already present.
func (c *CharClass) AddSingle(r rune) {
	for _, s := range c.Singles {
		if s == r {
			return
		}
	}
	c.Singles = append(c.Singles, r)
}

// EscapeClass is one of the shorthand classes \d \D \w \W \s \S.
type EscapeClass struct {
	Class rune
}

// Negated reports whether the class is the upper-case complement form.
func (e *EscapeClass) Negated() bool {
	return e.Class == 'D' || e.Class == 'W' || e.Class == 'S'
}

// RepeatOp is the shape of a quantifier.
type RepeatOp int

const (
	ZeroOrMore RepeatOp = iota // *
	OneOrMore                  // +
	ZeroOrOne                  // ?
	Exact                      // {n}
	AtLeast                    // {n,}
	Between                    // {n,m}
)

func (op RepeatOp) String() string {
	switch op {
	case ZeroOrMore:
		return "star"
	case OneOrMore:
		return "plus"
	case ZeroOrOne:
		return "quest"
	case Exact:
		return "exact"
	case AtLeast:
		return "atleast"
	case Between:
		return "between"
	}
	return "repeat?"
}

// Quantifier repeats Atom. Min and Max are only meaningful for Exact,
// AtLeast and Between; Greedy is ignored for Exact.
type Quantifier struct {
	Atom   Node
	Op     RepeatOp
	Min    int
	Max    int
	Greedy bool
}

// Stub stands in for a construct that could not be translated.
type Stub struct {
	Message string
}

func (*Sequence) node()    {}
func (*Alternation) node() {}
func (*Group) node()       {}
func (*Literal) node()     {}
func (*Dot) node()         {}
func (*Anchor) node()      {}
func (*CharClass) node()   {}
func (*EscapeClass) node() {}
func (*Quantifier) node()  {}
func (*Stub) node()        {}

// Walk visits n and its descendants in pre-order. Children of a node are
// skipped when fn returns false for it.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *Sequence:
		for _, child := range n.Children {
			Walk(child, fn)
		}
	case *Alternation:
		for _, arm := range n.Arms {
			Walk(arm, fn)
		}
	case *Group:
		Walk(n.Inner, fn)
	case *Quantifier:
		Walk(n.Atom, fn)
	}
}
