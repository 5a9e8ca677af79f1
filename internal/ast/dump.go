package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders n as a single-line s-expression, e.g.
//
//	(seq (lit "ab") (star (class ^ 'a'-'c')))
func Dump(n Node) string {
	var b strings.Builder
	dump(&b, n)
	return b.String()
}

func dump(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
		b.WriteString("(nil)")
	case *Sequence:
		b.WriteString("(seq")
		for _, child := range n.Children {
			b.WriteByte(' ')
			dump(b, child)
		}
		b.WriteByte(')')
	case *Alternation:
		b.WriteString("(alt")
		for _, arm := range n.Arms {
			b.WriteByte(' ')
			dump(b, arm)
		}
		b.WriteByte(')')
	case *Group:
		switch {
		case !n.Capturing:
			b.WriteString("(group ")
		case n.Name != "":
			fmt.Fprintf(b, "(capture name=%s ", n.Name)
		default:
			b.WriteString("(capture ")
		}
		dump(b, n.Inner)
		b.WriteByte(')')
	case *Literal:
		if n.Fold {
			b.WriteString("(lit/i ")
		} else {
			b.WriteString("(lit ")
		}
		b.WriteString(strconv.Quote(n.Text))
		b.WriteByte(')')
	case *Dot:
		if n.DotAll {
			b.WriteString("(dot/s)")
		} else {
			b.WriteString("(dot)")
		}
	case *Anchor:
		fmt.Fprintf(b, "(%s)", n.Kind)
	case *CharClass:
		b.WriteString("(class")
		if n.Negated {
			b.WriteString(" ^")
		}
		for _, r := range n.Singles {
			fmt.Fprintf(b, " %q", r)
		}
		for _, rg := range n.Ranges {
			fmt.Fprintf(b, " %q-%q", rg.Lo, rg.Hi)
		}
		b.WriteByte(')')
	case *EscapeClass:
		fmt.Fprintf(b, `(esc \%c)`, n.Class)
	case *Quantifier:
		b.WriteByte('(')
		b.WriteString(n.Op.String())
		if n.Op != Exact && !n.Greedy {
			b.WriteString(" lazy")
		}
		switch n.Op {
		case Exact, AtLeast:
			fmt.Fprintf(b, " %d", n.Min)
		case Between:
			fmt.Fprintf(b, " %d %d", n.Min, n.Max)
		}
		b.WriteByte(' ')
		dump(b, n.Atom)
		b.WriteByte(')')
	case *Stub:
		fmt.Fprintf(b, "(stub %s)", strconv.Quote(n.Message))
	default:
		fmt.Fprintf(b, "(unknown %T)", n)
	}
}
