package compiler

import (
	"sort"

	"github.com/KromDaniel/regcps/internal/ast"
)

// Analysis contains the results of pattern analysis without code generation.
type Analysis struct {
	// FeatureLabels are derived from pattern structure (sorted alphabetically)
	FeatureLabels []string `json:"feature_labels"`

	HasCatastrophicRisk bool `json:"has_catastrophic_risk"`
	Captures            int  `json:"captures"`
	Stubs               int  `json:"stubs"`
	// MinMatchLen is the fewest characters any match can consume.
	MinMatchLen int `json:"min_match_len"`
}

// Analyze inspects a parsed pattern.
func Analyze(root ast.Node) Analysis {
	a := Analysis{
		HasCatastrophicRisk: detectNestedQuantifiers(root),
		MinMatchLen:         minMatchLen(root),
	}

	seen := map[string]bool{}
	ast.Walk(root, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Alternation:
			seen["Alternation"] = true
		case *ast.Anchor:
			seen["Anchored"] = true
		case *ast.Group:
			if n.Capturing {
				seen["Captures"] = true
				a.Captures++
			} else {
				seen["NonCapturing"] = true
			}
		case *ast.CharClass:
			seen["CharClass"] = true
			if hasMultibyteClass(n) {
				seen["Multibyte"] = true
			}
		case *ast.EscapeClass:
			seen["CharClass"] = true
		case *ast.Literal:
			if hasMultibyte(n.Text) {
				seen["Multibyte"] = true
			}
		case *ast.Quantifier:
			seen["Quantifiers"] = true
		case *ast.Stub:
			seen["Stubs"] = true
			a.Stubs++
		}
		return true
	})

	for label := range seen {
		a.FeatureLabels = append(a.FeatureLabels, label)
	}
	if len(a.FeatureLabels) == 0 {
		a.FeatureLabels = append(a.FeatureLabels, "Simple")
	}
	sort.Strings(a.FeatureLabels)
	return a
}

func hasMultibyte(s string) bool {
	for _, r := range s {
		if r >= MaxASCIIRune {
			return true
		}
	}
	return false
}

func hasMultibyteClass(n *ast.CharClass) bool {
	for _, r := range n.Singles {
		if r >= MaxASCIIRune {
			return true
		}
	}
	for _, rg := range n.Ranges {
		if rg.Hi >= MaxASCIIRune {
			return true
		}
	}
	return false
}

// repeats reports whether a quantifier can apply its atom more than once.
func repeats(q *ast.Quantifier) bool {
	switch q.Op {
	case ast.ZeroOrOne:
		return false
	case ast.Exact:
		return q.Min > 1
	case ast.Between:
		return q.Max > 1
	}
	return true
}

// detectNestedQuantifiers reports whether a repeating quantifier contains
// another quantifier, the classic shape of catastrophic backtracking.
func detectNestedQuantifiers(root ast.Node) bool {
	found := false
	ast.Walk(root, func(n ast.Node) bool {
		if found {
			return false
		}
		q, ok := n.(*ast.Quantifier)
		if !ok || !repeats(q) {
			return true
		}
		ast.Walk(q.Atom, func(inner ast.Node) bool {
			if _, ok := inner.(*ast.Quantifier); ok {
				found = true
			}
			return !found
		})
		return !found
	})
	return found
}

// minMatchLen computes the minimum number of characters a match consumes.
// Stubs count as empty since they fall through.
func minMatchLen(n ast.Node) int {
	switch n := n.(type) {
	case *ast.Sequence:
		total := 0
		for _, child := range n.Children {
			total += minMatchLen(child)
		}
		return total
	case *ast.Alternation:
		best := -1
		for _, arm := range n.Arms {
			if l := minMatchLen(arm); best < 0 || l < best {
				best = l
			}
		}
		if best < 0 {
			return 0
		}
		return best
	case *ast.Group:
		return minMatchLen(n.Inner)
	case *ast.Literal:
		return len([]rune(n.Text))
	case *ast.Dot, *ast.CharClass, *ast.EscapeClass:
		return 1
	case *ast.Quantifier:
		switch n.Op {
		case ast.ZeroOrMore, ast.ZeroOrOne:
			return 0
		case ast.OneOrMore:
			return minMatchLen(n.Atom)
		}
		return n.Min * minMatchLen(n.Atom)
	}
	return 0
}
