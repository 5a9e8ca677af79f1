package compiler

import (
	"fmt"

	"github.com/KromDaniel/regcps/internal/ast"
	"github.com/KromDaniel/regcps/internal/codegen"
	"github.com/dave/jennifer/jen"
)

// call returns m.<method>(args...).
func call(method string, args ...jen.Code) *jen.Statement {
	return jen.Id(codegen.MatcherName).Dot(method).Call(args...)
}

func ret(expr jen.Code) []jen.Code {
	return []jen.Code{jen.Return(expr)}
}

func fail() jen.Code {
	return jen.Return(jen.False())
}

// compile lowers n so that k runs once n has matched. The returned
// statements always end in a return.
func (c *Compiler) compile(n ast.Node, k Cont) []jen.Code {
	switch n := n.(type) {
	case *ast.Sequence:
		return c.compileSequence(n.Children, k)
	case *ast.Alternation:
		return c.compileAlternation(n, k)
	case *ast.Group:
		return c.compile(n.Inner, k)
	case *ast.Literal:
		return c.compileLiteral(n, k)
	case *ast.Dot:
		return c.compileDot(n, k)
	case *ast.Anchor:
		return c.compileAnchor(n, k)
	case *ast.EscapeClass:
		return c.compileEscapeClass(n, k)
	case *ast.CharClass:
		return c.compileCharClass(n, k)
	case *ast.Quantifier:
		return c.compileQuantifier(n, k)
	case *ast.Stub:
		return c.compileStub(n, k)
	}
	return c.compileStub(&ast.Stub{Message: fmt.Sprintf("unknown node %T", n)}, k)
}

// compileSequence folds right to left: each element's continuation is the
// code for the elements after it.
func (c *Compiler) compileSequence(children []ast.Node, k Cont) []jen.Code {
	if len(children) == 0 {
		return k.Stmts()
	}
	tail := k
	for i := len(children) - 1; i > 0; i-- {
		child, next := children[i], tail
		tail = deferred(func() []jen.Code { return c.compile(child, next) })
	}
	return c.compile(children[0], tail)
}

// compileAlternation tries the arms left to right and stops at the first
// that succeeds. The outer continuation is bound to a local and threaded
// into every arm, unless legacy alternation is configured, in which case
// each arm succeeds on its own and the outer continuation is dropped.
func (c *Compiler) compileAlternation(n *ast.Alternation, k Cont) []jen.Code {
	armCont := accept
	bound, fresh := k, false
	if !c.config.LegacyAlternation {
		if !k.Named() {
			bound, fresh = bind(codegen.ContName(c.conts)), true
			c.conts++
		}
		armCont = func() Cont { return bound }
	}

	var cond *jen.Statement
	for _, arm := range n.Arms {
		try := jen.Func().Params().Bool().Block(c.compile(arm, armCont())...).Call()
		if cond == nil {
			cond = try
		} else {
			cond = cond.Op("||").Add(try)
		}
	}

	// The tail is only compiled when an arm refers to it.
	if fresh && bound.Used() {
		return []jen.Code{jen.Id(bound.name).Op(":=").Add(k.Func()), jen.Return(cond)}
	}
	return ret(cond)
}

func (c *Compiler) foldCase(n *ast.Literal) bool {
	if c.config.FlagScope == ScopePositional {
		return n.Fold
	}
	return c.result.Flags.FoldCase
}

func (c *Compiler) dotAll(n *ast.Dot) bool {
	if c.config.FlagScope == ScopePositional {
		return n.DotAll
	}
	return c.result.Flags.DotAll
}

func (c *Compiler) compileLiteral(n *ast.Literal, k Cont) []jen.Code {
	runes := []rune(n.Text)
	fold := c.foldCase(n)
	switch {
	case len(runes) == 0:
		return k.Stmts()
	case len(runes) == 1 && fold:
		return ret(call(codegen.CharFold, jen.LitRune(runes[0]), k.Func()))
	case len(runes) == 1:
		return ret(call(codegen.Char, jen.LitRune(runes[0]), k.Func()))
	case fold:
		return ret(call(codegen.StringFold, jen.Lit(n.Text), k.Func()))
	}
	return ret(call(codegen.String, jen.Lit(n.Text), k.Func()))
}

// compileDot leaves newline handling to the runtime's Any.
func (c *Compiler) compileDot(n *ast.Dot, k Cont) []jen.Code {
	if c.dotAll(n) {
		return ret(call(codegen.Skip, jen.Lit(1), k.Func()))
	}
	return ret(call(codegen.Any, k.Func()))
}

var anchorMethods = map[ast.AnchorKind]string{
	ast.AnchorBOL: codegen.BOL,
	ast.AnchorEOL: codegen.EOL,
	ast.AnchorBOS: codegen.BOS,
	ast.AnchorEOS: codegen.EOS,
}

func (c *Compiler) compileAnchor(n *ast.Anchor, k Cont) []jen.Code {
	return ret(call(anchorMethods[n.Kind], k.Func()))
}

// compileQuantifier compiles the atom into a repetition unit that takes the
// continuation to run after one repetition, and hands it to the runtime's
// repetition driver together with k.
func (c *Compiler) compileQuantifier(n *ast.Quantifier, k Cont) []jen.Code {
	c.depth++
	next := codegen.NextName(c.depth)
	unit := jen.Func().
		Params(jen.Id(next).Func().Params().Bool()).
		Bool().
		Block(c.compile(n.Atom, named(next))...)
	c.depth--

	var method string
	var args []jen.Code
	switch n.Op {
	case ast.ZeroOrMore:
		method = pick(n.Greedy, codegen.Star, codegen.StarLazy)
	case ast.OneOrMore:
		method = pick(n.Greedy, codegen.Plus, codegen.PlusLazy)
	case ast.ZeroOrOne:
		method = pick(n.Greedy, codegen.Optional, codegen.OptionalLazy)
	case ast.Exact:
		method = codegen.Exactly
		args = append(args, jen.Lit(n.Min))
	case ast.AtLeast:
		method = pick(n.Greedy, codegen.AtLeast, codegen.AtLeastLazy)
		args = append(args, jen.Lit(n.Min))
	case ast.Between:
		method = pick(n.Greedy, codegen.Between, codegen.BetweenLazy)
		args = append(args, jen.Lit(n.Min), jen.Lit(n.Max))
	default:
		return c.compileStub(&ast.Stub{Message: fmt.Sprintf("unknown repetition %s", n.Op)}, k)
	}

	args = append(args, unit, k.Func())
	return ret(call(method, args...))
}

func pick(greedy bool, eager, lazy string) string {
	if greedy {
		return eager
	}
	return lazy
}

// compileStub reports the construct in a comment. By default it then falls
// through to k, so the construct matches the empty string.
func (c *Compiler) compileStub(n *ast.Stub, k Cont) []jen.Code {
	code := []jen.Code{jen.Comment(commentText(n.Message))}
	if c.config.StrictStubs {
		return append(code, jen.Panic(jen.Lit(stubPanicPrefix+n.Message)))
	}
	return append(code, k.Stmts()...)
}
