package compiler

import (
	"github.com/KromDaniel/regcps/internal/ast"
	"github.com/KromDaniel/regcps/internal/codegen"
	"github.com/dave/jennifer/jen"
)

// classTerms is the subset of a class tested on one side of the ASCII split.
type classTerms struct {
	singles []rune
	ranges  []ast.Range
}

func (t classTerms) empty() bool {
	return len(t.singles) == 0 && len(t.ranges) == 0
}

// splitClass partitions a class into the members tested against the
// current byte and those tested against the current rune. A range that
// crosses MaxASCIIRune is split in two.
func splitClass(n *ast.CharClass) (ascii, wide classTerms) {
	for _, r := range n.Singles {
		if r < MaxASCIIRune {
			ascii.singles = append(ascii.singles, r)
		} else {
			wide.singles = append(wide.singles, r)
		}
	}
	for _, rg := range n.Ranges {
		switch {
		case rg.Hi < rg.Lo:
			// Inverted ranges match nothing; they stay with their lower bound.
			if rg.Lo < MaxASCIIRune {
				ascii.ranges = append(ascii.ranges, rg)
			} else {
				wide.ranges = append(wide.ranges, rg)
			}
		case rg.Hi < MaxASCIIRune:
			ascii.ranges = append(ascii.ranges, rg)
		case rg.Lo >= MaxASCIIRune:
			wide.ranges = append(wide.ranges, rg)
		default:
			ascii.ranges = append(ascii.ranges, ast.Range{Lo: rg.Lo, Hi: MaxASCIIRune - 1})
			wide.ranges = append(wide.ranges, ast.Range{Lo: MaxASCIIRune, Hi: rg.Hi})
		}
	}
	return ascii, wide
}

// memberExpr builds the OR of all membership tests of subject against
// terms. It returns nil for an empty set.
func memberExpr(terms classTerms, subject string) *jen.Statement {
	var stmt *jen.Statement
	or := func(cond *jen.Statement) {
		if stmt == nil {
			stmt = cond
		} else {
			stmt = stmt.Op("||").Add(cond)
		}
	}

	for _, r := range terms.singles {
		or(jen.Id(subject).Op("==").LitRune(r))
	}
	for _, rg := range terms.ranges {
		or(jen.Parens(jen.Id(subject).Op(">=").LitRune(rg.Lo).Op("&&").Id(subject).Op("<=").LitRune(rg.Hi)))
	}
	return stmt
}

// classFailure is the condition under which one side of a class rejects
// the current character.
type classFailure struct {
	cond   *jen.Statement // nil when the outcome is constant
	always bool
}

func (f classFailure) never() bool {
	return f.cond == nil && !f.always
}

// failure applies the class negation once to the whole membership
// expression. An empty side matches nothing before negation.
func failure(terms classTerms, subject string, negated bool) classFailure {
	if terms.empty() {
		return classFailure{always: !negated}
	}
	member := memberExpr(terms, subject)
	if negated {
		return classFailure{cond: member}
	}
	return classFailure{cond: jen.Op("!").Parens(member)}
}

func (f classFailure) reject() []jen.Code {
	if f.always {
		return []jen.Code{fail()}
	}
	return []jen.Code{jen.If(f.cond).Block(fail())}
}

// compileCharClass tests the current character against the class: single
// byte characters against the ASCII members, everything else against the
// remaining members. The character is consumed on success.
func (c *Compiler) compileCharClass(n *ast.CharClass, k Cont) []jen.Code {
	ascii, wide := splitClass(n)
	asciiFail := failure(ascii, codegen.ByteName, n.Negated)
	wideFail := failure(wide, codegen.RuneName, n.Negated)

	if asciiFail.always && wideFail.always {
		return []jen.Code{fail()}
	}

	code := []jen.Code{
		jen.If(call(codegen.AtEnd)).Block(fail()),
	}

	byteVar := jen.Id("_")
	if asciiFail.cond != nil {
		byteVar = jen.Id(codegen.ByteName)
	}
	peekByte := jen.List(byteVar, jen.Id(codegen.OkName)).Op(":=").Add(call(codegen.PeekByte))

	var wideReject []jen.Code
	switch {
	case wideFail.always:
		wideReject = []jen.Code{fail()}
	case wideFail.cond != nil:
		wideReject = []jen.Code{
			jen.If(jen.Id(codegen.RuneName).Op(":=").Add(call(codegen.Peek)), wideFail.cond).Block(fail()),
		}
	}

	switch {
	case asciiFail.never() && wideFail.never():
	case asciiFail.never():
		code = append(code, jen.If(peekByte, jen.Op("!").Id(codegen.OkName)).Block(wideReject...))
	case wideFail.never():
		code = append(code, jen.If(peekByte, jen.Id(codegen.OkName)).Block(asciiFail.reject()...))
	default:
		code = append(code, jen.If(peekByte, jen.Id(codegen.OkName)).Block(asciiFail.reject()...).
			Else().Block(wideReject...))
	}

	return append(code, jen.Return(call(codegen.Skip, jen.Lit(1), k.Func())))
}

// compileEscapeClass lowers \d and \w to runtime matchers. The other
// shorthand classes have no runtime counterpart and are tested inline.
func (c *Compiler) compileEscapeClass(n *ast.EscapeClass, k Cont) []jen.Code {
	switch n.Class {
	case 'd':
		return ret(call(codegen.Digit, k.Func()))
	case 'w':
		return ret(call(codegen.Word, k.Func()))
	}

	r := func() *jen.Statement { return jen.Id(codegen.RuneName) }
	var holds *jen.Statement
	switch n.Class {
	case 'D':
		holds = jen.Qual("unicode", "IsDigit").Call(r())
	case 'W':
		holds = jen.Qual("unicode", "IsLetter").Call(r()).
			Op("||").Qual("unicode", "IsDigit").Call(r()).
			Op("||").Add(r()).Op("==").LitRune('_')
	default:
		holds = jen.Qual("unicode", "IsSpace").Call(r())
	}

	rejects := holds
	if !n.Negated() {
		rejects = jen.Op("!").Add(holds)
	}

	return []jen.Code{
		jen.If(call(codegen.AtEnd)).Block(fail()),
		jen.If(r().Op(":=").Add(call(codegen.Peek)), rejects).Block(fail()),
		jen.Return(call(codegen.Skip, jen.Lit(1), k.Func())),
	}
}
