// Package codegen provides code generation helpers and constants.
package codegen

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Identifiers used in generated code
const (
	InputName    = "input"
	MatcherName  = "m"
	RuntimeAlias = "backtrack"
	RuneName     = "r"
	ByteName     = "b"
	OkName       = "ok"

	// DefaultRuntime is the import path of the matching runtime.
	DefaultRuntime = "github.com/KromDaniel/backtrack"
)

// Runtime entry points. All but NewMatcher are methods of the matcher.
const (
	NewMatcher = "New"
	Match      = "Match"

	Char       = "Char"
	CharFold   = "CharFold"
	String     = "String"
	StringFold = "StringFold"
	Any        = "Any"
	Skip       = "Skip"
	Digit      = "Digit"
	Word       = "Word"

	BOL = "BOL"
	EOL = "EOL"
	BOS = "BOS"
	EOS = "EOS"

	AtEnd    = "AtEnd"
	Peek     = "Peek"
	PeekByte = "PeekByte"

	Star         = "Star"
	StarLazy     = "StarLazy"
	Plus         = "Plus"
	PlusLazy     = "PlusLazy"
	Optional     = "Optional"
	OptionalLazy = "OptionalLazy"
	Exactly      = "Exactly"
	AtLeast      = "AtLeast"
	AtLeastLazy  = "AtLeastLazy"
	Between      = "Between"
	BetweenLazy  = "BetweenLazy"
)

// NextName returns the parameter name of a repetition unit nested depth
// quantifiers deep.
func NextName(depth int) string {
	return fmt.Sprintf("next%d", depth)
}

// ContName returns the name of the id-th continuation bound to a local.
func ContName(id int) string {
	return fmt.Sprintf("k%d", id)
}

// UpperFirst converts the first rune of a string to uppercase.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
