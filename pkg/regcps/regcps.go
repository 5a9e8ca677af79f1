// Package regcps translates regular expressions into Go source that drives a
// continuation-passing backtracking runtime.
package regcps

import (
	"bytes"
	"fmt"
	"go/token"
	"io"

	"github.com/KromDaniel/regcps/internal/codegen"
	"github.com/KromDaniel/regcps/internal/compiler"
	"github.com/KromDaniel/regcps/internal/parser"
)

// FlagScope selects how inline flag groups such as (?i) are applied.
type FlagScope = compiler.FlagScope

const (
	// ScopePattern applies the final flags to the whole pattern, including
	// the part before the flag group.
	ScopePattern = compiler.ScopePattern
	// ScopePositional applies flags from the point of declaration onward.
	ScopePositional = compiler.ScopePositional
)

// ParseFlagScope converts "pattern" or "positional" to a FlagScope.
func ParseFlagScope(name string) (FlagScope, error) {
	return compiler.ParseFlagScope(name)
}

// Options configures the regex translation.
type Options struct {
	// Pattern is the regular expression to translate. An empty pattern
	// matches the empty string.
	Pattern string

	// Name is the generated type name (e.g., "Email" generates type Email with MatchString)
	Name string

	// OutputFile is the path where generated code will be written. Empty means the writer passed to Translate, or stdout for Compile.
	OutputFile string

	// Package is the Go package name for the generated code
	Package string

	// Runtime is the import path of the matching runtime. Defaults to codegen.DefaultRuntime.
	Runtime string

	// FlagScope selects retroactive (default) or positional inline flags
	FlagScope FlagScope

	// LegacyAlternation reproduces arms that succeed without running the rest of the pattern
	LegacyAlternation bool

	// StrictStubs makes unsupported constructs panic at match time instead of matching nothing
	StrictStubs bool

	// Verbose logs parse and analysis decisions
	Verbose bool

	// LogOutput receives verbose logs. Nil means stderr. CompileAll shares it
	// between goroutines, so it must be safe for concurrent writes.
	LogOutput io.Writer
}

// Validate checks if the options are valid.
func (o Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if !token.IsIdentifier(o.Name) || o.Name == "_" {
		return fmt.Errorf("name %q is not a Go identifier", o.Name)
	}
	if o.Package == "" {
		return fmt.Errorf("package cannot be empty")
	}
	if !token.IsIdentifier(o.Package) {
		return fmt.Errorf("package %q is not a Go identifier", o.Package)
	}
	if o.FlagScope != ScopePattern && o.FlagScope != ScopePositional {
		return fmt.Errorf("unknown flag scope %d", int(o.FlagScope))
	}
	return nil
}

func (o Options) runtime() string {
	if o.Runtime == "" {
		return codegen.DefaultRuntime
	}
	return o.Runtime
}

func (o Options) newCompiler(result *parser.Result) *compiler.Compiler {
	return compiler.New(compiler.Config{
		Pattern:           o.Pattern,
		Name:              o.Name,
		OutputFile:        o.OutputFile,
		Package:           o.Package,
		Runtime:           o.runtime(),
		Result:            result,
		FlagScope:         o.FlagScope,
		LegacyAlternation: o.LegacyAlternation,
		StrictStubs:       o.StrictStubs,
		Verbose:           o.Verbose,
		LogOutput:         o.LogOutput,
	})
}

// Parse parses a pattern without generating code.
func Parse(pattern string) *parser.Result {
	return parser.Parse(pattern)
}

// Compile generates Go code for the given pattern and writes it to
// OutputFile, or to stdout when OutputFile is empty. Translation itself
// never fails; unsupported constructs become commented stubs.
func Compile(opts Options) (*parser.Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := parser.Parse(opts.Pattern)
	c := opts.newCompiler(result)
	if err := c.Generate(); err != nil {
		return result, fmt.Errorf("failed to generate code: %w", err)
	}
	return result, nil
}

// Translate generates Go code for the given pattern into w. OutputFile is
// ignored.
func Translate(opts Options, w io.Writer) (*parser.Result, error) {
	opts.OutputFile = ""
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := parser.Parse(opts.Pattern)
	c := opts.newCompiler(result)
	c.SetOutput(w)
	if err := c.Generate(); err != nil {
		return result, fmt.Errorf("failed to generate code: %w", err)
	}
	return result, nil
}

// TranslateString is Translate into a string.
func TranslateString(opts Options) (string, *parser.Result, error) {
	var buf bytes.Buffer
	result, err := Translate(opts, &buf)
	if err != nil {
		return "", result, err
	}
	return buf.String(), result, nil
}
