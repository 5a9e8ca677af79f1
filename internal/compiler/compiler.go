// Package compiler lowers a parsed regex into Go source that drives a
// continuation-passing backtracking runtime.
package compiler

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KromDaniel/regcps/internal/codegen"
	"github.com/KromDaniel/regcps/internal/parser"
	"github.com/dave/jennifer/jen"
)

// FlagScope controls which inline-flag state a literal or dot is emitted with.
type FlagScope int

const (
	// ScopePattern applies the flags in effect at the end of the pattern to
	// every node, including nodes that appear before the flag group.
	ScopePattern FlagScope = iota
	// ScopePositional applies the flags in effect where each node appeared.
	ScopePositional
)

func (s FlagScope) String() string {
	switch s {
	case ScopePattern:
		return "pattern"
	case ScopePositional:
		return "positional"
	}
	return fmt.Sprintf("FlagScope(%d)", int(s))
}

// ParseFlagScope converts a flag scope name back to its value.
func ParseFlagScope(name string) (FlagScope, error) {
	switch name {
	case "", "pattern":
		return ScopePattern, nil
	case "positional":
		return ScopePositional, nil
	}
	return 0, fmt.Errorf("unknown flag scope %q (want pattern or positional)", name)
}

// Config holds the configuration for code generation.
type Config struct {
	Pattern           string
	Name              string
	OutputFile        string         // empty writes to the compiler's output (stdout)
	Package           string
	Runtime           string         // import path of the matching runtime
	Result            *parser.Result // parsed pattern; parsed from Pattern when nil
	FlagScope         FlagScope      // which flag state literals and dots use
	LegacyAlternation bool           // drop the outer continuation inside alternation arms
	StrictStubs       bool           // stubs panic instead of falling through
	Verbose           bool           // Enable verbose logging of analysis decisions
	LogOutput         io.Writer      // verbose log destination; nil means stderr
}

// Compiler generates Go code from a parsed pattern.
type Compiler struct {
	config   Config
	file     *jen.File
	result   *parser.Result
	logger   *Logger
	analysis Analysis
	out      io.Writer
	depth    int // quantifier nesting while emitting
	conts    int // continuations bound to locals so far
}

// New creates a new compiler instance.
func New(config Config) *Compiler {
	if config.Runtime == "" {
		config.Runtime = codegen.DefaultRuntime
	}
	result := config.Result
	if result == nil {
		result = parser.Parse(config.Pattern)
	}

	c := &Compiler{
		config: config,
		file:   jen.NewFile(config.Package),
		result: result,
		logger: NewLogger(config.Verbose, config.Name, config.LogOutput),
		out:    os.Stdout,
	}
	c.file.ImportAlias(config.Runtime, codegen.RuntimeAlias)

	c.analyzeAndLog()
	return c
}

// analyzeAndLog performs pattern analysis and logs the results if verbose mode is enabled.
func (c *Compiler) analyzeAndLog() {
	c.logger.Section("Parse")
	c.logger.Log("Pattern: %s", c.config.Pattern)
	c.logger.Log("Consumed: %d of %d characters", c.result.Offset, len([]rune(c.result.Pattern)))
	c.logger.Log("Flags after parse: fold=%v dotall=%v", c.result.Flags.FoldCase, c.result.Flags.DotAll)
	for _, d := range c.result.Diagnostics {
		c.logger.Log("Diagnostic: %s", d)
	}

	c.analysis = Analyze(c.result.Root)

	c.logger.Section("Pattern Analysis")
	c.logger.Log("Features: %s", strings.Join(c.analysis.FeatureLabels, ", "))
	c.logger.Log("Has nested quantifiers: %v", c.analysis.HasCatastrophicRisk)
	c.logger.Log("Stubs: %d", c.analysis.Stubs)
	c.logger.Log("Minimum match length: %d", c.analysis.MinMatchLen)

	c.logger.Section("Emission")
	c.logger.Log("Flag scope: %s", c.config.FlagScope)
	if c.config.LegacyAlternation {
		c.logger.Log("Alternation: legacy (outer continuation dropped in arms)")
	} else {
		c.logger.Log("Alternation: outer continuation threaded into every arm")
	}
	if c.config.StrictStubs {
		c.logger.Log("Stubs: panic at run time")
	} else {
		c.logger.Log("Stubs: comment and fall through")
	}
}

// SetOutputFile sets the output file path.
func (c *Compiler) SetOutputFile(path string) {
	c.config.OutputFile = path
}

// SetOutput sets the writer used when no output file is configured.
func (c *Compiler) SetOutput(w io.Writer) {
	c.out = w
}

// Logger returns the compiler's verbose logger.
func (c *Compiler) Logger() *Logger {
	return c.logger
}

// Analysis returns the analysis computed for the pattern.
func (c *Compiler) Analysis() Analysis {
	return c.analysis
}

// Result returns the parse result the compiler works from.
func (c *Compiler) Result() *parser.Result {
	return c.result
}

// method returns a jen.Statement for declaring a method on the generated struct.
func (c *Compiler) method(name string) *jen.Statement {
	return c.file.Func().
		Params(jen.Id(c.typeName())).
		Id(name)
}

func (c *Compiler) typeName() string {
	return codegen.UpperFirst(c.config.Name)
}

// Generate generates the Go code and writes it to the output file, or to
// the configured writer when no file is set.
func (c *Compiler) Generate() error {
	c.build()

	if c.config.OutputFile == "" {
		if err := c.file.Render(c.out); err != nil {
			return fmt.Errorf("failed to render code: %w", err)
		}
		return nil
	}

	if err := c.file.Save(c.config.OutputFile); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// build assembles the generated file.
func (c *Compiler) build() {
	pattern := commentText(c.config.Pattern)
	c.file.HeaderComment(fmt.Sprintf("Code generated by regcps for pattern: %s. DO NOT EDIT.", pattern))

	for _, note := range c.notes() {
		c.file.Comment(note)
	}
	c.file.Line()

	name := c.typeName()
	c.file.Type().Id(name).Struct()
	c.file.Line()

	// Generate convenience variable for direct usage
	c.file.Var().Id(fmt.Sprintf("Compiled%s", name)).Op("=").Id(name).Values()
	c.file.Line()

	c.file.Comment(fmt.Sprintf("MatchString reports whether input matches %s.", pattern))
	c.method("MatchString").
		Params(jen.Id(codegen.InputName).String()).
		Params(jen.Bool()).
		Block(c.matchBody()...)
}

// notes lists the file-level diagnostics: leftover input, structural
// problems the parser recovered from, and backtracking warnings. Stubs are
// reported inline where they are emitted.
func (c *Compiler) notes() []string {
	var notes []string
	if !c.result.Complete() {
		notes = append(notes, fmt.Sprintf("unconsumed input at offset %d: %q", c.result.Offset, c.result.Leftover()))
	}
	for _, d := range c.result.Diagnostics {
		if !d.Stub {
			notes = append(notes, commentText(d.String()))
		}
	}
	if c.analysis.HasCatastrophicRisk {
		notes = append(notes, "warning: nested quantifiers may backtrack exponentially")
	}
	return notes
}

// matchBody constructs the matcher and runs the compiled pattern against it.
func (c *Compiler) matchBody() []jen.Code {
	return []jen.Code{
		jen.Id(codegen.MatcherName).Op(":=").Qual(c.config.Runtime, codegen.NewMatcher).Call(jen.Id(codegen.InputName)),
		jen.Line(),
		jen.Return(call(codegen.Match, jen.Func().Params().Bool().Block(c.Body()...))),
	}
}

// Body compiles the whole pattern against the accepting continuation.
func (c *Compiler) Body() []jen.Code {
	c.depth, c.conts = 0, 0
	return c.compile(c.result.Root, accept())
}

var commentEscaper = strings.NewReplacer("\n", `\n`, "\r", `\r`, "*/", `*\/`)

// commentText makes s safe to place on a single comment line.
func commentText(s string) string {
	return commentEscaper.Replace(s)
}
