// Command regcps translates a regular expression into Go source for a
// continuation-passing backtracking runtime.
//
// Usage:
//
//	regcps [flags] [pattern]
//	regcps -manifest 'regex/**/*.yaml' -jobs 4
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/k0kubun/pp/v3"

	"github.com/KromDaniel/regcps/internal/ast"
	"github.com/KromDaniel/regcps/internal/parser"
	"github.com/KromDaniel/regcps/pkg/regcps"
)

// arrayFlags collects a repeatable string flag.
type arrayFlags []string

func (a arrayFlags) String() string {
	return strings.Join(a, ", ")
}

func (a *arrayFlags) Set(value string) error {
	*a = append(*a, value)
	return nil
}

var (
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
	okColor   = color.New(color.FgGreen)
)

// lockedWriter serializes writes from concurrent translations.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// patternFlags describe a single translation; manifests carry their own.
var patternFlags = []string{
	"pattern", "name", "package", "output", "runtime", "flag-scope",
	"legacy-alternation", "strict-stubs", "dump-ast", "analyze",
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			errColor.Fprintf(os.Stderr, "regcps: %v\n", err)
		}
		os.Exit(1)
	}
}

type cli struct {
	pattern           string
	name              string
	pkg               string
	output            string
	runtime           string
	flagScope         string
	legacyAlternation bool
	strictStubs       bool
	verbose           bool
	dumpAST           bool
	analyze           bool
	manifests         arrayFlags
	jobs              int
}

func run(args []string, stdout, stderr io.Writer) error {
	var c cli
	fs := flag.NewFlagSet("regcps", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&c.pattern, "pattern", "", "regular expression to translate (or the first argument)")
	fs.StringVar(&c.name, "name", "Pattern", "generated type name")
	fs.StringVar(&c.pkg, "package", "main", "generated package name")
	fs.StringVar(&c.output, "output", "", "output file (default stdout)")
	fs.StringVar(&c.runtime, "runtime", "", "import path of the matching runtime")
	fs.StringVar(&c.flagScope, "flag-scope", "pattern", "inline flag scope: pattern or positional")
	fs.BoolVar(&c.legacyAlternation, "legacy-alternation", false, "drop the rest of the pattern inside alternation arms")
	fs.BoolVar(&c.strictStubs, "strict-stubs", false, "panic at match time on unsupported constructs")
	fs.BoolVar(&c.verbose, "verbose", false, "log parse and analysis decisions to stderr")
	fs.BoolVar(&c.dumpAST, "dump-ast", false, "print the parsed tree to stderr")
	fs.BoolVar(&c.analyze, "analyze", false, "print the pattern analysis and exit")
	fs.Var(&c.manifests, "manifest", "yaml manifest glob (repeatable)")
	fs.IntVar(&c.jobs, "jobs", 0, "concurrent manifest translations (default GOMAXPROCS)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	if len(c.manifests) > 0 {
		for _, name := range patternFlags {
			if set[name] {
				return fmt.Errorf("-%s cannot be used with -manifest", name)
			}
		}
		if fs.NArg() > 0 {
			return fmt.Errorf("unexpected pattern %q with -manifest", fs.Arg(0))
		}
		return runManifests(c, stdout, stderr)
	}
	if set["jobs"] {
		return fmt.Errorf("-jobs requires -manifest")
	}

	if !set["pattern"] {
		if fs.NArg() == 0 {
			fs.Usage()
			return fmt.Errorf("a pattern is required")
		}
		c.pattern = fs.Arg(0)
	}

	scope, err := regcps.ParseFlagScope(c.flagScope)
	if err != nil {
		return err
	}

	if c.dumpAST {
		dumpTree(stderr, regcps.Parse(c.pattern))
	}
	if c.analyze {
		printAnalysis(stdout, regcps.Analyze(c.pattern))
		return nil
	}

	opts := regcps.Options{
		Pattern:           c.pattern,
		Name:              c.name,
		OutputFile:        c.output,
		Package:           c.pkg,
		Runtime:           c.runtime,
		FlagScope:         scope,
		LegacyAlternation: c.legacyAlternation,
		StrictStubs:       c.strictStubs,
		Verbose:           c.verbose,
		LogOutput:         stderr,
	}

	var result *parser.Result
	if c.output == "" {
		result, err = regcps.Translate(opts, stdout)
	} else {
		result, err = regcps.Compile(opts)
	}
	if err != nil {
		return err
	}

	reportDiagnostics(stderr, "", result)
	if c.output != "" {
		okColor.Fprintf(stderr, "wrote %s\n", c.output)
	}
	return nil
}

func runManifests(c cli, stdout, stderr io.Writer) error {
	paths, err := regcps.ExpandManifests(c.manifests)
	if err != nil {
		return err
	}

	logOut := &lockedWriter{w: stderr}
	var opts []regcps.Options
	for _, path := range paths {
		m, err := regcps.LoadManifest(path)
		if err != nil {
			return err
		}
		entries, err := m.Options()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for i := range entries {
			entries[i].Verbose = c.verbose
			entries[i].LogOutput = logOut
		}
		opts = append(opts, entries...)
	}

	reports, err := regcps.CompileAll(context.Background(), opts, c.jobs)
	if err != nil {
		return err
	}
	for _, r := range reports {
		reportDiagnostics(stderr, r.Options.Name+": ", r.Result)
		okColor.Fprintf(stdout, "wrote %s (%s)\n", r.Options.OutputFile, r.Options.Name)
	}
	return nil
}

// reportDiagnostics prints stubs in yellow and structural problems in red.
func reportDiagnostics(w io.Writer, prefix string, result *parser.Result) {
	for _, d := range result.Diagnostics {
		if d.Stub {
			warnColor.Fprintf(w, "%sstub: %s\n", prefix, d)
		} else {
			errColor.Fprintf(w, "%serror: %s\n", prefix, d)
		}
	}
	if !result.Complete() {
		errColor.Fprintf(w, "%serror: unconsumed input at offset %d: %q\n", prefix, result.Offset, result.Leftover())
	}
}

func dumpTree(w io.Writer, result *parser.Result) {
	fmt.Fprintln(w, ast.Dump(result.Root))
	printer := pp.New()
	printer.SetOutput(w)
	printer.SetColoringEnabled(!color.NoColor)
	printer.Println(result.Root)
}

func printAnalysis(w io.Writer, a regcps.AnalysisResult) {
	fmt.Fprintf(w, "features: %s\n", strings.Join(a.FeatureLabels, ", "))
	fmt.Fprintf(w, "nested quantifiers: %v\n", a.HasCatastrophicRisk)
	fmt.Fprintf(w, "captures: %d\n", a.Captures)
	fmt.Fprintf(w, "stubs: %d\n", a.Stubs)
	fmt.Fprintf(w, "min match length: %d\n", a.MinMatchLen)
}
