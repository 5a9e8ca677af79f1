package regcps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/KromDaniel/regcps/internal/parser"
)

// Manifest describes a batch of patterns translated into one package.
type Manifest struct {
	Package           string            `yaml:"package"`
	Runtime           string            `yaml:"runtime"`
	OutputDir         string            `yaml:"outputDir"`
	FlagScope         string            `yaml:"flagScope"`
	LegacyAlternation bool              `yaml:"legacyAlternation"`
	StrictStubs       bool              `yaml:"strictStubs"`
	Patterns          []ManifestPattern `yaml:"patterns"`

	// dir is the directory of the manifest file; relative output paths
	// resolve against it.
	dir string
}

// ManifestPattern is one entry of a manifest.
type ManifestPattern struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	// Output defaults to the lower-cased name with a .go suffix.
	Output string `yaml:"output"`
	// StrictStubs overrides the manifest-wide setting when present.
	StrictStubs *bool `yaml:"strictStubs"`
}

// LoadManifest reads and decodes a yaml manifest. Unknown keys are errors.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest decodes a manifest from yaml.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	m := &Manifest{}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if len(m.Patterns) == 0 {
		return nil, fmt.Errorf("manifest has no patterns")
	}
	return m, nil
}

// Options converts every manifest entry into validated Options.
func (m *Manifest) Options() ([]Options, error) {
	scope, err := ParseFlagScope(m.FlagScope)
	if err != nil {
		return nil, err
	}

	pkg := m.Package
	if pkg == "" {
		pkg = "main"
	}

	seen := make(map[string]bool, len(m.Patterns))
	opts := make([]Options, 0, len(m.Patterns))
	for i, p := range m.Patterns {
		output := p.Output
		if output == "" {
			output = strings.ToLower(p.Name) + ".go"
		}
		output = filepath.Join(m.dir, m.OutputDir, output)
		if seen[output] {
			return nil, fmt.Errorf("pattern %d (%s): output %s is used twice", i, p.Name, output)
		}
		seen[output] = true

		strict := m.StrictStubs
		if p.StrictStubs != nil {
			strict = *p.StrictStubs
		}

		o := Options{
			Pattern:           p.Pattern,
			Name:              p.Name,
			OutputFile:        output,
			Package:           pkg,
			Runtime:           m.Runtime,
			FlagScope:         scope,
			LegacyAlternation: m.LegacyAlternation,
			StrictStubs:       strict,
		}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("pattern %d (%s): %w", i, p.Name, err)
		}
		opts = append(opts, o)
	}
	return opts, nil
}

// ExpandManifests resolves doublestar globs (e.g. "regex/**/*.yaml") to
// manifest paths. A glob that matches nothing is an error.
func ExpandManifests(globs []string) ([]string, error) {
	var paths []string
	seen := map[string]bool{}
	for _, glob := range globs {
		if !doublestar.ValidatePathPattern(glob) {
			return nil, fmt.Errorf("invalid manifest glob %q", glob)
		}
		matches, err := doublestar.FilepathGlob(glob)
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", glob, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no manifest matches %q", glob)
		}
		for _, path := range matches {
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
		}
	}
	return paths, nil
}

// Report is the outcome of one translation in a batch.
type Report struct {
	Options Options
	Result  *parser.Result
}

// CompileAll translates every entry, running at most jobs translations at a
// time (GOMAXPROCS when jobs <= 0). Reports are returned in input order. The
// first error cancels the translations that have not started yet.
func CompileAll(ctx context.Context, opts []Options, jobs int) ([]Report, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	reports := make([]Report, len(opts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, o := range opts {
		i, o := i, o
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if dir := filepath.Dir(o.OutputFile); o.OutputFile != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("%s: failed to create output directory: %w", o.Name, err)
				}
			}
			result, err := Compile(o)
			if err != nil {
				return fmt.Errorf("%s: %w", o.Name, err)
			}
			reports[i] = Report{Options: o, Result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
