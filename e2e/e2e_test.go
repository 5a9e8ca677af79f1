package e2e

import (
	"encoding/json"
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KromDaniel/regcps/pkg/regcps"
)

// runtimeSource declares the matcher API the generated code calls. Bodies
// are never executed; the package only has to type-check.
const runtimeSource = `package backtrack

type Matcher struct{}

func New(input string) *Matcher { return &Matcher{} }

func (m *Matcher) Match(k func() bool) bool              { return k() }
func (m *Matcher) Char(r rune, k func() bool) bool       { return k() }
func (m *Matcher) CharFold(r rune, k func() bool) bool   { return k() }
func (m *Matcher) String(s string, k func() bool) bool   { return k() }
func (m *Matcher) StringFold(s string, k func() bool) bool { return k() }
func (m *Matcher) Any(k func() bool) bool                { return k() }
func (m *Matcher) Skip(n int, k func() bool) bool        { return k() }
func (m *Matcher) Digit(k func() bool) bool              { return k() }
func (m *Matcher) Word(k func() bool) bool               { return k() }
func (m *Matcher) BOL(k func() bool) bool                { return k() }
func (m *Matcher) EOL(k func() bool) bool                { return k() }
func (m *Matcher) BOS(k func() bool) bool                { return k() }
func (m *Matcher) EOS(k func() bool) bool                { return k() }
func (m *Matcher) AtEnd() bool                           { return true }
func (m *Matcher) Peek() rune                            { return 0 }
func (m *Matcher) PeekByte() (byte, bool)                { return 0, false }

type Unit = func(next func() bool) bool

func (m *Matcher) Star(u Unit, k func() bool) bool                 { return k() }
func (m *Matcher) StarLazy(u Unit, k func() bool) bool             { return k() }
func (m *Matcher) Plus(u Unit, k func() bool) bool                 { return k() }
func (m *Matcher) PlusLazy(u Unit, k func() bool) bool             { return k() }
func (m *Matcher) Optional(u Unit, k func() bool) bool             { return k() }
func (m *Matcher) OptionalLazy(u Unit, k func() bool) bool         { return k() }
func (m *Matcher) Exactly(n int, u Unit, k func() bool) bool       { return k() }
func (m *Matcher) AtLeast(n int, u Unit, k func() bool) bool       { return k() }
func (m *Matcher) AtLeastLazy(n int, u Unit, k func() bool) bool   { return k() }
func (m *Matcher) Between(lo, hi int, u Unit, k func() bool) bool     { return k() }
func (m *Matcher) BetweenLazy(lo, hi int, u Unit, k func() bool) bool { return k() }
`

// TestCase represents a pattern and the translation options to try it with.
type TestCase struct {
	Pattern           string `json:"pattern"`
	FlagScope         string `json:"flagScope"`
	LegacyAlternation bool   `json:"legacyAlternation"`
	StrictStubs       bool   `json:"strictStubs"`
}

// stubImporter serves the runtime from source and everything else from the
// toolchain.
type stubImporter struct {
	pkgs     map[string]*types.Package
	fallback types.Importer
}

func (s stubImporter) Import(path string) (*types.Package, error) {
	if pkg, ok := s.pkgs[path]; ok {
		return pkg, nil
	}
	return s.fallback.Import(path)
}

func newImporter(t *testing.T, fset *token.FileSet) types.Importer {
	t.Helper()
	file, err := parser.ParseFile(fset, "backtrack.go", runtimeSource, 0)
	require.NoError(t, err)
	pkg, err := (&types.Config{}).Check("github.com/KromDaniel/backtrack", fset, []*ast.File{file}, nil)
	require.NoError(t, err)

	return stubImporter{
		pkgs:     map[string]*types.Package{pkg.Path(): pkg},
		fallback: importer.ForCompiler(fset, "source", nil),
	}
}

// TestE2E translates every pattern in testdata.json and type-checks the
// generated file against the runtime API.
func TestE2E(t *testing.T) {
	data, err := os.ReadFile("testdata.json")
	if err != nil {
		t.Fatalf("Failed to read test data: %v", err)
	}

	var testCases []TestCase
	if err := json.Unmarshal(data, &testCases); err != nil {
		t.Fatalf("Failed to parse test data: %v", err)
	}
	if len(testCases) == 0 {
		t.Fatal("No test cases found in testdata.json")
	}
	t.Logf("Running %d e2e test cases", len(testCases))

	fset := token.NewFileSet()
	imp := newImporter(t, fset)
	tempDir := t.TempDir()

	for i, tc := range testCases {
		testName := fmt.Sprintf("Pattern%02d", i+1)

		t.Run(testName, func(t *testing.T) {
			scope, err := regcps.ParseFlagScope(tc.FlagScope)
			require.NoError(t, err)

			outputFile := filepath.Join(tempDir, testName+".go")
			result, err := regcps.Compile(regcps.Options{
				Pattern:           tc.Pattern,
				Name:              testName,
				OutputFile:        outputFile,
				Package:           "generated",
				FlagScope:         scope,
				LegacyAlternation: tc.LegacyAlternation,
				StrictStubs:       tc.StrictStubs,
			})
			if err != nil {
				t.Fatalf("Failed to generate code for %q: %v", tc.Pattern, err)
			}
			for _, d := range result.Diagnostics {
				t.Logf("%q: %s", tc.Pattern, d)
			}

			file, err := parser.ParseFile(fset, outputFile, nil, parser.ParseComments)
			if err != nil {
				t.Fatalf("Generated code for %q does not parse: %v", tc.Pattern, err)
			}

			conf := types.Config{Importer: imp}
			if _, err := conf.Check("generated", fset, []*ast.File{file}, nil); err != nil {
				source, _ := os.ReadFile(outputFile)
				t.Fatalf("Generated code for %q does not type-check: %v\n%s", tc.Pattern, err, source)
			}
		})
	}
}
