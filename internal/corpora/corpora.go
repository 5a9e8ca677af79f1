// Package corpora runs golden tests whose cases live in a testdata directory.
// Each case file produces one or more outputs that are compared against
// sibling files named after the case plus an output extension.
package corpora

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// Corpus is a table of test cases stored on disk.
type Corpus struct {
	// Root is the testdata directory, relative to the calling test file.
	Root string

	// Refresh names an environment variable holding a doublestar glob. Cases
	// whose path matches it have their outputs rewritten instead of checked.
	Refresh string

	// Extension of case files, without the dot (e.g. "yaml").
	Extension string

	// Outputs are compared in order against the values returned by Test. A
	// missing output file is treated as empty.
	Outputs []Output

	// Test runs one case and returns one string per output.
	Test func(t *testing.T, path, text string) []string
}

// Output is one expected result of a case, stored at <case>.<Extension>.
type Output struct {
	Extension string

	// Compare defaults to an exact match with a unified diff on failure.
	Compare Compare
}

// Compare returns "" when got matches want, and a description otherwise.
type Compare func(got, want string) string

// Run executes every case under Root as a subtest.
func (c Corpus) Run(t *testing.T) {
	t.Helper()
	dir := callerDir(0)
	root := filepath.Join(dir, c.Root)

	cases, err := c.collect(root)
	if err != nil {
		t.Fatalf("corpora: walking %q: %v", root, err)
	}
	if len(cases) == 0 {
		t.Fatalf("corpora: no .%s cases under %q", c.Extension, root)
	}

	var glob string
	if c.Refresh != "" {
		glob = os.Getenv(c.Refresh)
		if !doublestar.ValidatePattern(glob) {
			t.Fatalf("corpora: invalid refresh glob %q", glob)
		}
	}
	if glob != "" {
		t.Logf("corpora: %s=%s, rewriting outputs", c.Refresh, glob)
		t.Fail()
	}

	for _, file := range cases {
		name, _ := filepath.Rel(dir, file)
		name = filepath.ToSlash(name)
		t.Run(name, func(t *testing.T) {
			text, err := os.ReadFile(file)
			if err != nil {
				t.Fatalf("corpora: reading %q: %v", file, err)
			}

			got := c.Test(t, name, string(text))
			if len(got) != len(c.Outputs) {
				t.Fatalf("corpora: test returned %d outputs, want %d", len(got), len(c.Outputs))
			}

			rewrite := false
			if glob != "" {
				rewrite, _ = doublestar.Match(glob, name)
			}
			for i, out := range c.Outputs {
				target := fmt.Sprint(file, ".", out.Extension)
				if rewrite {
					if err := write(target, got[i]); err != nil {
						t.Errorf("corpora: %v", err)
					}
					continue
				}

				want, err := os.ReadFile(target)
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					t.Errorf("corpora: reading %q: %v", target, err)
					continue
				}
				compare := out.Compare
				if compare == nil {
					compare = Exact
				}
				if msg := compare(got[i], string(want)); msg != "" {
					t.Errorf("output mismatch for %q:\n%s", target, msg)
				}
			}
		})
	}
}

func (c Corpus) collect(root string) ([]string, error) {
	var cases []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.TrimPrefix(filepath.Ext(p), ".") == c.Extension {
			cases = append(cases, p)
		}
		return nil
	})
	sort.Strings(cases)
	return cases, err
}

// write stores an output, removing the file when the output is empty.
func write(path, content string) error {
	if content == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %q: %w", path, err)
		}
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}
	return nil
}

// Exact compares byte for byte and reports a unified diff.
func Exact(got, want string) string {
	if got == want {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

func callerDir(skip int) string {
	_, file, _, ok := runtime.Caller(skip + 2)
	if !ok {
		panic("corpora: cannot locate calling test file")
	}
	return filepath.Dir(file)
}
