package compiler

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// render generates the full file for pattern and returns it.
func render(t *testing.T, pattern string, opts ...func(*Config)) string {
	t.Helper()
	config := Config{
		Pattern: pattern,
		Name:    "Test",
		Package: "test",
	}
	for _, opt := range opts {
		opt(&config)
	}

	var buf bytes.Buffer
	c := New(config)
	c.SetOutput(&buf)
	require.NoError(t, c.Generate())
	return buf.String()
}

// squash removes all whitespace so snippets can be compared regardless of
// formatting.
func squash(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func assertCode(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		assert.Contains(t, squash(got), squash(w))
	}
}

func legacy(c *Config)     { c.LegacyAlternation = true }
func strict(c *Config)     { c.StrictStubs = true }
func positional(c *Config) { c.FlagScope = ScopePositional }

func TestCompilerGenerate(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
	}{
		{"simple", "test"},
		{"digit", `\d+`},
		{"word", `\w+`},
		{"alternation", "a|b"},
		{"class", "[^a-z0-9é]"},
		{"stubs", `(?=x)\b\1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			outputFile := filepath.Join(tmpDir, "test.go")

			c := New(Config{
				Pattern:    tt.pattern,
				Name:       "Test",
				OutputFile: outputFile,
				Package:    "test",
			})

			if err := c.Generate(); err != nil {
				t.Errorf("generation failed: %v", err)
			}

			if _, err := os.Stat(outputFile); os.IsNotExist(err) {
				t.Error("output file was not created")
			}
		})
	}
}

func TestFileLayout(t *testing.T) {
	got := render(t, "abc")
	assert.True(t, strings.HasPrefix(got, "// Code generated by regcps for pattern: abc. DO NOT EDIT.\n"))
	assertCode(t, got,
		"package test",
		`import backtrack "github.com/KromDaniel/backtrack"`,
		"type Test struct{}",
		"var CompiledTest = Test{}",
		"// MatchString reports whether input matches abc.",
		`func (Test) MatchString(input string) bool {
			m := backtrack.New(input)
			return m.Match(func() bool {
				return m.String("abc", func() bool { return true })
			})
		}`,
	)
}

func TestCustomRuntime(t *testing.T) {
	got := render(t, "a", func(c *Config) { c.Runtime = "example.com/rt" })
	assertCode(t, got, `import backtrack "example.com/rt"`, "m := backtrack.New(input)")
}

func TestTypeNameCapitalized(t *testing.T) {
	got := render(t, "a", func(c *Config) { c.Name = "email" })
	assertCode(t, got, "type Email struct{}", "var CompiledEmail = Email{}")
}

func TestPureLiteralNesting(t *testing.T) {
	got := render(t, "ab.cd")
	assertCode(t, got, `return m.String("ab", func() bool {
		return m.Any(func() bool {
			return m.String("cd", func() bool { return true })
		})
	})`)
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"a", `return m.Char('a', func() bool { return true })`},
		{`\n`, `return m.Char('\n', func() bool { return true })`},
		{"日本", `return m.String("日本", func() bool { return true })`},
		{"(?i)a", `return m.CharFold('a', func() bool { return true })`},
		{"(?i)ab", `return m.StringFold("ab", func() bool { return true })`},
	}

	for _, tt := range tests {
		assertCode(t, render(t, tt.pattern), tt.want)
	}
}

func TestFlagScope(t *testing.T) {
	retroactive := render(t, "ab(?i)CD")
	assertCode(t, retroactive, `return m.StringFold("ab", func() bool {
		return m.StringFold("CD", func() bool { return true })
	})`)

	got := render(t, "ab(?i)CD", positional)
	assertCode(t, got, `return m.String("ab", func() bool {
		return m.StringFold("CD", func() bool { return true })
	})`)

	assertCode(t, render(t, ".(?s)"), `return m.Skip(1, func() bool { return true })`)
	assertCode(t, render(t, ".(?s)", positional), `return m.Any(func() bool { return true })`)
}

func TestAnchors(t *testing.T) {
	got := render(t, `^\Aa$\z`)
	assertCode(t, got, `return m.BOL(func() bool {
		return m.BOS(func() bool {
			return m.Char('a', func() bool {
				return m.EOL(func() bool {
					return m.EOS(func() bool { return true })
				})
			})
		})
	})`)
}

func TestAlternationThreadsTail(t *testing.T) {
	got := render(t, "ab|cd|ef")
	assertCode(t, got, `k0 := func() bool { return true }
		return func() bool { return m.String("ab", k0) }() ||
			func() bool { return m.String("cd", k0) }() ||
			func() bool { return m.String("ef", k0) }()`)

	got = render(t, "(a|b)c")
	assertCode(t, got, `k0 := func() bool {
			return m.Char('c', func() bool { return true })
		}
		return func() bool { return m.Char('a', k0) }() ||
			func() bool { return m.Char('b', k0) }()`)
}

func TestAlternationEmptyArm(t *testing.T) {
	got := render(t, "(a|)b")
	assertCode(t, got, `return func() bool { return m.Char('a', k0) }() ||
		func() bool { return k0() }()`)
}

func TestAlternationLegacy(t *testing.T) {
	got := render(t, "(a|b)c", legacy)
	assertCode(t, got, `return func() bool {
			return m.Char('a', func() bool { return true })
		}() || func() bool {
			return m.Char('b', func() bool { return true })
		}()`)
	assert.NotContains(t, got, "'c'")
	assert.NotContains(t, got, "k0")
}

func TestAlternationInsideQuantifier(t *testing.T) {
	got := render(t, "(a|b)*")
	assertCode(t, got, `return m.Star(func(next1 func() bool) bool {
		return func() bool { return m.Char('a', next1) }() ||
			func() bool { return m.Char('b', next1) }()
	}, func() bool { return true })`)
	assert.NotContains(t, got, "k0")
}

func TestUnusedTailNotBound(t *testing.T) {
	// Every arm panics, so the bound tail would be an unused variable.
	got := render(t, `(\1|\2)c`, strict)
	assert.NotContains(t, got, "k0")
}

func TestQuantifiers(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"a*", `m.Star(func(next1 func() bool) bool { return m.Char('a', next1) }, func() bool { return true })`},
		{"a*?", `m.StarLazy(func(next1 func() bool) bool`},
		{"a+", `m.Plus(func(next1 func() bool) bool`},
		{"a+?", `m.PlusLazy(func(next1 func() bool) bool`},
		{"a?", `m.Optional(func(next1 func() bool) bool`},
		{"a??", `m.OptionalLazy(func(next1 func() bool) bool`},
		{"a{2}", `m.Exactly(2, func(next1 func() bool) bool`},
		{"a{2}?", `m.Exactly(2, func(next1 func() bool) bool`},
		{"a{2,}", `m.AtLeast(2, func(next1 func() bool) bool`},
		{"a{2,}?", `m.AtLeastLazy(2, func(next1 func() bool) bool`},
		{"a{2,4}", `m.Between(2, 4, func(next1 func() bool) bool`},
		{"a{2,4}?", `m.BetweenLazy(2, 4, func(next1 func() bool) bool`},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assertCode(t, render(t, tt.pattern), tt.want)
		})
	}
}

func TestNestedQuantifierNames(t *testing.T) {
	got := render(t, "(a*)*b")
	assertCode(t, got, `return m.Star(func(next1 func() bool) bool {
		return m.Star(func(next2 func() bool) bool { return m.Char('a', next2) }, next1)
	}, func() bool {
		return m.Char('b', func() bool { return true })
	})`)
	assertCode(t, got, "// warning: nested quantifiers may backtrack exponentially")
}

func TestMalformedQuantifierKeepsAtom(t *testing.T) {
	got := render(t, "a{,4}b")
	assertCode(t, got, `return m.Char('a', func() bool {
		// malformed quantifier {,4}
		return m.Char('b', func() bool { return true })
	})`)
}

func TestCharClassNegatedOnce(t *testing.T) {
	got := render(t, "[^a-c]")
	assertCode(t, got,
		`if m.AtEnd() { return false }`,
		`if b, ok := m.PeekByte(); ok {`,
		`b >= 'a' && b <= 'c'`,
		`return m.Skip(1, func() bool { return true })`,
	)
	assert.NotContains(t, got, "!")
	assert.NotContains(t, got, "m.Peek()")
	assert.Equal(t, 1, strings.Count(got, "'a'"))
}

func TestCharClassPositive(t *testing.T) {
	got := render(t, "[xa-c]")
	assertCode(t, got, `if b, ok := m.PeekByte(); ok {
		if !(b == 'x' || (b >= 'a' && b <= 'c')) { return false }
	} else {
		return false
	}`)
}

func TestCharClassWide(t *testing.T) {
	got := render(t, "[α-ω]")
	assertCode(t, got, `if _, ok := m.PeekByte(); ok {
		return false
	} else {
		if r := m.Peek(); !(r >= 'α' && r <= 'ω') { return false }
	}`)
}

func TestCharClassSplitsStraddlingRange(t *testing.T) {
	got := render(t, "[a-é]")
	assertCode(t, got,
		`b >= 'a' && b <= '\x7f'`,
		`r >= '\u0080' && r <= 'é'`,
	)
}

func TestCharClassNegatedWide(t *testing.T) {
	got := render(t, "[^é]")
	assertCode(t, got, `if _, ok := m.PeekByte(); !ok {
		if r := m.Peek(); r == 'é' { return false }
	}`)
}

func TestCharClassNegatedEmptyMatchesAny(t *testing.T) {
	got := render(t, "[^]")
	assertCode(t, got, `if m.AtEnd() { return false }
		return m.Skip(1, func() bool { return true })`)
	assert.NotContains(t, got, "PeekByte")
}

func TestEscapeClasses(t *testing.T) {
	assertCode(t, render(t, `\d`), `return m.Digit(func() bool { return true })`)
	assertCode(t, render(t, `\w`), `return m.Word(func() bool { return true })`)

	got := render(t, `\D`)
	assertCode(t, got, `"unicode"`, `if r := m.Peek(); unicode.IsDigit(r) { return false }`)

	got = render(t, `\s`)
	assertCode(t, got, `if r := m.Peek(); !unicode.IsSpace(r) { return false }`)

	got = render(t, `\W`)
	assertCode(t, got, `if r := m.Peek(); unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' { return false }`)
}

func TestStubs(t *testing.T) {
	got := render(t, `\bfoo`)
	assertCode(t, got, `// unsupported word boundary \b
		return m.String("foo", func() bool { return true })`)

	got = render(t, `\bfoo`, strict)
	assertCode(t, got, `// unsupported word boundary \b
		panic("regcps: unsupported word boundary \\b")`)
	assert.NotContains(t, got, `m.String("foo"`)
}

func TestNotes(t *testing.T) {
	got := render(t, "ab)c")
	assertCode(t, got, `// unconsumed input at offset 2: ")c"`)

	got = render(t, "(a")
	assertCode(t, got, "// offset 0: unterminated group")
}

func TestCommentText(t *testing.T) {
	assert.Equal(t, `a\nb *\/`, commentText("a\nb */"))
}

func TestAnalysisExposed(t *testing.T) {
	c := New(Config{Pattern: "(a+)+", Name: "Test", Package: "test"})
	assert.True(t, c.Analysis().HasCatastrophicRisk)
	assert.Equal(t, "(a+)+", c.Result().Pattern)
}

func TestVerboseLogging(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Pattern: "a|b", Name: "Test", Package: "test", Verbose: true, LogOutput: &buf})

	out := buf.String()
	assert.Contains(t, out, "Test: === Parse ===")
	assert.Contains(t, out, "Test: === Pattern Analysis ===")
	assert.Contains(t, out, "Test: Features: Alternation")
	assert.Contains(t, out, "Test: Flag scope: pattern")
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		assert.Contains(t, line, "[regcps]")
	}
}

func TestQuietLogging(t *testing.T) {
	var buf bytes.Buffer
	c := New(Config{Pattern: "a|b", Name: "Test", Package: "test", LogOutput: &buf})
	assert.False(t, c.Logger().Enabled())
	assert.Empty(t, buf.String())
}

func TestParseFlagScope(t *testing.T) {
	for _, name := range []string{"", "pattern"} {
		got, err := ParseFlagScope(name)
		require.NoError(t, err)
		assert.Equal(t, ScopePattern, got)
	}
	got, err := ParseFlagScope("positional")
	require.NoError(t, err)
	assert.Equal(t, ScopePositional, got)
	assert.Equal(t, "positional", got.String())

	_, err = ParseFlagScope("lexical")
	assert.Error(t, err)
}
