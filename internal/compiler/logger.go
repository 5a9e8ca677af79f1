package compiler

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var logPrefix = color.New(color.FgCyan).Sprint("[regcps]")

// Logger provides verbose output for parse and emission decisions. Lines
// carry the matcher name so output from concurrent translations can be told
// apart.
type Logger struct {
	enabled bool
	name    string
	out     io.Writer
}

// NewLogger creates a logger for the matcher called name. A nil out writes
// to stderr.
func NewLogger(enabled bool, name string, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		enabled: enabled,
		name:    name,
		out:     out,
	}
}

// SetOutput sets the output writer for the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.out = w
}

// Log prints a formatted message if verbose mode is enabled. Each message is
// written with a single call so a synchronized writer never interleaves it.
func (l *Logger) Log(format string, args ...interface{}) {
	if l.enabled {
		fmt.Fprintf(l.out, "%s %s: %s\n", logPrefix, l.name, fmt.Sprintf(format, args...))
	}
}

// Section prints a section header if verbose mode is enabled.
func (l *Logger) Section(name string) {
	if l.enabled {
		fmt.Fprintf(l.out, "%s %s: === %s ===\n", logPrefix, l.name, name)
	}
}

// Enabled returns whether the logger is enabled.
func (l *Logger) Enabled() bool {
	return l.enabled
}
