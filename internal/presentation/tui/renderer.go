package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a function that renders markdown answers using glamour.
// It returns nil when out is not a terminal, so piped output stays plain text.
func NewRenderer(out *os.File) func(string) (string, error) {
	if out == nil || !IsTerminal(out) {
		return nil
	}
	return NewMarkdownRenderer()
}

// NewMarkdownRenderer renders markdown unconditionally. Falls back to the raw text when
// glamour cannot be initialized.
func NewMarkdownRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown + "\n", nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
