package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// Width wraps output; zero keeps glamour's default.
func NewRenderer(width int) func(string) (string, error) {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
