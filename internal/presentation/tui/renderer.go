package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders replies as markdown using
// glamour, wrapped to width columns (0 keeps glamour's default).
func NewRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		out, err := r.Render(markdown)
		if err != nil {
			return "", err
		}
		// glamour pads output with blank lines; the REPL adds its own.
		return strings.Trim(out, "\n"), nil
	}, nil
}
