package main

import "github.com/charmbracelet/glamour"

// colorizeMarkdown renders markdown through glamour's terminal renderer,
// used only for colored_output to a TTY (spec.md §6's colored_output key);
// file and --json output bypass this to keep P1/P2 byte-for-byte.
func colorizeMarkdown(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}
