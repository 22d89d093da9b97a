package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour, styled
// for the session theme. Rendering falls back to the raw markdown when the
// renderer cannot be built.
func NewRenderer(theme domain.Theme, width int) func(string) (string, error) {
	style := "light"
	if theme == domain.ThemeDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	return r.Render
}

// ToolMarkdown describes a tool for the detail screen.
func ToolMarkdown(t domain.Tool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Name)
	if t.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", t.Description)
	}
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Category | %s |\n", t.Category)
	fmt.Fprintf(&b, "| Rating | %.1f / 5 |\n", t.Rating)
	fmt.Fprintf(&b, "| Pricing | %s |\n", t.Label())
	fmt.Fprintf(&b, "| Status | %s |\n", t.Status)
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, "\n_%s_\n", strings.Join(t.Tags, " · "))
	}
	return b.String()
}
