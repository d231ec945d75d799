// Package ui renders catalog listings and document previews for the CLI
// subcommands. All output is plain strings so it stays testable; the
// caller decides where to print.
package ui

import (
	"fmt"
	"strings"

	"kitref/internal/catalog"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Centralized Lip Gloss styles. All colors are specified using hex codes.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff5fd2")).
			MarginBottom(1).
			PaddingLeft(1)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5fd7ff")).
			PaddingLeft(1)

	ItemStyle = lipgloss.NewStyle().
			PaddingLeft(3)

	DescriptionStyle = lipgloss.NewStyle().
				Faint(true).
				Foreground(lipgloss.Color("#a8a8a8"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff005f")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff5f")).
			Bold(true)
)

// DefaultPreviewWidth bounds markdown rendering when the terminal width
// is unknown.
const DefaultPreviewWidth = 100

// Listing holds the three catalog sections for display.
type Listing struct {
	Components []catalog.Entry
	Patterns   []catalog.Entry
	Libraries  []catalog.Entry
}

// RenderListing formats a full catalog listing with section headers,
// item names, and dimmed descriptions.
func RenderListing(l Listing) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Catalog contents"))
	b.WriteString("\n")

	renderSection(&b, fmt.Sprintf("Components (%d)", len(l.Components)), l.Components, false)
	renderSection(&b, fmt.Sprintf("Patterns (%d)", len(l.Patterns)), l.Patterns, true)
	renderSection(&b, fmt.Sprintf("Libraries (%d)", len(l.Libraries)), l.Libraries, false)

	return b.String()
}

func renderSection(b *strings.Builder, header string, entries []catalog.Entry, withCategory bool) {
	b.WriteString(SectionStyle.Render(header))
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString(ItemStyle.Render(DescriptionStyle.Render("(none)")))
		b.WriteString("\n")
		return
	}

	for _, e := range entries {
		name := e.Name
		if withCategory && e.Category != "" {
			name = e.Category + "/" + e.Name
		}
		line := name
		if e.Description != "" {
			line += "  " + DescriptionStyle.Render(e.Description)
		}
		b.WriteString(ItemStyle.Render(line))
		b.WriteString("\n")
	}
}

// RenderMarkdown renders markdown content for the terminal. Rendering
// failures fall back to the raw content rather than hiding it.
func RenderMarkdown(content string, width int) string {
	if width <= 0 {
		width = DefaultPreviewWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// RenderError formats an error message for the terminal.
func RenderError(msg string) string {
	return ErrorStyle.Render("Error: " + msg)
}

// RenderSuccess formats a success message for the terminal.
func RenderSuccess(msg string) string {
	return SuccessStyle.Render(msg)
}
