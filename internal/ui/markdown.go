package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"kirbymcp/internal/kirby"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// DetectGlamourStyle picks a glamour style for w. GLAMOUR_STYLE wins when set
// to anything but "auto"; writers that are not terminals get "notty";
// otherwise the terminal background decides between "dark" and "light".
// Terminals that do not answer within timeout get "dark".
func DetectGlamourStyle(w io.Writer, timeout time.Duration) string {
	defaultStyle := "dark"

	style := os.Getenv("GLAMOUR_STYLE")
	if style != "" && style != "auto" {
		return style
	}

	out := termenv.NewOutput(w)
	if out.Profile == termenv.Ascii {
		return "notty"
	}

	ch := make(chan string, 1)
	go func() {
		if out.HasDarkBackground() {
			ch <- "dark"
			return
		}
		ch <- "light"
	}()

	select {
	case s := <-ch:
		return s
	case <-time.After(timeout):
		return defaultStyle
	}
}

// RenderMarkdown renders md for a terminal with the given glamour style.
func RenderMarkdown(md, style string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// CatalogMarkdown describes a parsed command catalog as Markdown, one
// section per heading.
func CatalogMarkdown(help kirby.ParsedHelp) string {
	var b strings.Builder

	b.WriteString("# Kirby CLI")
	if help.CLIVersion != "" {
		b.WriteString(" " + help.CLIVersion)
	}
	b.WriteString("\n\n")

	if len(help.Commands) == 0 {
		b.WriteString("_No commands found._\n")
		return b.String()
	}

	for _, key := range help.SectionKeys() {
		commands := help.Sections[key]
		if len(commands) == 0 {
			continue
		}

		fmt.Fprintf(&b, "## %s\n\n", sectionTitle(key))
		sorted := append([]string(nil), commands...)
		sort.Strings(sorted)
		for _, c := range sorted {
			fmt.Fprintf(&b, "- `%s`\n", c)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%d commands in total.\n", len(help.Commands))
	return b.String()
}

func sectionTitle(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
