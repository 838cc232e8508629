package ui

import (
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// Layout arranges a titled block of CLI output.
type Layout struct {
	Title    string
	Subtitle string
	HelpText string
	Err      error
	MarginX  int
	MaxWidth int

	// Width is the terminal width; zero means unknown.
	Width int
}

// Render the complete layout with content
func (l Layout) Render(content string) string {
	sections := []string{}
	width := l.ContentWidth()

	if l.Title != "" {
		sections = append(sections, TitleStyle.Render(WrapText(l.Title, width)))
	}
	if l.Subtitle != "" {
		sections = append(sections, SubtitleStyle.Render(WrapText(l.Subtitle, width)))
	}
	if content != "" {
		sections = append(sections, NormalTextStyle.Render(content))
	}
	if l.Err != nil {
		sections = append(sections, ErrorStyle.Render(WrapText("Error: "+l.Err.Error(), width)))
	}
	if l.HelpText != "" {
		sections = append(sections, HelpStyle.Render(WrapText(l.HelpText, width)))
	}

	joined := strings.Join(sections, "\n\n")
	if l.MarginX > 0 {
		joined = indent.String(joined, uint(l.MarginX))
	}
	return joined + "\n"
}

// ContentWidth is the usable width after margins, clamped to [40, MaxWidth].
func (l Layout) ContentWidth() int {
	maxWidth := l.MaxWidth
	if maxWidth == 0 {
		maxWidth = 100
	}
	if l.Width <= 0 {
		return maxWidth
	}

	available := l.Width - l.MarginX*2
	if available > maxWidth {
		return maxWidth
	}
	if available < 40 {
		return 40 // Minimum readable width
	}
	return available
}

// WrapText word-wraps every line of text to width, keeping manual line
// breaks and blank lines.
func WrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			lines[i] = ""
			continue
		}
		lines[i] = wordwrap.String(line, width)
	}
	return strings.Join(lines, "\n")
}

// Indent prefixes every line of text with n spaces.
func Indent(text string, n int) string {
	if n <= 0 || text == "" {
		return text
	}
	return indent.String(text, uint(n))
}
