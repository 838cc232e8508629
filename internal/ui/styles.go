// Package ui renders kirby-mcp output for terminals.
package ui

import "github.com/charmbracelet/lipgloss"

// Centralized Lip Gloss styles for CLI output.
// All colors are specified using hex codes.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff5fd2"))

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff005f")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffaf00")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff5f")).
			Bold(true)

	NormalTextStyle = lipgloss.NewStyle()

	HelpStyle = lipgloss.NewStyle().
			Faint(true).
			Foreground(lipgloss.Color("#a8a8a8"))

	// Pattern lists in `policy` output
	PatternStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5fd7ff"))

	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5f5fff")).
			PaddingLeft(1).
			PaddingRight(1)
)
