package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"kirbymcp/internal/kirby"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"no width", "a b c", 0, "a b c"},
		{"short line", "hello", 20, "hello"},
		{"wraps words", "alpha beta gamma", 10, "alpha beta\ngamma"},
		{"keeps blank lines", "one\n\ntwo", 10, "one\n\ntwo"},
		{"trims trailing space", "one   \ntwo", 10, "one\ntwo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WrapText(tt.text, tt.width); got != tt.want {
				t.Errorf("WrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestLayoutContentWidth(t *testing.T) {
	tests := []struct {
		layout Layout
		want   int
	}{
		{Layout{}, 100},
		{Layout{Width: 60, MarginX: 2}, 56},
		{Layout{Width: 300}, 100},
		{Layout{Width: 300, MaxWidth: 120}, 120},
		{Layout{Width: 20}, 40},
	}

	for _, tt := range tests {
		if got := tt.layout.ContentWidth(); got != tt.want {
			t.Errorf("%+v.ContentWidth() = %d, want %d", tt.layout, got, tt.want)
		}
	}
}

func TestLayoutRender(t *testing.T) {
	out := Layout{
		Title:    "kirby-mcp",
		Subtitle: "/srv/site",
		HelpText: "run with --verbose for details",
		Err:      errors.New("boom"),
		MarginX:  2,
	}.Render("body")

	for _, want := range []string{"kirby-mcp", "/srv/site", "body", "Error: boom", "--verbose"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q in %q", want, out)
		}
	}
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line != "" && !strings.HasPrefix(line, "  ") {
			t.Errorf("line %q is not indented", line)
		}
	}
}

func TestIndent(t *testing.T) {
	if got := Indent("a\nb", 2); got != "  a\n  b" {
		t.Errorf("Indent() = %q", got)
	}
	if got := Indent("a", 0); got != "a" {
		t.Errorf("Indent() with zero = %q", got)
	}
}

func TestCatalogMarkdown(t *testing.T) {
	md := CatalogMarkdown(kirby.ParseHelp(`Kirby CLI 5.2.1
Core commands:
- kirby version
- kirby clear:cache
My Plugin commands:
- kirby plugin:sync
`))

	for _, want := range []string{
		"# Kirby CLI 5.2.1",
		"## Core",
		"## My Plugin",
		"- `clear:cache`\n- `version`",
		"3 commands in total.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("CatalogMarkdown() missing %q in:\n%s", want, md)
		}
	}

	empty := CatalogMarkdown(kirby.ParseHelp(""))
	if !strings.Contains(empty, "_No commands found._") {
		t.Errorf("expected empty marker, got %q", empty)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Title\n\n- `make:blueprint`\n", "notty", 60)
	if err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}
	if !strings.Contains(out, "make:blueprint") {
		t.Errorf("expected command in output, got %q", out)
	}
}

func TestDetectGlamourStyle(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "light")
	if got := DetectGlamourStyle(&bytes.Buffer{}, 0); got != "light" {
		t.Errorf("DetectGlamourStyle() = %q, want light", got)
	}

	t.Setenv("GLAMOUR_STYLE", "")
	if got := DetectGlamourStyle(&bytes.Buffer{}, 0); got != "notty" {
		t.Errorf("DetectGlamourStyle() for a buffer = %q, want notty", got)
	}
}
