package policy

import (
	"regexp"
	"strings"
)

type patternKind int

const (
	patternExact patternKind = iota
	patternWildcard
)

// Pattern is a compiled allow/deny entry.
type Pattern struct {
	raw  string
	kind patternKind
	re   *regexp.Regexp
}

// CompilePattern tags raw as exact or wildcard and prepares the wildcard
// expression. Every regex metacharacter except "*" is quoted; "*" becomes a
// greedy ".*" and the expression is anchored at both ends.
func CompilePattern(raw string) Pattern {
	if !strings.Contains(raw, "*") {
		return Pattern{raw: raw, kind: patternExact}
	}

	parts := strings.Split(raw, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	expr := "^" + strings.Join(parts, ".*") + "$"

	return Pattern{
		raw:  raw,
		kind: patternWildcard,
		re:   regexp.MustCompile(expr),
	}
}

// String returns the pattern as it was configured.
func (p Pattern) String() string {
	return p.raw
}

// IsWildcard reports whether the pattern contains at least one "*".
func (p Pattern) IsWildcard() bool {
	return p.kind == patternWildcard
}

// Match reports whether command matches the pattern in full.
func (p Pattern) Match(command string) bool {
	if command == p.raw {
		return true
	}
	if p.kind != patternWildcard {
		return false
	}
	return p.re.MatchString(command)
}

// compileList trims entries, drops blanks and duplicates (first occurrence
// keeps its position) and compiles what remains.
func compileList(lists ...[]string) []Pattern {
	seen := make(map[string]bool)
	var patterns []Pattern

	for _, list := range lists {
		for _, entry := range list {
			entry = strings.TrimSpace(entry)
			if entry == "" || seen[entry] {
				continue
			}
			seen[entry] = true
			patterns = append(patterns, CompilePattern(entry))
		}
	}

	return patterns
}

func firstMatch(patterns []Pattern, command string) (string, bool) {
	for _, p := range patterns {
		if p.Match(command) {
			return p.raw, true
		}
	}
	return "", false
}
