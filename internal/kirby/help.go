package kirby

import (
	"regexp"
	"slices"
	"sort"
	"strings"
)

// UnknownSection collects commands listed before any section header.
const UnknownSection = "unknown"

var (
	versionLine = regexp.MustCompile(`(?i)\bkirby\s+cli\s+v?(\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?)`)
	sectionLine = regexp.MustCompile(`^([A-Za-z0-9 _-]+) commands:$`)
	commandLine = regexp.MustCompile(`(?i)^-\s+kirby\s+(.+)$`)
)

// ParsedHelp is the command catalog recovered from `kirby help` output.
type ParsedHelp struct {
	CLIVersion string              `json:"cliVersion,omitempty"`
	Sections   map[string][]string `json:"sections"`
	Commands   []string            `json:"commands"`
}

// SectionKeys returns the section names in sorted order.
func (p ParsedHelp) SectionKeys() []string {
	keys := make([]string, 0, len(p.Sections))
	for key := range p.Sections {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ParseHelp builds a ParsedHelp from plain help text.
//
// The first "Kirby CLI x.y.z" line (any case) sets CLIVersion. A line of the
// form "<Label> commands:" opens a section keyed by the lowercased label with
// spaces turned into underscores; the header match is case-sensitive. Lines
// like "- kirby make:blueprint" add the command to the current section, or to
// "unknown" before the first header. Sections and the flat command list are
// deduplicated and sorted, so line order in the input does not matter.
func ParseHelp(stdout string) ParsedHelp {
	parsed := ParsedHelp{
		Sections: make(map[string][]string),
		Commands: []string{},
	}

	text := strings.ReplaceAll(stdout, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	current := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if parsed.CLIVersion == "" {
			if m := versionLine.FindStringSubmatch(line); m != nil {
				parsed.CLIVersion = m[1]
				continue
			}
		}

		if m := sectionLine.FindStringSubmatch(line); m != nil {
			current = sectionKey(m[1])
			if _, ok := parsed.Sections[current]; !ok {
				parsed.Sections[current] = []string{}
			}
			continue
		}

		if m := commandLine.FindStringSubmatch(line); m != nil {
			command := strings.TrimSpace(m[1])
			if command == "" {
				continue
			}
			section := current
			if section == "" {
				section = UnknownSection
			}
			parsed.Sections[section] = append(parsed.Sections[section], command)
			parsed.Commands = append(parsed.Commands, command)
		}
	}

	for key, commands := range parsed.Sections {
		parsed.Sections[key] = sortedUnique(commands)
	}
	parsed.Commands = sortedUnique(parsed.Commands)

	return parsed
}

func sectionKey(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
}

func sortedUnique(values []string) []string {
	out := slices.Clone(values)
	sort.Strings(out)
	return slices.Compact(out)
}
