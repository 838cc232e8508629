package policy

import (
	"fmt"
	"strings"
)

// DefaultAllow lists the read-only commands every project may run.
var DefaultAllow = []string{
	"help",
	"version",
	"roots",
	"security",
	"license:info",
	"uuid:duplicates",
	"mcp:render",
	"mcp:roots",
}

// DefaultAllowWrite lists the command families that change project state
// (scaffolding and cache clearing).
var DefaultAllowWrite = []string{
	"make:*",
	"clear:*",
}

// Config carries the project-supplied pattern lists. They are appended to the
// built-in defaults.
type Config struct {
	Deny       []string `yaml:"deny" json:"deny"`
	Allow      []string `yaml:"allow" json:"allow"`
	AllowWrite []string `yaml:"allowWrite" json:"allowWrite"`
}

// Decision is the outcome of evaluating one command. An empty Matched* field
// means no pattern of that list matched.
type Decision struct {
	Command           string `json:"command"`
	Allowed           bool   `json:"allowed"`
	MatchedDeny       string `json:"matchedDeny,omitempty"`
	MatchedAllow      string `json:"matchedAllow,omitempty"`
	MatchedAllowWrite string `json:"matchedAllowWrite,omitempty"`
	WriteRequested    bool   `json:"writeRequested"`
}

// Denied reports whether a deny pattern rejected the command.
func (d Decision) Denied() bool {
	return d.MatchedDeny != ""
}

// RequiresAllowWrite is true when only an allowWrite pattern matched and the
// caller did not ask for write access.
func (d Decision) RequiresAllowWrite() bool {
	return !d.Allowed && !d.Denied() && d.MatchedAllow == "" &&
		d.MatchedAllowWrite != "" && !d.WriteRequested
}

// Reason explains the decision in one sentence.
func (d Decision) Reason() string {
	switch {
	case d.Allowed && d.MatchedAllow != "":
		return fmt.Sprintf("command %q is allowed by pattern %q", d.Command, d.MatchedAllow)
	case d.Allowed:
		return fmt.Sprintf("command %q is allowed by allowWrite pattern %q", d.Command, d.MatchedAllowWrite)
	case strings.TrimSpace(d.Command) == "":
		return "command must not be empty"
	case d.Denied():
		return fmt.Sprintf("command %q is blocked by deny pattern %q", d.Command, d.MatchedDeny)
	case d.RequiresAllowWrite():
		return fmt.Sprintf("command %q can modify the project (matched allowWrite pattern %q); allowWrite is required",
			d.Command, d.MatchedAllowWrite)
	default:
		return fmt.Sprintf("command %q is not in the allow lists", d.Command)
	}
}

// Policy evaluates commands against compiled deny/allow/allowWrite lists.
type Policy struct {
	deny       []Pattern
	allow      []Pattern
	allowWrite []Pattern
}

// New builds a Policy from the defaults plus cfg.
func New(cfg Config) *Policy {
	return &Policy{
		deny:       compileList(cfg.Deny),
		allow:      compileList(DefaultAllow, cfg.Allow),
		allowWrite: compileList(DefaultAllowWrite, cfg.AllowWrite),
	}
}

// Evaluate decides whether command may run. Deny is checked first and
// short-circuits; allowWrite patterns are only consulted when no allow
// pattern matched.
func (p *Policy) Evaluate(command string, allowWrite bool) Decision {
	decision := Decision{Command: command, WriteRequested: allowWrite}

	if match, ok := firstMatch(p.deny, command); ok {
		decision.MatchedDeny = match
		return decision
	}

	if match, ok := firstMatch(p.allow, command); ok {
		decision.MatchedAllow = match
		decision.Allowed = true
		return decision
	}

	if match, ok := firstMatch(p.allowWrite, command); ok {
		decision.MatchedAllowWrite = match
		decision.Allowed = allowWrite
	}

	return decision
}

// Deny returns the effective deny patterns in evaluation order.
func (p *Policy) Deny() []string { return rawPatterns(p.deny) }

// Allow returns the effective allow patterns in evaluation order.
func (p *Policy) Allow() []string { return rawPatterns(p.allow) }

// AllowWrite returns the effective allowWrite patterns in evaluation order.
func (p *Policy) AllowWrite() []string { return rawPatterns(p.allowWrite) }

func rawPatterns(patterns []Pattern) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = p.raw
	}
	return out
}
