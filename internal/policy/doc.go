// Package policy decides which kirby CLI commands the bridge is allowed to run.
//
// A Policy holds three ordered pattern lists:
//   - deny: any match rejects the command outright
//   - allow: read-only commands that may always run
//   - allowWrite: commands that mutate the project and only run when the caller
//     explicitly asks for write access
//
// Each list is the built-in default set followed by the project's own entries
// from .kirby-mcp/mcp.json. Patterns are either literal command names
// ("license:info") or globs where "*" matches any run of characters
// ("make:*"). Matching is case-sensitive and always covers the full command
// string.
//
// # Evaluation
//
// Deny is checked first and always wins. Otherwise the first allow match
// permits the command. Failing that, an allowWrite match permits it only when
// the caller passed allowWrite=true; Decision.RequiresAllowWrite reports the
// case where that flag is the only thing missing.
//
// Patterns are compiled once in New. A Policy is immutable afterwards and may
// be shared between goroutines.
package policy
