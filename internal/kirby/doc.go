// Package kirby runs the Kirby CMS command-line tool on behalf of the MCP server.
//
// The package covers the whole path from a tool request to structured data:
//
//   - ResolveBinary finds vendor/bin/kirby (or the KIRBY_MCP_KIRBY_BIN override)
//   - Runner executes it as a subprocess with a wall-clock timeout
//   - ExtractJSON pulls the marker-delimited JSON payload out of stdout
//   - ParseHelp recovers the command catalog from plain `kirby help` output
//   - Bridge ties these together behind the allow/deny policy
//
// # Failure model
//
// ErrBinaryNotFound is the only error returned for execution. Timeouts,
// nonzero exit codes, policy denials and missing payloads are all values the
// caller inspects. A Result with TimedOut set always carries exit code 124 and
// whatever output had been captured before the process was killed.
//
// # Security
//
// Arguments are passed to the process as a literal vector. Nothing is ever
// handed to a shell, so quoting or metacharacters in arguments have no effect
// beyond reaching the kirby binary verbatim.
package kirby
