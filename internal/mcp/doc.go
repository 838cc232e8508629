// Package mcp exposes the Kirby CLI bridge as Model Context Protocol tools.
//
// The server speaks JSON-RPC 2.0 over stdin/stdout using the mcp-go library
// (github.com/mark3labs/mcp-go). Every tool call goes through the project's
// CLI policy before anything is executed.
//
// # Tools
//
//   - kirby_cli_commands: the command catalog from `kirby help`, cached per binary
//   - kirby_run_cli_command: runs one command with arguments, allowWrite and timeout
//   - kirby_info: CLI version and project roots, fetched concurrently
//   - kirby_render_page: renders a page through the installed mcp:render helper
//   - kirby_install_commands: installs the helper commands into site/commands
//
// # Errors
//
// Policy denials, missing binaries and bad arguments are returned as tool
// results with IsError set, so the assistant sees the reason. Go errors are
// reserved for failures of the server itself.
//
// # Usage
//
// The server is normally started by an MCP client as a subprocess:
//
//	kirby-mcp serve --root /path/to/project
//
// Logs never go to stdout; see internal/logging.
package mcp
