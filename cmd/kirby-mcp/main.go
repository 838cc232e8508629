// Package main is the entry point for the kirby-mcp CLI.
//
// kirby-mcp serves a Kirby CMS project's command-line tool to AI assistants
// over the Model Context Protocol, and exposes the same bridge to humans:
//
//	kirby-mcp serve              # MCP server on stdin/stdout
//	kirby-mcp run help           # run a command through the policy
//	kirby-mcp commands           # rendered command catalog
//	kirby-mcp policy check make:blueprint --allow-write
//	kirby-mcp install            # helper commands into site/commands
//	kirby-mcp register cursor    # add the server to .cursor/mcp.json
//
// Every subcommand accepts --root to pick the project; otherwise
// KIRBY_MCP_PROJECT_ROOT, the user config and the working directory are
// consulted in that order.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"kirbymcp/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// exitError carries a process exit code without printing anything extra.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	fmt.Fprintln(stderr, ui.ErrorStyle.Render("Error:"), err)
	return 1
}
