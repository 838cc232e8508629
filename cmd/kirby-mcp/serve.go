package main

import (
	"kirbymcp/internal/mcp"

	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools on stdin/stdout",
		Long: "Start the MCP server. stdout carries JSON-RPC, so logs go to stderr\n" +
			"(with --verbose) or to the debug log file when DEBUG is set.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			srv, err := mcp.NewServer(cfg, a.logger)
			if err != nil {
				return err
			}
			return srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
