package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"kirbymcp/internal/kirby"
	"kirbymcp/internal/ui"

	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		allowWrite bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "run <command> [arguments...]",
		Short: "Run one kirby CLI command through the policy",
		Example: "  kirby-mcp run version\n" +
			"  kirby-mcp run --allow-write make:blueprint article",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			b, err := a.bridge(cfg)
			if err != nil {
				return err
			}

			outcome, err := b.Execute(cmd.Context(), kirby.Request{
				Command:    args[0],
				Args:       args[1:],
				AllowWrite: allowWrite,
			})
			if err != nil {
				return err
			}
			if !outcome.Ran() {
				return errors.New(outcome.Decision.Reason())
			}

			result := outcome.Result
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(outcome); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
				fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
				fmt.Fprintln(cmd.ErrOrStderr(), statusLine(args[0], *result))
			}

			if !result.OK() {
				return &exitError{code: result.ExitCode}
			}
			return nil
		},
	}

	// Everything after the kirby command belongs to it, flags included.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVarP(&allowWrite, "allow-write", "w", false, "permit commands that modify the project")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full outcome as JSON")
	return cmd
}

func statusLine(command string, r kirby.Result) string {
	switch {
	case r.TimedOut:
		return ui.WarningStyle.Render(fmt.Sprintf("✗ kirby %s timed out (exit %d)", command, r.ExitCode))
	case r.OK():
		return ui.SuccessStyle.Render("✓ kirby " + command)
	default:
		detail := ""
		if first, _, _ := strings.Cut(strings.TrimSpace(r.Stderr), "\n"); first != "" {
			detail = ": " + first
		}
		return ui.ErrorStyle.Render(fmt.Sprintf("✗ kirby %s exited with code %d%s", command, r.ExitCode, detail))
	}
}
