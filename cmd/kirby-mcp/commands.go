package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"kirbymcp/internal/kirby"
	"kirbymcp/internal/ui"

	"github.com/spf13/cobra"
)

const glamourDetectTimeout = 50 * time.Millisecond

func newCommandsCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		plain  bool
	)

	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List the commands the project's kirby CLI provides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			b, err := a.bridge(cfg)
			if err != nil {
				return err
			}

			outcome, err := b.Execute(cmd.Context(), kirby.Request{Command: kirby.CatalogCommand})
			if err != nil {
				return err
			}
			if !outcome.Ran() {
				return errors.New(outcome.Decision.Reason())
			}
			if !outcome.Result.OK() {
				fmt.Fprint(cmd.ErrOrStderr(), outcome.Result.Stderr)
				return &exitError{code: outcome.Result.ExitCode}
			}

			help := kirby.ParseHelp(outcome.Result.Stdout)
			if outcome.Help != nil {
				help = *outcome.Help
			}

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(help)
			case plain:
				fmt.Fprintln(out, strings.Join(help.Commands, "\n"))
				return nil
			}

			style := ui.DetectGlamourStyle(out, glamourDetectTimeout)
			rendered, err := ui.RenderMarkdown(ui.CatalogMarkdown(help), style, 0)
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the parsed catalog as JSON")
	cmd.Flags().BoolVar(&plain, "plain", false, "print one command per line")
	cmd.MarkFlagsMutuallyExclusive("json", "plain")
	return cmd
}
