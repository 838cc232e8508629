package main

import (
	"encoding/json"
	"fmt"

	"kirbymcp/internal/install"
	"kirbymcp/internal/ui"

	"github.com/spf13/cobra"
)

func newInstallCmd(a *app) *cobra.Command {
	var (
		opts   install.Options
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the mcp:* helper commands into site/commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := a.projectRoot()
			if err != nil {
				return err
			}

			report, err := install.Install(root, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			verb := "installed"
			if report.DryRun {
				verb = "would install"
			}
			for _, f := range report.Installed {
				fmt.Fprintln(out, ui.SuccessStyle.Render(verb), f)
			}
			for _, f := range report.Skipped {
				fmt.Fprintln(out, ui.WarningStyle.Render("skipped"), f, ui.HelpStyle.Render("(exists, use --force)"))
			}
			fmt.Fprintln(out, ui.SubtitleStyle.Render("target: "+report.Target))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "overwrite existing helper files")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "show what would be written")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the install report as JSON")
	return cmd
}
