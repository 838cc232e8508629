package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kirbymcp/internal/editors"
	"kirbymcp/internal/ui"

	"github.com/spf13/cobra"
)

func newRegisterCmd(a *app) *cobra.Command {
	var (
		force    bool
		dryRun   bool
		list     bool
		absolute bool
		pinRoot  bool
	)

	cmd := &cobra.Command{
		Use:   "register [editor...]",
		Short: "Add kirby-mcp to the project's editor MCP configs",
		Long: "Write a \"" + editors.ServerName + "\" server entry into each editor's project MCP config.\n" +
			"Without arguments every known editor is registered. Use --list to see them.",
		Example: "  kirby-mcp register claude cursor\n" +
			"  kirby-mcp register --absolute --pin-root vscode",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				for _, c := range editors.GetAllEditorMCPConfigs() {
					fmt.Fprintf(out, "%s  %s\n%s\n",
						ui.PatternStyle.Render(fmt.Sprintf("%-8s", c.ID)),
						ui.TitleStyle.Render(c.Name),
						ui.HelpStyle.Render(ui.Indent(ui.WrapText(c.ConfigPath+": "+c.Explanation, 72), 4)))
				}
				return nil
			}

			targets, err := selectEditors(args)
			if err != nil {
				return err
			}
			root, err := a.projectRoot()
			if err != nil {
				return err
			}

			launch := editors.DefaultLaunch()
			if absolute {
				exe, err := os.Executable()
				if err != nil {
					return fmt.Errorf("cannot locate kirby-mcp executable: %w", err)
				}
				if resolved, err := filepath.EvalSymlinks(exe); err == nil {
					exe = resolved
				}
				launch.Command = exe
			}
			if pinRoot {
				launch.Args = append(launch.Args, "--root", root)
			}

			for _, c := range targets {
				result, err := c.Register(root, launch, force, dryRun)
				if err != nil {
					return err
				}

				rel, _ := filepath.Rel(root, result.Path)
				switch {
				case result.Written && dryRun:
					fmt.Fprintln(out, ui.SuccessStyle.Render("would write"), rel)
				case result.Written:
					fmt.Fprintln(out, ui.SuccessStyle.Render("registered"), c.Name, ui.HelpStyle.Render(rel))
				default:
					fmt.Fprintln(out, ui.WarningStyle.Render("skipped"), c.Name,
						ui.HelpStyle.Render("("+rel+" already has it, use --force)"))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing kirby entry")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would be written")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list the known editors")
	cmd.Flags().BoolVar(&absolute, "absolute", false, "launch this executable by absolute path instead of from PATH")
	cmd.Flags().BoolVar(&pinRoot, "pin-root", false, "pass --root with the project path to the server")
	return cmd
}

func selectEditors(ids []string) ([]editors.EditorMCPConfig, error) {
	if len(ids) == 0 {
		return editors.GetAllEditorMCPConfigs(), nil
	}

	var selected []editors.EditorMCPConfig
	var unknown []string
	for _, id := range ids {
		c, ok := editors.Lookup(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		selected = append(selected, c)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown editor %s (see --list)", strings.Join(unknown, ", "))
	}
	return selected, nil
}
