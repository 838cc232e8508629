package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"kirbymcp/internal/config"
	"kirbymcp/internal/core"
	"kirbymcp/internal/policy"
	"kirbymcp/internal/ui"

	"github.com/spf13/cobra"
)

func newPolicyCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Show or edit the command policy",
		Long: "Without a subcommand, print the effective deny, allow and allowWrite lists\n" +
			"(built-in defaults, user config and " + config.ProjectConfigDir + "/" + config.ProjectConfigFile + ").",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			p, err := policyFor(cfg)
			if err != nil {
				return err
			}

			lists := policy.Config{Deny: p.Deny(), Allow: p.Allow(), AllowWrite: p.AllowWrite()}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(lists)
			}
			printLists(cmd.OutOrStdout(), cfg.ProjectRoot, lists)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the lists as JSON")

	cmd.AddCommand(
		newPolicyCheckCmd(a),
		newPolicyAddCmd(a, "allow", "Add read-only patterns to the project allow list",
			func(c *policy.Config) *[]string { return &c.Allow }),
		newPolicyAddCmd(a, "allow-write", "Add patterns that may run with --allow-write",
			func(c *policy.Config) *[]string { return &c.AllowWrite }),
		newPolicyAddCmd(a, "deny", "Add patterns that are always blocked",
			func(c *policy.Config) *[]string { return &c.Deny }),
		newPolicyInitCmd(a),
		newPolicyEditCmd(a),
	)
	return cmd
}

func newPolicyCheckCmd(a *app) *cobra.Command {
	var allowWrite bool

	cmd := &cobra.Command{
		Use:   "check <command>",
		Short: "Explain whether a command would be allowed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.policy()
			if err != nil {
				return err
			}

			d := p.Evaluate(strings.TrimSpace(args[0]), allowWrite)
			if d.Allowed {
				fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render("allowed:"), d.Reason())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.ErrorStyle.Render("blocked:"), d.Reason())
			return &exitError{code: 1}
		},
	}
	cmd.Flags().BoolVarP(&allowWrite, "allow-write", "w", false, "evaluate as if write access was requested")
	return cmd
}

func newPolicyAddCmd(a *app, use, short string, list func(*policy.Config) *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <pattern>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := a.projectRoot()
			if err != nil {
				return err
			}
			project, err := config.LoadProject(root)
			if err != nil {
				return err
			}

			target := list(&project.CLI)
			var added []string
			for _, raw := range args {
				pattern := strings.TrimSpace(raw)
				if pattern == "" || slices.Contains(*target, pattern) {
					continue
				}
				*target = append(*target, pattern)
				added = append(added, pattern)
			}

			if len(added) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.HelpStyle.Render("nothing to add"))
				return nil
			}
			if err := config.SaveProject(root, project); err != nil {
				return err
			}
			a.logger.Info("Updated project policy", "list", use, "patterns", added)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s → %s\n",
				ui.SuccessStyle.Render("added"),
				ui.PatternStyle.Render(strings.Join(added, " ")),
				config.ProjectConfigPath(root))
			return nil
		},
	}
}

func newPolicyInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty " + config.ProjectConfigDir + "/" + config.ProjectConfigFile,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := a.projectRoot()
			if err != nil {
				return err
			}

			path := config.ProjectConfigPath(root)
			if !force && fileExists(path) {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.SaveProject(root, config.ProjectConfig{}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render("created"), path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func newPolicyEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open " + config.ProjectConfigDir + "/" + config.ProjectConfigFile + " in $EDITOR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := a.projectRoot()
			if err != nil {
				return err
			}

			path := config.ProjectConfigPath(root)
			if !fileExists(path) {
				if err := config.SaveProject(root, config.ProjectConfig{}); err != nil {
					return err
				}
			}

			err = core.EditFile(cmd.Context(), path, core.Streams{
				In:  cmd.InOrStdin(),
				Out: cmd.OutOrStdout(),
				Err: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			// Catch syntax errors now rather than on the next tool call.
			project, err := config.LoadProject(root)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d deny, %d allow, %d allowWrite\n",
				ui.SuccessStyle.Render("saved"),
				len(project.CLI.Deny), len(project.CLI.Allow), len(project.CLI.AllowWrite))
			return nil
		},
	}
}

func (a *app) policy() (*policy.Policy, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	return policyFor(cfg)
}

func policyFor(cfg *config.Config) (*policy.Policy, error) {
	source, err := cfg.PolicySource()
	if err != nil {
		return nil, err
	}
	return source.Policy()
}

func (a *app) projectRoot() (string, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.ProjectRoot, nil
}

func printLists(w io.Writer, root string, lists policy.Config) {
	var b strings.Builder
	section := func(title string, patterns []string) {
		b.WriteString(ui.TitleStyle.Render(title) + "\n")
		if len(patterns) == 0 {
			b.WriteString("  " + ui.HelpStyle.Render("(none)") + "\n")
		}
		for _, p := range patterns {
			b.WriteString("  " + ui.PatternStyle.Render(p) + "\n")
		}
	}

	section("deny", lists.Deny)
	section("allow", lists.Allow)
	section("allowWrite", lists.AllowWrite)

	layout := ui.Layout{
		Title:    "Command policy",
		Subtitle: config.ProjectConfigPath(root),
		HelpText: "deny wins over allow; allowWrite patterns run only with --allow-write. " +
			"Run `kirby-mcp policy check <command>` to see why a command is blocked.",
	}
	fmt.Fprint(w, layout.Render(ui.PaneStyle.Render(strings.TrimRight(b.String(), "\n"))))
}
