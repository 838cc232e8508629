package main

import (
	"kirbymcp/internal/config"
	"kirbymcp/internal/kirby"
	"kirbymcp/internal/logging"
	"kirbymcp/internal/mcp"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// app holds the persistent flags shared by every subcommand.
type app struct {
	root    string
	verbose bool
	timeout int

	logger *logging.AppLogger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "kirby-mcp",
		Short: "MCP server and command bridge for Kirby CMS projects",
		Long: "kirby-mcp lets AI assistants run a Kirby project's CLI through an allow/deny policy.\n" +
			"Use `serve` from an MCP client; the other commands run the same bridge by hand.",
		Version:       mcp.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.verbose {
				a.logger = logging.NewWriterLogger(cmd.ErrOrStderr(), log.DebugLevel)
			} else {
				a.logger = logging.GetDefault()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&a.root, "root", "r", "", "Kirby project root (default: working directory)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")
	cmd.PersistentFlags().IntVar(&a.timeout, "timeout", 0, "per-command timeout in seconds (default from config)")

	cmd.AddCommand(
		newServeCmd(a),
		newRunCmd(a),
		newCommandsCmd(a),
		newPolicyCmd(a),
		newInstallCmd(a),
		newRegisterCmd(a),
		newConfigCmd(a),
	)
	return cmd
}

func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.root)
	if err != nil {
		return nil, err
	}
	if a.timeout > 0 {
		cfg.TimeoutSeconds = a.timeout
	}
	return cfg, nil
}

func (a *app) bridge(cfg *config.Config) (*kirby.Bridge, error) {
	p, err := policyFor(cfg)
	if err != nil {
		return nil, err
	}

	runner := kirby.NewRunner(a.logger)
	runner.Timeout = cfg.Timeout()
	return kirby.NewBridge(cfg.ProjectRoot, p, runner, a.logger), nil
}
