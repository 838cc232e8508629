package kirby

import (
	"context"
	"strings"
	"time"

	"kirbymcp/internal/logging"
	"kirbymcp/internal/policy"
)

// CatalogCommand lists the available commands when called without arguments.
const CatalogCommand = "help"

// Request describes one command the assistant wants to run.
type Request struct {
	Command    string
	Args       []string
	AllowWrite bool
	Timeout    time.Duration
	Env        map[string]string
}

// Outcome is everything the caller needs after a bridge call. Result is nil
// when the policy rejected the command.
type Outcome struct {
	Decision policy.Decision `json:"decision"`
	Result   *Result         `json:"result,omitempty"`
	Payload  any             `json:"payload,omitempty"`
	Help     *ParsedHelp     `json:"help,omitempty"`

	// PayloadErr is set when the output carried a marker pair with a body
	// that did not decode.
	PayloadErr error `json:"-"`
}

// Ran reports whether the command passed the policy and was executed.
func (o Outcome) Ran() bool {
	return o.Result != nil
}

// Bridge gates, executes and post-processes kirby CLI commands for one project.
type Bridge struct {
	ProjectRoot string
	Policy      *policy.Policy
	Runner      *Runner

	logger *logging.AppLogger
}

// NewBridge wires a policy and runner to projectRoot.
func NewBridge(projectRoot string, p *policy.Policy, runner *Runner, logger *logging.AppLogger) *Bridge {
	if logger == nil {
		logger = logging.GetDefault()
	}
	if runner == nil {
		runner = NewRunner(logger)
	}
	if p == nil {
		p = policy.New(policy.Config{})
	}
	return &Bridge{
		ProjectRoot: projectRoot,
		Policy:      p,
		Runner:      runner,
		logger:      logger,
	}
}

// Execute evaluates req against the policy and, when allowed, runs it. The
// structured payload is taken from the output markers; for the catalog
// command without a payload the help text is parsed instead.
//
// The returned error is non-nil only when the binary cannot be found.
func (b *Bridge) Execute(ctx context.Context, req Request) (Outcome, error) {
	command := strings.TrimSpace(req.Command)
	outcome := Outcome{Decision: b.Policy.Evaluate(command, req.AllowWrite)}

	if command == "" || !outcome.Decision.Allowed {
		b.logger.Info("kirby command rejected by policy",
			"command", command,
			"matchedDeny", outcome.Decision.MatchedDeny,
			"requiresAllowWrite", outcome.Decision.RequiresAllowWrite(),
		)
		outcome.Decision.Allowed = false
		return outcome, nil
	}

	args := append([]string{command}, req.Args...)
	result, err := b.Runner.Run(ctx, b.ProjectRoot, args, req.Env, req.Timeout)
	if err != nil {
		return outcome, err
	}
	outcome.Result = &result

	payload, found, perr := ExtractJSON(result.Stdout)
	switch {
	case perr != nil:
		outcome.PayloadErr = perr
		b.logger.Warn("kirby command printed a corrupt payload", "command", command, "error", perr)
	case found:
		outcome.Payload = payload
	case IsCatalogCommand(command, req.Args):
		help := ParseHelp(result.Stdout)
		outcome.Help = &help
	}

	return outcome, nil
}

// IsCatalogCommand reports whether command/args list the available commands.
func IsCatalogCommand(command string, args []string) bool {
	return command == CatalogCommand && len(args) == 0
}
