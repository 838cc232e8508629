package kirby

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"kirbymcp/internal/logging"
)

const (
	// DefaultTimeout bounds a single CLI invocation unless the caller overrides it.
	DefaultTimeout = 60 * time.Second

	// TimeoutExitCode is reported for processes killed at the deadline,
	// matching coreutils timeout(1).
	TimeoutExitCode = 124

	// TerminalColumns and TerminalLines pin the tool's idea of the terminal
	// size so its self-formatted output does not wrap differently per caller.
	TerminalColumns = 200
	TerminalLines   = 50

	// waitDelay caps how long Wait blocks on output pipes after the process
	// was killed, in case a grandchild still holds them open.
	waitDelay = 2 * time.Second
)

// Result is the outcome of one CLI invocation. TimedOut implies ExitCode 124.
type Result struct {
	ExitCode int    `json:"exitCode"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	TimedOut bool   `json:"timedOut"`
}

// OK reports a clean exit.
func (r Result) OK() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// Runner executes the kirby binary for a project.
type Runner struct {
	// Timeout applies when Run is called with a non-positive timeout.
	Timeout time.Duration

	// Resolve locates the binary; ResolveBinary when nil.
	Resolve func(projectRoot string) (string, bool)

	logger *logging.AppLogger
}

// NewRunner returns a Runner with the default timeout and binary discovery.
func NewRunner(logger *logging.AppLogger) *Runner {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &Runner{
		Timeout: DefaultTimeout,
		Resolve: ResolveBinary,
		logger:  logger,
	}
}

// Run executes the binary with args in projectRoot. env is added on top of
// the inherited environment; the terminal size variables always win.
//
// The only error is ErrBinaryNotFound, returned before anything is spawned.
// Exit codes, stderr output and timeouts are reported through Result. When
// ctx is cancelled or the timeout elapses the process is killed and the
// partial output is returned with TimedOut set.
func (r *Runner) Run(ctx context.Context, projectRoot string, args []string, env map[string]string, timeout time.Duration) (Result, error) {
	binary, err := r.Binary(projectRoot)
	if err != nil {
		return Result{}, err
	}

	if timeout <= 0 {
		timeout = r.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, binary, args...)
	cmd.Dir = projectRoot
	cmd.Env = commandEnv(os.Environ(), env)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err = cmd.Run()
	r.log().LogPerformance("kirby "+strings.Join(args, " "), start)

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	switch {
	case err == nil:
		result.ExitCode = 0

	case runCtx.Err() != nil:
		result.ExitCode = TimeoutExitCode
		result.TimedOut = true
		r.log().Warn("kirby command timed out", "args", args, "timeout", timeout)

	case errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil:
		// The process exited but something it spawned kept the pipes open.
		result.ExitCode = cmd.ProcessState.ExitCode()

	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			if result.ExitCode < 0 {
				result.ExitCode = 1
			}
			break
		}

		// The process never started (not executable, bad interpreter, ...).
		result.ExitCode = 127
		if result.Stderr != "" && !strings.HasSuffix(result.Stderr, "\n") {
			result.Stderr += "\n"
		}
		result.Stderr += err.Error()
		r.log().Error("Failed to start kirby binary", "binary", binary, "error", err)
	}

	r.log().Debug("kirby command finished",
		"args", args,
		"exitCode", result.ExitCode,
		"timedOut", result.TimedOut,
		"stdoutBytes", len(result.Stdout),
		"stderrBytes", len(result.Stderr),
	)

	return result, nil
}

// Binary resolves the executable Run would use for projectRoot.
func (r *Runner) Binary(projectRoot string) (string, error) {
	resolve := r.Resolve
	if resolve == nil {
		resolve = ResolveBinary
	}

	binary, ok := resolve(projectRoot)
	if !ok {
		return "", binaryNotFound(projectRoot)
	}
	return binary, nil
}

func (r *Runner) log() *logging.AppLogger {
	if r.logger == nil {
		return logging.GetDefault()
	}
	return r.logger
}

// commandEnv merges base ("KEY=VALUE" entries), extra and the fixed terminal
// size. Later sources override earlier ones; the output is sorted by key.
func commandEnv(base []string, extra map[string]string) []string {
	merged := make(map[string]string, len(base)+len(extra)+2)

	for _, kv := range base {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		merged[key] = value
	}
	for key, value := range extra {
		if key == "" {
			continue
		}
		merged[key] = value
	}
	merged["COLUMNS"] = strconv.Itoa(TerminalColumns)
	merged["LINES"] = strconv.Itoa(TerminalLines)

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, key := range keys {
		env = append(env, key+"="+merged[key])
	}
	return env
}
