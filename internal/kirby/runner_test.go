package kirby

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Run(t *testing.T) {
	tests := []struct {
		name       string
		script     string
		args       []string
		env        map[string]string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "success",
			script:     `echo "Kirby CLI 5.2.1"`,
			wantCode:   0,
			wantStdout: "Kirby CLI 5.2.1\n",
		},
		{
			name:       "nonzero exit with stderr",
			script:     "echo out; echo oops >&2; exit 3",
			wantCode:   3,
			wantStdout: "out\n",
			wantStderr: "oops\n",
		},
		{
			name:       "arguments are passed literally",
			script:     `printf '%s\n' "$@"`,
			args:       []string{"make:blueprint", "a b", "$(touch /tmp/pwned)", "--flag=`x`"},
			wantStdout: "make:blueprint\na b\n$(touch /tmp/pwned)\n--flag=`x`\n",
		},
		{
			name:       "terminal size is fixed",
			script:     `echo "$COLUMNS x $LINES"`,
			env:        map[string]string{"COLUMNS": "80", "LINES": "10"},
			wantStdout: "200 x 50\n",
		},
		{
			name:       "extra environment reaches the process",
			script:     `echo "$KIRBY_MCP_TEST_VALUE"`,
			env:        map[string]string{"KIRBY_MCP_TEST_VALUE": "hello"},
			wantStdout: "hello\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, _ := newProject(t, tt.script)

			result, err := testRunner(t).Run(context.Background(), root, tt.args, tt.env, 0)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, result.ExitCode)
			assert.Equal(t, tt.wantStdout, result.Stdout)
			assert.Equal(t, tt.wantStderr, result.Stderr)
			assert.False(t, result.TimedOut)
			assert.Equal(t, tt.wantCode == 0, result.OK())
		})
	}
}

func TestRunner_WorkingDirectory(t *testing.T) {
	root, _ := newProject(t, "pwd -P")

	result, err := testRunner(t).Run(context.Background(), root, nil, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, root, strings.TrimSpace(result.Stdout))
}

func TestRunner_Timeout(t *testing.T) {
	root, _ := newProject(t, "echo partial; echo warn >&2; exec sleep 5")

	start := time.Now()
	result, err := testRunner(t).Run(context.Background(), root, nil, nil, 200*time.Millisecond)
	require.NoError(t, err)

	assert.True(t, result.TimedOut)
	assert.Equal(t, TimeoutExitCode, result.ExitCode)
	assert.Equal(t, "partial\n", result.Stdout)
	assert.Equal(t, "warn\n", result.Stderr)
	assert.False(t, result.OK())
	assert.Less(t, time.Since(start), 4*time.Second, "process should be killed at the deadline")
}

func TestRunner_DefaultTimeoutFromRunner(t *testing.T) {
	root, _ := newProject(t, "exec sleep 5")

	runner := testRunner(t)
	runner.Timeout = 100 * time.Millisecond

	result, err := runner.Run(context.Background(), root, nil, nil, 0)
	require.NoError(t, err)
	assert.True(t, result.TimedOut)
}

func TestRunner_ParentCancellation(t *testing.T) {
	root, _ := newProject(t, "exec sleep 5")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	result, err := testRunner(t).Run(ctx, root, nil, nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.TimedOut)
	assert.Equal(t, TimeoutExitCode, result.ExitCode)
}

func TestRunner_BinaryNotFound(t *testing.T) {
	t.Setenv(BinaryEnvVar, "")

	_, err := testRunner(t).Run(context.Background(), t.TempDir(), []string{"help"}, nil, 0)
	require.ErrorIs(t, err, ErrBinaryNotFound)
}

func TestRunner_SpawnFailure(t *testing.T) {
	root, binary := newProject(t, "exit 0")
	require.NoError(t, os.Chmod(binary, 0644))

	result, err := testRunner(t).Run(context.Background(), root, nil, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 127, result.ExitCode)
	assert.NotEmpty(t, result.Stderr)
	assert.False(t, result.TimedOut)
}

func TestRunner_CustomResolve(t *testing.T) {
	root, _ := newProject(t, "echo vendor")
	other := filepath.Join(t.TempDir(), "kirby")
	writeScript(t, other, "echo custom")

	runner := testRunner(t)
	runner.Resolve = func(string) (string, bool) { return other, true }

	result, err := runner.Run(context.Background(), root, nil, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "custom\n", result.Stdout)
}

func TestCommandEnv(t *testing.T) {
	env := commandEnv(
		[]string{"PATH=/usr/bin", "COLUMNS=80", "malformed", "=novalue", "B=1"},
		map[string]string{"B": "2", "": "skip", "A": "x=y"},
	)

	assert.Equal(t, []string{
		"A=x=y",
		"B=2",
		"COLUMNS=200",
		"LINES=50",
		"PATH=/usr/bin",
	}, env)
}
