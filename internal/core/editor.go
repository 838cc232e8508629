// Package core holds small interactive helpers shared by the CLI.
package core

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ErrNoEditor is returned when neither $VISUAL, $EDITOR nor a fallback
// editor is available.
var ErrNoEditor = errors.New("no editor found; set $EDITOR")

// Streams connects the editor to the user's terminal.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// EditorCommand returns the user's preferred editor split into argv.
// Uses $VISUAL, then $EDITOR, or falls back to nano/vi.
func EditorCommand() ([]string, error) {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(key)); len(fields) > 0 {
			return fields, nil
		}
	}
	for _, fallback := range []string{"nano", "vi"} {
		if path, err := exec.LookPath(fallback); err == nil {
			return []string{path}, nil
		}
	}
	return nil, ErrNoEditor
}

// EditFile launches the user's preferred editor for the given file and
// waits for it to exit.
func EditFile(ctx context.Context, path string, streams Streams) error {
	argv, err := EditorCommand()
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = streams.In
	cmd.Stdout = streams.Out
	cmd.Stderr = streams.Err
	return cmd.Run()
}
