package kirby

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"kirbymcp/internal/logging"
)

// newProject creates a project root whose vendor/bin/kirby is a shell script
// running body. The binary override is cleared for the test.
func newProject(t *testing.T, body string) (root, binary string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures need a POSIX shell")
	}
	t.Setenv(BinaryEnvVar, "")

	root = canonical(t, t.TempDir())
	binary = filepath.Join(root, "vendor", "bin", ToolName)
	writeScript(t, binary, body)
	return root, binary
}

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("failed to write script %s: %v", path, err)
	}
}

func canonical(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("EvalSymlinks(%s) failed: %v", path, err)
	}
	return resolved
}

func testRunner(t *testing.T) *Runner {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	return NewRunner(logger)
}
