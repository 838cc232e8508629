package kirby

import (
	"os"
	"path/filepath"
	"strings"

	"kirbymcp/pkg/fileops"
)

const (
	// BinaryEnvVar overrides binary discovery with an explicit path.
	BinaryEnvVar = "KIRBY_MCP_KIRBY_BIN"

	// ToolName is the executable name looked up under vendor/bin.
	ToolName = "kirby"
)

// ResolveBinary returns the absolute path of the kirby binary for projectRoot.
//
// A non-empty KIRBY_MCP_KIRBY_BIN wins when it names an existing file, tried
// as an absolute path, then relative to projectRoot, then relative to the
// working directory. An override that resolves to nothing is ignored and the
// ancestor search runs instead: starting at projectRoot (or its parent when it
// is a file), every directory up to the filesystem root is checked for
// vendor/bin/kirby.
func ResolveBinary(projectRoot string) (string, bool) {
	if override := strings.TrimSpace(os.Getenv(BinaryEnvVar)); override != "" {
		if path, ok := resolveOverride(override, projectRoot); ok {
			return path, true
		}
	}

	return findInVendorBin(projectRoot)
}

func resolveOverride(override, projectRoot string) (string, bool) {
	override = fileops.ExpandPath(override)

	if filepath.IsAbs(override) {
		return existingFile(override)
	}

	if projectRoot != "" {
		if path, ok := existingFile(filepath.Join(projectRoot, override)); ok {
			return path, true
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		if path, ok := existingFile(filepath.Join(cwd, override)); ok {
			return path, true
		}
	}

	return "", false
}

func findInVendorBin(projectRoot string) (string, bool) {
	if projectRoot == "" {
		return "", false
	}

	dir, err := canonicalDir(projectRoot)
	if err != nil {
		return "", false
	}

	for {
		if path, ok := existingFile(filepath.Join(dir, "vendor", "bin", ToolName)); ok {
			return path, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// canonicalDir returns the absolute, symlink-free directory for path, using
// the parent directory when path is not itself a directory.
func canonicalDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Keep walking from the lexical path; a missing leaf may still have
		// an ancestor holding vendor/bin.
		return filepath.Clean(abs), nil
	}
	return resolved, nil
}

func existingFile(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	return abs, true
}
