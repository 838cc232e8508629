package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateRelativePath checks that path is a non-empty relative path without
// ".." segments. It is used for paths read from template trees before they
// are joined onto a destination directory.
//
// Parameters:
//   - path: Path to validate (slash or OS separated)
//
// Returns:
//   - error: Validation errors if the path is unsafe
//
// Usage example:
//
//	if err := fileops.ValidateRelativePath("mcp/render.php"); err != nil {
//	    return fmt.Errorf("invalid template path: %w", err)
//	}
func ValidateRelativePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}

	slashed := filepath.ToSlash(path)
	if filepath.IsAbs(path) || strings.HasPrefix(slashed, "/") {
		return fmt.Errorf("path must be relative: %s", path)
	}

	for _, segment := range strings.Split(slashed, "/") {
		if segment == ".." {
			return fmt.Errorf("path traversal not allowed: %s", path)
		}
	}

	return nil
}

// ValidatePathInDirectory checks that path, once cleaned and made absolute,
// lies inside baseDir. The path does not need to exist.
//
// Parameters:
//   - path: Path to check
//   - baseDir: Directory that must contain path
//
// Returns:
//   - error: Validation errors if path escapes baseDir
//
// Usage example:
//
//	dest := filepath.Join(commandsDir, rel)
//	if err := fileops.ValidatePathInDirectory(dest, commandsDir); err != nil {
//	    return err
//	}
func ValidatePathInDirectory(path, baseDir string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve path: %w", err)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("cannot resolve base directory: %w", err)
	}

	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return fmt.Errorf("cannot determine relative path: %w", err)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path is not within base directory: %s", path)
	}

	return nil
}

// ValidateFileAccess checks if a file exists and is accessible with specified permissions.
//
// Parameters:
//   - filePath: Path to the file to check
//   - requireWrite: Whether write access is required
//
// Returns:
//   - error: Access validation errors
//
// The function checks:
//   - File existence
//   - Read permissions (always required)
//   - Write permissions (if requireWrite is true)
//   - File is not a directory
func ValidateFileAccess(filePath string, requireWrite bool) error {
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filePath)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("file is not readable: %w", err)
	}
	file.Close()

	if requireWrite {
		file, err := os.OpenFile(filePath, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("file is not writable: %w", err)
		}
		file.Close()
	}

	return nil
}

// ExpandPath expands a path that starts with "~/" to the user's home directory.
//
// Usage example:
//
//	expanded := fileops.ExpandPath("~/Sites/kirby/vendor/bin/kirby")
//	// Returns something like "/home/user/Sites/kirby/vendor/bin/kirby"
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// ValidateDirectoryWritable ensures a directory exists and is writable.
//
// The function:
//   - Creates the directory if it doesn't exist
//   - Tests write permissions by creating a temporary test file
//   - Cleans up the test file after verification
//
// Usage example:
//
//	if err := fileops.ValidateDirectoryWritable(filepath.Join(root, "site", "commands")); err != nil {
//	    return fmt.Errorf("commands directory not writable: %w", err)
//	}
func ValidateDirectoryWritable(dirPath string) error {
	expandedPath := ExpandPath(strings.TrimSpace(dirPath))

	if err := EnsureDirectoryExists(expandedPath); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	probe, err := os.CreateTemp(expandedPath, ".fileops-test-*")
	if err != nil {
		return fmt.Errorf("no write permission in directory: %w", err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return nil
}

// ValidateFileSizeLimit checks that filePath is a regular file no larger than maxSize bytes.
//
// Usage example:
//
//	// Limit config files to 1MB
//	if err := fileops.ValidateFileSizeLimit(path, 1<<20); err != nil {
//	    return fmt.Errorf("config too large: %w", err)
//	}
func ValidateFileSizeLimit(filePath string, maxSize int64) error {
	if maxSize <= 0 {
		return fmt.Errorf("invalid size limit: %d", maxSize)
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filepath.Base(filePath))
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if fileInfo.Size() > maxSize {
		return fmt.Errorf("file size %d bytes exceeds limit %d bytes", fileInfo.Size(), maxSize)
	}

	return nil
}
