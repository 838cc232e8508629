package fileops

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWrite writes data to destPath atomically. The destination file either
// appears with the full content or is left unchanged.
//
// The function uses a temporary file approach:
//  1. Creates a temporary file in the destination directory
//  2. Writes all data to the temporary file
//  3. Syncs data to disk to ensure durability
//  4. Atomically renames the temporary file to the final destination
//
// Parameters:
//   - destPath: Path of the file to create or replace
//   - data: Complete file content
//   - perm: Permission bits for the new file
//
// Returns:
//   - error: Temp file creation, write, sync or rename errors
//
// Security considerations:
//   - destPath should be validated (ValidatePathInDirectory) before calling
//   - Temporary files are cleaned up on any failure
//
// Note: existing files are overwritten without warning; callers that must not
// clobber user files check for existence first.
func AtomicWrite(destPath string, data []byte, perm os.FileMode) error {
	tempFile, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()

	// Ensure cleanup of temp file if anything goes wrong
	var writeSuccess bool
	defer func() {
		tempFile.Close()
		if !writeSuccess {
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write file contents: %w", err)
	}

	if err := tempFile.Chmod(perm); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}

	// Sync to ensure data is written to disk
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	// Atomic rename - this is the atomic operation
	if err := os.Rename(tempPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	writeSuccess = true
	return nil
}

// EnsureDirectoryExists creates a directory and all necessary parent directories.
// This is equivalent to `mkdir -p` and is safe to call multiple times.
//
// Parameters:
//   - path: Directory path to create
//
// Returns:
//   - error: Directory creation errors
//
// The function sets directory permissions to 0755 (readable and executable by all,
// writable by owner only).
func EnsureDirectoryExists(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
