// Package fileops provides the file operations kirby-mcp needs when it reads
// configuration and writes helper commands into a project.
//
// # Validation
//
// Combine the checks in this order before touching a file:
//
// 1. **Relative Paths**: ValidateRelativePath() - rejects absolute paths and ".." segments
// 2. **Containment**: ValidatePathInDirectory() - the cleaned path stays under a base directory
// 3. **File Size**: ValidateFileSizeLimit() - prevents reading oversized config files
// 4. **File Access**: ValidateFileAccess() - the file exists and is readable/writable
//
// # Example: Installing a File Into a Project
//
//	if err := fileops.ValidateRelativePath(rel); err != nil {
//	    return fmt.Errorf("template path: %w", err)
//	}
//	dest := filepath.Join(targetDir, rel)
//	if err := fileops.ValidatePathInDirectory(dest, targetDir); err != nil {
//	    return fmt.Errorf("destination: %w", err)
//	}
//	if err := fileops.AtomicWrite(dest, data, 0644); err != nil {
//	    return err
//	}
//
// # Atomic Writes
//
// AtomicWrite() writes to a temporary sibling and renames it into place, so the
// destination is either the old content or the new content, never a mix.
//
// # Traversal
//
// WalkFS() lists the files of any fs.FS (embedded templates, os.DirFS) with an
// explicit work stack instead of recursion, so depth limits are enforced
// without growing the call stack.
package fileops
