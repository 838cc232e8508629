package fileops

import (
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strings"
	"time"
)

// WalkOptions configures WalkFS.
type WalkOptions struct {
	// MaxDepth limits how many directory levels below the root are entered.
	// Zero means no limit.
	MaxDepth int

	// IncludeHidden determines whether entries starting with '.' are visited.
	IncludeHidden bool

	// SkipPatterns contains directory names that are never entered.
	// These are exact matches against directory names (not full paths).
	SkipPatterns []string

	// FileFilter is an optional function that decides whether a file is returned.
	FileFilter func(name string) bool
}

// FileInfo describes one file found by WalkFS.
type FileInfo struct {
	// Name is the base filename without path components
	Name string

	// Path is the slash-separated path relative to the walk root
	Path string

	// Size is the file size in bytes
	Size int64

	// ModTime is the last modification time
	ModTime time.Time

	// Mode contains the file mode and permission bits
	Mode fs.FileMode
}

// DefaultWalkOptions returns the options used when WalkFS is given nil.
func DefaultWalkOptions() *WalkOptions {
	return &WalkOptions{
		MaxDepth:      32,
		IncludeHidden: false,
		SkipPatterns:  []string{".git", "node_modules", "vendor"},
	}
}

type walkItem struct {
	dir   string
	depth int
}

// WalkFS lists the regular files below root in fsys, sorted by path.
//
// Traversal uses an explicit stack so arbitrarily deep trees never grow the
// goroutine stack. Directories deeper than opts.MaxDepth are not entered.
// Symlinks and other non-regular entries are ignored.
//
// Usage example:
//
//	files, err := fileops.WalkFS(templates, "templates", nil)
//	for _, f := range files {
//	    fmt.Println(f.Path)
//	}
func WalkFS(fsys fs.FS, root string, opts *WalkOptions) ([]FileInfo, error) {
	if fsys == nil {
		return nil, fmt.Errorf("file system cannot be nil")
	}
	if opts == nil {
		opts = DefaultWalkOptions()
	}
	if root == "" {
		root = "."
	}
	if !fs.ValidPath(root) {
		return nil, fmt.Errorf("invalid walk root: %s", root)
	}

	var results []FileInfo
	stack := []walkItem{{dir: root, depth: 0}}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := fs.ReadDir(fsys, item.dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", item.dir, err)
		}

		for _, entry := range entries {
			name := entry.Name()
			if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
				continue
			}

			full := path.Join(item.dir, name)

			if entry.IsDir() {
				if slices.Contains(opts.SkipPatterns, name) {
					continue
				}
				if opts.MaxDepth > 0 && item.depth+1 > opts.MaxDepth {
					continue
				}
				stack = append(stack, walkItem{dir: full, depth: item.depth + 1})
				continue
			}

			if !entry.Type().IsRegular() {
				continue
			}
			if opts.FileFilter != nil && !opts.FileFilter(name) {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", full, err)
			}

			rel := strings.TrimPrefix(full, root+"/")
			if root == "." {
				rel = full
			}

			results = append(results, FileInfo{
				Name:    name,
				Path:    rel,
				Size:    info.Size(),
				ModTime: info.ModTime(),
				Mode:    info.Mode(),
			})
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}
