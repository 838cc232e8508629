// Package install copies the kirby-mcp helper commands into a Kirby project.
//
// The helpers live under site/commands and print their results between the
// output markers understood by internal/kirby, which is how the server gets
// structured data out of an otherwise text-oriented CLI.
package install

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"kirbymcp/internal/logging"
	"kirbymcp/internal/validation"
	"kirbymcp/pkg/fileops"
)

//go:embed templates
var templates embed.FS

const templateRoot = "templates/commands"

// Options control Install.
type Options struct {
	// Force overwrites helper files that already exist.
	Force bool

	// DryRun reports what would change without writing.
	DryRun bool

	// Source replaces the embedded templates. Its layout mirrors
	// site/commands (e.g. mcp/render.php at the top level).
	Source fs.FS
}

// Report lists what Install did, with paths relative to Target.
type Report struct {
	Target    string   `json:"target"`
	Installed []string `json:"installed"`
	Skipped   []string `json:"skipped"`
	DryRun    bool     `json:"dryRun,omitempty"`
}

// CommandsDir returns <root>/site/commands.
func CommandsDir(projectRoot string) string {
	return filepath.Join(projectRoot, "site", "commands")
}

// Templates lists the helper files that Install would write.
func Templates(opts Options) ([]fileops.FileInfo, error) {
	fsys, root, err := source(opts)
	if err != nil {
		return nil, err
	}
	return fileops.WalkFS(fsys, root, &fileops.WalkOptions{
		MaxDepth:   8,
		FileFilter: func(name string) bool { return path.Ext(name) == ".php" },
	})
}

// Install writes every helper template into CommandsDir(projectRoot).
// Existing files are left alone unless opts.Force is set.
func Install(projectRoot string, opts Options) (Report, error) {
	logger := logging.GetDefault()
	target := CommandsDir(projectRoot)
	report := Report{
		Target:    target,
		Installed: []string{},
		Skipped:   []string{},
		DryRun:    opts.DryRun,
	}

	info, err := os.Stat(projectRoot)
	if err != nil {
		return report, fmt.Errorf("cannot access project root: %w", err)
	}
	if !info.IsDir() {
		return report, fmt.Errorf("project root is not a directory: %s", projectRoot)
	}

	fsys, root, err := source(opts)
	if err != nil {
		return report, err
	}

	files, err := Templates(opts)
	if err != nil {
		return report, fmt.Errorf("failed to list templates: %w", err)
	}
	if len(files) == 0 {
		return report, errors.New("no helper templates found")
	}

	if !opts.DryRun {
		if err := fileops.ValidateDirectoryWritable(target); err != nil {
			return report, fmt.Errorf("commands directory not writable: %w", err)
		}
	}

	for _, file := range files {
		if err := fileops.ValidateRelativePath(file.Path); err != nil {
			return report, fmt.Errorf("template %s: %w", file.Path, err)
		}

		dest := filepath.Join(target, filepath.FromSlash(file.Path))
		if err := fileops.ValidatePathInDirectory(dest, target); err != nil {
			return report, fmt.Errorf("template %s: %w", file.Path, err)
		}

		if _, err := os.Stat(dest); err == nil && !opts.Force {
			logger.Debug("Helper command exists, skipping", "path", dest)
			report.Skipped = append(report.Skipped, file.Path)
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(root, file.Path))
		if err != nil {
			return report, fmt.Errorf("failed to read template %s: %w", file.Path, err)
		}
		if err := validation.ValidateHelperTemplate(data); err != nil {
			return report, fmt.Errorf("template %s: %w", file.Path, err)
		}

		if opts.DryRun {
			report.Installed = append(report.Installed, file.Path)
			continue
		}

		if err := fileops.EnsureDirectoryExists(filepath.Dir(dest)); err != nil {
			return report, err
		}
		if err := fileops.AtomicWrite(dest, data, 0644); err != nil {
			return report, fmt.Errorf("failed to install %s: %w", file.Path, err)
		}

		logger.Info("Installed helper command", "path", dest)
		report.Installed = append(report.Installed, file.Path)
	}

	return report, nil
}

func source(opts Options) (fs.FS, string, error) {
	if opts.Source != nil {
		return opts.Source, ".", nil
	}
	return templates, templateRoot, nil
}
