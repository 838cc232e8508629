package install

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kirbymcp/internal/kirby"
)

func TestTemplatesEmitMarkers(t *testing.T) {
	files, err := Templates(Options{})
	require.NoError(t, err)
	require.NotEmpty(t, files)

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)

		data, err := templates.ReadFile(templateRoot + "/" + f.Path)
		require.NoError(t, err)

		content := string(data)
		assert.Contains(t, content, kirby.MarkerStart, f.Path)
		assert.Contains(t, content, kirby.MarkerEnd, f.Path)
		assert.Less(t, strings.Index(content, kirby.MarkerStart), strings.Index(content, kirby.MarkerEnd), f.Path)
	}

	assert.Contains(t, paths, "mcp/render.php")
	assert.Contains(t, paths, "mcp/roots.php")
}

func TestInstall(t *testing.T) {
	root := t.TempDir()

	report, err := Install(root, Options{})
	require.NoError(t, err)

	assert.Equal(t, CommandsDir(root), report.Target)
	assert.ElementsMatch(t, []string{"mcp/render.php", "mcp/roots.php"}, report.Installed)
	assert.Empty(t, report.Skipped)

	installed, err := os.ReadFile(filepath.Join(root, "site", "commands", "mcp", "render.php"))
	require.NoError(t, err)
	embedded, err := templates.ReadFile(templateRoot + "/mcp/render.php")
	require.NoError(t, err)
	assert.Equal(t, string(embedded), string(installed))
}

func TestInstallSkipsExisting(t *testing.T) {
	root := t.TempDir()
	custom := filepath.Join(CommandsDir(root), "mcp", "render.php")
	require.NoError(t, os.MkdirAll(filepath.Dir(custom), 0755))
	require.NoError(t, os.WriteFile(custom, []byte("<?php // mine"), 0644))

	report, err := Install(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"mcp/render.php"}, report.Skipped)
	assert.Equal(t, []string{"mcp/roots.php"}, report.Installed)

	data, err := os.ReadFile(custom)
	require.NoError(t, err)
	assert.Equal(t, "<?php // mine", string(data))

	report, err = Install(root, Options{Force: true})
	require.NoError(t, err)
	assert.Empty(t, report.Skipped)

	data, err = os.ReadFile(custom)
	require.NoError(t, err)
	assert.Contains(t, string(data), kirby.MarkerStart)
}

func TestInstallDryRun(t *testing.T) {
	root := t.TempDir()

	report, err := Install(root, Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Len(t, report.Installed, 2)

	_, err = os.Stat(CommandsDir(root))
	assert.True(t, os.IsNotExist(err), "dry run must not create directories")
}

func TestInstallCustomSource(t *testing.T) {
	root := t.TempDir()
	src := fstest.MapFS{
		"acme/sync.php":   {Data: []byte("<?php // sync")},
		"acme/README.md":  {Data: []byte("ignored")},
		"deep/a/b/c.php":  {Data: []byte("<?php // deep")},
		".hidden/nop.php": {Data: []byte("<?php")},
	}

	report, err := Install(root, Options{Source: src})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"acme/sync.php", "deep/a/b/c.php"}, report.Installed)

	data, err := os.ReadFile(filepath.Join(CommandsDir(root), "deep", "a", "b", "c.php"))
	require.NoError(t, err)
	assert.Equal(t, "<?php // deep", string(data))
}

func TestInstallErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := Install(filepath.Join(t.TempDir(), "missing"), Options{})
		assert.Error(t, err)
	})

	t.Run("root is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0644))
		_, err := Install(file, Options{})
		assert.Error(t, err)
	})

	t.Run("empty source", func(t *testing.T) {
		_, err := Install(t.TempDir(), Options{Source: fstest.MapFS{"README.md": {Data: []byte("x")}}})
		assert.ErrorContains(t, err, "no helper templates")
	})

	t.Run("invalid template", func(t *testing.T) {
		src := fstest.MapFS{"acme/broken.php": {Data: []byte("echo '<<<KIRBY_MCP_JSON>>>';")}}
		_, err := Install(t.TempDir(), Options{Source: src, DryRun: true})
		assert.ErrorContains(t, err, "template acme/broken.php: template must start with <?php")
	})
}
