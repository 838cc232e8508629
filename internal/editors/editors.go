// Package editors knows where AI editors and assistants look for
// project-scoped MCP server definitions, and registers kirby-mcp there.
package editors

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kirbymcp/internal/logging"
	"kirbymcp/pkg/fileops"
)

// ServerName is the key kirby-mcp is registered under.
const ServerName = "kirby"

const maxClientConfigSize = 1 << 20

type EntryStyle int

const (
	// EntryStyleCommand writes {"command": ..., "args": [...]}
	EntryStyleCommand EntryStyle = iota
	// EntryStyleStdio adds "type": "stdio" to the command entry
	EntryStyleStdio
)

type EditorMCPConfig struct {
	// ID is the short name used on the command line
	ID string

	// Name of the editor or assistant
	Name string

	// Explanation
	Explanation string

	// ConfigPath is relative to the project root
	ConfigPath string

	// ServersKey is the top-level object holding server entries
	ServersKey string

	// EntryStyle selects the shape of the server entry
	EntryStyle EntryStyle
}

var EditorMCPConfigs = []EditorMCPConfig{
	{
		// https://docs.anthropic.com/en/docs/claude-code/mcp#project-scope
		ID:          "claude",
		Name:        "Claude Code",
		Explanation: "Project-scoped servers shared through .mcp.json at the repository root.",
		ConfigPath:  ".mcp.json",
		ServersKey:  "mcpServers",
		EntryStyle:  EntryStyleStdio,
	},
	{
		// https://docs.cursor.com/en/context/mcp
		ID:          "cursor",
		Name:        "Cursor",
		Explanation: "Project MCP servers in .cursor/mcp.json.",
		ConfigPath:  ".cursor/mcp.json",
		ServersKey:  "mcpServers",
		EntryStyle:  EntryStyleCommand,
	},
	{
		// https://code.visualstudio.com/docs/copilot/chat/mcp-servers
		ID:          "vscode",
		Name:        "VS Code (GitHub Copilot)",
		Explanation: "Workspace MCP servers in .vscode/mcp.json.",
		ConfigPath:  ".vscode/mcp.json",
		ServersKey:  "servers",
		EntryStyle:  EntryStyleStdio,
	},
	{
		// https://github.com/google-gemini/gemini-cli/blob/main/docs/tools/mcp-server.md
		ID:          "gemini",
		Name:        "Gemini CLI",
		Explanation: "Project settings in .gemini/settings.json.",
		ConfigPath:  ".gemini/settings.json",
		ServersKey:  "mcpServers",
		EntryStyle:  EntryStyleCommand,
	},
}

func GetAllEditorMCPConfigs() []EditorMCPConfig {
	return EditorMCPConfigs
}

// Lookup returns the config with the given ID (case-insensitive).
func Lookup(id string) (EditorMCPConfig, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, c := range EditorMCPConfigs {
		if c.ID == id {
			return c, true
		}
	}
	return EditorMCPConfig{}, false
}

// Launch is the command an editor runs to start the server.
type Launch struct {
	Command string
	Args    []string
}

// DefaultLaunch starts `kirby-mcp serve` from PATH.
func DefaultLaunch() Launch {
	return Launch{Command: "kirby-mcp", Args: []string{"serve"}}
}

// Entry builds the server entry in the shape this editor expects.
func (c EditorMCPConfig) Entry(l Launch) map[string]any {
	args := l.Args
	if args == nil {
		args = []string{}
	}

	entry := map[string]any{
		"command": l.Command,
		"args":    args,
	}
	if c.EntryStyle == EntryStyleStdio {
		entry["type"] = "stdio"
	}
	return entry
}

// Result describes what Register did for one editor.
type Result struct {
	Editor  string `json:"editor"`
	Path    string `json:"path"`
	Written bool   `json:"written"`
	Existed bool   `json:"existed"`
}

// Register adds the kirby server entry to the editor's config file under
// projectRoot, keeping every other key in the file. An existing kirby entry
// is only replaced when force is set.
func (c EditorMCPConfig) Register(projectRoot string, l Launch, force, dryRun bool) (Result, error) {
	if err := fileops.ValidateRelativePath(c.ConfigPath); err != nil {
		return Result{}, fmt.Errorf("invalid config path for %s: %w", c.Name, err)
	}
	path := filepath.Join(projectRoot, filepath.FromSlash(c.ConfigPath))
	result := Result{Editor: c.ID, Path: path}

	doc, err := readJSONObject(path)
	if err != nil {
		return result, err
	}

	servers, ok := doc[c.ServersKey].(map[string]any)
	if !ok {
		if _, present := doc[c.ServersKey]; present {
			return result, fmt.Errorf("%s: %q is not an object", path, c.ServersKey)
		}
		servers = map[string]any{}
	}

	_, result.Existed = servers[ServerName]
	if result.Existed && !force {
		return result, nil
	}
	if dryRun {
		result.Written = true
		return result, nil
	}

	servers[ServerName] = c.Entry(l)
	doc[c.ServersKey] = servers

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return result, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := fileops.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return result, err
	}
	if err := fileops.AtomicWrite(path, append(data, '\n'), 0644); err != nil {
		return result, err
	}

	logging.Info("Registered MCP server", "editor", c.Name, "path", path)
	result.Written = true
	return result, nil
}

// readJSONObject returns an empty object for a missing or blank file.
func readJSONObject(path string) (map[string]any, error) {
	doc := map[string]any{}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err := fileops.ValidateFileSizeLimit(path, maxClientConfigSize); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}
