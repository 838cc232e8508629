package editors

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func readDoc(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return doc
}

func TestLookup(t *testing.T) {
	tests := []struct {
		id   string
		want string
		ok   bool
	}{
		{"claude", ".mcp.json", true},
		{" Cursor ", ".cursor/mcp.json", true},
		{"VSCODE", ".vscode/mcp.json", true},
		{"gemini", ".gemini/settings.json", true},
		{"emacs", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			c, ok := Lookup(tt.id)
			if ok != tt.ok {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.id, ok, tt.ok)
			}
			if c.ConfigPath != tt.want {
				t.Errorf("ConfigPath = %q, want %q", c.ConfigPath, tt.want)
			}
		})
	}
}

func TestConfigsAreWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range GetAllEditorMCPConfigs() {
		if c.ID == "" || c.Name == "" || c.ServersKey == "" {
			t.Errorf("incomplete config: %+v", c)
		}
		if seen[c.ID] {
			t.Errorf("duplicate ID %q", c.ID)
		}
		seen[c.ID] = true
		if filepath.IsAbs(c.ConfigPath) || strings.Contains(c.ConfigPath, "..") {
			t.Errorf("%s: config path %q must stay inside the project", c.ID, c.ConfigPath)
		}
	}
}

func TestEntry(t *testing.T) {
	launch := Launch{Command: "/usr/local/bin/kirby-mcp", Args: []string{"serve", "--root", "/srv/site"}}

	tests := []struct {
		name  string
		style EntryStyle
		want  map[string]any
	}{
		{
			name:  "command",
			style: EntryStyleCommand,
			want: map[string]any{
				"command": "/usr/local/bin/kirby-mcp",
				"args":    []string{"serve", "--root", "/srv/site"},
			},
		},
		{
			name:  "stdio",
			style: EntryStyleStdio,
			want: map[string]any{
				"type":    "stdio",
				"command": "/usr/local/bin/kirby-mcp",
				"args":    []string{"serve", "--root", "/srv/site"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EditorMCPConfig{EntryStyle: tt.style}.Entry(launch)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Entry() = %#v, want %#v", got, tt.want)
			}
		})
	}

	if args := (EditorMCPConfig{}).Entry(Launch{Command: "kirby-mcp"})["args"]; args == nil {
		t.Error("nil args should be written as an empty list")
	}
}

func TestRegisterCreatesFile(t *testing.T) {
	root := t.TempDir()
	cursor, _ := Lookup("cursor")

	result, err := cursor.Register(root, DefaultLaunch(), false, false)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !result.Written || result.Existed {
		t.Errorf("result = %+v, want written and not existed", result)
	}

	doc := readDoc(t, filepath.Join(root, ".cursor", "mcp.json"))
	servers := doc["mcpServers"].(map[string]any)
	entry := servers[ServerName].(map[string]any)
	if entry["command"] != "kirby-mcp" {
		t.Errorf("command = %v, want kirby-mcp", entry["command"])
	}
	if _, ok := entry["type"]; ok {
		t.Error("cursor entries should not carry a type")
	}
}

func TestRegisterKeepsOtherServers(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ".vscode", "mcp.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	existing := `{"inputs": [], "servers": {"github": {"type": "http", "url": "https://example.test"}}}`
	if err := os.WriteFile(path, []byte(existing), 0644); err != nil {
		t.Fatal(err)
	}

	vscode, _ := Lookup("vscode")
	if _, err := vscode.Register(root, DefaultLaunch(), false, false); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	doc := readDoc(t, path)
	if _, ok := doc["inputs"]; !ok {
		t.Error("unrelated top-level keys must be preserved")
	}
	servers := doc["servers"].(map[string]any)
	if _, ok := servers["github"]; !ok {
		t.Error("existing servers must be preserved")
	}
	if servers[ServerName].(map[string]any)["type"] != "stdio" {
		t.Error("vscode entry should be typed stdio")
	}
}

func TestRegisterExistingEntry(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ".mcp.json")
	original := `{"mcpServers": {"kirby": {"command": "custom"}}}`
	if err := os.WriteFile(path, []byte(original), 0644); err != nil {
		t.Fatal(err)
	}
	claude, _ := Lookup("claude")

	result, err := claude.Register(root, DefaultLaunch(), false, false)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if result.Written || !result.Existed {
		t.Errorf("result = %+v, want existing entry left alone", result)
	}
	if data, _ := os.ReadFile(path); string(data) != original {
		t.Errorf("file changed without force: %s", data)
	}

	result, err = claude.Register(root, DefaultLaunch(), true, false)
	if err != nil {
		t.Fatalf("Register(force) error = %v", err)
	}
	if !result.Written {
		t.Error("force should rewrite the entry")
	}
	entry := readDoc(t, path)["mcpServers"].(map[string]any)[ServerName].(map[string]any)
	if entry["command"] != "kirby-mcp" {
		t.Errorf("command = %v, want kirby-mcp", entry["command"])
	}
}

func TestRegisterDryRun(t *testing.T) {
	root := t.TempDir()
	gemini, _ := Lookup("gemini")

	result, err := gemini.Register(root, DefaultLaunch(), false, true)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !result.Written {
		t.Error("dry run should report the write")
	}
	if _, err := os.Stat(result.Path); !os.IsNotExist(err) {
		t.Errorf("dry run created %s", result.Path)
	}
}

func TestRegisterRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"invalid json", `{"mcpServers": `, "failed to parse"},
		{"servers not an object", `{"mcpServers": []}`, "is not an object"},
		{"top level array", `[]`, "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if err := os.WriteFile(filepath.Join(root, ".mcp.json"), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			claude, _ := Lookup("claude")

			_, err := claude.Register(root, DefaultLaunch(), true, false)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Register() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterBlankFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ".mcp.json")
	if err := os.WriteFile(path, []byte("\n"), 0644); err != nil {
		t.Fatal(err)
	}
	claude, _ := Lookup("claude")

	if _, err := claude.Register(root, DefaultLaunch(), false, false); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, ok := readDoc(t, path)["mcpServers"]; !ok {
		t.Error("blank file should be treated as empty")
	}
}
