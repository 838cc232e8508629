package config

import (
	"os"
	"testing"
	"time"

	"kirbymcp/internal/policy"
)

func TestPolicySourceReloadsOnChange(t *testing.T) {
	root := t.TempDir()

	source, err := NewPolicySource(root, policy.Config{Allow: []string{"plugin:list"}})
	if err != nil {
		t.Fatalf("NewPolicySource failed: %v", err)
	}

	p, err := source.Policy()
	if err != nil {
		t.Fatalf("Policy failed: %v", err)
	}
	if !p.Evaluate("plugin:list", false).Allowed {
		t.Error("Expected base allow list to apply")
	}
	if p.Evaluate("backup", false).Allowed {
		t.Error("Expected backup to be rejected before project config exists")
	}

	same, _ := source.Policy()
	if same != p {
		t.Error("Expected unchanged config to reuse the compiled policy")
	}

	writeFile(t, ProjectConfigPath(root), `{"cli": {"allow": ["backup"], "deny": ["plugin:list"]}}`)
	// Make sure the modification time differs even on coarse filesystems.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(ProjectConfigPath(root), future, future); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	reloaded, err := source.Policy()
	if err != nil {
		t.Fatalf("Policy after change failed: %v", err)
	}
	if reloaded == p {
		t.Fatal("Expected a recompiled policy after the project file changed")
	}
	if !reloaded.Evaluate("backup", false).Allowed {
		t.Error("Expected project allow entry to apply after reload")
	}
	if reloaded.Evaluate("plugin:list", false).Allowed {
		t.Error("Expected project deny entry to win after reload")
	}
}

func TestPolicySourceKeepsPreviousOnError(t *testing.T) {
	root := t.TempDir()

	source, err := NewPolicySource(root, policy.Config{})
	if err != nil {
		t.Fatalf("NewPolicySource failed: %v", err)
	}
	before, _ := source.Policy()

	writeFile(t, ProjectConfigPath(root), `{"cli": [`)

	after, err := source.Policy()
	if err == nil {
		t.Fatal("Expected error for broken project config")
	}
	if after != before {
		t.Error("Expected previous policy to be returned on reload failure")
	}
}

func TestConfigPolicySourceDoesNotDoubleProjectLists(t *testing.T) {
	configPath := isolate(t)
	root := t.TempDir()

	writeFile(t, configPath, "cli:\n  allow:\n    - \"plugin:list\"\n")
	writeFile(t, ProjectConfigPath(root), `{"cli": {"deny": ["make:user"]}}`)

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	source, err := cfg.PolicySource()
	if err != nil {
		t.Fatalf("PolicySource failed: %v", err)
	}
	p, err := source.Policy()
	if err != nil {
		t.Fatalf("Policy failed: %v", err)
	}

	assertList(t, "deny", p.Deny(), []string{"make:user"})
	if !p.Evaluate("plugin:list", false).Allowed {
		t.Error("Expected user allow list to apply")
	}
}
