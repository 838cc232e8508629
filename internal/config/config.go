// Package config loads kirby-mcp settings.
//
// Settings come from three places, applied in order:
//
//  1. the user config file ($XDG_CONFIG_HOME/kirby-mcp/config.yaml)
//  2. KIRBY_MCP_* environment variables
//  3. the project file <root>/.kirby-mcp/mcp.json, whose cli lists are
//     appended to the user lists
//
// All three are optional.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kirbymcp/internal/logging"
	"kirbymcp/internal/policy"
	"kirbymcp/pkg/fileops"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "kirby-mcp" // application name used for config directory

const (
	// EnvPrefix is the prefix of every environment override.
	EnvPrefix = "KIRBY_MCP"

	// ConfigPathEnvVar points the user config at a specific file.
	ConfigPathEnvVar = "KIRBY_MCP_CONFIG_PATH"

	// ProjectConfigDir and ProjectConfigFile locate the per-project policy.
	ProjectConfigDir  = ".kirby-mcp"
	ProjectConfigFile = "mcp.json"

	// DefaultTimeoutSeconds is used when neither file nor env set a timeout.
	DefaultTimeoutSeconds = 60

	maxConfigSize = 1 << 20
)

// ErrNoProjectRoot is returned when no project root could be determined.
var ErrNoProjectRoot = errors.New("no project root configured")

// Config holds the merged settings.
type Config struct {
	// ProjectRoot is the Kirby project the bridge operates on.
	ProjectRoot string `yaml:"project_root,omitempty"`

	// TimeoutSeconds bounds each CLI invocation.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`

	// CLI holds the deny/allow/allowWrite lists.
	CLI policy.Config `yaml:"cli"`

	// userCLI is CLI before the project lists were appended by Load.
	userCLI *policy.Config
}

// ProjectConfig is the shape of .kirby-mcp/mcp.json.
type ProjectConfig struct {
	CLI policy.Config `yaml:"cli" json:"cli"`
}

// envSpec maps KIRBY_MCP_PROJECT_ROOT and KIRBY_MCP_TIMEOUT.
type envSpec struct {
	ProjectRoot string `split_words:"true"`
	Timeout     int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		TimeoutSeconds: DefaultTimeoutSeconds,
	}
}

// Timeout returns the per-command timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Policy compiles the configured lists.
func (c *Config) Policy() *policy.Policy {
	return policy.New(c.CLI)
}

// PolicySource returns a reloading policy for ProjectRoot. The project file
// is re-read by the source, so only the user-level lists are passed as base.
func (c *Config) PolicySource() (*PolicySource, error) {
	base := c.CLI
	if c.userCLI != nil {
		base = *c.userCLI
	}
	return NewPolicySource(c.ProjectRoot, base)
}

// ConfigPath returns the user config file location
func ConfigPath() string {
	if path := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); path != "" {
		return fileops.ExpandPath(path)
	}

	configPath := filepath.Join(xdg.ConfigHome, APP_NAME, "config.yaml")
	logging.Debug("Determined config paths", "path", configPath)
	return configPath
}

// Load builds the effective configuration. rootOverride, when non-empty,
// takes precedence over every other source of the project root.
func Load(rootOverride string) (*Config, error) {
	cfg := DefaultConfig()

	path := ConfigPath()
	if _, err := os.Stat(path); err == nil {
		user, err := LoadFrom(path)
		if err != nil {
			return nil, err
		}
		cfg.merge(*user)
	}

	var env envSpec
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if env.ProjectRoot != "" {
		cfg.ProjectRoot = env.ProjectRoot
	}
	if env.Timeout > 0 {
		cfg.TimeoutSeconds = env.Timeout
	}
	if strings.TrimSpace(rootOverride) != "" {
		cfg.ProjectRoot = rootOverride
	}

	root, err := resolveProjectRoot(cfg.ProjectRoot)
	if err != nil {
		return nil, err
	}
	cfg.ProjectRoot = root

	project, err := LoadProject(root)
	if err != nil {
		return nil, err
	}
	user := cfg.CLI
	cfg.userCLI = &user
	cfg.CLI = mergeLists(cfg.CLI, project.CLI)

	logging.Debug("Configuration loaded",
		"projectRoot", cfg.ProjectRoot,
		"timeoutSeconds", cfg.TimeoutSeconds,
		"deny", len(cfg.CLI.Deny),
		"allow", len(cfg.CLI.Allow),
		"allowWrite", len(cfg.CLI.AllowWrite),
	)
	return &cfg, nil
}

// LoadFrom loads a user config file from a specific path
func LoadFrom(path string) (*Config, error) {
	logging.Debug("Reading config file", "path", path)
	if err := fileops.ValidateFileSizeLimit(path, maxConfigSize); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// SaveTo writes the config as YAML to a specific path
func (c *Config) SaveTo(path string) error {
	if err := fileops.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := fileops.AtomicWrite(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ProjectConfigPath returns <root>/.kirby-mcp/mcp.json.
func ProjectConfigPath(root string) string {
	return filepath.Join(root, ProjectConfigDir, ProjectConfigFile)
}

// LoadProject reads the project policy file. A missing file yields an empty
// ProjectConfig. The file is JSON, decoded with the YAML decoder (JSON is a
// subset), so comments-free YAML is accepted too.
func LoadProject(root string) (ProjectConfig, error) {
	var project ProjectConfig

	path := ProjectConfigPath(root)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return project, nil
		}
		return project, fmt.Errorf("cannot access project config: %w", err)
	}

	if err := fileops.ValidateFileSizeLimit(path, maxConfigSize); err != nil {
		return project, fmt.Errorf("invalid project config: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return project, fmt.Errorf("failed to read project config: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return project, nil
	}

	if err := yaml.Unmarshal(data, &project); err != nil {
		return project, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return project, nil
}

// SaveProject writes project as indented JSON to <root>/.kirby-mcp/mcp.json.
func SaveProject(root string, project ProjectConfig) error {
	path := ProjectConfigPath(root)
	if err := fileops.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return err
	}

	if project.CLI.Deny == nil {
		project.CLI.Deny = []string{}
	}
	if project.CLI.Allow == nil {
		project.CLI.Allow = []string{}
	}
	if project.CLI.AllowWrite == nil {
		project.CLI.AllowWrite = []string{}
	}

	data, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project config: %w", err)
	}
	return fileops.AtomicWrite(path, append(data, '\n'), 0644)
}

func (c *Config) merge(other Config) {
	if other.ProjectRoot != "" {
		c.ProjectRoot = fileops.ExpandPath(other.ProjectRoot)
	}
	if other.TimeoutSeconds > 0 {
		c.TimeoutSeconds = other.TimeoutSeconds
	}
	c.CLI = mergeLists(c.CLI, other.CLI)
}

func mergeLists(a, b policy.Config) policy.Config {
	return policy.Config{
		Deny:       append(append([]string{}, a.Deny...), b.Deny...),
		Allow:      append(append([]string{}, a.Allow...), b.Allow...),
		AllowWrite: append(append([]string{}, a.AllowWrite...), b.AllowWrite...),
	}
}

// resolveProjectRoot falls back to the working directory and returns an
// absolute path to an existing directory.
func resolveProjectRoot(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNoProjectRoot, err)
		}
		root = cwd
	}

	abs, err := filepath.Abs(fileops.ExpandPath(root))
	if err != nil {
		return "", fmt.Errorf("cannot resolve project root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNoProjectRoot, abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrNoProjectRoot, abs)
	}
	return abs, nil
}
