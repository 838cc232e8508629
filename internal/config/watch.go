package config

import (
	"os"
	"sync"
	"time"

	"kirbymcp/internal/logging"
	"kirbymcp/internal/policy"
)

// PolicySource hands out the compiled policy for a project and recompiles it
// when .kirby-mcp/mcp.json changes on disk. The base lists (user config)
// stay fixed for the lifetime of the source.
type PolicySource struct {
	root string
	base policy.Config

	mu      sync.Mutex
	modTime time.Time
	exists  bool
	current *policy.Policy
}

// NewPolicySource compiles the policy for cfg.ProjectRoot. cfg.CLI must not
// already include the project lists; pass the user-level lists as base.
func NewPolicySource(root string, base policy.Config) (*PolicySource, error) {
	s := &PolicySource{root: root, base: base}
	if _, err := s.Policy(); err != nil {
		return nil, err
	}
	return s, nil
}

// Policy returns the current policy, reloading the project file when its
// modification time changed since the last call. If the reload fails the
// error is returned and the previous policy stays in place.
func (s *PolicySource) Policy() (*policy.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	modTime, exists := s.stat()
	if s.current != nil && exists == s.exists && modTime.Equal(s.modTime) {
		return s.current, nil
	}

	project, err := LoadProject(s.root)
	if err != nil {
		if s.current != nil {
			logging.Warn("Keeping previous CLI policy", "error", err)
		}
		return s.current, err
	}

	s.current = policy.New(mergeLists(s.base, project.CLI))
	s.modTime = modTime
	s.exists = exists
	logging.Debug("CLI policy compiled", "root", s.root, "projectFile", exists)

	return s.current, nil
}

func (s *PolicySource) stat() (time.Time, bool) {
	info, err := os.Stat(ProjectConfigPath(s.root))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
