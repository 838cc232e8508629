package mcp

import (
	"os"
	"sync"
	"time"

	"kirbymcp/internal/kirby"
)

// catalogCache remembers parsed `kirby help` output per binary. An entry is
// stale once the binary's size or modification time changes.
type catalogCache struct {
	mu      sync.Mutex
	entries map[string]catalogEntry
}

type catalogEntry struct {
	modTime time.Time
	size    int64
	help    kirby.ParsedHelp
}

func newCatalogCache() *catalogCache {
	return &catalogCache{entries: make(map[string]catalogEntry)}
}

func (c *catalogCache) get(binary string) (kirby.ParsedHelp, bool) {
	info, err := os.Stat(binary)
	if err != nil {
		return kirby.ParsedHelp{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[binary]
	if !ok || entry.size != info.Size() || !entry.modTime.Equal(info.ModTime()) {
		return kirby.ParsedHelp{}, false
	}
	return entry.help, true
}

func (c *catalogCache) put(binary string, help kirby.ParsedHelp) {
	info, err := os.Stat(binary)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[binary] = catalogEntry{modTime: info.ModTime(), size: info.Size(), help: help}
}

// reset drops every entry; installed helper commands change the catalog
// without touching the binary.
func (c *catalogCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}
