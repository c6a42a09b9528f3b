// Package cache holds the worker's program cache: a thread-safe mapping
// from program name to a parsed, invocable program plus the compiled
// bytes it was loaded from.
package cache

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/tessera-run/tessera/internal/program"
)

// Entry owns a parsed program together with the raw bytes it was parsed
// from; the bytes must outlive the parsed form. The cache and any
// in-flight execution holding the Entry jointly keep it alive: entries
// are never evicted, and a replaced entry survives for as long as some
// execution still references it.
type Entry struct {
	Program *program.Program
	Bytes   []byte
}

// Cache maps program names to entries. A single mutex guards only the
// map; parsing compiled bytes happens outside the lock so registrations
// of distinct programs never serialize. Two concurrent registrations
// under the same name race on which wins; the last writer wins.
type Cache struct {
	registry *program.Registry
	logger   *slog.Logger

	mu      sync.Mutex
	entries map[string]*Entry
}

// New creates an empty program cache resolving kernels via registry.
func New(registry *program.Registry, logger *slog.Logger) *Cache {
	return &Cache{
		registry: registry,
		logger:   logger,
		entries:  make(map[string]*Entry),
	}
}

// Register parses compiledBytes and inserts-or-replaces the entry under
// name. Registration is fire-and-forget: a parse failure is logged and
// the registration dropped, with nothing observable to the caller.
func (c *Cache) Register(name string, compiledBytes []byte) {
	prog, err := program.Load(name, compiledBytes, c.registry)
	if err != nil {
		c.logger.Error("failed to load compiled program", "program", name, "error", err)
		return
	}

	e := &Entry{Program: prog, Bytes: compiledBytes}
	c.mu.Lock()
	c.entries[name] = e
	c.mu.Unlock()
}

// Prepare returns the cached entry for name, or nil when absent. The
// returned entry stays valid for the holder even if a later Register
// replaces it in the cache.
func (c *Cache) Prepare(name string) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[name]
}

// Names returns the cached program names sorted alphabetically.
func (c *Cache) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
