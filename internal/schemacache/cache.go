// Package schemacache implements the gateway's content-addressed,
// at-most-once-per-key compilation cache: concurrent lookups of the same
// key never trigger more than one compile, distinct keys compile in
// parallel, and a failed compile is never installed as a negative cache
// entry.
package schemacache

import (
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache maps a canonicalized filesystem path to a shared, immutable
// compiled value. The zero value is not usable; construct with New.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]any
	group   singleflight.Group
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]any)}
}

// Load returns the cached value for path, compiling it via compile on a
// miss. Concurrent Load calls for the same path share a single in-flight
// compile (the single-flight barrier); a losing caller observes the
// winning caller's result, success or failure. A failed compile installs
// no cache entry, so a subsequent Load retries it.
func (c *Cache) Load(path string, compile func(canonicalPath string) (any, error)) (any, error) {
	key := canonicalize(path)

	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the single-flight barrier: another goroutine may
		// have installed the entry between our lookup and Do() acquiring
		// the per-key slot.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}

		compiled, err := compile(key)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = compiled
		c.mu.Unlock()

		return compiled, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Count returns the number of installed (successfully compiled) entries.
// Exposed for tests and diagnostics, not part of the request hot path.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// canonicalize normalizes a filesystem path into a stable cache key. It
// uses Clean rather than Abs: paths arrive as written in the config (the
// config loader does not rewrite them), so a relative path is resolved
// against the process working directory when the file is read, and the
// relative and absolute spellings of one file are distinct keys.
func canonicalize(path string) string {
	return filepath.Clean(path)
}
