// Package cache implements maek's persisted cache: a single JSON file
// (maek-cache.json by default) mapping target name to that target's task's
// cached key (see package key), rewritten in full at the end of each
// driver invocation.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ixchow/maek/key"
)

// FileName is the default name of the persisted cache file.
const FileName = "maek-cache.json"

// Cache is the in-memory view of the persisted cache: a map from target
// name to the cached key value loaded from disk at startup.
type Cache struct {
	entries map[string]key.Key
}

// New builds an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]key.Key)}
}

// Load parses path as a JSON object mapping target name to cached key. A
// missing file is not an error: it returns an empty Cache so the build
// starts cold, same for a malformed file. Any other filesystem error (e.g.
// permission denied) is an InternalError and is returned unhandled, per
// the error-kind split in the spec's error handling design.
func Load(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, err
	}

	var raw map[string]key.Key
	if err := json.Unmarshal(data, &raw); err != nil {
		// Malformed cache file: start fresh rather than fail the build.
		return New(), nil
	}
	return &Cache{entries: raw}, nil
}

// Get returns the cached key for target, if any was loaded from disk.
func (c *Cache) Get(target string) (key.Key, bool) {
	k, ok := c.entries[target]
	return k, ok
}

// Set records the cached key for target, to be persisted on the next Save.
func (c *Cache) Set(target string, k key.Key) {
	c.entries[target] = k
}

// Keep narrows the cache down to only the targets present in known,
// dropping entries for targets no longer in the registry. It returns the
// number of entries kept and the number dropped, for diagnostics.
func (c *Cache) Keep(known map[string]bool) (kept, dropped int) {
	next := make(map[string]key.Key, len(c.entries))
	for target, k := range c.entries {
		if known[target] {
			next[target] = k
			kept++
		} else {
			dropped++
		}
	}
	c.entries = next
	return kept, dropped
}

// Save serializes every cached entry to path, writing to a sibling
// temporary file first and renaming it into place so that a reader opening
// path never observes a partially written file.
func (c *Cache) Save(path string) error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".maek-cache-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
