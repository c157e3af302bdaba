// Package hash implements maek's content hasher: a per-run, memoized map
// from file path to a hash record used to decide cache hits.
//
// A hash record is a string of the form "<path>:<digest>" where digest is
// the base64 encoding of a 128-bit content digest of the file at <path>, or
// the literal "x" if the file is absent or unreadable. The non-existence
// sentinel is structurally distinct from any real digest so that "file does
// not exist" participates in a task's cache key just like any other change.
package hash

import (
	"crypto/md5" //nolint:gosec // content-change detection, not security
	"encoding/base64"
	"io"
	"os"
	"sync"

	"github.com/ixchow/maek/target"
)

// Absent is the sentinel digest recorded for a file that is missing or
// unreadable.
const Absent = "x"

// Record returns the hash record string for a path and digest, "<path>:<digest>".
func Record(path, digest string) string {
	return path + ":" + digest
}

// Cache is a per-run, process-wide map from file path to hash record.
// Entries are invalidated explicitly, once, by the task that produces a
// file — before its commands run for compile and link tasks, after the
// recipe for generic tasks — so that a stale digest read earlier in the
// run is never reused; a dependent cannot hash the file until the
// producing task's whole update (body and post-run key) has completed.
// Cache hits are counted for diagnostics.
type Cache struct {
	mu   sync.Mutex
	vals map[string]string
	hits int
}

// New builds an empty, ready to use per-run hash Cache.
func New() *Cache {
	return &Cache{vals: make(map[string]string)}
}

// Hits returns the number of times a lookup found a memoized record.
func (c *Cache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// Invalidate removes any memoized record for path. Callers that rewrite a
// file MUST call this before the file is next hashed: compile and link
// tasks call it before running their commands, generic tasks after their
// recipe.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.vals, path)
}

// Hash returns the hash record for a single file path, computing and
// memoizing it on a cache miss. It never returns an error: unreadable files
// are recorded with the Absent sentinel.
func (c *Cache) Hash(path string) string {
	c.mu.Lock()
	if rec, ok := c.vals[path]; ok {
		c.hits++
		c.mu.Unlock()
		return rec
	}
	c.mu.Unlock()

	rec := Record(path, digest(path))

	c.mu.Lock()
	c.vals[path] = rec
	c.mu.Unlock()
	return rec
}

// HashFiles hashes every non-abstract target in files, in parallel, and
// returns the hash records in input order with abstract targets skipped;
// they never participate in a cache key.
func (c *Cache) HashFiles(files []string) []string {
	records := make([]string, len(files))
	var wg sync.WaitGroup
	for i, f := range files {
		if target.IsAbstract(f) {
			continue
		}
		wg.Add(1)
		go func(i int, f string) {
			defer wg.Done()
			records[i] = c.Hash(f)
		}(i, f)
	}
	wg.Wait()

	out := make([]string, 0, len(records))
	for i, f := range files {
		if target.IsAbstract(f) {
			continue
		}
		out = append(out, records[i])
	}
	return out
}

// digest reads path and returns the base64-encoded MD5 digest of its
// contents, or Absent if the file cannot be opened or read.
func digest(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return Absent
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return Absent
	}

	h := md5.New() //nolint:gosec // content-change detection, not security
	if _, err := io.Copy(h, f); err != nil {
		return Absent
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
