// Package registry implements maek's core engine: the task registry and the
// demand-driven target resolver. It is deliberately small and knows nothing
// about compilers or linkers — those live in package task, which builds
// registry.Task values using the hooks this package exposes.
package registry

import (
	"sync"

	"github.com/ixchow/maek/key"
)

// Task is the unit of work for one or more targets. KeyFunc and Body are
// hooks supplied by the task builder (generic recipe, compile, link): Body
// does the actual work (typically running the recipe's commands in order),
// KeyFunc computes the deterministic cache key summarizing every input that
// can change Body's result.
//
// A Task with a nil KeyFunc is never cached: its Body runs on every
// resolution (Invariant B — any task claiming an abstract target has no
// KeyFunc).
type Task struct {
	// Targets is the non-empty ordered set of targets this task produces.
	Targets []string
	// Prerequisites is the ordered set of targets that must be up to date
	// before this task's Body runs.
	Prerequisites []string
	// Label is the human-readable identifier used in diagnostics.
	Label string
	// KeyFunc computes the cache key, assuming Prerequisites are already
	// up to date. nil means "never cache, always run" (abstract targets).
	KeyFunc func(*Run) (key.Key, error)
	// Body performs the task's work. It is responsible for resolving its
	// own Prerequisites (via Run.Resolve) before doing anything else.
	Body func(*Run) error

	mu           sync.Mutex
	hasCachedKey bool
	cachedKey    key.Key
}

// IsAbstract reports whether any of the task's targets is an abstract
// (':'-prefixed) target.
func (t *Task) IsAbstract() bool {
	for _, tgt := range t.Targets {
		if len(tgt) > 0 && tgt[0] == ':' {
			return true
		}
	}
	return false
}

// setCachedKey installs k as loaded from the persisted cache, at driver
// startup, before any resolution happens this run.
func (t *Task) setCachedKey(k key.Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cachedKey = k
	t.hasCachedKey = true
}

// clearCachedKey discards any cached key, used when the driver starts up
// and the persisted cache has nothing for this task (or hasn't been loaded
// yet).
func (t *Task) clearCachedKey() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cachedKey = nil
	t.hasCachedKey = false
}

// getCachedKey returns the currently installed cached key, if any.
func (t *Task) getCachedKey() (key.Key, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cachedKey, t.hasCachedKey
}

// GetCachedKey returns the currently installed cached key, if any, for
// callers outside this package (the driver, persisting the cache at
// shutdown).
func (t *Task) GetCachedKey() (key.Key, bool) {
	return t.getCachedKey()
}

// storeCachedKey records k as this run's freshly computed key, to be
// persisted by the driver at shutdown.
func (t *Task) storeCachedKey(k key.Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cachedKey = k
	t.hasCachedKey = true
}
