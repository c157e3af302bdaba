package registry

import (
	"fmt"
	"sync"

	"github.com/ixchow/maek/cache"
)

// Registry maps target name to the task that produces it (Invariant A:
// each target maps to at most one task; registering a second task for the
// same target replaces the first silently).
type Registry struct {
	mu       sync.Mutex
	byTarget map[string]*Task
	order    []*Task // distinct tasks, in registration order, deduplicated
	seen     map[*Task]bool
}

// New builds an empty Registry.
func New() *Registry {
	return &Registry{
		byTarget: make(map[string]*Task),
		seen:     make(map[*Task]bool),
	}
}

// Register adds t under every target it claims, overwriting whatever was
// previously registered for those targets. t must claim at least one
// target.
func (r *Registry) Register(t *Task) error {
	if len(t.Targets) == 0 {
		return fmt.Errorf("maek: task %q declares no targets", t.Label)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tgt := range t.Targets {
		r.byTarget[tgt] = t
	}
	if !r.seen[t] {
		r.seen[t] = true
		r.order = append(r.order, t)
	}
	return nil
}

// Lookup returns the task registered for target, if any.
func (r *Registry) Lookup(target string) (*Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byTarget[target]
	return t, ok
}

// Targets returns every currently registered target name.
func (r *Registry) Targets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.byTarget))
	for tgt := range r.byTarget {
		out = append(out, tgt)
	}
	return out
}

// Tasks returns every distinct registered task (a task claiming N targets
// appears once, not N times), in registration order. A task replaced by
// newer registrations under some of its targets still appears here while it
// remains registered under at least one target; a task replaced under all
// of its targets does not appear.
func (r *Registry) Tasks() []*Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	reachable := make(map[*Task]bool, len(r.byTarget))
	for _, t := range r.byTarget {
		reachable[t] = true
	}

	out := make([]*Task, 0, len(r.order))
	for _, t := range r.order {
		if reachable[t] {
			out = append(out, t)
		}
	}
	return out
}

// resetCachedKeys clears every registered task's in-memory cached key. Call
// before loading the persisted cache at driver startup.
func (r *Registry) resetCachedKeys() {
	for _, t := range r.Tasks() {
		t.clearCachedKey()
	}
}

// InstallCache clears every task's in-memory cached key, then installs the
// value loaded from c for each task whose first target has an entry,
// keyed by that task's primary (first-listed) target name. It returns the
// number of tasks a cache entry was assigned to and the number of cache
// entries that named no currently registered target (stale, dropped).
func (r *Registry) InstallCache(c *cache.Cache) (assigned, dropped int) {
	r.resetCachedKeys()

	known := make(map[string]bool, len(r.Tasks()))
	for _, t := range r.Tasks() {
		known[t.Targets[0]] = true
	}
	_, dropped = c.Keep(known)

	for _, t := range r.Tasks() {
		if k, ok := c.Get(t.Targets[0]); ok {
			t.setCachedKey(k)
			assigned++
		}
	}
	return assigned, dropped
}
