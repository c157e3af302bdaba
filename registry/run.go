package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/ixchow/maek/errs"
	"github.com/ixchow/maek/hash"
	"github.com/ixchow/maek/iostream"
	"github.com/ixchow/maek/jobs"
	"github.com/ixchow/maek/key"
	"github.com/ixchow/maek/logger"
	"github.com/ixchow/maek/runner"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/sync/errgroup"
)

// future is a one-shot handle for a task's in-flight update, so any number
// of concurrent resolve calls for the same task share one execution and
// observe the same outcome.
type future struct {
	done chan struct{}
	err  error
}

func newFuture() *future {
	return &future{done: make(chan struct{})}
}

func (f *future) finish(err error) {
	f.err = err
	close(f.done)
}

func (f *future) wait() error {
	<-f.done
	return f.err
}

// Run holds everything scoped to one driver invocation: the hash cache, the
// job limiter, and the per-task futures used to de-duplicate concurrent
// resolutions (Task.pending, in spec terms — held here, in a mutex-guarded
// map, rather than inline on Task, per the engine's design notes).
type Run struct {
	Registry *Registry
	Hash     *hash.Cache
	Jobs     *jobs.Limiter
	Logger   logger.Logger
	IO       iostream.IOStream
	Force    bool // if set, every task is treated as a cache miss

	mu        sync.Mutex
	pending   map[*Task]*future
	requester map[*Task]string
}

// NewRun builds a fresh Run for one driver invocation.
func NewRun(reg *Registry, h *hash.Cache, j *jobs.Limiter, l logger.Logger, io iostream.IOStream, force bool) *Run {
	return &Run{
		Registry:  reg,
		Hash:      h,
		Jobs:      j,
		Logger:    l,
		IO:        io,
		Force:     force,
		pending:   make(map[*Task]*future),
		requester: make(map[*Task]string),
	}
}

// Resolve demand-driven-updates every target in targets, concurrently, and
// waits for them all. requesterLabel is used only for diagnostics. A
// registered target whose task failed with a BuildError yields
// errs.PrerequisiteFailed for that target; an unregistered abstract target
// or a missing file with no task yields its own BuildError; any other error
// from a task is returned as is. Resolve runs every target to completion
// regardless (in-flight commands are never killed) and returns the first
// error.
func (r *Run) Resolve(targets []string, requesterLabel string) error {
	var g errgroup.Group
	for _, t := range targets {
		t := t
		g.Go(func() error {
			return r.resolveOne(t, requesterLabel)
		})
	}
	return g.Wait()
}

// resolveOne implements §4.5's resolve() body for a single target.
func (r *Run) resolveOne(target, requesterLabel string) error {
	task, ok := r.Registry.Lookup(target)
	if ok {
		fut := r.getOrCreateFuture(task, requesterLabel)
		if err := fut.wait(); err != nil {
			var be *errs.BuildError
			if !errors.As(err, &be) {
				return err
			}
			return errs.PrerequisiteFailed(target)
		}
		return nil
	}

	if len(target) > 0 && target[0] == ':' {
		err := errs.New("abstract target %q has no task%s", target, r.suggestion(target))
		r.Logger.Error("%s", err)
		return err
	}

	if !fileReadable(target) {
		err := errs.New("target %q has no task and doesn't exist%s", target, r.suggestion(target))
		r.Logger.Error("%s", err)
		return err
	}
	return nil
}

// suggestion returns a parenthesized "did you mean X?" hint naming the
// best-ranked registered target that typo fuzzy-matches, or "" when none
// matches.
func (r *Run) suggestion(typo string) string {
	matches := fuzzy.RankFindNormalizedFold(typo, r.Registry.Targets())
	if len(matches) == 0 {
		return ""
	}
	sort.Sort(matches)
	return fmt.Sprintf(" (did you mean %q?)", matches[0].Target)
}

// getOrCreateFuture returns the in-flight future for task, creating and
// starting its update exactly once per Run. Subsequent callers, for any of
// the task's targets, await the same future.
func (r *Run) getOrCreateFuture(task *Task, requesterLabel string) *future {
	r.mu.Lock()
	fut, ok := r.pending[task]
	if ok {
		r.mu.Unlock()
		return fut
	}
	fut = newFuture()
	r.pending[task] = fut
	r.requester[task] = requesterLabel
	r.mu.Unlock()

	go func() {
		fut.finish(r.updateTask(task))
	}()
	return fut
}

// updateTask implements §4.5's "task-update body": check the cache, run if
// needed, then record the fresh key.
func (r *Run) updateTask(task *Task) error {
	if task.KeyFunc != nil && !r.Force {
		if cached, ok := task.getCachedKey(); ok {
			k, err := task.KeyFunc(r)
			if err != nil {
				return err
			}
			if key.Equal(k, cached) {
				return nil // cache hit
			}
		}
	}

	if err := task.Body(r); err != nil {
		return err
	}

	if task.KeyFunc != nil {
		k, err := task.KeyFunc(r)
		if err != nil {
			return err
		}
		task.storeCachedKey(k)
	}
	return nil
}

// RunCommand runs one recipe command under the job limiter, rendering it to
// r.IO.Echo and streaming its stdio to r.IO.Stdout/Stderr. A failing command
// is a BuildError's true discovery site, so it is logged here, once, before
// propagating up through the task's Body.
func (r *Run) RunCommand(command []string, label string) error {
	return r.Jobs.Run(context.Background(), func() error {
		if err := runner.Run(command, label, r.IO.Echo, r.IO.Stdout, r.IO.Stderr); err != nil {
			r.Logger.Error("%s", err)
			return err
		}
		return nil
	})
}

func fileReadable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
