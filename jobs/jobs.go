// Package jobs implements maek's job limiter, bounding the number of
// external commands executing concurrently to JOBS = CPU_COUNT + 1.
//
// Only command execution is bounded this way; cache lookups, hashing and
// other filesystem access are unbounded (see runner and hash).
package jobs

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds concurrent command execution. Submitted work is enqueued
// FIFO; when a slot frees, the next queued job begins. Submission always
// yields to at least the next scheduler turn before running, so a burst of
// submissions within one turn enqueues before any of them start.
type Limiter struct {
	sem *semaphore.Weighted
	n   int64
}

// Default returns a Limiter bounded to runtime.NumCPU()+1, the JOBS value
// mandated by the spec.
func Default() *Limiter {
	return New(int64(runtime.NumCPU()) + 1)
}

// New returns a Limiter bounded to n concurrent jobs.
func New(n int64) *Limiter {
	if n < 1 {
		n = 1
	}
	return &Limiter{sem: semaphore.NewWeighted(n), n: n}
}

// JOBS returns the configured concurrency bound.
func (l *Limiter) JOBS() int64 {
	return l.n
}

// Run acquires a slot, always deferring past the current scheduler turn
// first (via a zero-duration channel hop), runs fn, then releases the slot.
// Run blocks until a slot is available and ctx is not done.
func (l *Limiter) Run(ctx context.Context, fn func() error) error {
	// Defer to at least the next scheduler turn: a burst of Run calls
	// submitted within a single turn all reach the semaphore queue before
	// any of them proceed to execute, preserving FIFO admission order.
	yield := make(chan struct{})
	go func() { close(yield) }()
	select {
	case <-yield:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)

	return fn()
}
