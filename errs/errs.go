// Package errs implements maek's two error kinds: BuildError, an expected
// and user-visible build failure, and everything else, which is allowed to
// surface as a normal Go error with its full diagnostic intact.
package errs

import "fmt"

// BuildError is a user-visible, expected build failure: a command exiting
// non-zero, a missing source file with no task, an abstract target with no
// task, a dynamic-dependency registry collision, or a malformed dependency
// file.
//
// It is logged once at its discovery site and then re-wrapped as it
// propagates up the dependency graph, so the root caller sees exactly one
// detailed cause followed by a chain of "prerequisite failed" wrappers.
type BuildError struct {
	msg string
	err error // wrapped cause, if any
}

// New builds a BuildError from a formatted message.
func New(format string, args ...any) *BuildError {
	return &BuildError{msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a BuildError carrying msg and wrapping cause, so that
// errors.Unwrap and errors.As keep working through the chain.
func Wrap(cause error, format string, args ...any) *BuildError {
	return &BuildError{msg: fmt.Sprintf(format, args...), err: cause}
}

// Error implements the error interface.
func (b *BuildError) Error() string {
	if b.err != nil {
		return b.msg + ": " + b.err.Error()
	}
	return b.msg
}

// Unwrap lets errors.Is/errors.As see through to the wrapped cause.
func (b *BuildError) Unwrap() error {
	return b.err
}

// PrerequisiteFailed builds the BuildError every failing task's dependents
// see once the original cause has already been logged at its discovery site.
func PrerequisiteFailed(target string) *BuildError {
	return New("prerequisite failed: %s", target)
}
