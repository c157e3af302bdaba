// Package logger implements an interface behind which a third party,
// levelled logger can sit, so the rest of maek can log without depending
// directly on zap.
//
// maek's logging needs are basic: DEBUG level traces behind --verbose, plus
// a single ERROR line at the point a BuildError is first discovered (it is
// then re-wrapped as it propagates, so this is the only place the detailed
// cause is printed).
package logger

import "go.uber.org/zap"

// Logger is the interface behind which a levelled logger can sit.
type Logger interface {
	// Sync flushes any buffered log entries.
	Sync() error
	// Debug logs a debug level line, shown only with --verbose.
	Debug(format string, args ...any)
	// Error logs an error level line. Used exactly once per BuildError, at
	// the site where it is first discovered.
	Error(format string, args ...any)
}

// Zap is a Logger backed by go.uber.org/zap.
type Zap struct {
	inner *zap.SugaredLogger
}

// New builds a Zap logger; verbose raises the level to Debug, otherwise
// only Info and above are emitted.
func New(verbose bool) (*Zap, error) {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.DisableCaller = true
	built, err := cfg.Build(zap.IncreaseLevel(level))
	if err != nil {
		return nil, err
	}
	return &Zap{inner: built.Sugar()}, nil
}

// Sync flushes the logs.
func (z *Zap) Sync() error {
	return z.inner.Sync()
}

// Debug logs a debug level line.
func (z *Zap) Debug(format string, args ...any) {
	z.inner.Debugf(format, args...)
}

// Error logs an error level line.
func (z *Zap) Error(format string, args ...any) {
	z.inner.Errorf(format, args...)
}

// Nop is a Logger that discards everything, used by default in tests that
// don't care about diagnostic output.
type Nop struct{}

func (Nop) Sync() error                   { return nil }
func (Nop) Debug(format string, a ...any) {}
func (Nop) Error(format string, a ...any) {}
