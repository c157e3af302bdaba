// Package iostream provides convenient wrappers around the stdio streams
// maek talks to: the driver's echo/stdout/stderr plus, per-command, a
// tee'd copy of command output so the runner can both stream a command's
// stdio live and fold its captured stderr into a failure's BuildError.
package iostream

import (
	"bytes"
	"io"
	"os"
)

// IOStream groups the three writers a driver run needs: Echo receives the
// command-runner's "label: rendered command" lines, Stdout and Stderr
// receive the inherited stdio of spawned commands.
type IOStream struct {
	Echo   io.Writer
	Stdout io.Writer
	Stderr io.Writer
}

// OS returns an IOStream wired to the process's own stdio.
func OS() IOStream {
	return IOStream{
		Echo:   os.Stdout,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Test returns an IOStream backed by fresh buffers, for assertions in tests.
func Test() IOStream {
	return IOStream{
		Echo:   &bytes.Buffer{},
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}
}

// Null returns an IOStream that discards everything written to it.
func Null() IOStream {
	return IOStream{
		Echo:   io.Discard,
		Stdout: io.Discard,
		Stderr: io.Discard,
	}
}

// Tee returns an IOStream whose Stdout/Stderr each write to both base's
// corresponding stream and to capture, so a command's own output can be
// captured for diagnostics without losing the live, inherited stream.
func Tee(base IOStream, capture *CapturedOutput) IOStream {
	return IOStream{
		Echo:   base.Echo,
		Stdout: io.MultiWriter(base.Stdout, &capture.Stdout),
		Stderr: io.MultiWriter(base.Stderr, &capture.Stderr),
	}
}

// CapturedOutput accumulates a copy of a command's stdout/stderr.
type CapturedOutput struct {
	Stdout bytes.Buffer
	Stderr bytes.Buffer
}
