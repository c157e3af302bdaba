// Package runner implements maek's command runner: it executes a single
// external command, streams its stdio, and reports the outcome. Unlike a
// shell-based task runner, it spawns the executable directly with no shell
// interpretation of the command line at all.
package runner

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/ixchow/maek/errs"
	"github.com/ixchow/maek/iostream"
)

// shellMeta is the set of characters whose presence in a token means it
// needs quoting when rendered for a human to copy-paste into a real shell.
const shellMeta = " \t\n|&;()<>$`\\\"'*?[]#~=%!{}"

// Render turns a command vector into a shell-copy-pastable string: tokens
// containing shell metacharacters, or starting with '=' or '#', are single
// quoted with embedded single quotes escaped as '\''.
func Render(command []string) string {
	parts := make([]string, len(command))
	for i, tok := range command {
		parts[i] = renderToken(tok)
	}
	return strings.Join(parts, " ")
}

func renderToken(tok string) string {
	needsQuote := tok == "" || strings.ContainsAny(tok, shellMeta) ||
		strings.HasPrefix(tok, "=") || strings.HasPrefix(tok, "#")
	if !needsQuote {
		return tok
	}
	escaped := strings.ReplaceAll(tok, "'", `'\''`)
	return "'" + escaped + "'"
}

// Run executes command directly (no shell interpretation), with stdin
// closed, and stdout/stderr inherited by the child (copied through to
// out/errOut as it writes them). Before spawning, it prints label and the
// shell-copy-pastable rendering of command to echo. label is used only for
// diagnostics. A non-zero exit, or a failure to even start the process,
// surfaces as a *errs.BuildError naming the rendered command and the
// cause; the child's stderr is tee'd into a capture buffer so a non-zero
// exit's BuildError carries what the command actually complained about.
func Run(command []string, label string, echo, out, errOut io.Writer) error {
	if len(command) == 0 {
		return errs.New("task %q: empty command", label)
	}

	rendered := Render(command)
	fmt.Fprintf(echo, "%s: %s\n", label, rendered)

	captured := &iostream.CapturedOutput{}
	streams := iostream.Tee(iostream.IOStream{Echo: echo, Stdout: out, Stderr: errOut}, captured)

	cmd := exec.Command(command[0], command[1:]...) //nolint:gosec // maek executes user-authored build recipes by design
	cmd.Stdin = nil
	cmd.Stdout = streams.Stdout
	cmd.Stderr = streams.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			if complaint := strings.TrimSpace(captured.Stderr.String()); complaint != "" {
				return errs.New("task %q: command failed: %s (exit status %d)\n%s", label, rendered, exitErr.ExitCode(), complaint)
			}
			return errs.New("task %q: command failed: %s (exit status %d)", label, rendered, exitErr.ExitCode())
		}
		return errs.Wrap(err, "task %q: could not run command: %s", label, rendered)
	}
	return nil
}
