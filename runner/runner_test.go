package runner_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ixchow/maek/runner"
)

func TestRenderQuotesMetacharacters(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		command []string
		want    string
	}{
		{
			name:    "plain tokens need no quoting",
			command: []string{"c++", "-c", "-o", "obj.o", "src.cpp"},
			want:    "c++ -c -o obj.o src.cpp",
		},
		{
			name:    "metacharacter token is quoted",
			command: []string{"echo", "a b"},
			want:    `echo 'a b'`,
		},
		{
			name:    "embedded single quote is escaped",
			command: []string{"echo", "it's"},
			want:    `echo 'it'\''s'`,
		},
		{
			name:    "leading equals is quoted",
			command: []string{"cmd", "=value"},
			want:    `cmd '=value'`,
		},
		{
			name:    "leading hash is quoted",
			command: []string{"cmd", "#comment"},
			want:    `cmd '#comment'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runner.Render(tt.command); got != tt.want {
				t.Errorf("got %q, wanted %q", got, tt.want)
			}
		})
	}
}

func TestRunSuccess(t *testing.T) {
	t.Parallel()
	var echo, out, errOut bytes.Buffer
	err := runner.Run([]string{"echo", "hello"}, "greet", &echo, &out, &errOut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "hello") {
		t.Errorf("stdout %q does not contain %q", out.String(), "hello")
	}
	if !strings.Contains(echo.String(), "greet") {
		t.Errorf("echo %q does not contain label %q", echo.String(), "greet")
	}
}

func TestRunNonZeroExit(t *testing.T) {
	t.Parallel()
	var echo, out, errOut bytes.Buffer
	err := runner.Run([]string{"sh", "-c", "exit 3"}, "fail", &echo, &out, &errOut)
	if err == nil {
		t.Fatal("expected an error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "exit status 3") {
		t.Errorf("error %q does not mention exit status", err.Error())
	}
}

func TestRunNonZeroExitCarriesStderr(t *testing.T) {
	t.Parallel()
	var echo, out, errOut bytes.Buffer
	err := runner.Run([]string{"sh", "-c", "echo no such header >&2; exit 1"}, "compile", &echo, &out, &errOut)
	if err == nil {
		t.Fatal("expected an error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "no such header") {
		t.Errorf("error %q does not carry the command's stderr", err.Error())
	}
	if !strings.Contains(errOut.String(), "no such header") {
		t.Errorf("live stderr stream %q missed the command's output", errOut.String())
	}
}

func TestRunSpawnError(t *testing.T) {
	t.Parallel()
	var echo, out, errOut bytes.Buffer
	err := runner.Run([]string{"this-binary-does-not-exist-anywhere"}, "missing", &echo, &out, &errOut)
	if err == nil {
		t.Fatal("expected an error for a missing executable")
	}
}

func TestRunEmptyCommand(t *testing.T) {
	t.Parallel()
	var echo, out, errOut bytes.Buffer
	err := runner.Run(nil, "empty", &echo, &out, &errOut)
	if err == nil {
		t.Fatal("expected an error for an empty command vector")
	}
}
