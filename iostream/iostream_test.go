package iostream_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/ixchow/maek/iostream"
)

func TestTeeCapturesWithoutLosingBaseStreams(t *testing.T) {
	t.Parallel()
	var baseOut, baseErr bytes.Buffer
	base := iostream.IOStream{
		Echo:   &bytes.Buffer{},
		Stdout: &baseOut,
		Stderr: &baseErr,
	}

	captured := &iostream.CapturedOutput{}
	teed := iostream.Tee(base, captured)

	fmt.Fprint(teed.Stdout, "to stdout")
	fmt.Fprint(teed.Stderr, "to stderr")

	if got := baseOut.String(); got != "to stdout" {
		t.Errorf("base stdout got %q, wanted %q", got, "to stdout")
	}
	if got := baseErr.String(); got != "to stderr" {
		t.Errorf("base stderr got %q, wanted %q", got, "to stderr")
	}
	if got := captured.Stdout.String(); got != "to stdout" {
		t.Errorf("captured stdout got %q, wanted %q", got, "to stdout")
	}
	if got := captured.Stderr.String(); got != "to stderr" {
		t.Errorf("captured stderr got %q, wanted %q", got, "to stderr")
	}
}

func TestTeeLeavesEchoAlone(t *testing.T) {
	t.Parallel()
	var echo bytes.Buffer
	base := iostream.IOStream{
		Echo:   &echo,
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}
	teed := iostream.Tee(base, &iostream.CapturedOutput{})

	fmt.Fprint(teed.Echo, "label: cmd")
	if got := echo.String(); got != "label: cmd" {
		t.Errorf("echo got %q, wanted it passed through untouched", got)
	}
}
