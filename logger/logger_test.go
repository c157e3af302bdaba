package logger_test

import (
	"testing"

	"github.com/ixchow/maek/logger"
)

func TestNopDoesNotPanic(t *testing.T) {
	t.Parallel()
	var l logger.Logger = logger.Nop{}
	l.Debug("debug %s", "line")
	l.Error("error %s", "line")
	if err := l.Sync(); err != nil {
		t.Errorf("Sync returned an error: %v", err)
	}
}

func TestNewBuildsAWorkingLogger(t *testing.T) {
	t.Parallel()
	l, err := logger.New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("hello %d", 1)
	l.Error("oops %d", 2)
}
