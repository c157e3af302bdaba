package task_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ixchow/maek/hash"
	"github.com/ixchow/maek/iostream"
	"github.com/ixchow/maek/jobs"
	"github.com/ixchow/maek/logger"
	"github.com/ixchow/maek/registry"
	"github.com/ixchow/maek/task"
)

func newRun(reg *registry.Registry) *registry.Run {
	return registry.NewRun(reg, hash.New(), jobs.New(2), logger.Nop{}, iostream.Test(), false)
}

func TestRULERunsOnceThenHitsCache(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	src := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	runs := 0
	recipe := [][]string{{"cp", src, out}}
	tsk := task.RULE([]string{out}, []string{src}, recipe, "copy")
	originalBody := tsk.Body
	tsk.Body = func(r *registry.Run) error {
		runs++
		return originalBody(r)
	}

	reg := registry.New()
	if err := reg.Register(tsk); err != nil {
		t.Fatalf("registering task: %v", err)
	}

	if err := newRun(reg).Resolve([]string{out}, "test"); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if runs != 1 {
		t.Fatalf("got %d runs after first resolve, wanted 1", runs)
	}

	if err := newRun(reg).Resolve([]string{out}, "test"); err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if runs != 1 {
		t.Fatalf("got %d runs after second resolve, wanted still 1 (cache hit)", runs)
	}
}

func TestRULEAbstractTargetRerunsEveryTime(t *testing.T) {
	t.Parallel()
	runs := 0
	recipe := [][]string{{"true"}}
	tsk := task.RULE([]string{":test"}, nil, recipe, "test")
	originalBody := tsk.Body
	tsk.Body = func(r *registry.Run) error {
		runs++
		return originalBody(r)
	}
	if tsk.KeyFunc != nil {
		t.Fatal("expected an abstract-target task to have a nil KeyFunc")
	}

	reg := registry.New()
	if err := reg.Register(tsk); err != nil {
		t.Fatalf("registering task: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := newRun(reg).Resolve([]string{":test"}, "test"); err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
	}
	if runs != 2 {
		t.Fatalf("got %d runs, wanted 2 (abstract targets are never cached)", runs)
	}
}

func TestCPPDerivesPaths(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	obj := filepath.Join(dir, "objs", "Player.o")
	dep := filepath.Join(dir, "objs", "Player.d")

	tsk := task.CPP("Player.cpp", task.CPPOptions{
		CompileCmd: []string{"true"},
		ProbeCmd:   []string{"true"},
		ObjPath:    obj,
		DepPath:    dep,
	}, nil, "compile Player.cpp")

	if len(tsk.Targets) != 1 || tsk.Targets[0] != obj {
		t.Errorf("got targets %v, wanted [%s]", tsk.Targets, obj)
	}
	if len(tsk.Prerequisites) != 1 || tsk.Prerequisites[0] != "Player.cpp" {
		t.Errorf("got prerequisites %v, wanted [Player.cpp]", tsk.Prerequisites)
	}
}

// TestCPPRejectsDependencyDiscoveredAsRegisteredTarget exercises Invariant
// C: a CPP task's dependency probe must not discover a header that is
// itself a registered target of another task (it would race that task
// rather than being an ordinary source file).
func TestCPPRejectsDependencyDiscoveredAsRegisteredTarget(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	source := filepath.Join(dir, "main.cpp")
	if err := os.WriteFile(source, []byte("int main(){}"), 0o644); err != nil {
		t.Fatalf("writing fixture source: %v", err)
	}

	objDir := filepath.Join(dir, "objs")
	obj := filepath.Join(objDir, "main.o")
	dep := filepath.Join(objDir, "main.d")
	generatedHeader := filepath.Join(dir, "generated.hpp")

	depFixture := filepath.Join(dir, "fixture.d")
	depContents := fmt.Sprintf("x : %s\n", generatedHeader)
	if err := os.WriteFile(depFixture, []byte(depContents), 0o644); err != nil {
		t.Fatalf("writing dep-file fixture: %v", err)
	}

	reg := registry.New()

	// Some other task claims generatedHeader as its own target.
	generator := &registry.Task{
		Targets: []string{generatedHeader},
		Label:   "generate header",
		Body:    func(r *registry.Run) error { return nil },
	}
	if err := reg.Register(generator); err != nil {
		t.Fatalf("registering generator: %v", err)
	}

	// The probe command just copies a fixture dep-file into place, standing
	// in for a real compiler's -MM output.
	compile := task.CPP(source, task.CPPOptions{
		CompileCmd: []string{"true"},
		ProbeCmd:   []string{"cp", depFixture, dep},
		ObjPath:    obj,
		DepPath:    dep,
	}, nil, "compile main.cpp")
	if err := reg.Register(compile); err != nil {
		t.Fatalf("registering compile: %v", err)
	}

	if err := newRun(reg).Resolve([]string{obj}, "test"); err == nil {
		t.Fatal("expected an error when a discovered dependency collides with a registered target")
	}
}

func TestLINKDerivesPaths(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	exe := filepath.Join(dir, "dist", "game")
	objects := []string{"a.o", "b.o"}

	tsk := task.LINK(objects, task.LINKOptions{
		LinkCmd: []string{"true"},
		ExePath: exe,
	}, "link game")

	if len(tsk.Targets) != 1 || tsk.Targets[0] != exe {
		t.Errorf("got targets %v, wanted [%s]", tsk.Targets, exe)
	}
	if len(tsk.Prerequisites) != 2 {
		t.Errorf("got %d prerequisites, wanted 2", len(tsk.Prerequisites))
	}
}
