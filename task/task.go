// Package task builds registry.Task values for the three recipe shapes a
// build description authors: a generic RULE, a CPP compile, and a LINK.
// It knows nothing about the registry's scheduling; it only knows how to
// compute keys and bodies the way §4.6-4.8 specify.
package task

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ixchow/maek/depfile"
	"github.com/ixchow/maek/errs"
	"github.com/ixchow/maek/key"
	"github.com/ixchow/maek/platform"
	"github.com/ixchow/maek/registry"
	"github.com/ixchow/maek/target"
)

// RULE builds a generic recipe task per §4.6: resolve prerequisites, then
// run each recipe command in order, then invalidate the hash-cache entries
// of every target. A task claiming any abstract target has no KeyFunc
// (Invariant B) and therefore reruns on every driver invocation.
func RULE(targets, prerequisites []string, recipe [][]string, label string) *registry.Task {
	t := &registry.Task{
		Targets:       targets,
		Prerequisites: prerequisites,
		Label:         label,
	}
	t.Body = func(r *registry.Run) error {
		if err := r.Resolve(prerequisites, label); err != nil {
			return err
		}
		for i, cmd := range recipe {
			cmdLabel := fmt.Sprintf("%s[%d/%d]", label, i+1, len(recipe))
			if err := r.RunCommand(cmd, cmdLabel); err != nil {
				return err
			}
		}
		for _, tgt := range targets {
			r.Hash.Invalidate(tgt)
		}
		return nil
	}

	if !t.IsAbstract() {
		t.KeyFunc = func(r *registry.Run) (key.Key, error) {
			if err := r.Resolve(prerequisites, label); err != nil {
				return nil, err
			}
			all := append(append([]string{}, targets...), prerequisites...)
			return key.Key([]any{recipe, r.Hash.HashFiles(all)}), nil
		}
	}
	return t
}

// CPPOptions configures a compile task beyond the platform-merged defaults:
// CompileCmd and ProbeCmd are the platform-specific command vectors, built
// by the caller (the platform adapter's job, out of this package's scope)
// with the object, dep-file and source paths already in place.
type CPPOptions struct {
	CompileCmd []string
	ProbeCmd   []string
	ObjPath    string
	DepPath    string
}

// CPP builds a compile task per §4.7: source -> object, with dynamic header
// discovery via a dependency-probe command and a make-style dep-file.
func CPP(source string, opts CPPOptions, extraDepends []string, label string) *registry.Task {
	explicit := append([]string{source}, extraDepends...)

	t := &registry.Task{
		Targets:       []string{opts.ObjPath},
		Prerequisites: explicit,
		Label:         label,
	}

	runProbeAndCheck := func(r *registry.Run) ([]string, error) {
		discovered, err := depfile.Parse(opts.DepPath, explicit)
		if err != nil {
			var be *errs.BuildError
			if errors.As(err, &be) {
				r.Logger.Error("%s", err)
			}
			return nil, err
		}
		for _, d := range discovered {
			if _, ok := r.Registry.Lookup(target.ToPosix(d)); ok {
				err := errs.New("dependency file %q lists %q, which is a registered target of another task", opts.DepPath, d)
				r.Logger.Error("%s", err)
				return nil, err
			}
		}
		return discovered, nil
	}

	t.Body = func(r *registry.Run) error {
		if err := r.Resolve(explicit, label); err != nil {
			return err
		}
		r.Hash.Invalidate(opts.ObjPath)
		r.Hash.Invalidate(opts.DepPath)

		if err := os.MkdirAll(filepath.Dir(opts.ObjPath), 0o755); err != nil {
			return fmt.Errorf("maek: creating directory for %q: %w", opts.ObjPath, err)
		}
		if err := os.MkdirAll(filepath.Dir(opts.DepPath), 0o755); err != nil {
			return fmt.Errorf("maek: creating directory for %q: %w", opts.DepPath, err)
		}

		if err := r.RunCommand(opts.CompileCmd, label+" compile"); err != nil {
			return err
		}
		if err := r.RunCommand(opts.ProbeCmd, label+" deps"); err != nil {
			return err
		}

		if _, err := runProbeAndCheck(r); err != nil {
			return err
		}
		return nil
	}

	t.KeyFunc = func(r *registry.Run) (key.Key, error) {
		if err := r.Resolve(explicit, label); err != nil {
			return nil, err
		}
		discovered, err := runProbeAndCheck(r)
		if err != nil {
			return nil, err
		}
		all := append([]string{opts.ObjPath, opts.DepPath}, explicit...)
		all = append(all, discovered...)
		return key.Key([]any{opts.CompileCmd, opts.ProbeCmd, r.Hash.HashFiles(all)}), nil
	}

	return t
}

// LINKOptions configures a link task with the platform-specific command
// vector already rendered (objects and libs spliced in by the caller).
type LINKOptions struct {
	LinkCmd []string
	ExePath string
}

// LINK builds a link task per §4.8: objects -> executable.
func LINK(objects []string, opts LINKOptions, label string) *registry.Task {
	t := &registry.Task{
		Targets:       []string{opts.ExePath},
		Prerequisites: objects,
		Label:         label,
	}
	t.Body = func(r *registry.Run) error {
		if err := r.Resolve(objects, label); err != nil {
			return err
		}
		r.Hash.Invalidate(opts.ExePath)
		if err := os.MkdirAll(filepath.Dir(opts.ExePath), 0o755); err != nil {
			return fmt.Errorf("maek: creating directory for %q: %w", opts.ExePath, err)
		}
		return r.RunCommand(opts.LinkCmd, label)
	}
	t.KeyFunc = func(r *registry.Run) (key.Key, error) {
		if err := r.Resolve(objects, label); err != nil {
			return nil, err
		}
		all := append([]string{opts.ExePath}, objects...)
		return key.Key([]any{opts.LinkCmd, r.Hash.HashFiles(all)}), nil
	}
	return t
}

// ObjPath derives a compile task's object path from a base and platform
// options: ObjPrefix + base + ObjSuffix.
func ObjPath(base string, o platform.Options) string {
	return o.ObjPrefix + base + o.ObjSuffix
}

// DepPath derives a compile task's dependency-info path from its object
// base: ObjPrefix + base + ".d".
func DepPath(base string, o platform.Options) string {
	return o.ObjPrefix + base + ".d"
}

// ExePath derives a link task's executable path from a base and platform
// options.
func ExePath(base string, o platform.Options) string {
	return base + o.ExeSuffix
}
