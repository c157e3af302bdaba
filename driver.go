// Package maek is a small, content-addressed parallel build engine. A
// build description (a "maekfile") imports this package, constructs a
// Driver with NewDriver, calls its RULE/CPP/LINK methods to declare tasks,
// then Update to drive the build against a set of root targets.
package maek

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ixchow/maek/cache"
	"github.com/ixchow/maek/errs"
	"github.com/ixchow/maek/hash"
	"github.com/ixchow/maek/iostream"
	"github.com/ixchow/maek/jobs"
	"github.com/ixchow/maek/logger"
	"github.com/ixchow/maek/platform"
	"github.com/ixchow/maek/registry"
	"github.com/ixchow/maek/target"
	"github.com/ixchow/maek/task"
	"github.com/joho/godotenv"
)

// Version is maek's version string, set at compile time by ldflags in
// cmd/maek, mirroring the teacher's own linker-injected version.
var Version = "dev"

// CachePath is the persisted cache file's name, relative to the current
// working directory.
const CachePath = cache.FileName

// Options is §6's per-call/global option map: objPrefix, objSuffix,
// exeSuffix, depends, CPPFlags, LINKLibs. A zero Options merges in nothing
// beyond the Driver's own platform defaults.
type Options = platform.Options

// OS is the platform tag for the host this process is running on, per
// §6's "OS — platform tag".
var OS = platform.Current()

// Driver owns one build description's registry and drives update(roots)
// per §4.9: announce, load cache, resolve, persist, summarize.
type Driver struct {
	Registry *registry.Registry
	Platform platform.Tag
	Defaults platform.Options
	Logger   logger.Logger
	IO       iostream.IOStream
	Force    bool
	Jobs     *jobs.Limiter

	cachePath string
}

// NewDriver builds a Driver for platform.Current(), with global option
// defaults, a fresh registry, and a Logger/IOStream wired to process stdio.
// verbose raises the logger to Debug level; force treats every task as a
// cache miss regardless of its stored key.
func NewDriver(verbose, force bool) (*Driver, error) {
	tag := platform.Current()
	log, err := logger.New(verbose)
	if err != nil {
		return nil, fmt.Errorf("maek: building logger: %w", err)
	}
	return &Driver{
		Registry:  registry.New(),
		Platform:  tag,
		Defaults:  platform.Default(tag),
		Logger:    log,
		IO:        iostream.OS(),
		Force:     force,
		Jobs:      jobs.Default(),
		cachePath: CachePath,
	}, nil
}

// LoadEnv loads a ".env" file from dir if present, per the ambient-stack
// convenience the teacher's own CLI offers build descriptions. A missing
// .env file is not an error.
func (d *Driver) LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("maek: loading %s: %w", path, err)
	}
	d.Logger.Debug("loaded .env file at %s", path)
	return nil
}

// RULE registers a generic recipe task; unlike CPP and LINK it returns no
// path, only an error if registration fails. Targets are resolved by name,
// per §6.
func (d *Driver) RULE(targets, prerequisites []string, recipe [][]string) error {
	label := describeTargets(targets)
	t := task.RULE(normalizeAll(targets), normalizeAll(prerequisites), recipe, label)
	return d.Registry.Register(t)
}

// CPP registers a compile task for source and returns the object path it
// will produce, per §6's "CPP(source, object_base?, opts?) -> object_path".
// An empty objectBase defaults to the source path with its extension
// stripped, so "Player.cpp" compiles to "objs/Player.o".
func (d *Driver) CPP(source string, objectBase string, opts platform.Options) (string, error) {
	merged := d.Defaults.Merge(opts)
	source = target.ToPosix(source)
	if objectBase == "" {
		objectBase = strings.TrimSuffix(source, path.Ext(source))
	}
	objPath := target.ToPosix(task.ObjPath(objectBase, merged))
	depPath := task.DepPath(objectBase, merged)

	cppFlags := append([]string{}, merged.CPPFlags...)
	compileCmd := append([]string{"c++", "-std=c++20", "-Wall", "-Werror", "-g"}, cppFlags...)
	compileCmd = append(compileCmd, "-c", "-o", objPath, source)

	probeCmd := append([]string{"c++", "-std=c++20"}, cppFlags...)
	probeCmd = append(probeCmd, "-MM", "-MT", "x ", "-MF", depPath, source)

	label := fmt.Sprintf("compile %s", source)
	t := task.CPP(source, task.CPPOptions{
		CompileCmd: compileCmd,
		ProbeCmd:   probeCmd,
		ObjPath:    objPath,
		DepPath:    depPath,
	}, normalizeAll(merged.Depends), label)

	if err := d.Registry.Register(t); err != nil {
		return "", err
	}
	return objPath, nil
}

// LINK registers a link task for objects and returns the executable path
// it will produce, per §6's "LINK(objects, exe_base, opts?) -> exe_path".
func (d *Driver) LINK(objects []string, exeBase string, opts platform.Options) (string, error) {
	merged := d.Defaults.Merge(opts)
	exePath := target.ToPosix(task.ExePath(exeBase, merged))

	linkCmd := append([]string{"c++", "-o", exePath}, normalizeAll(objects)...)
	linkCmd = append(linkCmd, merged.LINKLibs...)

	label := fmt.Sprintf("link %s", exePath)
	t := task.LINK(normalizeAll(objects), task.LINKOptions{
		LinkCmd: linkCmd,
		ExePath: exePath,
	}, label)

	if err := d.Registry.Register(t); err != nil {
		return "", err
	}
	return exePath, nil
}

// Update drives the build per §4.9: announce version and JOBS, clear
// in-memory cached keys, load the persisted cache, resolve roots, persist
// cached keys of every task that has one, print a summary. A BuildError
// from resolution is printed as "FAILED: <message>" and returned; the
// cache is still persisted first, since partial progress must survive.
func (d *Driver) Update(roots []string) error {
	defer d.Logger.Sync() //nolint:errcheck

	d.Logger.Debug("maek %s, JOBS=%d", Version, d.Jobs.JOBS())

	c, err := cache.Load(d.cachePath)
	if err != nil {
		return fmt.Errorf("maek: loading cache: %w", err)
	}

	kept, dropped := d.Registry.InstallCache(c)
	d.Logger.Debug("cache: %d entries assigned, %d stale entries dropped", kept, dropped)

	run := registry.NewRun(d.Registry, hash.New(), d.Jobs, d.Logger, d.IO, d.Force)
	resolveErr := run.Resolve(normalizeAll(roots), "user")

	newCache := cache.New()
	for _, t := range d.Registry.Tasks() {
		if k, ok := t.GetCachedKey(); ok {
			newCache.Set(t.Targets[0], k)
		}
	}
	if saveErr := newCache.Save(d.cachePath); saveErr != nil {
		d.Logger.Error("failed to persist cache: %s", saveErr)
	}

	if resolveErr != nil {
		var be *errs.BuildError
		if errors.As(resolveErr, &be) {
			fmt.Fprintf(d.IO.Stderr, "FAILED: %s\n", be.Error())
			return be
		}
		return resolveErr
	}

	d.Logger.Debug("update complete: %d hash cache hits", run.Hash.Hits())
	return nil
}

func normalizeAll(ts []string) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = target.ToPosix(t)
	}
	return out
}

func describeTargets(ts []string) string {
	if len(ts) == 0 {
		return "rule"
	}
	return ts[0]
}
