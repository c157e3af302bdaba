// Package app implements maek's CLI behavior; the cobra command in
// cli/cmd defers execution to the exported methods here, exactly as the
// teacher's cli/cmd defers to cli/app.
package app

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/FollowTheProcess/msg"
	"github.com/fatih/color"
	"github.com/ixchow/maek"
	"github.com/juju/ansiterm/tabwriter"
)

// Options holds the CLI flags, at their zero value if unset.
type Options struct {
	Force   bool // --force: treat every task as a cache miss
	Verbose bool // --verbose/-v: raise the logger to Debug level
	Clean   bool // --clean: remove the persisted cache file and exit
	List    bool // --list: print registered targets and exit
}

// App builds a maek.Driver, lets Register populate it with a build
// description's RULE/CPP/LINK calls, and wires it to the CLI flags and root
// target arguments.
type App struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Options *Options

	// Register is called once, after the Driver is constructed with the
	// flags' Verbose/Force settings, to let the build description declare
	// its tasks against the real Driver instance.
	Register func(d *maek.Driver) error

	// DefaultRoots is used when the user passes no target arguments and
	// --list/--clean were not given, matching §6's "zero targets means
	// build the default".
	DefaultRoots []string

	printer msg.Printer
}

// Run is the CLI entry point: build the Driver, let the build description
// register its tasks, then dispatch on flags/targets.
func (a *App) Run(targets []string) error {
	a.printer = msg.Default()
	a.printer.Stdout = a.Stdout
	a.printer.Stderr = a.Stderr

	d, err := maek.NewDriver(a.Options.Verbose, a.Options.Force)
	if err != nil {
		return err
	}
	d.IO.Stdout = a.Stdout
	d.IO.Stderr = a.Stderr
	d.IO.Echo = a.Stdout

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := d.LoadEnv(cwd); err != nil {
		return err
	}

	if a.Register != nil {
		if err := a.Register(d); err != nil {
			return err
		}
	}

	switch {
	case a.Options.Clean:
		return a.clean()
	case a.Options.List:
		return a.list(d)
	default:
		roots := targets
		if len(roots) == 0 {
			roots = a.DefaultRoots
		}
		if len(roots) == 0 {
			return a.list(d)
		}
		if err := d.Update(roots); err != nil {
			return err
		}
		a.printer.Good("Build complete")
		return nil
	}
}

// list prints every registered target and its task's label, sorted, per
// the teacher's showTasks.
func (a *App) list(d *maek.Driver) error {
	writer := tabwriter.NewWriter(a.Stdout, 0, 8, 1, '\t', tabwriter.AlignRight)

	titleStyle := color.New(color.FgHiWhite, color.Bold)
	targetStyle := color.New(color.FgHiCyan, color.Bold)
	labelStyle := color.New(color.FgHiBlack, color.Italic)

	fmt.Fprintln(a.Stdout, "Registered targets:")
	titleStyle.Fprintln(writer, "Target\tTask")

	names := d.Registry.Targets()
	sort.Strings(names)
	for _, name := range names {
		t, _ := d.Registry.Lookup(name)
		line := fmt.Sprintf("%s\t%s\n", targetStyle.Sprint(name), labelStyle.Sprint(t.Label))
		fmt.Fprint(writer, line)
	}
	return writer.Flush()
}

// clean removes the persisted cache file, per the teacher's own --clean,
// narrowed to the cache only: maek's task outputs aren't declared as a
// distinct "outputs" list the way the teacher's spokfile tasks are.
func (a *App) clean() error {
	if err := os.Remove(maek.CachePath); err != nil {
		if os.IsNotExist(err) {
			a.printer.Good("Nothing to remove")
			return nil
		}
		return fmt.Errorf("could not remove %s: %w", maek.CachePath, err)
	}
	a.printer.Textf("Removed %s", maek.CachePath)
	a.printer.Good("Done")
	return nil
}
