// Package cmd wires maek's cobra root command to package app. A build
// description's own main package constructs a *cobra.Command with
// BuildRootCmd, supplying its own Register callback to declare tasks.
package cmd

import (
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/ixchow/maek"
	"github.com/ixchow/maek/cli/app"
	"github.com/spf13/cobra"
)

// BuildRootCmd builds the root maek CLI command. register is called once
// per invocation, after flags are parsed, to let a build description
// declare its RULE/CPP/LINK tasks against the real Driver. defaultRoots is
// used when the user passes no target arguments.
func BuildRootCmd(register func(d *maek.Driver) error, defaultRoots []string) *cobra.Command {
	options := &app.Options{}
	a := &app.App{
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Options:      options,
		Register:     register,
		DefaultRoots: defaultRoots,
	}

	rootCmd := &cobra.Command{
		Use:           "maek [targets]...",
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Short:         "A small, content-addressed parallel build engine",
		Long: heredoc.Doc(`

		A small, content-addressed parallel build engine.

		maek resolves its dependency graph on demand, runs independent tasks
		concurrently up to a job cap, and skips work whose inputs and
		outputs are unchanged since the last successful run.
		`),
		Example: heredoc.Doc(`

		# Build the default target(s)
		$ maek

		# Build a specific target
		$ maek :test

		# List every registered target
		$ maek --list

		# Force a full rebuild, ignoring the cache
		$ maek --force

		# Remove the persisted cache
		$ maek --clean
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Run(args)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&options.Force, "force", false, "Treat every task as a cache miss and rebuild everything.")
	flags.BoolVarP(&options.Verbose, "verbose", "v", false, "Enable debug logging.")
	flags.BoolVar(&options.Clean, "clean", false, "Remove the persisted cache file and exit.")
	flags.BoolVar(&options.List, "list", false, "List every registered target and exit.")

	rootCmd.SetUsageTemplate(usageTemplate)
	rootCmd.SetVersionTemplate(versionTemplate)

	return rootCmd
}
