package cmd

import "fmt"

var (
	version   = "dev" // maek version, set at compile time by ldflags
	commit    = ""    // maek version's commit hash, set at compile time by ldflags
	buildDate = ""    // build timestamp, set at compile time by ldflags
	builtBy   = ""    // build agent, set at compile time by ldflags
)

var versionTemplate = fmt.Sprintf(
	`{{printf "%s %s\n%s %s\n%s %s\n%s %s\n"}}`,
	headerStyle.Sprint("Version:"),
	version,
	headerStyle.Sprint("Commit:"),
	commit,
	headerStyle.Sprint("Build Date:"),
	buildDate,
	headerStyle.Sprint("Built By:"),
	builtBy,
)
