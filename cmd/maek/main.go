// Command maek is the reference maekfile for the sample game build
// described in the engine's end-to-end scenarios: compile Player.cpp,
// Level.cpp, and game.cpp into dist/game, and test.cpp into a :test phase
// that always runs the resulting binary.
//
// A maekfile is an ordinary Go program: it imports package maek, declares
// tasks with RULE/CPP/LINK, then hands control to the CLI via cli/cmd.
//
// Source paths below are relative to the example/ directory, so this
// binary is meant to be run with that directory as the working directory
// (e.g. `cd example && go run github.com/ixchow/maek/cmd/maek`).
package main

import (
	"os"

	"github.com/FollowTheProcess/msg"
	"github.com/ixchow/maek"
	"github.com/ixchow/maek/cli/cmd"
)

func main() {
	rootCmd := cmd.BuildRootCmd(register, []string{":dist"})
	if err := rootCmd.Execute(); err != nil {
		msg.Failf("%s", err)
		os.Exit(1)
	}
}

// register declares the sample game's tasks against d, matching §8's
// end-to-end scenarios: four compiles, one link producing dist/game, and
// an abstract :test phase that builds and always runs test/game-test.
func register(d *maek.Driver) error {
	opts := maek.Options{}

	playerObj, err := d.CPP("Player.cpp", "", opts)
	if err != nil {
		return err
	}
	levelObj, err := d.CPP("Level.cpp", "", opts)
	if err != nil {
		return err
	}
	gameObj, err := d.CPP("game.cpp", "", opts)
	if err != nil {
		return err
	}
	testObj, err := d.CPP("test.cpp", "", opts)
	if err != nil {
		return err
	}

	gameExe, err := d.LINK([]string{playerObj, levelObj, gameObj}, "dist/game", opts)
	if err != nil {
		return err
	}
	testExe, err := d.LINK([]string{playerObj, levelObj, testObj}, "test/game-test", opts)
	if err != nil {
		return err
	}

	if err := d.RULE([]string{":dist"}, []string{gameExe}, nil); err != nil {
		return err
	}
	return d.RULE([]string{":test"}, []string{testExe}, [][]string{{testExe}})
}
