package main

import (
	"os"
	"syscall"

	"github.com/spf13/cobra"
)

// newRunCommand is SPEC_FULL.md §4 item 2: build the entry point then exec
// the resulting binary in place, passing through any trailing CLI args,
// grounded on original_source/buildtool.py's `run` subparser.
func newRunCommand(jobs int) *cobra.Command {
	var f sharedFlags

	cmd := &cobra.Command{
		Use:                "run <entry.cc> [-- args...]",
		Short:              "Build an entry point and exec the resulting binary",
		Args:               cobra.MinimumNArgs(1),
		DisableFlagParsing: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := newTargetForEntry(&f, "a.out")

			if err := target.CompileMany(args[:1], jobs); err != nil {
				return err
			}
			if err := target.Link(); err != nil {
				return err
			}

			binPath := target.OutputPath()
			runArgs := append([]string{binPath}, args[1:]...)
			return syscall.Exec(binPath, runArgs, os.Environ())
		},
	}

	addSharedFlags(cmd, &f)
	return cmd
}
