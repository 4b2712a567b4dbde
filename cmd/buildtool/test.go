package main

import (
	"github.com/spf13/cobra"

	"github.com/VKCOM/modbuild/internal/scheduler"
)

// newTestCommand is SPEC_FULL.md §4 item 3: compile the fixed test harness
// plus every discovered *_test.cc/.cpp file and link them into one binary,
// grounded on original_source/buildtool.py's `test` subparser.
func newTestCommand(jobs int) *cobra.Command {
	var f sharedFlags
	var harnessMain string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Build the test binary from discovered *_test.cc files",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := newTargetForEntry(&f, "test")
			return scheduler.BuildTestBinary(target, harnessMain, f.srcRoot)
		},
	}

	addSharedFlags(cmd, &f)
	cmd.Flags().StringVar(&harnessMain, "harness", "testmain.cc", "test harness entry point source")
	return cmd
}
