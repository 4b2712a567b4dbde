package main

import (
	"github.com/spf13/cobra"

	"github.com/VKCOM/modbuild/internal/scheduler"
)

// newBenchCommand mirrors newTestCommand for *_bench.cc/.cpp files,
// grounded on original_source/buildtool.py's `bench` subparser.
func newBenchCommand(jobs int) *cobra.Command {
	var f sharedFlags
	var harnessMain string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Build the benchmark binary from discovered *_bench.cc files",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := newTargetForEntry(&f, "bench")
			return scheduler.BuildBenchBinary(target, harnessMain, f.srcRoot)
		},
	}

	addSharedFlags(cmd, &f)
	cmd.Flags().StringVar(&harnessMain, "harness", "benchmain.cc", "benchmark harness entry point source")
	return cmd
}
