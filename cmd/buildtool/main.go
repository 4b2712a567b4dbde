// Command buildtool is the CLI glue (spec.md §1's explicitly out-of-scope
// argument parser) wiring the core engine/scheduler packages into runnable
// subcommands, grounded on original_source/buildtool.py's argparse
// subparsers (`build`, `run`, `ide`, `test`, `bench`) and
// cmd/nocc-daemon/main.go's global-flags-then-dispatch shape.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/VKCOM/modbuild/internal/common"
)

func failedStart(err interface{}) {
	fmt.Fprintln(os.Stderr, "[modbuild]", err)
	os.Exit(1)
}

func main() {
	logFileName := common.CmdEnvString("A filename to log, nothing by default.\nErrors are duplicated to stderr always.", "",
		"log-filename", "MODBUILD_LOG_FILENAME")
	logVerbosity := common.CmdEnvInt("Logger verbosity level for INFO (-1 off, default 0, max 2).\nErrors are logged always.", 0,
		"log-verbosity", "MODBUILD_LOG_VERBOSITY")
	jobs := common.CmdEnvInt("Number of files compiled in parallel.\nBy default, it's a number of CPUs on the current machine.", int64(runtime.NumCPU()),
		"jobs", "MODBUILD_JOBS")
	showVersionAndExit := common.CmdEnvBool("Show version and exit.", false, "version", "")

	// Global flags are parsed first (stdlib flag, same combinator the
	// teacher uses), leaving the subcommand and its own flags in
	// flag.Args() for cobra to parse on its own terms.
	common.ParseCmdFlagsCombiningWithEnv()

	if *showVersionAndExit {
		fmt.Println(common.GetVersion())
		os.Exit(0)
	}

	if err := common.MakeGlobalLogger(*logFileName, *logVerbosity); err != nil {
		failedStart(err)
	}

	root := newRootCommand(int(*jobs))
	root.SetArgs(flag.Args())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(jobs int) *cobra.Command {
	root := &cobra.Command{
		Use:   "buildtool",
		Short: "Incremental build orchestrator for C++20/23 modular projects",
	}

	root.AddCommand(
		newBuildCommand(jobs),
		newRunCommand(jobs),
		newIdeCommand(),
		newTestCommand(jobs),
		newBenchCommand(jobs),
	)
	return root
}
