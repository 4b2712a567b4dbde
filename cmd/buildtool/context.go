package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/VKCOM/modbuild/internal/engine"
	"github.com/VKCOM/modbuild/internal/scheduler"
)

// sharedFlags bundles the options every build-shaped subcommand (build, run,
// test, bench) accepts, grounded on original_source/buildtool.py's main()
// argument set for its Release/Debug/clang toggles.
type sharedFlags struct {
	srcRoot  string
	buildDir string
	debug    bool
	useClang bool
	incFlags []string
}

func addSharedFlags(cmd *cobra.Command, f *sharedFlags) {
	cmd.Flags().StringVar(&f.srcRoot, "src-root", ".", "project source root")
	cmd.Flags().StringVar(&f.buildDir, "build-dir", "obj", "build output directory")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "use the debug build profile instead of release")
	cmd.Flags().BoolVar(&f.useClang, "clang", false, "drive clang + P1689 scanning instead of gcc's module mapper")
	cmd.Flags().StringArrayVarP(&f.incFlags, "include", "I", nil, "extra -I include directory (repeatable)")
}

// newTargetForEntry builds a fresh BuildContext and Target rooted at
// f.buildDir/f.srcRoot, ready to Compile entryPoint.
func newTargetForEntry(f *sharedFlags, outFile string) *scheduler.Target {
	cfg := scheduler.DebugConfig(f.useClang)
	if !f.debug {
		cfg = scheduler.ReleaseConfig(f.useClang)
	}
	cfg.SrcDir = f.srcRoot
	cfg.OutFile = outFile
	for _, dir := range f.incFlags {
		cfg.IncFlags = append(cfg.IncFlags, "-I"+dir)
	}

	ctx := engine.NewBuildContext(f.buildDir, f.srcRoot)
	return scheduler.NewTarget(f.srcRoot, cfg, ctx, startTime())
}

func startTime() time.Time {
	return time.Now()
}
