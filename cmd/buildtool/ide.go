package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/VKCOM/modbuild/internal/compiledb"
	"github.com/VKCOM/modbuild/internal/engine"
	"github.com/VKCOM/modbuild/internal/scheduler"
)

// newIdeCommand is component C10: emit a compile_commands.json covering
// every .cc/.cpp/.c file under the given roots, grounded on
// original_source/buildtool.py's `ide` subparser
// (CompilationDatabase.build/write).
func newIdeCommand() *cobra.Command {
	var f sharedFlags
	var outPath string

	cmd := &cobra.Command{
		Use:   "ide [root...]",
		Short: "Emit a compile_commands.json for IDE integration",
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := args
			if len(roots) == 0 {
				roots = []string{f.srcRoot}
			}

			cfg := scheduler.ReleaseConfig(f.useClang)
			if f.debug {
				cfg = scheduler.DebugConfig(f.useClang)
			}
			cfg.SrcDir = f.srcRoot
			for _, dir := range f.incFlags {
				cfg.IncFlags = append(cfg.IncFlags, "-I"+dir)
			}

			wd, err := os.Getwd()
			if err != nil {
				return err
			}

			entries, err := compiledb.Build(roots, wd, func(path string) ([]string, error) {
				return ideCommandLine(cfg, path), nil
			})
			if err != nil {
				return err
			}

			data, err := compiledb.Marshal(entries)
			if err != nil {
				return err
			}
			return os.WriteFile(outPath, data, 0644)
		},
	}

	addSharedFlags(cmd, &f)
	cmd.Flags().StringVarP(&outPath, "output", "o", "compile_commands.json", "output JSON path")
	return cmd
}

// ideCommandLine renders "<compiler> <flags> -c path" for clangd: the C or
// C++ compiler and its configured flags, the configured include flags and
// the include flags inferred from path's directory. It adds no -o, no module
// flags, no dependency-file flags and no BUILD.yaml flags; assembly files
// get the C++ compiler and flags.
func ideCommandLine(cfg scheduler.BuildConfig, path string) []string {
	cxx := cfg.CXX
	flags := append([]string{}, cfg.CXXFlags...)
	if typ, ok := engine.InferSourceType(path); ok && typ == engine.TypeC {
		cxx = cfg.CC
		flags = append([]string{}, cfg.CFlags...)
	}
	flags = append(flags, cfg.IncFlags...)
	flags = append(flags, engine.InferIncludeFlags(filepath.Dir(path))...)

	args := append([]string{cxx}, flags...)
	args = append(args, "-c", path)
	return args
}
