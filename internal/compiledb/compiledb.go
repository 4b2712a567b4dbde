// Package compiledb is component C10: the `ide` subcommand's compilation
// database emitter, grounded on original_source/buildtool.py's
// CompilationDatabase class. It walks a source tree independently of any
// entry point's reachability graph (spec.md §6 only fixes the JSON shape;
// the discovery walk is SPEC_FULL.md §4 item 6's addition) and emits the
// standard clang `compile_commands.json` array.
package compiledb

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/VKCOM/modbuild/internal/engine"
)

// skippableDirs are conventional directories a source-tree walk should
// never descend into.
var skippableDirs = map[string]bool{
	".git": true, "obj": true, "bin": true, "vcpkg_installed": true, ".cache": true,
}

// Entry is one compile_commands.json record. encoding/json is used because
// this is a fixed external wire format consumed by IDEs/clangd, not a free
// choice of serialization library (DESIGN.md).
type Entry struct {
	File      string   `json:"file"`
	Directory string   `json:"directory"`
	Arguments []string `json:"arguments"`
}

// CommandBuilder renders the compiler invocation an IDE should use for its
// semantic analysis of path, without actually compiling it.
type CommandBuilder func(path string) ([]string, error)

// Build walks every root directory for .cc/.cpp/.c files and renders one
// Entry per file via build, grounded on CompilationDatabase.build's
// directory walk plus per-file command rendering.
func Build(roots []string, workDir string, build CommandBuilder) ([]Entry, error) {
	var entries []Entry

	for _, root := range roots {
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if skippableDirs[info.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if !engine.IsCppImplSuffix(path) {
				return nil
			}

			args, buildErr := build(path)
			if buildErr != nil {
				return buildErr
			}

			entries = append(entries, Entry{
				File:      path,
				Directory: workDir,
				Arguments: args,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// Marshal renders entries as the standard compile_commands.json array.
func Marshal(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
