package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newBuildCommand is spec.md §1's core operation: compile an entry point's
// transitive closure and link it, grounded on
// original_source/buildtool.py's `build` subparser.
func newBuildCommand(jobs int) *cobra.Command {
	var f sharedFlags
	var outFile string

	cmd := &cobra.Command{
		Use:   "build <entry.cc> [more.cc...]",
		Short: "Compile and link one or more entry points",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := outFile
			if name == "" {
				name = "a.out"
			}
			target := newTargetForEntry(&f, name)

			if err := target.CompileMany(args, jobs); err != nil {
				return err
			}
			if err := target.Link(); err != nil {
				return err
			}
			fmt.Println(target.OutputPath())
			return nil
		},
	}

	addSharedFlags(cmd, &f)
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "output binary name")
	return cmd
}
