package scheduler

import (
	"io/fs"
	"path/filepath"
)

// walkDir visits every entry under root, skipping the conventional ignore
// directories (.git, any obj tree, vcpkg's build cache) that a source-tree
// walk should never descend into.
func walkDir(root string, visit func(path string, isDir bool) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "obj", "bin", "vcpkg_installed", ".cache":
				return filepath.SkipDir
			}
		}
		return visit(path, d.IsDir())
	})
}
