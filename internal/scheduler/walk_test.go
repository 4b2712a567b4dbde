package scheduler

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestWalkDirSkipsConventionalDirectories(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "src", "foo.cc"))
	mustWriteFile(t, filepath.Join(root, "obj", "foo.cc.o"))
	mustWriteFile(t, filepath.Join(root, ".git", "HEAD"))
	mustWriteFile(t, filepath.Join(root, "vcpkg_installed", "x64-linux", "include", "fmt", "core.h"))

	var visited []string
	err := walkDir(root, func(path string, isDir bool) error {
		if !isDir {
			rel, _ := filepath.Rel(root, path)
			visited = append(visited, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	sort.Strings(visited)
	want := []string{"src/foo.cc"}
	if len(visited) != len(want) || visited[0] != want[0] {
		t.Errorf("walkDir visited = %v, want %v", visited, want)
	}
}

func mustWriteFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte{}, 0644); err != nil {
		t.Fatal(err)
	}
}
