package scheduler

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadMakefileDepsSingleLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.cc.make")
	if err := os.WriteFile(path, []byte("foo.o: foo.cc foo.h bar.h\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got := readMakefileDeps(path)
	want := []string{"foo.h", "bar.h"}
	if len(got) != len(want) {
		t.Fatalf("readMakefileDeps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReadMakefileDepsContinuationLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.cc.make")
	content := "foo.o: foo.cc \\\n  foo.h \\\n  bar.h\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got := readMakefileDeps(path)
	want := []string{"foo.h", "bar.h"}
	if len(got) != len(want) {
		t.Fatalf("readMakefileDeps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReadMakefileDepsMissingFile(t *testing.T) {
	if got := readMakefileDeps(filepath.Join(t.TempDir(), "missing.make")); got != nil {
		t.Errorf("readMakefileDeps on a missing file = %v, want nil", got)
	}
}

func TestReadMakefileDepsEmptyPath(t *testing.T) {
	if got := readMakefileDeps(""); got != nil {
		t.Errorf("readMakefileDeps(\"\") = %v, want nil", got)
	}
}
