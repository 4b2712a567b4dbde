package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirectoryConfigResolveNoDescriptor(t *testing.T) {
	dir := t.TempDir()
	paths := NewPathCache()
	cache := NewDirectoryConfigCache(t.TempDir())

	cfg, err := cache.Resolve(paths, dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.CFlags) != 0 || len(cfg.LDFlags) != 0 {
		t.Errorf("Resolve with no BUILD.yaml = %+v, want empty flags", cfg)
	}
}

func TestDirectoryConfigResolveParsesYAML(t *testing.T) {
	dir := t.TempDir()
	buildDir := t.TempDir()
	descriptor := "CFLAGS:\n  - -DFOO\nLDFLAGS:\n  - -lfoo\n"
	if err := os.WriteFile(filepath.Join(dir, "BUILD.yaml"), []byte(descriptor), 0644); err != nil {
		t.Fatal(err)
	}

	paths := NewPathCache()
	cache := NewDirectoryConfigCache(buildDir)

	cfg, err := cache.Resolve(paths, dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.CFlags) != 1 || cfg.CFlags[0] != "-DFOO" {
		t.Errorf("CFlags = %v, want [-DFOO]", cfg.CFlags)
	}
	if len(cfg.LDFlags) != 1 || cfg.LDFlags[0] != "-lfoo" {
		t.Errorf("LDFlags = %v, want [-lfoo]", cfg.LDFlags)
	}
}

func TestDirectoryConfigResolveIsCached(t *testing.T) {
	dir := t.TempDir()
	buildDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "BUILD.yaml"), []byte("CFLAGS:\n  - -DFOO\n"), 0644); err != nil {
		t.Fatal(err)
	}

	paths := NewPathCache()
	cache := NewDirectoryConfigCache(buildDir)

	first, err := cache.Resolve(paths, dir)
	if err != nil {
		t.Fatal(err)
	}

	// Rewriting the descriptor after the first resolve should not affect a
	// second Resolve call within the same cache instance: in-memory results
	// are cached for the lifetime of the DirectoryConfigCache.
	if err := os.WriteFile(filepath.Join(dir, "BUILD.yaml"), []byte("CFLAGS:\n  - -DBAR\n"), 0644); err != nil {
		t.Fatal(err)
	}

	second, err := cache.Resolve(paths, dir)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("Resolve returned a different *DirectoryConfig on the second call")
	}
	if second.CFlags[0] != "-DFOO" {
		t.Errorf("cached CFlags = %v, want the original [-DFOO]", second.CFlags)
	}
}

func TestFilterCFlagsStripsStd(t *testing.T) {
	in := []string{"-DFOO", "-std=c++17", "-Wall"}
	got := filterCFlags(in)
	want := []string{"-DFOO", "-Wall"}
	if len(got) != len(want) {
		t.Fatalf("filterCFlags(%v) = %v, want %v", in, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("filterCFlags(%v)[%d] = %q, want %q", in, i, got[i], want[i])
		}
	}
}

func TestHandlePkgConfigFailurePropagates(t *testing.T) {
	cache := NewDirectoryConfigCache(t.TempDir())
	cache.pkgConfig = func(args ...string) (string, error) {
		return "", os.ErrNotExist
	}

	_, err := cache.handlePkgConfig("libfoo")
	if err == nil {
		t.Fatal("expected an error when pkg-config fails")
	}
	if _, ok := err.(*PkgConfigFailedError); !ok {
		t.Errorf("error type = %T, want *PkgConfigFailedError", err)
	}
}

func TestHandlePkgConfigParsesOutput(t *testing.T) {
	cache := NewDirectoryConfigCache(t.TempDir())
	cache.pkgConfig = func(args ...string) (string, error) {
		if len(args) > 0 && args[0] == "--cflags" {
			return "-I/usr/include/foo -std=c++20\n", nil
		}
		return "-lfoo -lbar\n", nil
	}

	flags, err := cache.handlePkgConfig("libfoo")
	if err != nil {
		t.Fatal(err)
	}
	if len(flags.CFlags) != 1 || flags.CFlags[0] != "-I/usr/include/foo" {
		t.Errorf("CFlags = %v, want [-I/usr/include/foo] (std stripped)", flags.CFlags)
	}
	if len(flags.LDFlags) != 2 {
		t.Errorf("LDFlags = %v, want 2 entries", flags.LDFlags)
	}
}
