package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMod2CM(t *testing.T) {
	tests := []struct {
		name    string
		srcRoot string
		want    string
	}{
		{"/foo/bar", ".", "foo/bar.pcm"},
		{"foo:part", ".", "foo-part.pcm"},
		{"foo.bar", ".", "foo.bar.pcm"},
	}
	for _, tt := range tests {
		if got := mod2cm(tt.name, tt.srcRoot); got != tt.want {
			t.Errorf("mod2cm(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestModuleRegistryLookupResolvesSameDirectoryModule(t *testing.T) {
	srcRoot := t.TempDir()
	modSrc := filepath.Join(srcRoot, "foo.cc")
	touch(t, modSrc)

	buildDir := t.TempDir()
	paths := NewPathCache()
	registry := NewRegistry(buildDir, srcRoot)
	mr := NewModuleRegistry(srcRoot, buildDir, registry, paths)

	cm, err := mr.Lookup("foo", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cm.SourcePath != modSrc {
		t.Errorf("SourcePath = %q, want %q", cm.SourcePath, modSrc)
	}
	wantInterface := filepath.Join(buildDir, "gcm.cache", "foo.pcm")
	if cm.InterfacePath != wantInterface {
		t.Errorf("InterfacePath = %q, want %q", cm.InterfacePath, wantInterface)
	}
}

func TestModuleRegistryLookupIsMemoized(t *testing.T) {
	srcRoot := t.TempDir()
	touch(t, filepath.Join(srcRoot, "foo.cc"))

	buildDir := t.TempDir()
	paths := NewPathCache()
	registry := NewRegistry(buildDir, srcRoot)
	mr := NewModuleRegistry(srcRoot, buildDir, registry, paths)

	first, err := mr.Lookup("foo", nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := mr.Lookup("foo", nil)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("Lookup returned a different *CompiledModule record for the same name")
	}
}

func TestModuleRegistryLookupSearchPath(t *testing.T) {
	srcRoot := t.TempDir()
	extraDir := t.TempDir()
	modSrc := filepath.Join(extraDir, "foo.cc")
	touch(t, modSrc)

	buildDir := t.TempDir()
	paths := NewPathCache()
	registry := NewRegistry(buildDir, srcRoot)
	mr := NewModuleRegistry(srcRoot, buildDir, registry, paths)

	cm, err := mr.Lookup("foo", []string{extraDir})
	if err != nil {
		t.Fatal(err)
	}
	if cm.SourcePath != modSrc {
		t.Errorf("SourcePath = %q, want %q", cm.SourcePath, modSrc)
	}
}

func TestModuleRegistryLookupUnresolvable(t *testing.T) {
	srcRoot := t.TempDir()
	buildDir := t.TempDir()
	paths := NewPathCache()
	registry := NewRegistry(buildDir, srcRoot)
	mr := NewModuleRegistry(srcRoot, buildDir, registry, paths)

	_, err := mr.Lookup("nonexistent", nil)
	if err == nil {
		t.Fatal("expected a ModuleResolutionError")
	}
	if _, ok := err.(*ModuleResolutionError); !ok {
		t.Errorf("error type = %T, want *ModuleResolutionError", err)
	}
}

func TestModuleRegistryLookupFallsBackToRegistry(t *testing.T) {
	srcRoot := t.TempDir()
	buildDir := t.TempDir()
	paths := NewPathCache()
	registry := NewRegistry(buildDir, srcRoot)

	declaredPath := filepath.Join(srcRoot, "weird", "place.cc")
	touch(t, declaredPath)
	if _, err := registry.Get(declaredPath, TypeModule, "strange.name"); err != nil {
		t.Fatal(err)
	}

	mr := NewModuleRegistry(srcRoot, buildDir, registry, paths)
	cm, err := mr.Lookup("strange.name", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cm.SourcePath != declaredPath {
		t.Errorf("SourcePath = %q, want %q", cm.SourcePath, declaredPath)
	}
}

func TestCompiledModuleSHA256SnapshotIsMemoized(t *testing.T) {
	dir := t.TempDir()
	interfacePath := filepath.Join(dir, "foo.pcm")
	if err := os.WriteFile(interfacePath, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}

	cm := &CompiledModule{Name: "foo", InterfacePath: interfacePath}

	calls := 0
	hashFile := func(path string) (string, error) {
		calls++
		return "fixed-hash", nil
	}

	first, err := cm.sha256Snapshot(hashFile)
	if err != nil {
		t.Fatal(err)
	}
	second, err := cm.sha256Snapshot(hashFile)
	if err != nil {
		t.Fatal(err)
	}
	if first != second || first != "fixed-hash" {
		t.Errorf("sha256Snapshot = (%q, %q), want both %q", first, second, "fixed-hash")
	}
	if calls != 1 {
		t.Errorf("hashFile called %d times, want 1 (memoized)", calls)
	}
}

func TestCompiledModuleMarkBuiltIsIdempotent(t *testing.T) {
	cm := &CompiledModule{Name: "foo"}
	if cm.markBuilt() {
		t.Error("first markBuilt() = true, want false")
	}
	if !cm.markBuilt() {
		t.Error("second markBuilt() = false, want true")
	}
}
