package engine

import (
	"path/filepath"
	"testing"
)

func TestDerivedBaseRenamesParentSegments(t *testing.T) {
	got := derivedBase("obj", "../shared/foo.cc")
	want := filepath.Join("obj", "__PARENT__", "shared", "foo.cc")
	if got != want {
		t.Errorf("derivedBase = %q, want %q", got, want)
	}
}

func TestDerivedBaseLeavesOrdinaryPaths(t *testing.T) {
	got := derivedBase("obj", "src/foo.cc")
	want := filepath.Join("obj", "src", "foo.cc")
	if got != want {
		t.Errorf("derivedBase = %q, want %q", got, want)
	}
}

func TestRegistryGetInternsAndReuses(t *testing.T) {
	r := NewRegistry(t.TempDir(), ".")

	first, err := r.Get("src/foo.cc", TypeUnknown, "")
	if err != nil {
		t.Fatal(err)
	}
	if first.Type != TypeCPP {
		t.Errorf("Type = %v, want TypeCPP", first.Type)
	}

	second, err := r.Get("src/foo.cc", TypeUnknown, "")
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Error("Get returned a different record for the same path")
	}
}

func TestRegistryGetTypeMismatch(t *testing.T) {
	r := NewRegistry(t.TempDir(), ".")

	if _, err := r.Get("src/foo.cc", TypeCPP, ""); err != nil {
		t.Fatal(err)
	}
	_, err := r.Get("src/foo.cc", TypeC, "")
	if err == nil {
		t.Fatal("expected a TypeMismatchError")
	}
	if _, ok := err.(*TypeMismatchError); !ok {
		t.Errorf("error type = %T, want *TypeMismatchError", err)
	}
}

func TestRegistryGetModnameMismatch(t *testing.T) {
	r := NewRegistry(t.TempDir(), ".")

	if _, err := r.Get("src/foo.cc", TypeModule, "foo"); err != nil {
		t.Fatal(err)
	}
	_, err := r.Get("src/foo.cc", TypeModule, "bar")
	if err == nil {
		t.Fatal("expected a ModnameMismatchError")
	}
	if _, ok := err.(*ModnameMismatchError); !ok {
		t.Errorf("error type = %T, want *ModnameMismatchError", err)
	}
}

func TestRegistryGetUnrecognizedType(t *testing.T) {
	r := NewRegistry(t.TempDir(), ".")
	_, err := r.Get("weird.xyz", TypeUnknown, "")
	if err == nil {
		t.Fatal("expected an UnrecognizedFileTypeError")
	}
	if _, ok := err.(*UnrecognizedFileTypeError); !ok {
		t.Errorf("error type = %T, want *UnrecognizedFileTypeError", err)
	}
}

func TestRegistryGetHeaderSuffixWithoutHint(t *testing.T) {
	r := NewRegistry(t.TempDir(), ".")
	sf, err := r.Get("src/foo.h", TypeUnknown, "")
	if err != nil {
		t.Fatal(err)
	}
	if sf.Type != TypeUserHeader {
		t.Errorf("Type = %v, want TypeUserHeader", sf.Type)
	}
	if sf.ObjPath != "" {
		t.Errorf("ObjPath = %q, want empty for a header-like file", sf.ObjPath)
	}
}

func TestRegistryByModuleName(t *testing.T) {
	r := NewRegistry(t.TempDir(), ".")
	sf, err := r.Get("src/foo.cc", TypeModule, "foo.bar")
	if err != nil {
		t.Fatal(err)
	}

	found, ok := r.ByModuleName("foo.bar")
	if !ok || found != sf {
		t.Errorf("ByModuleName(%q) = (%v, %v), want (%v, true)", "foo.bar", found, ok, sf)
	}

	if _, ok := r.ByModuleName("nonexistent"); ok {
		t.Error("ByModuleName found a module that was never registered")
	}
}

func TestNewSourceFileDerivedPaths(t *testing.T) {
	buildDir := "obj"
	sf := newSourceFile("src/foo.cc", TypeCPP, "", buildDir, ".")

	wantObj := filepath.Join(buildDir, "src", "foo.cc.o")
	if sf.ObjPath != wantObj {
		t.Errorf("ObjPath = %q, want %q", sf.ObjPath, wantObj)
	}
	wantInfo := filepath.Join(buildDir, "src", "foo.cc.info")
	if sf.InfoFilePath != wantInfo {
		t.Errorf("InfoFilePath = %q, want %q", sf.InfoFilePath, wantInfo)
	}
	if sf.ModuleInterfacePath != "" {
		t.Errorf("ModuleInterfacePath = %q, want empty for a non-module file", sf.ModuleInterfacePath)
	}
}

func TestNewSourceFileModuleInterfacePath(t *testing.T) {
	sf := newSourceFile("src/foo.cc", TypeModule, "foo.bar", "obj", ".")
	want := filepath.Join("obj", "gcm.cache", "foo.bar.pcm")
	if sf.ModuleInterfacePath != want {
		t.Errorf("ModuleInterfacePath = %q, want %q", sf.ModuleInterfacePath, want)
	}
}
