package scheduler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/VKCOM/modbuild/internal/engine"
)

// TestCompileManyRunsAllFreshFilesConcurrently exercises the worker-pool
// path end to end using only already-up-to-date sources, so no real
// compiler is ever invoked.
func TestCompileManyRunsAllFreshFilesConcurrently(t *testing.T) {
	_, srcRoot, ctx := newTestContext(t)
	cfg := ReleaseConfig(false)
	cfg.SrcDir = srcRoot
	cfg.CXX = filepath.Join(srcRoot, "nonexistent-compiler-should-not-run")
	target := NewTarget(srcRoot, cfg, ctx, time.Now())

	var paths []string
	for _, name := range []string{"a.cc", "b.cc", "c.cc"} {
		sourcePath := filepath.Join(srcRoot, name)
		mustWriteFile(t, sourcePath)
		old := time.Now().Add(-time.Hour)
		if err := os.Chtimes(sourcePath, old, old); err != nil {
			t.Fatal(err)
		}

		sf, err := ctx.Registry.Get(sourcePath, engine.TypeUnknown, "")
		if err != nil {
			t.Fatal(err)
		}
		dirCfg, err := ctx.DirConfigs.Resolve(ctx.Paths, sf.Dir)
		if err != nil {
			t.Fatal(err)
		}
		command := target.commandLine(sf, dirCfg)
		if err := ctx.Info.Write(sf.InfoFilePath, command, nil); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, sourcePath)
	}

	if err := target.CompileMany(paths, 2); err != nil {
		t.Fatalf("CompileMany() = %v", err)
	}

	target.mu.Lock()
	objCount := len(target.objs)
	target.mu.Unlock()
	if objCount != len(paths) {
		t.Errorf("objs recorded = %d, want %d", objCount, len(paths))
	}
}

func TestCompileManyPropagatesFirstError(t *testing.T) {
	_, srcRoot, ctx := newTestContext(t)
	target := NewTarget(srcRoot, ReleaseConfig(false), ctx, time.Now())

	err := target.CompileMany([]string{filepath.Join(srcRoot, "weird.xyz")}, 1)
	if err == nil {
		t.Fatal("expected an error for an unrecognized file type")
	}
	if _, ok := err.(*engine.UnrecognizedFileTypeError); !ok {
		t.Errorf("error type = %T, want *engine.UnrecognizedFileTypeError", err)
	}
}

func TestCompileManyClampsJobsBelowOne(t *testing.T) {
	_, srcRoot, ctx := newTestContext(t)
	target := NewTarget(srcRoot, ReleaseConfig(false), ctx, time.Now())

	if err := target.CompileMany(nil, 0); err != nil {
		t.Fatalf("CompileMany with jobs=0 and no paths = %v, want nil", err)
	}
}
