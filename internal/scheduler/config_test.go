package scheduler

import "testing"

func TestReleaseConfigGCC(t *testing.T) {
	cfg := ReleaseConfig(false)
	if cfg.CXX != "g++" || cfg.CC != "gcc" {
		t.Errorf("CXX/CC = %q/%q, want g++/gcc", cfg.CXX, cfg.CC)
	}
	if cfg.ObjDir != "obj/release" {
		t.Errorf("ObjDir = %q, want obj/release", cfg.ObjDir)
	}
	if cfg.Suffix != "" {
		t.Errorf("Suffix = %q, want empty for release", cfg.Suffix)
	}
	if !contains(cfg.CXXFlags, "-O2") {
		t.Errorf("CXXFlags = %v, missing -O2", cfg.CXXFlags)
	}
	if !contains(cfg.CXXFlags, "-std=c++23") {
		t.Errorf("CXXFlags = %v, missing -std=c++23", cfg.CXXFlags)
	}
	if contains(cfg.CXXFlags, "-fsanitize=address") {
		t.Errorf("release CXXFlags unexpectedly contains a sanitizer flag: %v", cfg.CXXFlags)
	}
}

func TestDebugConfigGCC(t *testing.T) {
	cfg := DebugConfig(false)
	if cfg.ObjDir != "obj/debug" {
		t.Errorf("ObjDir = %q, want obj/debug", cfg.ObjDir)
	}
	if cfg.Suffix != "+debug" {
		t.Errorf("Suffix = %q, want +debug", cfg.Suffix)
	}
	if !contains(cfg.CXXFlags, "-fsanitize=address") || !contains(cfg.CXXFlags, "-fsanitize=undefined") {
		t.Errorf("CXXFlags = %v, missing sanitizer flags", cfg.CXXFlags)
	}
	if contains(cfg.CXXFlags, "-O2") {
		t.Errorf("debug CXXFlags unexpectedly contains -O2: %v", cfg.CXXFlags)
	}
}

func TestReleaseConfigClang(t *testing.T) {
	cfg := ReleaseConfig(true)
	if cfg.CXX != "clang++" || cfg.CC != "clang" {
		t.Errorf("CXX/CC = %q/%q, want clang++/clang", cfg.CXX, cfg.CC)
	}
	if !cfg.UseClang {
		t.Error("UseClang = false, want true")
	}
	if !contains(cfg.CXXFlags, "-Wno-logical-op-parentheses") {
		t.Errorf("CXXFlags = %v, missing clang-only extra flag", cfg.CXXFlags)
	}
}

func TestReleaseAndDebugShareBinDir(t *testing.T) {
	if ReleaseConfig(false).BinDir != DebugConfig(false).BinDir {
		t.Error("Release and Debug configs should share the same BinDir")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
