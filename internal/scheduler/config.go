// Package scheduler is component C9: the Target type that walks entry
// points, orders compilation against internal/engine's freshness oracle and
// module registry, drives internal/gccmapper or internal/clangscan, and
// assembles the final link command. Grounded on
// original_source/buildtool.py's BuildConfig/TargetType/Target classes.
package scheduler

// BuildConfig is spec.md §9's "explicit configuration value type with all
// fields required", replacing the original's keyword-argument BuildConfig
// constructor. ReleaseConfig/DebugConfig return fully-populated presets
// (SPEC_FULL.md §4 item 1), matching the original's Release/Debug classes.
type BuildConfig struct {
	CC  string
	CXX string

	CFlags   []string
	CXXFlags []string
	LDFlags  []string

	ObjDir   string
	SrcDir   string
	BinDir   string
	IncFlags []string

	Suffix  string
	OutFile string

	UseClang bool
}

var baseCompileFlags = []string{
	"-pthread", "-fnon-call-exceptions", "-g",
	"-Wall", "-Wextra", "-Wconversion",
	"-Wno-sign-compare", "-Wno-deprecated", "-Wno-sign-conversion",
	"-Wno-missing-field-initializers",
	"-Werror=shift-count-overflow",
	"-Werror=return-type",
}

var clangExtraCFlags = []string{"-Wno-logical-op-parentheses"}

// ReleaseConfig matches original_source/buildtool.py's Release class:
// -O2/-mtune=native/-mcx16, "obj/release" output tree, no debug suffix.
func ReleaseConfig(useClang bool) BuildConfig {
	cflags := append(append([]string{}, baseCompileFlags...), "-O2", "-mtune=native", "-mcx16")
	cxxflags := append(append([]string{}, cflags...), "-std=c++23")
	if useClang {
		cxxflags = append(cxxflags, clangExtraCFlags...)
	}

	return BuildConfig{
		CC:       pick(useClang, "clang", "gcc"),
		CXX:      pick(useClang, "clang++", "g++"),
		CFlags:   cflags,
		CXXFlags: cxxflags,
		LDFlags:  []string{"-lrt", "-O2"},
		ObjDir:   "obj/release",
		SrcDir:   ".",
		BinDir:   "bin",
		UseClang: useClang,
	}
}

// DebugConfig matches original_source/buildtool.py's Debug class:
// sanitizers, "obj/debug" output tree, "+debug" binary suffix.
func DebugConfig(useClang bool) BuildConfig {
	cflags := append(append([]string{}, baseCompileFlags...), "-fsanitize=address", "-fsanitize=undefined", "-mcx16")
	cxxflags := append(append([]string{}, cflags...), "-std=c++23")
	if useClang {
		cxxflags = append(cxxflags, clangExtraCFlags...)
	}

	return BuildConfig{
		CC:       pick(useClang, "clang", "gcc"),
		CXX:      pick(useClang, "clang++", "g++"),
		CFlags:   cflags,
		CXXFlags: cxxflags,
		LDFlags:  []string{"-lrt"},
		ObjDir:   "obj/debug",
		SrcDir:   ".",
		BinDir:   "bin",
		Suffix:   "+debug",
		UseClang: useClang,
	}
}

func pick(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
