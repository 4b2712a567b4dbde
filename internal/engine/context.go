package engine

// BuildContext bundles the engine's per-run state (C1-C6), replacing the
// module-level globals original_source/buildtool.py relies on (Path's
// @cache, SourceFile.files, CompiledModule.modules) with values a caller
// constructs explicitly and can discard between test cases (spec.md §9).
type BuildContext struct {
	Paths      *PathCache
	Registry   *Registry
	Modules    *ModuleRegistry
	DirConfigs *DirectoryConfigCache
	Info       *InfoStore
	BuildDir   string
	SrcRoot    string
}

// NewBuildContext wires the C1-C6 components together for one build
// directory. srcRoot is the project source root used as the base of
// spec.md §4.7's module-name search path.
func NewBuildContext(buildDir, srcRoot string) *BuildContext {
	paths := NewPathCache()
	registry := NewRegistry(buildDir, srcRoot)

	return &BuildContext{
		Paths:      paths,
		Registry:   registry,
		Modules:    NewModuleRegistry(srcRoot, buildDir, registry, paths),
		DirConfigs: NewDirectoryConfigCache(buildDir),
		Info:       NewInfoStore(paths),
		BuildDir:   buildDir,
		SrcRoot:    srcRoot,
	}
}
