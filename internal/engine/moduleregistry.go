package engine

import (
	"path/filepath"
	"strings"
	"sync"
)

// CompiledModule is component C6's idempotent build record for one module
// name, grounded on original_source/buildtool.py's CompiledModule class: it
// memoises the compiled interface's content hash so a transitive rebuild
// cascade can stop the moment a regenerated .pcm is byte-identical to the
// previous one.
type CompiledModule struct {
	Name          string
	InterfacePath string
	SourcePath    string

	mu     sync.Mutex
	built  bool
	sha256 string
}

// sha256Snapshot returns the interface's current content hash, computing and
// caching it on first call within this build (spec.md §4.3's "if the
// module's sha256 is already computed, return it").
func (m *CompiledModule) sha256Snapshot(hashFile func(string) (string, error)) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sha256 != "" {
		return m.sha256, nil
	}
	sum, err := hashFile(m.InterfacePath)
	if err != nil {
		return "", err
	}
	m.sha256 = sum
	return sum, nil
}

// markBuilt records that this build cycle already compiled the module, so a
// second Build call for the same name (two different files importing it) is
// a no-op, per spec.md §4.3's idempotency requirement.
func (m *CompiledModule) markBuilt() (alreadyBuilt bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.built {
		return true
	}
	m.built = true
	return false
}

// ModuleRegistry resolves module names to source files and tracks each
// module's CompiledModule record, grounded on
// original_source/buildtool.py's global `modules` dict plus mod2path/mod2cm.
type ModuleRegistry struct {
	mu       sync.Mutex
	modules  map[string]*CompiledModule
	srcRoot  string
	buildDir string
	registry *Registry
	paths    *PathCache
}

// NewModuleRegistry takes srcRoot, the project source root used as the base
// of spec.md §4.7's search path; per-file -I/-iquote search paths are passed
// to Lookup directly rather than held as constructor state. buildDir is
// where every module's interface file is materialized under "gcm.cache/",
// matching SourceFile.ModuleInterfacePath's layout.
func NewModuleRegistry(srcRoot, buildDir string, registry *Registry, paths *PathCache) *ModuleRegistry {
	return &ModuleRegistry{
		modules:  make(map[string]*CompiledModule),
		srcRoot:  srcRoot,
		buildDir: buildDir,
		registry: registry,
		paths:    paths,
	}
}

// Lookup returns (or creates) the CompiledModule record for name, resolving
// its source file per spec.md §4.7. searchPath is the caller's -I/-iquote
// list (already stripped of the flag prefixes) to probe in addition to the
// source root, in order.
func (mr *ModuleRegistry) Lookup(name string, searchPath []string) (*CompiledModule, error) {
	mr.mu.Lock()
	if cm, ok := mr.modules[name]; ok {
		mr.mu.Unlock()
		return cm, nil
	}
	mr.mu.Unlock()

	srcPath, err := mr.resolveSource(name, searchPath)
	if err != nil {
		return nil, err
	}

	cm := &CompiledModule{
		Name:          name,
		SourcePath:    srcPath,
		InterfacePath: filepath.Join(mr.buildDir, "gcm.cache", mod2cm(name, mr.srcRoot)),
	}

	mr.mu.Lock()
	defer mr.mu.Unlock()
	if existing, ok := mr.modules[name]; ok {
		return existing, nil
	}
	mr.modules[name] = cm
	return cm, nil
}

// resolveSource implements spec.md §4.7's name -> source path search: a
// "/"-prefixed name is a system-header module used verbatim; a
// "./"-prefixed name is a user-header module used verbatim; otherwise the
// name (with ':' and '.' both mapped to '/') is probed against each base in
// turn as "base/path.cc", then "base/path/<lastsegment>.cc".
func (mr *ModuleRegistry) resolveSource(name string, searchPath []string) (string, error) {
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "./") {
		if mr.paths.Exists(name) {
			return name, nil
		}
		return "", &ModuleResolutionError{ModuleName: name, Tried: []string{name}}
	}

	rel := strings.NewReplacer(":", "/", ".", "/").Replace(name)
	lastSegment := rel
	if idx := strings.LastIndexByte(rel, '/'); idx >= 0 {
		lastSegment = rel[idx+1:]
	}

	bases := append([]string{mr.srcRoot}, searchPath...)

	var tried []string
	for _, base := range bases {
		candidate1 := filepath.Join(base, rel+".cc")
		tried = append(tried, candidate1)
		if mr.paths.Exists(candidate1) {
			return candidate1, nil
		}

		candidate2 := filepath.Join(base, rel, lastSegment+".cc")
		tried = append(tried, candidate2)
		if mr.paths.Exists(candidate2) {
			return candidate2, nil
		}
	}

	if sf, ok := mr.registry.ByModuleName(name); ok {
		return sf.Path, nil
	}

	return "", &ModuleResolutionError{ModuleName: name, Tried: tried}
}

// mod2cm implements spec.md §4.7's deterministic interface-file name:
//   - system ("/foo")        -> "foo.pcm"
//   - user   ("./dir/file.h") -> relpath (relative to srcRoot) + ".pcm"
//   - named  ("foo:part"/"foo.bar") -> name with ':' folded to '-' + ".pcm"
//     (the dash-fold keeps the result a single valid path component; dots are
//     left untouched, unlike the directory-splitting used for source
//     resolution, matching original_source/buildtool.py's mod2cm).
func mod2cm(name, srcRoot string) string {
	switch {
	case strings.HasPrefix(name, "/"):
		return name[1:] + ".pcm"
	case strings.HasPrefix(name, "./"):
		rel, err := filepath.Rel(srcRoot, name)
		if err != nil {
			rel = strings.TrimPrefix(name, "./")
		}
		return rel + ".pcm"
	default:
		return strings.ReplaceAll(name, ":", "-") + ".pcm"
	}
}
