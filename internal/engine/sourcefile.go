package engine

import (
	"path/filepath"
	"strings"
	"sync"
)

// SourceFile is component C2's interned per-path record, grounded on
// original_source/buildtool.py's SourceFile class, minus its self-compiling
// methods: compilation is driven by the scheduler (C9), this struct only
// holds identity and derived-artefact bookkeeping.
type SourceFile struct {
	Path       string
	Dir        string
	Type       SourceType
	ModuleName string // "" if this file declares no module

	ObjPath             string
	ModuleInterfacePath string // "" unless Type == TypeModule
	InfoFilePath        string
	MakefileDepPath     string

	Deps *DepSet

	Freshness     Freshness
	NeedRecompile bool
}

// derivedBase returns "<buildDir>/<path-with-'..'-components-renamed>",
// implementing spec.md §6's "parent components containing '..' are renamed
// to a literal __PARENT__ so the tree stays inside objdir".
func derivedBase(buildDir, path string) string {
	segments := strings.Split(filepath.ToSlash(path), "/")
	for i, seg := range segments {
		if seg == ".." {
			segments[i] = "__PARENT__"
		}
	}
	return filepath.Join(buildDir, filepath.FromSlash(strings.Join(segments, "/")))
}

func newSourceFile(path string, typ SourceType, moduleName string, buildDir, srcRoot string) *SourceFile {
	dir := filepath.Dir(path)
	rel := derivedBase(buildDir, path)

	sf := &SourceFile{
		Path:       path,
		Dir:        dir,
		Type:       typ,
		ModuleName: moduleName,
		Deps:       NewDepSet(),
		Freshness:  FreshnessUnknown,
	}

	// Derived-file layout: the source's path under <objdir> with the suffix
	// appended, not replaced (src/foo.cc -> <objdir>/src/foo.cc.o, .info,
	// .make); headers get only the .info file. A module's interface goes to
	// <buildDir>/gcm.cache/<mod2cm name>, not under <objdir>.
	if !typ.IsHeaderLike() {
		sf.ObjPath = rel + ".o"
		sf.MakefileDepPath = rel + ".make"
	}
	sf.InfoFilePath = rel + ".info"

	if moduleName != "" {
		sf.ModuleInterfacePath = filepath.Join(buildDir, "gcm.cache", mod2cm(moduleName, srcRoot))
	}

	return sf
}

// Registry is the process-wide table of interned SourceFile records (C2),
// grounded on original_source/buildtool.py's SourceFile.files class dict,
// re-modeled as a BuildContext-owned value instead of a module-level global
// per spec.md §9.
type Registry struct {
	mu       sync.Mutex
	files    map[string]*SourceFile
	buildDir string
	srcRoot  string
}

func NewRegistry(buildDir, srcRoot string) *Registry {
	return &Registry{files: make(map[string]*SourceFile), buildDir: buildDir, srcRoot: srcRoot}
}

// Get interns path on first sight and returns the (possibly pre-existing)
// record, implementing spec.md §4.1's resolution + mismatch-detection rules.
// typeHint and moduleNameHint may be zero-value ("" / TypeUnknown) when the
// caller has no opinion; a non-zero hint that disagrees with an existing
// record raises TypeMismatchError / ModnameMismatchError.
func (r *Registry) Get(path string, typeHint SourceType, moduleNameHint string) (*SourceFile, error) {
	path = Canonicalize(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.files[path]; ok {
		if typeHint != TypeUnknown && typeHint != existing.Type {
			return nil, &TypeMismatchError{Path: path, OldType: existing.Type, NewType: typeHint}
		}
		if moduleNameHint != "" && existing.ModuleName != "" && moduleNameHint != existing.ModuleName {
			return nil, &ModnameMismatchError{Path: path, OldModname: existing.ModuleName, NewModname: moduleNameHint}
		}
		if moduleNameHint != "" && existing.ModuleName == "" {
			existing.ModuleName = moduleNameHint
			existing.ModuleInterfacePath = filepath.Join(r.buildDir, "gcm.cache", mod2cm(moduleNameHint, r.srcRoot))
		}
		return existing, nil
	}

	typ := typeHint
	if typ == TypeUnknown {
		inferred, ok := InferSourceType(path)
		if !ok {
			if IsHeaderSuffix(path) {
				typ = TypeUserHeader
			} else {
				return nil, &UnrecognizedFileTypeError{Path: path}
			}
		} else {
			typ = inferred
		}
	}

	sf := newSourceFile(path, typ, moduleNameHint, r.buildDir, r.srcRoot)
	r.files[path] = sf
	return sf, nil
}

// Lookup returns the already-interned record for path without creating one.
func (r *Registry) Lookup(path string) (*SourceFile, bool) {
	path = Canonicalize(path)
	r.mu.Lock()
	defer r.mu.Unlock()
	sf, ok := r.files[path]
	return sf, ok
}

// ByModuleName scans for a file that declares moduleName. Used by the module
// resolver (C6) when no direct filename heuristic candidate exists yet.
func (r *Registry) ByModuleName(moduleName string) (*SourceFile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sf := range r.files {
		if sf.ModuleName == moduleName {
			return sf, true
		}
	}
	return nil, false
}

// All returns every interned record; order is unspecified.
func (r *Registry) All() []*SourceFile {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*SourceFile, 0, len(r.files))
	for _, sf := range r.files {
		out = append(out, sf)
	}
	return out
}
