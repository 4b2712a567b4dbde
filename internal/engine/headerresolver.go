package engine

import (
	"path/filepath"
	"strings"
)

// implSuffixes are the candidate extensions tried against a header's base
// name, in spec.md §4.6's preference order.
var implSuffixes = []string{".cc", ".cpp", ".c"}

// ResolveCompanion implements spec.md §4.6's header-to-implementation
// resolution (component C4), grounded on original_source/buildtool.py's
// HeaderDep.find_cpp:
//  1. a non-header suffix has no companion;
//  2. same directory, same base name, each implementation suffix in turn;
//  3. an "include" path segment substituted with "src", recursing into the
//     rewritten path if that directory exists; the canonical
//     proj/include/proj/file.h -> proj/src/file.h layout additionally drops
//     the duplicated "proj" segment before recursing;
//  4. the same two rules with "Inc"/"Src".
//
// Returns ("", false) if IsHeaderSuffix(headerPath) is false or no candidate exists.
func ResolveCompanion(paths *PathCache, headerPath string) (string, bool) {
	if !IsHeaderSuffix(headerPath) {
		return "", false
	}
	return resolveCompanion(paths, headerPath)
}

func resolveCompanion(paths *PathCache, headerPath string) (string, bool) {
	ext := filepath.Ext(headerPath)
	basename := strings.TrimSuffix(headerPath, ext)

	for _, suf := range implSuffixes {
		candidate := basename + suf
		if paths.Exists(candidate) {
			return candidate, true
		}
	}

	if companion, ok := trySegmentSwap(paths, headerPath, "include", "src"); ok {
		return companion, true
	}
	if companion, ok := trySegmentSwap(paths, headerPath, "Inc", "Src"); ok {
		return companion, true
	}

	return "", false
}

// trySegmentSwap replaces one occurrence of the from segment with to, and
// (mirroring find_cpp) also tries dropping a duplicated segment immediately
// after it — the "proj/include/proj/file.h" -> "proj/src/file.h" layout.
func trySegmentSwap(paths *PathCache, headerPath, from, to string) (string, bool) {
	dir := filepath.Dir(headerPath)
	base := filepath.Base(headerPath)
	segments := strings.Split(filepath.ToSlash(dir), "/")

	idx := -1
	for i, seg := range segments {
		if seg == from {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", false
	}

	swapped := append([]string{}, segments...)
	swapped[idx] = to
	newDir := filepath.FromSlash(strings.Join(swapped, "/"))

	if paths.IsDir(newDir) {
		if companion, ok := resolveCompanion(paths, filepath.Join(newDir, base)); ok {
			return companion, true
		}
	}

	if idx > 0 && idx < len(segments)-1 && segments[idx-1] == segments[idx+1] {
		deduped := append([]string{}, swapped[:idx+1]...)
		deduped = append(deduped, swapped[idx+2:]...)
		dedupedDir := filepath.FromSlash(strings.Join(deduped, "/"))
		if companion, ok := resolveCompanion(paths, filepath.Join(dedupedDir, base)); ok {
			return companion, true
		}
	}

	return "", false
}

// InferIncludeFlags extends the header resolver's directory-convention
// heuristic into -I/-iquote flags for a source file's own includes
// (SPEC_FULL.md §4 item 4, a natural extension of spec.md §4.6's
// include/src convention, not itself part of the header→companion lookup):
// a file living under ".../src/..." gets "-I<root>/include" (public headers)
// plus "-iquote<root>/src" (local includes reachable without the package
// prefix); the "Inc"/"Src" case-variant tree gets the analogous flags.
func InferIncludeFlags(sourceDir string) []string {
	segments := strings.Split(filepath.ToSlash(sourceDir), "/")

	for i, seg := range segments {
		switch seg {
		case "src":
			root := filepath.FromSlash(strings.Join(segments[:i], "/"))
			return []string{"-I" + filepath.Join(root, "include"), "-iquote" + filepath.Join(root, "src")}
		case "Src":
			root := filepath.FromSlash(strings.Join(segments[:i], "/"))
			return []string{"-I" + filepath.Join(root, "Inc"), "-iquote" + filepath.Join(root, "Src")}
		case "deps":
			// original_source/buildtool.py:612-617: a file under deps/<pkg>/...
			// gets the package's own root on the include path, so e.g.
			// deps/baselib/lib/testing/testmain.cc can find its own headers.
			if i+1 < len(segments) {
				root := filepath.FromSlash(strings.Join(segments[:i+2], "/"))
				return []string{"-I" + root}
			}
		}
	}
	return nil
}
