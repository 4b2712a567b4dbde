package engine

import "strings"

// vcpkgIncludeMarker is the path segment that precedes a vcpkg-installed
// package's public headers: "vcpkg_installed/<triplet>/include/<pkg>/...".
const vcpkgIncludeMarker = "/include/"

// VcpkgPackagesOf returns the distinct vcpkg package names referenced by
// file's recorded header dependencies, grounded on
// original_source/buildtool.py's vcpkg-path tagging in its dependency
// report (SPEC_FULL.md §4 item 5). Pure string matching over already
// resolved paths; no filesystem access or shell-out.
func VcpkgPackagesOf(file *SourceFile) []string {
	if file.Deps == nil {
		return nil
	}

	seen := make(map[string]bool)
	var pkgs []string
	for _, dep := range file.Deps.All() {
		if dep.Kind != HeaderDepKind {
			continue
		}
		pkg, ok := vcpkgPackageName(dep.HeaderPath)
		if !ok || seen[pkg] {
			continue
		}
		seen[pkg] = true
		pkgs = append(pkgs, pkg)
	}
	return pkgs
}

func vcpkgPackageName(path string) (string, bool) {
	idx := strings.Index(path, "/vcpkg_installed/")
	if idx < 0 {
		return "", false
	}
	rest := path[idx+len("/vcpkg_installed/"):]

	// rest is "<triplet>/include/<pkg>/...".
	incIdx := strings.Index(rest, vcpkgIncludeMarker)
	if incIdx < 0 {
		return "", false
	}
	afterInclude := rest[incIdx+len(vcpkgIncludeMarker):]

	slash := strings.IndexByte(afterInclude, '/')
	if slash < 0 {
		// A top-level header directly under include/ (e.g. a single-header
		// library) is attributed by its own file name, matching the
		// original's fallback when there is no package subdirectory.
		return afterInclude, afterInclude != ""
	}
	pkg := afterInclude[:slash]
	if pkg == "" {
		return "", false
	}
	return pkg, true
}
