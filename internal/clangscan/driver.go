// Package clangscan drives Clang's dependency scanner in P1689 mode (C8).
// Grounded on original_source/buildtool.py's SourceFile.clang_get_deps,
// including its recovery loop for headers that must be imported as header
// units.
//
// Known limitation (documented, not fixed): header-unit recovery depends on
// parsing an English-language diagnostic out of clang-scan-deps' stderr
// (spec.md §4.5 flags this as fragile itself). A future Clang release that
// rewords the "cannot be imported because it is not known to be a header
// unit" message will silently stop triggering recovery, the same exposure
// the original implementation carries.
package clangscan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"

	"github.com/VKCOM/modbuild/internal/common"
	"github.com/VKCOM/modbuild/internal/engine"
)

// Resolver is the engine-side callback surface, mirroring gccmapper.Resolver
// but scoped to what P1689 scanning needs: building header units and named
// module dependencies on demand.
type Resolver interface {
	// BuildHeaderUnit builds path as a header unit (SystemHeader if fromAngle
	// is true, UserHeader otherwise) and returns its interface path plus
	// sha256, for use as a -fmodule-file= flag and a ModuleDep.
	BuildHeaderUnit(path string, fromAngle bool) (interfacePath string, sha256 string, err error)

	// BuildModule recursively builds a named module dependency found in a
	// P1689 "requires" entry.
	BuildModule(modname string) (sha256 string, err error)
}

// P1689 wire shapes, mirroring clang-scan-deps -format=p1689's JSON output.
type p1689Document struct {
	Rules []p1689Rule `json:"rules"`
}

type p1689Rule struct {
	Provides []p1689ModuleRef `json:"provides"`
	Requires []p1689ModuleRef `json:"requires"`
}

type p1689ModuleRef struct {
	LogicalName string `json:"logical-name"`
}

// headerUnitDiagnostic matches clang's "not known to be a header unit" error,
// spec.md §4.5's exact fragile-by-design pattern.
var headerUnitDiagnostic = regexp.MustCompile(
	`^.*:\d+:\d+: error: header file (["<])([a-zA-Z0-9\-_./+]+)[">] \(aka '([a-zA-Z0-9\-_./+]+)'\) cannot be imported because it is not known to be a header unit$`,
)

// ScanResult is what a successful (possibly after recovery) scan yields:
// the set of module dependencies discovered, plus, if isModule is true, the
// validated provided module name.
type ScanResult struct {
	RequiredModules []string
	ProvidedModule  string
}

// Scan runs clang-scan-deps against path, recovering from "not a header
// unit" failures by building the offending headers as header units and
// retrying once with -fmodule-file= flags added, per spec.md §4.5.
//
// cxx, baseArgs are the compiler name and its full flag list (standard,
// include paths, -fprebuilt-module-path, output path, etc.) exactly as they
// would be passed to the compiler itself; isHeader controls whether
// `-xc++-header` or `-xc++` is used, matching clang_get_deps.
func Scan(cxx string, baseArgs []string, path string, isHeader bool, expectedModule string, isModule bool, resolver Resolver) (ScanResult, error) {
	langFlag := "-xc++"
	if isHeader {
		langFlag = "-xc++-header"
	}

	args := scanArgs(cxx, []string{langFlag}, baseArgs, path)
	stdout, stderr, err := runScanDeps(args)

	if err != nil {
		extraArgs, recoverErr := recoverHeaderUnits(stderr, resolver)
		if recoverErr != nil {
			return ScanResult{}, recoverErr
		}

		retryArgs := scanArgs(cxx, append([]string{langFlag}, extraArgs...), baseArgs, path)
		stdout, stderr, err = runScanDeps(retryArgs)
		if err != nil {
			return ScanResult{}, &engine.ScanDepsFailedError{Path: path, Reason: string(stderr)}
		}
	}

	return parseP1689(stdout, path, expectedModule, isModule, resolver)
}

func scanArgs(cxx string, langArgs, baseArgs []string, path string) []string {
	args := []string{"-format=p1689", "--", cxx}
	args = append(args, langArgs...)
	args = append(args, baseArgs...)
	args = append(args, "-c", path)
	return args
}

func runScanDeps(args []string) (stdout, stderr []byte, err error) {
	cmd := exec.Command("clang-scan-deps", args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// recoverHeaderUnits parses stderr for header-unit diagnostics, builds each
// named header as a header unit, and returns the -fmodule-file= flags to
// retry the scan with.
func recoverHeaderUnits(stderr []byte, resolver Resolver) ([]string, error) {
	var extraArgs []string
	found := false

	for _, line := range bytes.Split(stderr, []byte("\n")) {
		m := headerUnitDiagnostic.FindSubmatch(line)
		if m == nil {
			continue
		}
		found = true

		fromAngle := string(m[1]) == "<"
		headerPath := string(m[3])

		common.Log.Warn("clang-scan-deps requires header unit:", headerPath)

		interfacePath, _, err := resolver.BuildHeaderUnit(headerPath, fromAngle)
		if err != nil {
			return nil, err
		}
		extraArgs = append(extraArgs, "-fmodule-file="+interfacePath)
	}

	if !found {
		return nil, fmt.Errorf("clang-scan-deps failed for a reason other than a missing header unit")
	}
	return extraArgs, nil
}

// parseP1689 walks the scanner's rule set exactly as clang_get_deps does:
// validate `provides` against expectedModule when this file is itself a
// module, and turn each `requires` entry into a recursive module build plus
// a recorded dependency.
func parseP1689(stdout []byte, path, expectedModule string, isModule bool, resolver Resolver) (ScanResult, error) {
	var doc p1689Document
	if err := json.Unmarshal(stdout, &doc); err != nil {
		return ScanResult{}, &engine.ScanDepsFailedError{Path: path, Reason: "malformed p1689 JSON: " + err.Error()}
	}

	result := ScanResult{}

	for _, rule := range doc.Rules {
		if isModule {
			if len(rule.Provides) != 1 {
				return ScanResult{}, &engine.ScanDepsFailedError{Path: path, Reason: fmt.Sprintf(
					"wanted module %q but scanner reported %d provided modules", expectedModule, len(rule.Provides))}
			}
			name := rule.Provides[0].LogicalName
			if name != expectedModule {
				return ScanResult{}, &engine.ScanDepsFailedError{Path: path, Reason: fmt.Sprintf(
					"wanted module %q but got %q", expectedModule, name)}
			}
			result.ProvidedModule = name
		}

		for _, req := range rule.Requires {
			if _, err := resolver.BuildModule(req.LogicalName); err != nil {
				return ScanResult{}, err
			}
			result.RequiredModules = append(result.RequiredModules, req.LogicalName)
		}

		// The original returns after the first rule with matching deps;
		// clang-scan-deps emits exactly one rule per translation unit.
		return result, nil
	}

	return result, nil
}
