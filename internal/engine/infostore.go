package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/VKCOM/modbuild/internal/common"
)

// InfoRecord is the on-disk shape from spec.md §6: {"command": [...], "deps": [...]}.
// encoding/json is used because this is a fixed external wire format spec.md
// mandates byte-for-byte, not a free choice of serialization library (see
// DESIGN.md's dependency ledger).
type InfoRecord struct {
	Command []string `json:"command"`
	Deps    []string `json:"deps"`
}

// depToTag renders a Dep using spec.md §6's prefixes: "include:PATH" or
// "module:NAME@SHA". The third prefix spec.md mentions, "file:", is accepted
// on read (original_source/buildtool.py emits it for non-include file deps)
// but this implementation never writes it — every non-module dependency this
// engine records arrives through INCLUDE-TRANSLATE or a makefile .d rule, both
// of which are header dependencies.
func depToTag(d Dep) string {
	if d.Kind == ModuleDepKind {
		return fmt.Sprintf("module:%s@%s", d.ModuleName, d.ModuleSHA256)
	}
	return "include:" + d.HeaderPath
}

// parseDepTag parses one dependency string from an InfoRecord.Deps entry.
// Returns a CorruptInfoFileError for any unrecognized prefix, per spec.md §6
// ("Unknown prefix ⇒ abort with CorruptInfoFile") — callers of InfoStore
// translate that into "treat this file as needing a rebuild" per spec.md §7.
func parseDepTag(infoPath, tag string) (Dep, error) {
	switch {
	case strings.HasPrefix(tag, "include:"):
		return HeaderDep(tag[len("include:"):]), nil
	case strings.HasPrefix(tag, "file:"):
		return HeaderDep(tag[len("file:"):]), nil
	case strings.HasPrefix(tag, "module:"):
		rest := tag[len("module:"):]
		at := strings.LastIndexByte(rest, '@')
		if at < 0 {
			return Dep{}, &CorruptInfoFileError{Path: infoPath, Reason: "malformed module dep tag: " + tag}
		}
		return ModuleDep(rest[:at], rest[at+1:]), nil
	default:
		return Dep{}, &CorruptInfoFileError{Path: infoPath, Reason: "unrecognized dep tag: " + tag}
	}
}

// Freshness is the freshness oracle's tri-state return value (spec.md §4.2,
// §9's "collapse into a sum type" note), replacing the original's separate
// up_to_date/need_recompile booleans.
type Freshness int

const (
	FreshnessUnknown Freshness = iota
	UpToDate
	DepsOnly
	Rebuild
)

func (f Freshness) String() string {
	switch f {
	case UpToDate:
		return "up-to-date"
	case DepsOnly:
		return "deps-only"
	case Rebuild:
		return "rebuild"
	default:
		return "unknown"
	}
}

// InfoStore is component C5: the freshness oracle plus atomic persistence of
// InfoRecord files, grounded on original_source/buildtool.py's
// SourceFile.check_up_to_date/update methods.
type InfoStore struct {
	paths *PathCache
}

func NewInfoStore(paths *PathCache) *InfoStore {
	return &InfoStore{paths: paths}
}

// CheckResult is everything CheckUpToDate learns in one pass: the verdict,
// the info-file's recorded mtime (used as the new file's output-mtime
// watermark when up-to-date), and the dependency set read back from disk
// (only meaningful when the verdict is not Rebuild-for-missing-file).
type CheckResult struct {
	Freshness    Freshness
	InfoMtime    time.Time
	RecordedDeps []Dep
}

// CheckUpToDate implements spec.md §4.2's decision order exactly, short-circuiting
// on the first positive:
//  1. source mtime >= info mtime -> Rebuild
//  2. info file missing/unreadable -> Rebuild
//  3. stored command line != current command line -> Rebuild
//  4./5. any recorded include/file dep mtime >= info mtime -> Rebuild
//  6. otherwise -> DepsOnly (module-hash cross-check happens one layer up, in
//     the scheduler, since that requires recursively building other files).
func (s *InfoStore) CheckUpToDate(infoPath string, sourceMtime time.Time, currentCommand []string) (CheckResult, error) {
	infoMtime := s.paths.Mtime(infoPath)

	if !sourceMtime.Before(infoMtime) {
		return CheckResult{Freshness: Rebuild}, nil
	}

	data, err := os.ReadFile(infoPath)
	if err != nil {
		return CheckResult{Freshness: Rebuild}, nil
	}

	var rec InfoRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		common.Log.Warn("corrupt info file, rebuilding:", infoPath, err)
		return CheckResult{Freshness: Rebuild}, nil
	}

	if !stringSlicesEqual(rec.Command, currentCommand) {
		return CheckResult{Freshness: Rebuild}, nil
	}

	deps := make([]Dep, 0, len(rec.Deps))
	for _, tag := range rec.Deps {
		dep, err := parseDepTag(infoPath, tag)
		if err != nil {
			common.Log.Warn("corrupt info file, rebuilding:", infoPath, err)
			return CheckResult{Freshness: Rebuild}, nil
		}
		if dep.Kind == HeaderDepKind {
			depMtime := s.paths.Mtime(dep.HeaderPath)
			if !depMtime.Before(infoMtime) {
				return CheckResult{Freshness: Rebuild}, nil
			}
		}
		deps = append(deps, dep)
	}

	return CheckResult{Freshness: DepsOnly, InfoMtime: infoMtime, RecordedDeps: deps}, nil
}

// Write persists an InfoRecord atomically (spec.md §4.2/P4): serialise to a
// sibling temporary file then rename (common.WriteFileAtomic), so readers
// never observe a partial file.
func (s *InfoStore) Write(infoPath string, command []string, deps []Dep) error {
	rec := InfoRecord{
		Command: command,
		Deps:    make([]string, 0, len(deps)),
	}
	for _, d := range deps {
		rec.Deps = append(rec.Deps, depToTag(d))
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := common.WriteFileAtomic(infoPath, data); err != nil {
		return err
	}
	s.paths.Invalidate(infoPath)
	return nil
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
