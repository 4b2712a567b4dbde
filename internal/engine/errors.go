package engine

import "fmt"

// The error kinds below implement spec.md §7's abstract catalogue. The
// teacher (VKCOM-nocc) returns plain fmt.Errorf-built errors with no custom
// hierarchy; spec.md explicitly asks for named kinds so callers can tell a
// fatal condition from CorruptInfoFile's "treat as rebuild" recoverable one.
// These use stdlib error wrapping (errors.Is/As), not a third-party errors
// package — idiomatic since Go 1.13 and consistent with the teacher's own
// "no framework" approach to error values.

// UnrecognizedFileTypeError: a bare get() with no type hint and an
// unmapped extension (spec.md §4.1).
type UnrecognizedFileTypeError struct {
	Path string
}

func (e *UnrecognizedFileTypeError) Error() string {
	return fmt.Sprintf("unrecognized file type: %s", e.Path)
}

// TypeMismatchError: re-supplying a SourceType that disagrees with the
// already-interned record (spec.md §4.1).
type TypeMismatchError struct {
	Path    string
	OldType SourceType
	NewType SourceType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for %s: new type %s; old type %s", e.Path, e.NewType, e.OldType)
}

// ModnameMismatchError: re-supplying a module name that disagrees with the
// already-interned record.
type ModnameMismatchError struct {
	Path       string
	OldModname string
	NewModname string
}

func (e *ModnameMismatchError) Error() string {
	return fmt.Sprintf("modname mismatch for %s: new modname %q; old modname %q", e.Path, e.NewModname, e.OldModname)
}

// ModuleResolutionError: no candidate source path exists for a module name
// (spec.md §4.7); Tried lists every candidate attempted, per spec.md §7's
// "message lists every tried path".
type ModuleResolutionError struct {
	ModuleName string
	Tried      []string
}

func (e *ModuleResolutionError) Error() string {
	return fmt.Sprintf("unable to locate module %q: tried %v", e.ModuleName, e.Tried)
}

// CorruptInfoFileError: malformed JSON or an unrecognized dep tag prefix in
// an .info file. Per spec.md §7, this is NOT fatal — callers catch it and
// treat the file as needing a rebuild.
type CorruptInfoFileError struct {
	Path   string
	Reason string
}

func (e *CorruptInfoFileError) Error() string {
	return fmt.Sprintf("corrupt info file %s: %s", e.Path, e.Reason)
}

// CompilerFailedError forwards a nonzero compiler exit code verbatim.
type CompilerFailedError struct {
	ExitCode int
	Command  []string
}

func (e *CompilerFailedError) Error() string {
	return fmt.Sprintf("compiler exited with code %d: %v", e.ExitCode, e.Command)
}

func (e *CompilerFailedError) ExitStatus() int {
	return e.ExitCode
}

// ScanDepsFailedError: the Clang scanner still fails after header-unit recovery.
type ScanDepsFailedError struct {
	Path   string
	Reason string
}

func (e *ScanDepsFailedError) Error() string {
	return fmt.Sprintf("dependency scan failed for %s: %s", e.Path, e.Reason)
}

// PkgConfigFailedError: a directory opted into PKGCONFIG and pkg-config failed.
type PkgConfigFailedError struct {
	Package string
	Reason  string
}

func (e *PkgConfigFailedError) Error() string {
	return fmt.Sprintf("pkg-config failed for package %q: %s", e.Package, e.Reason)
}

// MapperProtocolViolationError: malformed batch framing from the compiler
// (unknown verbs are warn-and-continue per spec.md §9, not an error).
type MapperProtocolViolationError struct {
	Line string
}

func (e *MapperProtocolViolationError) Error() string {
	return fmt.Sprintf("malformed module-mapper protocol line: %q", e.Line)
}
