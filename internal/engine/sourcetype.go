package engine

// SourceType classifies a SourceFile, mirroring spec.md §3's
// {C, CPP, ASM, USER_HEADER, SYSTEM_HEADER, GENERATED_HEADER, MODULE} set.
type SourceType int

const (
	TypeUnknown SourceType = iota
	TypeCPP
	TypeC
	TypeASM
	TypeUserHeader
	TypeSystemHeader
	TypeGeneratedHeader
	TypeModule
)

func (t SourceType) String() string {
	switch t {
	case TypeCPP:
		return "c++"
	case TypeC:
		return "c"
	case TypeASM:
		return "asm"
	case TypeUserHeader:
		return "user header"
	case TypeSystemHeader:
		return "system header"
	case TypeGeneratedHeader:
		return "generated header"
	case TypeModule:
		return "module"
	default:
		return "unknown"
	}
}

// IsHeaderLike reports whether files of this type never produce a linkable
// object (spec.md §4.8 step 3: "add the object to the link list (if not a header)").
func (t SourceType) IsHeaderLike() bool {
	return t == TypeUserHeader || t == TypeSystemHeader || t == TypeGeneratedHeader
}

// InferSourceType implements spec.md §4.1's extension inference:
// .cc/.cpp/.cxx/.c++ -> CPP, .c -> C, .s/.S -> ASM; anything else is
// unrecognized.
func InferSourceType(path string) (SourceType, bool) {
	switch suffixOf(path) {
	case ".cc", ".cpp", ".cxx", ".c++":
		return TypeCPP, true
	case ".c":
		return TypeC, true
	case ".s", ".S":
		return TypeASM, true
	default:
		return TypeUnknown, false
	}
}

// suffixOf returns the final extension including the leading dot, or "" if none.
func suffixOf(p string) string {
	dot := -1
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			break
		}
		if p[i] == '.' {
			dot = i
			break
		}
	}
	if dot == -1 {
		return ""
	}
	return p[dot:]
}

// IsHeaderSuffix reports whether path has a suffix the header resolver (C4) recognizes.
func IsHeaderSuffix(path string) bool {
	switch suffixOf(path) {
	case ".h", ".hpp", ".hh", ".hxx", ".inl", ".inc":
		return true
	default:
		return false
	}
}

// IsCppImplSuffix reports whether path is a C/C++ implementation file.
func IsCppImplSuffix(path string) bool {
	switch suffixOf(path) {
	case ".cc", ".cpp", ".c", ".cxx", ".c++":
		return true
	default:
		return false
	}
}
