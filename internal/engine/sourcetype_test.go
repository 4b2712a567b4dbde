package engine

import "testing"

func TestInferSourceType(t *testing.T) {
	tests := []struct {
		path     string
		wantType SourceType
		wantOk   bool
	}{
		{"foo.cc", TypeCPP, true},
		{"foo.cpp", TypeCPP, true},
		{"foo.cxx", TypeCPP, true},
		{"foo.c++", TypeCPP, true},
		{"foo.c", TypeC, true},
		{"foo.s", TypeASM, true},
		{"foo.S", TypeASM, true},
		{"foo.h", TypeUnknown, false},
		{"foo", TypeUnknown, false},
		{"dir.with.dots/foo.cc", TypeCPP, true},
	}
	for _, tt := range tests {
		got, ok := InferSourceType(tt.path)
		if got != tt.wantType || ok != tt.wantOk {
			t.Errorf("InferSourceType(%q) = (%v, %v), want (%v, %v)", tt.path, got, ok, tt.wantType, tt.wantOk)
		}
	}
}

func TestIsHeaderSuffix(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"foo.h", true}, {"foo.hpp", true}, {"foo.hh", true},
		{"foo.hxx", true}, {"foo.inl", true}, {"foo.inc", true},
		{"foo.cc", false}, {"foo", false},
	}
	for _, tt := range tests {
		if got := IsHeaderSuffix(tt.path); got != tt.want {
			t.Errorf("IsHeaderSuffix(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIsHeaderLike(t *testing.T) {
	tests := []struct {
		typ  SourceType
		want bool
	}{
		{TypeUserHeader, true},
		{TypeSystemHeader, true},
		{TypeGeneratedHeader, true},
		{TypeCPP, false},
		{TypeC, false},
		{TypeModule, false},
	}
	for _, tt := range tests {
		if got := tt.typ.IsHeaderLike(); got != tt.want {
			t.Errorf("%v.IsHeaderLike() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}
