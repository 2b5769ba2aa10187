package toolchain_test

import (
	"reflect"
	"testing"

	"github.com/justapithecus/masonry/toolchain"
)

func TestFromSlice(t *testing.T) {
	env := toolchain.FromSlice([]string{"PATH=/usr/bin", "EMPTY=", "noequals", "X=a=b"})

	if got := env.Get("PATH"); got != "/usr/bin" {
		t.Errorf("PATH = %q", got)
	}
	if !env.Has("EMPTY") || env.Get("EMPTY") != "" {
		t.Error("EMPTY should be present with empty value")
	}
	if env.Has("noequals") {
		t.Error("entries without = must be ignored")
	}
	// Value may itself contain =
	if got := env.Get("X"); got != "a=b" {
		t.Errorf("X = %q, want a=b", got)
	}
}

func TestEnviron_CloneIsIndependent(t *testing.T) {
	env := toolchain.Environ{"A": "1"}
	clone := env.Clone()
	clone["A"] = "2"
	clone["B"] = "3"

	if env.Get("A") != "1" || env.Has("B") {
		t.Errorf("mutating clone leaked into original: %v", env)
	}
}

func TestEnviron_SliceSorted(t *testing.T) {
	env := toolchain.Environ{"B": "2", "A": "1", "C": "3"}
	got := env.Slice()
	want := []string{"A=1", "B=2", "C=3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Slice() = %v, want %v", got, want)
	}
}

func TestEnviron_Equal(t *testing.T) {
	a := toolchain.Environ{"A": "1", "B": "2"}
	b := toolchain.Environ{"B": "2", "A": "1"}
	c := toolchain.Environ{"A": "1", "B": "other"}

	if !a.Equal(b) {
		t.Error("expected a == b")
	}
	if a.Equal(c) {
		t.Error("expected a != c")
	}
	if a.Equal(toolchain.Environ{"A": "1"}) {
		t.Error("expected size mismatch to differ")
	}
}
