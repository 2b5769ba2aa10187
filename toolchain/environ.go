// Package toolchain discovers and activates the platform compiler
// environment and probes tool versions for diagnostic reporting.
//
// On Windows the bootstrapper locates Visual Studio via vswhere, runs
// vcvars64.bat in a nested shell, and captures the resulting variables.
// Everywhere else, and whenever discovery fails short of a broken
// vcvars script, the ambient process environment is used unchanged:
// bootstrap is best-effort and must never abort the pipeline by itself.
package toolchain

import (
	"os"
	"sort"
	"strings"
)

// Environ is an environment-variable mapping. The pipeline owns one
// Environ per run and passes copies into every child-process
// invocation; no component mutates another component's copy.
type Environ map[string]string

// AmbientEnviron captures the current process environment.
func AmbientEnviron() Environ {
	return FromSlice(os.Environ())
}

// FromSlice builds an Environ from KEY=VALUE entries.
// Later duplicates win, matching os/exec semantics.
func FromSlice(entries []string) Environ {
	env := make(Environ, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// Clone returns an independent copy.
func (e Environ) Clone() Environ {
	out := make(Environ, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Get returns the value for key, or "" when unset.
func (e Environ) Get(key string) string { return e[key] }

// Has reports whether key is set.
func (e Environ) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Slice renders the environment as sorted KEY=VALUE entries for
// exec.Cmd.Env. Sorting keeps child invocations deterministic.
func (e Environ) Slice() []string {
	entries := make([]string, 0, len(e))
	for k, v := range e {
		entries = append(entries, k+"="+v)
	}
	sort.Strings(entries)
	return entries
}

// Equal reports whether two environments hold identical mappings.
func (e Environ) Equal(other Environ) bool {
	if len(e) != len(other) {
		return false
	}
	for k, v := range e {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// overlayBlock parses KEY=VALUE lines and overlays them onto a copy of
// base. Lines without "=" are ignored. Parsed variables overwrite base
// entries of the same name.
func overlayBlock(base Environ, block string) Environ {
	env := base.Clone()
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimRight(line, "\r")
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}
