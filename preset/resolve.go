package preset

import (
	"regexp"
	"strings"
)

// versionFragmentPattern matches a "version=14.40" fragment inside a
// toolset string, with flexible whitespace and case. MSVC toolset
// strings look like "v143,version=14.40".
var versionFragmentPattern = regexp.MustCompile(`(?i)version\s*=\s*([0-9][0-9.]*)`)

// bareVersionPattern matches a toolset value that is nothing but a
// version number (digits and dots).
var bareVersionPattern = regexp.MustCompile(`^[0-9][0-9.]*$`)

// ResolveToolset walks the inheritance graph from the named preset and
// returns the first toolset version found, or ok=false when the preset
// is unknown or no preset on any inheritance path declares one.
//
// Override semantics, preserved exactly from CMake preset inheritance:
// a preset's own toolset wins over anything inherited, and the
// first-listed parent wins over later ones. A visited set threaded
// through the walk makes cyclic inherits chains terminate.
func (g Graph) ResolveToolset(name string) (string, bool) {
	return g.resolveToolset(name, make(map[string]bool))
}

func (g Graph) resolveToolset(name string, visited map[string]bool) (string, bool) {
	if visited[name] {
		return "", false
	}
	p, ok := g[name]
	if !ok {
		return "", false
	}
	visited[name] = true

	// Own value first: short-circuits the parent search entirely.
	if v, ok := extractVersion(p.Toolset.Value); ok {
		return v, true
	}

	for _, parent := range p.Inherits {
		if v, ok := g.resolveToolset(parent, visited); ok {
			return v, true
		}
	}
	return "", false
}

// extractVersion pulls a toolset version out of a toolset value string.
// Either a version= fragment or a bare all-digits/dots value matches.
func extractVersion(toolset string) (string, bool) {
	trimmed := strings.TrimSpace(toolset)
	if trimmed == "" {
		return "", false
	}
	if m := versionFragmentPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1], true
	}
	if bareVersionPattern.MatchString(trimmed) {
		return trimmed, true
	}
	return "", false
}
