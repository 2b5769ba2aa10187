package toolchain

import (
	"context"
	"errors"
	"os/exec"
	"sort"
	"strings"
)

// Failure sentinels recorded in place of a version string.
const (
	ProbeNotFound = "Not found"
	ProbeError    = "Error"
)

// Probe is one version-query invocation.
type Probe struct {
	Tool string
	Args []string
}

// BuildProbes returns the probe set for the build pipeline.
// The compiler probed depends on the platform: cl prints its banner to
// stderr on Windows, gcc and clang answer --version elsewhere.
func BuildProbes(goos string) []Probe {
	probes := []Probe{
		{Tool: "cmake", Args: []string{"cmake", "--version"}},
		{Tool: "git", Args: []string{"git", "--version"}},
		{Tool: "ninja", Args: []string{"ninja", "--version"}},
	}
	return append(probes, compilerProbes(goos)...)
}

// LintProbes returns the probe set for the lint pipeline.
func LintProbes(goos string) []Probe {
	probes := []Probe{
		{Tool: "cmake", Args: []string{"cmake", "--version"}},
		{Tool: "clang-tidy", Args: []string{"clang-tidy", "--version"}},
	}
	return append(probes, compilerProbes(goos)...)
}

func compilerProbes(goos string) []Probe {
	if goos == "windows" {
		return []Probe{{Tool: "msvc", Args: []string{"cl"}}}
	}
	return []Probe{
		{Tool: "gcc", Args: []string{"gcc", "--version"}},
		{Tool: "clang", Args: []string{"clang", "--version"}},
	}
}

// Report maps tool name to its probed version line or a failure
// sentinel. Constructed once per pipeline run and passed explicitly to
// the reporter; purely informational, never gates execution.
type Report map[string]string

// Found reports whether the named tool was located, regardless of
// whether a version could be read from it.
func (r Report) Found(tool string) bool {
	v, ok := r[tool]
	return ok && v != ProbeNotFound
}

// Tools returns the probed tool names in sorted order.
func (r Report) Tools() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunProbes executes each probe against the bootstrapped environment
// and records one version line per tool.
func RunProbes(ctx context.Context, runner Runner, env Environ, probes []Probe) Report {
	report := make(Report, len(probes))
	for _, p := range probes {
		report[p.Tool] = runProbe(ctx, runner, env, p)
	}
	return report
}

func runProbe(ctx context.Context, runner Runner, env Environ, p Probe) string {
	out, _, err := runner.CombinedOutput(ctx, env, p.Args[0], p.Args[1:]...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return ProbeNotFound
		}
		return ProbeError
	}
	line := firstLine(string(out))
	if line == "" {
		return "Unknown"
	}
	return line
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

// ToRecord converts the report into the run-record tool map.
func (r Report) ToRecord() map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
