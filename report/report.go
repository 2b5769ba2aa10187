// Package report aggregates classified lint issues and renders the
// pipeline header and summary blocks.
package report

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/justapithecus/masonry/toolchain"
	"github.com/justapithecus/masonry/types"
)

// Frequency is one row of the check-identifier frequency table.
type Frequency struct {
	Check string `json:"check"`
	Count int    `json:"count"`
}

// Frequencies groups issues by check identifier, ordered by descending
// count with alphabetical tie-break for deterministic output.
func Frequencies(issues []types.LintIssue) []Frequency {
	counts := make(map[string]int)
	for _, issue := range issues {
		counts[issue.Check]++
	}

	table := make([]Frequency, 0, len(counts))
	for check, count := range counts {
		table = append(table, Frequency{Check: check, Count: count})
	}
	sort.Slice(table, func(i, j int) bool {
		if table[i].Count != table[j].Count {
			return table[i].Count > table[j].Count
		}
		return table[i].Check < table[j].Check
	})
	return table
}

// ByCheck renders the frequency table as a plain map for the run record.
func ByCheck(issues []types.LintIssue) map[string]int {
	if len(issues) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, issue := range issues {
		counts[issue.Check]++
	}
	return counts
}

const rule = "============================================================"
const thinRule = "------------------------------------------------------------"

// Header renders the pipeline banner: timestamp, host OS, preset, core
// count, and the tool probe table.
func Header(pipeline types.Pipeline, preset string, tools toolchain.Report) string {
	var b strings.Builder
	title := "MASONRY PIPELINE"
	if pipeline == types.PipelineLint {
		title = "MASONRY LINT PIPELINE"
	}

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%s - %s\n", title, time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "OS:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&b, "Preset: %s | Cores: %d\n", preset, cpuCount())
	fmt.Fprintln(&b, thinRule)
	fmt.Fprintln(&b, "Tools:")
	for _, tool := range tools.Tools() {
		fmt.Fprintf(&b, "  • %-12s : %s\n", tool, tools[tool])
	}
	fmt.Fprintln(&b, rule)
	return b.String()
}

func cpuCount() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

// Summary describes a finished pipeline run for rendering.
type Summary struct {
	Pipeline types.Pipeline
	Success  bool
	Duration time.Duration
	Stages   []types.StageResult

	// Lint-pipeline detail; nil for build runs.
	Issues []types.LintIssue
}

// Render produces the final summary block.
func (s *Summary) Render() string {
	var b strings.Builder

	title := "PIPELINE SUMMARY"
	if s.Pipeline == types.PipelineLint {
		title = "LINT SUMMARY"
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, title)
	fmt.Fprintf(&b, "Result:   %s\n", s.renderStatus())
	fmt.Fprintf(&b, "Duration: %.2fs\n", s.Duration.Seconds())

	for _, stage := range s.Stages {
		mark := "ok"
		if !stage.Success() {
			mark = fmt.Sprintf("exit %d", stage.ExitCode)
		}
		fmt.Fprintf(&b, "  %-10s %-8s %.2fs\n", stage.Stage, mark, stage.Duration.Seconds())
	}

	if s.Pipeline == types.PipelineLint {
		fmt.Fprintf(&b, "Issues:   %d\n", len(s.Issues))
		for _, row := range Frequencies(s.Issues) {
			fmt.Fprintf(&b, "  %4d  %s\n", row.Count, row.Check)
		}
	}

	fmt.Fprintln(&b, rule)
	return b.String()
}

func (s *Summary) renderStatus() string {
	if s.Success {
		return successStyle().Render("✨ SUCCESS")
	}
	return failureStyle().Render("❌ FAILED")
}

// isTTY reports whether stdout is a terminal; styling is skipped when
// output is piped.
func isTTY() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
