package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/justapithecus/masonry/types"
)

// ansiPattern strips ANSI escape sequences; run-clang-tidy colorizes
// diagnostics even when piped.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// diagnosticPattern matches one clang-tidy diagnostic:
//
//	<path>:<line>:<col>: <severity>: <message> [<check>]
//
// The path may carry a single-letter drive prefix on Windows.
var diagnosticPattern = regexp.MustCompile(
	`^((?:[A-Za-z]:)?[^:]+):(\d+):(\d+): (error|warning|note): (.*?) \[([^\[\]]+)\]$`)

// Noise footers emitted by run-clang-tidy that carry no diagnostics.
var tidyNoisePhrases = []string{
	"warnings generated",
	"non-user code",
}

// TidyClassifier parses clang-tidy diagnostics into LintIssue records.
//
// Matched diagnostic lines are always printed; only error and warning
// severities are appended to the issue list (notes are contextual
// detail, printed but not tracked). Non-matching lines are mostly
// suppressed unless verbose mode is on or the line looks load-bearing.
type TidyClassifier struct {
	verbose bool
	issues  []types.LintIssue
}

// NewTidyClassifier creates a classifier. With verbose set, non-noise
// plain text is printed instead of suppressed.
func NewTidyClassifier(verbose bool) *TidyClassifier {
	return &TidyClassifier{verbose: verbose}
}

// Classify implements Classifier for the clang-tidy grammar.
func (c *TidyClassifier) Classify(line string) (string, bool) {
	cleaned := strings.TrimSpace(ansiPattern.ReplaceAllString(line, ""))
	if cleaned == "" {
		return "", false
	}

	if m := diagnosticPattern.FindStringSubmatch(cleaned); m != nil {
		severity := types.Severity(m[4])
		if severity.Tracked() {
			lineNo, _ := strconv.Atoi(m[2])
			colNo, _ := strconv.Atoi(m[3])
			c.issues = append(c.issues, types.LintIssue{
				File:     m[1],
				Line:     lineNo,
				Col:      colNo,
				Severity: severity,
				Message:  m[5],
				Check:    m[6],
			})
		}
		return cleaned, true
	}

	for _, phrase := range tidyNoisePhrases {
		if strings.Contains(cleaned, phrase) {
			return "", false
		}
	}

	if c.verbose || strings.Contains(cleaned, "error:") || strings.Contains(cleaned, "Enabled checks") {
		return cleaned, true
	}
	return "", false
}

// Issues returns the tracked error/warning issues in arrival order.
func (c *TidyClassifier) Issues() []types.LintIssue {
	out := make([]types.LintIssue, len(c.issues))
	copy(out, c.issues)
	return out
}

// IssueCount returns the number of tracked issues.
func (c *TidyClassifier) IssueCount() int { return len(c.issues) }
