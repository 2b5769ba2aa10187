package classify

import "strings"

// Summary phrases that are always printed and clear the failure block.
var ctestSummaryPhrases = []string{
	"tests passed",
	"tests failed",
	"Total Test time",
	"following tests FAILED",
}

// CTestClassifier suppresses passing-test noise and surfaces failures.
//
// State machine: idle until a "Failed" status line, then a failure
// block in which every line is printed verbatim (the failing test's
// detail output) until a summary or passing status line clears it.
type CTestClassifier struct {
	inFailureBlock bool
}

// NewCTestClassifier creates a classifier in the idle state.
func NewCTestClassifier() *CTestClassifier {
	return &CTestClassifier{}
}

// Classify implements Classifier for the ctest grammar.
func (c *CTestClassifier) Classify(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}

	// Status lines: "1/5 Test #1: Name ............ Passed  0.01 sec"
	isStatus := strings.Contains(trimmed, "Test #") &&
		(strings.Contains(trimmed, "Passed") || strings.Contains(trimmed, "Failed"))
	if isStatus {
		if strings.Contains(trimmed, "Passed") {
			c.inFailureBlock = false
			return "", false
		}
		c.inFailureBlock = true
		return trimmed, true
	}

	// "Start 3: TestName" announcements
	if strings.HasPrefix(trimmed, "Start ") && strings.Contains(trimmed, ":") {
		return "", false
	}

	for _, phrase := range ctestSummaryPhrases {
		if strings.Contains(trimmed, phrase) {
			c.inFailureBlock = false
			return trimmed, true
		}
	}

	if c.inFailureBlock {
		return trimmed, true
	}

	// "Test project <dir>" header and all remaining noise
	return "", false
}
