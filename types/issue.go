package types

// Severity classifies a diagnostic line.
type Severity string

// Severities emitted by clang-tidy diagnostics.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Tracked reports whether issues of this severity count toward the lint
// verdict. Notes are contextual detail attached by the tool and are
// printed but never tracked.
func (s Severity) Tracked() bool {
	return s == SeverityError || s == SeverityWarning
}

// LintIssue is one classified static-analysis diagnostic.
// Line and Col are 1-based, as reported by the tool.
type LintIssue struct {
	File     string   `json:"file" msgpack:"file"`
	Line     int      `json:"line" msgpack:"line"`
	Col      int      `json:"col" msgpack:"col"`
	Severity Severity `json:"severity" msgpack:"severity"`
	Message  string   `json:"message" msgpack:"message"`
	Check    string   `json:"check" msgpack:"check"`
}
