// Package archive persists pipeline outcomes and lint findings to Lode
// datasets for long-term retention and cross-run analysis.
//
// Records are Hive-partitioned by project/preset/day/run_id so that a
// single preset's history, or a single day across presets, can be read
// back without scanning the whole dataset.
package archive

import (
	"errors"
	"time"
)

// DefaultDataset is the Lode dataset ID used when none is configured.
const DefaultDataset = "masonry"

// ErrMissingRunID is returned when a write is attempted without a run
// identifier, which would corrupt the partition layout.
var ErrMissingRunID = errors.New("archive write rejected: missing run_id")

// DeriveDay computes the partition day from run start time.
// Format: YYYY-MM-DD in UTC.
func DeriveDay(startTime time.Time) string {
	return startTime.UTC().Format("2006-01-02")
}

// Config holds archive partition configuration.
// All partition keys are required.
type Config struct {
	// Dataset is the Lode dataset ID.
	Dataset string
	// Project is the partition key for the project being built.
	Project string
	// Preset is the partition key for the CMake preset.
	Preset string
	// Day is the partition key derived from run start time (YYYY-MM-DD UTC).
	Day string
	// RunID is the partition key for the run identifier.
	RunID string
}

// Record kind discriminator values.
const (
	RecordKindRunSummary = "run_summary"
	RecordKindLintIssue  = "lint_issue"
)

// RunSummaryRecord is the storage format for a completed pipeline run.
type RunSummaryRecord struct {
	// Record discriminator
	RecordKind string `json:"record_kind"`

	// Run fields
	Pipeline   string `json:"pipeline"`
	StartedAt  string `json:"started_at"`
	DurationMs int64  `json:"duration_ms"`
	Success    bool   `json:"success"`
	ExitCode   int    `json:"exit_code"`
	IssueCount int    `json:"issue_count"`

	// Partition keys (used by Lode HiveLayout)
	Project string `json:"project"`
	Preset  string `json:"preset"`
	Day     string `json:"day"`
	RunID   string `json:"run_id"`
}

// LintIssueRecord is the storage format for a single lint finding.
type LintIssueRecord struct {
	// Record discriminator
	RecordKind string `json:"record_kind"`

	// Issue fields
	File     string `json:"file"`
	Line     int    `json:"line"`
	Col      int    `json:"col"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Check    string `json:"check"`

	// Partition keys
	Project string `json:"project"`
	Preset  string `json:"preset"`
	Day     string `json:"day"`
	RunID   string `json:"run_id"`
}
