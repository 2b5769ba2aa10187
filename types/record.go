package types

import "time"

// RunMeta carries the identity of one pipeline run.
// Threaded through logging, the run log, and completion adapters.
type RunMeta struct {
	// RunID uniquely identifies this pipeline invocation.
	RunID string `json:"run_id" msgpack:"run_id"`
	// Pipeline is the pipeline kind executed.
	Pipeline Pipeline `json:"pipeline" msgpack:"pipeline"`
	// Preset is the CMake preset the run targeted.
	Preset string `json:"preset" msgpack:"preset"`
}

// RunRecord is the durable record of one pipeline run, appended to the
// run log after the verdict is known and read back by the history and
// stats surfaces.
type RunRecord struct {
	RunMeta `msgpack:",inline"`

	StartedAt  time.Time     `json:"started_at" msgpack:"started_at"`
	DurationMs int64         `json:"duration_ms" msgpack:"duration_ms"`
	Success    bool          `json:"success" msgpack:"success"`
	ExitCode   int           `json:"exit_code" msgpack:"exit_code"`
	Stages     []StageResult `json:"stages" msgpack:"stages"`

	// Lint-pipeline detail; empty for build runs.
	IssueCount    int            `json:"issue_count" msgpack:"issue_count"`
	IssuesByCheck map[string]int `json:"issues_by_check,omitempty" msgpack:"issues_by_check,omitempty"`

	// Tools is the probe report captured at startup (informational).
	Tools map[string]string `json:"tools,omitempty" msgpack:"tools,omitempty"`

	// Metrics is the collector snapshot taken at completion.
	Metrics *RunMetrics `json:"metrics,omitempty" msgpack:"metrics,omitempty"`
}

// RunMetrics is the counter snapshot persisted with each run record:
// stage attempts and failures, configure auto-heal retries, classifier
// throughput, and tracked lint issues by severity.
type RunMetrics struct {
	StagesAttempted  int64 `json:"stages_attempted" msgpack:"stages_attempted"`
	StagesFailed     int64 `json:"stages_failed" msgpack:"stages_failed"`
	ConfigureRetries int64 `json:"configure_retries" msgpack:"configure_retries"`

	LinesClassified int64 `json:"lines_classified" msgpack:"lines_classified"`
	LinesPrinted    int64 `json:"lines_printed" msgpack:"lines_printed"`
	LinesSuppressed int64 `json:"lines_suppressed" msgpack:"lines_suppressed"`

	IssuesError   int64 `json:"issues_error" msgpack:"issues_error"`
	IssuesWarning int64 `json:"issues_warning" msgpack:"issues_warning"`
}
