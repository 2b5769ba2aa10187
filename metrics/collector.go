// Package metrics provides per-run metrics collection.
//
// The Collector accumulates counters during a single pipeline run. It is
// a leaf package with no internal dependencies. Classifier counters are
// recorded live while streaming; stage counters at stage completion.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all run metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after
// creation.
type Snapshot struct {
	// Stages
	StagesAttempted  int64
	StagesFailed     int64
	ConfigureRetries int64

	// Classifier
	LinesClassified int64
	LinesPrinted    int64
	LinesSuppressed int64

	// Lint issues by severity
	IssuesError   int64
	IssuesWarning int64

	// Dimensions (informational, set at construction)
	Pipeline string
	Preset   string
	RunID    string
}

// Collector accumulates metrics during a single run.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver
// safe so callers never need to guard against a missing collector.
type Collector struct {
	mu sync.Mutex

	stagesAttempted  int64
	stagesFailed     int64
	configureRetries int64

	linesClassified int64
	linesPrinted    int64
	linesSuppressed int64

	issuesError   int64
	issuesWarning int64

	pipeline string
	preset   string
	runID    string
}

// NewCollector creates a collector with the given dimensions.
func NewCollector(pipeline, preset, runID string) *Collector {
	return &Collector{pipeline: pipeline, preset: preset, runID: runID}
}

// StageAttempted records one stage invocation and whether it failed.
func (c *Collector) StageAttempted(failed bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stagesAttempted++
	if failed {
		c.stagesFailed++
	}
}

// ConfigureRetried records one configure auto-heal retry.
func (c *Collector) ConfigureRetried() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configureRetries++
}

// LineClassified records one classified line and whether it was printed.
func (c *Collector) LineClassified(printed bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.linesClassified++
	if printed {
		c.linesPrinted++
	} else {
		c.linesSuppressed++
	}
}

// IssueRecorded records one tracked lint issue by severity.
func (c *Collector) IssueRecorded(severity string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch severity {
	case "error":
		c.issuesError++
	case "warning":
		c.issuesWarning++
	}
}

// Snapshot returns an immutable copy of all counters.
func (c *Collector) Snapshot() *Snapshot {
	if c == nil {
		return &Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return &Snapshot{
		StagesAttempted:  c.stagesAttempted,
		StagesFailed:     c.stagesFailed,
		ConfigureRetries: c.configureRetries,
		LinesClassified:  c.linesClassified,
		LinesPrinted:     c.linesPrinted,
		LinesSuppressed:  c.linesSuppressed,
		IssuesError:      c.issuesError,
		IssuesWarning:    c.issuesWarning,
		Pipeline:         c.pipeline,
		Preset:           c.preset,
		RunID:            c.runID,
	}
}
