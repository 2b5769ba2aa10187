// Package adapter defines the completion-notification boundary.
//
// Adapters publish pipeline completion events to downstream systems
// (CI dashboards, chat hooks, queues). The CLI owns adapter lifecycle;
// users provide configuration only.
package adapter

import (
	"context"
	"time"

	"github.com/justapithecus/masonry/types"
)

// EventTypePipelineCompleted is the event_type stamped on every
// completion payload.
const EventTypePipelineCompleted = "pipeline_completed"

// PipelineCompletedEvent is the payload published when a pipeline run
// finishes, regardless of verdict.
type PipelineCompletedEvent struct {
	EventType  string `json:"event_type"` // always "pipeline_completed"
	RunID      string `json:"run_id"`
	Pipeline   string `json:"pipeline"`
	Preset     string `json:"preset"`
	Success    bool   `json:"success"`
	ExitCode   int    `json:"exit_code"`
	IssueCount int    `json:"issue_count"`
	DurationMs int64  `json:"duration_ms"`
	Timestamp  string `json:"timestamp"` // ISO 8601
}

// FromRecord builds a completion event from a finished run record.
func FromRecord(rec types.RunRecord) *PipelineCompletedEvent {
	return &PipelineCompletedEvent{
		EventType:  EventTypePipelineCompleted,
		RunID:      rec.RunID,
		Pipeline:   string(rec.Pipeline),
		Preset:     rec.Preset,
		Success:    rec.Success,
		ExitCode:   rec.ExitCode,
		IssueCount: rec.IssueCount,
		DurationMs: rec.DurationMs,
		Timestamp:  rec.StartedAt.UTC().Format(time.RFC3339),
	}
}

// Adapter publishes pipeline completion events to a downstream system.
// Implementations must be safe for single-use per run.
type Adapter interface {
	// Publish sends a pipeline completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *PipelineCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
