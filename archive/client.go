package archive

import (
	"context"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/justapithecus/masonry/types"
)

// Client is a Lode-backed archive writer.
// Uses Lode's HiveLayout with partition keys: project/preset/day/run_id.
type Client struct {
	dataset lode.Dataset
	config  Config
}

// NewClient creates a new archive client with filesystem storage.
// The root parameter is the base directory for Hive-partitioned storage.
func NewClient(cfg Config, root string) (*Client, error) {
	return NewClientWithFactory(cfg, lode.NewFSFactory(root))
}

// NewClientWithFactory creates a new archive client with a custom store
// factory. Use lode.NewMemoryFactory() for testing.
func NewClientWithFactory(cfg Config, factory lode.StoreFactory) (*Client, error) {
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultDataset
	}

	ds, err := lode.NewDataset(
		lode.DatasetID(cfg.Dataset),
		factory,
		lode.WithHiveLayout("project", "preset", "day", "run_id"),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
	if err != nil {
		return nil, err
	}

	return newClient(ds, cfg), nil
}

func newClient(ds lode.Dataset, cfg Config) *Client {
	return &Client{
		dataset: ds,
		config:  cfg,
	}
}

// WriteRun writes a run summary record followed by one record per lint
// issue. All records land in the same partition, keyed by the configured
// run_id.
func (c *Client) WriteRun(ctx context.Context, rec types.RunRecord, issues []types.LintIssue) error {
	if c.config.RunID == "" {
		return ErrMissingRunID
	}

	records := make([]any, 0, 1+len(issues))
	records = append(records, toRunSummaryRecord(rec, c.config))
	for _, issue := range issues {
		records = append(records, toLintIssueRecord(issue, c.config))
	}

	_, err := c.dataset.Write(ctx, records, lode.Metadata{})
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	// Dataset doesn't require explicit close in current Lode API
	return nil
}

func toRunSummaryRecord(rec types.RunRecord, cfg Config) RunSummaryRecord {
	return RunSummaryRecord{
		RecordKind: RecordKindRunSummary,
		Pipeline:   string(rec.Pipeline),
		StartedAt:  rec.StartedAt.UTC().Format(time.RFC3339),
		DurationMs: rec.DurationMs,
		Success:    rec.Success,
		ExitCode:   rec.ExitCode,
		IssueCount: rec.IssueCount,
		Project:    cfg.Project,
		Preset:     cfg.Preset,
		Day:        cfg.Day,
		RunID:      cfg.RunID,
	}
}

func toLintIssueRecord(issue types.LintIssue, cfg Config) LintIssueRecord {
	return LintIssueRecord{
		RecordKind: RecordKindLintIssue,
		File:       issue.File,
		Line:       issue.Line,
		Col:        issue.Col,
		Severity:   string(issue.Severity),
		Message:    issue.Message,
		Check:      issue.Check,
		Project:    cfg.Project,
		Preset:     cfg.Preset,
		Day:        cfg.Day,
		RunID:      cfg.RunID,
	}
}
