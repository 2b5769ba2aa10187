package runlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/justapithecus/masonry/types"
)

// DefaultPath returns the run-log location under a project root.
func DefaultPath(rootDir string) string {
	return filepath.Join(rootDir, ".masonry", "runs.log")
}

// Append opens (creating as needed) the log at path and appends one
// record. The write is a single frame; concurrent appenders from
// separate pipeline invocations rely on O_APPEND atomicity.
func Append(path string, rec *types.RunRecord) error {
	frame, err := Encode(rec)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create run-log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(frame); err != nil {
		return fmt.Errorf("failed to append run record: %w", err)
	}
	return nil
}

// ReadAll decodes every record from r in append order.
// A trailing partial frame (interrupted writer) terminates the read
// with the records decoded so far and no error; decode corruption
// mid-log is reported.
func ReadAll(r io.Reader) ([]types.RunRecord, error) {
	decoder := NewFrameDecoder(r)
	var records []types.RunRecord
	for {
		rec, err := decoder.ReadRecord()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		var frameErr *FrameError
		if errors.As(err, &frameErr) && frameErr.Kind == FrameErrorPartial {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, *rec)
	}
}

// ReadFile loads all records from the log at path.
// A missing log is an empty history, not an error.
func ReadFile(path string) ([]types.RunRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadAll(f)
}

// Tail returns the last n records (all of them when n <= 0 or the log
// is shorter), newest last.
func Tail(records []types.RunRecord, n int) []types.RunRecord {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[len(records)-n:]
}
