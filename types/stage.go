// Package types defines shared leaf types for the masonry pipeline.
//
// This package has no internal dependencies. All other packages may
// import it.
package types

import "time"

// Pipeline identifies which pipeline a run executed.
type Pipeline string

// Pipeline kinds.
const (
	PipelineBuild Pipeline = "build"
	PipelineLint  Pipeline = "lint"
)

// Stage identifies a single pipeline stage.
type Stage string

// Stage names, in execution order.
const (
	StageConfigure Stage = "configure"
	StageBuild     Stage = "build"
	StageTest      Stage = "test"
	StageLint      Stage = "lint"
)

// StageResult records the outcome of one stage invocation.
// Produced once per stage actually attempted; stages skipped by
// configuration produce no StageResult and never affect the verdict.
type StageResult struct {
	Stage    Stage         `json:"stage" msgpack:"stage"`
	ExitCode int           `json:"exit_code" msgpack:"exit_code"`
	Duration time.Duration `json:"duration" msgpack:"duration"`
}

// Success reports whether the stage exited cleanly.
func (r StageResult) Success() bool { return r.ExitCode == 0 }
