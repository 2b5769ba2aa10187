// Package pipeline sequences the configure, build, test and lint stages
// against the bootstrapped toolchain environment and aggregates the
// final verdict.
//
// Execution is single-threaded and synchronous: one child process per
// stage, its merged output consumed line-by-line to end-of-stream, then
// the exit status. Stages run strictly sequentially.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/justapithecus/masonry/classify"
	"github.com/justapithecus/masonry/iox"
	"github.com/justapithecus/masonry/log"
	"github.com/justapithecus/masonry/metrics"
	"github.com/justapithecus/masonry/toolchain"
	"github.com/justapithecus/masonry/types"
)

// DefaultTestJobs is the ctest parallelism when none is configured.
const DefaultTestJobs = 16

// DefaultSourceFilter restricts clang-tidy to first-party sources.
const DefaultSourceFilter = ".*src.*"

// Config configures a pipeline controller.
type Config struct {
	// RootDir is the project root (presets, CMakeLists.txt).
	RootDir string
	// Preset is the CMake preset name for every stage.
	Preset string
	// BuildDir overrides the build directory.
	// Defaults to <RootDir>/out/build/<Preset>.
	BuildDir string
	// Env is the bootstrapped environment, copied into every child.
	Env toolchain.Environ

	// Reconfigure forces the configure stage regardless of cache state.
	Reconfigure bool
	// Clean wipes the build directory before starting.
	Clean bool
	// SkipTests skips the test stage; it then never affects the verdict.
	SkipTests bool
	// TestJobs is the ctest parallelism (default DefaultTestJobs).
	TestJobs int

	// Verbose prints plain lint output that would otherwise be suppressed.
	Verbose bool
	// LintFix passes -fix to run-clang-tidy.
	LintFix bool
	// SourceFilter is the clang-tidy source filter regex
	// (default DefaultSourceFilter).
	SourceFilter string
	// TidyDriver is the located run-clang-tidy invocation.
	TidyDriver toolchain.TidyDriver
	// TidyLocated marks TidyDriver as valid. Lint fails fast otherwise.
	TidyLocated bool

	// Out receives stage output and pipeline diagnostics (default os.Stdout).
	Out io.Writer
	// Log is the pipeline logger.
	Log *log.SugaredLogger
	// Collector records run metrics. Nil-safe.
	Collector *metrics.Collector
	// StageFactory overrides stage process creation (for testing).
	// If nil, uses StartStage.
	StageFactory StageFactory
}

// Result is the aggregated pipeline verdict.
type Result struct {
	// Success is the logical AND of all stages actually attempted
	// (and, for lint, a zero classified-issue count).
	Success bool
	// ExitCode is 0 on success, the failing stage's exit code, or 1 for
	// internally-detected failures.
	ExitCode int
	// Stages holds one result per stage attempted, in order.
	Stages []types.StageResult
	// Issues holds the classified lint issues (lint pipeline only).
	Issues []types.LintIssue
	// Duration is the wall-clock time of the whole pipeline.
	Duration time.Duration
}

// Controller sequences pipeline stages.
type Controller struct {
	cfg     Config
	out     io.Writer
	factory StageFactory
}

// NewController creates a controller, applying defaults.
func NewController(cfg Config) *Controller {
	if cfg.BuildDir == "" {
		cfg.BuildDir = filepath.Join(cfg.RootDir, "out", "build", cfg.Preset)
	}
	if cfg.TestJobs <= 0 {
		cfg.TestJobs = DefaultTestJobs
	}
	if cfg.SourceFilter == "" {
		cfg.SourceFilter = DefaultSourceFilter
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	factory := cfg.StageFactory
	if factory == nil {
		factory = StartStage
	}
	return &Controller{cfg: cfg, out: out, factory: factory}
}

// BuildDir returns the resolved build directory.
func (c *Controller) BuildDir() string { return c.cfg.BuildDir }

// RunBuild executes the full pipeline: configure, build, test.
func (c *Controller) RunBuild(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{Success: true}

	c.cleanIfRequested()

	if ok, err := c.configure(ctx, result, false); err != nil || !ok {
		result.Duration = time.Since(start)
		return result, err
	}

	fmt.Fprintf(c.out, "\n>>> STAGE: BUILD\n")
	buildArgv := []string{"cmake", "--build", "--preset", c.cfg.Preset, "--parallel"}
	res, err := c.runStage(ctx, types.StageBuild, buildArgv, classify.Passthrough{})
	if err != nil {
		return nil, err
	}
	result.Stages = append(result.Stages, res)
	if !res.Success() {
		result.Success = false
		result.ExitCode = res.ExitCode
		result.Duration = time.Since(start)
		return result, nil
	}

	if !c.cfg.SkipTests {
		fmt.Fprintf(c.out, "\n>>> STAGE: TEST\n")
		testArgv := []string{
			"ctest", "--preset", c.cfg.Preset,
			"--output-on-failure", "-j" + strconv.Itoa(c.cfg.TestJobs),
		}
		res, err := c.runStage(ctx, types.StageTest, testArgv, classify.NewCTestClassifier())
		if err != nil {
			return nil, err
		}
		result.Stages = append(result.Stages, res)
		if !res.Success() {
			// The test runner's exit code alone decides; the classifier
			// only shapes what was printed.
			result.Success = false
			result.ExitCode = res.ExitCode
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// RunLint executes the lint pipeline: configure on demand, then the
// static-analysis runner.
func (c *Controller) RunLint(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{Success: true}

	compileDB := filepath.Join(c.cfg.BuildDir, "compile_commands.json")
	if _, err := os.Stat(compileDB); err != nil {
		fmt.Fprintf(c.out, "[LINT] compile_commands.json not found in %s. Configuring...\n", c.cfg.BuildDir)
		// The compilation database is missing, so the cache state is
		// irrelevant: configure must run to generate it.
		if ok, err := c.configure(ctx, result, true); err != nil || !ok {
			result.Duration = time.Since(start)
			return result, err
		}
		if _, err := os.Stat(compileDB); err != nil {
			fmt.Fprintf(c.out, "[ERR] Failed to generate compile_commands.json at %s\n", compileDB)
			result.Success = false
			result.ExitCode = 1
			result.Duration = time.Since(start)
			return result, nil
		}
	}

	if !c.cfg.TidyLocated {
		fmt.Fprintf(c.out, "[ERR] run-clang-tidy not found. Please ensure LLVM is installed.\n")
		result.Success = false
		result.ExitCode = 1
		result.Duration = time.Since(start)
		return result, nil
	}
	fmt.Fprintf(c.out, "[LINT] Using %s\n", strings.Join(c.cfg.TidyDriver.Argv(), " "))

	argv := append(c.cfg.TidyDriver.Argv(),
		"-p", c.cfg.BuildDir,
		"-quiet",
		"-source-filter", c.cfg.SourceFilter,
		"-warnings-as-errors", "*",
	)
	if c.cfg.LintFix {
		argv = append(argv, "-fix")
	}

	fmt.Fprintf(c.out, "\n>>> STAGE: LINT\n")
	classifier := classify.NewTidyClassifier(c.cfg.Verbose)
	res, err := c.runStage(ctx, types.StageLint, argv, classifier)
	if err != nil {
		return nil, err
	}
	result.Stages = append(result.Stages, res)
	result.Issues = classifier.Issues()
	for _, issue := range result.Issues {
		c.cfg.Collector.IssueRecorded(string(issue.Severity))
	}

	// The runner may exit zero with issues found: warnings-as-errors is
	// enforced by argument, not guaranteed by the tool's own exit
	// semantics, so the exit code alone is not trusted here.
	if !res.Success() || len(result.Issues) > 0 {
		result.Success = false
		result.ExitCode = res.ExitCode
		if result.ExitCode == 0 {
			result.ExitCode = 1
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// cleanIfRequested wipes the build directory on --clean.
func (c *Controller) cleanIfRequested() {
	if !c.cfg.Clean {
		return
	}
	if _, err := os.Stat(c.cfg.BuildDir); err != nil {
		return
	}
	fmt.Fprintf(c.out, "[CLEAN] Removing build directory: %s\n", c.cfg.BuildDir)
	iox.RemoveAllQuiet(c.cfg.BuildDir)
}

// configure runs the configure stage when needed, with one auto-heal
// retry: on first failure the build directory is deleted best-effort
// and configure runs once more. force bypasses the staleness check
// entirely. Returns ok=false when the pipeline must stop; result
// carries the verdict.
func (c *Controller) configure(ctx context.Context, result *Result, force bool) (bool, error) {
	should := force || c.cfg.Reconfigure
	if !should {
		stale, reason := CacheStale(c.cfg.BuildDir, c.cfg.RootDir)
		if stale && reason != "" {
			fmt.Fprintf(c.out, "[CONF] Cache is stale: %s was modified.\n", reason)
		}
		should = stale
	}
	if !should {
		fmt.Fprintf(c.out, "\n[CONF] Configuration skipped (Cache is up to date). Use --reconfigure to force.\n")
		return true, nil
	}

	fmt.Fprintf(c.out, "\n>>> STAGE: CONFIGURE\n")
	argv := []string{"cmake", "--preset", c.cfg.Preset}
	res, err := c.runStage(ctx, types.StageConfigure, argv, classify.Passthrough{})
	if err != nil {
		return false, err
	}

	if !res.Success() {
		fmt.Fprintf(c.out, "[QUIRK] Configuration failed. Attempting clean retry...\n")
		iox.RemoveAllQuiet(c.cfg.BuildDir)
		c.cfg.Collector.ConfigureRetried()

		res, err = c.runStage(ctx, types.StageConfigure, argv, classify.Passthrough{})
		if err != nil {
			return false, err
		}
		if !res.Success() {
			result.Stages = append(result.Stages, res)
			result.Success = false
			result.ExitCode = res.ExitCode
			return false, nil
		}
	}

	result.Stages = append(result.Stages, res)
	return true, nil
}

// runStage spawns one stage, streams its merged output through the
// classifier, and waits for the exit status.
func (c *Controller) runStage(ctx context.Context, stage types.Stage, argv []string, classifier classify.Classifier) (types.StageResult, error) {
	fmt.Fprintf(c.out, "\n[EXEC] %s\n", strings.Join(argv, " "))
	start := time.Now()

	proc, err := c.factory(ctx, c.cfg.Env, c.cfg.RootDir, argv)
	if err != nil {
		return types.StageResult{}, fmt.Errorf("stage %s: %w", stage, err)
	}

	streamErr := classify.Stream(proc.Output(), c.out, &countingClassifier{
		inner:     classifier,
		collector: c.cfg.Collector,
	})
	if streamErr != nil {
		// The child keeps writing even after the classifier gives up;
		// the pipe must reach EOF or Wait blocks on a full buffer.
		_, _ = io.Copy(io.Discard, proc.Output())
	}

	exitCode, waitErr := proc.Wait()
	if waitErr != nil {
		return types.StageResult{}, fmt.Errorf("stage %s: %w", stage, waitErr)
	}
	if streamErr != nil && c.cfg.Log != nil {
		c.cfg.Log.Warnf("stage %s output stream: %v", stage, streamErr)
	}

	res := types.StageResult{Stage: stage, ExitCode: exitCode, Duration: time.Since(start)}
	c.cfg.Collector.StageAttempted(!res.Success())
	if !res.Success() {
		fmt.Fprintf(c.out, "\n[ERR] Command failed with code %d\n", exitCode)
	}
	return res, nil
}

// countingClassifier wraps a classifier with metrics recording.
type countingClassifier struct {
	inner     classify.Classifier
	collector *metrics.Collector
}

func (c *countingClassifier) Classify(line string) (string, bool) {
	out, keep := c.inner.Classify(line)
	c.collector.LineClassified(keep)
	return out, keep
}
