package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/masonry/adapter"
	adapterredis "github.com/justapithecus/masonry/adapter/redis"
	adapterwebhook "github.com/justapithecus/masonry/adapter/webhook"
	"github.com/justapithecus/masonry/archive"
	"github.com/justapithecus/masonry/cli/config"
	"github.com/justapithecus/masonry/log"
	"github.com/justapithecus/masonry/metrics"
	"github.com/justapithecus/masonry/pipeline"
	"github.com/justapithecus/masonry/preset"
	"github.com/justapithecus/masonry/report"
	"github.com/justapithecus/masonry/runlog"
	"github.com/justapithecus/masonry/toolchain"
	"github.com/justapithecus/masonry/types"
)

// publishTimeout bounds post-run adapter publishing so a dead endpoint
// cannot hang an otherwise finished pipeline.
const publishTimeout = 30 * time.Second

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}

// defaultPreset returns the platform default preset.
func defaultPreset(goos string) string {
	if goos == "windows" {
		return "windows-release"
	}
	return "linux-debug"
}

// newRunID generates a unique, time-sortable run identifier.
func newRunID(now time.Time) string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("run-%s-%s", now.UTC().Format("20060102T150405"), hex.EncodeToString(suffix))
}

// pipelineEnv carries everything a pipeline command prepares before
// handing off to the controller.
type pipelineEnv struct {
	cfg       *config.Config
	root      string
	preset    string
	meta      types.RunMeta
	logger    *log.Logger
	boot      *toolchain.Bootstrapper
	env       toolchain.Environ
	tools     toolchain.Report
	collector *metrics.Collector
	startTime time.Time
}

// loadConfig resolves the project root and loads masonry.yaml.
// Precedence: --root flag, then config file root, then cwd.
func loadConfig(c *cli.Context) (*config.Config, string, error) {
	root := c.String("root")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("cannot determine working directory: %w", err)
		}
		root = cwd
	}

	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault(root)
	}
	if err != nil {
		return nil, "", err
	}

	// Config may point the root elsewhere, but an explicit flag wins.
	if c.String("root") == "" && cfg.Root != "" {
		root = cfg.Root
	}

	return cfg, root, nil
}

// preparePipeline performs the run setup shared by build and lint:
// config, preset resolution, toolchain bootstrap, and tool probes.
func preparePipeline(ctx context.Context, c *cli.Context, pipe types.Pipeline, probes []toolchain.Probe) (*pipelineEnv, error) {
	cfg, root, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	presetName := c.String("preset")
	if presetName == "" {
		presetName = cfg.Preset
	}
	if presetName == "" {
		presetName = defaultPreset(runtime.GOOS)
	}

	startTime := time.Now()
	meta := types.RunMeta{
		RunID:    newRunID(startTime),
		Pipeline: pipe,
		Preset:   presetName,
	}
	logger := log.NewLogger(&meta)

	// Resolve the toolset: flag and config pins are explicit requests,
	// the preset graph is the fallback.
	toolset := c.String("toolset")
	if toolset == "" {
		toolset = cfg.Toolset
	}
	explicit := toolset != ""
	if toolset == "" {
		graph := preset.Load(root)
		toolset, _ = graph.ResolveToolset(presetName)
	}

	boot := toolchain.NewBootstrapper(logger.Sugar())
	env, err := boot.Bootstrap(ctx, toolchain.AmbientEnviron(), toolchain.BootstrapOptions{
		ToolsetVersion: toolset,
		Explicit:       explicit,
	})
	if err != nil {
		if errors.Is(err, toolchain.ErrEnvScriptFailed) {
			return nil, cli.Exit(fmt.Sprintf("[ERR] %v", err), 1)
		}
		return nil, err
	}

	tools := toolchain.RunProbes(ctx, toolchain.ExecRunner{}, env, probes)
	if !tools.Found("cmake") {
		return nil, cli.Exit("[ERR] cmake not found; install CMake and ensure it is on PATH", 1)
	}

	fmt.Print(report.Header(pipe, presetName, tools))

	return &pipelineEnv{
		cfg:       cfg,
		root:      root,
		preset:    presetName,
		meta:      meta,
		logger:    logger,
		boot:      boot,
		env:       env,
		tools:     tools,
		collector: metrics.NewCollector(string(pipe), presetName, meta.RunID),
		startTime: startTime,
	}, nil
}

// finishRun records the verdict and fans it out: run log, archive,
// completion adapter, then the rendered summary. Post-run persistence
// failures are warnings; only the pipeline verdict decides the exit
// code.
func finishRun(ctx context.Context, pe *pipelineEnv, result *pipeline.Result) error {
	rec := types.RunRecord{
		RunMeta:    pe.meta,
		StartedAt:  pe.startTime,
		DurationMs: result.Duration.Milliseconds(),
		Success:    result.Success,
		ExitCode:   result.ExitCode,
		Stages:     result.Stages,
		IssueCount: len(result.Issues),
		Tools:      pe.tools.ToRecord(),
	}
	if len(result.Issues) > 0 {
		rec.IssuesByCheck = report.ByCheck(result.Issues)
	}
	rec.Metrics = runMetrics(pe.collector.Snapshot())

	sugar := pe.logger.Sugar()

	if err := runlog.Append(runlog.DefaultPath(pe.root), &rec); err != nil {
		sugar.Warnf("run log append failed: %v", err)
	}

	if pe.cfg.Archive.Enabled() {
		if err := archiveRun(ctx, pe, rec, result.Issues); err != nil {
			sugar.Warnf("archive write failed: %v", err)
		}
	}

	if pe.cfg.Adapter.Enabled() {
		if err := publishCompletion(ctx, pe.cfg.Adapter, rec); err != nil {
			sugar.Warnf("completion publish failed: %v", err)
		}
	}

	summary := report.Summary{
		Pipeline: pe.meta.Pipeline,
		Success:  result.Success,
		Duration: result.Duration,
		Stages:   result.Stages,
		Issues:   result.Issues,
	}
	fmt.Print(summary.Render())

	if !result.Success {
		return cli.Exit("", result.ExitCode)
	}
	return nil
}

// archiveRun writes the run record and its issues to the configured
// archive backend.
func archiveRun(ctx context.Context, pe *pipelineEnv, rec types.RunRecord, issues []types.LintIssue) error {
	cfg := archive.Config{
		Dataset: archive.DefaultDataset,
		Project: filepath.Base(pe.root),
		Preset:  pe.preset,
		Day:     archive.DeriveDay(pe.startTime),
		RunID:   pe.meta.RunID,
	}

	var client *archive.Client
	var err error

	switch pe.cfg.Archive.Backend {
	case "fs":
		path := pe.cfg.Archive.Path
		if path == "" {
			path = filepath.Join(pe.root, ".masonry", "archive")
		}
		client, err = archive.NewClient(cfg, path)
	case "s3":
		bucket, prefix := archive.ParseS3Path(pe.cfg.Archive.Path)
		client, err = archive.NewS3Client(cfg, archive.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       pe.cfg.Archive.Region,
			Endpoint:     pe.cfg.Archive.Endpoint,
			UsePathStyle: pe.cfg.Archive.PathStyle,
		})
	default:
		return fmt.Errorf("unknown archive backend: %s (must be fs or s3)", pe.cfg.Archive.Backend)
	}
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	return client.WriteRun(ctx, rec, issues)
}

// publishCompletion builds the configured adapter and publishes the
// completion event.
func publishCompletion(ctx context.Context, cfg config.AdapterConfig, rec types.RunRecord) error {
	a, err := buildAdapter(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return a.Publish(publishCtx, adapter.FromRecord(rec))
}

// runMetrics converts the collector snapshot into the record form.
func runMetrics(snap *metrics.Snapshot) *types.RunMetrics {
	return &types.RunMetrics{
		StagesAttempted:  snap.StagesAttempted,
		StagesFailed:     snap.StagesFailed,
		ConfigureRetries: snap.ConfigureRetries,
		LinesClassified:  snap.LinesClassified,
		LinesPrinted:     snap.LinesPrinted,
		LinesSuppressed:  snap.LinesSuppressed,
		IssuesError:      snap.IssuesError,
		IssuesWarning:    snap.IssuesWarning,
	}
}

func buildAdapter(cfg config.AdapterConfig) (adapter.Adapter, error) {
	retries := -1
	if cfg.Retries != nil {
		retries = *cfg.Retries
	}

	switch cfg.Type {
	case "webhook":
		wcfg := adapterwebhook.Config{
			URL:     cfg.URL,
			Headers: cfg.Headers,
			Timeout: cfg.Timeout.Duration,
		}
		if retries >= 0 {
			wcfg.Retries = retries
		} else {
			wcfg.Retries = adapterwebhook.DefaultRetries
		}
		return adapterwebhook.New(wcfg)
	case "redis":
		rcfg := adapterredis.Config{
			URL:     cfg.URL,
			Channel: cfg.Channel,
			Timeout: cfg.Timeout.Duration,
		}
		if retries >= 0 {
			rcfg.Retries = retries
		} else {
			rcfg.Retries = adapterredis.DefaultRetries
		}
		return adapterredis.New(rcfg)
	default:
		return nil, fmt.Errorf("unknown adapter type: %s (must be webhook or redis)", cfg.Type)
	}
}
