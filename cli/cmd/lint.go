package cmd

import (
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/masonry/pipeline"
	"github.com/justapithecus/masonry/toolchain"
	"github.com/justapithecus/masonry/types"
)

// LintCommand returns the lint command: clang-tidy over the compile
// database, configuring on demand.
func LintCommand() *cli.Command {
	flags := append(PipelineFlags(),
		&cli.BoolFlag{
			Name:  "fix",
			Usage: "Apply clang-tidy fix-its",
		},
		&cli.StringFlag{
			Name:  "source-filter",
			Usage: "clang-tidy source filter regex (default: .*src.*)",
		},
	)

	return &cli.Command{
		Name:   "lint",
		Usage:  "Run clang-tidy static analysis over the project",
		Flags:  flags,
		Action: lintAction,
	}
}

func lintAction(c *cli.Context) error {
	ctx, cancel := signalContext()
	defer cancel()

	pe, err := preparePipeline(ctx, c, types.PipelineLint, toolchain.LintProbes(runtime.GOOS))
	if err != nil {
		return err
	}

	driver, located := pe.boot.FindRunClangTidy(pe.env)

	sourceFilter := c.String("source-filter")
	if sourceFilter == "" {
		sourceFilter = pe.cfg.Lint.SourceFilter
	}

	ctrl := pipeline.NewController(pipeline.Config{
		RootDir:      pe.root,
		Preset:       pe.preset,
		Env:          pe.env,
		Reconfigure:  c.Bool("reconfigure"),
		Verbose:      c.Bool("verbose") || pe.cfg.Verbose,
		LintFix:      c.Bool("fix") || pe.cfg.Lint.Fix,
		SourceFilter: sourceFilter,
		TidyDriver:   driver,
		TidyLocated:  located,
		Log:          pe.logger.Sugar(),
		Collector:    pe.collector,
	})

	result, err := ctrl.RunLint(ctx)
	if err != nil {
		return err
	}

	return finishRun(ctx, pe, result)
}
