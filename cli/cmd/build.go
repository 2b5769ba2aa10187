package cmd

import (
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/masonry/pipeline"
	"github.com/justapithecus/masonry/toolchain"
	"github.com/justapithecus/masonry/types"
)

// BuildCommand returns the build command: configure, build, then test.
func BuildCommand() *cli.Command {
	flags := append(PipelineFlags(),
		&cli.BoolFlag{
			Name:  "clean",
			Usage: "Wipe the build directory before starting",
		},
		&cli.BoolFlag{
			Name:  "skip-tests",
			Usage: "Skip the test stage",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "Parallel jobs for the test stage",
		},
	)

	return &cli.Command{
		Name:   "build",
		Usage:  "Run the build pipeline: configure, build, test",
		Flags:  flags,
		Action: buildAction,
	}
}

func buildAction(c *cli.Context) error {
	ctx, cancel := signalContext()
	defer cancel()

	pe, err := preparePipeline(ctx, c, types.PipelineBuild, toolchain.BuildProbes(runtime.GOOS))
	if err != nil {
		return err
	}

	jobs := c.Int("jobs")
	if jobs <= 0 {
		jobs = pe.cfg.Jobs
	}

	ctrl := pipeline.NewController(pipeline.Config{
		RootDir:     pe.root,
		Preset:      pe.preset,
		Env:         pe.env,
		Reconfigure: c.Bool("reconfigure"),
		Clean:       c.Bool("clean"),
		SkipTests:   c.Bool("skip-tests") || pe.cfg.SkipTests,
		TestJobs:    jobs,
		Verbose:     c.Bool("verbose") || pe.cfg.Verbose,
		Log:         pe.logger.Sugar(),
		Collector:   pe.collector,
	})

	result, err := ctrl.RunBuild(ctx)
	if err != nil {
		return err
	}

	return finishRun(ctx, pe, result)
}
