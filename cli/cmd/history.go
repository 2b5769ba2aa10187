package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/masonry/cli/render"
	"github.com/justapithecus/masonry/cli/tui"
	"github.com/justapithecus/masonry/runlog"
	"github.com/justapithecus/masonry/types"
)

// defaultHistoryLimit bounds the listing when --limit is not given.
const defaultHistoryLimit = 20

// HistoryCommand returns the history command: read past runs back from
// the run log.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past pipeline runs",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{
				Name:  "root",
				Usage: "Project root containing the run log (default: current directory)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to masonry.yaml",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Show at most this many runs (0 = all)",
				Value:   defaultHistoryLimit,
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "Show aggregate statistics instead of the run list",
			},
		),
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	_, root, err := loadConfig(c)
	if err != nil {
		return err
	}

	records, err := runlog.ReadFile(runlog.DefaultPath(root))
	if err != nil {
		return err
	}

	if limit := c.Int("limit"); limit > 0 {
		records = runlog.Tail(records, limit)
	}

	// Newest first for display
	reverse(records)

	if c.Bool("stats") {
		stats := tui.ComputeRunStats(records)
		if c.Bool("tui") {
			return r.RenderTUI("stats_runs", stats)
		}
		return r.Render(stats)
	}

	if c.Bool("tui") {
		return r.RenderTUI("history_runs", records)
	}

	return r.Render(records)
}

func reverse(records []types.RunRecord) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
}
