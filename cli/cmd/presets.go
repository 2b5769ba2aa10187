package cmd

import (
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/masonry/cli/render"
	"github.com/justapithecus/masonry/preset"
)

// PresetInfo is one row of the presets listing.
type PresetInfo struct {
	Name     string   `json:"name"`
	Inherits []string `json:"inherits,omitempty"`
	Toolset  string   `json:"toolset,omitempty"`
	Resolved string   `json:"resolved_toolset,omitempty"`
}

// PresetsCommand returns the presets command: list the configure
// presets and the toolset version each one resolves to.
func PresetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "presets",
		Usage: "List configure presets and their resolved toolsets",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{
				Name:  "root",
				Usage: "Project root containing CMakePresets.json (default: current directory)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to masonry.yaml",
			},
		),
		Action: presetsAction,
	}
}

func presetsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	// TUI not supported for presets command
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for presets command", 1)
	}

	_, root, err := loadConfig(c)
	if err != nil {
		return err
	}

	graph := preset.Load(root)

	names := make([]string, 0, len(graph))
	for name := range graph {
		names = append(names, name)
	}
	sort.Strings(names)

	infos := make([]PresetInfo, 0, len(names))
	for _, name := range names {
		p := graph[name]
		info := PresetInfo{
			Name:     name,
			Inherits: p.Inherits,
			Toolset:  p.Toolset.Value,
		}
		if resolved, ok := graph.ResolveToolset(name); ok {
			info.Resolved = resolved
		}
		infos = append(infos, info)
	}

	return r.Render(infos)
}
