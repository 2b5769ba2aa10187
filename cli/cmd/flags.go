// Package cmd provides CLI commands for the masonry binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags for read-only commands.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	// Only valid for select read-only commands (history).
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (history only)",
	}
)

// ReadOnlyFlags returns the shared flags for all read-only commands.
// Includes --tui so that unsupported commands can provide explicit error
// messages instead of generic "flag not defined" errors.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		TUIFlag,
	}
}

// PipelineFlags returns the flags shared by the build and lint commands.
func PipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "preset",
			Aliases: []string{"p"},
			Usage:   "CMake preset (default: windows-release on Windows, linux-debug elsewhere)",
		},
		&cli.StringFlag{
			Name:  "root",
			Usage: "Project root containing CMakePresets.json (default: current directory)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to masonry.yaml (default: <root>/masonry.yaml if present)",
		},
		&cli.StringFlag{
			Name:  "toolset",
			Usage: "MSVC toolset version pin, e.g. 14.40 (overrides preset)",
		},
		&cli.BoolFlag{
			Name:  "reconfigure",
			Usage: "Force the configure stage regardless of cache state",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Print output that would otherwise be suppressed",
		},
	}
}
