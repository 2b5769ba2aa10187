// Package main provides the masonry CLI entrypoint.
//
// masonry drives CMake build and clang-tidy lint pipelines for native
// projects: it resolves the preset, activates the MSVC environment where
// needed, runs the stages, and records the verdict.
//
// Usage:
//
//	masonry <command> [options]
//
// Exit codes for build and lint:
//   - 0: pipeline succeeded
//   - N: the failing stage's exit code (or 1 for internally-detected
//     failures such as lint findings with a clean tool exit)
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/masonry/cli/cmd"
	"github.com/justapithecus/masonry/types"
)

// commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "masonry",
		Usage:          "CMake build and lint pipeline driver",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.BuildCommand(),
			cmd.LintCommand(),
			cmd.DoctorCommand(),
			cmd.PresetsCommand(),
			cmd.HistoryCommand(),
			cmd.InitCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		// This branch handles unexpected errors that weren't wrapped.
		os.Exit(1)
	}
}

// exitErrHandler handles errors from the CLI, preserving exit codes from
// cli.Exit(). This ensures a failing stage's exit code is propagated.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	// Check for ExitCoder (from cli.Exit), handles wrapped errors
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// Only print if there's a real message (not just "exit status N")
		// cli.Exit("", N).Error() returns "exit status N", so skip those
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	// Unexpected error - print and exit with code 1
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
