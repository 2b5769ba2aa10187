package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/masonry/scaffold"
)

// InitCommand returns the init command: write starter project files
// from the embedded templates.
func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write starter CMakePresets.json, masonry.yaml and .clang-tidy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "root",
				Usage: "Directory to initialize (default: current directory)",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite existing files",
			},
		},
		Action: initAction,
	}
}

func initAction(c *cli.Context) error {
	root := c.String("root")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("cannot determine working directory: %w", err)
		}
		root = cwd
	}

	written, skipped, err := scaffold.Write(root, c.Bool("force"))
	if err != nil {
		return err
	}

	for _, name := range written {
		fmt.Printf("wrote   %s\n", name)
	}
	for _, name := range skipped {
		fmt.Printf("skipped %s (exists, use --force to overwrite)\n", name)
	}

	return nil
}
