package cmd

import (
	"runtime"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/masonry/cli/render"
	"github.com/justapithecus/masonry/log"
	"github.com/justapithecus/masonry/toolchain"
	"github.com/justapithecus/masonry/types"
)

// DoctorResponse is the response for the doctor command.
type DoctorResponse struct {
	OS           string            `json:"os"`
	MSVCEnv      bool              `json:"msvc_env_active"`
	Tools        map[string]string `json:"tools"`
	RunClangTidy string            `json:"run_clang_tidy"`
}

// DoctorCommand returns the doctor command: probe every tool both
// pipelines depend on and report what the environment can see.
func DoctorCommand() *cli.Command {
	return &cli.Command{
		Name:   "doctor",
		Usage:  "Probe the toolchain and report tool availability",
		Flags:  ReadOnlyFlags(),
		Action: doctorAction,
	}
}

func doctorAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	// TUI not supported for doctor command
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for doctor command", 1)
	}

	ctx, cancel := signalContext()
	defer cancel()

	meta := types.RunMeta{Pipeline: "doctor"}
	logger := log.NewLogger(&meta)

	boot := toolchain.NewBootstrapper(logger.Sugar())
	env, err := boot.Bootstrap(ctx, toolchain.AmbientEnviron(), toolchain.BootstrapOptions{})
	if err != nil {
		// Doctor diagnoses; a broken environment script is itself a finding.
		env = toolchain.AmbientEnviron()
	}

	probes := toolchain.BuildProbes(runtime.GOOS)
	for _, p := range toolchain.LintProbes(runtime.GOOS) {
		if !containsProbe(probes, p.Tool) {
			probes = append(probes, p)
		}
	}
	tools := toolchain.RunProbes(ctx, toolchain.ExecRunner{}, env, probes)

	tidy := "Not found"
	if driver, ok := boot.FindRunClangTidy(env); ok {
		tidy = strings.Join(driver.Argv(), " ")
	}

	resp := DoctorResponse{
		OS:           runtime.GOOS + "/" + runtime.GOARCH,
		MSVCEnv:      env.Has("VCINSTALLDIR"),
		Tools:        tools.ToRecord(),
		RunClangTidy: tidy,
	}

	return r.Render(resp)
}

func containsProbe(probes []toolchain.Probe, tool string) bool {
	for _, p := range probes {
		if p.Tool == tool {
			return true
		}
	}
	return false
}
