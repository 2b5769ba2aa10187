package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/justapithecus/masonry/log"
)

// EnvSeparator is the token echoed between vcvars execution and the
// environment dump. Everything after it is KEY=VALUE lines.
const EnvSeparator = "___ENV_SEPARATOR___"

// vcComponentID is the Visual Studio component that must be installed
// for a usable C++ toolchain.
const vcComponentID = "Microsoft.VisualStudio.Component.VC.Tools.x86.x64"

// vcvarsRelPath is the environment-initialization script's location
// under a Visual Studio installation.
var vcvarsRelPath = filepath.Join("VC", "Auxiliary", "Build", "vcvars64.bat")

// ErrEnvScriptFailed is returned when vcvars64.bat was located but
// exited nonzero. Unlike every discovery failure, this is fatal: the
// requested toolset truly cannot be activated.
var ErrEnvScriptFailed = fmt.Errorf("environment initialization script failed")

// BootstrapOptions configures one bootstrap attempt.
type BootstrapOptions struct {
	// ToolsetVersion pins the MSVC toolset (-vcvars_ver=). Empty selects
	// the installation default.
	ToolsetVersion string
	// Explicit marks the toolset as a user request. An explicit toolset
	// forces re-sourcing vcvars even when an environment is already
	// active, since the active one may be the wrong version.
	Explicit bool
}

// Bootstrapper activates the MSVC environment. The zero value is not
// usable; construct with NewBootstrapper. GOOS and LookPath are
// injectable so the Windows-only paths stay unit-testable anywhere.
type Bootstrapper struct {
	goos     string
	lookPath func(string) (string, error)
	runner   Runner
	log      *log.SugaredLogger
}

// NewBootstrapper creates a bootstrapper for the host platform.
func NewBootstrapper(logger *log.SugaredLogger) *Bootstrapper {
	return &Bootstrapper{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		runner:   ExecRunner{},
		log:      logger,
	}
}

// NewBootstrapperForTest creates a bootstrapper with injected platform,
// path lookup, and runner.
func NewBootstrapperForTest(goos string, lookPath func(string) (string, error), runner Runner, logger *log.SugaredLogger) *Bootstrapper {
	return &Bootstrapper{goos: goos, lookPath: lookPath, runner: runner, log: logger}
}

// Bootstrap returns the environment all subsequent tool invocations and
// probes run under.
//
// Every failure to locate vswhere, the installation, or the script, and
// any failure to capture its output, degrades to the ambient
// environment unchanged. The one fatal case is the script existing but
// exiting nonzero, reported as ErrEnvScriptFailed.
func (b *Bootstrapper) Bootstrap(ctx context.Context, ambient Environ, opts BootstrapOptions) (Environ, error) {
	if b.goos != "windows" {
		return ambient, nil
	}
	if ambient.Has("VCINSTALLDIR") && !opts.Explicit {
		b.log.Infof("[ENV] MSVC environment already active")
		return ambient, nil
	}

	vswhere, ok := b.locateVSWhere(ambient)
	if !ok {
		b.log.Warnf("[WARN] vswhere.exe not found in PATH or standard locations; using ambient environment")
		return ambient, nil
	}

	installPath, ok := b.latestInstallation(ctx, ambient, vswhere)
	if !ok {
		b.log.Warnf("[WARN] no Visual Studio installation found; using ambient environment")
		return ambient, nil
	}

	vcvars := filepath.Join(installPath, vcvarsRelPath)
	if _, err := os.Stat(vcvars); err != nil {
		b.log.Warnf("[WARN] vcvars64.bat not found at %s; using ambient environment", vcvars)
		return ambient, nil
	}

	b.log.Infof("[ENV] Sourcing MSVC environment from %s", vcvars)
	return b.captureEnvironment(ctx, ambient, vcvars, opts.ToolsetVersion)
}

// locateVSWhere tries an ordered sequence of candidate strategies:
// PATH first, then the fixed installer directory.
func (b *Bootstrapper) locateVSWhere(env Environ) (string, bool) {
	candidates := []func() (string, bool){
		func() (string, bool) {
			path, err := b.lookPath("vswhere")
			return path, err == nil
		},
		func() (string, bool) {
			programFiles := env.Get("ProgramFiles(x86)")
			if programFiles == "" {
				programFiles = `C:\Program Files (x86)`
			}
			path := filepath.Join(programFiles, "Microsoft Visual Studio", "Installer", "vswhere.exe")
			_, err := os.Stat(path)
			return path, err == nil
		},
	}

	for _, candidate := range candidates {
		if path, ok := candidate(); ok {
			return path, true
		}
	}
	return "", false
}

// latestInstallation asks vswhere for the newest installation carrying
// the C++ toolchain component.
func (b *Bootstrapper) latestInstallation(ctx context.Context, env Environ, vswhere string) (string, bool) {
	out, exitCode, err := b.runner.CombinedOutput(ctx, env, vswhere,
		"-latest", "-requires", vcComponentID, "-property", "installationPath")
	if err != nil || exitCode != 0 {
		return "", false
	}
	installPath := strings.TrimSpace(string(out))
	return installPath, installPath != ""
}

// captureEnvironment runs vcvars in a nested cmd.exe, echoes the
// separator only if the script succeeds, then dumps all variables.
func (b *Bootstrapper) captureEnvironment(ctx context.Context, ambient Environ, vcvars, toolsetVersion string) (Environ, error) {
	script := fmt.Sprintf(`"%s"`, vcvars)
	if toolsetVersion != "" {
		script += " -vcvars_ver=" + toolsetVersion
	}
	cmdLine := fmt.Sprintf(`%s > nul && echo %s && set`, script, EnvSeparator)

	out, exitCode, err := b.runner.CombinedOutput(ctx, ambient, "cmd.exe", "/c", cmdLine)
	if err != nil {
		b.log.Warnf("[WARN] failed to invoke vcvars64.bat: %v; using ambient environment", err)
		return ambient, nil
	}
	if exitCode != 0 {
		return ambient, fmt.Errorf("%w: vcvars64.bat exited with code %d", ErrEnvScriptFailed, exitCode)
	}

	output := string(out)
	sepIdx := strings.Index(output, EnvSeparator)
	if sepIdx < 0 {
		b.log.Warnf("[WARN] failed to capture environment from vcvars64.bat; using ambient environment")
		return ambient, nil
	}

	block := output[sepIdx+len(EnvSeparator):]
	return overlayBlock(ambient, block), nil
}
