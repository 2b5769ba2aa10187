package pipeline_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/justapithecus/masonry/pipeline"
	"github.com/justapithecus/masonry/toolchain"
)

// fakeStage replays a canned transcript and exit code.
type fakeStage struct {
	output   string
	exitCode int
}

func (s *fakeStage) Output() io.Reader { return strings.NewReader(s.output) }
func (s *fakeStage) Wait() (int, error) { return s.exitCode, nil }

// fakeFactory hands out scripted stages in invocation order and records
// every argv.
type fakeFactory struct {
	t      *testing.T
	stages []*fakeStage
	argvs  [][]string
}

func (f *fakeFactory) start(_ context.Context, _ toolchain.Environ, _ string, argv []string) (pipeline.Stage, error) {
	f.argvs = append(f.argvs, argv)
	if len(f.stages) == 0 {
		f.t.Fatalf("unexpected stage invocation: %v", argv)
	}
	stage := f.stages[0]
	f.stages = f.stages[1:]
	return stage, nil
}

func (f *fakeFactory) commands() []string {
	cmds := make([]string, 0, len(f.argvs))
	for _, argv := range f.argvs {
		cmds = append(cmds, strings.Join(argv, " "))
	}
	return cmds
}

func newController(t *testing.T, factory *fakeFactory, out io.Writer, mutate func(*pipeline.Config)) *pipeline.Controller {
	t.Helper()
	cfg := pipeline.Config{
		RootDir:      t.TempDir(),
		Preset:       "linux-debug",
		Env:          toolchain.Environ{"PATH": "/usr/bin"},
		Out:          out,
		StageFactory: factory.start,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return pipeline.NewController(cfg)
}

func TestRunBuild_FullPipeline(t *testing.T) {
	factory := &fakeFactory{t: t, stages: []*fakeStage{
		{output: "-- Configuring done\n"},
		{output: "[42/42] Linking\n"},
		{output: "100% tests passed, 0 tests failed out of 5\n"},
	}}
	var out strings.Builder
	c := newController(t, factory, &out, nil)

	result, err := c.RunBuild(t.Context())
	if err != nil {
		t.Fatalf("RunBuild: %v", err)
	}

	if !result.Success || result.ExitCode != 0 {
		t.Errorf("result = success=%v exit=%d", result.Success, result.ExitCode)
	}
	want := []string{
		"cmake --preset linux-debug",
		"cmake --build --preset linux-debug --parallel",
		"ctest --preset linux-debug --output-on-failure -j16",
	}
	got := factory.commands()
	if len(got) != len(want) {
		t.Fatalf("commands = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if len(result.Stages) != 3 {
		t.Errorf("expected 3 stage results, got %d", len(result.Stages))
	}
}

func TestRunBuild_ConfigureAutoHeal(t *testing.T) {
	factory := &fakeFactory{t: t, stages: []*fakeStage{
		{output: "CMake Error: generator mismatch\n", exitCode: 1},
		{output: "-- Configuring done\n"},
		{output: "ok\n"},
		{output: "100% tests passed\n"},
	}}
	var out strings.Builder

	var buildDir string
	c := newController(t, factory, &out, func(cfg *pipeline.Config) {
		buildDir = filepath.Join(cfg.RootDir, "out", "build", cfg.Preset)
		if err := os.MkdirAll(buildDir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(buildDir, "stale"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	})

	result, err := c.RunBuild(t.Context())
	if err != nil {
		t.Fatalf("RunBuild: %v", err)
	}
	if !result.Success {
		t.Errorf("expected auto-heal to recover, got exit %d", result.ExitCode)
	}
	if len(factory.argvs) != 4 {
		t.Errorf("expected 4 invocations (retry included), got %d", len(factory.argvs))
	}
	if _, err := os.Stat(buildDir); !os.IsNotExist(err) {
		// The retry path deletes the build dir; the fake stages never
		// recreate it.
		t.Error("expected build directory removed before retry")
	}
	if !strings.Contains(out.String(), "[QUIRK]") {
		t.Error("expected [QUIRK] diagnostic on auto-heal")
	}
}

func TestRunBuild_ConfigureTwiceFatal(t *testing.T) {
	factory := &fakeFactory{t: t, stages: []*fakeStage{
		{output: "error\n", exitCode: 1},
		{output: "error again\n", exitCode: 7},
	}}
	var out strings.Builder
	c := newController(t, factory, &out, nil)

	result, err := c.RunBuild(t.Context())
	if err != nil {
		t.Fatalf("RunBuild: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.ExitCode != 7 {
		t.Errorf("exit code = %d, want the tool's own 7", result.ExitCode)
	}
	if len(factory.argvs) != 2 {
		t.Errorf("expected pipeline aborted after second configure failure, got %d invocations", len(factory.argvs))
	}
}

func TestRunBuild_BuildFailureAborts(t *testing.T) {
	factory := &fakeFactory{t: t, stages: []*fakeStage{
		{output: "configured\n"},
		{output: "compile error\n", exitCode: 2},
	}}
	var out strings.Builder
	c := newController(t, factory, &out, nil)

	result, err := c.RunBuild(t.Context())
	if err != nil {
		t.Fatalf("RunBuild: %v", err)
	}
	if result.Success || result.ExitCode != 2 {
		t.Errorf("result = success=%v exit=%d, want failure exit 2", result.Success, result.ExitCode)
	}
	if len(factory.argvs) != 2 {
		t.Errorf("test stage must not run after build failure, got %d invocations", len(factory.argvs))
	}
}

func TestRunBuild_SkipTests(t *testing.T) {
	factory := &fakeFactory{t: t, stages: []*fakeStage{
		{output: "configured\n"},
		{output: "built\n"},
	}}
	var out strings.Builder
	c := newController(t, factory, &out, func(cfg *pipeline.Config) {
		cfg.SkipTests = true
	})

	result, err := c.RunBuild(t.Context())
	if err != nil {
		t.Fatalf("RunBuild: %v", err)
	}
	if !result.Success {
		t.Error("expected success without test stage")
	}
	if len(result.Stages) != 2 {
		t.Errorf("skipped test stage must not appear in results, got %d", len(result.Stages))
	}
}

func TestRunBuild_FreshCacheSkipsConfigure(t *testing.T) {
	factory := &fakeFactory{t: t, stages: []*fakeStage{
		{output: "built\n"},
		{output: "tests passed\n"},
	}}
	var out strings.Builder
	c := newController(t, factory, &out, func(cfg *pipeline.Config) {
		buildDir := filepath.Join(cfg.RootDir, "out", "build", cfg.Preset)
		if err := os.MkdirAll(buildDir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(buildDir, "CMakeCache.txt"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	})

	result, err := c.RunBuild(t.Context())
	if err != nil {
		t.Fatalf("RunBuild: %v", err)
	}
	if !result.Success {
		t.Error("expected success")
	}
	if got := factory.commands()[0]; !strings.HasPrefix(got, "cmake --build") {
		t.Errorf("first command = %q, want build (configure skipped)", got)
	}
	if !strings.Contains(out.String(), "Configuration skipped") {
		t.Error("expected skip notice")
	}
}

func TestRunBuild_ReconfigureForces(t *testing.T) {
	factory := &fakeFactory{t: t, stages: []*fakeStage{
		{output: "configured\n"},
		{output: "built\n"},
		{output: "tested\n"},
	}}
	var out strings.Builder
	c := newController(t, factory, &out, func(cfg *pipeline.Config) {
		buildDir := filepath.Join(cfg.RootDir, "out", "build", cfg.Preset)
		if err := os.MkdirAll(buildDir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(buildDir, "CMakeCache.txt"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg.Reconfigure = true
	})

	if _, err := c.RunBuild(t.Context()); err != nil {
		t.Fatalf("RunBuild: %v", err)
	}
	if got := factory.commands()[0]; got != "cmake --preset linux-debug" {
		t.Errorf("first command = %q, want forced configure", got)
	}
}

func TestRunBuild_TestOutputClassified(t *testing.T) {
	transcript := "Test project /x\n" +
		"    Start 1: a\n" +
		"1/2 Test #1: a ... Passed 0.01 sec\n" +
		"2/2 Test #2: b ...***Failed 0.02 sec\n" +
		"detail line\n" +
		"50% tests passed, 1 tests failed out of 2\n"
	factory := &fakeFactory{t: t, stages: []*fakeStage{
		{output: "configured\n"},
		{output: "built\n"},
		{output: transcript, exitCode: 8},
	}}
	var out strings.Builder
	c := newController(t, factory, &out, nil)

	result, err := c.RunBuild(t.Context())
	if err != nil {
		t.Fatalf("RunBuild: %v", err)
	}
	if result.Success || result.ExitCode != 8 {
		t.Errorf("result = success=%v exit=%d", result.Success, result.ExitCode)
	}

	got := out.String()
	if !strings.Contains(got, "***Failed") || !strings.Contains(got, "detail line") {
		t.Errorf("failure block missing from output:\n%s", got)
	}
	if strings.Contains(got, "Passed 0.01") {
		t.Errorf("passing status line leaked:\n%s", got)
	}
}

func TestRunBuild_CleanRemovesBuildDir(t *testing.T) {
	factory := &fakeFactory{t: t, stages: []*fakeStage{
		{output: "configured\n"},
		{output: "built\n"},
		{output: "tested\n"},
	}}
	var out strings.Builder
	var buildDir string
	c := newController(t, factory, &out, func(cfg *pipeline.Config) {
		buildDir = filepath.Join(cfg.RootDir, "out", "build", cfg.Preset)
		if err := os.MkdirAll(buildDir, 0o755); err != nil {
			t.Fatal(err)
		}
		cfg.Clean = true
	})

	if _, err := c.RunBuild(t.Context()); err != nil {
		t.Fatalf("RunBuild: %v", err)
	}
	if _, err := os.Stat(buildDir); !os.IsNotExist(err) {
		t.Error("expected build directory removed by --clean")
	}
	if !strings.Contains(out.String(), "[CLEAN]") {
		t.Error("expected [CLEAN] notice")
	}
}

func writeCompileDB(t *testing.T, buildDir string) {
	t.Helper()
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(buildDir, "compile_commands.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunLint_ExitZeroWithIssuesFails(t *testing.T) {
	transcript := "src/foo.cpp:12:5: warning: unused variable 'x' [misc-unused]\n" +
		"1247 warnings generated.\n"
	factory := &fakeFactory{t: t, stages: []*fakeStage{
		{output: transcript, exitCode: 0},
	}}
	var out strings.Builder
	c := newController(t, factory, &out, func(cfg *pipeline.Config) {
		writeCompileDB(t, filepath.Join(cfg.RootDir, "out", "build", cfg.Preset))
		cfg.TidyDriver = toolchain.TidyDriver{Command: "run-clang-tidy"}
		cfg.TidyLocated = true
	})

	result, err := c.RunLint(t.Context())
	if err != nil {
		t.Fatalf("RunLint: %v", err)
	}

	// Exit 0 but issues found: the exit code is not trusted for lint.
	if result.Success {
		t.Error("expected failure despite exit 0")
	}
	if result.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", result.ExitCode)
	}
	if len(result.Issues) != 1 || result.Issues[0].Check != "misc-unused" {
		t.Errorf("issues = %+v", result.Issues)
	}

	cmd := factory.commands()[0]
	for _, wantArg := range []string{"run-clang-tidy", "-quiet", "-source-filter .*src.*", "-warnings-as-errors *"} {
		if !strings.Contains(cmd, wantArg) {
			t.Errorf("lint command missing %q: %s", wantArg, cmd)
		}
	}
}

func TestRunLint_CleanRun(t *testing.T) {
	factory := &fakeFactory{t: t, stages: []*fakeStage{
		{output: "Enabled checks:\n  misc-unused\n", exitCode: 0},
	}}
	var out strings.Builder
	c := newController(t, factory, &out, func(cfg *pipeline.Config) {
		writeCompileDB(t, filepath.Join(cfg.RootDir, "out", "build", cfg.Preset))
		cfg.TidyDriver = toolchain.TidyDriver{Command: "run-clang-tidy"}
		cfg.TidyLocated = true
	})

	result, err := c.RunLint(t.Context())
	if err != nil {
		t.Fatalf("RunLint: %v", err)
	}
	if !result.Success || result.ExitCode != 0 {
		t.Errorf("result = success=%v exit=%d", result.Success, result.ExitCode)
	}
}

func TestRunLint_ConfiguresWhenCompileDBMissing(t *testing.T) {
	// Configure runs but produces no compile_commands.json: fatal.
	factory := &fakeFactory{t: t, stages: []*fakeStage{
		{output: "configured\n"},
	}}
	var out strings.Builder
	c := newController(t, factory, &out, func(cfg *pipeline.Config) {
		cfg.TidyDriver = toolchain.TidyDriver{Command: "run-clang-tidy"}
		cfg.TidyLocated = true
	})

	result, err := c.RunLint(t.Context())
	if err != nil {
		t.Fatalf("RunLint: %v", err)
	}
	if result.Success || result.ExitCode != 1 {
		t.Errorf("result = success=%v exit=%d, want internal failure 1", result.Success, result.ExitCode)
	}
	if got := factory.commands()[0]; got != "cmake --preset linux-debug" {
		t.Errorf("expected on-demand configure, got %q", got)
	}
	if !strings.Contains(out.String(), "Failed to generate compile_commands.json") {
		t.Error("expected [ERR] diagnostic")
	}
}

func TestRunLint_CompileDBMissingForcesConfigureDespiteFreshCache(t *testing.T) {
	// A fresh CMakeCache.txt must not suppress the configure run when
	// the compilation database is absent: without it lint cannot run
	// at all.
	inner := &fakeFactory{t: t, stages: []*fakeStage{
		{output: "configured\n"},
		{output: "", exitCode: 0},
	}}

	var buildDir string
	factory := func(ctx context.Context, env toolchain.Environ, dir string, argv []string) (pipeline.Stage, error) {
		if argv[0] == "cmake" {
			writeCompileDB(t, buildDir)
		}
		return inner.start(ctx, env, dir, argv)
	}

	var out strings.Builder
	cfg := pipeline.Config{
		RootDir:      t.TempDir(),
		Preset:       "linux-debug",
		Env:          toolchain.Environ{"PATH": "/usr/bin"},
		Out:          &out,
		StageFactory: factory,
		TidyDriver:   toolchain.TidyDriver{Command: "run-clang-tidy"},
		TidyLocated:  true,
	}
	buildDir = filepath.Join(cfg.RootDir, "out", "build", cfg.Preset)
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(buildDir, "CMakeCache.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := pipeline.NewController(cfg).RunLint(t.Context())
	if err != nil {
		t.Fatalf("RunLint: %v", err)
	}
	if !result.Success {
		t.Errorf("result = success=%v exit=%d, want success", result.Success, result.ExitCode)
	}
	cmds := inner.commands()
	if len(cmds) != 2 || cmds[0] != "cmake --preset linux-debug" {
		t.Errorf("commands = %v, want configure then lint", cmds)
	}
	if strings.Contains(out.String(), "Configuration skipped") {
		t.Error("staleness check must not gate the missing-db configure")
	}
}

func TestRunLint_DriverMissingFatal(t *testing.T) {
	factory := &fakeFactory{t: t}
	var out strings.Builder
	c := newController(t, factory, &out, func(cfg *pipeline.Config) {
		writeCompileDB(t, filepath.Join(cfg.RootDir, "out", "build", cfg.Preset))
	})

	result, err := c.RunLint(t.Context())
	if err != nil {
		t.Fatalf("RunLint: %v", err)
	}
	if result.Success || result.ExitCode != 1 {
		t.Errorf("result = success=%v exit=%d", result.Success, result.ExitCode)
	}
	if !strings.Contains(out.String(), "run-clang-tidy not found") {
		t.Error("expected missing-driver diagnostic")
	}
}

// pipeStage delivers output through an unbuffered pipe, like a real
// child process: the writer blocks until the reader consumes, and Wait
// returns only once all output has been written.
type pipeStage struct {
	r    *io.PipeReader
	done chan struct{}
	exit int
}

func newPipeStage(output string, exit int) *pipeStage {
	r, w := io.Pipe()
	s := &pipeStage{r: r, done: make(chan struct{}), exit: exit}
	go func() {
		defer close(s.done)
		_, _ = io.WriteString(w, output)
		_ = w.Close()
	}()
	return s
}

func (s *pipeStage) Output() io.Reader { return s.r }
func (s *pipeStage) Wait() (int, error) {
	<-s.done
	return s.exit, nil
}

func TestRunBuild_OversizedOutputLineDoesNotDeadlock(t *testing.T) {
	// A single diagnostic line past the classifier's cap aborts the
	// stream mid-pipe; the remainder must still be drained or the child
	// blocks writing and Wait never returns.
	oversized := strings.Repeat("x", 3*1024*1024) + "\nremainder after the runaway line\n"
	stages := []pipeline.Stage{
		newPipeStage("configured\n", 0),
		newPipeStage(oversized, 0),
		newPipeStage("tests passed\n", 0),
	}
	factory := func(_ context.Context, _ toolchain.Environ, _ string, _ []string) (pipeline.Stage, error) {
		s := stages[0]
		stages = stages[1:]
		return s, nil
	}

	var out strings.Builder
	c := pipeline.NewController(pipeline.Config{
		RootDir:      t.TempDir(),
		Preset:       "linux-debug",
		Env:          toolchain.Environ{"PATH": "/usr/bin"},
		Out:          &out,
		StageFactory: factory,
	})

	type verdict struct {
		result *pipeline.Result
		err    error
	}
	resultCh := make(chan verdict, 1)
	go func() {
		result, err := c.RunBuild(context.Background())
		resultCh <- verdict{result, err}
	}()

	select {
	case v := <-resultCh:
		if v.err != nil {
			t.Fatalf("RunBuild: %v", v.err)
		}
		if !v.result.Success {
			t.Errorf("result = success=%v exit=%d", v.result.Success, v.result.ExitCode)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("pipeline deadlocked on oversized output line")
	}
}

func TestRunLint_FixFlag(t *testing.T) {
	factory := &fakeFactory{t: t, stages: []*fakeStage{
		{output: "", exitCode: 0},
	}}
	var out strings.Builder
	c := newController(t, factory, &out, func(cfg *pipeline.Config) {
		writeCompileDB(t, filepath.Join(cfg.RootDir, "out", "build", cfg.Preset))
		cfg.TidyDriver = toolchain.TidyDriver{Command: "run-clang-tidy"}
		cfg.TidyLocated = true
		cfg.LintFix = true
	})

	if _, err := c.RunLint(t.Context()); err != nil {
		t.Fatalf("RunLint: %v", err)
	}
	if cmd := factory.commands()[0]; !strings.HasSuffix(cmd, "-fix") {
		t.Errorf("lint command missing -fix: %s", cmd)
	}
}
