package toolchain

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// runClangTidyNames are the locator candidates, in preference order.
var runClangTidyNames = []string{"run-clang-tidy", "run-clang-tidy.py"}

// TidyDriver is a located run-clang-tidy invocation: the command to
// execute plus leading args (a python interpreter when the driver is a
// script).
type TidyDriver struct {
	Command string
	Args    []string
}

// Argv returns the full invocation prefix.
func (d TidyDriver) Argv() []string {
	return append([]string{d.Command}, d.Args...)
}

// FindRunClangTidy locates the run-clang-tidy driver using an ordered
// chain of candidate strategies: the PATH of the bootstrapped
// environment, then alongside clang-tidy, then clang-tidy's
// ../share/clang, then the fixed Windows LLVM install dirs.
func (b *Bootstrapper) FindRunClangTidy(env Environ) (TidyDriver, bool) {
	path, ok := b.locateTidyScript(env)
	if !ok {
		return TidyDriver{}, false
	}
	return b.driverFor(path), true
}

func (b *Bootstrapper) locateTidyScript(env Environ) (string, bool) {
	// 1. PATH entries of the bootstrapped environment
	for _, dir := range filepath.SplitList(env.Get("PATH")) {
		if found, ok := fileInDir(dir); ok {
			return found, true
		}
	}

	// 2. Next to clang-tidy, then ../share/clang
	if clangTidy, err := b.lookPath("clang-tidy"); err == nil {
		binDir := filepath.Dir(clangTidy)
		if found, ok := fileInDir(binDir); ok {
			return found, true
		}
		shareDir := filepath.Join(filepath.Dir(binDir), "share", "clang")
		if found, ok := fileInDir(shareDir); ok {
			return found, true
		}
	}

	// 3. Fixed LLVM install locations on Windows
	if b.goos == "windows" {
		for _, envKey := range []string{"ProgramFiles", "ProgramFiles(x86)"} {
			base := env.Get(envKey)
			if base == "" {
				continue
			}
			for _, sub := range []string{"bin", filepath.Join("share", "clang")} {
				if found, ok := fileInDir(filepath.Join(base, "LLVM", sub)); ok {
					return found, true
				}
			}
		}
	}

	return "", false
}

func fileInDir(dir string) (string, bool) {
	if dir == "" {
		return "", false
	}
	for _, name := range runClangTidyNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// driverFor wraps a python-script driver with an interpreter; a native
// binary runs directly. Script detection is by suffix, else a shebang
// peek.
func (b *Bootstrapper) driverFor(path string) TidyDriver {
	if !isPythonScript(path) {
		return TidyDriver{Command: path}
	}
	interpreter := "python3"
	if b.goos == "windows" {
		interpreter = "python"
	}
	return TidyDriver{Command: interpreter, Args: []string{path}}
}

func isPythonScript(path string) bool {
	if strings.HasSuffix(path, ".py") {
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.Contains(line, "python")
}
