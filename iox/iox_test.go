package iox_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/justapithecus/masonry/iox"
)

// closerSpy records Close calls and returns a configured error.
type closerSpy struct {
	closed bool
	err    error
}

func (c *closerSpy) Close() error {
	c.closed = true
	return c.err
}

func TestDiscardClose(t *testing.T) {
	spy := &closerSpy{err: errors.New("close failed")}
	iox.DiscardClose(spy)
	if !spy.closed {
		t.Error("expected Close to be called")
	}
}

func TestCloseFunc(t *testing.T) {
	spy := &closerSpy{}
	fn := iox.CloseFunc(spy)
	if spy.closed {
		t.Fatal("Close called before cleanup function invoked")
	}
	fn()
	if !spy.closed {
		t.Error("expected Close to be called by cleanup function")
	}
}

func TestDiscardErr(t *testing.T) {
	called := false
	iox.DiscardErr(func() error {
		called = true
		return errors.New("flush failed")
	})
	if !called {
		t.Error("expected function to be called")
	}
}

func TestRemoveAllQuiet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build")
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "CMakeCache.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	iox.RemoveAllQuiet(dir)

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("expected directory removed, stat err = %v", err)
	}

	// Removing a missing path is a no-op
	iox.RemoveAllQuiet(dir)
}
