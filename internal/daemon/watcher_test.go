package daemon_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"sortmedown/internal/config"
	"sortmedown/internal/daemon"
	"sortmedown/internal/organizer"
	"sortmedown/internal/testsupport"
)

type fakePass struct {
	mu    sync.Mutex
	calls int
	err   error
	hook  func(n int)
	ran   chan int
}

func newFakePass() *fakePass {
	return &fakePass{ran: make(chan int, 16)}
}

func (p *fakePass) ProcessDirectory(context.Context) (organizer.Stats, error) {
	p.mu.Lock()
	p.calls++
	n := p.calls
	hook, err := p.hook, p.err
	p.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	p.ran <- n
	return organizer.Stats{Processed: n}, err
}

func (p *fakePass) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func waitForPass(t *testing.T, p *fakePass, want int) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case n := <-p.ran:
			if n >= want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for pass %d (saw %d)", want, p.Calls())
		}
	}
}

func newSourceConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.SourceDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestWatcherRunsInitialPassAndStops(t *testing.T) {
	cfg := newSourceConfig(t)
	pass := newFakePass()
	w, err := daemon.NewWatcher(cfg, pass, nil, daemon.WithInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForPass(t, pass, 1)
	time.Sleep(50 * time.Millisecond)
	w.Stop()
	if err := w.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got := pass.Calls(); got != 1 {
		t.Fatalf("passes = %d, want 1 without changes", got)
	}
	if err := w.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
}

func TestWatcherSortsWhenSourceChanges(t *testing.T) {
	cfg := newSourceConfig(t)
	pass := newFakePass()
	w, err := daemon.NewWatcher(cfg, pass, nil, daemon.WithInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		w.Stop()
		_ = w.Wait()
	})
	waitForPass(t, pass, 1)

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(cfg.Paths.SourceDir, future, future); err != nil {
		t.Fatal(err)
	}
	waitForPass(t, pass, 2)
}

func TestWatcherStopDuringInitialPass(t *testing.T) {
	cfg := newSourceConfig(t)
	pass := newFakePass()
	var w *daemon.Watcher
	pass.hook = func(int) { w.Stop() }
	var err error
	w, err = daemon.NewWatcher(cfg, pass, nil, daemon.WithInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got := pass.Calls(); got != 1 {
		t.Fatalf("passes = %d, want 1", got)
	}
}

func TestWatcherEndsOnConfigurationError(t *testing.T) {
	cfg := newSourceConfig(t)
	pass := newFakePass()
	pass.err = fmt.Errorf("%w: source gone", organizer.ErrConfiguration)
	w, err := daemon.NewWatcher(cfg, pass, nil, daemon.WithInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Wait(); !errors.Is(err, organizer.ErrConfiguration) {
		t.Fatalf("Wait = %v, want ErrConfiguration", err)
	}
}

func TestWatcherRefusesCleanupMode(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCleanup())
	if _, err := daemon.NewWatcher(cfg, newFakePass(), nil); err == nil {
		t.Fatal("expected cleanup-in-place to be rejected")
	}
}

func TestRunLockIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := daemon.AcquireRunLock(cfg.LockPath())
	if err != nil {
		t.Fatalf("AcquireRunLock: %v", err)
	}
	if _, err := daemon.AcquireRunLock(cfg.LockPath()); !errors.Is(err, daemon.ErrLocked) {
		t.Fatalf("second acquire err = %v, want ErrLocked", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := daemon.AcquireRunLock(cfg.LockPath())
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	_ = again.Release()
}
