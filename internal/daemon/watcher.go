package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"sortmedown/internal/config"
	"sortmedown/internal/logging"
	"sortmedown/internal/organizer"
)

// Pass runs one full directory sort.
type Pass interface {
	ProcessDirectory(ctx context.Context) (organizer.Stats, error)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval overrides the configured polling interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// Watcher re-sorts the source directory whenever its modification time
// advances. A file dropped into an existing subdirectory does not always bump
// the source directory's mtime; such files wait for the next change at the top
// level.
type Watcher struct {
	source   string
	interval time.Duration
	pass     Pass
	logger   *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	started bool
}

// NewWatcher builds a Watcher for cfg's source directory. Watch mode is
// refused when cleanup-in-place is enabled.
func NewWatcher(cfg *config.Config, pass Pass, logger *slog.Logger, opts ...Option) (*Watcher, error) {
	if cfg == nil || pass == nil {
		return nil, errors.New("watcher requires config and a sorter")
	}
	if cfg.Sorting.CleanupInPlace {
		return nil, errors.New("watch mode cannot be combined with cleanup-in-place")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	w := &Watcher{
		source:   cfg.Paths.SourceDir,
		interval: cfg.WatchInterval(),
		pass:     pass,
		logger:   logging.NewComponentLogger(logger, "watcher"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.interval <= 0 {
		return nil, fmt.Errorf("watch interval must be positive (got %s)", w.interval)
	}
	return w, nil
}

// Start runs the initial pass and the polling loop in the background.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return errors.New("watcher already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.started = true

	go func() {
		defer close(w.done)
		err := w.run(ctx)
		w.mu.Lock()
		w.err = err
		w.mu.Unlock()
	}()
	return nil
}

// Stop asks the watcher to finish. The current item completes first.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the watcher has stopped and returns the error that ended
// it, or nil for a requested stop.
func (w *Watcher) Wait() error {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Watcher) run(ctx context.Context) error {
	w.logger.Info("watch mode starting",
		logging.String("source", w.source),
		logging.Duration("interval", w.interval),
	)
	if err := w.sort(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		w.logger.Info("watch mode stopped during initial pass")
		return nil
	}

	last, err := w.modTime()
	if err != nil {
		return fmt.Errorf("stat source directory: %w", err)
	}
	timer := time.NewTimer(w.interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch mode stopped")
			return nil
		case <-timer.C:
		}

		current, err := w.modTime()
		if err != nil {
			logging.WarnWithContext(w.logger, "cannot stat source directory", "watch_stat_failed",
				logging.String("source", w.source),
				logging.Error(err),
				logging.String(logging.FieldImpact, "changes are not detected until the directory is readable"),
			)
		} else if current.After(last) {
			last = current
			w.logger.Info("source directory changed; sorting")
			if err := w.sort(ctx); err != nil {
				return err
			}
		} else {
			w.logger.Debug("no changes detected")
		}
		timer.Reset(w.interval)
	}
}

// sort runs one pass. Only configuration errors end the watch; anything else
// is logged and the loop keeps polling.
func (w *Watcher) sort(ctx context.Context) error {
	stats, err := w.pass.ProcessDirectory(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		w.logger.Debug("watch pass finished", logging.String("summary", organizer.SummaryLine(stats)))
		return nil
	case errors.Is(err, organizer.ErrConfiguration):
		return err
	default:
		logging.WarnWithContext(w.logger, "watch pass failed", "watch_pass_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "retrying on the next change"),
		)
		return nil
	}
}

func (w *Watcher) modTime() (time.Time, error) {
	info, err := os.Stat(w.source)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
