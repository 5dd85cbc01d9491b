package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"sortmedown/internal/logging"
	"sortmedown/internal/notifications"
	"sortmedown/internal/preflight"
)

// passPlan describes one walk over a directory tree.
type passPlan struct {
	mode    string
	root    string
	cleanup bool
	sweep   bool
	exclude []string
	subset  []string
}

// ProcessDirectory sorts every primary media file under the source directory,
// then removes empty directories left behind. Cancelling ctx stops the pass
// between items; the counts so far are returned with ctx.Err().
func (s *Sorter) ProcessDirectory(ctx context.Context) (Stats, error) {
	if !s.running.CompareAndSwap(false, true) {
		return Stats{}, ErrBusy
	}
	defer s.running.Store(false)
	s.resetStats()

	cleanup := s.cfg.Sorting.CleanupInPlace
	if err := s.prepare(ctx, cleanup); err != nil {
		s.publishError(ctx, "preflight", err)
		return Stats{}, err
	}
	mode := "sort"
	if cleanup {
		mode = "cleanup"
	}
	return s.runPass(ctx, passPlan{
		mode:    mode,
		root:    s.cfg.Paths.SourceDir,
		cleanup: cleanup,
		sweep:   !cleanup,
		exclude: []string{s.cfg.MismatchedPath()},
	})
}

// ReorganizeInPlace restructures an existing library directory into title
// folders without moving anything out of it. subset restricts the pass to the
// named files or folders, given relative to dir or as absolute paths inside it.
func (s *Sorter) ReorganizeInPlace(ctx context.Context, dir string, subset []string) (Stats, error) {
	if !s.running.CompareAndSwap(false, true) {
		return Stats{}, ErrBusy
	}
	defer s.running.Store(false)
	s.resetStats()

	if result := preflight.CheckDirectoryAccess("Library directory", dir); !result.Passed {
		return Stats{}, wrap(ErrConfiguration, "reorganize", result.Detail, nil)
	}
	return s.runPass(ctx, passPlan{
		mode:    "reorganize",
		root:    dir,
		cleanup: true,
		exclude: []string{s.cfg.MismatchedPath()},
		subset:  subset,
	})
}

// prepare checks the source directory and creates the destinations that
// enabled kinds route to. Nothing is created in cleanup mode.
func (s *Sorter) prepare(ctx context.Context, cleanup bool) error {
	if strings.TrimSpace(s.cfg.Paths.SourceDir) == "" {
		return wrap(ErrConfiguration, "preflight", "paths.source_dir is not set", nil)
	}
	if result := preflight.CheckDirectoryAccess("Source directory", s.cfg.Paths.SourceDir); !result.Passed {
		return wrap(ErrConfiguration, "preflight", result.Detail, nil)
	}
	if cleanup {
		return nil
	}
	for _, dest := range preflight.Destinations(&s.cfg) {
		if err := s.files.EnsureDir(ctx, dest.Path); err != nil {
			return wrap(ErrFilesystem, "preflight", dest.Name, err)
		}
	}
	return nil
}

func (s *Sorter) runPass(ctx context.Context, plan passPlan) (Stats, error) {
	ctx, r := s.beginRun(ctx, plan.mode)
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("starting pass",
		logging.String("mode", plan.mode),
		logging.String("root", plan.root),
		logging.Bool(logging.FieldDryRun, s.dryRun),
	)

	files, err := s.discover(ctx, plan)
	if err != nil {
		err = wrap(ErrFilesystem, "scan", plan.root, err)
		s.finishRun(ctx, r, err)
		s.publishError(ctx, plan.mode, err)
		return r.snapshot(), err
	}
	if len(files) == 0 {
		logger.Info("no primary media files found")
	} else {
		logger.Info("found primary media files", logging.Int("count", len(files)))
	}

	s.reportProgress(0, len(files))
	var stopErr error
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			logger.Warn("pass stopped", logging.Int("remaining", len(files)-i), logging.String(logging.FieldEventType, "pass_stopped"))
			stopErr = err
			break
		}
		s.sortItem(context.WithoutCancel(ctx), r, plan, path, "")
		s.reportProgress(i+1, len(files))
	}

	if plan.sweep && stopErr == nil {
		s.sweepEmptyDirs(ctx, plan.root)
	}

	stats := r.snapshot()
	logSummary(logger, stats, s.now().Sub(r.started))
	s.finishRun(ctx, r, stopErr)
	s.refreshLibrary(ctx, r)
	s.publish(context.WithoutCancel(ctx), notifications.EventPassCompleted, notifications.Payload{
		"processed": stats.Processed,
		"unknown":   stats.Unknown,
		"errors":    stats.Errors,
		"duration":  s.now().Sub(r.started),
	})
	return stats, stopErr
}

func (s *Sorter) reportProgress(current, total int) {
	if s.progress != nil {
		s.progress(current, total)
	}
}

func logSummary(logger *slog.Logger, stats Stats, elapsed time.Duration) {
	attrs := make([]logging.Attr, 0, len(StatKeys)+1)
	counts := stats.Map()
	for _, key := range StatKeys {
		attrs = append(attrs, logging.Int(key, counts[key]))
	}
	attrs = append(attrs, logging.Duration("elapsed", elapsed))
	logger.Info("pass summary", logging.Args(attrs...)...)
}

// SummaryLine renders stats as "processed=3 movies=1 ...".
func SummaryLine(stats Stats) string {
	counts := stats.Map()
	parts := make([]string, 0, len(StatKeys))
	for _, key := range StatKeys {
		parts = append(parts, fmt.Sprintf("%s=%d", key, counts[key]))
	}
	return strings.Join(parts, " ")
}

// sweepEmptyDirs removes empty directories below root, deepest first. The root
// and the mismatched directory are kept.
func (s *Sorter) sweepEmptyDirs(ctx context.Context, root string) {
	logger := logging.WithContext(ctx, s.logger)
	if s.dryRun {
		logger.Info("skipping empty directory sweep", logging.Bool(logging.FieldDryRun, true))
		return
	}
	dirs, err := collectDirs(root)
	if err != nil {
		logging.WarnWithContext(logger, "empty directory sweep failed", "sweep_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "empty folders remain in the source directory"),
		)
		return
	}
	mismatched := s.cfg.MismatchedPath()
	removed := 0
	for i := len(dirs) - 1; i >= 0; i-- {
		dir := dirs[i]
		if samePath(dir, root) || (mismatched != "" && samePath(dir, mismatched)) {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			logger.Error("remove empty directory failed", logging.String("path", dir), logging.Error(err))
			continue
		}
		removed++
		logger.Info("removed empty directory", logging.String("path", dir))
	}
	logger.Debug("empty directory sweep complete", logging.Int("removed", removed))
}
