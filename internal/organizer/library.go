package organizer

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"sortmedown/internal/fileutil"
	"sortmedown/internal/history"
	"sortmedown/internal/identification"
	"sortmedown/internal/logging"
	"sortmedown/internal/media"
	"sortmedown/internal/preflight"
	"sortmedown/internal/textutil"
)

// RenameSummary counts the outcome of RenameInLibrary.
type RenameSummary struct {
	Processed int
	Renamed   int
	Skipped   int
	Errors    int
}

// Map returns the counts keyed by name for journaling and display.
func (r RenameSummary) Map() map[string]int {
	return map[string]int{
		"processed": r.Processed,
		"renamed":   r.Renamed,
		"skipped":   r.Skipped,
		"errors":    r.Errors,
	}
}

// RenameInLibrary gives every immediate child of dir (or only the subset
// entries) its canonical "Title (Year)" name. Folders are classified by their
// own name and renamed; loose media files are renamed with their sidecars and
// keep their extensions. Existing targets are never overwritten.
func (s *Sorter) RenameInLibrary(ctx context.Context, dir string, subset []string) (RenameSummary, error) {
	var summary RenameSummary
	if !s.running.CompareAndSwap(false, true) {
		return summary, ErrBusy
	}
	defer s.running.Store(false)

	if result := preflight.CheckDirectoryAccess("Library directory", dir); !result.Passed {
		return summary, wrap(ErrConfiguration, "rename", result.Detail, nil)
	}

	ctx, r := s.beginRun(ctx, "rename")
	logger := logging.WithContext(ctx, s.logger)

	targets, err := s.renameTargets(ctx, dir, subset)
	if err != nil {
		err = wrap(ErrFilesystem, "rename", dir, err)
		s.finishRunWith(ctx, r, summary.Map(), err)
		return summary, err
	}
	logger.Info("renaming library entries", logging.String("root", dir), logging.Int("count", len(targets)))

	s.reportProgress(0, len(targets))
	var stopErr error
	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			stopErr = err
			logger.Warn("rename stopped", logging.Int("remaining", len(targets)-i), logging.String(logging.FieldEventType, "pass_stopped"))
			break
		}
		summary.Processed++
		switch s.renameEntry(context.WithoutCancel(ctx), r, target) {
		case fileutil.Moved:
			summary.Renamed++
		case fileutil.Failed:
			summary.Errors++
		default:
			summary.Skipped++
		}
		s.reportProgress(i+1, len(targets))
	}

	logger.Info("rename summary",
		logging.Int("processed", summary.Processed),
		logging.Int("renamed", summary.Renamed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("errors", summary.Errors),
	)
	s.finishRunWith(ctx, r, summary.Map(), stopErr)
	s.refreshLibrary(ctx, r)
	return summary, stopErr
}

func (s *Sorter) renameTargets(ctx context.Context, dir string, subset []string) ([]string, error) {
	var candidates []string
	if len(subset) > 0 {
		candidates = s.resolveSubset(ctx, filepath.Clean(dir), subset)
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			candidates = append(candidates, filepath.Join(dir, entry.Name()))
		}
	}

	mismatched := s.cfg.MismatchedPath()
	var targets []string
	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.IsDir() {
			if mismatched != "" && samePath(path, mismatched) {
				continue
			}
			targets = append(targets, path)
			continue
		}
		if s.cfg.IsSupported(filepath.Ext(path)) {
			targets = append(targets, path)
		}
	}
	sort.Strings(targets)
	return targets, nil
}

// renameEntry renames one folder or loose file and reports the primary outcome.
func (s *Sorter) renameEntry(ctx context.Context, r *run, path string) fileutil.Outcome {
	ctx = logging.WithItem(ctx, filepath.Base(path))
	logger := logging.WithContext(ctx, s.logger)

	info, err := os.Stat(path)
	if err != nil {
		logger.Error("cannot stat library entry", logging.String("path", path), logging.Error(err))
		return fileutil.Failed
	}
	isDir := info.IsDir()
	name := filepath.Base(path)
	if !isDir {
		name = stem(path)
	}

	rec := s.classifier.Classify(ctx, name)
	rec = identification.Validate(path, name, rec, s.cfg.Sorting.JunkTokens)
	target, ok := renameTarget(rec)
	if !ok {
		logger.Info("skipping unidentified entry", logging.String("name", name))
		return fileutil.SkippedDuplicate
	}
	if target == name {
		logger.Debug("entry already has canonical name", logging.String("name", name))
		return fileutil.AlreadyInPlace
	}

	if !isDir {
		result, err := s.files.RenameGroup(ctx, s.files.Group(ctx, path), target)
		if err != nil || len(result.Files) == 0 {
			return fileutil.Failed
		}
		s.recordMoves(ctx, r, rec.Kind, result)
		return result.Files[0].Outcome
	}

	dst := filepath.Join(filepath.Dir(path), target)
	if _, err := os.Lstat(dst); err == nil {
		logging.WarnWithContext(logger, "rename target exists; skipping", "rename_skipped",
			logging.String("source", path),
			logging.String("destination", dst),
			logging.String(logging.FieldErrorHint, "merge the two folders by hand"),
		)
		return fileutil.SkippedDuplicate
	}
	if s.dryRun {
		logger.Info("would rename folder", logging.String("source", path), logging.String("destination", dst), logging.Bool(logging.FieldDryRun, true))
		return fileutil.Moved
	}
	if err := os.Rename(path, dst); err != nil {
		logging.ErrorWithContext(logger, "rename failed", "rename_failed",
			logging.String("source", path),
			logging.Error(err),
		)
		return fileutil.Failed
	}
	logger.Info("renamed folder", logging.String("source", path), logging.String("destination", dst))
	r.noteMoved(1)
	if s.journal != nil {
		if err := s.journal.RecordMove(ctx, history.Move{RunID: r.id, Source: path, Destination: dst, Kind: rec.Kind.String(), MovedAt: s.now()}); err != nil {
			logger.Warn("history journal update failed", logging.Error(err), logging.String(logging.FieldEventType, "journal_failed"))
		}
	}
	return fileutil.Moved
}

// renameTarget is the canonical name for rec. Identified records use their
// display name; an unidentified record that still carries a title and year
// from the file name gets a title-cased version of that title.
func renameTarget(rec media.Record) (string, bool) {
	if rec.Kind != media.Unknown {
		return rec.DisplayName(), true
	}
	if !rec.Usable() {
		return "", false
	}
	title := textutil.TitleCase(rec.Title)
	return media.Record{Title: title, Year: rec.Year}.DisplayName(), title != ""
}
