package organizer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"

	"sortmedown/internal/fileutil"
	"sortmedown/internal/identification"
	"sortmedown/internal/logging"
	"sortmedown/internal/media"
	"sortmedown/internal/notifications"
	"sortmedown/internal/textutil"
)

// Status is the terminal state of one item.
type Status int

const (
	StatusMoved Status = iota
	StatusAlreadyCorrect
	StatusDuplicate
	StatusLeftInPlace
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusMoved:
		return "moved"
	case StatusAlreadyCorrect:
		return "already correct"
	case StatusDuplicate:
		return "duplicate left in place"
	case StatusLeftInPlace:
		return "left in place"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// ItemResult describes what happened to one primary file.
type ItemResult struct {
	Path        string
	Name        string
	Record      media.Record
	Destination string
	Bucket      string
	Status      Status
	Reason      string
	Err         error
}

// SortOne classifies and sorts a single file relative to the source directory.
// A non-empty override replaces the name handed to the classifier.
func (s *Sorter) SortOne(ctx context.Context, path, override string) ItemResult {
	ctx, r := s.beginRun(ctx, "review")
	plan := passPlan{mode: "review", root: s.cfg.Paths.SourceDir, cleanup: s.cfg.Sorting.CleanupInPlace}
	res := s.sortItem(ctx, r, plan, path, strings.TrimSpace(override))
	s.finishRun(ctx, r, res.Err)
	return res
}

// ForceMove files path and its sidecars under folder in the library for kind,
// bypassing classification. split sends movies to the split library.
func (s *Sorter) ForceMove(ctx context.Context, path, folder string, kind media.Kind, split bool) (res ItemResult) {
	ctx, r := s.beginRun(ctx, "force")
	ctx = logging.WithItem(ctx, filepath.Base(path))
	logger := logging.WithContext(ctx, s.logger)
	res = ItemResult{Path: path, Name: folder, Record: media.Record{Title: folder, Kind: kind}}
	defer func() { s.finishRun(ctx, r, res.Err) }()

	folder = textutil.SanitizeFolderName(folder)
	if folder == "" {
		res.Status, res.Err = StatusFailed, wrap(ErrValidation, "force move", "folder name is empty", nil)
		return res
	}
	if kind == media.Unknown {
		res.Status, res.Err = StatusFailed, wrap(ErrValidation, "force move", "a media kind is required", nil)
		return res
	}

	base, bucket := s.kindDir(kind)
	if split && kind == media.Movie {
		base, bucket = s.cfg.Paths.SplitMoviesDir, StatSplitLangMovies
	}
	if strings.TrimSpace(base) == "" {
		res.Status, res.Err = StatusFailed, wrap(ErrConfiguration, "force move", fmt.Sprintf("no target directory configured for %s", kind), nil)
		r.add(StatErrors)
		return res
	}
	dir := filepath.Join(base, folder)
	if kind.IsSeriesKind() {
		dir = filepath.Join(dir, textutil.SeasonFolder(seasonFor(path, folder)))
	}

	logger.Info("forcing move", logging.String("kind", kind.String()), logging.String("destination", dir))
	return s.moveItem(ctx, r, res, decision{action: actionMove, dir: dir, bucket: bucket})
}

// sortItem runs one file through classify, validate, route and move. It never
// panics and never returns an error; failures are counted and reported in the result.
func (s *Sorter) sortItem(ctx context.Context, r *run, plan passPlan, path, override string) (res ItemResult) {
	ctx = logging.WithItem(ctx, filepath.Base(path))
	logger := logging.WithContext(ctx, s.logger)
	res = ItemResult{Path: path}

	defer func() {
		if p := recover(); p != nil {
			logging.ErrorWithContext(logger, "unexpected failure while sorting item",
				"item_panic",
				logging.String("path", path),
				logging.Any("panic", p),
				logging.String("stack", string(debug.Stack())),
			)
			res.Status = StatusFailed
			res.Err = fmt.Errorf("sort %s: panic: %v", path, p)
			r.add(StatErrors)
		}
	}()

	if s.files.IsSidecar(path) {
		res.Status, res.Reason = StatusSkipped, "sidecar travels with its primary file"
		logger.Debug("skipping sidecar", logging.String("path", path))
		return res
	}
	r.add(StatProcessed)

	name := override
	if name == "" {
		name = searchName(path, plan.root)
	}
	res.Name = name

	rec := s.classifier.Classify(ctx, name)
	validated := identification.Validate(path, name, rec, s.cfg.Sorting.JunkTokens)
	if validated.Kind != rec.Kind {
		logging.WarnWithContext(logger, "file name contradicts provider match",
			"classification_conflict",
			logging.String("provider_kind", rec.Kind.String()),
			logging.String("provider_year", rec.Year),
			logging.String("kind", validated.Kind.String()),
			logging.String("year", validated.Year),
			logging.String(logging.FieldImpact, "item routed by file name signals"),
		)
	}
	res.Record = validated
	logger.Info("classified item",
		logging.String("name", name),
		logging.String("kind", validated.Kind.String()),
		logging.String("title", validated.DisplayName()),
	)

	d := s.route(path, name, validated, plan)
	res.Bucket = d.bucket
	res.Reason = d.reason
	switch d.action {
	case actionLeave:
		res.Status = StatusLeftInPlace
		if d.bucket != "" {
			r.add(d.bucket)
		}
		logger.Info("leaving item in place", logging.String("reason", d.reason))
		return res
	case actionSkip:
		res.Status = StatusSkipped
		logger.Info("skipping item", logging.String("reason", d.reason))
		return res
	case actionFail:
		res.Status = StatusFailed
		res.Err = wrap(ErrConfiguration, "route", d.reason, nil)
		r.add(StatErrors)
		logging.ErrorWithContext(logger, "cannot route item", "route_failed",
			logging.String("reason", d.reason),
			logging.String(logging.FieldErrorHint, "set the missing directory in the [paths] section"),
		)
		return res
	}

	if plan.cleanup && samePath(d.dir, filepath.Dir(path)) {
		res.Status = StatusAlreadyCorrect
		res.Destination = d.dir
		r.add(d.bucket)
		logger.Info("item already in place", logging.String("path", path))
		return res
	}
	res = s.moveItem(ctx, r, res, d)
	if d.review && res.Status == StatusMoved {
		s.publish(ctx, notifications.EventUnidentifiedMedia, notifications.Payload{
			"name":        filepath.Base(path),
			"destination": d.dir,
		})
	}
	return res
}

// moveItem moves the item's file group into d.dir and books the result.
func (s *Sorter) moveItem(ctx context.Context, r *run, res ItemResult, d decision) ItemResult {
	logger := logging.WithContext(ctx, s.logger)
	group := s.files.Group(ctx, res.Path)
	if len(group) > 1 {
		logger.Info("moving with sidecars", logging.Int("sidecars", len(group)-1))
	}
	res.Destination = d.dir
	res.Bucket = d.bucket

	result, err := s.files.MoveGroup(ctx, group, d.dir)
	if err != nil || !result.OK() {
		if err == nil {
			err = primaryError(result)
		}
		res.Status = StatusFailed
		res.Err = wrap(ErrFilesystem, "move", res.Path, err)
		r.add(StatErrors)
		return res
	}

	r.add(d.bucket)
	s.recordMoves(ctx, r, res.Record.Kind, result)
	switch result.Files[0].Outcome {
	case fileutil.AlreadyInPlace:
		res.Status = StatusAlreadyCorrect
	case fileutil.SkippedDuplicate:
		res.Status = StatusDuplicate
	default:
		res.Status = StatusMoved
	}
	return res
}

func primaryError(result fileutil.GroupResult) error {
	if len(result.Files) > 0 && result.Files[0].Err != nil {
		return result.Files[0].Err
	}
	return errors.New("primary file was not moved")
}
