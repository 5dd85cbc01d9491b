package organizer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"sortmedown/internal/config"
	"sortmedown/internal/fileutil"
	"sortmedown/internal/history"
	"sortmedown/internal/logging"
	"sortmedown/internal/media"
	"sortmedown/internal/notifications"
)

// Classifier resolves a raw release name into a media record.
type Classifier interface {
	Classify(ctx context.Context, name string) media.Record
}

// Journal persists runs and the moves they performed.
type Journal interface {
	StartRun(ctx context.Context, run history.Run) error
	FinishRun(ctx context.Context, id string, finished time.Time, counts map[string]int, runErr error) error
	RecordMove(ctx context.Context, move history.Move) error
}

// ProgressFunc receives (current, total) after each item of a pass.
type ProgressFunc func(current, total int)

// LibraryRefresher asks a media server to rescan its libraries.
type LibraryRefresher interface {
	Refresh(ctx context.Context) error
}

// Option configures a Sorter.
type Option func(*Sorter)

// WithDryRun logs every intended mutation instead of performing it.
func WithDryRun(dryRun bool) Option {
	return func(s *Sorter) { s.dryRun = dryRun }
}

// WithProgress registers a progress callback for directory passes.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Sorter) { s.progress = fn }
}

// WithJournal records runs and moves.
func WithJournal(j Journal) Option {
	return func(s *Sorter) { s.journal = j }
}

// WithNotifier overrides the notification service built from the config.
func WithNotifier(n notifications.Service) Option {
	return func(s *Sorter) { s.notifier = n }
}

// WithLibraryRefresher requests a media server rescan after runs that moved
// files.
func WithLibraryRefresher(r LibraryRefresher) Option {
	return func(s *Sorter) { s.refresher = r }
}

// Sorter is the sorting engine. One Sorter runs at most one pass at a time;
// review operations may use their own short-lived Sorter concurrently.
type Sorter struct {
	cfg        config.Config
	classifier Classifier
	files      *fileutil.Manager
	logger     *slog.Logger
	dryRun     bool
	progress   ProgressFunc
	journal    Journal
	notifier   notifications.Service
	refresher  LibraryRefresher
	now        func() time.Time

	running atomic.Bool

	mu    sync.Mutex
	stats Stats
}

// New builds a Sorter over a snapshot of cfg. Later changes to cfg do not
// affect the Sorter.
func New(cfg *config.Config, classifier Classifier, logger *slog.Logger, opts ...Option) *Sorter {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Sorter{
		cfg:        *cfg,
		classifier: classifier,
		logger:     logging.NewComponentLogger(logger, "sorter"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = notifications.NewService(&s.cfg)
	}
	s.files = fileutil.NewManager(s.dryRun, s.cfg.Sorting.SidecarExtensions, logger)
	return s
}

// DryRun reports whether the Sorter simulates mutations.
func (s *Sorter) DryRun() bool { return s.dryRun }

// Running reports whether a pass is in progress.
func (s *Sorter) Running() bool { return s.running.Load() }

// Stats returns the counts accumulated since the last directory pass began.
func (s *Sorter) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Classify resolves name without touching the filesystem.
func (s *Sorter) Classify(ctx context.Context, name string) media.Record {
	return s.classifier.Classify(ctx, name)
}

func (s *Sorter) resetStats() {
	s.mu.Lock()
	s.stats = Stats{}
	s.mu.Unlock()
}

// run is the bookkeeping for one journaled operation.
type run struct {
	id      string
	mode    string
	started time.Time
	sorter  *Sorter

	mu    sync.Mutex
	stats Stats
	moved int
}

func (r *run) add(key string) {
	r.mu.Lock()
	r.stats.Add(key)
	r.mu.Unlock()
	r.sorter.mu.Lock()
	r.sorter.stats.Add(key)
	r.sorter.mu.Unlock()
}

func (r *run) snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *run) noteMoved(n int) {
	r.mu.Lock()
	r.moved += n
	r.mu.Unlock()
}

func (r *run) movedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.moved
}

func (s *Sorter) beginRun(ctx context.Context, mode string) (context.Context, *run) {
	r := &run{id: uuid.NewString(), mode: mode, started: s.now(), sorter: s}
	ctx = logging.WithRunID(ctx, r.id)
	if s.journal != nil {
		if err := s.journal.StartRun(ctx, history.Run{ID: r.id, Mode: mode, DryRun: s.dryRun, StartedAt: r.started}); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, s.logger), "history journal unavailable",
				"journal_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run is not recorded in history"),
			)
		}
	}
	return ctx, r
}

func (s *Sorter) finishRun(ctx context.Context, r *run, runErr error) {
	s.finishRunWith(ctx, r, r.snapshot().Map(), runErr)
}

func (s *Sorter) finishRunWith(ctx context.Context, r *run, counts map[string]int, runErr error) {
	if s.journal == nil {
		return
	}
	if err := s.journal.FinishRun(context.WithoutCancel(ctx), r.id, s.now(), counts, runErr); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "history journal update failed",
			"journal_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run summary is missing from history"),
		)
	}
}

func (s *Sorter) recordMoves(ctx context.Context, r *run, kind media.Kind, result fileutil.GroupResult) {
	moves := result.Moved()
	r.noteMoved(len(moves))
	if s.journal == nil || s.dryRun {
		return
	}
	for _, moved := range moves {
		err := s.journal.RecordMove(ctx, history.Move{
			RunID:       r.id,
			Source:      moved.Source,
			Destination: moved.Destination,
			Kind:        kind.String(),
			MovedAt:     s.now(),
		})
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, s.logger), "history journal update failed",
				"journal_failed",
				logging.String("source", moved.Source),
				logging.Error(err),
				logging.String(logging.FieldImpact, "move is missing from history"),
			)
		}
	}
}

// refreshLibrary asks the media server to rescan once a run has moved files.
func (s *Sorter) refreshLibrary(ctx context.Context, r *run) {
	moved := r.movedCount()
	if s.refresher == nil || s.dryRun || moved == 0 {
		return
	}
	logger := logging.WithContext(ctx, s.logger)
	if err := s.refresher.Refresh(context.WithoutCancel(ctx)); err != nil {
		logging.WarnWithContext(logger, "library refresh failed",
			"library_refresh_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check jellyfin.url and jellyfin.api_key"),
		)
		return
	}
	logger.Info("requested library refresh", logging.Int("moved", moved))
}

func (s *Sorter) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if s.dryRun {
		return
	}
	if err := s.notifier.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "notification failed",
			"notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no push notification was delivered"),
		)
	}
}

func (s *Sorter) publishError(ctx context.Context, label string, err error) {
	s.publish(context.WithoutCancel(ctx), notifications.EventError, notifications.Payload{
		"context": label,
		"error":   err.Error(),
	})
}
