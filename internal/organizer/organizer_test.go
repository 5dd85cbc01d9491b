package organizer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"sortmedown/internal/config"
	"sortmedown/internal/media"
	"sortmedown/internal/notifications"
	"sortmedown/internal/organizer"
	"sortmedown/internal/testsupport"
)

// stubClassifier answers from a fixed table keyed by search name. Names not in
// the table classify as Unknown with the raw name as title.
type stubClassifier struct {
	records map[string]media.Record
	onCall  func(name string)

	mu    sync.Mutex
	calls []string
}

func (c *stubClassifier) Classify(_ context.Context, name string) media.Record {
	c.mu.Lock()
	c.calls = append(c.calls, name)
	c.mu.Unlock()
	if c.onCall != nil {
		c.onCall(name)
	}
	if rec, ok := c.records[name]; ok {
		return rec
	}
	return media.Record{Title: name, Kind: media.Unknown}
}

func (c *stubClassifier) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type recordedEvent struct {
	event   notifications.Event
	payload notifications.Payload
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *fakeNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{event: event, payload: payload})
	return nil
}

func (n *fakeNotifier) Events() []notifications.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notifications.Event, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.event)
	}
	return out
}

var inception = media.Record{Title: "Inception", Year: "2010", Kind: media.Movie, Language: "English"}

func newSorter(t *testing.T, cfg *config.Config, classifier organizer.Classifier, opts ...organizer.Option) *organizer.Sorter {
	t.Helper()
	return organizer.New(cfg, classifier, nil, opts...)
}

func exists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	return err == nil
}

func mustExist(t *testing.T, path string) {
	t.Helper()
	if !exists(t, path) {
		t.Fatalf("expected %s to exist", path)
	}
}

func mustNotExist(t *testing.T, path string) {
	t.Helper()
	if exists(t, path) {
		t.Fatalf("expected %s to be gone", path)
	}
}

func TestProcessDirectoryMovesMovieWithSidecars(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := cfg.Paths.SourceDir
	testsupport.WriteFile(t, filepath.Join(src, "Inception.2010.1080p.mkv"), 128)
	testsupport.WriteFile(t, filepath.Join(src, "Inception.2010.1080p.srt"), 8)

	classifier := &stubClassifier{records: map[string]media.Record{"Inception.2010.1080p": inception}}
	var progress [][2]int
	sorter := newSorter(t, cfg, classifier, organizer.WithProgress(func(current, total int) {
		progress = append(progress, [2]int{current, total})
	}))

	stats, err := sorter.ProcessDirectory(context.Background())
	if err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}
	want := organizer.Stats{Processed: 1, Movies: 1}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
	dest := filepath.Join(cfg.Paths.MoviesDir, "Inception (2010)")
	mustExist(t, filepath.Join(dest, "Inception.2010.1080p.mkv"))
	mustExist(t, filepath.Join(dest, "Inception.2010.1080p.srt"))
	mustNotExist(t, filepath.Join(src, "Inception.2010.1080p.srt"))

	if len(progress) != 2 || progress[0] != [2]int{0, 1} || progress[1] != [2]int{1, 1} {
		t.Fatalf("progress = %v", progress)
	}
	if got := sorter.Stats(); got != want {
		t.Fatalf("Sorter.Stats = %+v, want %+v", got, want)
	}
}

func TestProcessDirectorySortsEpisodeByFolderName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := cfg.Paths.SourceDir
	episode := filepath.Join(src, "Show.Name.S01", "Show.Name.S01E05.mkv")
	testsupport.WriteFile(t, episode, 64)

	classifier := &stubClassifier{records: map[string]media.Record{
		"Show.Name.S01": {Title: "Show Name", Year: "2020", Kind: media.TvSeries},
	}}
	stats, err := newSorter(t, cfg, classifier).ProcessDirectory(context.Background())
	if err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}
	if stats.TV != 1 || stats.Processed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	mustExist(t, filepath.Join(cfg.Paths.TVDir, "Show Name (2020)", "Season 01", "Show.Name.S01E05.mkv"))
	mustNotExist(t, filepath.Join(src, "Show.Name.S01"))
	mustExist(t, src)
	if calls := classifier.Calls(); len(calls) != 1 || calls[0] != "Show.Name.S01" {
		t.Fatalf("classifier calls = %v", calls)
	}
}

func TestProcessDirectoryIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := cfg.Paths.SourceDir
	testsupport.WriteFile(t, filepath.Join(src, "Inception.2010.mkv"), 32)
	testsupport.WriteFile(t, filepath.Join(src, "Mystery.Film.2003.mkv"), 32)

	classifier := &stubClassifier{records: map[string]media.Record{
		"Inception.2010":    inception,
		"Mystery.Film.2003": {Title: "Mystery Film", Year: "2003", Kind: media.Unknown},
	}}
	sorter := newSorter(t, cfg, classifier)
	first, err := sorter.ProcessDirectory(context.Background())
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if first.Movies != 1 || first.Unknown != 1 {
		t.Fatalf("first pass stats = %+v", first)
	}
	base := testsupport.BaseDir(cfg)
	before := testsupport.Tree(t, base)

	second, err := sorter.ProcessDirectory(context.Background())
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if second != (organizer.Stats{}) {
		t.Fatalf("second pass stats = %+v, want zero", second)
	}
	if after := testsupport.Tree(t, base); !reflect.DeepEqual(before, after) {
		t.Fatalf("second pass changed the tree:\nbefore %v\nafter  %v", testsupport.Paths(before), testsupport.Paths(after))
	}
}

func TestProcessDirectoryDryRunTouchesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := cfg.Paths.SourceDir
	testsupport.WriteFile(t, filepath.Join(src, "Inception.2010.mkv"), 32)
	testsupport.WriteFile(t, filepath.Join(src, "Inception.2010.srt"), 4)
	testsupport.WriteFile(t, filepath.Join(src, "empty", "notes.txt"), 4)
	if err := os.Remove(filepath.Join(src, "empty", "notes.txt")); err != nil {
		t.Fatal(err)
	}

	base := testsupport.BaseDir(cfg)
	before := testsupport.Tree(t, base)
	notifier := &fakeNotifier{}
	classifier := &stubClassifier{records: map[string]media.Record{"Inception.2010": inception}}
	sorter := newSorter(t, cfg, classifier, organizer.WithDryRun(true), organizer.WithNotifier(notifier))

	stats, err := sorter.ProcessDirectory(context.Background())
	if err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}
	if stats.Movies != 1 || stats.Processed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if after := testsupport.Tree(t, base); !reflect.DeepEqual(before, after) {
		t.Fatalf("dry run changed the tree: %v", testsupport.Paths(after))
	}
	mustNotExist(t, cfg.Paths.MoviesDir)
	mustExist(t, filepath.Join(src, "empty"))
	if events := notifier.Events(); len(events) != 0 {
		t.Fatalf("dry run published %v", events)
	}
}

func TestProcessDirectorySplitsForeignMovies(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSplit("fr"))
	src := cfg.Paths.SourceDir
	testsupport.WriteFile(t, filepath.Join(src, "Amelie.2001.FRENCH.mkv"), 32)
	testsupport.WriteFile(t, filepath.Join(src, "Inception.2010.mkv"), 32)

	classifier := &stubClassifier{records: map[string]media.Record{
		"Amelie.2001.FRENCH": {Title: "Amélie", Year: "2001", Kind: media.Movie, Language: "French"},
		"Inception.2010":     inception,
	}}
	stats, err := newSorter(t, cfg, classifier).ProcessDirectory(context.Background())
	if err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}
	if stats.SplitLangMovies != 1 || stats.Movies != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	mustExist(t, filepath.Join(cfg.Paths.SplitMoviesDir, "Amélie (2001)", "Amelie.2001.FRENCH.mkv"))
	mustExist(t, filepath.Join(cfg.Paths.MoviesDir, "Inception (2010)", "Inception.2010.mkv"))
}

func TestProcessDirectoryUnknownItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := cfg.Paths.SourceDir
	usable := filepath.Join(src, "Obscure.Film.1987.mkv")
	hopeless := filepath.Join(src, "holiday", "clip.mkv")
	testsupport.WriteFile(t, usable, 16)
	testsupport.WriteFile(t, hopeless, 16)

	notifier := &fakeNotifier{}
	classifier := &stubClassifier{records: map[string]media.Record{
		"Obscure.Film.1987": {Title: "Obscure Film", Year: "1987", Kind: media.Unknown},
	}}
	stats, err := newSorter(t, cfg, classifier, organizer.WithNotifier(notifier)).ProcessDirectory(context.Background())
	if err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}
	if stats.Unknown != 2 || stats.Processed != 2 || stats.Errors != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	mustExist(t, filepath.Join(cfg.MismatchedPath(), "Obscure Film (1987)", "Obscure.Film.1987.mkv"))
	mustExist(t, hopeless)

	events := notifier.Events()
	want := []notifications.Event{notifications.EventUnidentifiedMedia, notifications.EventPassCompleted}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
}

func TestSeriesFallbackPolicies(t *testing.T) {
	tests := []struct {
		name      string
		policy    string
		tvEnabled bool
		wantDir   func(cfg *config.Config) string
		wantStats organizer.Stats
	}{
		{
			name:      "tv",
			policy:    config.FallbackTV,
			tvEnabled: true,
			wantDir:   func(cfg *config.Config) string { return cfg.Paths.TVDir },
			wantStats: organizer.Stats{Processed: 1, TV: 1},
		},
		{
			name:      "anime",
			policy:    config.FallbackAnime,
			tvEnabled: true,
			wantDir:   func(cfg *config.Config) string { return cfg.Paths.AnimeSeriesDir },
			wantStats: organizer.Stats{Processed: 1, AnimeSeries: 1},
		},
		{
			name:      "mismatched",
			policy:    config.FallbackMismatched,
			tvEnabled: true,
			wantDir:   func(cfg *config.Config) string { return cfg.MismatchedPath() },
			wantStats: organizer.Stats{Processed: 1, Unknown: 1},
		},
		{
			name:      "tv disabled downgrades to mismatched",
			policy:    config.FallbackTV,
			tvEnabled: false,
			wantDir:   func(cfg *config.Config) string { return cfg.MismatchedPath() },
			wantStats: organizer.Stats{Processed: 1, Unknown: 1},
		},
		{
			name:      "ignore",
			policy:    config.FallbackIgnore,
			tvEnabled: true,
			wantStats: organizer.Stats{Processed: 1, Unknown: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithFallback(tt.policy))
			cfg.Sorting.TVEnabled = tt.tvEnabled
			file := filepath.Join(cfg.Paths.SourceDir, "Local.Show.2019.S02E03.mkv")
			testsupport.WriteFile(t, file, 16)

			classifier := &stubClassifier{records: map[string]media.Record{
				"Local.Show.2019.S02E03": {Title: "Local Show", Year: "2019", Kind: media.Unknown},
			}}
			stats, err := newSorter(t, cfg, classifier).ProcessDirectory(context.Background())
			if err != nil {
				t.Fatalf("ProcessDirectory: %v", err)
			}
			if stats != tt.wantStats {
				t.Fatalf("stats = %+v, want %+v", stats, tt.wantStats)
			}
			if tt.wantDir == nil {
				mustExist(t, file)
				return
			}
			mustExist(t, filepath.Join(tt.wantDir(cfg), "Local Show (2019)", "Season 02", "Local.Show.2019.S02E03.mkv"))
		})
	}
}

func TestFallbackNeverAppliesToMovies(t *testing.T) {
	for _, policy := range []string{config.FallbackTV, config.FallbackAnime, config.FallbackIgnore, config.FallbackMismatched} {
		t.Run(policy, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithFallback(policy))
			testsupport.WriteFile(t, filepath.Join(cfg.Paths.SourceDir, "Obscure.Film.1987.mkv"), 16)
			classifier := &stubClassifier{records: map[string]media.Record{
				"Obscure.Film.1987": {Title: "Obscure Film", Year: "1987", Kind: media.Unknown},
			}}
			if _, err := newSorter(t, cfg, classifier).ProcessDirectory(context.Background()); err != nil {
				t.Fatalf("ProcessDirectory: %v", err)
			}
			mustExist(t, filepath.Join(cfg.MismatchedPath(), "Obscure Film (1987)", "Obscure.Film.1987.mkv"))
		})
	}
}

func TestDisabledKindLeavesFileInSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Sorting.MoviesEnabled = false
	file := filepath.Join(cfg.Paths.SourceDir, "Inception.2010.mkv")
	testsupport.WriteFile(t, file, 16)

	classifier := &stubClassifier{records: map[string]media.Record{"Inception.2010": inception}}
	stats, err := newSorter(t, cfg, classifier).ProcessDirectory(context.Background())
	if err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}
	if stats != (organizer.Stats{Processed: 1}) {
		t.Fatalf("stats = %+v", stats)
	}
	mustExist(t, file)
}

func TestCleanupInPlaceIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCleanup())
	src := cfg.Paths.SourceDir
	testsupport.WriteFile(t, filepath.Join(src, "Inception.2010.mkv"), 32)
	testsupport.WriteFile(t, filepath.Join(src, "Show.Name.S01E02.mkv"), 32)

	show := media.Record{Title: "Show Name", Year: "2020", Kind: media.TvSeries}
	classifier := &stubClassifier{records: map[string]media.Record{
		"Inception.2010":   inception,
		"Inception (2010)": inception,
		"Show.Name.S01E02": show,
		"Show Name (2020)": show,
	}}
	sorter := newSorter(t, cfg, classifier)
	if _, err := sorter.ProcessDirectory(context.Background()); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	mustExist(t, filepath.Join(src, "Inception (2010)", "Inception.2010.mkv"))
	mustExist(t, filepath.Join(src, "Show Name (2020)", "Season 01", "Show.Name.S01E02.mkv"))
	mustNotExist(t, cfg.Paths.MoviesDir)
	mustNotExist(t, cfg.MismatchedPath())

	before := testsupport.Tree(t, src)
	stats, err := sorter.ProcessDirectory(context.Background())
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if stats.Movies != 1 || stats.TV != 1 {
		t.Fatalf("second pass stats = %+v", stats)
	}
	if after := testsupport.Tree(t, src); !reflect.DeepEqual(before, after) {
		t.Fatalf("cleanup pass is not idempotent: %v", testsupport.Paths(after))
	}
}

func TestProcessDirectoryBusy(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.SourceDir, "Inception.2010.mkv"), 16)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	classifier := &stubClassifier{
		records: map[string]media.Record{"Inception.2010": inception},
		onCall: func(string) {
			once.Do(func() { close(entered) })
			<-release
		},
	}
	sorter := newSorter(t, cfg, classifier)

	done := make(chan error, 1)
	go func() {
		_, err := sorter.ProcessDirectory(context.Background())
		done <- err
	}()
	<-entered
	if !sorter.Running() {
		t.Fatal("expected sorter to report running")
	}
	if _, err := sorter.ProcessDirectory(context.Background()); !errors.Is(err, organizer.ErrBusy) {
		t.Fatalf("second pass err = %v, want ErrBusy", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if sorter.Running() {
		t.Fatal("sorter still running after pass")
	}
}

func TestProcessDirectoryStopsBetweenItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := cfg.Paths.SourceDir
	testsupport.WriteFile(t, filepath.Join(src, "A.Film.2001", "A.Film.2001.mkv"), 16)
	second := filepath.Join(src, "B.Film.2002", "B.Film.2002.mkv")
	testsupport.WriteFile(t, second, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	classifier := &stubClassifier{
		records: map[string]media.Record{
			"A.Film.2001": {Title: "A Film", Year: "2001", Kind: media.Movie},
			"B.Film.2002": {Title: "B Film", Year: "2002", Kind: media.Movie},
		},
		onCall: func(string) { cancel() },
	}
	stats, err := newSorter(t, cfg, classifier).ProcessDirectory(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if stats != (organizer.Stats{Processed: 1, Movies: 1}) {
		t.Fatalf("stats = %+v", stats)
	}
	mustExist(t, filepath.Join(cfg.Paths.MoviesDir, "A Film (2001)", "A.Film.2001.mkv"))
	mustExist(t, second)
	// The sweep does not run after a stop.
	mustExist(t, filepath.Join(src, "A.Film.2001"))
}

func TestPanickingItemIsCounted(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := cfg.Paths.SourceDir
	testsupport.WriteFile(t, filepath.Join(src, "Boom.mkv"), 16)
	testsupport.WriteFile(t, filepath.Join(src, "Inception.2010.mkv"), 16)

	classifier := &stubClassifier{
		records: map[string]media.Record{"Inception.2010": inception},
		onCall: func(name string) {
			if name == "Boom" {
				panic("provider exploded")
			}
		},
	}
	stats, err := newSorter(t, cfg, classifier).ProcessDirectory(context.Background())
	if err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}
	if stats != (organizer.Stats{Processed: 2, Movies: 1, Errors: 1}) {
		t.Fatalf("stats = %+v", stats)
	}
	mustExist(t, filepath.Join(src, "Boom.mkv"))
}

func TestProcessDirectoryRequiresSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := newSorter(t, cfg, &stubClassifier{}).ProcessDirectory(context.Background())
	if !errors.Is(err, organizer.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}

	cfg.Paths.SourceDir = ""
	_, err = newSorter(t, cfg, &stubClassifier{}).ProcessDirectory(context.Background())
	if !errors.Is(err, organizer.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestJournalRecordsRunAndMoves(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := cfg.Paths.SourceDir
	testsupport.WriteFile(t, filepath.Join(src, "Inception.2010.mkv"), 16)
	testsupport.WriteFile(t, filepath.Join(src, "Inception.2010.srt"), 4)

	store := testsupport.MustOpenHistory(t, cfg)
	classifier := &stubClassifier{records: map[string]media.Record{"Inception.2010": inception}}
	if _, err := newSorter(t, cfg, classifier, organizer.WithJournal(store)).ProcessDirectory(context.Background()); err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}

	ctx := context.Background()
	runs, err := store.RecentRuns(ctx, 5)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	run := runs[0]
	if run.Mode != "sort" || !run.Finished() || run.Error != "" {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.Counts[organizer.StatMovies] != 1 || run.Counts[organizer.StatProcessed] != 1 {
		t.Fatalf("counts = %v", run.Counts)
	}
	moves, err := store.Moves(ctx, run.ID)
	if err != nil {
		t.Fatalf("Moves: %v", err)
	}
	if len(moves) != 2 {
		t.Fatalf("moves = %+v, want primary and sidecar", moves)
	}
	for _, move := range moves {
		if move.Kind != media.Movie.String() {
			t.Fatalf("move kind = %q", move.Kind)
		}
	}
}

func TestSummaryLine(t *testing.T) {
	got := organizer.SummaryLine(organizer.Stats{Processed: 3, Movies: 2, Unknown: 1})
	want := "processed=3 movies=2 tv=0 anime_movies=0 anime_series=0 split_lang_movies=0 unknown=1 errors=0"
	if got != want {
		t.Fatalf("SummaryLine = %q, want %q", got, want)
	}
}

type countingRefresher struct{ calls int }

func (r *countingRefresher) Refresh(context.Context) error {
	r.calls++
	return nil
}

func TestLibraryRefreshOnlyAfterMoves(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.SourceDir, "Inception.2010.mkv"), 8)
	classifier := &stubClassifier{records: map[string]media.Record{"Inception.2010": inception}}

	dry := &countingRefresher{}
	if _, err := newSorter(t, cfg, classifier, organizer.WithDryRun(true), organizer.WithLibraryRefresher(dry)).ProcessDirectory(context.Background()); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if dry.calls != 0 {
		t.Fatalf("dry run refreshed %d times", dry.calls)
	}

	refresher := &countingRefresher{}
	sorter := newSorter(t, cfg, classifier, organizer.WithLibraryRefresher(refresher))
	if _, err := sorter.ProcessDirectory(context.Background()); err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}
	if refresher.calls != 1 {
		t.Fatalf("refresh calls = %d, want 1", refresher.calls)
	}

	if _, err := sorter.ProcessDirectory(context.Background()); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if refresher.calls != 1 {
		t.Fatalf("empty pass refreshed; calls = %d", refresher.calls)
	}
}
