package organizer

import (
	"fmt"
	"path/filepath"
	"strings"

	"sortmedown/internal/config"
	"sortmedown/internal/language"
	"sortmedown/internal/media"
	"sortmedown/internal/textutil"
)

type action int

const (
	actionMove action = iota
	actionLeave
	actionSkip
	actionFail
)

// decision is where an item goes and which statistic it counts toward.
type decision struct {
	action action
	dir    string
	bucket string
	reason string
	review bool
}

// route applies the destination policy to a validated record.
func (s *Sorter) route(path, name string, rec media.Record, plan passPlan) decision {
	if rec.Kind == media.Unknown {
		return s.routeUnknown(path, name, rec, plan)
	}
	if !s.kindEnabled(rec.Kind) {
		return decision{action: actionSkip, reason: fmt.Sprintf("sorting disabled for %s", rec.Kind)}
	}

	base, bucket := s.kindDir(rec.Kind)
	switch {
	case plan.cleanup:
		base = cleanupBase(filepath.Dir(path), plan.root, rec.DisplayName())
	case rec.Kind == media.Movie && s.splitActive() && language.MatchesSplit(rec.Language, s.cfg.Sorting.SplitLanguages):
		base, bucket = s.cfg.Paths.SplitMoviesDir, StatSplitLangMovies
	}
	if base == "" {
		return decision{action: actionFail, reason: fmt.Sprintf("no target directory configured for %s", rec.Kind)}
	}
	return decision{action: actionMove, dir: destination(base, path, name, rec), bucket: bucket}
}

func (s *Sorter) routeUnknown(path, name string, rec media.Record, plan passPlan) decision {
	if !rec.Usable() {
		return decision{action: actionLeave, bucket: StatUnknown, reason: "no usable title and year"}
	}
	if plan.cleanup {
		return decision{action: actionLeave, bucket: StatUnknown, reason: "fallback routing is off in cleanup mode"}
	}

	mismatched := s.cfg.MismatchedPath()
	if !isSeriesShaped(path, name) {
		if mismatched == "" {
			return decision{action: actionFail, reason: "mismatched directory is not configured"}
		}
		return decision{
			action: actionMove,
			dir:    filepath.Join(mismatched, rec.DisplayName()),
			bucket: StatUnknown,
			review: true,
		}
	}

	var (
		base   string
		bucket = StatUnknown
		review bool
	)
	switch s.fallbackPolicy() {
	case config.FallbackIgnore:
		return decision{action: actionLeave, bucket: StatUnknown, reason: "series fallback is set to ignore"}
	case config.FallbackTV:
		base, bucket = s.cfg.Paths.TVDir, StatTV
	case config.FallbackAnime:
		base, bucket = s.cfg.Paths.AnimeSeriesDir, StatAnimeSeries
	default:
		base, review = mismatched, true
	}
	if base == "" {
		return decision{action: actionFail, reason: "fallback destination directory is not configured"}
	}
	return decision{
		action: actionMove,
		dir:    filepath.Join(base, rec.DisplayName(), textutil.SeasonFolder(seasonFor(path, name))),
		bucket: bucket,
		review: review,
	}
}

// fallbackPolicy downgrades a tv or anime fallback to mismatched when that
// library is disabled.
func (s *Sorter) fallbackPolicy() string {
	policy := s.cfg.Sorting.FallbackShowDestination
	switch {
	case policy == config.FallbackTV && !s.cfg.Sorting.TVEnabled:
		return config.FallbackMismatched
	case policy == config.FallbackAnime && !s.cfg.Sorting.AnimeSeriesEnabled:
		return config.FallbackMismatched
	case policy == "":
		return config.FallbackMismatched
	}
	return policy
}

func (s *Sorter) kindEnabled(kind media.Kind) bool {
	switch kind {
	case media.Movie:
		return s.cfg.Sorting.MoviesEnabled
	case media.TvSeries:
		return s.cfg.Sorting.TVEnabled
	case media.AnimeMovie:
		return s.cfg.Sorting.AnimeMoviesEnabled
	case media.AnimeSeries:
		return s.cfg.Sorting.AnimeSeriesEnabled
	}
	return false
}

func (s *Sorter) kindDir(kind media.Kind) (string, string) {
	switch kind {
	case media.Movie:
		return s.cfg.Paths.MoviesDir, StatMovies
	case media.TvSeries:
		return s.cfg.Paths.TVDir, StatTV
	case media.AnimeMovie:
		return s.cfg.Paths.AnimeMoviesDir, StatAnimeMovies
	case media.AnimeSeries:
		return s.cfg.Paths.AnimeSeriesDir, StatAnimeSeries
	}
	return "", StatUnknown
}

func (s *Sorter) splitActive() bool {
	return s.cfg.Sorting.SplitEnabled &&
		strings.TrimSpace(s.cfg.Paths.SplitMoviesDir) != "" &&
		len(s.cfg.Sorting.SplitLanguages) > 0
}

// destination builds base/Title (Year) for movies and
// base/Title (Year)/Season NN for series.
func destination(base, path, name string, rec media.Record) string {
	dir := filepath.Join(base, rec.DisplayName())
	if rec.IsSeriesKind() {
		dir = filepath.Join(dir, textutil.SeasonFolder(seasonFor(path, name)))
	}
	return dir
}

func seasonFor(path, name string) int {
	if n, ok := textutil.ExtractSeason(filepath.Base(path)); ok {
		return n
	}
	if n, ok := textutil.ExtractSeason(name); ok {
		return n
	}
	return 1
}

func isSeriesShaped(path, name string) bool {
	return textutil.HasSeasonMarker(filepath.Base(path)) || textutil.HasSeasonMarker(name)
}

// cleanupBase is the directory that holds the title folder when reorganizing
// in place. A file already inside its title folder, or a season folder within
// it, resolves to the folder above so a second pass finds it in place.
func cleanupBase(parent, root, display string) string {
	if root != "" && samePath(parent, root) {
		return parent
	}
	if textutil.IsSeasonFolder(filepath.Base(parent)) {
		show := filepath.Dir(parent)
		if filepath.Base(show) == display && (root == "" || !samePath(show, root)) {
			return filepath.Dir(show)
		}
	}
	if filepath.Base(parent) == display {
		return filepath.Dir(parent)
	}
	return parent
}

// searchName is the text handed to the classifier: the file stem for files at
// the pass root, otherwise the enclosing folder name. A bare season folder
// defers to the show folder above it.
func searchName(path, root string) string {
	parent := filepath.Dir(path)
	if root == "" || samePath(parent, root) {
		return stem(path)
	}
	name := filepath.Base(parent)
	if textutil.IsSeasonFolder(name) {
		show := filepath.Dir(parent)
		if !samePath(show, root) && isUnder(show, root) {
			return filepath.Base(show)
		}
	}
	return name
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func samePath(a, b string) bool {
	return cleanAbs(a) == cleanAbs(b)
}

func cleanAbs(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// isUnder reports whether path equals base or lies inside it.
func isUnder(path, base string) bool {
	rel, err := filepath.Rel(cleanAbs(base), cleanAbs(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
