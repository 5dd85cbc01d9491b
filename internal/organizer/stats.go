package organizer

import "fmt"

// Statistic bucket names.
const (
	StatProcessed       = "processed"
	StatMovies          = "movies"
	StatTV              = "tv"
	StatAnimeMovies     = "anime_movies"
	StatAnimeSeries     = "anime_series"
	StatSplitLangMovies = "split_lang_movies"
	StatUnknown         = "unknown"
	StatErrors          = "errors"
)

// StatKeys lists the buckets in reporting order.
var StatKeys = []string{
	StatProcessed,
	StatMovies,
	StatTV,
	StatAnimeMovies,
	StatAnimeSeries,
	StatSplitLangMovies,
	StatUnknown,
	StatErrors,
}

// Stats counts outcomes for one pass.
type Stats struct {
	Processed       int
	Movies          int
	TV              int
	AnimeMovies     int
	AnimeSeries     int
	SplitLangMovies int
	Unknown         int
	Errors          int
}

func (s *Stats) field(key string) *int {
	switch key {
	case StatProcessed:
		return &s.Processed
	case StatMovies:
		return &s.Movies
	case StatTV:
		return &s.TV
	case StatAnimeMovies:
		return &s.AnimeMovies
	case StatAnimeSeries:
		return &s.AnimeSeries
	case StatSplitLangMovies:
		return &s.SplitLangMovies
	case StatUnknown:
		return &s.Unknown
	case StatErrors:
		return &s.Errors
	}
	return nil
}

// Add increments the named bucket. Unknown keys panic, as they indicate a routing bug.
func (s *Stats) Add(key string) {
	p := s.field(key)
	if p == nil {
		panic(fmt.Sprintf("organizer: unknown statistic %q", key))
	}
	*p++
}

// Get returns the named bucket, or zero for unknown keys.
func (s Stats) Get(key string) int {
	if p := s.field(key); p != nil {
		return *p
	}
	return 0
}

// Merge adds every bucket of other into s.
func (s *Stats) Merge(other Stats) {
	for _, key := range StatKeys {
		*s.field(key) += other.Get(key)
	}
}

// Map returns the buckets keyed by name.
func (s Stats) Map() map[string]int {
	out := make(map[string]int, len(StatKeys))
	for _, key := range StatKeys {
		out[key] = s.Get(key)
	}
	return out
}
