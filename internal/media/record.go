package media

import (
	"fmt"
	"strings"

	"sortmedown/internal/textutil"
)

// Kind is the classification outcome for a media item.
type Kind int

const (
	Unknown Kind = iota
	Movie
	TvSeries
	AnimeMovie
	AnimeSeries
)

var kindNames = map[Kind]string{
	Unknown:     "unknown",
	Movie:       "movie",
	TvSeries:    "tv",
	AnimeMovie:  "anime-movie",
	AnimeSeries: "anime-series",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts the CLI spellings plus a few aliases.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "movie", "movies":
		return Movie, nil
	case "tv", "series", "tv-series", "show":
		return TvSeries, nil
	case "anime-movie", "anime_movie", "animemovie":
		return AnimeMovie, nil
	case "anime-series", "anime_series", "anime", "animeseries":
		return AnimeSeries, nil
	case "unknown":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("unknown media kind %q (want movie, tv, anime-movie or anime-series)", value)
}

// IsMovieKind reports whether the kind is laid out as a single title folder.
func (k Kind) IsMovieKind() bool {
	return k == Movie || k == AnimeMovie
}

// IsSeriesKind reports whether the kind is laid out with Season folders.
func (k Kind) IsSeriesKind() bool {
	return k == TvSeries || k == AnimeSeries
}

// Record is the outcome of classifying one name.
type Record struct {
	Title    string
	Year     string
	Kind     Kind
	Language string
	Genre    string
}

// DisplayName is the library folder name: sanitized title plus " (YEAR)" when known.
func (r Record) DisplayName() string {
	title := textutil.SanitizeFolderName(r.Title)
	if title == "" {
		return "Unknown"
	}
	if year := strings.TrimSpace(r.Year); year != "" {
		return fmt.Sprintf("%s (%s)", title, year)
	}
	return title
}

// IsMovieKind is shorthand for r.Kind.IsMovieKind.
func (r Record) IsMovieKind() bool { return r.Kind.IsMovieKind() }

// IsSeriesKind is shorthand for r.Kind.IsSeriesKind.
func (r Record) IsSeriesKind() bool { return r.Kind.IsSeriesKind() }

// Usable reports whether an unknown record still carries enough to route it for review.
func (r Record) Usable() bool {
	return strings.TrimSpace(r.Title) != "" && strings.TrimSpace(r.Year) != ""
}
