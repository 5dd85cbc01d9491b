package identification

import (
	"path/filepath"
	"strings"

	"sortmedown/internal/media"
	"sortmedown/internal/textutil"
)

// Validate cross-checks rec against markers in the file name. A season marker
// forces a series kind. A year that disagrees with the provider year marks the
// match as wrong: the record becomes Unknown titled after the cleaned search term.
func Validate(path, searchTerm string, rec media.Record, junk []string) media.Record {
	filename := filepath.Base(path)

	if textutil.HasSeasonMarker(filename) && rec.IsMovieKind() {
		if strings.Contains(strings.ToLower(rec.Language), "japanese") {
			rec.Kind = media.AnimeSeries
		} else {
			rec.Kind = media.TvSeries
		}
	}

	fileYear := textutil.ExtractYear(filename)
	if fileYear == "" {
		fileYear = textutil.ExtractYear(searchTerm)
	}
	if fileYear != "" && rec.Year != "" && fileYear != rec.Year {
		rec.Kind = media.Unknown
		rec.Title = textutil.CleanForSearch(searchTerm, junk)
		rec.Year = fileYear
	}
	return rec
}
