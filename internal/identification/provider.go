package identification

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"sortmedown/internal/config"
	"sortmedown/internal/identification/anilist"
	"sortmedown/internal/identification/omdb"
	"sortmedown/internal/identification/tmdb"
	"sortmedown/internal/language"
	"sortmedown/internal/media"
)

// Match is a general-database result normalized across OMDb and TMDB.
type Match struct {
	Title    string
	Year     string
	Kind     media.Kind
	Language string
	Genre    string
	Country  string
}

// indicatesAnime reports whether the general result itself describes Japanese animation.
func (m Match) indicatesAnime() bool {
	return strings.Contains(strings.ToLower(m.Genre), "animation") ||
		strings.Contains(strings.ToLower(m.Country), "japan")
}

// AnimeMatch is an anime-database result.
type AnimeMatch struct {
	Title  string
	Year   string
	Format string
	Genres []string
}

// GeneralProvider looks up movies and TV series. A miss is (nil, nil).
type GeneralProvider interface {
	Name() string
	Lookup(ctx context.Context, title string) (*Match, error)
}

// AnimeProvider looks up anime titles. A miss is (nil, nil).
type AnimeProvider interface {
	Name() string
	Search(ctx context.Context, title string) (*AnimeMatch, error)
}

// Providers is the set of lookups a Classifier consults.
type Providers struct {
	Primary   GeneralProvider
	Secondary GeneralProvider
	Anime     AnimeProvider
}

// OMDbProvider adapts the OMDb client.
type OMDbProvider struct {
	Client *omdb.Client
}

func (p OMDbProvider) Name() string { return config.ProviderOMDb }

func (p OMDbProvider) Lookup(ctx context.Context, title string) (*Match, error) {
	res, err := p.Client.Lookup(ctx, title)
	if err != nil || res == nil {
		return nil, err
	}
	kind := media.Unknown
	switch strings.ToLower(strings.TrimSpace(res.Type)) {
	case "movie":
		kind = media.Movie
	case "series", "tv series":
		kind = media.TvSeries
	}
	return &Match{
		Title:    naToEmpty(res.Title),
		Year:     res.ReleaseYear(),
		Kind:     kind,
		Language: naToEmpty(res.Language),
		Genre:    naToEmpty(res.Genre),
		Country:  naToEmpty(res.Country),
	}, nil
}

// TMDBProvider adapts the TMDB multi-search client.
type TMDBProvider struct {
	Client *tmdb.Client
}

func (p TMDBProvider) Name() string { return config.ProviderTMDB }

func (p TMDBProvider) Lookup(ctx context.Context, title string) (*Match, error) {
	resp, err := p.Client.SearchMulti(ctx, title)
	if err != nil || resp == nil {
		return nil, err
	}
	for _, res := range resp.Results {
		var kind media.Kind
		switch res.MediaType {
		case "movie":
			kind = media.Movie
		case "tv":
			kind = media.TvSeries
		default:
			continue
		}
		match := &Match{
			Title: res.DisplayTitle(),
			Year:  res.Year(),
			Kind:  kind,
		}
		if res.OriginalLanguage != "" {
			match.Language = language.DisplayName(res.OriginalLanguage)
		}
		if res.HasGenre(tmdb.AnimationGenreID) {
			match.Genre = "Animation"
		}
		if res.OriginalLanguage == "ja" || containsFold(res.OriginCountry, "JP") {
			match.Country = "Japan"
		}
		return match, nil
	}
	return nil, nil
}

// AniListProvider adapts the AniList client.
type AniListProvider struct {
	Client *anilist.Client
}

func (p AniListProvider) Name() string { return "anilist" }

func (p AniListProvider) Search(ctx context.Context, title string) (*AnimeMatch, error) {
	res, err := p.Client.Search(ctx, title)
	if err != nil || res == nil {
		return nil, err
	}
	match := &AnimeMatch{
		Title:  res.PreferredTitle(),
		Format: strings.ToUpper(strings.TrimSpace(res.Format)),
		Genres: res.Genres,
	}
	if res.SeasonYear > 0 {
		match.Year = strconv.Itoa(res.SeasonYear)
	}
	return match, nil
}

// NewProviders builds the provider set described by cfg. The secondary general
// database is the other one, used only when its key is set. AniList is skipped
// when no anime kind is enabled.
func NewProviders(cfg *config.Config) (Providers, error) {
	var out Providers
	p := cfg.Providers
	timeout := cfg.ProviderTimeout()

	newOMDb := func() (GeneralProvider, error) {
		client, err := omdb.New(p.OMDbAPIKey, p.OMDbURL, omdb.WithTimeout(timeout), omdb.WithUserAgent(p.UserAgent))
		if err != nil {
			return nil, err
		}
		return OMDbProvider{Client: client}, nil
	}
	newTMDB := func() (GeneralProvider, error) {
		client, err := tmdb.New(p.TMDBAPIKey, p.TMDBBaseURL, p.TMDBLanguage, tmdb.WithTimeout(timeout))
		if err != nil {
			return nil, err
		}
		return TMDBProvider{Client: client}, nil
	}

	var err error
	switch p.Primary {
	case config.ProviderOMDb:
		if out.Primary, err = newOMDb(); err != nil {
			return Providers{}, fmt.Errorf("primary provider: %w", err)
		}
		if config.HasKey(p.TMDBAPIKey) {
			if out.Secondary, err = newTMDB(); err != nil {
				return Providers{}, fmt.Errorf("secondary provider: %w", err)
			}
		}
	case config.ProviderTMDB:
		if out.Primary, err = newTMDB(); err != nil {
			return Providers{}, fmt.Errorf("primary provider: %w", err)
		}
		if config.HasKey(p.OMDbAPIKey) {
			if out.Secondary, err = newOMDb(); err != nil {
				return Providers{}, fmt.Errorf("secondary provider: %w", err)
			}
		}
	default:
		return Providers{}, fmt.Errorf("unsupported primary provider %q", p.Primary)
	}

	if cfg.AnimeEnabled() {
		client, err := anilist.New(p.AniListURL, anilist.WithTimeout(timeout), anilist.WithUserAgent(p.UserAgent))
		if err != nil {
			return Providers{}, fmt.Errorf("anime provider: %w", err)
		}
		out.Anime = AniListProvider{Client: client}
	}
	return out, nil
}

func naToEmpty(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}
