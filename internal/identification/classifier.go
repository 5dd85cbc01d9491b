package identification

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"sortmedown/internal/logging"
	"sortmedown/internal/media"
	"sortmedown/internal/textutil"
)

const defaultCacheTTL = 10 * time.Minute

type cacheEntry struct {
	general *Match
	anime   *AnimeMatch
	expires time.Time
}

// Classifier turns a raw release name into a media.Record.
type Classifier struct {
	providers Providers
	junk      []string
	limiter   *rate.Limiter
	logger    *slog.Logger

	mu       sync.Mutex
	cache    map[string]cacheEntry
	cacheTTL time.Duration
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithCacheTTL overrides how long provider answers are reused. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Classifier) {
		c.cacheTTL = ttl
	}
}

// NewClassifier builds a classifier. delay is the minimum spacing between provider calls.
func NewClassifier(providers Providers, junk []string, delay time.Duration, logger *slog.Logger, opts ...Option) *Classifier {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	c := &Classifier{
		providers: providers,
		junk:      append([]string(nil), junk...),
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logging.NewComponentLogger(logger, "classifier"),
		cache:     make(map[string]cacheEntry),
		cacheTTL:  defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify resolves name against the configured providers. Provider failures
// are logged and treated as missing data; Classify itself never fails.
func (c *Classifier) Classify(ctx context.Context, name string) media.Record {
	logger := logging.WithContext(ctx, c.logger)
	cleaned := textutil.CleanForSearch(name, c.junk)
	if cleaned == "" {
		logger.Info("nothing searchable left after cleaning", logging.String("name", name))
		return media.Record{Title: name, Kind: media.Unknown}
	}

	var anime *AnimeMatch
	if c.providers.Anime != nil {
		anime = c.searchAnime(ctx, logger, cleaned)
	}

	general := c.lookupGeneral(ctx, logger, c.providers.Primary, cleaned)
	if general == nil && c.providers.Secondary != nil {
		general = c.lookupGeneral(ctx, logger, c.providers.Secondary, cleaned)
	}

	rec := resolve(name, anime, general)
	logger.Debug("classification resolved",
		logging.String("search_term", cleaned),
		logging.String("kind", rec.Kind.String()),
		logging.String("title", rec.Title),
		logging.String("year", rec.Year),
		logging.Bool("anime_match", anime != nil),
		logging.Bool("general_match", general != nil),
	)
	return rec
}

// resolve applies the precedence between anime and general answers.
func resolve(raw string, anime *AnimeMatch, general *Match) media.Record {
	switch {
	case anime != nil && general != nil && !general.indicatesAnime():
		return fromGeneral(general)
	case anime != nil:
		return fromAnime(anime)
	case general != nil:
		return fromGeneral(general)
	default:
		return media.Record{Title: raw, Kind: media.Unknown}
	}
}

func fromGeneral(m *Match) media.Record {
	return media.Record{
		Title:    m.Title,
		Year:     m.Year,
		Kind:     m.Kind,
		Language: m.Language,
		Genre:    m.Genre,
	}
}

func fromAnime(m *AnimeMatch) media.Record {
	kind := media.Unknown
	switch m.Format {
	case "MOVIE":
		kind = media.AnimeMovie
	case "TV", "TV_SHORT", "ONA", "OVA", "SPECIAL":
		kind = media.AnimeSeries
	}
	return media.Record{
		Title:    m.Title,
		Year:     m.Year,
		Kind:     kind,
		Language: "Japanese",
		Genre:    strings.Join(m.Genres, ", "),
	}
}

func (c *Classifier) lookupGeneral(ctx context.Context, logger *slog.Logger, provider GeneralProvider, title string) *Match {
	if provider == nil {
		return nil
	}
	key := provider.Name() + "|" + strings.ToLower(title)
	if entry, ok := c.cached(key); ok {
		return entry.general
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}
	match, err := provider.Lookup(ctx, title)
	if err != nil {
		logging.WarnWithContext(logger, "metadata lookup failed",
			"provider_error",
			logging.String("provider", provider.Name()),
			logging.String("search_term", title),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access and the provider API key"),
			logging.String(logging.FieldImpact, "provider treated as having no match"),
		)
		return nil
	}
	c.store(key, cacheEntry{general: match})
	return match
}

func (c *Classifier) searchAnime(ctx context.Context, logger *slog.Logger, title string) *AnimeMatch {
	provider := c.providers.Anime
	key := provider.Name() + "|" + strings.ToLower(title)
	if entry, ok := c.cached(key); ok {
		return entry.anime
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}
	match, err := provider.Search(ctx, title)
	if err != nil {
		logging.WarnWithContext(logger, "anime lookup failed",
			"provider_error",
			logging.String("provider", provider.Name()),
			logging.String("search_term", title),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access to AniList"),
			logging.String(logging.FieldImpact, "anime database treated as having no match"),
		)
		return nil
	}
	c.store(key, cacheEntry{anime: match})
	return match
}

func (c *Classifier) cached(key string) (cacheEntry, bool) {
	if c.cacheTTL <= 0 {
		return cacheEntry{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[key]
	if !ok || time.Now().After(entry.expires) {
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *Classifier) store(key string, entry cacheEntry) {
	if c.cacheTTL <= 0 {
		return
	}
	entry.expires = time.Now().Add(c.cacheTTL)
	c.mu.Lock()
	c.cache[key] = entry
	c.mu.Unlock()
}
