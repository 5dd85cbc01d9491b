package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProviders()
	c.normalizeSorting()
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeout
	}
	c.normalizeJellyfin()
	return c.normalizeHistory()
}

func (c *Config) normalizeJellyfin() {
	c.Jellyfin.URL = strings.TrimRight(strings.TrimSpace(c.Jellyfin.URL), "/")
	c.Jellyfin.APIKey = strings.TrimSpace(c.Jellyfin.APIKey)
	if c.Jellyfin.APIKey == "" {
		if value, ok := os.LookupEnv("JELLYFIN_API_KEY"); ok {
			c.Jellyfin.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key   string
		value *string
	}{
		{"paths.source_dir", &c.Paths.SourceDir},
		{"paths.movies_dir", &c.Paths.MoviesDir},
		{"paths.tv_dir", &c.Paths.TVDir},
		{"paths.anime_movies_dir", &c.Paths.AnimeMoviesDir},
		{"paths.anime_series_dir", &c.Paths.AnimeSeriesDir},
		{"paths.split_movies_dir", &c.Paths.SplitMoviesDir},
		{"paths.mismatched_dir", &c.Paths.MismatchedDir},
		{"paths.state_dir", &c.Paths.StateDir},
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeProviders() {
	p := &c.Providers
	p.Primary = strings.ToLower(strings.TrimSpace(p.Primary))
	if p.Primary == "" {
		p.Primary = defaultPrimaryProvider
	}
	p.OMDbAPIKey = strings.TrimSpace(p.OMDbAPIKey)
	if p.OMDbAPIKey == "" || p.OMDbAPIKey == placeholderAPIKey {
		if value, ok := os.LookupEnv("OMDB_API_KEY"); ok {
			p.OMDbAPIKey = strings.TrimSpace(value)
		}
	}
	p.TMDBAPIKey = strings.TrimSpace(p.TMDBAPIKey)
	if p.TMDBAPIKey == "" || p.TMDBAPIKey == placeholderAPIKey {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			p.TMDBAPIKey = strings.TrimSpace(value)
		}
	}
	p.OMDbURL = strings.TrimSpace(p.OMDbURL)
	if p.OMDbURL == "" {
		p.OMDbURL = defaultOMDbURL
	}
	p.TMDBBaseURL = strings.TrimSpace(p.TMDBBaseURL)
	if p.TMDBBaseURL == "" {
		p.TMDBBaseURL = defaultTMDBBaseURL
	}
	p.TMDBLanguage = strings.TrimSpace(p.TMDBLanguage)
	p.AniListURL = strings.TrimSpace(p.AniListURL)
	if p.AniListURL == "" {
		p.AniListURL = defaultAniListURL
	}
	if p.TimeoutSeconds <= 0 {
		p.TimeoutSeconds = defaultTimeoutSeconds
	}
	p.UserAgent = strings.TrimSpace(p.UserAgent)
	if p.UserAgent == "" {
		p.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeSorting() {
	s := &c.Sorting
	s.FallbackShowDestination = strings.ToLower(strings.TrimSpace(s.FallbackShowDestination))
	if s.FallbackShowDestination == "" {
		s.FallbackShowDestination = defaultFallback
	}
	s.SupportedExtensions = normalizeExtensions(s.SupportedExtensions)
	if len(s.SupportedExtensions) == 0 {
		s.SupportedExtensions = defaultSupportedExtensions()
	}
	s.SidecarExtensions = normalizeExtensions(s.SidecarExtensions)
	s.JunkTokens = dedupTrimmed(s.JunkTokens, false)
	s.SplitLanguages = dedupTrimmed(s.SplitLanguages, true)
}

func normalizeExtensions(values []string) []string {
	out := dedupTrimmed(values, true)
	for i, ext := range out {
		if !strings.HasPrefix(ext, ".") {
			out[i] = "." + ext
		}
	}
	return out
}

func dedupTrimmed(values []string, lower bool) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if lower {
			value = strings.ToLower(value)
		}
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "console", "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, defaultHistoryFile)
		return nil
	}
	expanded, err := expandPath(strings.TrimSpace(c.History.Path))
	if err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	c.History.Path = expanded
	return nil
}
