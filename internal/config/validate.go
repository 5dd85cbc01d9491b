package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateSorting(); err != nil {
		return err
	}
	if c.Watch.IntervalSeconds <= 0 {
		return errors.New("watch.interval_seconds must be positive")
	}
	return c.validateJellyfin()
}

func (c *Config) validateJellyfin() error {
	if !c.Jellyfin.Enabled {
		return nil
	}
	if c.Jellyfin.URL == "" {
		return errors.New("jellyfin.url must be set when jellyfin.enabled is true")
	}
	if c.Jellyfin.APIKey == "" {
		return errors.New("jellyfin.api_key must be set when jellyfin.enabled is true (or export JELLYFIN_API_KEY)")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SourceDir) == "" {
		return errors.New("paths.source_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateProviders() error {
	switch c.Providers.Primary {
	case ProviderOMDb:
		if !HasKey(c.Providers.OMDbAPIKey) {
			return fmt.Errorf("providers.omdb_api_key is required. Set OMDB_API_KEY env var or edit %s (create with 'sortmedown config init')", configHint())
		}
	case ProviderTMDB:
		if !HasKey(c.Providers.TMDBAPIKey) {
			return fmt.Errorf("providers.tmdb_api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'sortmedown config init')", configHint())
		}
	default:
		return fmt.Errorf("providers.primary must be %q or %q, got %q", ProviderOMDb, ProviderTMDB, c.Providers.Primary)
	}
	if c.Providers.RequestDelaySeconds < 0 {
		return errors.New("providers.request_delay_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateSorting() error {
	switch c.Sorting.FallbackShowDestination {
	case FallbackIgnore, FallbackMismatched, FallbackTV, FallbackAnime:
	default:
		return fmt.Errorf("sorting.fallback_show_destination must be one of ignore, mismatched, tv, anime; got %q", c.Sorting.FallbackShowDestination)
	}
	if c.Sorting.SplitEnabled {
		if strings.TrimSpace(c.Paths.SplitMoviesDir) == "" {
			return errors.New("paths.split_movies_dir must be set when sorting.split_enabled is true")
		}
		if len(c.Sorting.SplitLanguages) == 0 {
			return errors.New("sorting.split_languages must include at least one language when sorting.split_enabled is true")
		}
	}
	return nil
}

// HasKey reports whether an API key is set to something other than the sample placeholder.
func HasKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != placeholderAPIKey
}

func configHint() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return defaultConfigPath
	}
	return path
}
