package testsupport

import (
	"path/filepath"
	"testing"

	"sortmedown/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Source and destination directories are not created; tests lay out what
// they need with WriteFile.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Providers.OMDbAPIKey = "test"
	cfgVal.Providers.RequestDelaySeconds = 0
	cfgVal.Paths.SourceDir = filepath.Join(base, "downloads")
	cfgVal.Paths.MoviesDir = filepath.Join(base, "library", "movies")
	cfgVal.Paths.TVDir = filepath.Join(base, "library", "tv")
	cfgVal.Paths.AnimeMoviesDir = filepath.Join(base, "library", "anime-movies")
	cfgVal.Paths.AnimeSeriesDir = filepath.Join(base, "library", "anime-series")
	cfgVal.Paths.SplitMoviesDir = filepath.Join(base, "library", "foreign-movies")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")
	cfgVal.Sorting.FallbackShowDestination = config.FallbackMismatched

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSplit enables the language split for the given codes.
func WithSplit(languages ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sorting.SplitEnabled = true
		if len(languages) > 0 {
			b.cfg.Sorting.SplitLanguages = languages
		}
	}
}

// WithCleanup turns on in-place reorganization.
func WithCleanup() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sorting.CleanupInPlace = true
	}
}

// WithFallback sets the destination policy for unresolved series.
func WithFallback(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sorting.FallbackShowDestination = policy
	}
}

// WithNtfy points notifications at endpoint.
func WithNtfy(endpoint string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = endpoint
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
