package preflight

import (
	"context"

	"sortmedown/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks the source directory and every destination the configuration
// routes to. Disabled kinds are skipped.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Source directory", cfg.Paths.SourceDir)}
	for _, dest := range Destinations(cfg) {
		results = append(results, CheckDestination(dest.Name, dest.Path))
	}
	return results
}

// KeyChecks verifies every configured provider key over the network.
func KeyChecks(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result
	if cfg.Providers.Primary == config.ProviderOMDb || config.HasKey(cfg.Providers.OMDbAPIKey) {
		results = append(results, CheckOMDbKey(ctx, cfg))
	}
	if cfg.Providers.Primary == config.ProviderTMDB || config.HasKey(cfg.Providers.TMDBAPIKey) {
		results = append(results, CheckTMDBKey(ctx, cfg))
	}
	return results
}

// Destination is a named library directory.
type Destination struct {
	Name string
	Path string
}

// Destinations lists the library directories that enabled kinds route to,
// plus the review directory and the split library when splitting is on.
func Destinations(cfg *config.Config) []Destination {
	var out []Destination
	add := func(enabled bool, name, path string) {
		if enabled && path != "" {
			out = append(out, Destination{Name: name, Path: path})
		}
	}
	add(cfg.Sorting.MoviesEnabled, "Movies directory", cfg.Paths.MoviesDir)
	add(cfg.Sorting.TVEnabled, "TV directory", cfg.Paths.TVDir)
	add(cfg.Sorting.AnimeMoviesEnabled, "Anime movies directory", cfg.Paths.AnimeMoviesDir)
	add(cfg.Sorting.AnimeSeriesEnabled, "Anime series directory", cfg.Paths.AnimeSeriesDir)
	add(cfg.Sorting.SplitEnabled, "Split movies directory", cfg.Paths.SplitMoviesDir)
	add(true, "Mismatched directory", cfg.MismatchedPath())
	return out
}

// FirstFailure returns the first failed result, if any.
func FirstFailure(results []Result) (Result, bool) {
	for _, r := range results {
		if !r.Passed {
			return r, true
		}
	}
	return Result{}, false
}
