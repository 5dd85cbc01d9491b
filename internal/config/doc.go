// Package config loads, normalizes, and validates sortmedown configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OMDB_API_KEY and TMDB_API_KEY. The Config type is loaded once per
// invocation; CLI flags override a copy before the sorter is built.
package config
