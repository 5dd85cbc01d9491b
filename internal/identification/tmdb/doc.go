// Package tmdb provides the minimal TMDB API client used as the alternate
// general metadata database.
//
// It exposes multi search (movies and shows in one query) and a key check
// against the configuration endpoint. Options allow tests to supply custom HTTP
// clients without modifying production code.
package tmdb
