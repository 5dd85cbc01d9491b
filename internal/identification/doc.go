// Package identification classifies release names using OMDb or TMDB for
// general titles and AniList for anime.
//
// The Classifier cleans the raw name, queries the anime database when an anime
// kind is enabled, queries the primary general database and falls back to the
// secondary one on a miss. An anime answer wins unless the general answer is
// present and clearly not Japanese animation. Calls are paced by a rate limiter
// and answers are cached for a short TTL so the episodes of one show cost one
// lookup.
//
// Validate then cross-checks the record against season and year markers in the
// file name before the organizer routes it.
package identification
