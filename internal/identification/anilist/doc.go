// Package anilist queries the AniList GraphQL API for anime titles.
package anilist
