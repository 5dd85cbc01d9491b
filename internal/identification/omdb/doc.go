// Package omdb is a small client for the OMDb API, the default general
// metadata database. Lookup follows exact title, then search, then IMDb id.
package omdb
