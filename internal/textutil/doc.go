// Package textutil turns noisy release names into search titles and library
// folder names.
//
// CleanForSearch strips separators, configured junk tokens, bracketed release
// groups, and everything after the first metadata breakpoint (year, season
// marker, resolution, source or codec tag). The Extract helpers pull season,
// episode and year hints out of the raw name. The Sanitize helpers make
// provider titles safe to use as path segments.
package textutil
