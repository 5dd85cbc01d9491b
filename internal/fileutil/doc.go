// Package fileutil moves media files together with their sidecars.
//
// Moves never overwrite: a same-named file at the destination is skipped and
// reported. Cross-device moves fall back to a SHA256-verified copy followed by
// removal of the source. Every mutating Manager method honours dry-run by
// logging the intended action instead.
package fileutil
