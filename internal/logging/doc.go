// Package logging assembles structured slog loggers and formatting helpers used
// across sortmedown.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so a directory pass can tag
// every line with its run ID and the file being sorted. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
