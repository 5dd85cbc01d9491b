// Package notifications pushes pass summaries and review alerts to ntfy.
//
// NewService returns a no-op when no topic is configured, so callers publish
// unconditionally.
package notifications
