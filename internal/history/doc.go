// Package history journals sort passes and the moves they performed in SQLite.
//
// Each pass is a run row keyed by the pass run ID. Moves are recorded only for
// real relocations; dry runs journal the run itself with its counts.
package history
