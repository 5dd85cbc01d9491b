// Package daemon runs sortmedown as a long-lived watcher over the source
// directory and guards passes against concurrent processes.
//
// A Watcher performs one full pass on start, then polls the source directory
// modification time at the configured interval and re-sorts when it advances.
// RunLock is the flock-based single-instance guard shared by one-shot sorts
// and watch mode.
package daemon
