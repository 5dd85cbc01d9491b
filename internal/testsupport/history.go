package testsupport

import (
	"path/filepath"
	"testing"

	"sortmedown/internal/config"
	"sortmedown/internal/history"
)

// MustOpenHistory opens the run journal configured for cfg and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	path := cfg.History.Path
	if path == "" {
		path = filepath.Join(cfg.Paths.StateDir, "history.db")
	}
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
