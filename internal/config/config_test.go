package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"sortmedown/internal/config"
)

func TestLoadDefaultConfigUsesEnvOMDbKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "env-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(tempHome)

	path := filepath.Join(tempHome, "cfg.toml")
	if err := os.WriteFile(path, []byte("[paths]\nsource_dir = \"~/incoming\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.SourceDir != filepath.Join(tempHome, "incoming") {
		t.Fatalf("unexpected source dir: %q", cfg.Paths.SourceDir)
	}
	wantState := filepath.Join(tempHome, ".local", "share", "sortmedown")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Providers.OMDbAPIKey != "env-key" {
		t.Fatalf("expected OMDb key from env, got %q", cfg.Providers.OMDbAPIKey)
	}
	if cfg.History.Path != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.History.Path)
	}
	if got := cfg.MismatchedPath(); got != filepath.Join(tempHome, "incoming", "_Mismatched") {
		t.Fatalf("unexpected mismatched path: %q", got)
	}
	if cfg.WatchInterval().Minutes() != 15 {
		t.Fatalf("unexpected watch interval: %v", cfg.WatchInterval())
	}
	if cfg.RequestDelay().Seconds() != 1 {
		t.Fatalf("unexpected request delay: %v", cfg.RequestDelay())
	}
}

func TestPlaceholderKeyIsTreatedAsUnset(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, "cfg.toml")
	body := "[paths]\nsource_dir = \"/tmp/src\"\n[providers]\nomdb_api_key = \"yourkey\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error for placeholder key")
	}
	if !strings.Contains(err.Error(), "omdb_api_key") {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, _, _, err := config.Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if config.HasKey(cfg.Providers.OMDbAPIKey) {
		t.Fatalf("expected placeholder to count as unset, got %q", cfg.Providers.OMDbAPIKey)
	}
}

func TestNormalizeExtensions(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, "cfg.toml")
	body := strings.Join([]string{
		"[paths]",
		"source_dir = \"/tmp/src\"",
		"[providers]",
		"omdb_api_key = \"abc\"",
		"[sorting]",
		"supported_extensions = [\"MKV\", \".mp4\", \"mkv\", \" \"]",
		"sidecar_extensions = [\"SRT\"]",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := []string{".mkv", ".mp4"}
	if strings.Join(cfg.Sorting.SupportedExtensions, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected extensions: %v", cfg.Sorting.SupportedExtensions)
	}
	if !cfg.IsSupported(".MKV") || cfg.IsSupported(".srt") {
		t.Fatal("IsSupported mismatch")
	}
	if !cfg.IsSidecar(".Srt") {
		t.Fatal("expected .srt sidecar")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"missing source", func(c *config.Config) { c.Paths.SourceDir = "" }, "paths.source_dir"},
		{"bad fallback", func(c *config.Config) { c.Sorting.FallbackShowDestination = "nowhere" }, "fallback_show_destination"},
		{"bad provider", func(c *config.Config) { c.Providers.Primary = "imdb" }, "providers.primary"},
		{"split without dir", func(c *config.Config) {
			c.Sorting.SplitEnabled = true
			c.Paths.SplitMoviesDir = ""
		}, "split_movies_dir"},
		{"negative delay", func(c *config.Config) { c.Providers.RequestDelaySeconds = -1 }, "request_delay_seconds"},
		{"tmdb without key", func(c *config.Config) {
			c.Providers.Primary = config.ProviderTMDB
			c.Providers.TMDBAPIKey = ""
		}, "tmdb_api_key"},
		{"jellyfin without url", func(c *config.Config) {
			c.Jellyfin.Enabled = true
			c.Jellyfin.APIKey = "key"
		}, "jellyfin.url"},
		{"jellyfin without key", func(c *config.Config) {
			c.Jellyfin.Enabled = true
			c.Jellyfin.URL = "http://localhost:8096"
		}, "jellyfin.api_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.SourceDir = "/tmp/src"
			cfg.Paths.StateDir = "/tmp/state"
			cfg.Providers.OMDbAPIKey = "key"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.Sorting.FallbackShowDestination != config.FallbackMismatched {
		t.Fatalf("unexpected sample fallback: %q", cfg.Sorting.FallbackShowDestination)
	}
	if cfg.Watch.IntervalSeconds != 900 {
		t.Fatalf("unexpected sample interval: %d", cfg.Watch.IntervalSeconds)
	}
}

func TestEnsureDirectoriesCreatesStateDir(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.History.Path = filepath.Join(base, "db", "history.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, filepath.Dir(cfg.History.Path)} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	if cfg.LockPath() != filepath.Join(cfg.Paths.StateDir, "sortmedown.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
}

func TestJellyfinKeyFromEnv(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "key")
	t.Setenv("JELLYFIN_API_KEY", "env-jellyfin")
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.toml")
	content := "[paths]\nsource_dir = \"" + filepath.ToSlash(filepath.Join(dir, "in")) + "\"\nstate_dir = \"" + filepath.ToSlash(filepath.Join(dir, "state")) + "\"\n\n[jellyfin]\nenabled = true\nurl = \"http://jf:8096/\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Jellyfin.APIKey != "env-jellyfin" {
		t.Fatalf("expected Jellyfin key from env, got %q", cfg.Jellyfin.APIKey)
	}
	if cfg.Jellyfin.URL != "http://jf:8096" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Jellyfin.URL)
	}
}
