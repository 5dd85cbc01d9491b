package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the source tree and every destination the sorter routes to.
type Paths struct {
	SourceDir      string `toml:"source_dir"`
	MoviesDir      string `toml:"movies_dir"`
	TVDir          string `toml:"tv_dir"`
	AnimeMoviesDir string `toml:"anime_movies_dir"`
	AnimeSeriesDir string `toml:"anime_series_dir"`
	SplitMoviesDir string `toml:"split_movies_dir"`
	MismatchedDir  string `toml:"mismatched_dir"`
	StateDir       string `toml:"state_dir"`
}

// Providers configures the metadata lookups.
type Providers struct {
	Primary             string  `toml:"primary"`
	OMDbAPIKey          string  `toml:"omdb_api_key"`
	OMDbURL             string  `toml:"omdb_url"`
	TMDBAPIKey          string  `toml:"tmdb_api_key"`
	TMDBBaseURL         string  `toml:"tmdb_base_url"`
	TMDBLanguage        string  `toml:"tmdb_language"`
	AniListURL          string  `toml:"anilist_url"`
	RequestDelaySeconds float64 `toml:"request_delay_seconds"`
	TimeoutSeconds      int     `toml:"timeout_seconds"`
	UserAgent           string  `toml:"user_agent"`
}

// Sorting contains routing policy.
type Sorting struct {
	MoviesEnabled           bool     `toml:"movies_enabled"`
	TVEnabled               bool     `toml:"tv_enabled"`
	AnimeMoviesEnabled      bool     `toml:"anime_movies_enabled"`
	AnimeSeriesEnabled      bool     `toml:"anime_series_enabled"`
	SplitEnabled            bool     `toml:"split_enabled"`
	SplitLanguages          []string `toml:"split_languages"`
	CleanupInPlace          bool     `toml:"cleanup_in_place"`
	FallbackShowDestination string   `toml:"fallback_show_destination"`
	SupportedExtensions     []string `toml:"supported_extensions"`
	SidecarExtensions       []string `toml:"sidecar_extensions"`
	JunkTokens              []string `toml:"junk_tokens"`
}

// Watch configures the polling loop.
type Watch struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History configures the sqlite run journal.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Notifications configures ntfy pushes.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	Unidentified          bool   `toml:"unidentified"`
}

// Jellyfin configures the optional library refresh after passes that moved files.
type Jellyfin struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	APIKey  string `toml:"api_key"`
}

// Config encapsulates all configuration values for sortmedown.
//
// Configuration sections by subsystem:
//   - Paths: source tree, per-kind libraries, review and state directories
//   - Providers: OMDb, TMDB and AniList access plus request pacing
//   - Sorting: enabled kinds, language split, fallback policy, file types
//   - Watch: polling interval for watch mode
//   - Logging: log format and level
//   - History: run journal location
//   - Notifications: optional ntfy pushes after passes
//   - Jellyfin: media server library refresh
type Config struct {
	Paths     Paths     `toml:"paths"`
	Providers Providers `toml:"providers"`
	Sorting   Sorting   `toml:"sorting"`
	Watch     Watch     `toml:"watch"`
	Logging   Logging   `toml:"logging"`
	History   History   `toml:"history"`

	Notifications Notifications `toml:"notifications"`
	Jellyfin      Jellyfin      `toml:"jellyfin"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg, resolvedPath, exists, err := Read(path)
	if err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return cfg, resolvedPath, exists, nil
}

// Read parses and normalizes a configuration file without validating it.
// Commands that only need credentials or paths (key tests, history) use it so
// an incomplete file does not block them.
func Read(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sortmedown.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory used for logs, the run lock
// and the history database. Library directories are created by the sorter's
// preflight so dry runs never touch them.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	if c.History.Enabled {
		if dir := filepath.Dir(c.History.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create history directory %q: %w", dir, err)
			}
		}
	}
	return nil
}

// MismatchedPath returns the review directory. It falls back to
// "_Mismatched" inside the source directory when not configured.
func (c *Config) MismatchedPath() string {
	if dir := strings.TrimSpace(c.Paths.MismatchedDir); dir != "" {
		return dir
	}
	if src := strings.TrimSpace(c.Paths.SourceDir); src != "" {
		return filepath.Join(src, defaultMismatchedName)
	}
	return ""
}

// LogPath is the file log written alongside console output.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "sortmedown.log")
}

// LockPath is the flock file guarding sort passes.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "sortmedown.lock")
}

// RequestDelay is the pause enforced between provider calls.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.Providers.RequestDelaySeconds * float64(time.Second))
}

// ProviderTimeout bounds every provider HTTP request.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Providers.TimeoutSeconds) * time.Second
}

// WatchInterval is the wait between source directory checks in watch mode.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Watch.IntervalSeconds) * time.Second
}

// AnimeEnabled reports whether any anime kind is routed, which gates AniList lookups.
func (c *Config) AnimeEnabled() bool {
	return c.Sorting.AnimeMoviesEnabled || c.Sorting.AnimeSeriesEnabled
}

// IsSupported reports whether ext (with leading dot, any case) is a primary media extension.
func (c *Config) IsSupported(ext string) bool {
	return containsFold(c.Sorting.SupportedExtensions, ext)
}

// IsSidecar reports whether ext is a sidecar extension.
func (c *Config) IsSidecar(ext string) bool {
	return containsFold(c.Sorting.SidecarExtensions, ext)
}

func containsFold(values []string, ext string) bool {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return false
	}
	for _, value := range values {
		if value == ext {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
