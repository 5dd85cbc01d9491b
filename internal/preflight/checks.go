package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"sortmedown/internal/config"
	"sortmedown/internal/identification/omdb"
	"sortmedown/internal/identification/tmdb"
)

const keyCheckTimeout = 15 * time.Second

// CheckOMDbKey verifies the OMDb key by looking up a title that always exists.
func CheckOMDbKey(ctx context.Context, cfg *config.Config) Result {
	const name = "OMDb API key"
	if !config.HasKey(cfg.Providers.OMDbAPIKey) {
		return Result{Name: name, Detail: "API key missing"}
	}
	client, err := omdb.New(cfg.Providers.OMDbAPIKey, cfg.Providers.OMDbURL,
		omdb.WithTimeout(keyCheckTimeout),
		omdb.WithUserAgent(cfg.Providers.UserAgent),
	)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	checkCtx, cancel := context.WithTimeout(ctx, keyCheckTimeout)
	defer cancel()
	if err := client.CheckKey(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeKeyError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "key accepted"}
}

// CheckTMDBKey verifies the TMDB key against the configuration endpoint.
func CheckTMDBKey(ctx context.Context, cfg *config.Config) Result {
	const name = "TMDB API key"
	if !config.HasKey(cfg.Providers.TMDBAPIKey) {
		return Result{Name: name, Detail: "API key missing"}
	}
	client, err := tmdb.New(cfg.Providers.TMDBAPIKey, cfg.Providers.TMDBBaseURL, cfg.Providers.TMDBLanguage,
		tmdb.WithTimeout(keyCheckTimeout),
	)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	checkCtx, cancel := context.WithTimeout(ctx, keyCheckTimeout)
	defer cancel()
	if err := client.CheckKey(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeKeyError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "key accepted"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDestination is CheckDirectoryAccess for directories the sorter creates
// on demand: a missing directory passes.
func CheckDestination(name, path string) Result {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	return CheckDirectoryAccess(name, path)
}

func summarizeKeyError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "key check timed out (provider unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "key check timed out (provider unreachable)"
	}
	return err.Error()
}
