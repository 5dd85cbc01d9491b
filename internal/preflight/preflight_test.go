package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sortmedown/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDestination_MissingPasses(t *testing.T) {
	result := CheckDestination("movies", filepath.Join(t.TempDir(), "later"))
	if !result.Passed || !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("expected missing destination to pass, got %+v", result)
	}
}

func TestCheckOMDbKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("apikey") != "good-key" {
			_, _ = w.Write([]byte(`{"Response":"False","Error":"Invalid API key!"}`))
			return
		}
		_, _ = w.Write([]byte(`{"Response":"True","Title":"Inception","Year":"2010","Type":"movie"}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Providers.OMDbURL = srv.URL

	cfg.Providers.OMDbAPIKey = "good-key"
	if result := CheckOMDbKey(context.Background(), &cfg); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}

	cfg.Providers.OMDbAPIKey = "bad-key"
	result := CheckOMDbKey(context.Background(), &cfg)
	if result.Passed {
		t.Fatal("expected failure for bad key")
	}
	if !strings.Contains(result.Detail, "Invalid API key") {
		t.Fatalf("expected provider error in detail, got %q", result.Detail)
	}
}

func TestCheckTMDBKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/configuration" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"images":{}}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Providers.TMDBBaseURL = srv.URL

	cfg.Providers.TMDBAPIKey = "good-key"
	if result := CheckTMDBKey(context.Background(), &cfg); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	cfg.Providers.TMDBAPIKey = "bad-key"
	if result := CheckTMDBKey(context.Background(), &cfg); result.Passed {
		t.Fatal("expected failure for bad key")
	}
}

func TestCheckKeys_MissingKey(t *testing.T) {
	cfg := config.Default()
	cfg.Providers.OMDbAPIKey = "yourkey"
	cfg.Providers.TMDBAPIKey = ""
	if result := CheckOMDbKey(context.Background(), &cfg); result.Passed {
		t.Fatal("expected placeholder key to fail")
	}
	if result := CheckTMDBKey(context.Background(), &cfg); result.Passed {
		t.Fatal("expected missing key to fail")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_SkipsDisabledKinds(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = base
	cfg.Paths.MoviesDir = filepath.Join(base, "movies")
	cfg.Paths.TVDir = filepath.Join(base, "tv")
	cfg.Paths.AnimeMoviesDir = filepath.Join(base, "anime-movies")
	cfg.Paths.AnimeSeriesDir = filepath.Join(base, "anime-series")
	cfg.Sorting.TVEnabled = false
	cfg.Sorting.SplitEnabled = false

	results := RunAll(&cfg)
	// source + movies + anime movies + anime series + mismatched
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d: %+v", len(results), results)
	}
	for _, r := range results {
		if r.Name == "TV directory" {
			t.Fatal("disabled TV directory should not be checked")
		}
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if _, failed := FirstFailure(results); failed {
		t.Fatal("expected no failures")
	}
}

func TestRunAll_MissingSourceFails(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(t.TempDir(), "missing")
	failure, failed := FirstFailure(RunAll(&cfg))
	if !failed || failure.Name != "Source directory" {
		t.Fatalf("expected source directory failure, got %+v", failure)
	}
}
