package jellyfin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sortmedown/internal/config"
	"sortmedown/internal/services/jellyfin"
)

func TestRefreshPostsWithToken(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Library/Refresh" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if token := r.Header.Get("X-Emby-Token"); token != "token-123" {
			t.Errorf("unexpected token: %q", token)
		}
		calls++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := jellyfin.New(server.URL+"/", "token-123")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one refresh call, got %d", calls)
	}
}

func TestRefreshReportsRejectedKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := jellyfin.New(server.URL, "bad")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = client.Refresh(context.Background())
	if err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	client, err := jellyfin.NewFromConfig(&cfg)
	if err != nil || client != nil {
		t.Fatalf("disabled integration returned %v, %v", client, err)
	}

	cfg.Jellyfin.Enabled = true
	cfg.Jellyfin.URL = "http://localhost:8096"
	if _, err := jellyfin.NewFromConfig(&cfg); err == nil {
		t.Fatal("expected error without api key")
	}
	cfg.Jellyfin.APIKey = "key"
	client, err = jellyfin.NewFromConfig(&cfg)
	if err != nil || client == nil {
		t.Fatalf("NewFromConfig = %v, %v", client, err)
	}
}
