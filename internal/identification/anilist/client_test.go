package anilist_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sortmedown/internal/identification/anilist"
)

func TestSearchPostsGraphQL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		var body struct {
			Query     string            `json:"query"`
			Variables map[string]string `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Variables["search"] != "Cowboy Bebop" {
			t.Fatalf("unexpected search variable %q", body.Variables["search"])
		}
		if !strings.Contains(body.Query, "type: ANIME") {
			t.Fatalf("query missing anime filter: %s", body.Query)
		}
		_, _ = w.Write([]byte(`{"data":{"Media":{"title":{"romaji":"Cowboy Bebop","english":"Cowboy Bebop","native":"カウボーイビバップ"},"format":"TV","genres":["Action","Sci-Fi"],"seasonYear":1998,"episodes":26}}}`))
	}))
	t.Cleanup(server.Close)

	client, err := anilist.New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := client.Search(context.Background(), "Cowboy Bebop")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got == nil || !got.IsSeries() || got.IsMovie() {
		t.Fatalf("unexpected media: %#v", got)
	}
	if got.SeasonYear != 1998 || len(got.Genres) != 2 {
		t.Fatalf("unexpected fields: %#v", got)
	}
}

func TestSearchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"message":"Not Found.","status":404}],"data":{"Media":null}}`))
	}))
	t.Cleanup(server.Close)

	client, _ := anilist.New(server.URL)
	got, err := client.Search(context.Background(), "No Such Anime")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
}

func TestSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client, _ := anilist.New(server.URL)
	if _, err := client.Search(context.Background(), "Anything"); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestPreferredTitle(t *testing.T) {
	var m anilist.Media
	m.Title.Romaji = "Sen to Chihiro no Kamikakushi"
	if m.PreferredTitle() != "Sen to Chihiro no Kamikakushi" {
		t.Fatalf("expected romaji fallback, got %q", m.PreferredTitle())
	}
	m.Title.English = "Spirited Away"
	m.Format = "MOVIE"
	if m.PreferredTitle() != "Spirited Away" || !m.IsMovie() {
		t.Fatalf("unexpected: %q movie=%v", m.PreferredTitle(), m.IsMovie())
	}
	m.Format = "MUSIC"
	if m.IsMovie() || m.IsSeries() {
		t.Fatal("music format must be neither movie nor series")
	}
}
