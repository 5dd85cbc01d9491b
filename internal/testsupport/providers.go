package testsupport

import (
	"context"
	"strings"
	"sync"

	"sortmedown/internal/identification"
)

// FakeGeneral is an in-memory general metadata provider keyed by search term.
type FakeGeneral struct {
	ProviderName string
	Matches      map[string]*identification.Match
	Err          error

	mu    sync.Mutex
	calls []string
}

func (f *FakeGeneral) Name() string {
	if f.ProviderName == "" {
		return "fake-general"
	}
	return f.ProviderName
}

func (f *FakeGeneral) Lookup(_ context.Context, title string) (*identification.Match, error) {
	f.mu.Lock()
	f.calls = append(f.calls, title)
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if m, ok := f.Matches[strings.ToLower(title)]; ok {
		copyMatch := *m
		return &copyMatch, nil
	}
	return nil, nil
}

// Calls returns the search terms seen so far.
func (f *FakeGeneral) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// FakeAnime is an in-memory anime provider keyed by search term.
type FakeAnime struct {
	Matches map[string]*identification.AnimeMatch
	Err     error

	mu    sync.Mutex
	calls []string
}

func (f *FakeAnime) Name() string { return "fake-anime" }

func (f *FakeAnime) Search(_ context.Context, title string) (*identification.AnimeMatch, error) {
	f.mu.Lock()
	f.calls = append(f.calls, title)
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if m, ok := f.Matches[strings.ToLower(title)]; ok {
		copyMatch := *m
		return &copyMatch, nil
	}
	return nil, nil
}

// Calls returns the search terms seen so far.
func (f *FakeAnime) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
