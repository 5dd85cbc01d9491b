package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const mediaQuery = `query ($search: String) { Media(search: $search, type: ANIME) { title { romaji english native } format, genres, season, seasonYear, episodes } }`

// Media is the anime entry returned by a search.
type Media struct {
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
		Native  string `json:"native"`
	} `json:"title"`
	Format     string   `json:"format"`
	Genres     []string `json:"genres"`
	Season     string   `json:"season"`
	SeasonYear int      `json:"seasonYear"`
	Episodes   int      `json:"episodes"`
}

// PreferredTitle returns the English title, else romaji.
func (m Media) PreferredTitle() string {
	if t := strings.TrimSpace(m.Title.English); t != "" {
		return t
	}
	return strings.TrimSpace(m.Title.Romaji)
}

// IsMovie reports whether the format is a feature film.
func (m Media) IsMovie() bool {
	return strings.EqualFold(m.Format, "MOVIE")
}

// IsSeries reports whether the format is episodic.
func (m Media) IsSeries() bool {
	switch strings.ToUpper(m.Format) {
	case "TV", "TV_SHORT", "ONA", "OVA", "SPECIAL":
		return true
	}
	return false
}

type request struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type response struct {
	Data struct {
		Media *Media `json:"Media"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"errors"`
}

// Client posts GraphQL queries to AniList. No key is needed.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(ua)
	}
}

// New creates an AniList client.
func New(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("anilist endpoint required")
	}
	client := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search returns the best anime match for title, or (nil, nil) when AniList has none.
func (c *Client) Search(ctx context.Context, title string) (*Media, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}
	body, err := json.Marshal(request{Query: mediaQuery, Variables: map[string]string{"search": title}})
	if err != nil {
		return nil, fmt.Errorf("encode anilist query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	// AniList answers a search miss with 404 and a "Not Found." error entry.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anilist returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode anilist response: %w", err)
	}
	if payload.Data.Media == nil && len(payload.Errors) > 0 {
		if payload.Errors[0].Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("anilist error: %s", payload.Errors[0].Message)
	}
	return payload.Data.Media, nil
}
