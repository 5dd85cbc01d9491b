package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Title is the subset of the OMDb title payload the classifier reads.
type Title struct {
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Type     string `json:"Type"`
	Language string `json:"Language"`
	Genre    string `json:"Genre"`
	Country  string `json:"Country"`
	IMDbID   string `json:"imdbID"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// ReleaseYear returns the first year of a range such as "2008–2013".
func (t Title) ReleaseYear() string {
	year := strings.TrimSpace(t.Year)
	if idx := strings.IndexAny(year, "–-"); idx >= 0 {
		year = year[:idx]
	}
	year = strings.TrimSpace(year)
	if year == "N/A" {
		return ""
	}
	return year
}

type searchHit struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Type   string `json:"Type"`
}

type searchResponse struct {
	Search   []searchHit `json:"Search"`
	Response string      `json:"Response"`
	Error    string      `json:"Error"`
}

// Client queries the OMDb API.
type Client struct {
	apiKey     string
	baseURL    string
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

// New creates an OMDb client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("omdb url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Lookup resolves a title. It tries an exact title match first, then a search
// whose first hit is fetched by IMDb id. No match returns (nil, nil).
func (c *Client) Lookup(ctx context.Context, title string) (*Title, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}

	exact, err := c.byParam(ctx, "t", title)
	if err != nil {
		return nil, err
	}
	if exact != nil {
		return exact, nil
	}

	var search searchResponse
	if err := c.get(ctx, url.Values{"s": {title}}, &search); err != nil {
		return nil, err
	}
	if !strings.EqualFold(search.Response, "True") || len(search.Search) == 0 {
		return nil, nil
	}
	id := strings.TrimSpace(search.Search[0].IMDbID)
	if id == "" {
		return nil, nil
	}
	return c.byParam(ctx, "i", id)
}

// CheckKey performs a known-good lookup to confirm the key authenticates.
func (c *Client) CheckKey(ctx context.Context) error {
	var payload Title
	if err := c.get(ctx, url.Values{"t": {"Inception"}}, &payload); err != nil {
		return fmt.Errorf("omdb key check: %w", err)
	}
	if !strings.EqualFold(payload.Response, "True") {
		if payload.Error != "" {
			return fmt.Errorf("omdb key check: %s", payload.Error)
		}
		return errors.New("omdb key check: lookup returned no result")
	}
	return nil
}

func (c *Client) byParam(ctx context.Context, key, value string) (*Title, error) {
	var payload Title
	if err := c.get(ctx, url.Values{key: {value}}, &payload); err != nil {
		return nil, err
	}
	if !strings.EqualFold(payload.Response, "True") {
		return nil, nil
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, params url.Values, into any) error {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("parse omdb url: %w", err)
	}
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("omdb returned %d (latency=%v)", resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode omdb response: %w", err)
	}
	return nil
}
