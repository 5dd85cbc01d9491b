package jellyfin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sortmedown/internal/config"
)

const refreshPath = "/Library/Refresh"

// HTTPDoer describes the HTTP client used by the Jellyfin client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the Jellyfin HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http = &http.Client{Timeout: timeout}
		}
	}
}

// New constructs a client for the server at baseURL.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	apiKey = strings.TrimSpace(apiKey)
	if baseURL == "" {
		return nil, errors.New("jellyfin: base url required")
	}
	if apiKey == "" {
		return nil, errors.New("jellyfin: api key required")
	}
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromConfig returns a client when the Jellyfin integration is enabled and
// nil otherwise.
func NewFromConfig(cfg *config.Config) (*Client, error) {
	if cfg == nil || !cfg.Jellyfin.Enabled {
		return nil, nil
	}
	return New(cfg.Jellyfin.URL, cfg.Jellyfin.APIKey, WithTimeout(cfg.ProviderTimeout()))
}

// Refresh starts a scan of every Jellyfin library. Jellyfin answers before the
// scan finishes.
func (c *Client) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, nil)
	if err != nil {
		return fmt.Errorf("build jellyfin refresh request: %w", err)
	}
	req.Header.Set("X-Emby-Token", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("refresh jellyfin library: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("jellyfin rejected the api key (status %d)", resp.StatusCode)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return fmt.Errorf("jellyfin refresh returned %d", resp.StatusCode)
	}
	return nil
}
