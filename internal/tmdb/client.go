// Package tmdb wraps the TMDb movie search API. Only the search endpoint is
// used: the poster sync job asks for candidates by title and year and reads
// the first result's poster path. The client is the concrete implementation
// of the poster search consumed by the sync service; tests substitute a stub.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.themoviedb.org/3"
	defaultImageBase   = "https://image.tmdb.org/t/p/w500"
	defaultHTTPTimeout = 15 * time.Second
)

// Config describes the TMDb client configuration.
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client wraps the TMDb search REST API.
type Client struct {
	apiKey  string
	baseURL *url.URL
	http    *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("tmdb: api key is required")
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("tmdb: parse base url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{apiKey: apiKey, baseURL: baseURL, http: client}, nil
}

// Result is a single search candidate. PosterPath may be empty when TMDb has
// no artwork for the match.
type Result struct {
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
}

// searchPayload mirrors the wire format of the search/movie endpoint.
type searchPayload struct {
	Results []Result `json:"results"`
}

// Search queries the movie search endpoint with a title query and an optional
// release year and returns the candidates in TMDb's ranking order. An empty
// slice is a successful "no match" answer, not an error.
func (c *Client) Search(ctx context.Context, query, year string) ([]Result, error) {
	u := c.baseURL.JoinPath("search", "movie")
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("query", query)
	if strings.TrimSpace(year) != "" {
		q.Set("year", year)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("tmdb: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb: search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("tmdb: search: unexpected status %d", resp.StatusCode)
	}

	var payload searchPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("tmdb: decode search response: %w", err)
	}
	return payload.Results, nil
}

// PosterURL joins an image base URL with a stored poster path. It returns ""
// for an empty path so callers can pass the field through unconditionally.
func PosterURL(imageBase, posterPath string) string {
	if posterPath == "" {
		return ""
	}
	if imageBase == "" {
		imageBase = defaultImageBase
	}
	return strings.TrimRight(imageBase, "/") + "/" + strings.TrimLeft(posterPath, "/")
}
