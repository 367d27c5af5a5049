// Package ghibli wraps the public Studio Ghibli film catalog API. The client
// is the concrete implementation of the catalog source consumed by the
// import service; tests substitute a stub.
package ghibli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://ghibliapi.vercel.app"
	defaultHTTPTimeout = 15 * time.Second
)

// Config describes the catalog client configuration.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client wraps the Ghibli films REST API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("ghibli: parse base url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{baseURL: baseURL, http: client}, nil
}

// Film is a catalog record as served by the films endpoint. ReleaseDate is
// kept as free text; the source encodes it inconsistently (usually a bare
// year). RTScore is parsed from the API's string form when it is numeric.
type Film struct {
	ID          string
	Title       string
	Description string
	ReleaseDate string
	RTScore     *int
}

// filmPayload mirrors the wire format of the films endpoint.
type filmPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ReleaseDate string `json:"release_date"`
	RTScore     string `json:"rt_score"`
}

// Films fetches the complete film catalog.
func (c *Client) Films(ctx context.Context) ([]Film, error) {
	u := c.baseURL.JoinPath("films")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("ghibli: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ghibli: fetch films: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("ghibli: fetch films: unexpected status %d", resp.StatusCode)
	}

	var payload []filmPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("ghibli: decode films: %w", err)
	}

	out := make([]Film, 0, len(payload))
	for _, p := range payload {
		f := Film{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			ReleaseDate: p.ReleaseDate,
		}
		if n, err := strconv.Atoi(strings.TrimSpace(p.RTScore)); err == nil {
			f.RTScore = &n
		}
		out = append(out, f)
	}
	return out, nil
}
