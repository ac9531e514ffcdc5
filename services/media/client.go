// Package media is the HTTP client for the upstream media API: song
// search, stream URL resolution and track metadata. All calls go
// through a circuit breaker so a dead backend fails fast instead of
// eating retry rounds.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"player-api-go/circuitbreaker"
	"player-api-go/logcolors"
	"player-api-go/search"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "player-api-go/1.0"
)

// Client talks to the upstream media API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
}

// NewClient creates a media client for the given base URL.
func NewClient(baseURL string, breaker *circuitbreaker.CircuitBreaker) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		breaker:    breaker,
	}
}

// Breaker exposes the circuit breaker for health reporting.
func (c *Client) Breaker() *circuitbreaker.CircuitBreaker {
	return c.breaker
}

// Search queries the upstream search endpoint. A response with the
// success flag unset counts as a failure, a successful response with an
// empty list is returned as-is: the resolver distinguishes the two.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]search.Song, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	log.Debugf("%s Upstream search: %q", logcolors.LogHTTP, query)

	var sr SearchResponse
	if err := c.getJSON(ctx, "/api/search?"+params.Encode(), &sr); err != nil {
		return nil, err
	}

	if !sr.Success {
		return nil, fmt.Errorf("search API reported failure for %q", query)
	}

	return sr.Results, nil
}

// StreamURL resolves a playable URL for a track at the given quality.
func (c *Client) StreamURL(ctx context.Context, id, quality string) (string, error) {
	params := url.Values{}
	params.Set("quality", quality)

	var sr StreamResponse
	if err := c.getJSON(ctx, "/api/stream/"+url.PathEscape(id)+"?"+params.Encode(), &sr); err != nil {
		return "", err
	}

	if !sr.Success || sr.URL == "" {
		return "", fmt.Errorf("no stream URL for track %s: %s", id, sr.Error)
	}

	return sr.URL, nil
}

// Info fetches metadata for a single track.
func (c *Client) Info(ctx context.Context, id string) (*TrackInfo, error) {
	var info TrackInfo
	if err := c.getJSON(ctx, "/api/info/"+url.PathEscape(id), &info); err != nil {
		return nil, err
	}

	if !info.Success {
		return nil, fmt.Errorf("info API reported failure for track %s: %s", id, info.Error)
	}

	return &info, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	if c.breaker != nil && !c.breaker.Allow() {
		return circuitbreaker.ErrCircuitOpen
	}

	err := c.doGetJSON(ctx, path, out)
	if c.breaker != nil {
		if err != nil {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return err
}

func (c *Client) doGetJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
