package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const lrclibTimeout = 10 * time.Second

// LRCLibProvider fetches time-tagged lyrics from an lrclib-compatible
// endpoint (GET /api/get?track_name=&artist_name=).
type LRCLibProvider struct {
	baseURL    string
	httpClient *http.Client
}

type lrclibResponse struct {
	TrackName    string `json:"trackName"`
	ArtistName   string `json:"artistName"`
	SyncedLyrics string `json:"syncedLyrics"`
	PlainLyrics  string `json:"plainLyrics"`
	Instrumental bool   `json:"instrumental"`
}

// NewLRCLibProvider creates a provider for the given base URL.
func NewLRCLibProvider(baseURL string) *LRCLibProvider {
	return &LRCLibProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: lrclibTimeout},
	}
}

func (p *LRCLibProvider) Name() string { return "lrclib" }

// Fetch prefers synced lyrics and falls back to the record's plain
// text. Instrumental tracks and 404s map to ErrNotFound.
func (p *LRCLibProvider) Fetch(ctx context.Context, title, artist string) (string, error) {
	params := url.Values{}
	params.Set("track_name", title)
	params.Set("artist_name", artist)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/get?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "player-api-go/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var lr lrclibResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if lr.Instrumental {
		return "", ErrNotFound
	}
	if lr.SyncedLyrics != "" {
		return lr.SyncedLyrics, nil
	}
	if lr.PlainLyrics != "" {
		return lr.PlainLyrics, nil
	}
	return "", ErrNotFound
}
