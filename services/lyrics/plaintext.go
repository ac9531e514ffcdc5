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

const plainTimeout = 5 * time.Second

// PlainTextProvider is the legacy fallback source: a lyrics.ovh style
// endpoint (GET /v1/{artist}/{title}) returning untagged text.
type PlainTextProvider struct {
	baseURL    string
	httpClient *http.Client
}

type plainResponse struct {
	Lyrics string `json:"lyrics"`
	Error  string `json:"error"`
}

// NewPlainTextProvider creates a provider for the given base URL.
func NewPlainTextProvider(baseURL string) *PlainTextProvider {
	return &PlainTextProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: plainTimeout},
	}
}

func (p *PlainTextProvider) Name() string { return "plaintext" }

func (p *PlainTextProvider) Fetch(ctx context.Context, title, artist string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/%s/%s", p.baseURL, url.PathEscape(artist), url.PathEscape(title))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

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

	var pr plainResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if pr.Lyrics == "" {
		return "", ErrNotFound
	}
	return pr.Lyrics, nil
}
