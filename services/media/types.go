package media

import "player-api-go/search"

// SearchResponse is the upstream search envelope.
type SearchResponse struct {
	Success bool          `json:"success"`
	Query   string        `json:"query"`
	Results []search.Song `json:"results"`
	Count   int           `json:"count"`
}

// StreamResponse is the upstream stream-URL envelope.
type StreamResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Quality string `json:"quality"`
	Error   string `json:"error,omitempty"`
}

// TrackInfo is the upstream per-track metadata envelope.
type TrackInfo struct {
	Success    bool   `json:"success"`
	ID         string `json:"id"`
	Title      string `json:"title"`
	Duration   int    `json:"duration"`
	Thumbnail  string `json:"thumbnail"`
	Channel    string `json:"channel"`
	Views      int64  `json:"views"`
	UploadDate string `json:"upload_date"`
	Error      string `json:"error,omitempty"`
}
