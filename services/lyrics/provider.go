// Package lyrics fetches raw lyric text for a track from an ordered
// chain of sources. Synced (time-tagged) sources come first; the first
// source that answers wins. Parsing is the lyricsync package's job.
package lyrics

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"player-api-go/logcolors"
)

// ErrNotFound means a provider answered but has no lyrics for the track.
var ErrNotFound = errors.New("lyrics not available for this track")

// Provider is a single lyrics source.
type Provider interface {
	// Name returns the provider's identifier (e.g. "lrclib", "plaintext")
	Name() string

	// Fetch returns the raw lyric text for the track. The text may be
	// LRC time-tagged or plain; callers parse it either way.
	Fetch(ctx context.Context, title, artist string) (string, error)
}

// Chain tries providers in order and returns the first hit together
// with the name of the provider that produced it.
type Chain struct {
	providers []Provider
}

// NewChain builds a chain over the given providers, tried in order.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Fetch walks the chain. ErrNotFound is returned only when every
// provider either missed or failed.
func (c *Chain) Fetch(ctx context.Context, title, artist string) (raw, source string, err error) {
	for _, p := range c.providers {
		raw, err = p.Fetch(ctx, title, artist)
		if err == nil && raw != "" {
			log.Infof("%s %q by %q served by %s", logcolors.LogLyrics, title, artist, p.Name())
			return raw, p.Name(), nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			log.Warnf("%s Provider %s failed for %q: %v", logcolors.LogFallback, p.Name(), title, err)
		}
	}
	return "", "", ErrNotFound
}
