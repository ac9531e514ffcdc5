// Package session ties one search resolver and one lyric tracker into a
// player session. It exists so callers own explicit instances instead
// of reaching for globals: the UI constructs a Session, subscribes to
// its notifications and feeds it playback time samples.
package session

import (
	"context"

	"player-api-go/lyricsync"
	"player-api-go/search"
)

// Session is the top-level object for one player's search and lyric
// state. The lyric side must be driven from a single timeline (the
// playback clock); the search side is safe to call from anywhere.
type Session struct {
	resolver *search.Resolver
	tracker  *lyricsync.Tracker

	lineListeners    []func(index int)
	outcomeListeners []func(search.Outcome)
}

// New creates a session around the given resolver with no lyrics loaded.
func New(resolver *search.Resolver) *Session {
	return &Session{
		resolver: resolver,
		tracker:  lyricsync.NewTracker(lyricsync.Set{}),
	}
}

// OnLineChange registers a listener for active-lyric-line changes.
func (s *Session) OnLineChange(fn func(index int)) {
	s.lineListeners = append(s.lineListeners, fn)
	s.tracker.OnChange(fn)
}

// OnSearchOutcome registers a listener for terminal search outcomes.
func (s *Session) OnSearchOutcome(fn func(search.Outcome)) {
	s.outcomeListeners = append(s.outcomeListeners, fn)
}

// Search resolves the query and fans the outcome out to listeners.
// Listeners should consult Stale before rendering: an outcome for an
// abandoned query must not overwrite newer results.
func (s *Session) Search(ctx context.Context, query string, limit int) search.Outcome {
	outcome := s.resolver.Resolve(ctx, query, limit)
	for _, fn := range s.outcomeListeners {
		fn(outcome)
	}
	return outcome
}

// Stale reports whether the outcome belongs to a superseded search.
func (s *Session) Stale(o search.Outcome) bool {
	return o.Kind != search.KindRejected && !s.resolver.Latest(o.Token)
}

// LoadLyrics parses a raw lyric blob and replaces the tracked set. The
// previous set and active line are discarded; the offset survives.
func (s *Session) LoadLyrics(raw string) lyricsync.Set {
	set := lyricsync.Parse(raw)
	s.tracker.Load(set)
	return set
}

// ClearLyrics drops the current lyric set, e.g. when the panel closes.
func (s *Session) ClearLyrics() {
	s.tracker.Load(lyricsync.Set{})
}

// Tick feeds one playback time sample to the lyric tracker. Line-change
// listeners fire before Tick returns.
func (s *Session) Tick(currentTimeSeconds float64) (index int, changed bool) {
	return s.tracker.Update(currentTimeSeconds)
}

// AdjustOffset shifts the lyric offset and returns the new cumulative
// value in seconds.
func (s *Session) AdjustOffset(deltaSeconds float64) float64 {
	return s.tracker.Offset(deltaSeconds)
}

// ResetOffset sets the lyric offset back to zero.
func (s *Session) ResetOffset() {
	s.tracker.ResetOffset()
}
