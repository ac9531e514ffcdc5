// Package search resolves free-text queries against a song search
// backend, reformulating the query and retrying with exponential
// backoff when the literal text yields nothing usable.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"player-api-go/logcolors"
)

// Song is a single search result. Fields are passed through from the
// backend untouched.
type Song struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Channel         string `json:"channel"`
	Duration        string `json:"duration"`
	DurationSeconds int    `json:"duration_seconds"`
	Thumbnail       string `json:"thumbnail"`
	Views           string `json:"views"`
	URL             string `json:"url"`
	Source          string `json:"source"`
}

// Client is the search backend the resolver drives.
type Client interface {
	Search(ctx context.Context, query string, limit int) ([]Song, error)
}

// Kind classifies a terminal resolve outcome.
type Kind int

const (
	// KindResults: the backend returned a non-empty result list.
	KindResults Kind = iota
	// KindNoResults: a well-formed empty response. Not an error and not
	// retried; the outcome carries a suggested fallback query instead.
	KindNoResults
	// KindFailed: retries exhausted; Err holds the last cause.
	KindFailed
	// KindRejected: local validation or duplicate suppression; no
	// network call was made.
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindResults:
		return "results"
	case KindNoResults:
		return "no_results"
	case KindFailed:
		return "failed"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// TrendingQuery is the fallback query suggested to callers when a
// search legitimately matches nothing.
const TrendingQuery = "trending music"

var (
	// ErrEmptyQuery rejects blank queries before any network call.
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrInFlight rejects a resubmission of a query that still has
	// retries pending.
	ErrInFlight = errors.New("identical search already in flight")
)

// ExhaustedError is the terminal failure after the retry bound is hit.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("search failed after %d retry rounds: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Outcome is the value returned by Resolve. All terminal states are
// reported here rather than raised, so callers can render them directly.
type Outcome struct {
	Kind       Kind
	Query      string // the query as submitted (trimmed)
	QueryUsed  string // the variant that actually produced results
	Songs      []Song
	Suggestion string // suggested next query for KindNoResults
	Attempts   int    // retry rounds consumed
	Token      uint64 // request identity; see Resolver.Latest
	Err        error
}

// Options tune a Resolver. Zero values fall back to the defaults below.
type Options struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// Sleep is the backoff wait. Injectable for tests; defaults to
	// time.Sleep. The wait always elapses fully, cancellation of a
	// pending backoff is deliberately unsupported.
	Sleep func(time.Duration)
}

// Resolver turns queries into Outcomes. Safe for concurrent use;
// identical concurrent queries are collapsed to a single attempt.
type Resolver struct {
	client     Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	sleep      func(time.Duration)

	mu       sync.Mutex
	inflight map[string]struct{}

	tokens atomic.Uint64
	latest atomic.Uint64
}

// New creates a Resolver over the given client.
func New(client Client, opts Options) *Resolver {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 5 * time.Second
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}

	return &Resolver{
		client:     client,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		maxDelay:   opts.MaxDelay,
		sleep:      opts.Sleep,
		inflight:   make(map[string]struct{}),
	}
}

// Latest reports whether token identifies the most recently issued
// search. Callers displaying results should drop outcomes for which
// this returns false: a slow earlier request must not overwrite the
// results of a newer one.
func (r *Resolver) Latest(token uint64) bool {
	return token == r.latest.Load()
}

// Resolve runs one logical search: the literal query first, then up to
// MaxRetries rounds over the alternative-query list with exponential
// backoff between rounds.
func (r *Resolver) Resolve(ctx context.Context, query string, limit int) Outcome {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return Outcome{Kind: KindRejected, Err: ErrEmptyQuery}
	}

	r.mu.Lock()
	if _, dup := r.inflight[trimmed]; dup {
		r.mu.Unlock()
		log.Debugf("%s Suppressed duplicate query: %q", logcolors.LogSearch, trimmed)
		return Outcome{Kind: KindRejected, Query: trimmed, Err: ErrInFlight}
	}
	r.inflight[trimmed] = struct{}{}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.inflight, trimmed)
		r.mu.Unlock()
	}()

	token := r.tokens.Add(1)
	r.latest.Store(token)

	songs, err := r.client.Search(ctx, trimmed, limit)
	if err == nil {
		if len(songs) > 0 {
			log.Infof("%s %q returned %d results", logcolors.LogSearch, trimmed, len(songs))
			return Outcome{Kind: KindResults, Query: trimmed, QueryUsed: trimmed, Songs: songs, Token: token}
		}
		log.Infof("%s %q matched nothing, suggesting %q", logcolors.LogSearch, trimmed, TrendingQuery)
		return Outcome{Kind: KindNoResults, Query: trimmed, Suggestion: TrendingQuery, Token: token}
	}

	lastErr := err
	alternatives := AlternativeQueries(trimmed)

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		delay := r.backoff(attempt)
		log.Warnf("%s %q failed (%v), round %d/%d in %v",
			logcolors.LogRetry, trimmed, lastErr, attempt, r.maxRetries, delay)
		r.sleep(delay)

		for _, alt := range alternatives {
			songs, err := r.client.Search(ctx, alt, limit)
			if err != nil {
				lastErr = err
				continue
			}
			if len(songs) > 0 {
				log.Infof("%s Recovered with %q after %d round(s): %d results",
					logcolors.LogRetry, alt, attempt, len(songs))
				return Outcome{Kind: KindResults, Query: trimmed, QueryUsed: alt, Songs: songs, Attempts: attempt, Token: token}
			}
		}
	}

	log.Errorf("%s %q exhausted %d retry rounds: %v", logcolors.LogRetry, trimmed, r.maxRetries, lastErr)
	return Outcome{
		Kind:     KindFailed,
		Query:    trimmed,
		Attempts: r.maxRetries,
		Token:    token,
		Err:      &ExhaustedError{Attempts: r.maxRetries, Last: lastErr},
	}
}

// backoff returns min(base * 2^(attempt-1), max).
func (r *Resolver) backoff(attempt int) time.Duration {
	delay := r.baseDelay << uint(attempt-1)
	if delay > r.maxDelay || delay <= 0 {
		return r.maxDelay
	}
	return delay
}
