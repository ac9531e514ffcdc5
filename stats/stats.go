package stats

import (
	"strings"
	"sync/atomic"
	"time"
)

// Stats holds all server statistics with atomic counters
type Stats struct {
	StartTime time.Time

	// Request counters
	TotalRequests  atomic.Int64
	SearchRequests atomic.Int64
	LyricsRequests atomic.Int64
	StreamRequests atomic.Int64
	OtherRequests  atomic.Int64

	// Search outcomes
	SearchResults   atomic.Int64
	SearchNoResults atomic.Int64
	SearchFailed    atomic.Int64
	SearchRejected  atomic.Int64
	RetryRounds     atomic.Int64

	// Cache performance
	CacheHits   atomic.Int64
	CacheMisses atomic.Int64

	// Rate limiting
	RateLimitExceeded atomic.Int64

	// Response status codes
	Status2xx atomic.Int64
	Status4xx atomic.Int64
	Status5xx atomic.Int64

	// Response time tracking (microseconds)
	totalResponseTime atomic.Int64
	responseCount     atomic.Int64
	maxResponseTime   atomic.Int64
}

// Global stats instance
var global = &Stats{
	StartTime: time.Now(),
}

// Get returns the global stats instance
func Get() *Stats {
	return global
}

// RecordRequest records a request to a specific endpoint
func (s *Stats) RecordRequest(endpoint string) {
	s.TotalRequests.Add(1)
	switch {
	case endpoint == "/api/search":
		s.SearchRequests.Add(1)
	case endpoint == "/api/lyrics":
		s.LyricsRequests.Add(1)
	// Stream requests carry the track ID in the path.
	case strings.HasPrefix(endpoint, "/api/stream/"):
		s.StreamRequests.Add(1)
	default:
		s.OtherRequests.Add(1)
	}
}

// RecordSearchOutcome records a terminal resolver outcome plus the
// retry rounds it consumed.
func (s *Stats) RecordSearchOutcome(kind string, retryRounds int) {
	switch kind {
	case "results":
		s.SearchResults.Add(1)
	case "no_results":
		s.SearchNoResults.Add(1)
	case "failed":
		s.SearchFailed.Add(1)
	case "rejected":
		s.SearchRejected.Add(1)
	}
	s.RetryRounds.Add(int64(retryRounds))
}

// RecordCacheHit records a cache hit
func (s *Stats) RecordCacheHit() {
	s.CacheHits.Add(1)
}

// RecordCacheMiss records a cache miss
func (s *Stats) RecordCacheMiss() {
	s.CacheMisses.Add(1)
}

// RecordRateLimitExceeded records a rejected request (429)
func (s *Stats) RecordRateLimitExceeded() {
	s.RateLimitExceeded.Add(1)
}

// RecordStatusCode records a response status code
func (s *Stats) RecordStatusCode(code int) {
	switch {
	case code >= 200 && code < 300:
		s.Status2xx.Add(1)
	case code >= 400 && code < 500:
		s.Status4xx.Add(1)
	case code >= 500:
		s.Status5xx.Add(1)
	}
}

// RecordResponseTime records a response time
func (s *Stats) RecordResponseTime(duration time.Duration) {
	us := duration.Microseconds()
	s.totalResponseTime.Add(us)
	s.responseCount.Add(1)

	for {
		current := s.maxResponseTime.Load()
		if us <= current || s.maxResponseTime.CompareAndSwap(current, us) {
			break
		}
	}
}

// Uptime returns the server uptime
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// CacheHitRate returns the cache hit rate as a percentage
func (s *Stats) CacheHitRate() float64 {
	hits := s.CacheHits.Load()
	misses := s.CacheMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// AvgResponseTime returns the average response time
func (s *Stats) AvgResponseTime() time.Duration {
	count := s.responseCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(s.totalResponseTime.Load()/count) * time.Microsecond
}

// MaxResponseTime returns the maximum response time
func (s *Stats) MaxResponseTime() time.Duration {
	return time.Duration(s.maxResponseTime.Load()) * time.Microsecond
}

// Snapshot returns a point-in-time snapshot of all stats
func (s *Stats) Snapshot() map[string]interface{} {
	uptime := s.Uptime()

	return map[string]interface{}{
		"server": map[string]interface{}{
			"start_time":     s.StartTime.Format(time.RFC3339),
			"uptime":         uptime.String(),
			"uptime_seconds": int64(uptime.Seconds()),
		},
		"requests": map[string]interface{}{
			"total":  s.TotalRequests.Load(),
			"search": s.SearchRequests.Load(),
			"lyrics": s.LyricsRequests.Load(),
			"stream": s.StreamRequests.Load(),
			"other":  s.OtherRequests.Load(),
		},
		"search": map[string]interface{}{
			"results":      s.SearchResults.Load(),
			"no_results":   s.SearchNoResults.Load(),
			"failed":       s.SearchFailed.Load(),
			"rejected":     s.SearchRejected.Load(),
			"retry_rounds": s.RetryRounds.Load(),
		},
		"cache": map[string]interface{}{
			"hits":     s.CacheHits.Load(),
			"misses":   s.CacheMisses.Load(),
			"hit_rate": s.CacheHitRate(),
		},
		"rate_limiting": map[string]interface{}{
			"exceeded": s.RateLimitExceeded.Load(),
		},
		"responses": map[string]interface{}{
			"2xx": s.Status2xx.Load(),
			"4xx": s.Status4xx.Load(),
			"5xx": s.Status5xx.Load(),
		},
		"response_times": map[string]interface{}{
			"avg": s.AvgResponseTime().String(),
			"max": s.MaxResponseTime().String(),
		},
	}
}
