package stats

import (
	"testing"
	"time"
)

func TestRecordRequestBuckets(t *testing.T) {
	s := &Stats{StartTime: time.Now()}

	// Paths as the logging middleware sees them: stream requests carry
	// the track ID.
	s.RecordRequest("/api/search")
	s.RecordRequest("/api/lyrics")
	s.RecordRequest("/api/stream/abc123")
	s.RecordRequest("/api/stream/xyz789")
	s.RecordRequest("/health")

	if s.TotalRequests.Load() != 5 {
		t.Errorf("Expected 5 total requests, got %d", s.TotalRequests.Load())
	}
	if s.SearchRequests.Load() != 1 {
		t.Errorf("Expected 1 search request, got %d", s.SearchRequests.Load())
	}
	if s.LyricsRequests.Load() != 1 {
		t.Errorf("Expected 1 lyrics request, got %d", s.LyricsRequests.Load())
	}
	if s.StreamRequests.Load() != 2 {
		t.Errorf("Expected 2 stream requests, got %d (other=%d)",
			s.StreamRequests.Load(), s.OtherRequests.Load())
	}
	if s.OtherRequests.Load() != 1 {
		t.Errorf("Expected 1 other request, got %d", s.OtherRequests.Load())
	}
}

func TestRecordSearchOutcome(t *testing.T) {
	s := &Stats{StartTime: time.Now()}

	s.RecordSearchOutcome("results", 0)
	s.RecordSearchOutcome("results", 2)
	s.RecordSearchOutcome("no_results", 0)
	s.RecordSearchOutcome("failed", 3)
	s.RecordSearchOutcome("rejected", 0)

	if s.SearchResults.Load() != 2 {
		t.Errorf("Expected 2 results outcomes, got %d", s.SearchResults.Load())
	}
	if s.SearchNoResults.Load() != 1 || s.SearchFailed.Load() != 1 || s.SearchRejected.Load() != 1 {
		t.Errorf("Unexpected outcome counts: no_results=%d failed=%d rejected=%d",
			s.SearchNoResults.Load(), s.SearchFailed.Load(), s.SearchRejected.Load())
	}
	if s.RetryRounds.Load() != 5 {
		t.Errorf("Expected 5 total retry rounds, got %d", s.RetryRounds.Load())
	}
}

func TestCacheHitRate(t *testing.T) {
	s := &Stats{StartTime: time.Now()}

	if rate := s.CacheHitRate(); rate != 0 {
		t.Errorf("Expected 0%% hit rate with no traffic, got %v", rate)
	}

	s.RecordCacheHit()
	s.RecordCacheHit()
	s.RecordCacheHit()
	s.RecordCacheMiss()

	if rate := s.CacheHitRate(); rate != 75 {
		t.Errorf("Expected 75%% hit rate, got %v", rate)
	}
}

func TestRecordStatusCode(t *testing.T) {
	s := &Stats{StartTime: time.Now()}

	s.RecordStatusCode(200)
	s.RecordStatusCode(204)
	s.RecordStatusCode(404)
	s.RecordStatusCode(502)

	if s.Status2xx.Load() != 2 || s.Status4xx.Load() != 1 || s.Status5xx.Load() != 1 {
		t.Errorf("Unexpected status counts: 2xx=%d 4xx=%d 5xx=%d",
			s.Status2xx.Load(), s.Status4xx.Load(), s.Status5xx.Load())
	}
}

func TestResponseTimes(t *testing.T) {
	s := &Stats{StartTime: time.Now()}

	s.RecordResponseTime(10 * time.Millisecond)
	s.RecordResponseTime(30 * time.Millisecond)

	if avg := s.AvgResponseTime(); avg != 20*time.Millisecond {
		t.Errorf("Expected 20ms average, got %v", avg)
	}
	if max := s.MaxResponseTime(); max != 30*time.Millisecond {
		t.Errorf("Expected 30ms max, got %v", max)
	}
}

func TestSnapshotShape(t *testing.T) {
	s := &Stats{StartTime: time.Now()}
	s.RecordRequest("/api/search")
	s.RecordSearchOutcome("results", 1)

	snapshot := s.Snapshot()

	for _, section := range []string{"server", "requests", "search", "cache", "rate_limiting", "responses", "response_times"} {
		if _, ok := snapshot[section]; !ok {
			t.Errorf("Expected snapshot section %q", section)
		}
	}

	searchSection := snapshot["search"].(map[string]interface{})
	if searchSection["retry_rounds"] != int64(1) {
		t.Errorf("Expected 1 retry round in snapshot, got %v", searchSection["retry_rounds"])
	}
}
