package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"player-api-go/cache"
	"player-api-go/circuitbreaker"
	"player-api-go/middleware"
	"player-api-go/search"
	"player-api-go/services/lyrics"
	"player-api-go/services/media"
)

// setupTestEnvironment wires the package globals against a temporary
// cache and an httptest upstream, and returns a cleanup func.
func setupTestEnvironment(t *testing.T, upstream http.HandlerFunc) func() {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_cache.db")

	var err error
	persistentCache, err = cache.NewPersistentCache(dbPath, false)
	if err != nil {
		t.Fatalf("Failed to create test cache: %v", err)
	}

	server := httptest.NewServer(upstream)

	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:      "test",
		Threshold: 100,
		Cooldown:  time.Minute,
	})
	mediaClient = media.NewClient(server.URL, breaker)

	resolver = search.New(mediaClient, search.Options{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   time.Millisecond,
		Sleep:      func(time.Duration) {},
	})

	lyricsChain = lyrics.NewChain(
		lyrics.NewLRCLibProvider(server.URL),
		lyrics.NewPlainTextProvider(server.URL),
	)

	return func() {
		persistentCache.Close()
		server.Close()
	}
}

func newTestRouter() *mux.Router {
	router := mux.NewRouter()
	setupRoutes(router)
	return router
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestSearchHandlerSuccess(t *testing.T) {
	cleanup := setupTestEnvironment(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(media.SearchResponse{
			Success: true,
			Query:   r.URL.Query().Get("q"),
			Results: []search.Song{{ID: "abc", Title: "Test Song", Channel: "Test Channel"}},
			Count:   1,
		})
	})
	defer cleanup()

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/api/search?q=test", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("Expected success=true, got %v", body)
	}
	if body["count"] != float64(1) {
		t.Errorf("Expected count=1, got %v", body["count"])
	}
	if body["query_used"] != "test" {
		t.Errorf("Expected query_used=test, got %v", body["query_used"])
	}
}

func TestSearchHandlerEmptyQuery(t *testing.T) {
	cleanup := setupTestEnvironment(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("Empty query must not reach upstream")
	})
	defer cleanup()

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/api/search?q=%20%20", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Errorf("Expected success=false, got %v", body)
	}
}

func TestSearchHandlerNoResultsSuggestsTrending(t *testing.T) {
	cleanup := setupTestEnvironment(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(media.SearchResponse{Success: true, Results: []search.Song{}})
	})
	defer cleanup()

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/api/search?q=nothing", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["count"] != float64(0) {
		t.Errorf("Expected count=0, got %v", body["count"])
	}
	if body["suggestion"] != search.TrendingQuery {
		t.Errorf("Expected trending suggestion, got %v", body["suggestion"])
	}
}

func TestSearchHandlerUpstreamFailure(t *testing.T) {
	cleanup := setupTestEnvironment(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	defer cleanup()

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/api/search?q=doomed", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["attempts"] != float64(2) {
		t.Errorf("Expected attempts=2, got %v", body["attempts"])
	}
}

func TestLyricsHandlerMissThenHit(t *testing.T) {
	fetches := 0
	cleanup := setupTestEnvironment(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/get" {
			http.NotFound(w, r)
			return
		}
		fetches++
		json.NewEncoder(w).Encode(map[string]interface{}{
			"syncedLyrics": "[00:05.00]First line\n[00:10.00]Second line",
		})
	})
	defer cleanup()

	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/lyrics?title=Test+Song&artist=Test+Artist", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Cache-Status"); got != "MISS" {
		t.Errorf("Expected X-Cache-Status=MISS, got %q", got)
	}
	if got := rec.Header().Get("X-Source"); got != "lrclib" {
		t.Errorf("Expected X-Source=lrclib, got %q", got)
	}

	body := decodeBody(t, rec)
	if body["isSynced"] != true {
		t.Errorf("Expected synced lyrics, got %v", body)
	}
	if lines, ok := body["lines"].([]interface{}); !ok || len(lines) != 2 {
		t.Errorf("Expected 2 lines, got %v", body["lines"])
	}

	// Second request served from cache.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/lyrics?title=Test+Song&artist=Test+Artist", nil))

	if got := rec.Header().Get("X-Cache-Status"); got != "HIT" {
		t.Errorf("Expected X-Cache-Status=HIT, got %q", got)
	}
	if fetches != 1 {
		t.Errorf("Expected one upstream fetch, got %d", fetches)
	}
}

func TestLyricsHandlerMissingTitle(t *testing.T) {
	cleanup := setupTestEnvironment(t, func(w http.ResponseWriter, r *http.Request) {})
	defer cleanup()

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/api/lyrics?artist=Somebody", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", rec.Code)
	}
}

func TestLyricsHandlerNotFound(t *testing.T) {
	cleanup := setupTestEnvironment(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	defer cleanup()

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/api/lyrics?title=Unknown", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestStreamHandlerCaching(t *testing.T) {
	resolves := 0
	cleanup := setupTestEnvironment(t, func(w http.ResponseWriter, r *http.Request) {
		resolves++
		json.NewEncoder(w).Encode(media.StreamResponse{
			Success: true,
			URL:     "https://cdn.example.com/abc123",
			Quality: "high",
		})
	})
	defer cleanup()

	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/stream/abc123", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["url"] != "https://cdn.example.com/abc123" {
		t.Errorf("Unexpected body: %v", body)
	}
	if body["quality"] != "high" {
		t.Errorf("Expected default quality high, got %v", body["quality"])
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/stream/abc123", nil))

	if got := rec.Header().Get("X-Cache-Status"); got != "HIT" {
		t.Errorf("Expected X-Cache-Status=HIT, got %q", got)
	}
	if resolves != 1 {
		t.Errorf("Expected one upstream resolve, got %d", resolves)
	}
}

func TestStreamHandlerUpstreamFailure(t *testing.T) {
	cleanup := setupTestEnvironment(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(media.StreamResponse{Success: false, Error: "video unavailable"})
	})
	defer cleanup()

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/api/stream/gone", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", rec.Code)
	}
}

func TestTrendingHandler(t *testing.T) {
	cleanup := setupTestEnvironment(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != search.TrendingQuery {
			t.Errorf("Expected trending query, got %q", got)
		}
		json.NewEncoder(w).Encode(media.SearchResponse{
			Success: true,
			Results: []search.Song{{ID: "t1"}, {ID: "t2"}},
			Count:   2,
		})
	})
	defer cleanup()

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/api/trending", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["count"] != float64(2) {
		t.Errorf("Expected count=2, got %v", body["count"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	cleanup := setupTestEnvironment(t, func(w http.ResponseWriter, r *http.Request) {})
	defer cleanup()

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body["status"])
	}
	if body["circuit_breaker"] != "CLOSED" {
		t.Errorf("Expected CLOSED breaker, got %v", body["circuit_breaker"])
	}
}

func TestStatsEndpointUnauthorized(t *testing.T) {
	cleanup := setupTestEnvironment(t, func(w http.ResponseWriter, r *http.Request) {})
	defer cleanup()

	req := httptest.NewRequest("GET", "/stats", nil)
	req.Header.Set("Authorization", "wrong-token")
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestCacheClearEndpoint(t *testing.T) {
	cleanup := setupTestEnvironment(t, func(w http.ResponseWriter, r *http.Request) {})
	defer cleanup()

	persistentCache.Set("some:key", "value", 0)

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/cache/clear", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if _, ok := persistentCache.Get("some:key"); ok {
		t.Error("Expected cache emptied")
	}
}

func TestLimitMiddleware(t *testing.T) {
	cleanup := setupTestEnvironment(t, func(w http.ResponseWriter, r *http.Request) {})
	defer cleanup()

	limiter := middleware.NewIPRateLimiter(rate.Limit(1), 1)
	handler := limitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), limiter)

	req := httptest.NewRequest("GET", "/api/search?q=test", nil)
	req.RemoteAddr = "10.1.2.3:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected first request allowed, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 for second request, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Expected Retry-After=1, got %q", got)
	}
}

func TestLyricsCacheKeyNormalization(t *testing.T) {
	tests := []struct {
		title, artist string
		expected      string
	}{
		{"Test Song", "Test Artist", "lyrics:test song|test artist"},
		{"  Test   Song  ", "TEST ARTIST", "lyrics:test song|test artist"},
		{"Song", "", "lyrics:song|"},
	}

	for _, tt := range tests {
		if got := lyricsCacheKey(tt.title, tt.artist); got != tt.expected {
			t.Errorf("lyricsCacheKey(%q, %q) = %q, want %q", tt.title, tt.artist, got, tt.expected)
		}
	}
}

func TestStreamCacheKey(t *testing.T) {
	if got := streamCacheKey("abc123", "high"); got != "stream_url:abc123_high" {
		t.Errorf("Unexpected stream cache key %q", got)
	}
}
