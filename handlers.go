package main

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"player-api-go/cache"
	"player-api-go/logcolors"
	"player-api-go/lyricsync"
	"player-api-go/search"
	"player-api-go/stats"
)

func searchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := conf.Configuration.SearchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	outcome := resolver.Resolve(r.Context(), query, limit)
	stats.Get().RecordSearchOutcome(outcome.Kind.String(), outcome.Attempts)

	switch outcome.Kind {
	case search.KindRejected:
		status := http.StatusUnprocessableEntity
		if outcome.Err == search.ErrInFlight {
			status = http.StatusConflict
		}
		Respond(w, r).Error(status, map[string]interface{}{
			"success": false,
			"error":   outcome.Err.Error(),
		})

	case search.KindNoResults:
		Respond(w, r).JSON(map[string]interface{}{
			"success":    true,
			"query":      outcome.Query,
			"results":    []search.Song{},
			"count":      0,
			"suggestion": outcome.Suggestion,
		})

	case search.KindFailed:
		log.Errorf("%s Search for %q failed: %v", logcolors.LogSearch, outcome.Query, outcome.Err)
		Respond(w, r).Error(http.StatusBadGateway, map[string]interface{}{
			"success":  false,
			"query":    outcome.Query,
			"error":    outcome.Err.Error(),
			"attempts": outcome.Attempts,
		})

	default:
		Respond(w, r).JSON(map[string]interface{}{
			"success":    true,
			"query":      outcome.Query,
			"query_used": outcome.QueryUsed,
			"results":    outcome.Songs,
			"count":      len(outcome.Songs),
		})
	}
}

func lyricsHandler(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title") + r.URL.Query().Get("t")
	artist := r.URL.Query().Get("artist") + r.URL.Query().Get("a")

	if title == "" {
		Respond(w, r).Error(http.StatusUnprocessableEntity, map[string]interface{}{
			"error": "Song title not provided",
		})
		return
	}

	cacheKey := lyricsCacheKey(title, artist)
	if raw, source, ok := getCachedLyrics(cacheKey); ok {
		stats.Get().RecordCacheHit()
		log.Infof("%s Found cached lyrics for: %s", logcolors.LogCacheLyrics, title)
		Respond(w, r).SetCacheStatus("HIT").SetSource(source).JSON(lyricsResponseBody(lyricsync.Parse(raw), source))
		return
	}
	stats.Get().RecordCacheMiss()

	raw, source, err := lyricsChain.Fetch(r.Context(), title, artist)
	if err != nil {
		log.Warnf("%s No lyrics found for: %s - %s", logcolors.LogLyrics, title, artist)
		Respond(w, r).SetCacheStatus("MISS").Error(http.StatusNotFound, map[string]interface{}{
			"error": "Lyrics not available for this track",
		})
		return
	}

	if err := setCachedLyrics(cacheKey, raw, source); err != nil {
		log.Errorf("%s Failed to cache lyrics for %s: %v", logcolors.LogCacheLyrics, title, err)
	}

	Respond(w, r).SetCacheStatus("MISS").SetSource(source).JSON(lyricsResponseBody(lyricsync.Parse(raw), source))
}

func streamHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	quality := r.URL.Query().Get("quality")
	if quality == "" {
		quality = "high"
	}

	cacheKey := streamCacheKey(id, quality)
	if url, ok := getCachedStreamURL(cacheKey); ok {
		stats.Get().RecordCacheHit()
		log.Infof("%s Cached stream URL for: %s", logcolors.LogCacheStream, id)
		Respond(w, r).SetCacheStatus("HIT").JSON(map[string]interface{}{
			"success": true,
			"id":      id,
			"url":     url,
			"quality": quality,
		})
		return
	}
	stats.Get().RecordCacheMiss()

	url, err := mediaClient.StreamURL(r.Context(), id, quality)
	if err != nil {
		log.Errorf("%s Failed to resolve stream URL for %s: %v", logcolors.LogStream, id, err)
		Respond(w, r).SetCacheStatus("MISS").Error(http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if err := setCachedStreamURL(cacheKey, url); err != nil {
		log.Errorf("%s Failed to cache stream URL for %s: %v", logcolors.LogCacheStream, id, err)
	}

	Respond(w, r).SetCacheStatus("MISS").JSON(map[string]interface{}{
		"success": true,
		"id":      id,
		"url":     url,
		"quality": quality,
	})
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	info, err := mediaClient.Info(r.Context(), id)
	if err != nil {
		Respond(w, r).Error(http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	Respond(w, r).JSON(info)
}

// trendingHandler serves the Show Trending fallback: a plain search for
// the suggested trending query, no retry rounds. A failure still
// returns the suggestion so the caller can offer a manual retry.
func trendingHandler(w http.ResponseWriter, r *http.Request) {
	limit := conf.Configuration.SearchLimit

	songs, err := mediaClient.Search(r.Context(), search.TrendingQuery, limit)
	if err != nil {
		log.Warnf("%s Trending fetch failed: %v", logcolors.LogSearch, err)
		Respond(w, r).Error(http.StatusBadGateway, map[string]interface{}{
			"success":    false,
			"suggestion": search.TrendingQuery,
			"error":      err.Error(),
		})
		return
	}

	Respond(w, r).JSON(map[string]interface{}{
		"success":    true,
		"query":      search.TrendingQuery,
		"results":    songs,
		"count":      len(songs),
		"suggestion": search.TrendingQuery,
	})
}

func getHealthStatus(w http.ResponseWriter, r *http.Request) {
	cbState, cbFailures, cbUntilRetry := mediaClient.Breaker().Stats()

	health := map[string]interface{}{
		"status":          "ok",
		"circuit_breaker": cbState.String(),
	}

	if cbState.String() == "OPEN" {
		health["status"] = "degraded"
		health["circuit_breaker_retry_in"] = cbUntilRetry.String()
		health["circuit_breaker_failures"] = cbFailures
	}

	Respond(w, r).JSON(health)
}

func getStats(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != conf.Configuration.CacheAccessToken {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	s := stats.Get()
	snapshot := s.Snapshot()

	numKeys, sizeInKB := persistentCache.Stats()
	snapshot["cache_storage"] = map[string]interface{}{
		"keys":    numKeys,
		"size_kb": sizeInKB,
		"size_mb": float64(sizeInKB) / 1024,
	}

	cbState, failures, untilRetry := mediaClient.Breaker().Stats()
	snapshot["circuit_breaker"] = map[string]interface{}{
		"state":              cbState.String(),
		"failures":           failures,
		"cooldown_remaining": untilRetry.String(),
	}

	Respond(w, r).JSON(snapshot)
}

func getCacheDump(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != conf.Configuration.CacheAccessToken {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cacheDump := CacheDump{}
	persistentCache.Range(func(key string, entry cache.Entry) bool {
		cacheDump[key] = entry
		return true
	})

	numKeys, sizeInKB := persistentCache.Stats()
	s := stats.Get()

	Respond(w, r).JSON(CacheDumpResponse{
		NumberOfKeys: numKeys,
		SizeInKB:     sizeInKB,
		SizeInMB:     float64(sizeInKB) / 1024,
		Performance: CachePerformance{
			Hits:    s.CacheHits.Load(),
			Misses:  s.CacheMisses.Load(),
			HitRate: s.CacheHitRate(),
		},
		Cache: cacheDump,
	})
}

func clearCache(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != conf.Configuration.CacheAccessToken {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := persistentCache.Clear(); err != nil {
		log.Errorf("%s Failed to clear cache: %v", logcolors.LogCacheClear, err)
		Respond(w, r).Error(http.StatusInternalServerError, map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	log.Infof("%s Cache cleared", logcolors.LogCacheClear)
	Respond(w, r).JSON(map[string]interface{}{
		"message": "Cache cleared successfully",
	})
}

func helpHandler(w http.ResponseWriter, r *http.Request) {
	Respond(w, r).JSON(map[string]interface{}{
		"help": "Music player core API. Use /api/search?q=... to search, " +
			"/api/lyrics?title=...&artist=... for synced lyrics, " +
			"/api/stream/{id} for a playable URL, /api/trending for the fallback feed.",
	})
}
