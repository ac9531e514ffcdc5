package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"player-api-go/lyricsync"
)

// cachedLyrics is the JSON blob stored per track: the raw source text
// plus which provider served it. Parsing is cheap enough to redo on hit.
type cachedLyrics struct {
	Raw    string `json:"raw"`
	Source string `json:"source"`
}

func lyricsCacheKey(title, artist string) string {
	norm := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
	}
	return fmt.Sprintf("lyrics:%s|%s", norm(title), norm(artist))
}

func streamCacheKey(id, quality string) string {
	return fmt.Sprintf("stream_url:%s_%s", id, quality)
}

func getCachedLyrics(key string) (raw, source string, ok bool) {
	value, ok := persistentCache.Get(key)
	if !ok {
		return "", "", false
	}
	var cl cachedLyrics
	if err := json.Unmarshal([]byte(value), &cl); err != nil {
		return "", "", false
	}
	return cl.Raw, cl.Source, true
}

func setCachedLyrics(key, raw, source string) error {
	value, err := json.Marshal(cachedLyrics{Raw: raw, Source: source})
	if err != nil {
		return err
	}
	ttl := time.Duration(conf.Configuration.LyricsCacheTTLInSeconds) * time.Second
	return persistentCache.Set(key, string(value), ttl)
}

func getCachedStreamURL(key string) (string, bool) {
	return persistentCache.Get(key)
}

func setCachedStreamURL(key, url string) error {
	ttl := time.Duration(conf.Configuration.StreamURLCacheTTLInSeconds) * time.Second
	return persistentCache.Set(key, url, ttl)
}

// lyricsResponseBody builds the /api/lyrics body from a parsed set.
func lyricsResponseBody(set lyricsync.Set, source string) map[string]interface{} {
	body := map[string]interface{}{
		"source":   source,
		"isSynced": set.Synced,
	}
	if set.Synced {
		body["lines"] = set.Lines
	} else {
		body["plain"] = set.Plain
	}
	return body
}
