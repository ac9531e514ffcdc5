package main

import "player-api-go/cache"

type contextKey string

const rateLimitTypeKey contextKey = "rateLimitType"

// CacheDump maps cache keys to their stored entries.
type CacheDump map[string]cache.Entry

// CacheDumpResponse is the authorized /cache response body.
type CacheDumpResponse struct {
	NumberOfKeys int
	SizeInKB     int
	SizeInMB     float64
	Performance  CachePerformance
	Cache        CacheDump
}

// CachePerformance summarizes hit/miss counters for the dump.
type CachePerformance struct {
	Hits    int64
	Misses  int64
	HitRate float64
}
