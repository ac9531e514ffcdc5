package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"player-api-go/logcolors"
	"player-api-go/middleware"
	"player-api-go/stats"
)

func limitMiddleware(next http.Handler, limiter *middleware.IPRateLimiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.GetLimiter(r.RemoteAddr).Allow() {
			stats.Get().RecordRateLimitExceeded()
			log.Warnf("%s IP %s exceeded rate limit", logcolors.LogRateLimit, r.RemoteAddr)
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.Burst()))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.Burst()))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", limiter.Tokens(r.RemoteAddr)))
		ctx := context.WithValue(r.Context(), rateLimitTypeKey, "normal")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sweepCache periodically drops expired entries from the persistent cache.
func sweepCache() {
	interval := time.Duration(conf.Configuration.CacheInvalidationIntervalInSeconds) * time.Second
	log.Infof("%s Starting cache sweep goroutine (every %v)", logcolors.LogCacheSweep, interval)
	for {
		time.Sleep(interval)
		persistentCache.Sweep()
	}
}
