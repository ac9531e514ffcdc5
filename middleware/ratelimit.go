package middleware

import (
	"math"
	"sync"

	"golang.org/x/time/rate"
)

// IPRateLimiter manages a token-bucket limiter per client IP.
type IPRateLimiter struct {
	ips   map[string]*rate.Limiter
	mu    *sync.RWMutex
	rate  rate.Limit
	burst int
}

// NewIPRateLimiter creates a per-IP rate limiter.
func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:   make(map[string]*rate.Limiter),
		mu:    &sync.RWMutex{},
		rate:  r,
		burst: burst,
	}
}

// Burst returns the configured burst limit.
func (i *IPRateLimiter) Burst() int {
	return i.burst
}

// Tokens returns the whole tokens currently available for an IP.
func (i *IPRateLimiter) Tokens(ip string) int {
	return int(math.Floor(i.GetLimiter(ip).Tokens()))
}

func (i *IPRateLimiter) AddIP(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter := rate.NewLimiter(i.rate, i.burst)
	i.ips[ip] = limiter
	return limiter
}

// GetLimiter returns the limiter for ip, creating one on first use.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	limiter, exists := i.ips[ip]
	i.mu.RUnlock()

	if !exists {
		return i.AddIP(ip)
	}
	return limiter
}
