// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds clears all entries if the cache exceeds maxSize.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

// maxLimiterEntries bounds per-IP limiter memory.
const maxLimiterEntries = 10000

// IPRateLimiter limits requests per client IP.
type IPRateLimiter struct {
	cache   *limiterCache[string]
	name    string
	message string
}

const defaultRateLimitMessage = "Too many requests. Please wait a moment and try again."

// NewIPRateLimiter creates a limiter allowing rps requests per second per IP
// with the given burst. name appears in log lines.
func NewIPRateLimiter(name string, rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		cache:   newLimiterCache[string](rps, burst),
		name:    name,
		message: defaultRateLimitMessage,
	}
}

// NewPerMinuteLimiter creates a limiter allowing perMinute requests per
// minute per IP, all of which may arrive in a burst.
func NewPerMinuteLimiter(name string, perMinute int) *IPRateLimiter {
	return NewIPRateLimiter(name, float64(perMinute)/60, perMinute)
}

// Allow reports whether a request from ip may proceed.
func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.cache.clearIfExceeds(maxLimiterEntries)
	return rl.cache.get(ip).Allow()
}

// Middleware returns middleware that answers 429 JSON when the caller's IP
// is over its limit.
func (rl *IPRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !rl.Allow(ip) {
				slog.Warn("rate limit exceeded", "limiter", rl.name, "ip", ip, "path", r.URL.Path)
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", rl.message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the request's client IP without port. chi's RealIP
// middleware has already applied X-Real-IP or X-Forwarded-For to RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
