package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/carmarket/errors"
	"github.com/kbukum/carmarket/server/boundary"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of requests allowed per minute per key.
	RequestsPerMinute int
	// KeyFunc extracts the rate limit key from a request. Defaults to client IP.
	KeyFunc func(*gin.Context) string
	// Now is the clock; tests replace it.
	Now func() time.Time
}

// RateLimit applies a per-key sliding window of one minute. Requests over
// the limit get a RATE_LIMITED envelope and a Retry-After header.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	rl := &rateLimiter{
		requests: make(map[string][]time.Time),
		limit:    cfg.RequestsPerMinute,
		now:      cfg.Now,
	}

	return func(c *gin.Context) {
		key := cfg.KeyFunc(c)
		if wait, ok := rl.allow(key); !ok {
			seconds := int(wait.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			c.Header(boundary.HeaderRetryAfter, strconv.Itoa(seconds))
			boundary.Abort(c, errors.New(errors.Errors.RateLimited, errors.WithMeta(errors.Meta{
				"key":   key,
				"limit": cfg.RequestsPerMinute,
			})))
			return
		}
		c.Next()
	}
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// UserBasedKey uses the authenticated subject, falling back to client IP.
func UserBasedKey(c *gin.Context) string {
	if claims, ok := ClaimsFrom(c); ok && claims.Subject != "" {
		return claims.Subject
	}
	return c.ClientIP()
}

type rateLimiter struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	limit     int
	now       func() time.Time
	nextSweep time.Time
}

// allow records a request for key. When the window is full it returns the
// time until the oldest request leaves it.
func (rl *rateLimiter) allow(key string) (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-time.Minute)
	rl.sweep(now, cutoff)

	valid := filterByTime(rl.requests[key], cutoff)
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return valid[0].Sub(cutoff), false
	}
	rl.requests[key] = append(valid, now)
	return 0, true
}

// sweep drops idle keys at most every five minutes. Callers hold mu.
func (rl *rateLimiter) sweep(now, cutoff time.Time) {
	if now.Before(rl.nextSweep) {
		return
	}
	rl.nextSweep = now.Add(5 * time.Minute)
	for key, times := range rl.requests {
		valid := filterByTime(times, cutoff)
		if len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func filterByTime(times []time.Time, cutoff time.Time) []time.Time {
	var result []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}
