package api

import (
	"sync"

	"golang.org/x/time/rate"
)

// rateLimiter keeps one token bucket per client key (user ID, or remote
// host before auth). Buckets are never evicted; the key space is bounded
// by the user base.
type rateLimiter struct {
	limiters sync.Map
	rps      float64
	burst    int
}

func newRateLimiter(rps float64, burst int) *rateLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &rateLimiter{rps: rps, burst: burst}
}

func (l *rateLimiter) Allow(key string) bool {
	if l.rps <= 0 {
		return true
	}
	return l.getLimiter(key).Allow()
}

func (l *rateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	lim := rate.NewLimiter(rate.Limit(l.rps), l.burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}
