package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/time/rate"
)

// Limiter tracks one token bucket per key. Entries idle for ten minutes are
// dropped by a background sweep.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     float64
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLimiter(rps float64) *Limiter {
	l := &Limiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rps,
	}
	go l.cleanup()
	return l
}

func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(l.rate), int(l.rate)*2),
		}
		l.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	l.mu.Unlock()

	return entry.limiter.Allow()
}

func (l *Limiter) Forget(key string) {
	l.mu.Lock()
	delete(l.limiters, key)
	l.mu.Unlock()
}

func (l *Limiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		cutoff := time.Now().Add(-10 * time.Minute)
		maps.DeleteFunc(l.limiters, func(_ string, entry *limiterEntry) bool {
			return entry.lastSeen.Before(cutoff)
		})
		l.mu.Unlock()
	}
}
