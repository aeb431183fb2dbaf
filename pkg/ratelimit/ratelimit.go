// Package ratelimit provides a per-client request limiter for the veiling
// API front-ends. Limits are keyed by client identifier so one noisy
// consumer cannot starve the others of sensor reads.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is an in-memory fixed-window token bucket. Each key gets a fresh
// allowance of capacity requests every window.
type Limiter struct {
	capacity int
	window   time.Duration
	mu       sync.Mutex
	buckets  map[string]*bucket
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

// New creates a limiter allowing capacity requests per window per key.
func New(capacity int, window time.Duration) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		capacity: capacity,
		window:   window,
		buckets:  make(map[string]*bucket),
	}
}

// Allow reports whether a request under key may proceed, along with the
// remaining allowance and the time the window resets.
func (l *Limiter) Allow(key string) (bool, int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok || now.Sub(b.lastReset) >= l.window {
		if len(l.buckets) > 4*l.capacity {
			l.sweep(now)
		}
		l.buckets[key] = &bucket{tokens: l.capacity - 1, lastReset: now}
		return true, l.capacity - 1, now.Add(l.window)
	}

	if b.tokens > 0 {
		b.tokens--
		return true, b.tokens, b.lastReset.Add(l.window)
	}
	return false, 0, b.lastReset.Add(l.window)
}

// Remaining returns the allowance left for key in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || time.Since(b.lastReset) >= l.window {
		return l.capacity
	}
	return b.tokens
}

// Reset clears the bucket for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// sweep drops buckets idle for two windows. Caller holds the lock.
func (l *Limiter) sweep(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.lastReset) >= 2*l.window {
			delete(l.buckets, k)
		}
	}
}
