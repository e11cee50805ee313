// Package ratelimit implements a sliding-window request limiter keyed
// by an arbitrary string (typically a client address).
package ratelimit

import (
	"sync"
	"time"
)

type Limiter struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	window  time.Duration
	maxHits int
}

func NewLimiter(window time.Duration, maxHits int) *Limiter {
	return &Limiter{
		hits:    make(map[string][]time.Time),
		window:  window,
		maxHits: maxHits,
	}
}

// Allow records a hit for key and reports whether it fits inside the
// window. A rejected hit is not recorded.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(key, time.Now())

	if len(l.hits[key]) >= l.maxHits {
		return false
	}

	l.hits[key] = append(l.hits[key], time.Now())
	return true
}

// Remaining returns how many hits key has left in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(key, time.Now())

	left := l.maxHits - len(l.hits[key])
	if left < 0 {
		return 0
	}
	return left
}

func (l *Limiter) prune(key string, now time.Time) {
	windowStart := now.Add(-l.window)

	recent, exists := l.hits[key]
	if !exists {
		return
	}

	valid := recent[:0]
	for _, hit := range recent {
		if hit.After(windowStart) {
			valid = append(valid, hit)
		}
	}

	if len(valid) == 0 {
		delete(l.hits, key)
		return
	}
	l.hits[key] = valid
}
