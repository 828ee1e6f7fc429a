package spacetraveling

import (
	"sync"
	"time"
)

// RateLimiter allows at most max events per key within a sliding window.
// It guards admin logins and the CMS webhook, keyed by client IP.
type RateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	max    int
	window time.Duration
	stop   chan struct{}
	once   sync.Once
}

// NewRateLimiter creates a RateLimiter that allows max events per window.
// Call Stop to end its background cleanup.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	l := &RateLimiter{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
		stop:   make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *RateLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
		}
		cutoff := time.Now().Add(-l.window)
		l.mu.Lock()
		for key := range l.hits {
			if kept := l.prune(key, cutoff); len(kept) == 0 {
				delete(l.hits, key)
			}
		}
		l.mu.Unlock()
	}
}

// prune drops hits older than cutoff. Callers hold l.mu.
func (l *RateLimiter) prune(key string, cutoff time.Time) []time.Time {
	hits := l.hits[key]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.hits[key] = kept
	return kept
}

// Allow records an event for key and reports whether it was within the limit.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.prune(key, time.Now().Add(-l.window))) >= l.max {
		return false
	}
	l.hits[key] = append(l.hits[key], time.Now())
	return true
}

// Check reports whether key is under the limit without recording an event.
// Logins call Record only for failed attempts.
func (l *RateLimiter) Check(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(key, time.Now().Add(-l.window))) < l.max
}

// Record registers an event for key.
func (l *RateLimiter) Record(key string) {
	l.mu.Lock()
	l.hits[key] = append(l.hits[key], time.Now())
	l.mu.Unlock()
}

// Stop ends the background cleanup.
func (l *RateLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}
