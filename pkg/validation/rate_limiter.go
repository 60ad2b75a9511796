package validation

import (
	"sync"
	"time"
)

// RateLimiter caps how many commands each client may issue per window.
// Buckets refill continuously at maxRequests per window, so a client that
// drains its allowance earns credit back gradually instead of all at once
// on a window boundary.
type RateLimiter struct {
	rate  float64 // tokens per second
	burst float64
	prune time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	done    chan struct{}
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter allows each client maxRequests commands per window.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		rate:    float64(maxRequests) / window.Seconds(),
		burst:   float64(maxRequests),
		prune:   2 * window,
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
	go rl.pruneLoop(window)
	return rl
}

// Allow reports whether clientID may issue a command now, consuming one
// token if so.
func (rl *RateLimiter) Allow(clientID string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[clientID]
	if !ok {
		b = &bucket{tokens: rl.burst, lastSeen: now}
		rl.buckets[clientID] = b
	} else {
		b.tokens += now.Sub(b.lastSeen).Seconds() * rl.rate
		if b.tokens > rl.burst {
			b.tokens = rl.burst
		}
		b.lastSeen = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// pruneLoop drops buckets for clients idle longer than two windows so the
// map does not grow with every address that ever connected.
func (rl *RateLimiter) pruneLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.prune)
			rl.mu.Lock()
			for id, b := range rl.buckets {
				if b.lastSeen.Before(cutoff) {
					delete(rl.buckets, id)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the background pruning goroutine.
func (rl *RateLimiter) Close() {
	close(rl.done)
}
