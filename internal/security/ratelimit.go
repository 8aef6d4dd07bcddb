package security

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when a caller exceeds its allowance.
var ErrRateLimited = errors.New("security: rate limit exceeded")

// pruneThreshold is the number of tracked callers above which Allow sweeps
// callers with no events left in the window.
const pruneThreshold = 1024

// RateLimiter implements a sliding window limit per caller key.
// All methods are safe for concurrent use.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string][]time.Time
	now     func() time.Time
}

// NewRateLimiter allows limit events per window for each key. A
// non-positive limit disables limiting.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow records one event for key. It returns ErrRateLimited when the key
// already used its allowance in the current window; refused events are not
// recorded.
func (rl *RateLimiter) Allow(key string) error {
	if rl == nil || rl.limit <= 0 {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if len(rl.buckets) > pruneThreshold {
		rl.pruneLocked(now)
	}

	events := evict(rl.buckets[key], now.Add(-rl.window))
	if len(events) >= rl.limit {
		rl.buckets[key] = events
		return ErrRateLimited
	}
	rl.buckets[key] = append(events, now)
	return nil
}

// Reset forgets all events recorded for key.
func (rl *RateLimiter) Reset(key string) {
	if rl == nil {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, key)
}

// Len returns the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

func (rl *RateLimiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-rl.window)
	for k, events := range rl.buckets {
		if events = evict(events, cutoff); len(events) == 0 {
			delete(rl.buckets, k)
		} else {
			rl.buckets[k] = events
		}
	}
}

// evict drops events older than cutoff. Events are chronologically ordered.
func evict(events []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(events) && events[i].Before(cutoff) {
		i++
	}
	return events[i:]
}
