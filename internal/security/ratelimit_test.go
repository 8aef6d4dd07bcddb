package security

import (
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestRateLimiter_AllowWithinLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(5, time.Minute)

	for i := range 5 {
		if err := rl.Allow("10.0.0.1"); err != nil {
			t.Fatalf("Allow(%d) returned error: %v", i, err)
		}
	}

	// 6th should be denied.
	if err := rl.Allow("10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Minute)

	if err := rl.Allow("a"); err != nil {
		t.Fatalf("Allow(a) error: %v", err)
	}
	if err := rl.Allow("b"); err != nil {
		t.Fatalf("Allow(b) error: %v", err)
	}
	if err := rl.Allow("a"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("second Allow(a) = %v, want ErrRateLimited", err)
	}
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	// Fill the bucket.
	_ = rl.Allow("k")
	_ = rl.Allow("k")

	if err := rl.Allow("k"); !errors.Is(err, ErrRateLimited) {
		t.Fatal("expected rate limit")
	}

	// Refused events are not recorded, so the window still ends 60s after
	// the first two.
	now = now.Add(61 * time.Second)

	if err := rl.Allow("k"); err != nil {
		t.Fatalf("expected allow after window, got %v", err)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0, time.Minute)
	for range 100 {
		if err := rl.Allow("k"); err != nil {
			t.Fatalf("disabled limiter refused: %v", err)
		}
	}

	var nilLimiter *RateLimiter
	if err := nilLimiter.Allow("k"); err != nil {
		t.Fatalf("nil limiter refused: %v", err)
	}
}

func TestRateLimiter_Reset(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Minute)
	_ = rl.Allow("k")
	rl.Reset("k")

	if err := rl.Allow("k"); err != nil {
		t.Fatalf("Allow after Reset error: %v", err)
	}
}

func TestRateLimiter_PrunesIdleKeys(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	for i := range pruneThreshold + 1 {
		_ = rl.Allow(strconv.Itoa(i))
	}

	now = now.Add(2 * time.Minute)
	_ = rl.Allow("fresh")

	if got := rl.Len(); got != 1 {
		t.Errorf("Len() = %d after prune, want 1", got)
	}
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(50, time.Minute)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("shared") == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("allowed = %d, want 50", allowed)
	}
}
