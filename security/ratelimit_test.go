package security

import (
	"fmt"
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3, nil)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("client-1") {
			t.Fatalf("request %d denied within burst", i)
		}
	}
	if rl.Allow("client-1") {
		t.Error("request beyond burst allowed")
	}
}

func TestRateLimiterPerIdentifier(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	defer rl.Stop()

	if !rl.Allow("client-a") {
		t.Error("first request for client-a denied")
	}
	if rl.Allow("client-a") {
		t.Error("second request for client-a allowed")
	}
	// A different identifier has its own bucket.
	if !rl.Allow("client-b") {
		t.Error("first request for client-b denied")
	}
}

func TestRateLimiterLRUEviction(t *testing.T) {
	rl := NewRateLimiterWithConfig(1, 1, 2, nil)
	defer rl.Stop()

	rl.Allow("a")
	rl.Allow("b")
	rl.Allow("c") // evicts a

	// a's bucket was evicted, so it starts fresh and is allowed again.
	if !rl.Allow("a") {
		t.Error("evicted identifier should get a fresh bucket")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	defer rl.Stop()

	for i := 0; i < 10; i++ {
		rl.Allow(fmt.Sprintf("client-%d", i))
	}

	time.Sleep(time.Millisecond)
	rl.Cleanup(0) // everything is idle relative to a zero max idle time

	rl.mu.Lock()
	remaining := len(rl.limiters)
	rl.mu.Unlock()
	if remaining != 0 {
		t.Errorf("%d limiters remain after cleanup, want 0", remaining)
	}
}

func TestRateLimiterStopIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	rl.Stop()
	rl.Stop() // must not panic
}
