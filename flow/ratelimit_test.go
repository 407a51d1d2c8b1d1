package flow

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRateLimiter(t *testing.T) {
	rl := NewMemoryRateLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := rl.Allow(ctx, "k", 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow failed: %v", err)
		}
		if !allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	allowed, err := rl.Allow(ctx, "k", 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if allowed {
		t.Error("fourth attempt should be denied")
	}

	// Separate keys do not share a window.
	allowed, _ = rl.Allow(ctx, "other", 3, time.Minute)
	if !allowed {
		t.Error("different key should be allowed")
	}

	if err := rl.Reset(ctx, "k"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	allowed, _ = rl.Allow(ctx, "k", 3, time.Minute)
	if !allowed {
		t.Error("reset key should be allowed again")
	}
}

func TestMemoryRateLimiterDropsAgedOutKeys(t *testing.T) {
	rl := NewMemoryRateLimiter()
	ctx := context.Background()

	rl.Allow(ctx, "stale@example.com", 5, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	rl.Allow(ctx, "fresh@example.com", 5, time.Millisecond)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.attempts["stale@example.com"]; ok {
		t.Error("aged-out key should have been dropped")
	}
	if _, ok := rl.attempts["fresh@example.com"]; !ok {
		t.Error("active key should remain")
	}
	if len(rl.attempts) != 1 {
		t.Errorf("expected 1 tracked key, got %d", len(rl.attempts))
	}
}

func TestMemoryRateLimiterWindowSlides(t *testing.T) {
	rl := NewMemoryRateLimiter()
	ctx := context.Background()

	rl.Allow(ctx, "k", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	allowed, _ := rl.Allow(ctx, "k", 1, time.Millisecond)
	if !allowed {
		t.Error("attempt after window elapsed should be allowed")
	}
}
