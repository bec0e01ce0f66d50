package signal

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !rl.Allow("alice") {
			t.Fatalf("attempt %d should be allowed", i)
		}
	}
	if rl.Allow("alice") {
		t.Fatal("attempt over the limit should be blocked")
	}
}

func TestRateLimiterPerUser(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	if !rl.Allow("alice") {
		t.Fatal("alice first attempt should pass")
	}
	if !rl.Allow("bob") {
		t.Fatal("bob is limited independently of alice")
	}
	if rl.Allow("alice") {
		t.Fatal("alice second attempt should be blocked")
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(2, 40*time.Millisecond)
	rl.Allow("alice")
	rl.Allow("alice")
	if rl.Allow("alice") {
		t.Fatal("window full, attempt should be blocked")
	}
	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("alice") {
		t.Fatal("attempts should pass again after the window slides")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !rl.Allow("alice") {
			t.Fatal("limit 0 means unlimited")
		}
	}
}

func TestRateLimiterForget(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Allow("alice")
	rl.Forget("alice")
	if !rl.Allow("alice") {
		t.Fatal("forgotten user starts with a clean window")
	}
}
