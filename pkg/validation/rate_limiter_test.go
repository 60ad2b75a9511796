package validation

import (
	"testing"
	"time"
)

func TestRateLimiter_BurstThenDeny(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if !rl.Allow("client-a") {
			t.Errorf("Expected request %d within burst to be allowed", i+1)
		}
	}
	if rl.Allow("client-a") {
		t.Error("Expected request beyond burst to be denied")
	}
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)
	defer rl.Close()

	rl.Allow("client-a")
	rl.Allow("client-a")
	if rl.Allow("client-a") {
		t.Fatal("Expected bucket to be empty after burst")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("client-a") {
		t.Error("Expected token to refill after a full window")
	}
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Close()

	if !rl.Allow("client-a") {
		t.Error("Expected first client to be allowed")
	}
	if rl.Allow("client-a") {
		t.Error("Expected first client to be exhausted")
	}
	if !rl.Allow("client-b") {
		t.Error("Expected second client to have its own allowance")
	}
}
