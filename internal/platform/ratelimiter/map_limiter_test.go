package ratelimiter

import (
	"testing"
	"time"
)

func TestMapLimiterEnforcesBurstPerKey(t *testing.T) {
	limiter := New(1, 2, time.Minute)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if !limiter.Allow("user-1", now) || !limiter.Allow("user-1", now) {
		t.Fatalf("expected burst of two to pass")
	}
	if limiter.Allow("user-1", now) {
		t.Fatalf("expected third immediate request to be rejected")
	}
	if !limiter.Allow("user-2", now) {
		t.Fatalf("expected independent key to have its own bucket")
	}
	if !limiter.Allow("user-1", now.Add(time.Second)) {
		t.Fatalf("expected token refill after one second at 1 rps")
	}
}

func TestMapLimiterAllowsBlankKeysAndNilLimiter(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	limiter := New(1, 1, time.Minute)
	if !limiter.Allow("  ", now) {
		t.Fatalf("blank keys bypass limiting")
	}

	var nilLimiter *MapLimiter
	if !nilLimiter.Allow("user-1", now) {
		t.Fatalf("nil limiter must allow everything")
	}

	if New(0, 5, time.Minute) != nil {
		t.Fatalf("invalid rps must return nil limiter")
	}
}
