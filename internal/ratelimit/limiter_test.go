package ratelimit

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nvandessel/serialtemp/internal/constants"
)

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(10.0, 5)
	if l == nil {
		t.Fatal("NewLimiter returned nil")
	}
	if l.rate != 10.0 {
		t.Errorf("rate = %f, want 10.0", l.rate)
	}
	if l.burst != 5 {
		t.Errorf("burst = %d, want 5", l.burst)
	}
}

func TestAllow_WithinBurst(t *testing.T) {
	l := NewLimiter(1.0, 3)

	// First 3 requests should all be allowed (burst)
	for i := 0; i < 3; i++ {
		if !l.Allow("key1") {
			t.Errorf("request %d should be allowed (within burst)", i+1)
		}
	}
}

func TestAllow_ExceedsBurst(t *testing.T) {
	l := NewLimiter(1.0, 2)

	// Consume entire burst
	l.Allow("key1")
	l.Allow("key1")

	// Next request should be rejected
	if l.Allow("key1") {
		t.Error("request after burst exhaustion should be rejected")
	}
}

func TestAllow_RefillAfterWait(t *testing.T) {
	now := time.Now()
	l := NewLimiter(10.0, 2) // 10 tokens/sec
	l.nowFunc = func() time.Time { return now }

	// Consume burst
	l.Allow("key1")
	l.Allow("key1")

	// Should be rejected
	if l.Allow("key1") {
		t.Error("expected rejection after burst")
	}

	// Advance time by 200ms => 10 * 0.2 = 2 tokens refilled
	now = now.Add(200 * time.Millisecond)

	// Should be allowed now
	if !l.Allow("key1") {
		t.Error("expected allow after token refill")
	}
}

func TestAllow_IndependentKeys(t *testing.T) {
	l := NewLimiter(1.0, 1)

	// Exhaust key1's burst
	l.Allow("key1")
	if l.Allow("key1") {
		t.Error("key1 should be exhausted")
	}

	// key2 should still work independently
	if !l.Allow("key2") {
		t.Error("key2 should be allowed (independent bucket)")
	}
}

func TestAllow_BurstDoesNotExceedMax(t *testing.T) {
	now := time.Now()
	l := NewLimiter(100.0, 3) // High rate, but burst capped at 3
	l.nowFunc = func() time.Time { return now }

	// Exhaust burst
	l.Allow("key1")
	l.Allow("key1")
	l.Allow("key1")

	// Even after waiting a long time, tokens should cap at burst
	now = now.Add(10 * time.Second) // Would refill 1000 tokens uncapped

	// Should only get burst=3 tokens back
	for i := 0; i < 3; i++ {
		if !l.Allow("key1") {
			t.Errorf("request %d should be allowed after refill capped at burst", i+1)
		}
	}
	if l.Allow("key1") {
		t.Error("4th request should be rejected (burst cap)")
	}
}

func TestAllow_ConcurrentAccess(t *testing.T) {
	l := NewLimiter(1000.0, 100)

	var wg sync.WaitGroup
	allowed := make(chan bool, 200)

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- l.Allow("concurrent-key")
		}()
	}

	wg.Wait()
	close(allowed)

	allowedCount := 0
	for a := range allowed {
		if a {
			allowedCount++
		}
	}

	// With burst=100 and 200 requests, should allow roughly 100
	// Allow some slack for timing
	if allowedCount < 90 || allowedCount > 110 {
		t.Errorf("allowed %d requests, expected ~100 (burst limit)", allowedCount)
	}
}

func TestNewToolLimiters(t *testing.T) {
	limiters := NewToolLimiters()

	tests := []struct {
		tool  string
		burst int
	}{
		{"serialtemp_generate", 5},
		{"serialtemp_encode", 20},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			limiter, ok := limiters[tt.tool]
			if !ok {
				t.Fatalf("missing rate limiter for tool: %s", tt.tool)
			}
			if limiter.burst != tt.burst {
				t.Errorf("burst = %d, want %d", limiter.burst, tt.burst)
			}
		})
	}
}

func TestCheckLimit(t *testing.T) {
	limiters := ToolLimiters{"serialtemp_generate": NewLimiter(0, 1)}

	if err := CheckLimit(limiters, "serialtemp_generate"); err != nil {
		t.Errorf("unexpected error on first call: %v", err)
	}

	// Unknown tool should pass (no limiter = no limit)
	if err := CheckLimit(limiters, "unknown_tool"); err != nil {
		t.Errorf("unexpected error for unknown tool: %v", err)
	}

	err := CheckLimit(limiters, "serialtemp_generate")
	if !errors.Is(err, ErrLimited) {
		t.Errorf("expected ErrLimited after burst exhaustion, got %v", err)
	}
}

func TestAllowN(t *testing.T) {
	now := time.Now()
	l := NewLimiter(100.0, 500) // 100 samples/sec, burst 500
	l.nowFunc = func() time.Time { return now }

	if !l.AllowN("samples", 400) {
		t.Fatal("400 of 500 should be allowed")
	}
	if l.AllowN("samples", 200) {
		t.Error("200 with 100 left should be rejected")
	}
	// A refused request takes nothing.
	if got := l.Available("samples"); got != 100 {
		t.Errorf("Available() = %d, want 100", got)
	}

	now = now.Add(time.Second)
	if !l.AllowN("samples", 200) {
		t.Error("200 should be allowed after a 100 token refill")
	}

	if l.AllowN("samples", 501) {
		t.Error("a request larger than burst should never be allowed")
	}
	if !l.AllowN("samples", 0) {
		t.Error("an empty request should always be allowed")
	}
}

func TestCheckSamples(t *testing.T) {
	limiters := ToolLimiters{SampleKey: NewLimiter(0, 100)}

	if err := CheckSamples(limiters, 60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := CheckSamples(limiters, 60)
	if !errors.Is(err, ErrLimited) {
		t.Fatalf("expected ErrLimited, got %v", err)
	}
	if !strings.Contains(err.Error(), "40 available") {
		t.Errorf("error %q should report remaining budget", err)
	}

	if err := CheckSamples(ToolLimiters{}, 1_000_000); err != nil {
		t.Errorf("no sample budget should allow everything, got %v", err)
	}
}

func TestNewToolLimiters_SampleBudget(t *testing.T) {
	limiters := NewToolLimiters()
	for i := 0; i < 2; i++ {
		if err := CheckSamples(limiters, constants.MaxToolSampleCount); err != nil {
			t.Fatalf("maximal run %d should fit a full budget: %v", i+1, err)
		}
	}
	if err := CheckSamples(limiters, constants.MaxToolSampleCount); !errors.Is(err, ErrLimited) {
		t.Errorf("third maximal run error = %v, want ErrLimited", err)
	}
}
