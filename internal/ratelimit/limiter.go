// Package ratelimit meters MCP tool calls with token buckets. Buckets can
// charge more than one token per call, so a generate run is billed for the
// samples it produces as well as for the call itself.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nvandessel/serialtemp/internal/constants"
)

// ErrLimited is returned when a bucket cannot cover a request.
var ErrLimited = errors.New("rate limit exceeded")

// SampleKey names the bucket that meters generated samples.
const SampleKey = "samples"

// Limiter is a per-key token bucket. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   int     // bucket capacity and initial token count
	nowFunc func() time.Time
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// NewLimiter creates a limiter refilling at rate tokens/sec up to burst.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// Allow takes one token from key's bucket, reporting false when none is left.
func (l *Limiter) Allow(key string) bool {
	return l.AllowN(key, 1)
}

// AllowN takes n tokens from key's bucket if all of them are available.
// Nothing is taken on refusal. A request larger than burst never succeeds
// and n <= 0 always does.
func (l *Limiter) AllowN(key string, n int) bool {
	if n <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refill(key)
	if b.tokens < float64(n) {
		return false
	}
	b.tokens -= float64(n)
	return true
}

// Available reports the whole tokens currently in key's bucket.
func (l *Limiter) Available(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int(l.refill(key).tokens)
}

// refill returns key's bucket topped up for the time elapsed since its last
// use. The caller holds l.mu.
func (l *Limiter) refill(key string) *bucket {
	now := l.nowFunc()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastCheck: now}
		l.buckets[key] = b
		return b
	}
	if elapsed := now.Sub(b.lastCheck).Seconds(); elapsed > 0 {
		b.tokens = min(b.tokens+l.rate*elapsed, float64(l.burst))
		b.lastCheck = now
	}
	return b
}

// ToolLimiters maps tool names, plus SampleKey, to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates the default limits: a call budget per tool and a
// shared sample budget for generate runs.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"serialtemp_generate": NewLimiter(30.0/60.0, 5), // 30/minute, burst 5
		"serialtemp_encode":   NewLimiter(2.0, 20),      // 120/minute, burst 20
		SampleKey:             NewLimiter(constants.SampleBudgetRate, constants.SampleBudgetBurst),
	}
}

// CheckLimit returns an error wrapping ErrLimited if toolName is out of
// tokens. Tools without a limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}
	if !limiter.Allow(toolName) {
		return fmt.Errorf("%w for %s, please try again shortly", ErrLimited, toolName)
	}
	return nil
}

// CheckSamples charges count samples to the shared sample budget. Without
// a SampleKey limiter every count is allowed.
func CheckSamples(limiters ToolLimiters, count int) error {
	limiter, ok := limiters[SampleKey]
	if !ok {
		return nil
	}
	if !limiter.AllowN(SampleKey, count) {
		return fmt.Errorf("%w: %d samples requested, %d available", ErrLimited, count, limiter.Available(SampleKey))
	}
	return nil
}
