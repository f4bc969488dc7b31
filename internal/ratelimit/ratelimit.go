package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/deusflow/factcheck/internal/logger"
)

// Budget caps generative-model calls per provider over a rolling day.
// A zero limit means unlimited.
type Budget struct {
	mu        sync.Mutex
	limits    map[string]int
	used      map[string]int
	window    time.Duration
	resetTime time.Time
	now       func() time.Time
}

// NewBudget creates a daily budget. limits maps provider name to its maximum calls.
func NewBudget(limits map[string]int) *Budget {
	return newBudget(limits, 24*time.Hour, time.Now)
}

func newBudget(limits map[string]int, window time.Duration, now func() time.Time) *Budget {
	l := make(map[string]int, len(limits))
	for k, v := range limits {
		l[k] = v
	}
	return &Budget{
		limits:    l,
		used:      make(map[string]int),
		window:    window,
		resetTime: now().Add(window),
		now:       now,
	}
}

// Use records one call for provider, or returns an error when its budget is spent.
func (b *Budget) Use(provider string) error {
	if b == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()

	limit := b.limits[provider]
	if limit > 0 && b.used[provider] >= limit {
		logger.Warn("opinion budget reached", "provider", provider, "used", b.used[provider], "limit", limit)
		return fmt.Errorf("%s daily budget exceeded", provider)
	}

	b.used[provider]++
	logger.Debug("opinion budget", "provider", provider, "used", b.used[provider], "limit", limit)
	return nil
}

// GetStats returns current usage, used by the health endpoint.
func (b *Budget) GetStats() map[string]interface{} {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := map[string]interface{}{
		"reset_time": b.resetTime.Format(time.RFC3339),
	}
	for provider, limit := range b.limits {
		stats[provider+"_used"] = b.used[provider]
		stats[provider+"_limit"] = limit
	}
	return stats
}

// checkReset resets counters if reset time has passed
func (b *Budget) checkReset() {
	if b.now().After(b.resetTime) {
		logger.Info("resetting opinion budget counters")
		b.used = make(map[string]int)
		b.resetTime = b.now().Add(b.window)
	}
}
