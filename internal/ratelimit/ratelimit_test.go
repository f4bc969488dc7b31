package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudget_Limit(t *testing.T) {
	b := NewBudget(map[string]int{"gemini": 2})

	require.NoError(t, b.Use("gemini"))
	require.NoError(t, b.Use("gemini"))
	assert.Error(t, b.Use("gemini"))

	stats := b.GetStats()
	assert.Equal(t, 2, stats["gemini_used"])
	assert.Equal(t, 2, stats["gemini_limit"])
}

func TestBudget_Unlimited(t *testing.T) {
	b := NewBudget(map[string]int{"gemini": 0})
	for i := 0; i < 100; i++ {
		require.NoError(t, b.Use("gemini"))
	}
	assert.NoError(t, b.Use("openai"), "providers without a limit are unlimited")
}

func TestBudget_Reset(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	b := newBudget(map[string]int{"gemini": 1}, time.Hour, func() time.Time { return now })

	require.NoError(t, b.Use("gemini"))
	require.Error(t, b.Use("gemini"))

	now = now.Add(2 * time.Hour)
	assert.NoError(t, b.Use("gemini"))
}

func TestBudget_Nil(t *testing.T) {
	var b *Budget
	assert.NoError(t, b.Use("gemini"))
}
