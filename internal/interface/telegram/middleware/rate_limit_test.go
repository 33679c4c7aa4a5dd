package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_BurstThenBlocked(t *testing.T) {
	l := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 60, Burst: 3})

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
}

func TestRateLimiter_PerUserIsolation(t *testing.T) {
	l := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 60, Burst: 1})

	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))

	// A different user has their own bucket.
	assert.True(t, l.Allow(2))
}

func TestRateLimiter_Refills(t *testing.T) {
	l := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 6000, Burst: 1})

	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))

	// 6000/min refills one token in 10ms.
	time.Sleep(30 * time.Millisecond)
	assert.True(t, l.Allow(1))
}

func TestRecovery_CatchesPanic(t *testing.T) {
	m := NewRecoveryMiddleware(DefaultRecoveryConfig())

	result, err := m.RecoverWithHandler(context.Background(), 42, "test", func() error {
		panic("boom")
	})
	assert.NoError(t, err)
	assert.True(t, result.Recovered)
	assert.NotEmpty(t, result.UserMessage)
	assert.Equal(t, int64(42), result.PanicInfo.TelegramID)
}

func TestRecovery_PassesThroughErrors(t *testing.T) {
	m := NewRecoveryMiddleware(DefaultRecoveryConfig())

	result, err := m.RecoverWithHandler(context.Background(), 1, "test", func() error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, result.Recovered)
}
