package middleware

import (
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMITER
// Token bucket per Telegram user. Portal fetches are expensive, so one
// student hammering the buttons must not starve everyone else.
// ══════════════════════════════════════════════════════════════════════════════

// RateLimiterConfig holds rate limiter configuration.
type RateLimiterConfig struct {
	// RequestsPerMinute is the sustained rate per user.
	RequestsPerMinute int

	// Burst is how many requests a user may fire instantly.
	Burst int

	// CleanupInterval is how often idle buckets are dropped.
	CleanupInterval time.Duration

	// IdleTimeout is how long a bucket may sit unused before cleanup.
	IdleTimeout time.Duration
}

// DefaultRateLimiterConfig returns sensible defaults.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerMinute: 20,
		Burst:             5,
		CleanupInterval:   5 * time.Minute,
		IdleTimeout:       15 * time.Minute,
	}
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter enforces a per-user token bucket.
type RateLimiter struct {
	config RateLimiterConfig

	mu          sync.Mutex
	buckets     map[int64]*bucket
	lastCleanup time.Time
}

// NewRateLimiter creates a rate limiter.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultRateLimiterConfig().RequestsPerMinute
	}
	if config.Burst <= 0 {
		config.Burst = DefaultRateLimiterConfig().Burst
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultRateLimiterConfig().CleanupInterval
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultRateLimiterConfig().IdleTimeout
	}
	return &RateLimiter{
		config:      config,
		buckets:     make(map[int64]*bucket),
		lastCleanup: time.Now(),
	}
}

// Allow reports whether the user may proceed, consuming one token if so.
func (l *RateLimiter) Allow(telegramID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.maybeCleanup(now)

	b, ok := l.buckets[telegramID]
	if !ok {
		b = &bucket{tokens: float64(l.config.Burst)}
		l.buckets[telegramID] = b
	} else {
		refill := now.Sub(b.lastSeen).Minutes() * float64(l.config.RequestsPerMinute)
		b.tokens += refill
		if b.tokens > float64(l.config.Burst) {
			b.tokens = float64(l.config.Burst)
		}
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// maybeCleanup drops idle buckets. Called with the lock held.
func (l *RateLimiter) maybeCleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < l.config.CleanupInterval {
		return
	}
	l.lastCleanup = now

	for id, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.config.IdleTimeout {
			delete(l.buckets, id)
		}
	}
}
