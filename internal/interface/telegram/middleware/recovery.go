// Package middleware contains Telegram bot middlewares for update processing.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOVERY MIDDLEWARE
// Catches panics in handlers. Users get one generic apology; the log gets
// the stack trace. The bot must stay responsive even if a handler crashes.
// ══════════════════════════════════════════════════════════════════════════════

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	// EnableStackTrace enables capturing stack traces.
	EnableStackTrace bool

	// UserErrorMessage is the message sent to users when a panic occurs.
	UserErrorMessage string

	// MaxPanicsPerMinute caps how many panics get full processing per
	// minute, to keep a crash loop from flooding the log.
	MaxPanicsPerMinute int

	// Logger for panic reports.
	Logger *slog.Logger
}

// DefaultRecoveryConfig returns sensible defaults.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		EnableStackTrace: true,
		UserErrorMessage: "😔 Something went wrong on our side.\n\n" +
			"Please try again in a few minutes.",
		MaxPanicsPerMinute: 100,
	}
}

// PanicInfo describes a recovered panic.
type PanicInfo struct {
	PanicValue interface{}
	StackTrace string
	TelegramID int64
	Operation  string
	Timestamp  time.Time
}

// RecoveryResult is what the bot loop acts on after running a handler.
type RecoveryResult struct {
	// Recovered indicates a panic was caught.
	Recovered bool

	// PanicInfo contains panic details (when Recovered).
	PanicInfo *PanicInfo

	// UserMessage is what to show the user (when Recovered).
	UserMessage string
}

// RecoveryMiddleware recovers from handler panics.
type RecoveryMiddleware struct {
	config  RecoveryConfig
	logger  *slog.Logger
	limiter *panicRateLimiter
}

// NewRecoveryMiddleware creates the middleware.
func NewRecoveryMiddleware(config RecoveryConfig) *RecoveryMiddleware {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RecoveryMiddleware{
		config:  config,
		logger:  logger,
		limiter: newPanicRateLimiter(config.MaxPanicsPerMinute),
	}
}

// RecoverWithHandler runs the handler, converting a panic into a
// RecoveryResult. Handler errors pass through untouched in Err.
func (m *RecoveryMiddleware) RecoverWithHandler(
	ctx context.Context,
	telegramID int64,
	operation string,
	handler func() error,
) (result *RecoveryResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = m.handlePanic(r, telegramID, operation)
			err = nil
		}
	}()

	err = handler()
	return &RecoveryResult{Recovered: false}, err
}

func (m *RecoveryMiddleware) handlePanic(panicValue interface{}, telegramID int64, operation string) *RecoveryResult {
	if !m.limiter.allow() {
		return &RecoveryResult{Recovered: true, UserMessage: m.config.UserErrorMessage}
	}

	info := &PanicInfo{
		PanicValue: panicValue,
		TelegramID: telegramID,
		Operation:  operation,
		Timestamp:  time.Now(),
	}
	if m.config.EnableStackTrace {
		info.StackTrace = string(debug.Stack())
	}

	m.logger.Error("panic recovered",
		slog.String("operation", operation),
		slog.Int64("telegram_id", telegramID),
		slog.String("panic", fmt.Sprintf("%v", panicValue)),
		slog.String("stack", info.StackTrace))

	return &RecoveryResult{
		Recovered:   true,
		PanicInfo:   info,
		UserMessage: m.config.UserErrorMessage,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PANIC RATE LIMITER
// ══════════════════════════════════════════════════════════════════════════════

type panicRateLimiter struct {
	mu        sync.Mutex
	count     int
	maxPerMin int
	window    time.Time
}

func newPanicRateLimiter(maxPerMin int) *panicRateLimiter {
	return &panicRateLimiter{maxPerMin: maxPerMin, window: time.Now()}
}

func (p *panicRateLimiter) allow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if now.Sub(p.window) > time.Minute {
		p.count = 0
		p.window = now
	}
	if p.count >= p.maxPerMin {
		return false
	}
	p.count++
	return true
}
