package telegram

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	tgclient "github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/infrastructure/external/telegram"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/interface/telegram/middleware"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// Long-polling update loop. Each update runs on its own goroutine behind a
// concurrency semaphore; per-chat ordering is left to Telegram. Handlers
// run through the rate-limit and recovery middlewares.
// ══════════════════════════════════════════════════════════════════════════════

// BotConfig holds bot loop configuration.
type BotConfig struct {
	// MaxConcurrentUpdates bounds how many updates are processed at once.
	MaxConcurrentUpdates int

	// UpdateTimeout bounds the handling of a single update, portal round
	// trip included.
	UpdateTimeout time.Duration

	// ShutdownTimeout bounds how long Stop waits for in-flight handlers.
	ShutdownTimeout time.Duration
}

// DefaultBotConfig returns sensible defaults.
func DefaultBotConfig() BotConfig {
	return BotConfig{
		MaxConcurrentUpdates: 32,
		UpdateTimeout:        2 * time.Minute,
		ShutdownTimeout:      30 * time.Second,
	}
}

// BotStats are cumulative counters for the update loop.
type BotStats struct {
	Handled     int64
	Failed      int64
	Panicked    int64
	RateLimited int64
}

// Bot runs the polling loop and middleware chain around the router.
type Bot struct {
	client   *tgclient.Client
	router   *Router
	recovery *middleware.RecoveryMiddleware
	limiter  *middleware.RateLimiter
	config   BotConfig
	logger   *slog.Logger

	sem chan struct{}
	wg  sync.WaitGroup

	handled     atomic.Int64
	failed      atomic.Int64
	panicked    atomic.Int64
	rateLimited atomic.Int64
}

// NewBot creates the bot.
func NewBot(
	client *tgclient.Client,
	router *Router,
	recovery *middleware.RecoveryMiddleware,
	limiter *middleware.RateLimiter,
	config BotConfig,
	logger *slog.Logger,
) *Bot {
	if config.MaxConcurrentUpdates <= 0 {
		config.MaxConcurrentUpdates = DefaultBotConfig().MaxConcurrentUpdates
	}
	if config.UpdateTimeout <= 0 {
		config.UpdateTimeout = DefaultBotConfig().UpdateTimeout
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultBotConfig().ShutdownTimeout
	}
	return &Bot{
		client:   client,
		router:   router,
		recovery: recovery,
		limiter:  limiter,
		config:   config,
		logger:   logger,
		sem:      make(chan struct{}, config.MaxConcurrentUpdates),
	}
}

// Run polls for updates until the context is cancelled, then waits for
// in-flight handlers.
func (b *Bot) Run(ctx context.Context) error {
	err := b.client.StartPolling(ctx, b.dispatch)
	b.waitForHandlers()
	return err
}

// dispatch hands one update to a worker goroutine, blocking when the
// concurrency limit is reached so polling applies backpressure.
func (b *Bot) dispatch(ctx context.Context, update *tgclient.Update) error {
	select {
	case b.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() { <-b.sem }()

		// Detached from the polling context so shutdown lets in-flight
		// updates finish instead of cutting them mid-reply.
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.config.UpdateTimeout)
		defer cancel()

		b.process(hctx, update)
	}()
	return nil
}

func (b *Bot) process(ctx context.Context, update *tgclient.Update) {
	telegramID := updateTelegramID(update)

	if telegramID != 0 && !b.limiter.Allow(telegramID) {
		b.rateLimited.Add(1)
		b.logger.Debug("update rate limited", slog.Int64("telegram_id", telegramID))
		return
	}

	result, err := b.recovery.RecoverWithHandler(ctx, telegramID, "route update", func() error {
		return b.router.Route(ctx, update)
	})

	b.handled.Add(1)

	if result.Recovered {
		b.panicked.Add(1)
		if telegramID != 0 {
			if _, sendErr := b.client.SendText(ctx, telegramID, result.UserMessage); sendErr != nil {
				b.logger.Error("send panic apology",
					slog.Int64("telegram_id", telegramID),
					slog.String("error", sendErr.Error()))
			}
		}
		return
	}

	if err != nil {
		b.failed.Add(1)
		if tgclient.IsUserBlocked(err) {
			b.logger.Info("user blocked the bot", slog.Int64("telegram_id", telegramID))
			return
		}
		b.logger.Error("update failed",
			slog.Int64("update_id", update.UpdateID),
			slog.Int64("telegram_id", telegramID),
			slog.String("error", err.Error()))
	}
}

func (b *Bot) waitForHandlers() {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("all in-flight updates finished")
	case <-time.After(b.config.ShutdownTimeout):
		b.logger.Warn("shutdown timeout, abandoning in-flight updates")
	}
}

// Stats returns a snapshot of the loop counters.
func (b *Bot) Stats() BotStats {
	return BotStats{
		Handled:     b.handled.Load(),
		Failed:      b.failed.Load(),
		Panicked:    b.panicked.Load(),
		RateLimited: b.rateLimited.Load(),
	}
}

// updateTelegramID extracts the acting user's id, or 0 when the update
// carries none.
func updateTelegramID(update *tgclient.Update) int64 {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID
	default:
		return 0
	}
}
