// Package main is the entry point for the WCU Student Assistant Bot.
//
// The bot lets Wachemo University students pull their grade report and
// profile from the academic portal without leaving Telegram. Stored
// registration data is encrypted at rest; the portal password is asked
// for per request and never persisted.
//
// Layering follows Clean Architecture:
// - Domain: entities and rules without external dependencies
// - Application: use-case commands and queries
// - Infrastructure: postgres, redis, Telegram and portal clients
// - Interface: the bot loop, router and conversation handlers
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/config"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/application/command"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/application/query"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/conversation"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/infrastructure/external/portal"
	tgclient "github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/infrastructure/external/telegram"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/infrastructure/persistence/postgres"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/infrastructure/persistence/redis"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/interface/telegram"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/interface/telegram/handler"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/interface/telegram/middleware"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/vault"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	slog.SetDefault(log)
	log.Info("starting WCU Student Assistant Bot",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. CREDENTIAL VAULT
	// ─────────────────────────────────────────────────────────────────────────
	fieldVault, err := vault.NewFromBase64(cfg.Vault.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	userRepo := postgres.NewUserRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. CONVERSATION STORE (Redis, or in-memory when disabled)
	// ─────────────────────────────────────────────────────────────────────────
	var convStore conversation.Store
	if cfg.Redis.Disabled {
		log.Warn("redis disabled, conversation state will not survive restarts")
		convStore = conversation.NewMemoryStore()
	} else {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		cache, err := redis.NewCache(redisCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() {
			log.Info("closing redis connection...")
			_ = cache.Close()
		}()
		convStore = redis.NewConversationStore(cache)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. EXTERNAL CLIENTS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing external clients...")

	portalCfg := portal.DefaultClientConfig()
	portalCfg.BaseURL = cfg.Portal.BaseURL
	portalCfg.Timeout = cfg.Portal.RequestTimeout
	portalCfg.Logger = log
	portalClient := portal.NewClient(portalCfg)

	telegramCfg := tgclient.DefaultClientConfig(cfg.Telegram.Token)
	telegramCfg.Logger = log
	telegramCfg.Debug = cfg.App.Debug
	botClient := tgclient.NewClient(telegramCfg)

	me, err := botClient.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram token check failed: %w", err)
	}
	log.Info("telegram bot authorized", "username", me.Username)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	registerCmd := command.NewRegisterUserHandler(userRepo, fieldVault, log)
	deleteCmd := command.NewDeleteAccountHandler(userRepo, log)
	profileQuery := query.NewGetProfileHandler(userRepo, fieldVault)
	reportQuery := query.NewGetGradeReportHandler(userRepo, fieldVault, portalClient, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. HANDLERS AND ROUTER
	// ─────────────────────────────────────────────────────────────────────────
	startHandler := handler.NewStartHandler(botClient, userRepo, convStore, handler.StartHandlerConfig{
		WelcomeImageURL: cfg.Telegram.WelcomeImageURL,
		NewUserImageURL: cfg.Telegram.NewUserImageURL,
	}, log)
	registrationHandler := handler.NewRegistrationHandler(botClient, registerCmd, convStore, log)
	gradesHandler := handler.NewGradesHandler(botClient, reportQuery, userRepo, convStore, log)
	profileHandler := handler.NewProfileHandler(botClient, profileQuery, log)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	deleteHandler := handler.NewDeleteHandler(botClient, deleteCmd, userRepo, convStore, rng, log)

	router := telegram.NewRouter(botClient,
		startHandler, registrationHandler, gradesHandler, profileHandler, deleteHandler,
		convStore, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. MIDDLEWARE AND BOT LOOP
	// ─────────────────────────────────────────────────────────────────────────
	recoveryCfg := middleware.DefaultRecoveryConfig()
	recoveryCfg.Logger = log
	recovery := middleware.NewRecoveryMiddleware(recoveryCfg)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerMinute: cfg.Telegram.UserRateLimit,
		Burst:             cfg.Telegram.UserRateLimitBurst,
	})

	bot := telegram.NewBot(botClient, router, recovery, limiter, telegram.BotConfig{
		MaxConcurrentUpdates: cfg.Telegram.MaxConcurrentUpdates,
		UpdateTimeout:        cfg.Telegram.UpdateTimeout,
		ShutdownTimeout:      cfg.App.ShutdownTimeout,
	}, log)

	// Long polling conflicts with a leftover webhook; clear it first.
	if err := botClient.DeleteWebhook(ctx, false); err != nil {
		log.Warn("failed to delete webhook", "error", err)
	}

	log.Info("bot is running, press Ctrl+C to stop")
	err = bot.Run(ctx)

	stats := bot.Stats()
	log.Info("bot stopped",
		"handled", stats.Handled,
		"failed", stats.Failed,
		"panicked", stats.Panicked,
		"rate_limited", stats.RateLimited,
	)

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("bot loop: %w", err)
	}
	return nil
}

// setupLogger builds the process logger: JSON in production, text for
// development.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Observability.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.App.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Observability.LogFormat == "text" || cfg.IsDevelopment() {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(h)
}
