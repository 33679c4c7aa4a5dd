// Package handler implements the bot's conversation flows: registration,
// grade-report fetching and pagination, profile display, and verified
// account deletion. Handlers mutate conversation state and talk to the
// Telegram client; the router decides which handler sees which update.
package handler

import (
	"context"
	"log/slog"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/conversation"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
)

// saveState persists conversation state, logging instead of failing the
// update when the store is unavailable. The dialogue degrades to a repeat
// of the current step, which is recoverable; dropping the reply is not.
func saveState(ctx context.Context, store conversation.Store, logger *slog.Logger, telegramID int64, state *conversation.State) {
	if err := store.Save(ctx, user.TelegramID(telegramID), state); err != nil {
		logger.Error("save conversation state",
			slog.Int64("telegram_id", telegramID),
			slog.String("error", err.Error()))
	}
}

// clearState drops the stored conversation state with the same tolerance.
func clearState(ctx context.Context, store conversation.Store, logger *slog.Logger, telegramID int64) {
	if err := store.Clear(ctx, user.TelegramID(telegramID)); err != nil {
		logger.Error("clear conversation state",
			slog.Int64("telegram_id", telegramID),
			slog.String("error", err.Error()))
	}
}
