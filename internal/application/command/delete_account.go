package command

import (
	"context"
	"log/slog"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
)

// DeleteAccountHandler removes a user record. The interface layer is
// responsible for the verification challenge; by the time this runs the
// student has already answered correctly.
type DeleteAccountHandler struct {
	users  user.Repository
	logger *slog.Logger
}

// NewDeleteAccountHandler creates the handler.
func NewDeleteAccountHandler(users user.Repository, logger *slog.Logger) *DeleteAccountHandler {
	return &DeleteAccountHandler{users: users, logger: logger}
}

// Execute deletes the record for a Telegram account.
// Returns user.ErrNotFound when the account is not registered.
func (h *DeleteAccountHandler) Execute(ctx context.Context, telegramID int64) error {
	if err := h.users.Delete(ctx, user.TelegramID(telegramID)); err != nil {
		return err
	}
	h.logger.Info("user account deleted", slog.Int64("telegram_id", telegramID))
	return nil
}
