package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/application/query"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/infrastructure/external/telegram"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/interface/telegram/presenter"
)

const profileFailedText = "Sorry, I couldn't load your profile. 😕\n\n" +
	"Please try again in a few minutes."

// ProfileHandler shows the decrypted registration data.
type ProfileHandler struct {
	client  *telegram.Client
	profile *query.GetProfileHandler
	logger  *slog.Logger
}

// NewProfileHandler creates the handler.
func NewProfileHandler(client *telegram.Client, profile *query.GetProfileHandler, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{client: client, profile: profile, logger: logger}
}

// HandleMenu reacts to the View Profile menu button.
func (h *ProfileHandler) HandleMenu(ctx context.Context, msg *telegram.Message) error {
	telegramID := msg.Chat.ID

	view, err := h.profile.Execute(ctx, telegramID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			_, err := h.client.SendText(ctx, telegramID, notRegisteredText)
			return err
		}

		// Decryption and store failures stay internal; the user gets one
		// generic message.
		h.logger.Error("profile load failed",
			slog.Int64("telegram_id", telegramID),
			slog.String("error", err.Error()))
		_, sendErr := h.client.SendText(ctx, telegramID, profileFailedText)
		return sendErr
	}

	h.logger.Debug("profile shown", slog.Int64("telegram_id", telegramID))

	_, err = h.client.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      telegramID,
		Text:        presenter.ProfileText(view),
		ReplyMarkup: presenter.MainMenu(),
	})
	return err
}
