package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/application/command"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/challenge"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/conversation"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/infrastructure/external/telegram"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT DELETION FLOW
// A small arithmetic question gates the delete so a stray button press
// cannot wipe a registration. Wrong answers re-roll the question in place,
// with no retry cap.
// ══════════════════════════════════════════════════════════════════════════════

const (
	challengeIntroText = "⚠️ Deleting your account removes all stored data.\n\n" +
		"To confirm, answer this:\n\n%s"

	wrongAnswerText = "❌ Wrong answer. Try again:\n\n%s"

	deletedText = "✅ Your account and all stored data have been deleted.\n\n" +
		"Send /start anytime to register again."

	nothingToDeleteText = "You are not registered, so there is nothing to delete."
)

// DeleteHandler drives the verified deletion flow.
type DeleteHandler struct {
	client *telegram.Client
	del    *command.DeleteAccountHandler
	users  user.Repository
	convs  conversation.Store
	logger *slog.Logger

	// rng feeds the challenge generator. rand.Rand is not safe for
	// concurrent use, and updates run on separate goroutines.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewDeleteHandler creates the handler.
func NewDeleteHandler(
	client *telegram.Client,
	del *command.DeleteAccountHandler,
	users user.Repository,
	convs conversation.Store,
	rng *rand.Rand,
	logger *slog.Logger,
) *DeleteHandler {
	return &DeleteHandler{client: client, del: del, users: users, convs: convs, rng: rng, logger: logger}
}

func (h *DeleteHandler) newChallenge() challenge.Challenge {
	h.rngMu.Lock()
	defer h.rngMu.Unlock()
	return challenge.New(h.rng)
}

// HandleMenu reacts to the Delete Account menu button by issuing a
// verification challenge.
func (h *DeleteHandler) HandleMenu(ctx context.Context, msg *telegram.Message) error {
	telegramID := msg.Chat.ID

	if _, err := h.users.FindByTelegramID(ctx, user.TelegramID(telegramID)); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			_, err := h.client.SendText(ctx, telegramID, nothingToDeleteText)
			return err
		}
		return fmt.Errorf("look up registration: %w", err)
	}

	ch := h.newChallenge()

	sent, err := h.client.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      telegramID,
		Text:        fmt.Sprintf(challengeIntroText, ch.Question),
		ReplyMarkup: presenter.AnswerKeyboard(ch.Options),
	})
	if err != nil {
		return err
	}

	state, err := h.convs.Load(ctx, user.TelegramID(telegramID))
	if err != nil {
		return fmt.Errorf("load conversation state: %w", err)
	}
	state.Stage = conversation.StageAwaitingDeletionAnswer
	state.PendingAnswer = ch.Answer
	state.ChallengeMessageID = sent.MessageID
	saveState(ctx, h.convs, h.logger, telegramID, state)
	return nil
}

// HandleAnswer reacts to an answer button. A correct answer deletes the
// account; a wrong one re-rolls the challenge in the same message.
func (h *DeleteHandler) HandleAnswer(ctx context.Context, cq *telegram.CallbackQuery, answer int) error {
	telegramID := cq.Message.Chat.ID

	state, err := h.convs.Load(ctx, user.TelegramID(telegramID))
	if err != nil {
		return fmt.Errorf("load conversation state: %w", err)
	}
	if state.Stage != conversation.StageAwaitingDeletionAnswer {
		return nil
	}

	if answer != state.PendingAnswer {
		ch := h.newChallenge()
		state.PendingAnswer = ch.Answer
		saveState(ctx, h.convs, h.logger, telegramID, state)

		_, err := h.client.EditMessageText(ctx, telegramID, state.ChallengeMessageID,
			fmt.Sprintf(wrongAnswerText, ch.Question), "", presenter.AnswerKeyboard(ch.Options))
		return err
	}

	if err := h.del.Execute(ctx, telegramID); err != nil && !errors.Is(err, user.ErrNotFound) {
		return fmt.Errorf("delete account: %w", err)
	}

	messageID := state.ChallengeMessageID
	clearState(ctx, h.convs, h.logger, telegramID)

	if _, err := h.client.EditMessageText(ctx, telegramID, messageID, deletedText, "", nil); err != nil {
		// The challenge message may be gone; confirm with a new one.
		_, err := h.client.SendMessage(ctx, telegram.SendMessageParams{
			ChatID:      telegramID,
			Text:        deletedText,
			ReplyMarkup: &telegram.ReplyKeyboardRemove{RemoveKeyboard: true},
		})
		return err
	}

	// Retire the menu keyboard of the deleted account.
	_, err = h.client.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      telegramID,
		Text:        "👋",
		ReplyMarkup: &telegram.ReplyKeyboardRemove{RemoveKeyboard: true},
	})
	return err
}
