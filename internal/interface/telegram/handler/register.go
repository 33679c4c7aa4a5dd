package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/application/command"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/conversation"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/infrastructure/external/telegram"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION FLOW
// Consent → campus → student id. The campus selection is carried in
// conversation state between the two button steps and the free-text step.
// ══════════════════════════════════════════════════════════════════════════════

const (
	campusPromptText = "Great! 🏫 Please choose your campus:"

	declinedText = "No problem. Nothing has been stored.\n\n" +
		"If you change your mind, just send /start."

	studentIDPromptText = "Now send me your student ID.\n\n" +
		"It looks like NSR/2214/13."

	studentIDInvalidText = "That doesn't look like a valid student ID. 🤔\n\n" +
		"It should look like NSR/2214/13. Please try again:"

	registeredText = "You're all set, %s! ✅\n\n" +
		"Use the menu below to get your grade report or view your profile."

	alreadyRegisteredText = "You are already registered. Use the menu below."
)

// RegistrationHandler drives the consent/campus/student-id steps.
type RegistrationHandler struct {
	client   *telegram.Client
	register *command.RegisterUserHandler
	convs    conversation.Store
	logger   *slog.Logger
}

// NewRegistrationHandler creates the handler.
func NewRegistrationHandler(
	client *telegram.Client,
	register *command.RegisterUserHandler,
	convs conversation.Store,
	logger *slog.Logger,
) *RegistrationHandler {
	return &RegistrationHandler{client: client, register: register, convs: convs, logger: logger}
}

// HandleConsent reacts to the agree/disagree buttons of the policy prompt.
func (h *RegistrationHandler) HandleConsent(ctx context.Context, cq *telegram.CallbackQuery) error {
	telegramID := cq.Message.Chat.ID

	state, err := h.convs.Load(ctx, user.TelegramID(telegramID))
	if err != nil {
		return fmt.Errorf("load conversation state: %w", err)
	}
	if state.Stage != conversation.StageAwaitingConsent {
		// Stale button from an old prompt.
		return nil
	}

	if cq.Data == presenter.CallbackDisagree {
		state.Reset()
		saveState(ctx, h.convs, h.logger, telegramID, state)
		_, err := h.client.EditMessageText(ctx, telegramID, cq.Message.MessageID, declinedText, "", nil)
		return err
	}

	state.Stage = conversation.StageAwaitingCampus
	saveState(ctx, h.convs, h.logger, telegramID, state)

	_, err = h.client.EditMessageText(ctx, telegramID, cq.Message.MessageID,
		campusPromptText, "", presenter.CampusKeyboard(user.AllCampuses()))
	return err
}

// HandleCampus stores the chosen campus and asks for the student id.
func (h *RegistrationHandler) HandleCampus(ctx context.Context, cq *telegram.CallbackQuery) error {
	telegramID := cq.Message.Chat.ID

	state, err := h.convs.Load(ctx, user.TelegramID(telegramID))
	if err != nil {
		return fmt.Errorf("load conversation state: %w", err)
	}
	if state.Stage != conversation.StageAwaitingCampus {
		return nil
	}

	campus := strings.TrimPrefix(cq.Data, presenter.CallbackCampusPrefix)
	if !user.Campus(campus).IsValid() {
		h.logger.Warn("unknown campus callback",
			slog.Int64("telegram_id", telegramID),
			slog.String("data", cq.Data))
		return nil
	}

	state.Campus = campus
	state.Stage = conversation.StageAwaitingStudentID
	saveState(ctx, h.convs, h.logger, telegramID, state)

	_, err = h.client.EditMessageText(ctx, telegramID, cq.Message.MessageID,
		fmt.Sprintf("Campus: %s ✅\n\n%s", campus, studentIDPromptText), "", nil)
	return err
}

// HandleStudentID validates the free-text student id and completes the
// registration. An invalid id re-prompts without losing the campus.
func (h *RegistrationHandler) HandleStudentID(ctx context.Context, msg *telegram.Message) error {
	telegramID := msg.Chat.ID

	state, err := h.convs.Load(ctx, user.TelegramID(telegramID))
	if err != nil {
		return fmt.Errorf("load conversation state: %w", err)
	}
	if state.Stage != conversation.StageAwaitingStudentID {
		return nil
	}

	_, err = h.register.Execute(ctx, command.RegisterUserInput{
		TelegramID:  telegramID,
		StudentID:   msg.Text,
		DisplayName: displayName(msg.From),
		Campus:      state.Campus,
	})
	switch {
	case err == nil:
		state.Reset()
		saveState(ctx, h.convs, h.logger, telegramID, state)
		_, err := h.client.SendMessage(ctx, telegram.SendMessageParams{
			ChatID:      telegramID,
			Text:        fmt.Sprintf(registeredText, displayName(msg.From)),
			ReplyMarkup: presenter.MainMenu(),
		})
		return err

	case errors.Is(err, user.ErrInvalidStudentID):
		_, err := h.client.SendText(ctx, telegramID, studentIDInvalidText)
		return err

	case errors.Is(err, user.ErrAlreadyRegistered):
		state.Reset()
		saveState(ctx, h.convs, h.logger, telegramID, state)
		_, err := h.client.SendMessage(ctx, telegram.SendMessageParams{
			ChatID:      telegramID,
			Text:        alreadyRegisteredText,
			ReplyMarkup: presenter.MainMenu(),
		})
		return err

	default:
		return fmt.Errorf("register user: %w", err)
	}
}
