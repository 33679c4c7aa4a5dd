package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/conversation"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/infrastructure/external/telegram"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// START / CANCEL / POLICY
// Entry points that work from any stage. /start branches on registration,
// /cancel abandons whatever flow is in progress.
// ══════════════════════════════════════════════════════════════════════════════

const (
	welcomeBackText = "Welcome back, %s! 👋\n\n" +
		"Use the menu below to get your grade report, view your profile, " +
		"or delete your account."

	welcomeNewText = "Welcome to the WCU Student Assistant Bot! 🎓\n\n" +
		"I can fetch your grade report and profile from the university portal.\n\n" +
		"Before we start, please read the data policy (/policy). Your student ID " +
		"and registration details are stored encrypted, and your portal password " +
		"is never saved.\n\nDo you agree to continue?"

	cancelledText = "Cancelled. Anything in progress has been discarded."

	policyText = "📜 Data Policy\n\n" +
		"• Your student ID, name, campus and registration date are stored " +
		"encrypted. Nobody can read them without the bot's secret key.\n" +
		"• Your portal password is used once per grade request and never stored.\n" +
		"• You can delete everything at any time with the Delete Account button.\n\n" +
		"Send /start to begin."
)

// StartHandlerConfig holds the welcome images shown on /start.
type StartHandlerConfig struct {
	// WelcomeImageURL greets returning students.
	WelcomeImageURL string

	// NewUserImageURL greets students seeing the bot for the first time.
	NewUserImageURL string
}

// DefaultStartHandlerConfig returns the stock WCU imagery.
func DefaultStartHandlerConfig() StartHandlerConfig {
	return StartHandlerConfig{
		WelcomeImageURL: "https://portal.wcu.edu.et/images/wcu-welcome.jpg",
		NewUserImageURL: "https://portal.wcu.edu.et/images/wcu-new.jpg",
	}
}

// StartHandler serves /start, /cancel and /policy.
type StartHandler struct {
	client *telegram.Client
	users  user.Repository
	convs  conversation.Store
	config StartHandlerConfig
	logger *slog.Logger
}

// NewStartHandler creates the handler.
func NewStartHandler(
	client *telegram.Client,
	users user.Repository,
	convs conversation.Store,
	config StartHandlerConfig,
	logger *slog.Logger,
) *StartHandler {
	if config.WelcomeImageURL == "" {
		config.WelcomeImageURL = DefaultStartHandlerConfig().WelcomeImageURL
	}
	if config.NewUserImageURL == "" {
		config.NewUserImageURL = DefaultStartHandlerConfig().NewUserImageURL
	}
	return &StartHandler{client: client, users: users, convs: convs, config: config, logger: logger}
}

// HandleStart greets the student. Registered accounts get the main menu;
// everyone else enters the registration flow at the consent step.
func (h *StartHandler) HandleStart(ctx context.Context, msg *telegram.Message) error {
	telegramID := msg.Chat.ID

	_ = h.client.SendChatAction(ctx, telegramID, telegram.ChatActionUploadPhoto)

	_, err := h.users.FindByTelegramID(ctx, user.TelegramID(telegramID))
	switch {
	case err == nil:
		return h.greetRegistered(ctx, msg)
	case errors.Is(err, user.ErrNotFound):
		return h.greetNew(ctx, msg)
	default:
		return fmt.Errorf("look up registration: %w", err)
	}
}

func (h *StartHandler) greetRegistered(ctx context.Context, msg *telegram.Message) error {
	telegramID := msg.Chat.ID
	caption := fmt.Sprintf(welcomeBackText, displayName(msg.From))

	h.sendPhotoOrText(ctx, telegramID, h.config.WelcomeImageURL, caption, presenter.MainMenu())

	state, err := h.convs.Load(ctx, user.TelegramID(telegramID))
	if err != nil {
		return fmt.Errorf("load conversation state: %w", err)
	}
	state.EndFlow()
	saveState(ctx, h.convs, h.logger, telegramID, state)
	return nil
}

func (h *StartHandler) greetNew(ctx context.Context, msg *telegram.Message) error {
	telegramID := msg.Chat.ID

	h.sendPhotoOrText(ctx, telegramID, h.config.NewUserImageURL, welcomeNewText, presenter.ConsentKeyboard())

	state := conversation.NewState()
	state.Stage = conversation.StageAwaitingConsent
	saveState(ctx, h.convs, h.logger, telegramID, state)
	return nil
}

// sendPhotoOrText tries the photo first and falls back to a plain message,
// so a broken image URL never blocks the flow.
func (h *StartHandler) sendPhotoOrText(ctx context.Context, chatID int64, photoURL, caption string, markup interface{}) {
	_, err := h.client.SendPhoto(ctx, telegram.SendPhotoParams{
		ChatID:      chatID,
		Photo:       photoURL,
		Caption:     caption,
		ReplyMarkup: markup,
	})
	if err == nil {
		return
	}

	h.logger.Warn("welcome photo failed, sending text",
		slog.Int64("telegram_id", chatID),
		slog.String("error", err.Error()))

	if _, err := h.client.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      chatID,
		Text:        caption,
		ReplyMarkup: markup,
	}); err != nil {
		h.logger.Error("welcome fallback failed",
			slog.Int64("telegram_id", chatID),
			slog.String("error", err.Error()))
	}
}

// HandleCancel abandons any in-progress flow and wipes the stored state,
// loaded report included.
func (h *StartHandler) HandleCancel(ctx context.Context, msg *telegram.Message) error {
	telegramID := msg.Chat.ID

	clearState(ctx, h.convs, h.logger, telegramID)

	markup := interface{}(&telegram.ReplyKeyboardRemove{RemoveKeyboard: true})
	if _, err := h.users.FindByTelegramID(ctx, user.TelegramID(telegramID)); err == nil {
		markup = presenter.MainMenu()
	}

	_, err := h.client.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      telegramID,
		Text:        cancelledText,
		ReplyMarkup: markup,
	})
	return err
}

// HandlePolicy sends the data-usage policy.
func (h *StartHandler) HandlePolicy(ctx context.Context, msg *telegram.Message) error {
	_, err := h.client.SendText(ctx, msg.Chat.ID, policyText)
	return err
}

// displayName picks the best human-readable name Telegram gives us.
func displayName(from *telegram.User) string {
	if from == nil {
		return "student"
	}
	if name := from.FullName(); name != "" {
		return name
	}
	if from.Username != "" {
		return "@" + from.Username
	}
	return "student"
}
