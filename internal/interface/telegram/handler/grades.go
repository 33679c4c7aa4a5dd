package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/application/query"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/conversation"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/infrastructure/external/telegram"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADE REPORT FLOW
// Menu press → password prompt → portal round trip → paginated report.
// The password lives only in the incoming update; it is never stored.
// ══════════════════════════════════════════════════════════════════════════════

const (
	passwordPromptText = "Please enter your portal password. 🔑\n\n" +
		"It is used once to fetch your report and never stored."

	notRegisteredText = "You need to register first. Send /start to begin."

	registrationGoneText = "Your registration could not be found. " +
		"Send /start to register again."

	fetchFailedText = "Sorry, I couldn't fetch your grade report. 😕\n\n" +
		"Please check your password and try again in a few minutes."

	graduateText = "🎓 Congratulations! You are a graduate. 🎓\n\n" +
		"Grade report is only available for active students.\n\n" +
		"Thank you for using WCU Robot! 🎉"

	noGradesText = "No grade records were found for your account."
)

// GradesHandler drives the grade-report flow and its pagination.
type GradesHandler struct {
	client *telegram.Client
	report *query.GetGradeReportHandler
	users  user.Repository
	convs  conversation.Store
	logger *slog.Logger
}

// NewGradesHandler creates the handler.
func NewGradesHandler(
	client *telegram.Client,
	report *query.GetGradeReportHandler,
	users user.Repository,
	convs conversation.Store,
	logger *slog.Logger,
) *GradesHandler {
	return &GradesHandler{client: client, report: report, users: users, convs: convs, logger: logger}
}

// HandleMenu reacts to the Grade Report menu button by asking for the
// portal password.
func (h *GradesHandler) HandleMenu(ctx context.Context, msg *telegram.Message) error {
	telegramID := msg.Chat.ID

	if _, err := h.users.FindByTelegramID(ctx, user.TelegramID(telegramID)); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			_, err := h.client.SendText(ctx, telegramID, notRegisteredText)
			return err
		}
		return fmt.Errorf("look up registration: %w", err)
	}

	state, err := h.convs.Load(ctx, user.TelegramID(telegramID))
	if err != nil {
		return fmt.Errorf("load conversation state: %w", err)
	}
	state.Stage = conversation.StageAwaitingPassword
	saveState(ctx, h.convs, h.logger, telegramID, state)

	_, err = h.client.SendText(ctx, telegramID, passwordPromptText)
	return err
}

// HandlePassword runs the portal round trip with the just-received
// password and renders the first page of the report.
func (h *GradesHandler) HandlePassword(ctx context.Context, msg *telegram.Message) error {
	telegramID := msg.Chat.ID

	state, err := h.convs.Load(ctx, user.TelegramID(telegramID))
	if err != nil {
		return fmt.Errorf("load conversation state: %w", err)
	}
	if state.Stage != conversation.StageAwaitingPassword {
		return nil
	}

	// The password must not linger in the chat history.
	if err := h.client.DeleteMessage(ctx, telegramID, msg.MessageID); err != nil {
		h.logger.Debug("delete password message",
			slog.Int64("telegram_id", telegramID),
			slog.String("error", err.Error()))
	}

	_ = h.client.SendChatAction(ctx, telegramID, telegram.ChatActionTyping)

	report, err := h.report.Execute(ctx, telegramID, msg.Text)
	if err != nil {
		state.EndFlow()
		saveState(ctx, h.convs, h.logger, telegramID, state)

		if errors.Is(err, user.ErrNotFound) {
			_, err := h.client.SendText(ctx, telegramID, registrationGoneText)
			return err
		}

		h.logger.Error("grade report fetch failed",
			slog.Int64("telegram_id", telegramID),
			slog.String("error", err.Error()))
		_, sendErr := h.client.SendText(ctx, telegramID, fetchFailedText)
		return sendErr
	}

	if report.Graduate {
		state.EndFlow()
		saveState(ctx, h.convs, h.logger, telegramID, state)
		_, err := h.client.SendText(ctx, telegramID, graduateText)
		return err
	}

	if report.HasPhoto {
		h.sendProfilePhoto(ctx, telegramID, report)
	}

	if len(report.Semesters) == 0 {
		state.EndFlow()
		saveState(ctx, h.convs, h.logger, telegramID, state)
		_, err := h.client.SendText(ctx, telegramID, noGradesText)
		return err
	}

	state.SetReport(report.Semesters)
	state.EndFlow()

	sent, err := h.client.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      telegramID,
		Text:        presenter.ReportPage(state.Semesters, state.Page),
		ReplyMarkup: presenter.PagerKeyboard(state.Page, state.TotalPages()),
	})
	if err != nil {
		saveState(ctx, h.convs, h.logger, telegramID, state)
		return err
	}

	state.ReportMessageID = sent.MessageID
	saveState(ctx, h.convs, h.logger, telegramID, state)
	return nil
}

func (h *GradesHandler) sendProfilePhoto(ctx context.Context, telegramID int64, report *query.GradeReport) {
	_ = h.client.SendChatAction(ctx, telegramID, telegram.ChatActionUploadPhoto)

	if _, err := h.client.SendPhoto(ctx, telegram.SendPhotoParams{
		ChatID:  telegramID,
		Photo:   report.PhotoURL,
		Caption: report.PhotoCaption,
	}); err != nil {
		h.logger.Warn("profile photo failed, sending caption",
			slog.Int64("telegram_id", telegramID),
			slog.String("error", err.Error()))
		if report.PhotoCaption != "" {
			_, _ = h.client.SendText(ctx, telegramID, report.PhotoCaption)
		}
	}
}

// HandlePage reacts to the previous/next buttons under the report.
func (h *GradesHandler) HandlePage(ctx context.Context, cq *telegram.CallbackQuery) error {
	telegramID := cq.Message.Chat.ID

	state, err := h.convs.Load(ctx, user.TelegramID(telegramID))
	if err != nil {
		return fmt.Errorf("load conversation state: %w", err)
	}
	if state.TotalPages() == 0 {
		// Buttons under a report that has since been cleared.
		return nil
	}

	var moved bool
	switch cq.Data {
	case presenter.CallbackPagePrev:
		moved = state.PrevPage()
	case presenter.CallbackPageNext:
		moved = state.NextPage()
	}
	if !moved {
		return nil
	}

	h.render(ctx, telegramID, state)
	saveState(ctx, h.convs, h.logger, telegramID, state)
	return nil
}

// render edits the remembered report message in place, falling back to a
// fresh message when the old one is gone.
func (h *GradesHandler) render(ctx context.Context, telegramID int64, state *conversation.State) {
	text := presenter.ReportPage(state.Semesters, state.Page)
	keyboard := presenter.PagerKeyboard(state.Page, state.TotalPages())

	if state.ReportMessageID != 0 {
		_, err := h.client.EditMessageText(ctx, telegramID, state.ReportMessageID, text, "", keyboard)
		if err == nil {
			return
		}
		h.logger.Warn("report edit failed, sending new message",
			slog.Int64("telegram_id", telegramID),
			slog.String("error", err.Error()))
	}

	sent, err := h.client.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      telegramID,
		Text:        text,
		ReplyMarkup: keyboard,
	})
	if err != nil {
		h.logger.Error("report send failed",
			slog.Int64("telegram_id", telegramID),
			slog.String("error", err.Error()))
		return
	}
	state.ReportMessageID = sent.MessageID
}
