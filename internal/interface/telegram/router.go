// Package telegram wires incoming updates to the conversation handlers:
// the Router decides which handler sees an update, the Bot runs the
// polling loop around it.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/conversation"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
	tgclient "github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/infrastructure/external/telegram"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/interface/telegram/handler"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER
// Commands and callbacks route by name; free text routes by conversation
// stage first, then by menu label. Stage wins so a student whose portal
// password happens to equal a menu label still gets it treated as a
// password.
// ══════════════════════════════════════════════════════════════════════════════

const unknownInputText = "I didn't understand that. 🤷\n\n" +
	"Use the menu buttons, or send /start."

// Router dispatches one update to the right handler.
type Router struct {
	client       *tgclient.Client
	start        *handler.StartHandler
	registration *handler.RegistrationHandler
	grades       *handler.GradesHandler
	profile      *handler.ProfileHandler
	deletion     *handler.DeleteHandler
	convs        conversation.Store
	logger       *slog.Logger
}

// NewRouter creates the router.
func NewRouter(
	client *tgclient.Client,
	start *handler.StartHandler,
	registration *handler.RegistrationHandler,
	grades *handler.GradesHandler,
	profile *handler.ProfileHandler,
	deletion *handler.DeleteHandler,
	convs conversation.Store,
	logger *slog.Logger,
) *Router {
	return &Router{
		client:       client,
		start:        start,
		registration: registration,
		grades:       grades,
		profile:      profile,
		deletion:     deletion,
		convs:        convs,
		logger:       logger,
	}
}

// Route dispatches the update. Updates the bot has no use for (edits,
// group chatter) are dropped silently.
func (r *Router) Route(ctx context.Context, update *tgclient.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return r.routeCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		return r.routeMessage(ctx, update.Message)
	default:
		return nil
	}
}

func (r *Router) routeCallback(ctx context.Context, cq *tgclient.CallbackQuery) error {
	// Stop the button spinner whatever happens next.
	defer func() {
		if err := r.client.AnswerCallbackQuery(ctx, cq.ID, "", false); err != nil {
			r.logger.Debug("answer callback query", slog.String("error", err.Error()))
		}
	}()

	if cq.Message == nil || cq.Message.Chat == nil {
		// Inline-mode callbacks have no chat to act on.
		return nil
	}

	data := cq.Data
	switch {
	case data == presenter.CallbackAgree || data == presenter.CallbackDisagree:
		return r.registration.HandleConsent(ctx, cq)

	case strings.HasPrefix(data, presenter.CallbackCampusPrefix):
		return r.registration.HandleCampus(ctx, cq)

	case strings.HasPrefix(data, presenter.CallbackAnswerPrefix):
		answer, err := strconv.Atoi(strings.TrimPrefix(data, presenter.CallbackAnswerPrefix))
		if err != nil {
			return fmt.Errorf("malformed answer callback %q: %w", data, err)
		}
		return r.deletion.HandleAnswer(ctx, cq, answer)

	case data == presenter.CallbackPagePrev || data == presenter.CallbackPageNext:
		return r.grades.HandlePage(ctx, cq)

	default:
		r.logger.Debug("unroutable callback", slog.String("data", data))
		return nil
	}
}

func (r *Router) routeMessage(ctx context.Context, msg *tgclient.Message) error {
	if !tgclient.IsPrivateChat(msg) {
		return nil
	}

	switch tgclient.ExtractCommand(msg) {
	case "start":
		return r.start.HandleStart(ctx, msg)
	case "cancel":
		return r.start.HandleCancel(ctx, msg)
	case "policy":
		return r.start.HandlePolicy(ctx, msg)
	case "":
		return r.routeText(ctx, msg)
	default:
		_, err := r.client.SendText(ctx, msg.Chat.ID, unknownInputText)
		return err
	}
}

func (r *Router) routeText(ctx context.Context, msg *tgclient.Message) error {
	state, err := r.convs.Load(ctx, user.TelegramID(msg.Chat.ID))
	if err != nil {
		return fmt.Errorf("load conversation state: %w", err)
	}

	switch state.Stage {
	case conversation.StageAwaitingStudentID:
		return r.registration.HandleStudentID(ctx, msg)
	case conversation.StageAwaitingPassword:
		return r.grades.HandlePassword(ctx, msg)
	}

	switch msg.Text {
	case presenter.MenuGradeReport:
		return r.grades.HandleMenu(ctx, msg)
	case presenter.MenuViewProfile:
		return r.profile.HandleMenu(ctx, msg)
	case presenter.MenuDeleteAccount:
		return r.deletion.HandleMenu(ctx, msg)
	}

	_, err = r.client.SendText(ctx, msg.Chat.ID, unknownInputText)
	return err
}
