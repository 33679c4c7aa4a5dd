// Package command contains application-layer write operations.
package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/vault"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/pkg/timeutil"
)

// RegisterUserInput carries everything collected during the registration
// dialogue. DisplayName comes from the Telegram profile, not user input.
type RegisterUserInput struct {
	TelegramID  int64
	StudentID   string
	DisplayName string
	Campus      string
}

// RegisterUserHandler encrypts the collected fields and stores the record.
type RegisterUserHandler struct {
	users  user.Repository
	vault  *vault.Vault
	logger *slog.Logger
}

// NewRegisterUserHandler creates the handler.
func NewRegisterUserHandler(users user.Repository, v *vault.Vault, logger *slog.Logger) *RegisterUserHandler {
	return &RegisterUserHandler{users: users, vault: v, logger: logger}
}

// Execute validates the student id, seals all four fields independently and
// inserts the record in a single atomic write. The registration date is
// today in Ethiopia time.
func (h *RegisterUserHandler) Execute(ctx context.Context, in RegisterUserInput) (*user.Record, error) {
	id := user.StudentID(in.StudentID).Normalized()
	if !id.IsValid() {
		return nil, user.ErrInvalidStudentID
	}
	if !user.Campus(in.Campus).IsValid() {
		return nil, user.ErrInvalidCampus
	}

	encStudentID, err := h.vault.Encrypt(id.String())
	if err != nil {
		return nil, fmt.Errorf("encrypt student id: %w", err)
	}
	encName, err := h.vault.Encrypt(in.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("encrypt display name: %w", err)
	}
	encCampus, err := h.vault.Encrypt(in.Campus)
	if err != nil {
		return nil, fmt.Errorf("encrypt campus: %w", err)
	}
	encDate, err := h.vault.Encrypt(timeutil.Today())
	if err != nil {
		return nil, fmt.Errorf("encrypt registration date: %w", err)
	}

	rec := &user.Record{
		ID:                    uuid.NewString(),
		TelegramID:            user.TelegramID(in.TelegramID),
		EncryptedStudentID:    encStudentID,
		EncryptedDisplayName:  encName,
		EncryptedCampus:       encCampus,
		EncryptedRegisteredAt: encDate,
	}

	if err := h.users.Insert(ctx, rec); err != nil {
		return nil, err
	}

	h.logger.Info("user registered",
		slog.Int64("telegram_id", in.TelegramID),
		slog.String("campus", in.Campus))

	return rec, nil
}
