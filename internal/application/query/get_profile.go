// Package query contains application-layer read operations.
package query

import (
	"context"
	"fmt"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/vault"
)

// ProfileView is the decrypted registration data shown to the student.
type ProfileView struct {
	TelegramID   int64
	StudentID    string
	DisplayName  string
	Campus       string
	RegisteredAt string
}

// GetProfileHandler loads and decrypts the stored registration fields.
type GetProfileHandler struct {
	users user.Repository
	vault *vault.Vault
}

// NewGetProfileHandler creates the handler.
func NewGetProfileHandler(users user.Repository, v *vault.Vault) *GetProfileHandler {
	return &GetProfileHandler{users: users, vault: v}
}

// Execute returns the profile view for a Telegram account.
// Returns user.ErrNotFound when the account is not registered.
func (h *GetProfileHandler) Execute(ctx context.Context, telegramID int64) (*ProfileView, error) {
	rec, err := h.users.FindByTelegramID(ctx, user.TelegramID(telegramID))
	if err != nil {
		return nil, err
	}

	studentID, err := h.vault.Decrypt(rec.EncryptedStudentID)
	if err != nil {
		return nil, fmt.Errorf("decrypt student id: %w", err)
	}
	name, err := h.vault.Decrypt(rec.EncryptedDisplayName)
	if err != nil {
		return nil, fmt.Errorf("decrypt display name: %w", err)
	}
	campus, err := h.vault.Decrypt(rec.EncryptedCampus)
	if err != nil {
		return nil, fmt.Errorf("decrypt campus: %w", err)
	}
	registeredAt, err := h.vault.Decrypt(rec.EncryptedRegisteredAt)
	if err != nil {
		return nil, fmt.Errorf("decrypt registration date: %w", err)
	}

	return &ProfileView{
		TelegramID:   telegramID,
		StudentID:    studentID,
		DisplayName:  name,
		Campus:       campus,
		RegisteredAt: registeredAt,
	}, nil
}
