package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/gradereport"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/portal"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/vault"
)

// GradeReport is the result of one grade-report fetch. When Graduate is
// set, no semesters or photo are present; the caller relays the portal's
// graduate notice instead.
type GradeReport struct {
	Graduate     bool
	HasPhoto     bool
	PhotoURL     string
	PhotoCaption string
	Semesters    []string
}

// GetGradeReportHandler drives the full portal round trip: decrypt the
// stored credentials, authenticate with the per-request password, fetch the
// profile (graduates short-circuit), fetch and partition the grades.
type GetGradeReportHandler struct {
	users   user.Repository
	vault   *vault.Vault
	gateway portal.Gateway
	logger  *slog.Logger
}

// NewGetGradeReportHandler creates the handler.
func NewGetGradeReportHandler(users user.Repository, v *vault.Vault, gw portal.Gateway, logger *slog.Logger) *GetGradeReportHandler {
	return &GetGradeReportHandler{users: users, vault: v, gateway: gw, logger: logger}
}

// Execute fetches the grade report. The password is used for this request
// only and never stored. Returns user.ErrNotFound when the account is not
// registered.
func (h *GetGradeReportHandler) Execute(ctx context.Context, telegramID int64, password string) (*GradeReport, error) {
	rec, err := h.users.FindByTelegramID(ctx, user.TelegramID(telegramID))
	if err != nil {
		return nil, err
	}

	studentID, err := h.vault.Decrypt(rec.EncryptedStudentID)
	if err != nil {
		return nil, fmt.Errorf("decrypt student id: %w", err)
	}
	campus, err := h.vault.Decrypt(rec.EncryptedCampus)
	if err != nil {
		return nil, fmt.Errorf("decrypt campus: %w", err)
	}

	creds := portal.Credentials{
		Campus:    campus,
		StudentID: studentID,
		Password:  password,
	}

	profile, err := h.gateway.FetchProfile(ctx, creds)
	if err != nil {
		return nil, err
	}

	report := &GradeReport{}
	switch profile.Kind {
	case portal.ProfileGraduate:
		report.Graduate = true
		return report, nil
	case portal.ProfileWithPhoto:
		report.HasPhoto = true
		report.PhotoURL = profile.PhotoURL
		report.PhotoCaption = profile.Caption
	}

	lines, err := h.gateway.FetchGrades(ctx, creds)
	if err != nil {
		return nil, err
	}

	report.Semesters = gradereport.Partition(lines)

	h.logger.Info("grade report fetched",
		slog.Int64("telegram_id", telegramID),
		slog.Int("semesters", len(report.Semesters)))

	return report, nil
}
