package query

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/portal"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/vault"
)

// memRepo is an in-memory user.Repository for handler tests.
type memRepo struct {
	records map[user.TelegramID]*user.Record
}

func (r *memRepo) FindByTelegramID(_ context.Context, id user.TelegramID) (*user.Record, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return rec, nil
}

func (r *memRepo) Insert(_ context.Context, rec *user.Record) error {
	r.records[rec.TelegramID] = rec
	return nil
}

func (r *memRepo) Delete(_ context.Context, id user.TelegramID) error {
	delete(r.records, id)
	return nil
}

// fakeGateway scripts portal responses and records the credentials it saw.
type fakeGateway struct {
	profile    *portal.Profile
	profileErr error
	grades     []string
	gradesErr  error
	seenCreds  portal.Credentials
}

func (g *fakeGateway) FetchProfile(_ context.Context, creds portal.Credentials) (*portal.Profile, error) {
	g.seenCreds = creds
	if g.profileErr != nil {
		return nil, g.profileErr
	}
	return g.profile, nil
}

func (g *fakeGateway) FetchGrades(_ context.Context, creds portal.Credentials) ([]string, error) {
	if g.gradesErr != nil {
		return nil, g.gradesErr
	}
	return g.grades, nil
}

func newTestVault(t *testing.T) *vault.Vault {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	v, err := vault.New(key)
	require.NoError(t, err)
	return v
}

func seedUser(t *testing.T, v *vault.Vault, repo *memRepo, telegramID int64) {
	t.Helper()
	enc := func(s string) []byte {
		b, err := v.Encrypt(s)
		require.NoError(t, err)
		return b
	}
	require.NoError(t, repo.Insert(context.Background(), &user.Record{
		ID:                    uuid.NewString(),
		TelegramID:            user.TelegramID(telegramID),
		EncryptedStudentID:    enc("NSR/2214/13"),
		EncryptedDisplayName:  enc("Abebe Kebede"),
		EncryptedCampus:       enc("Main"),
		EncryptedRegisteredAt: enc("2024-05-18"),
	}))
}

func TestGetGradeReport_FullRoundTrip(t *testing.T) {
	repo := &memRepo{records: map[user.TelegramID]*user.Record{}}
	v := newTestVault(t)
	seedUser(t, v, repo, 100)

	gw := &fakeGateway{
		profile: &portal.Profile{Kind: portal.ProfileWithPhoto, PhotoURL: "https://portal.wcu.edu.et/p.jpg", Caption: "Abebe Kebede"},
		grades: []string{
			"Course A  B+",
			"Academic Status: Promoted",
			"Course B  A",
			"Academic Status: Promoted",
		},
	}
	h := NewGetGradeReportHandler(repo, v, gw, slog.Default())

	report, err := h.Execute(context.Background(), 100, "portal-pass")
	require.NoError(t, err)

	// Credentials handed to the gateway are the decrypted stored fields
	// plus the per-request password.
	assert.Equal(t, "NSR/2214/13", gw.seenCreds.StudentID)
	assert.Equal(t, "Main", gw.seenCreds.Campus)
	assert.Equal(t, "portal-pass", gw.seenCreds.Password)

	assert.False(t, report.Graduate)
	assert.True(t, report.HasPhoto)
	assert.Equal(t, "https://portal.wcu.edu.et/p.jpg", report.PhotoURL)
	require.Len(t, report.Semesters, 2)
}

func TestGetGradeReport_GraduateShortCircuit(t *testing.T) {
	repo := &memRepo{records: map[user.TelegramID]*user.Record{}}
	v := newTestVault(t)
	seedUser(t, v, repo, 101)

	gw := &fakeGateway{
		profile:   &portal.Profile{Kind: portal.ProfileGraduate},
		gradesErr: errors.New("grades must not be fetched before the graduate check"),
	}
	h := NewGetGradeReportHandler(repo, v, gw, slog.Default())

	report, err := h.Execute(context.Background(), 101, "x")
	require.NoError(t, err)
	assert.True(t, report.Graduate)
	assert.Empty(t, report.Semesters)
}

func TestGetGradeReport_Unregistered(t *testing.T) {
	h := NewGetGradeReportHandler(&memRepo{records: map[user.TelegramID]*user.Record{}}, newTestVault(t), &fakeGateway{}, slog.Default())

	_, err := h.Execute(context.Background(), 999, "x")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestGetGradeReport_GatewayFailure(t *testing.T) {
	repo := &memRepo{records: map[user.TelegramID]*user.Record{}}
	v := newTestVault(t)
	seedUser(t, v, repo, 102)

	gwErr := &portal.GatewayError{Op: "login", Err: errors.New("wrong password")}
	h := NewGetGradeReportHandler(repo, v, &fakeGateway{profileErr: gwErr}, slog.Default())

	_, err := h.Execute(context.Background(), 102, "bad")
	var ge *portal.GatewayError
	assert.ErrorAs(t, err, &ge)
}

func TestGetProfile(t *testing.T) {
	repo := &memRepo{records: map[user.TelegramID]*user.Record{}}
	v := newTestVault(t)
	seedUser(t, v, repo, 103)

	h := NewGetProfileHandler(repo, v)
	view, err := h.Execute(context.Background(), 103)
	require.NoError(t, err)

	assert.Equal(t, int64(103), view.TelegramID)
	assert.Equal(t, "NSR/2214/13", view.StudentID)
	assert.Equal(t, "Abebe Kebede", view.DisplayName)
	assert.Equal(t, "Main", view.Campus)
	assert.Equal(t, "2024-05-18", view.RegisteredAt)
}

func TestGetProfile_Unregistered(t *testing.T) {
	h := NewGetProfileHandler(&memRepo{records: map[user.TelegramID]*user.Record{}}, newTestVault(t))
	_, err := h.Execute(context.Background(), 1)
	assert.ErrorIs(t, err, user.ErrNotFound)
}
