package command

import (
	"context"
	"crypto/rand"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/vault"
)

// memRepo is an in-memory user.Repository for handler tests.
type memRepo struct {
	mu      sync.Mutex
	records map[user.TelegramID]*user.Record
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[user.TelegramID]*user.Record)}
}

func (r *memRepo) FindByTelegramID(_ context.Context, id user.TelegramID) (*user.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return rec, nil
}

func (r *memRepo) Insert(_ context.Context, rec *user.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.TelegramID]; ok {
		return user.ErrAlreadyRegistered
	}
	r.records[rec.TelegramID] = rec
	return nil
}

func (r *memRepo) Delete(_ context.Context, id user.TelegramID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.records, id)
	return nil
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

func TestRegisterUser_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	v := newTestVault(t)
	h := NewRegisterUserHandler(repo, v, slog.Default())

	rec, err := h.Execute(ctx, RegisterUserInput{
		TelegramID:  555,
		StudentID:   "nsr/2214/13",
		DisplayName: "Abebe Kebede",
		Campus:      "Durame",
	})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, user.TelegramID(555), rec.TelegramID)

	// Stored fields are ciphertext, not the plaintext values.
	assert.NotEqual(t, []byte("NSR/2214/13"), rec.EncryptedStudentID)
	assert.NotEqual(t, []byte("Abebe Kebede"), rec.EncryptedDisplayName)

	// Decrypting restores the normalized inputs.
	id, err := v.Decrypt(rec.EncryptedStudentID)
	require.NoError(t, err)
	assert.Equal(t, "NSR/2214/13", id)

	name, err := v.Decrypt(rec.EncryptedDisplayName)
	require.NoError(t, err)
	assert.Equal(t, "Abebe Kebede", name)

	campus, err := v.Decrypt(rec.EncryptedCampus)
	require.NoError(t, err)
	assert.Equal(t, "Durame", campus)

	date, err := v.Decrypt(rec.EncryptedRegisteredAt)
	require.NoError(t, err)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, date)
}

func TestRegisterUser_InvalidStudentID(t *testing.T) {
	h := NewRegisterUserHandler(newMemRepo(), newTestVault(t), slog.Default())

	_, err := h.Execute(context.Background(), RegisterUserInput{
		TelegramID:  1,
		StudentID:   "not-an-id",
		DisplayName: "X",
		Campus:      "Main",
	})
	assert.ErrorIs(t, err, user.ErrInvalidStudentID)
}

func TestRegisterUser_UnknownCampus(t *testing.T) {
	h := NewRegisterUserHandler(newMemRepo(), newTestVault(t), slog.Default())

	_, err := h.Execute(context.Background(), RegisterUserInput{
		TelegramID:  1,
		StudentID:   "NSR/2214/13",
		DisplayName: "X",
		Campus:      "Nowhere",
	})
	assert.ErrorIs(t, err, user.ErrInvalidCampus)
}

func TestRegisterUser_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	h := NewRegisterUserHandler(repo, newTestVault(t), slog.Default())

	in := RegisterUserInput{TelegramID: 9, StudentID: "NSR/0001/11", DisplayName: "A", Campus: "Main"}
	_, err := h.Execute(ctx, in)
	require.NoError(t, err)

	_, err = h.Execute(ctx, in)
	assert.ErrorIs(t, err, user.ErrAlreadyRegistered)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	reg := NewRegisterUserHandler(repo, newTestVault(t), slog.Default())
	del := NewDeleteAccountHandler(repo, slog.Default())

	_, err := reg.Execute(ctx, RegisterUserInput{TelegramID: 77, StudentID: "NSR/1111/12", DisplayName: "B", Campus: "Main"})
	require.NoError(t, err)

	require.NoError(t, del.Execute(ctx, 77))

	_, err = repo.FindByTelegramID(ctx, 77)
	assert.ErrorIs(t, err, user.ErrNotFound)

	// Deleting again reports not found.
	assert.ErrorIs(t, del.Execute(ctx, 77), user.ErrNotFound)
}
