package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
)

// UserRepository is the PostgreSQL implementation of user.Repository.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates the repository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

const userColumns = `id, telegram_id, student_id_enc, display_name_enc, campus_enc, registered_at_enc, created_at`

// FindByTelegramID implements user.Repository.
func (r *UserRepository) FindByTelegramID(ctx context.Context, id user.TelegramID) (*user.Record, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	rec, err := scanUser(r.conn.QueryRow(ctx, query, id.Int64()))
	if err != nil {
		if IsNoRows(err) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("find user by telegram id: %w", err)
	}
	return rec, nil
}

// Insert implements user.Repository.
func (r *UserRepository) Insert(ctx context.Context, rec *user.Record) error {
	query := `
		INSERT INTO users (id, telegram_id, student_id_enc, display_name_enc, campus_enc, registered_at_enc)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.conn.Exec(ctx, query,
		rec.ID,
		rec.TelegramID.Int64(),
		rec.EncryptedStudentID,
		rec.EncryptedDisplayName,
		rec.EncryptedCampus,
		rec.EncryptedRegisteredAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return user.ErrAlreadyRegistered
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Delete implements user.Repository.
func (r *UserRepository) Delete(ctx context.Context, id user.TelegramID) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM users WHERE telegram_id = $1`, id.Int64())
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// Count returns the number of registered users, for startup logging.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// scanUser scans one user row.
func scanUser(row pgx.Row) (*user.Record, error) {
	var rec user.Record
	var telegramID int64

	err := row.Scan(
		&rec.ID,
		&telegramID,
		&rec.EncryptedStudentID,
		&rec.EncryptedDisplayName,
		&rec.EncryptedCampus,
		&rec.EncryptedRegisteredAt,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.TelegramID = user.TelegramID(telegramID)
	return &rec, nil
}
