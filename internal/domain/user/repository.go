package user

import "context"

// Repository persists registered students, keyed by Telegram ID.
type Repository interface {
	// FindByTelegramID loads the record for a Telegram account.
	// Returns ErrNotFound when the account is not registered.
	FindByTelegramID(ctx context.Context, id TelegramID) (*Record, error)

	// Insert stores a new record atomically.
	// Returns ErrAlreadyRegistered when a record for the same Telegram ID exists.
	Insert(ctx context.Context, rec *Record) error

	// Delete removes the record for a Telegram account.
	// Returns ErrNotFound when there is nothing to delete.
	Delete(ctx context.Context, id TelegramID) error
}
