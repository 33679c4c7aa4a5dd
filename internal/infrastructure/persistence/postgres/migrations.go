package postgres

// GetMigrations returns all embedded migrations in apply order.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_users",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
	}
}

// Registered students. The four *_enc columns hold independent ciphertext
// blobs; nothing in this table is readable without the vault key.
const migration001Up = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	telegram_id BIGINT NOT NULL UNIQUE,
	student_id_enc BYTEA NOT NULL,
	display_name_enc BYTEA NOT NULL,
	campus_enc BYTEA NOT NULL,
	registered_at_enc BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_telegram_id ON users (telegram_id);
`

const migration001Down = `
DROP TABLE IF EXISTS users;
`
