package migrations

import (
	"context"
	"database/sql"
)

// createUsersTable creates the users table.
// Email is the login key and lookups are case-insensitive, so uniqueness
// is enforced on LOWER(email); the raw-column UNIQUE alone would let
// concurrent registrations differing only in case both commit.
func createUsersTable() Migration {
	return Migration{
		Name:        "create_users_table",
		Description: "Creates the users table",
		TableName:   "users",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS users (
					user_id BIGSERIAL PRIMARY KEY,
					name VARCHAR(100) NOT NULL,
					email VARCHAR(255) NOT NULL UNIQUE,
					phone VARCHAR(32),
					password_hash VARCHAR(255) NOT NULL,
					salt VARCHAR(255) NOT NULL,
					photo_url VARCHAR(512),
					role VARCHAR(20) NOT NULL DEFAULT 'user',
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				);
				CREATE UNIQUE INDEX IF NOT EXISTS idx_users_lower_email ON users(LOWER(email));
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createPasswordResetTokensTable creates the password_reset_tokens table.
// Tokens are stored hashed together with the staged replacement credentials,
// so a database leak exposes neither the token nor the pending password.
func createPasswordResetTokensTable() Migration {
	return Migration{
		Name:        "create_password_reset_tokens_table",
		Description: "Creates the password_reset_tokens table",
		TableName:   "password_reset_tokens",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS password_reset_tokens (
					token_hash VARCHAR(255) PRIMARY KEY,
					user_id BIGINT NOT NULL,
					new_password_hash VARCHAR(255) NOT NULL,
					new_salt VARCHAR(255) NOT NULL,
					expires_at TIMESTAMP NOT NULL,
					used_at TIMESTAMP,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT fk_user FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
				);
				CREATE INDEX IF NOT EXISTS idx_reset_tokens_user_id ON password_reset_tokens(user_id);
				CREATE INDEX IF NOT EXISTS idx_reset_tokens_expires_at ON password_reset_tokens(expires_at);
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}
