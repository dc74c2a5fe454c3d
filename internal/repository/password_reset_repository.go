package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vkotliar/profile-backend/internal/database"
	"github.com/vkotliar/profile-backend/internal/models"
	"github.com/vkotliar/profile-backend/internal/utils"
)

// PasswordResetRepository handles storage of staged password changes.
type PasswordResetRepository interface {
	// Create stores a new reset token, superseding any earlier tokens the
	// user still has outstanding.
	Create(ctx context.Context, token *models.PasswordResetToken) error

	// ConsumeAndChangePassword atomically consumes the token identified by
	// tokenHash and applies its staged password to the owning user. Exactly
	// one caller can succeed per token; concurrent attempts observe the
	// token as already used. Returns the affected user's ID.
	ConsumeAndChangePassword(ctx context.Context, tokenHash string) (int64, error)

	// DeleteByUserID removes all reset tokens belonging to a user.
	DeleteByUserID(ctx context.Context, userID int64) error

	// DeleteExpired purges tokens past their expiry and returns how many
	// rows were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}

// PostgresPasswordResetRepository is a PostgreSQL implementation of PasswordResetRepository
type PostgresPasswordResetRepository struct {
	db *database.Pool
}

// NewPasswordResetRepository creates a new PasswordResetRepository
func NewPasswordResetRepository(db *database.Pool) PasswordResetRepository {
	return &PostgresPasswordResetRepository{
		db: db,
	}
}

// Create stores a new password reset token. Issuing a token invalidates any
// previous unconsumed tokens for the same user, so those are removed in the
// same transaction.
func (r *PostgresPasswordResetRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	startTime := time.Now()

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	err := r.db.Transaction(ctx, func(tx *sql.Tx) error {
		deleteQuery := "DELETE FROM password_reset_tokens WHERE user_id = $1 AND used_at IS NULL"
		if _, err := tx.ExecContext(ctx, deleteQuery, token.UserID); err != nil {
			return fmt.Errorf("failed to supersede previous tokens: %w", err)
		}

		insertQuery := `
            INSERT INTO password_reset_tokens (token_hash, user_id, new_password_hash, new_salt, expires_at, created_at)
            VALUES ($1, $2, $3, $4, $5, $6)
        `
		_, err := tx.ExecContext(
			ctx,
			insertQuery,
			token.TokenHash,
			token.UserID,
			token.NewPasswordHash,
			token.NewSalt,
			token.ExpiresAt,
			token.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create password reset token: %w", err)
		}
		return nil
	})

	utils.LogDBQuery(
		"INSERT INTO password_reset_tokens",
		[]interface{}{"[REDACTED]", token.UserID, "[REDACTED]", "[REDACTED]", token.ExpiresAt, token.CreatedAt},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return err
	}

	log.Info().
		Int64("user_id", token.UserID).
		Time("expires_at", token.ExpiresAt).
		Msg("Password reset token issued")

	return nil
}

// ConsumeAndChangePassword consumes a token and applies its staged password
// in a single transaction. The token row is locked before inspection so two
// concurrent confirmation attempts serialize: the first commits the password
// change, the second finds used_at set and fails.
func (r *PostgresPasswordResetRepository) ConsumeAndChangePassword(ctx context.Context, tokenHash string) (int64, error) {
	startTime := time.Now()

	var userID int64
	err := r.db.Transaction(ctx, func(tx *sql.Tx) error {
		selectQuery := `
            SELECT user_id, new_password_hash, new_salt, expires_at, used_at
            FROM password_reset_tokens
            WHERE token_hash = $1
            FOR UPDATE
        `

		var token models.PasswordResetToken
		err := tx.QueryRowContext(ctx, selectQuery, tokenHash).Scan(
			&token.UserID,
			&token.NewPasswordHash,
			&token.NewSalt,
			&token.ExpiresAt,
			&token.UsedAt,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.ErrInvalidToken
			}
			return fmt.Errorf("failed to query password reset token: %w", err)
		}

		if token.IsUsed() {
			return utils.ErrUsedToken
		}
		if token.IsExpired() {
			return utils.ErrExpiredToken
		}

		now := time.Now()
		consumeQuery := `
            UPDATE password_reset_tokens
            SET used_at = $1
            WHERE token_hash = $2 AND used_at IS NULL
        `
		result, err := tx.ExecContext(ctx, consumeQuery, now, tokenHash)
		if err != nil {
			return fmt.Errorf("failed to consume password reset token: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			// Lost the race despite the row lock; treat as already used.
			return utils.ErrUsedToken
		}

		passwordQuery := `
            UPDATE users
            SET password_hash = $1, salt = $2, updated_at = $3
            WHERE user_id = $4
        `
		if _, err := tx.ExecContext(ctx, passwordQuery, token.NewPasswordHash, token.NewSalt, now, token.UserID); err != nil {
			return fmt.Errorf("failed to apply staged password: %w", err)
		}

		// Invalidate any other outstanding tokens for this user.
		cleanupQuery := `
            DELETE FROM password_reset_tokens
            WHERE user_id = $1 AND token_hash <> $2
        `
		if _, err := tx.ExecContext(ctx, cleanupQuery, token.UserID, tokenHash); err != nil {
			return fmt.Errorf("failed to remove superseded tokens: %w", err)
		}

		userID = token.UserID
		return nil
	})

	utils.LogDBQuery(
		"SELECT ... FOR UPDATE; UPDATE password_reset_tokens; UPDATE users",
		[]interface{}{"[REDACTED]"},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return 0, err
	}

	log.Info().
		Int64("user_id", userID).
		Msg("Password reset token consumed, password changed")

	return userID, nil
}

// DeleteByUserID removes all reset tokens belonging to a user
func (r *PostgresPasswordResetRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	startTime := time.Now()

	query := "DELETE FROM password_reset_tokens WHERE user_id = $1"
	_, err := r.db.ExecContext(ctx, query, userID)

	utils.LogDBQuery(
		query,
		[]interface{}{userID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to delete password reset tokens for user %d: %w", userID, err)
	}

	return nil
}

// DeleteExpired purges tokens past their expiry
func (r *PostgresPasswordResetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	startTime := time.Now()

	query := "DELETE FROM password_reset_tokens WHERE expires_at < $1"

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, now)

	utils.LogDBQuery(
		query,
		[]interface{}{now},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return 0, fmt.Errorf("failed to delete expired password reset tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected > 0 {
		log.Info().
			Int64("count", rowsAffected).
			Msg("Expired password reset tokens purged")
	}

	return rowsAffected, nil
}
