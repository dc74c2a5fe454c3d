// Package repository implements data access for the application's domain
// models on top of PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/vkotliar/profile-backend/internal/constants"
	"github.com/vkotliar/profile-backend/internal/database"
	"github.com/vkotliar/profile-backend/internal/models"
	"github.com/vkotliar/profile-backend/internal/utils"
)

// userColumns is the select list shared by user queries.
const userColumns = "user_id, name, email, phone, password_hash, salt, photo_url, role, created_at, updated_at"

// UserRepository is the persistence boundary for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, update *models.ProfileUpdate) (*models.User, error)
	SetPhotoURL(ctx context.Context, id int64, photoURL string) error
	UpdateRole(ctx context.Context, id int64, role string) error
	List(ctx context.Context, offset, limit int) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// PostgresUserRepository implements UserRepository on the shared pool.
type PostgresUserRepository struct {
	db *database.Pool
}

func NewUserRepository(db *database.Pool) UserRepository {
	return &PostgresUserRepository{db: db}
}

// scanUser reads one user row, mapping nullable columns onto their
// zero values.
func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	var phone, photoURL sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&phone,
		&user.PasswordHash,
		&user.Salt,
		&photoURL,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Phone = phone.String
	user.PhotoURL = photoURL.String
	return user, nil
}

// oneRowOr404 converts a zero-rows-affected update into a not-found
// error for the given user.
func oneRowOr404(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return utils.NewNotFoundError("User", id)
	}
	return nil
}

// Create inserts the user and fills in its generated ID. A duplicate
// email surfaces as a conflict error.
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	started := time.Now()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = constants.RoleUser
	}

	query := `
        INSERT INTO users (name, email, phone, password_hash, salt, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING user_id
    `
	err := r.db.QueryRowContext(ctx, query,
		user.Name,
		user.Email,
		nullIfEmpty(user.Phone),
		user.PasswordHash,
		user.Salt,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	utils.LogDBQuery(query,
		[]interface{}{user.Name, user.Email, user.Phone, "[REDACTED]", "[REDACTED]", user.Role, user.CreatedAt, user.UpdatedAt},
		time.Since(started), err)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) &&
			string(pqErr.Code) == constants.PGErrUniqueViolation &&
			strings.Contains(pqErr.Constraint, "email") {
			return utils.NewDuplicateError("User", "email", user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("User created")
	return nil
}

// GetByID fetches a single user by primary key.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	started := time.Now()

	query := fmt.Sprintf(`
        SELECT %s
        FROM users
        WHERE user_id = $1
    `, userColumns)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	utils.LogDBQuery(query, []interface{}{id}, time.Since(started), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetByEmail fetches a user by email, case-insensitively.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	started := time.Now()

	query := fmt.Sprintf(`
        SELECT %s
        FROM users
        WHERE LOWER(email) = LOWER($1)
    `, userColumns)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	utils.LogDBQuery(query, []interface{}{email}, time.Since(started), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", fmt.Sprintf("email=%s", email))
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a partial profile update and returns the
// resulting user. Absent fields keep their stored values.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id int64, update *models.ProfileUpdate) (*models.User, error) {
	started := time.Now()

	query := fmt.Sprintf(`
        UPDATE users
        SET name = COALESCE($1, name),
            phone = COALESCE($2, phone),
            updated_at = $3
        WHERE user_id = $4
        RETURNING %s
    `, userColumns)

	now := time.Now()
	user, err := scanUser(r.db.QueryRowContext(ctx, query, update.Name, update.Phone, now, id))
	utils.LogDBQuery(query, []interface{}{update.Name, update.Phone, now, id}, time.Since(started), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	log.Info().Int64("user_id", id).Msg("User profile updated")
	return user, nil
}

// SetPhotoURL stores the public URL of the user's profile photo.
func (r *PostgresUserRepository) SetPhotoURL(ctx context.Context, id int64, photoURL string) error {
	started := time.Now()

	query := `
        UPDATE users
        SET photo_url = $1, updated_at = $2
        WHERE user_id = $3
    `
	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, photoURL, now, id)
	utils.LogDBQuery(query, []interface{}{photoURL, now, id}, time.Since(started), err)

	if err != nil {
		return fmt.Errorf("failed to set photo URL: %w", err)
	}
	if err := oneRowOr404(result, id); err != nil {
		return err
	}

	log.Info().
		Int64("user_id", id).
		Str("photo_url", photoURL).
		Msg("User photo updated")
	return nil
}

// UpdateRole changes the user's role.
func (r *PostgresUserRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	started := time.Now()

	query := `
        UPDATE users
        SET role = $1, updated_at = $2
        WHERE user_id = $3
    `
	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, role, now, id)
	utils.LogDBQuery(query, []interface{}{role, now, id}, time.Since(started), err)

	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if err := oneRowOr404(result, id); err != nil {
		return err
	}

	log.Info().
		Int64("user_id", id).
		Str("role", role).
		Msg("User role updated")
	return nil
}

// List returns one page of users, newest first.
func (r *PostgresUserRepository) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	started := time.Now()

	query := fmt.Sprintf(`
        SELECT %s
        FROM users
        ORDER BY created_at DESC, user_id DESC
        LIMIT $1 OFFSET $2
    `, userColumns)

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	utils.LogDBQuery(query, []interface{}{limit, offset}, time.Since(started), err)

	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// Count returns the total number of accounts.
func (r *PostgresUserRepository) Count(ctx context.Context) (int, error) {
	started := time.Now()

	query := "SELECT COUNT(*) FROM users"
	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	utils.LogDBQuery(query, nil, time.Since(started), err)

	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// ExistsByEmail reports whether an account with email exists,
// case-insensitively.
func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	started := time.Now()

	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	utils.LogDBQuery(query, []interface{}{email}, time.Since(started), err)

	if err != nil {
		return false, fmt.Errorf("failed to check if email exists: %w", err)
	}
	return exists, nil
}

// Delete removes the account. Reset tokens go with it through the
// ON DELETE CASCADE on password_reset_tokens.
func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	started := time.Now()

	query := "DELETE FROM users WHERE user_id = $1"
	result, err := r.db.ExecContext(ctx, query, id)
	utils.LogDBQuery(query, []interface{}{id}, time.Since(started), err)

	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if err := oneRowOr404(result, id); err != nil {
		return err
	}

	log.Info().Int64("user_id", id).Msg("User deleted")
	return nil
}

// nullIfEmpty maps an empty string to SQL NULL.
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
