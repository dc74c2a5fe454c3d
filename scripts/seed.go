// Package scripts populates initial data the application needs at
// startup. Seeds are tracked the same way migrations are, so running
// the seeder against an existing database is a no-op.
package scripts

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vkotliar/profile-backend/internal/auth"
	"github.com/vkotliar/profile-backend/internal/constants"
	"github.com/vkotliar/profile-backend/internal/database"
)

// Seeder runs the seed functions that have not been recorded yet.
type Seeder struct {
	db          *database.Pool
	passwordCfg *auth.PasswordConfig
}

// NewSeeder builds a seeder. passwordCfg is used to hash seeded
// credentials with the same parameters the application uses.
func NewSeeder(db *database.Pool, passwordCfg *auth.PasswordConfig) *Seeder {
	return &Seeder{db: db, passwordCfg: passwordCfg}
}

// SeedDatabase ensures the seeds tracking table and runs every seed
// not yet recorded in it.
func (s *Seeder) SeedDatabase(ctx context.Context) error {
	log.Info().Msg("Seeding database")
	started := time.Now()

	if err := s.createSeedsTable(ctx); err != nil {
		return fmt.Errorf("failed to create seeds table: %w", err)
	}

	done, err := s.getExecutedSeeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed seeds: %w", err)
	}

	seeds := []struct {
		Name     string
		SeedFunc func(ctx context.Context, tx *sql.Tx) error
	}{
		{"admin_user", s.seedAdminUser},
	}

	for _, seed := range seeds {
		if done[seed.Name] {
			log.Debug().Str("seed", seed.Name).Msg("Seed already executed")
			continue
		}
		log.Info().Str("seed", seed.Name).Msg("Running seed")
		if err := s.runSeed(ctx, seed.Name, seed.SeedFunc); err != nil {
			return err
		}
	}

	log.Info().
		Dur("duration", time.Since(started)).
		Msg("Database seeding completed")
	return nil
}

func (s *Seeder) createSeedsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS seeds (
			name VARCHAR(255) PRIMARY KEY,
			executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// getExecutedSeeds returns the set of recorded seed names.
func (s *Seeder) getExecutedSeeds(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM seeds`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	done := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		done[name] = true
	}
	return done, rows.Err()
}

// runSeed executes a seed and its tracking record in one transaction.
func (s *Seeder) runSeed(ctx context.Context, name string, seedFunc func(ctx context.Context, tx *sql.Tx) error) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := seedFunc(ctx, tx); err != nil {
			return fmt.Errorf("seed %s failed: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO seeds (name) VALUES ($1)`, name); err != nil {
			return fmt.Errorf("failed to record seed: %w", err)
		}
		return nil
	})
}

// seedAdminUser bootstraps the first administrator from ADMIN_EMAIL and
// ADMIN_PASSWORD. Without those variables, or with the account already
// present, the seed does nothing.
func (s *Seeder) seedAdminUser(ctx context.Context, tx *sql.Tx) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Info().Msg("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin user seed")
		return nil
	}

	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "Administrator"
	}

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`
	if err := tx.QueryRowContext(ctx, checkQuery, email).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check for existing admin user: %w", err)
	}
	if exists {
		log.Info().Msg("Admin user already exists, skipping seed")
		return nil
	}

	hash, salt, err := auth.HashPassword(password, s.passwordCfg)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now()
	insertQuery := `
        INSERT INTO users (name, email, password_hash, salt, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	if _, err := tx.ExecContext(ctx, insertQuery, name, email, hash, salt, constants.RoleAdmin, now, now); err != nil {
		return fmt.Errorf("failed to insert admin user: %w", err)
	}

	log.Info().Msg("Admin user seeded")
	return nil
}
