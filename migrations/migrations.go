// Package migrations creates and evolves the database schema. Applied
// migrations are recorded in a migrations table so startup is
// idempotent: tables that already exist are recorded rather than
// re-created, and missing profile columns are added in place.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vkotliar/profile-backend/internal/database"
)

// Migration is one tracked schema change. TableName is used for the
// existence check before the SQL runs.
type Migration struct {
	Name        string
	Description string
	TableName   string
	RunSQL      func(ctx context.Context, tx *sql.Tx) error
}

// Migrator applies pending migrations against a connection pool.
type Migrator struct {
	db *database.Pool
}

func NewMigrator(db *database.Pool) *Migrator {
	return &Migrator{db: db}
}

// RunMigrations brings the schema up to date: it ensures the tracking
// table, applies every migration not yet recorded, and backfills the
// profile columns added after the initial schema.
func (m *Migrator) RunMigrations(ctx context.Context) error {
	log.Info().Msg("Running database migrations")
	started := time.Now()

	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.getExecutedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed migrations: %w", err)
	}

	all := GetMigrations()
	ran := 0

	for _, migration := range all {
		if applied[migration.Name] {
			continue
		}

		// A table created outside the tracking table (an older
		// deployment, a manual restore) is recorded, not re-created.
		exists, err := m.tableExists(ctx, migration.TableName)
		if err != nil {
			return fmt.Errorf("failed to check if table %s exists: %w", migration.TableName, err)
		}
		if exists {
			log.Info().
				Str("migration", migration.Name).
				Str("table", migration.TableName).
				Msg("Table already exists, recording migration as completed")
			if err := m.recordMigration(ctx, migration.Name, migration.Description); err != nil {
				return fmt.Errorf("failed to record existing migration: %w", err)
			}
			continue
		}

		log.Info().
			Str("migration", migration.Name).
			Str("table", migration.TableName).
			Msg("Running migration")
		if err := m.runMigration(ctx, migration); err != nil {
			return err
		}
		ran++
	}

	log.Info().
		Int("migrations_run", ran).
		Int("total_migrations", len(all)).
		Dur("duration", time.Since(started)).
		Msg("Database migrations completed")

	// Column backfill failures are logged rather than returned so an
	// already-migrated deployment still starts.
	if err := m.ensureUserProfileColumns(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to ensure user profile columns")
	}

	return nil
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			name VARCHAR(255) PRIMARY KEY,
			description TEXT,
			executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := m.db.ExecContext(ctx, query)
	return err
}

// getExecutedMigrations returns the set of recorded migration names.
func (m *Migrator) getExecutedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT name FROM migrations`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

// runMigration executes the migration SQL and its tracking record in
// one transaction, so a failed migration leaves no record behind.
func (m *Migrator) runMigration(ctx context.Context, migration Migration) error {
	return m.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := migration.RunSQL(ctx, tx); err != nil {
			return fmt.Errorf("migration %s failed: %w", migration.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO migrations (name, description) VALUES ($1, $2)`,
			migration.Name, migration.Description); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
		return nil
	})
}

// recordMigration marks a migration as applied without running its SQL.
func (m *Migrator) recordMigration(ctx context.Context, name, description string) error {
	if _, err := m.db.ExecContext(ctx,
		`INSERT INTO migrations (name, description) VALUES ($1, $2)`,
		name, description); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

// tableExists reports whether tableName exists in the current schema.
func (m *Migrator) tableExists(ctx context.Context, tableName string) (bool, error) {
	query := `
        SELECT EXISTS(SELECT 1
        FROM information_schema.tables
        WHERE table_schema = current_schema()
        AND table_name = $1)
    `
	var exists bool
	err := m.db.QueryRowContext(ctx, query, tableName).Scan(&exists)
	return exists, err
}

// ensureUserProfileColumns adds the users columns introduced after the
// initial schema (phone, photo_url, role) when they are missing, which
// upgrades older databases without a dedicated migration.
func (m *Migrator) ensureUserProfileColumns(ctx context.Context) error {
	columns := []struct {
		name     string
		alterSQL string
	}{
		{"phone", `ALTER TABLE users ADD COLUMN phone VARCHAR(32)`},
		{"photo_url", `ALTER TABLE users ADD COLUMN photo_url VARCHAR(512)`},
		{"role", `ALTER TABLE users ADD COLUMN role VARCHAR(20) DEFAULT 'user' NOT NULL`},
	}

	existsQuery := `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.columns
			WHERE table_name = 'users'
			AND column_name = $1
		)
	`

	for _, col := range columns {
		var present bool
		if err := m.db.QueryRowContext(ctx, existsQuery, col.name).Scan(&present); err != nil {
			return fmt.Errorf("failed to check if %s column exists: %w", col.name, err)
		}
		if present {
			continue
		}

		log.Info().Str("column", col.name).Msg("Adding missing column to users table")
		if _, err := m.db.ExecContext(ctx, col.alterSQL); err != nil {
			return fmt.Errorf("failed to add %s column: %w", col.name, err)
		}
	}
	return nil
}

// GetMigrations lists every migration in apply order.
func GetMigrations() []Migration {
	return []Migration{
		createUsersTable(),
		createPasswordResetTokensTable(),
	}
}
