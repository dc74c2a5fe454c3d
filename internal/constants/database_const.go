// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file defines table names and PostgreSQL error codes used
// by the repository layer. Repositories reference these instead of embedding
// string literals so that schema renames touch one place.
package constants

// Database table names.
const (
	// TableUsers is the users table.
	TableUsers = "users"

	// TablePasswordResetTokens is the staged password change tokens table.
	TablePasswordResetTokens = "password_reset_tokens"

	// TableMigrations tracks applied schema migrations.
	TableMigrations = "migrations"
)

// PostgreSQL error codes relevant to the repository layer.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html.
const (
	// PGErrUniqueViolation is raised on unique constraint violations.
	PGErrUniqueViolation = "23505"

	// PGErrForeignKeyViolation is raised on foreign key constraint violations.
	PGErrForeignKeyViolation = "23503"

	// PGErrNotNullViolation is raised on not-null constraint violations.
	PGErrNotNullViolation = "23502"
)
