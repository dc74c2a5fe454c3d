// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default configuration values used when explicit
// configuration is not provided. Centralizing them keeps the config loader and
// its tests in agreement about fallback behavior.
package constants

import "time"

// Server defaults.
const (
	// DefaultServerHost is the interface the HTTP server binds to.
	DefaultServerHost = "0.0.0.0"

	// DefaultServerPort is the TCP port the HTTP server listens on.
	DefaultServerPort = 8080

	// DefaultReadTimeout bounds how long the server waits reading a request.
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds how long the server spends writing a response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout bounds how long idle keep-alive connections are held.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown on termination signals.
	DefaultShutdownTimeout = 15 * time.Second
)

// Database defaults.
const (
	// DefaultDBHost is the default PostgreSQL host.
	DefaultDBHost = "localhost"

	// DefaultDBPort is the default PostgreSQL port.
	DefaultDBPort = 5432

	// DefaultDBName is the default database name.
	DefaultDBName = "profiles"

	// DefaultMaxOpenConns caps concurrent database connections.
	DefaultMaxOpenConns = 25

	// DefaultMaxIdleConns caps idle pooled connections.
	DefaultMaxIdleConns = 10

	// DefaultConnMaxLifetime bounds how long a pooled connection may be reused.
	DefaultConnMaxLifetime = 5 * time.Minute

	// DefaultConnMaxIdleTime bounds how long a connection may sit idle.
	DefaultConnMaxIdleTime = 5 * time.Minute
)

// Pagination defaults.
const (
	// DefaultPage is the first page of paginated listings.
	DefaultPage = 1

	// DefaultPageSize is the number of items per page when unspecified.
	DefaultPageSize = 20

	// MinPageSize is the smallest page size a client may request.
	MinPageSize = 1

	// MaxPageSize caps the page size a client may request.
	MaxPageSize = 100
)

// Authentication defaults.
const (
	// DefaultJWTExpiry is the lifetime of an issued access token.
	DefaultJWTExpiry = 24 * time.Hour

	// DefaultJWTIssuer identifies this service in issued tokens.
	DefaultJWTIssuer = "profile-backend"

	// DefaultPasswordResetTokenTTL is how long a password reset token stays valid.
	DefaultPasswordResetTokenTTL = 1 * time.Hour
)

// Request body limits.
const (
	// MaxRequestBodySize caps JSON request bodies (1 MiB).
	MaxRequestBodySize = 1 << 20
)

// Upload defaults.
const (
	// DefaultUploadDir is the directory profile photos are stored under.
	DefaultUploadDir = "./uploads"

	// MaxUploadBytes caps the accepted size of a profile photo upload (5 MiB).
	MaxUploadBytes = 5 << 20

	// PhotoMaxDimension is the longest edge photos are resized down to.
	PhotoMaxDimension = 1024

	// PhotoJPEGQuality is the quality used when re-encoding uploaded photos.
	PhotoJPEGQuality = 85
)

// Maintenance defaults.
const (
	// DefaultMaintenanceInterval is how often expired reset tokens are purged.
	DefaultMaintenanceInterval = 1 * time.Hour

	// MaintenanceTaskTimeout bounds a single maintenance run.
	MaintenanceTaskTimeout = 5 * time.Minute
)

// Logging defaults.
const (
	// DefaultLogLevel is the zerolog level used when none is configured.
	DefaultLogLevel = "info"

	// DefaultLogFormat selects between "json" and "console" output.
	DefaultLogFormat = "json"

	// LogRedactedValue replaces secrets when configuration is logged.
	LogRedactedValue = "[REDACTED]"
)

// Environment names.
const (
	// EnvDevelopment marks a development deployment.
	EnvDevelopment = "development"

	// EnvProduction marks a production deployment.
	EnvProduction = "production"

	// EnvTest marks a test deployment.
	EnvTest = "test"
)
