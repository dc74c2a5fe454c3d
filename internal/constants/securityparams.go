// Package constants provides shared constant values used throughout the application.
//
// The securityparams.go file defines the cryptographic parameters for password
// hashing and reset-token generation, plus the identity values carried through
// request contexts and JWT claims. Changing the Argon2 parameters only affects
// newly stored hashes; existing hashes keep the parameters they were created with.
package constants

// Argon2id password hashing parameters.
const (
	// Argon2Time is the number of iterations over the memory.
	Argon2Time = 1

	// Argon2Memory is the memory cost in KiB (64 MiB).
	Argon2Memory = 64 * 1024

	// Argon2Threads is the degree of parallelism.
	Argon2Threads = 4

	// Argon2KeyLength is the length of the derived key in bytes.
	Argon2KeyLength = 32

	// SaltLength is the length of the random per-password salt in bytes.
	SaltLength = 16
)

// Password reset token parameters.
const (
	// ResetTokenBytes is the entropy of a reset token before encoding.
	ResetTokenBytes = 32
)

// Password policy.
const (
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8

	// MaxPasswordLength caps password length to bound hashing cost.
	MaxPasswordLength = 72
)

// Token types carried in JWT claims.
const (
	// TokenTypeAccess marks a short-lived access token.
	TokenTypeAccess = "access"
)

// User roles.
const (
	// RoleUser is the default role assigned at registration.
	RoleUser = "user"

	// RoleAdmin grants access to administrative operations such as role changes.
	RoleAdmin = "admin"
)

// ContextKey is the type used for values stored in request contexts.
// A named type prevents collisions with context keys from other packages.
type ContextKey string

// Request context keys.
const (
	// UserIDContextKey holds the authenticated user's ID.
	UserIDContextKey ContextKey = "user_id"

	// EmailContextKey holds the authenticated user's email.
	EmailContextKey ContextKey = "email"

	// RoleContextKey holds the authenticated user's role.
	RoleContextKey ContextKey = "role"

	// RequestIDContextKey holds the per-request identifier.
	RequestIDContextKey ContextKey = "request_id"
)
