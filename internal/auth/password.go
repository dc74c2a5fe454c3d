package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/vkotliar/profile-backend/internal/config"
	"github.com/vkotliar/profile-backend/internal/constants"
)

// PasswordConfig holds the Argon2id cost parameters. Tests use a
// cheaper configuration than production.
type PasswordConfig struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultPasswordConfig returns the production hashing parameters.
func DefaultPasswordConfig() *PasswordConfig {
	return &PasswordConfig{
		Memory:      constants.Argon2Memory,
		Iterations:  constants.Argon2Time,
		Parallelism: constants.Argon2Threads,
		SaltLength:  constants.SaltLength,
		KeyLength:   constants.Argon2KeyLength,
	}
}

// ConfigFromAppConfig lifts the hashing parameters out of the loaded
// application config.
func ConfigFromAppConfig(cfg *config.AppConfig) *PasswordConfig {
	return &PasswordConfig{
		Memory:      cfg.PasswordHash.Memory,
		Iterations:  cfg.PasswordHash.Iterations,
		Parallelism: cfg.PasswordHash.Parallelism,
		SaltLength:  cfg.PasswordHash.SaltLength,
		KeyLength:   cfg.PasswordHash.KeyLength,
	}
}

// derive runs Argon2id over password with the configured costs.
func derive(password string, salt []byte, cfg *PasswordConfig) []byte {
	return argon2.IDKey([]byte(password), salt, cfg.Iterations, cfg.Memory, cfg.Parallelism, cfg.KeyLength)
}

// HashPassword hashes password under a fresh random salt and returns
// the base64-encoded hash and salt.
func HashPassword(password string, cfg *PasswordConfig) (string, string, error) {
	salt, err := GenerateRandomBytes(cfg.SaltLength)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := derive(password, salt, cfg)
	return base64.StdEncoding.EncodeToString(hash), base64.StdEncoding.EncodeToString(salt), nil
}

// VerifyPassword re-derives the hash for password under the stored salt
// and compares it in constant time.
func VerifyPassword(password, encodedHash, encodedSalt string, cfg *PasswordConfig) (bool, error) {
	hash, err := base64.StdEncoding.DecodeString(encodedHash)
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}
	salt, err := base64.StdEncoding.DecodeString(encodedSalt)
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}

	candidate := derive(password, salt, cfg)
	return subtle.ConstantTimeCompare(hash, candidate) == 1, nil
}

// GenerateResetToken mints a high-entropy password reset token. It
// returns the plaintext (sent to the user once) and its SHA-256 hash,
// the only form that is persisted.
func GenerateResetToken() (string, string, error) {
	b, err := GenerateRandomBytes(constants.ResetTokenBytes)
	if err != nil {
		return "", "", err
	}

	token := base64.RawURLEncoding.EncodeToString(b)
	return token, HashResetToken(token), nil
}

// HashResetToken returns the hex-encoded SHA-256 digest of a reset
// token. Storing only the digest keeps a database leak from exposing
// usable tokens.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GenerateRandomBytes returns length cryptographically secure bytes.
func GenerateRandomBytes(length uint32) ([]byte, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

// GenerateRandomString returns a URL-safe random string of the given length.
func GenerateRandomString(length uint32) (string, error) {
	b, err := GenerateRandomBytes(length)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b)[:length], nil
}
