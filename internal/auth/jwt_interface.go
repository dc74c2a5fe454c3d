package auth

import (
	"github.com/vkotliar/profile-backend/internal/config"
)

// JWTValidator is the slice of JWTService the middleware needs, kept
// narrow so tests can substitute their own implementation.
type JWTValidator interface {
	ValidateToken(tokenString string, expectedType string) (*CustomClaims, error)
	GetConfig() *config.JWTSettings
}
