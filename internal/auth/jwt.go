package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/vkotliar/profile-backend/internal/config"
	"github.com/vkotliar/profile-backend/internal/constants"
	"github.com/vkotliar/profile-backend/internal/utils"
)

var ErrInvalidSigningMethod = errors.New("invalid signing method")

// CustomClaims is the claim set carried by session tokens: the user's
// identity and role plus the registered claims.
type CustomClaims struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTService signs and validates HS256 session tokens.
type JWTService struct {
	Config *config.JWTSettings
}

func NewJWTService(config *config.JWTSettings) *JWTService {
	return &JWTService{Config: config}
}

// GetConfig returns the JWT settings, falling back to defaults when the
// service was built without any.
func (s *JWTService) GetConfig() *config.JWTSettings {
	if s.Config == nil {
		return &config.JWTSettings{
			Expiry: constants.DefaultJWTExpiry,
			Issuer: constants.DefaultJWTIssuer,
		}
	}
	return s.Config
}

// GenerateAccessToken issues a signed session token for the user and
// returns it together with its JWT ID.
func (s *JWTService) GenerateAccessToken(userID int64, email, role string) (string, string, error) {
	return s.sign(userID, email, role, constants.TokenTypeAccess, s.Config.Expiry)
}

func (s *JWTService) sign(userID int64, email, role, tokenType string, expiry time.Duration) (string, string, error) {
	jwtID := uuid.New().String()
	now := time.Now()

	claims := CustomClaims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Config.Issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jwtID,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Config.Secret))
	if err != nil {
		return "", "", err
	}
	return signed, jwtID, nil
}

// ValidateToken checks the signature, standard claims and token type.
// Expiry is the only failure reported distinctly, and only through the
// wrapped sentinel; the client-facing message is always the same.
func (s *JWTService) ValidateToken(tokenString string, expectedType string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return []byte(s.Config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, utils.NewExpiredTokenError()
		}
		return nil, utils.NewInvalidTokenError()
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.TokenType != expectedType {
		return nil, utils.NewInvalidTokenError()
	}
	return claims, nil
}

