// Package auth provides authentication and authorization for the API.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vkotliar/profile-backend/internal/constants"
	"github.com/vkotliar/profile-backend/internal/utils"
)

// Context keys for the authenticated identity and request metadata.
const (
	UserIDContextKey    = constants.UserIDContextKey
	EmailContextKey     = constants.EmailContextKey
	RoleContextKey      = constants.RoleContextKey
	RequestIDContextKey = constants.RequestIDContextKey
)

// AuthProvider authenticates a request and returns the caller's user
// ID, email and role. Implementations cover different credential
// mechanisms; the middleware tries them in order.
type AuthProvider interface {
	Authenticate(r *http.Request) (int64, string, string, error)
}

// JWTAuthProvider authenticates requests carrying a session token in
// the Authorization header or the auth cookie.
type JWTAuthProvider struct {
	jwtService JWTValidator
}

func NewJWTAuthProvider(jwtService JWTValidator) *JWTAuthProvider {
	return &JWTAuthProvider{jwtService: jwtService}
}

// Authenticate validates the request's session token and returns the
// identity it asserts.
func (p *JWTAuthProvider) Authenticate(r *http.Request) (int64, string, string, error) {
	token, err := sessionToken(r)
	if err != nil {
		return 0, "", "", err
	}

	claims, err := p.jwtService.ValidateToken(token, constants.TokenTypeAccess)
	if err != nil {
		return 0, "", "", err
	}
	return claims.UserID, claims.Email, claims.Role, nil
}

// sessionToken pulls the raw token out of the Authorization header,
// falling back to the auth cookie set at login.
func sessionToken(r *http.Request) (string, error) {
	header := r.Header.Get(constants.HeaderAuthorization)
	if header == "" {
		cookie, err := r.Cookie(constants.AuthTokenCookie)
		if err != nil {
			return "", utils.ErrUnauthorized
		}
		return cookie.Value, nil
	}
	if !strings.HasPrefix(header, constants.BearerTokenPrefix) {
		return "", utils.ErrUnauthorized
	}
	return strings.TrimPrefix(header, constants.BearerTokenPrefix), nil
}

// ensureRequestID returns the request's tracking ID, minting one and
// stamping it onto the headers when absent.
func ensureRequestID(r *http.Request) string {
	requestID := r.Header.Get(constants.HeaderXRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
		r.Header.Set(constants.HeaderXRequestID, requestID)
	}
	return requestID
}

// identityContext stores the authenticated identity on ctx.
func identityContext(ctx context.Context, userID int64, email, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDContextKey, userID)
	ctx = context.WithValue(ctx, EmailContextKey, email)
	return context.WithValue(ctx, RoleContextKey, role)
}

// AuthMiddleware rejects the request unless one of the providers
// authenticates it. On success the identity is placed on the context
// for the handlers.
func AuthMiddleware(next http.Handler, providers ...AuthProvider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := ensureRequestID(r)
		ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)

		var lastErr error
		for _, provider := range providers {
			userID, email, role, err := provider.Authenticate(r)
			if err != nil {
				lastErr = err
				continue
			}

			log.Debug().
				Int64("user_id", userID).
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("User authenticated")

			next.ServeHTTP(w, r.WithContext(identityContext(ctx, userID, email, role)))
			return
		}

		log.Info().
			Err(lastErr).
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Authentication failed")

		var appErr *utils.AppError
		switch {
		case errors.As(lastErr, &appErr):
			utils.ErrorFromAppError(w, appErr)
		case errors.Is(lastErr, utils.ErrUnauthorized):
			utils.Unauthorized(w, constants.MsgAuthRequired)
		default:
			utils.Error(w, constants.StatusUnauthorized, constants.CodeAuthenticationFailed, constants.MsgAuthRequired, nil)
		}
	})
}

// RequireAuth adapts AuthMiddleware to the router's middleware shape.
func RequireAuth(providers ...AuthProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return AuthMiddleware(next, providers...)
	}
}

// RequireRole allows only authenticated callers holding role. Mount it
// inside RequireAuth so the role is already on the context.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole, ok := GetRole(r)
			if !ok {
				utils.Unauthorized(w, "")
				return
			}
			if userRole != role {
				log.Warn().
					Str("required_role", role).
					Str("user_role", userRole).
					Str("path", r.URL.Path).
					Msg("Role check failed")
				utils.Forbidden(w, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OptionalAuth attaches the identity when a provider succeeds but lets
// the request through either way.
func OptionalAuth(providers ...AuthProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := ensureRequestID(r)
			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)

			for _, provider := range providers {
				if userID, email, role, err := provider.Authenticate(r); err == nil {
					ctx = identityContext(ctx, userID, email, role)
					break
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID reads the authenticated user ID off the request context.
func GetUserID(r *http.Request) (int64, bool) {
	userID, ok := r.Context().Value(UserIDContextKey).(int64)
	return userID, ok
}

// GetEmail reads the authenticated email off the request context.
func GetEmail(r *http.Request) (string, bool) {
	email, ok := r.Context().Value(EmailContextKey).(string)
	return email, ok
}

// GetRole reads the authenticated role off the request context.
func GetRole(r *http.Request) (string, bool) {
	role, ok := r.Context().Value(RoleContextKey).(string)
	return role, ok
}

// GetRequestID reads the tracking ID off the request context.
func GetRequestID(r *http.Request) (string, bool) {
	requestID, ok := r.Context().Value(RequestIDContextKey).(string)
	return requestID, ok
}

// IsAuthenticated reports whether the request carries an identity.
func IsAuthenticated(r *http.Request) bool {
	_, ok := GetUserID(r)
	return ok
}
