// Package middleware provides HTTP middleware components.
package middleware

import (
	"net/http"

	"github.com/vkotliar/profile-backend/internal/auth"
	"github.com/vkotliar/profile-backend/internal/constants"
)

// JWTAuth rejects requests that do not carry a valid bearer token.
func JWTAuth(jwtService auth.JWTValidator) func(http.Handler) http.Handler {
	return auth.RequireAuth(auth.NewJWTAuthProvider(jwtService))
}

// AdminOnly restricts a route to users holding the admin role.
func AdminOnly() func(http.Handler) http.Handler {
	return auth.RequireRole(constants.RoleAdmin)
}
