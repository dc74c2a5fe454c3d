package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/vkotliar/profile-backend/internal/auth"
	"github.com/vkotliar/profile-backend/internal/constants"
	"github.com/vkotliar/profile-backend/internal/models"
	"github.com/vkotliar/profile-backend/internal/utils"
)

// AuthHandler handles authentication-related routes
type AuthHandler struct {
	authService AuthServiceInterface
	jwtService  *auth.JWTService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService AuthServiceInterface, jwtService *auth.JWTService) *AuthHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	if jwtService == nil {
		panic("jwtService cannot be nil")
	}
	return &AuthHandler{
		authService: authService,
		jwtService:  jwtService,
	}
}

// Register handles user registration. A session token is issued right
// away so a new account does not have to log in separately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg models.UserRegistration
	if err := utils.DecodeAndValidate(r, &reg); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	user, err := h.authService.RegisterUser(r.Context(), &reg)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	accessToken, _, err := h.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	h.writeSession(w, r, http.StatusCreated, user, accessToken)
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.UserCredentials
	if err := utils.DecodeAndValidate(r, &creds); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	user, accessToken, err := h.authService.AuthenticateUser(r.Context(), &creds)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	h.writeSession(w, r, http.StatusOK, user, accessToken)
}

// writeSession sets the auth cookie and writes the session payload.
// The token is also set as an HTTP-only cookie so browser clients do
// not have to manage the Authorization header themselves.
func (h *AuthHandler) writeSession(w http.ResponseWriter, r *http.Request, statusCode int, user *models.User, accessToken string) {
	expiry := h.jwtService.GetConfig().Expiry
	http.SetCookie(w, &http.Cookie{
		Name:     constants.AuthTokenCookie,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(expiry.Seconds()),
		Expires:  time.Now().Add(expiry),
	})

	utils.JSON(w, statusCode, map[string]interface{}{
		"user":         user,
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   int(expiry.Seconds()),
	})
}

// Logout clears the authentication cookie. Issued tokens stay valid until
// they expire; clients are expected to discard them. The route is mounted
// behind the auth gate, so a caller without a valid session never gets here.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     constants.AuthTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})

	utils.LogAuth("logout", fmt.Sprintf("%d", userID), "", true, "")

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message": constants.MsgLoggedOut,
	})
}
