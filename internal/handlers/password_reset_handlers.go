package handlers

import (
	"net/http"

	"github.com/vkotliar/profile-backend/internal/auth"
	"github.com/vkotliar/profile-backend/internal/constants"
	"github.com/vkotliar/profile-backend/internal/models"
	"github.com/vkotliar/profile-backend/internal/utils"
)

// PasswordResetHandler handles the staged password change routes.
type PasswordResetHandler struct {
	resetService PasswordResetServiceInterface
}

// NewPasswordResetHandler creates a new PasswordResetHandler
func NewPasswordResetHandler(resetService PasswordResetServiceInterface) *PasswordResetHandler {
	if resetService == nil {
		panic("resetService cannot be nil")
	}
	return &PasswordResetHandler{
		resetService: resetService,
	}
}

// ForgotPassword stages a password change for an unauthenticated user. The
// response is the same whether or not the email maps to an account.
func (h *PasswordResetHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	if err := h.resetService.RequestReset(r.Context(), &req); err != nil {
		// Validation failures are safe to surface; anything else must not
		// leak whether the account exists.
		if utils.IsValidationError(err) {
			utils.ErrorFromAppError(w, utils.ParseError(err))
			return
		}
		utils.ErrorFromAppError(w, utils.NewInternalServerError(err))
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message": constants.MsgResetRequested,
	})
}

// ChangePassword stages a password change for the authenticated user.
func (h *PasswordResetHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var req models.ChangePasswordRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	if err := h.resetService.RequestChange(r.Context(), userID, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message": constants.MsgResetRequested,
	})
}

// ConfirmChange applies a staged password change. The token arrives as a
// query parameter because the endpoint is opened from an email link.
func (h *PasswordResetHandler) ConfirmChange(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get(constants.QueryParamToken)

	if err := h.resetService.ConfirmChange(r.Context(), token); err != nil {
		// A rejected confirmation token is a bad request, not a failed
		// session; 401 stays reserved for the bearer-token gate.
		if utils.IsTokenError(err) {
			utils.Error(w, http.StatusBadRequest, constants.CodeTokenInvalid, constants.MsgInvalidToken, nil)
			return
		}
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message": constants.MsgPasswordChanged,
	})
}
