package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vkotliar/profile-backend/internal/auth"
	"github.com/vkotliar/profile-backend/internal/constants"
	"github.com/vkotliar/profile-backend/internal/models"
	"github.com/vkotliar/profile-backend/internal/utils"
)

// UserHandler handles user profile and administration routes
type UserHandler struct {
	userService UserServiceInterface
}

// NewUserHandler wires the user service into HTTP handlers.
func NewUserHandler(userService UserServiceInterface) *UserHandler {
	if userService == nil {
		panic("userService cannot be nil")
	}
	return &UserHandler{
		userService: userService,
	}
}

// GetCurrentUser serves the authenticated caller's own profile.
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

// UpdateProfile handles partial updates to the current user's profile.
// Fields absent from the request body are left untouched.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var update models.ProfileUpdate
	if err := utils.DecodeAndValidate(r, &update); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, &update)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

// UploadPhoto stores a new profile photo for the current user. The photo is
// expected as a multipart form file.
func (h *UserHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes)
	if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		utils.BadRequest(w, constants.MsgPhotoTooLarge, nil)
		return
	}

	file, _, err := r.FormFile(constants.FormFieldPhoto)
	if err != nil {
		utils.BadRequest(w, "Missing photo file in request", map[string]string{
			constants.ValidationFieldKey: constants.FormFieldPhoto,
		})
		return
	}
	defer file.Close()

	user, err := h.userService.UpdatePhoto(r.Context(), userID, file)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

// ListUsers returns a paginated listing of all users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := utils.GetPaginationParams(r)

	users, total, err := h.userService.ListUsers(r.Context(), params.Page, params.PageSize)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Paginated(w, http.StatusOK, users, params.Page, params.PageSize, total)
}

// GetUser returns a single user's profile by ID.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

// UpdateRole changes a user's role. The route is restricted to admins.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	var update models.RoleUpdate
	if err := utils.DecodeAndValidate(r, &update); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	user, err := h.userService.UpdateRole(r.Context(), userID, update.Role)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

// DeleteAccount permanently removes the current user's account.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	if err := h.userService.DeleteUser(r.Context(), userID); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.NoContent(w)
}

// userIDParam extracts and parses the userID route parameter.
func userIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, constants.ParamUserID)
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, utils.NewValidationError(constants.ParamUserID, "Must be a positive integer")
	}
	return userID, nil
}
