// Package handlers provides the HTTP request handlers for the API.
//
// Handlers depend on service interfaces rather than concrete services so
// they can be tested with mocked implementations.
package handlers

import (
	"context"
	"io"

	"github.com/vkotliar/profile-backend/internal/models"
)

// AuthServiceInterface defines the methods required from AuthService.
type AuthServiceInterface interface {
	// RegisterUser creates a new user account from a registration request.
	RegisterUser(ctx context.Context, reg *models.UserRegistration) (*models.User, error)

	// AuthenticateUser verifies credentials and returns the user together
	// with a signed access token. All credential failures return the same
	// error.
	AuthenticateUser(ctx context.Context, creds *models.UserCredentials) (*models.User, string, error)
}

// PasswordResetServiceInterface defines the methods required from
// PasswordResetService.
type PasswordResetServiceInterface interface {
	// RequestReset stages a password change for the account behind the
	// email address. Unknown addresses succeed silently.
	RequestReset(ctx context.Context, req *models.ForgotPasswordRequest) error

	// RequestChange stages a password change for an authenticated user
	// after verifying their current password.
	RequestChange(ctx context.Context, userID int64, req *models.ChangePasswordRequest) error

	// ConfirmChange consumes a confirmation token and applies the staged
	// password.
	ConfirmChange(ctx context.Context, plaintextToken string) error
}

// UserServiceInterface defines the methods required from UserService.
type UserServiceInterface interface {
	// GetUserByID retrieves a user by their unique identifier.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// UpdateProfile applies a partial profile update and returns the
	// updated user.
	UpdateProfile(ctx context.Context, id int64, update *models.ProfileUpdate) (*models.User, error)

	// UpdatePhoto stores a new profile photo and returns the updated user.
	UpdatePhoto(ctx context.Context, id int64, photo io.Reader) (*models.User, error)

	// ListUsers retrieves a page of users and the total user count.
	ListUsers(ctx context.Context, page, pageSize int) ([]*models.User, int, error)

	// UpdateRole changes a user's role and returns the updated user.
	UpdateRole(ctx context.Context, id int64, role string) (*models.User, error)

	// DeleteUser permanently removes a user account.
	DeleteUser(ctx context.Context, id int64) error
}
