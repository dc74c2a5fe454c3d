// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"
	"fmt"

	"github.com/vkotliar/profile-backend/internal/auth"
	"github.com/vkotliar/profile-backend/internal/models"
	"github.com/vkotliar/profile-backend/internal/repository"
	"github.com/vkotliar/profile-backend/internal/utils"
)

// AuthService handles registration and credential verification.
type AuthService struct {
	userRepo    repository.UserRepository
	jwtService  *auth.JWTService
	passwordCfg *auth.PasswordConfig
}

// NewAuthService creates an AuthService backed by the given repository,
// signer and password parameters.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, passwordCfg *auth.PasswordConfig) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		passwordCfg: passwordCfg,
	}
}

// RegisterUser creates a new account from a registration request.
func (s *AuthService) RegisterUser(ctx context.Context, reg *models.UserRegistration) (*models.User, error) {
	if reg.Password != reg.ConfirmPassword {
		return nil, utils.NewValidationError("confirm_password", "Passwords do not match")
	}

	taken, err := s.userRepo.ExistsByEmail(ctx, reg.Email)
	if err != nil {
		return nil, fmt.Errorf("check email existence: %w", err)
	}
	if taken {
		return nil, utils.NewDuplicateError("User", "email", reg.Email)
	}

	passwordHash, salt, err := auth.HashPassword(reg.Password, s.passwordCfg)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.NewUser(reg.Name, reg.Email)
	user.Phone = reg.Phone
	user.PasswordHash = passwordHash
	user.Salt = salt

	// A concurrent registration of the same email, in any casing, can slip
	// past the existence check; the unique index on LOWER(email) turns the
	// second insert into a duplicate error.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	utils.LogAuth("register_success", fmt.Sprintf("%d", user.ID), user.Email, true, "")

	return user.Sanitize(), nil
}

// AuthenticateUser verifies credentials and returns the user together with
// a signed access token. Unknown emails and wrong passwords yield the same
// error so callers cannot probe which emails are registered.
func (s *AuthService) AuthenticateUser(ctx context.Context, creds *models.UserCredentials) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, creds.Email)
	if err != nil {
		if utils.IsNotFoundError(err) {
			utils.LogAuth("login_failed", "0", creds.Email, false, "user not found")
			return nil, "", utils.NewInvalidCredentialsError()
		}
		return nil, "", fmt.Errorf("load user: %w", err)
	}

	match, err := auth.VerifyPassword(creds.Password, user.PasswordHash, user.Salt, s.passwordCfg)
	if err != nil {
		return nil, "", fmt.Errorf("verify password: %w", err)
	}
	if !match {
		utils.LogAuth("login_failed", fmt.Sprintf("%d", user.ID), user.Email, false, "invalid password")
		return nil, "", utils.NewInvalidCredentialsError()
	}

	accessToken, _, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate access token: %w", err)
	}

	utils.LogAuth("login_success", fmt.Sprintf("%d", user.ID), user.Email, true, "")

	return user.Sanitize(), accessToken, nil
}

// VerifyCurrentPassword checks a user's current password; it gates
// sensitive operations for already-authenticated users.
func (s *AuthService) VerifyCurrentPassword(ctx context.Context, userID int64, password string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash, user.Salt, s.passwordCfg)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !match {
		utils.LogAuth("password_check_failed", fmt.Sprintf("%d", user.ID), user.Email, false, "invalid password")
		return utils.NewInvalidCredentialsError()
	}

	return nil
}
