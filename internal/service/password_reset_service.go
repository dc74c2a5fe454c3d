package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vkotliar/profile-backend/internal/auth"
	"github.com/vkotliar/profile-backend/internal/config"
	"github.com/vkotliar/profile-backend/internal/models"
	"github.com/vkotliar/profile-backend/internal/repository"
	"github.com/vkotliar/profile-backend/internal/utils"
)

// CredentialVerifier checks an account's current password. AuthService
// implements it; the reset flow borrows it to gate authenticated changes.
type CredentialVerifier interface {
	VerifyCurrentPassword(ctx context.Context, userID int64, password string) error
}

// PasswordResetService implements the staged password change flow. A change
// request hashes the new password immediately and parks it on a single-use
// token row; nothing on the user record changes until the token is confirmed.
type PasswordResetService struct {
	userRepo    repository.UserRepository
	resetRepo   repository.PasswordResetRepository
	verifier    CredentialVerifier
	mailer      PasswordResetMailer
	passwordCfg *auth.PasswordConfig
	resetCfg    *config.PasswordResetSettings
}

// NewPasswordResetService creates a new PasswordResetService
func NewPasswordResetService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	verifier CredentialVerifier,
	mailer PasswordResetMailer,
	passwordCfg *auth.PasswordConfig,
	resetCfg *config.PasswordResetSettings,
) *PasswordResetService {
	return &PasswordResetService{
		userRepo:    userRepo,
		resetRepo:   resetRepo,
		verifier:    verifier,
		mailer:      mailer,
		passwordCfg: passwordCfg,
		resetCfg:    resetCfg,
	}
}

// RequestReset stages a password change for the account behind an email
// address. The caller is never told whether the address maps to an account:
// unknown addresses succeed silently.
func (s *PasswordResetService) RequestReset(ctx context.Context, req *models.ForgotPasswordRequest) error {
	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if utils.IsNotFoundError(err) {
			utils.LogAuth("reset_requested_unknown_email", "0", req.Email, false, "user not found")
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	return s.stageChange(ctx, user, req.NewPassword)
}

// RequestChange stages a password change for an authenticated user after
// verifying their current password. Like RequestReset, the new password only
// takes effect once the emailed token is confirmed.
func (s *PasswordResetService) RequestChange(ctx context.Context, userID int64, req *models.ChangePasswordRequest) error {
	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		return err
	}

	if err := s.verifier.VerifyCurrentPassword(ctx, userID, req.CurrentPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	return s.stageChange(ctx, user, req.NewPassword)
}

// stageChange hashes the new password, persists it on a fresh single-use
// token and emails the confirmation link. Only the token hash is stored;
// the plaintext token exists solely in the outbound email.
func (s *PasswordResetService) stageChange(ctx context.Context, user *models.User, newPassword string) error {
	newHash, newSalt, err := auth.HashPassword(newPassword, s.passwordCfg)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	plaintext, tokenHash, err := auth.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	token := &models.PasswordResetToken{
		TokenHash:       tokenHash,
		UserID:          user.ID,
		NewPasswordHash: newHash,
		NewSalt:         newSalt,
		ExpiresAt:       time.Now().Add(s.resetCfg.TokenTTL),
	}

	if err := s.resetRepo.Create(ctx, token); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordConfirmEmail(user.Email, user.Name, plaintext); err != nil {
		// The token is already staged; it expires on its own if the email
		// never arrives.
		log.Error().
			Err(err).
			Int64("user_id", user.ID).
			Msg("Failed to send password confirmation email")
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	utils.LogAuth("password_change_staged", fmt.Sprintf("%d", user.ID), user.Email, true, "")

	return nil
}

// ConfirmChange consumes a confirmation token and applies the staged
// password. Whatever went wrong (unknown, expired or already consumed
// token), the caller sees the same invalid-token error.
func (s *PasswordResetService) ConfirmChange(ctx context.Context, plaintextToken string) error {
	if plaintextToken == "" {
		return utils.NewInvalidTokenError()
	}

	tokenHash := auth.HashResetToken(plaintextToken)

	userID, err := s.resetRepo.ConsumeAndChangePassword(ctx, tokenHash)
	if err != nil {
		if utils.IsTokenError(err) {
			utils.LogAuth("password_confirm_failed", "0", "", false, err.Error())
			return utils.NewInvalidTokenError()
		}
		return fmt.Errorf("failed to confirm password change: %w", err)
	}

	utils.LogAuth("password_changed", fmt.Sprintf("%d", userID), "", true, "")

	return nil
}

// PurgeExpired removes staged changes whose tokens can no longer be
// confirmed. It is called periodically by the maintenance loop.
func (s *PasswordResetService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.resetRepo.DeleteExpired(ctx)
}
