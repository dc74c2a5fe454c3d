package models

import (
	"time"
)

// PasswordResetToken represents a staged password change awaiting
// confirmation. The row stores only a hash of the token; the plaintext
// token is sent to the user once and never persisted. The replacement
// password hash is staged on the row and applied atomically when the
// token is consumed.
type PasswordResetToken struct {
	TokenHash       string     `json:"-" db:"token_hash"`
	UserID          int64      `json:"user_id" db:"user_id"`
	NewPasswordHash string     `json:"-" db:"new_password_hash"`
	NewSalt         string     `json:"-" db:"new_salt"`
	ExpiresAt       time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt          *time.Time `json:"used_at,omitempty" db:"used_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the token has passed its expiry time.
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsUsed reports whether the token has already been consumed.
func (t *PasswordResetToken) IsUsed() bool {
	return t.UsedAt != nil
}

// ForgotPasswordRequest defines the structure for requesting a password
// reset without being logged in. The replacement password is staged now
// and applied when the emailed token is confirmed.
type ForgotPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72,strong_password"`
}

// ChangePasswordRequest defines the structure for an authenticated password
// change. The current password is verified immediately; the new password
// takes effect only after the emailed token is confirmed.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72,strong_password"`
}
