// Package models defines the domain types stored in the database and the
// request/response shapes exchanged with API clients.
package models

import (
	"time"

	"github.com/vkotliar/profile-backend/internal/constants"
)

// User is a registered account: profile attributes plus the credential
// material used to verify logins. The hash and salt never serialize to JSON.
type User struct {
	ID           int64     `json:"id" db:"user_id"`
	Name         string    `json:"name" db:"name" validate:"required,min=2,max=100"`
	Email        string    `json:"email" db:"email" validate:"required,email"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Salt         string    `json:"-" db:"salt"`
	PhotoURL     string    `json:"photo_url,omitempty" db:"photo_url"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser returns a User with the default role and timestamps set.
// Credential fields are filled in by the registration flow.
func NewUser(name, email string) *User {
	now := time.Now()
	return &User{
		Name:      name,
		Email:     email,
		Role:      constants.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TableName names the table users are stored in.
func (u *User) TableName() string {
	return constants.TableUsers
}

// Sanitize returns a copy with the password hash and salt blanked,
// safe to hand to response writers.
func (u *User) Sanitize() *User {
	sanitized := *u
	sanitized.PasswordHash = ""
	sanitized.Salt = ""
	return &sanitized
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == constants.RoleAdmin
}

// UserCredentials is the login request body.
type UserCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserRegistration is the signup request body.
type UserRegistration struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,e164"`
	Password        string `json:"password" validate:"required,min=8,max=72,strong_password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// ProfileUpdate represents the profile fields a user may change about
// themselves. All fields are optional; absent fields are left untouched.
type ProfileUpdate struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone *string `json:"phone" validate:"omitempty,e164"`
}

// RoleUpdate represents an administrative role change for a user.
type RoleUpdate struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}
