package utils

import (
	"errors"
	"net/http"
	"testing"

	"github.com/lib/pq"

	"github.com/vkotliar/profile-backend/internal/constants"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "Without field",
			err:  &AppError{Message: "something went wrong"},
			want: "something went wrong",
		},
		{
			name: "With field",
			err:  &AppError{Field: "email", Message: "is invalid"},
			want: "email: is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := &AppError{Err: ErrNotFound}
	if !errors.Is(appErr, ErrNotFound) {
		t.Error("errors.Is should match the wrapped sentinel")
	}
}

func TestNewInvalidCredentialsError(t *testing.T) {
	err := NewInvalidCredentialsError()

	if err.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %v, want %v", err.StatusCode, http.StatusUnauthorized)
	}
	if err.Message != constants.MsgInvalidCredentials {
		t.Errorf("Message = %v, want %v", err.Message, constants.MsgInvalidCredentials)
	}
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Error("should wrap ErrInvalidCredentials")
	}
}

func TestTokenErrorsShareMessage(t *testing.T) {
	// Expired and invalid token errors must be indistinguishable to a client.
	invalid := NewInvalidTokenError()
	expired := NewExpiredTokenError()

	if invalid.Message != expired.Message {
		t.Errorf("token error messages differ: %q vs %q", invalid.Message, expired.Message)
	}
	if invalid.StatusCode != expired.StatusCode {
		t.Errorf("token error status codes differ: %d vs %d", invalid.StatusCode, expired.StatusCode)
	}
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "AppError passthrough",
			err:        NewBadRequestError("bad"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Not found sentinel",
			err:        ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "Invalid credentials sentinel",
			err:        ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Expired token sentinel",
			err:        ErrExpiredToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Used token sentinel",
			err:        ErrUsedToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Wrapped sentinel",
			err:        errors.New("random failure"),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "sql no rows text",
			err:        errors.New("sql: no rows in result set"),
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ParseError(tt.err)
			if appErr.StatusCode != tt.wantStatus {
				t.Errorf("ParseError() status = %v, want %v", appErr.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestParseError_PostgresUniqueViolation(t *testing.T) {
	pqErr := &pq.Error{
		Code:       pq.ErrorCode(constants.PGErrUniqueViolation),
		Constraint: "idx_email",
	}

	appErr := ParseError(pqErr)

	if appErr.StatusCode != http.StatusConflict {
		t.Errorf("StatusCode = %v, want %v", appErr.StatusCode, http.StatusConflict)
	}
	if appErr.Field != "email" {
		t.Errorf("Field = %v, want email", appErr.Field)
	}
	if !errors.Is(appErr, ErrDuplicate) {
		t.Error("should wrap ErrDuplicate")
	}
}

func TestParseError_PostgresNotNullViolation(t *testing.T) {
	pqErr := &pq.Error{
		Code:   pq.ErrorCode(constants.PGErrNotNullViolation),
		Column: "name",
	}

	appErr := ParseError(pqErr)

	if appErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %v, want %v", appErr.StatusCode, http.StatusBadRequest)
	}
	if appErr.Field != "name" {
		t.Errorf("Field = %v, want name", appErr.Field)
	}
}

func TestErrorPredicates(t *testing.T) {
	if !IsNotFoundError(NewNotFoundError("User", 1)) {
		t.Error("IsNotFoundError should be true for not found errors")
	}
	if !IsDuplicateError(NewDuplicateError("User", "email", "a@b.c")) {
		t.Error("IsDuplicateError should be true for duplicate errors")
	}
	if !IsValidationError(NewValidationError("email", "bad")) {
		t.Error("IsValidationError should be true for validation errors")
	}
	if !IsTokenError(ErrUsedToken) {
		t.Error("IsTokenError should be true for used tokens")
	}
	if IsTokenError(ErrNotFound) {
		t.Error("IsTokenError should be false for unrelated errors")
	}
}

func TestStatusCode(t *testing.T) {
	if got := StatusCode(NewForbiddenError("")); got != http.StatusForbidden {
		t.Errorf("StatusCode() = %v, want %v", got, http.StatusForbidden)
	}
	if got := StatusCode(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("StatusCode() = %v, want %v", got, http.StatusInternalServerError)
	}
}
