// Package utils provides shared helpers for error handling, HTTP responses,
// request validation and logging.
package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lib/pq"

	"github.com/vkotliar/profile-backend/internal/constants"
)

// Sentinel errors. Services wrap these so handlers can classify
// failures without string matching.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden access")
	ErrBadRequest         = errors.New("invalid request")
	ErrInternalServer     = errors.New("internal server error")
	ErrValidation         = errors.New("validation error")
	ErrDuplicate          = errors.New("duplicate resource")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrExpiredToken       = errors.New("expired token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUsedToken          = errors.New("token already used")
)

// AppError carries everything the response writer needs: the sentinel
// for classification, the status code, a client-safe message, and
// optional detail only surfaced in logs or debug responses.
type AppError struct {
	Err        error
	StatusCode int
	Message    string
	DevInfo    string
	Field      string
	Details    map[string]any
}

func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps err in an AppError with the given status and message.
func New(err error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewValidationError reports a single invalid field.
func NewValidationError(field, message string) *AppError {
	e := New(ErrValidation, http.StatusBadRequest, message)
	e.Field = field
	return e
}

// NewBadRequestError reports a malformed or unacceptable request.
func NewBadRequestError(message string) *AppError {
	return New(ErrBadRequest, http.StatusBadRequest, message)
}

// NewNotFoundError reports a missing resource by type and identifier.
func NewNotFoundError(resourceType string, identifier interface{}) *AppError {
	msg := fmt.Sprintf("%s with identifier '%v' not found", resourceType, identifier)
	return New(ErrNotFound, http.StatusNotFound, msg)
}

// NewUnauthorizedError reports a missing or rejected credential. An
// empty message falls back to the generic auth-required text.
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = constants.MsgAuthRequired
	}
	return New(ErrUnauthorized, http.StatusUnauthorized, message)
}

// NewForbiddenError reports an authenticated caller lacking permission.
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = constants.MsgForbidden
	}
	return New(ErrForbidden, http.StatusForbidden, message)
}

// NewInternalServerError hides err behind a generic message; the
// original text is kept in DevInfo for the logs.
func NewInternalServerError(err error) *AppError {
	e := New(ErrInternalServer, http.StatusInternalServerError, constants.MsgInternalError)
	if err != nil {
		e.DevInfo = err.Error()
	}
	return e
}

// NewDuplicateError reports a uniqueness conflict on field.
func NewDuplicateError(resourceType, field string, value interface{}) *AppError {
	e := New(ErrDuplicate, http.StatusConflict, fmt.Sprintf("%s with %s '%v' already exists", resourceType, field, value))
	e.Field = field
	return e
}

// NewInvalidCredentialsError is the single login failure. The message
// never distinguishes a missing account from a wrong password.
func NewInvalidCredentialsError() *AppError {
	return New(ErrInvalidCredentials, http.StatusUnauthorized, constants.MsgInvalidCredentials)
}

// NewInvalidTokenError is the single token failure. Malformed, unknown,
// expired and already-consumed tokens all produce the same message so
// the caller cannot probe token state.
func NewInvalidTokenError() *AppError {
	return New(ErrInvalidToken, http.StatusUnauthorized, constants.MsgInvalidToken)
}

// NewExpiredTokenError matches NewInvalidTokenError on the wire; the
// distinction survives only in the wrapped sentinel for logging.
func NewExpiredTokenError() *AppError {
	return New(ErrExpiredToken, http.StatusUnauthorized, constants.MsgInvalidToken)
}

// ParseError normalizes any error into an AppError: pass AppErrors
// through, map sentinels onto their constructors, classify database
// errors, and fall back to a masked internal error.
func ParseError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NewNotFoundError("Resource", "")
	case errors.Is(err, ErrUnauthorized):
		return NewUnauthorizedError("")
	case errors.Is(err, ErrForbidden):
		return NewForbiddenError("")
	case errors.Is(err, ErrBadRequest):
		return NewBadRequestError(err.Error())
	case errors.Is(err, ErrValidation):
		return NewValidationError("", err.Error())
	case errors.Is(err, ErrDuplicate):
		return NewDuplicateError("Resource", "", "")
	case errors.Is(err, ErrInvalidCredentials):
		return NewInvalidCredentialsError()
	case errors.Is(err, ErrExpiredToken):
		return NewExpiredTokenError()
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrUsedToken):
		return NewInvalidTokenError()
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if parsed := parsePQError(pqErr); parsed != nil {
			return parsed
		}
	}
	if parsed := parseSQLMessage(err); parsed != nil {
		return parsed
	}

	return NewInternalServerError(err)
}

// parsePQError classifies the PostgreSQL error codes the application
// can meaningfully report back. Other codes return nil.
func parsePQError(pqErr *pq.Error) *AppError {
	switch string(pqErr.Code) {
	case constants.PGErrUniqueViolation:
		e := New(ErrDuplicate, http.StatusConflict, "A resource with the same unique identifier already exists")
		e.DevInfo = pqErr.Error()
		// The constraint name carries the column when the index
		// follows the idx_<field> convention.
		if idx := strings.Index(pqErr.Constraint, "idx_"); idx >= 0 {
			e.Field = pqErr.Constraint[idx+len("idx_"):]
		}
		return e
	case constants.PGErrForeignKeyViolation:
		e := New(ErrBadRequest, http.StatusBadRequest, "This operation violates a foreign key constraint")
		e.DevInfo = pqErr.Error()
		return e
	case constants.PGErrNotNullViolation:
		e := New(ErrValidation, http.StatusBadRequest, fmt.Sprintf("The %s field cannot be empty", pqErr.Column))
		e.DevInfo = pqErr.Error()
		e.Field = pqErr.Column
		return e
	}
	return nil
}

// parseSQLMessage catches database failures that arrive as plain
// errors rather than *pq.Error, e.g. from sql.ErrNoRows wrappers or
// drivers under test. Returns nil when no pattern matches.
func parseSQLMessage(err error) *AppError {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		e := New(ErrDuplicate, http.StatusConflict, "A resource with the same unique identifier already exists")
		e.DevInfo = err.Error()
		return e
	case strings.Contains(msg, "not found"), strings.Contains(msg, "no rows"):
		e := New(ErrNotFound, http.StatusNotFound, "The requested resource could not be found")
		e.DevInfo = err.Error()
		return e
	}
	return nil
}

// IsNotFoundError reports whether err resolves to a 404.
func IsNotFoundError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode == http.StatusNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err resolves to a conflict.
func IsDuplicateError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode == http.StatusConflict
	}
	return errors.Is(err, ErrDuplicate)
}

// IsValidationError reports whether err is a validation failure.
func IsValidationError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return errors.Is(appErr.Err, ErrValidation)
	}
	return errors.Is(err, ErrValidation)
}

// IsTokenError reports whether err is any kind of token failure.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrUsedToken)
}

// StatusCode extracts the HTTP status for err, defaulting to 500.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
