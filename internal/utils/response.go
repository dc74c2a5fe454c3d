package utils

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/vkotliar/profile-backend/internal/constants"
)

// Response is the envelope every endpoint writes. Success responses
// carry Data; failures carry Error; list endpoints add Meta.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo is the error half of the envelope: a machine-readable
// code, a human-readable message, and optional per-field details.
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// MetaInfo carries pagination counters for list responses.
type MetaInfo struct {
	Page       int `json:"page,omitempty"`
	PageSize   int `json:"page_size,omitempty"`
	TotalItems int `json:"total_items,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
}

// PaginationParams holds the page/page_size values parsed from a request.
type PaginationParams struct {
	Page     int
	PageSize int
}

// errorCodes maps error sentinels onto wire codes. Token failures all
// share one code so clients cannot probe token state.
var errorCodes = map[error]string{
	ErrNotFound:           constants.CodeNotFound,
	ErrBadRequest:         constants.CodeBadRequest,
	ErrUnauthorized:       constants.CodeUnauthorized,
	ErrForbidden:          constants.CodeForbidden,
	ErrValidation:         constants.CodeValidationError,
	ErrDuplicate:          constants.CodeDuplicateResource,
	ErrInvalidCredentials: constants.CodeInvalidCredentials,
	ErrExpiredToken:       constants.CodeTokenInvalid,
	ErrInvalidToken:       constants.CodeTokenInvalid,
	ErrUsedToken:          constants.CodeTokenInvalid,
}

// JSON writes a success envelope around data. The success flag follows
// the status code.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	SendJSON(w, statusCode, Response{
		Success: statusCode >= 200 && statusCode < 300,
		Data:    data,
	})
}

// Error writes a failure envelope with the given code and message.
func Error(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	SendJSON(w, statusCode, Response{
		Success: constants.ResponseFailure,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// ErrorFromAppError writes the failure envelope an AppError describes.
func ErrorFromAppError(w http.ResponseWriter, err *AppError) {
	code, ok := errorCodes[err.Err]
	if !ok {
		code = constants.CodeInternalError
	}

	var details map[string]string
	if err.Field != "" {
		details = map[string]string{err.Field: err.Message}
	}

	Error(w, err.StatusCode, code, err.Message, details)
}

// Paginated writes a success envelope with pagination metadata.
func Paginated(w http.ResponseWriter, statusCode int, data interface{}, page, pageSize, totalItems int) {
	totalPages := totalItems / pageSize
	if totalItems%pageSize > 0 {
		totalPages++
	}

	SendJSON(w, statusCode, Response{
		Success: constants.ResponseSuccess,
		Data:    data,
		Meta: &MetaInfo{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: totalItems,
			TotalPages: totalPages,
		},
	})
}

// SendJSON marshals data and writes it with JSON headers. A marshal
// failure degrades to a canned error body since the status line has
// already been sent.
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)

	body, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		if _, err := w.Write([]byte(`{"success":false,"error":{"code":"internal_error","message":"Failed to generate response"}}`)); err != nil {
			log.Error().Err(err).Msg("Failed to write error response")
		}
		return
	}

	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// NoContent writes a bare 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(constants.StatusNoContent)
}

// BadRequest writes a 400 failure envelope.
func BadRequest(w http.ResponseWriter, message string, details map[string]string) {
	Error(w, constants.StatusBadRequest, constants.CodeBadRequest, message, details)
}

// Unauthorized writes a 401 failure envelope, defaulting the message.
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = constants.MsgAuthRequired
	}
	Error(w, constants.StatusUnauthorized, constants.CodeUnauthorized, message, nil)
}

// Forbidden writes a 403 failure envelope, defaulting the message.
func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = constants.MsgForbidden
	}
	Error(w, constants.StatusForbidden, constants.CodeForbidden, message, nil)
}

// NotFound writes a 404 failure envelope, defaulting the message.
func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = constants.MsgResourceNotFound
	}
	Error(w, constants.StatusNotFound, constants.CodeNotFound, message, nil)
}

// MethodNotAllowed writes a 405 failure envelope.
func MethodNotAllowed(w http.ResponseWriter) {
	Error(w, constants.StatusMethodNotAllowed, constants.CodeMethodNotAllowed, constants.MsgMethodNotAllowed, nil)
}

// Conflict writes a 409 failure envelope.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, constants.StatusConflict, constants.CodeConflict, message, nil)
}

// InternalServerError logs err and writes a masked 500 envelope.
func InternalServerError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("Internal server error")
	Error(w, constants.StatusInternalServerError, constants.CodeInternalError, constants.MsgInternalError, nil)
}

// ValidationError writes a 400 envelope with per-field messages.
func ValidationError(w http.ResponseWriter, errors map[string]string) {
	Error(w, constants.StatusBadRequest, constants.CodeValidationError, "Validation failed", errors)
}

// GetPaginationParams parses page and page_size from the query string,
// clamping page_size to the configured bounds and falling back to
// defaults on absent or invalid values.
func GetPaginationParams(r *http.Request) PaginationParams {
	page := constants.DefaultPage
	pageSize := constants.DefaultPageSize

	if raw := r.URL.Query().Get(constants.QueryParamPage); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	if raw := r.URL.Query().Get(constants.QueryParamPageSize); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			switch {
			case parsed < constants.MinPageSize:
				pageSize = constants.MinPageSize
			case parsed > constants.MaxPageSize:
				pageSize = constants.MaxPageSize
			default:
				pageSize = parsed
			}
		}
	}

	return PaginationParams{Page: page, PageSize: pageSize}
}
