// Package constants provides shared constant values used throughout the
// application: HTTP codes and headers, error messages, security parameters
// and tunable defaults.
package constants

// HTTP status codes used by the response helpers.
const (
	StatusOK                  = 200
	StatusCreated             = 201
	StatusNoContent           = 204
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusMethodNotAllowed    = 405
	StatusConflict            = 409
	StatusInternalServerError = 500
)

// Machine-readable codes carried in the error envelope. Clients branch
// on these rather than on message text.
const (
	ResponseSuccess = true
	ResponseFailure = false

	CodeBadRequest           = "bad_request"
	CodeUnauthorized         = "unauthorized"
	CodeForbidden            = "forbidden"
	CodeNotFound             = "not_found"
	CodeMethodNotAllowed     = "method_not_allowed"
	CodeConflict             = "conflict"
	CodeInternalError        = "internal_error"
	CodeValidationError      = "validation_error"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeTokenExpired         = "token_expired"
	CodeTokenInvalid         = "token_invalid"
	CodeDuplicateResource    = "duplicate_resource"
	CodeAuthenticationFailed = "authentication_failed"
	CodeServiceUnavailable   = "service_unavailable"
)

// Header names the application reads or writes.
const (
	HeaderContentType           = "Content-Type"
	HeaderAuthorization         = "Authorization"
	HeaderXRequestID            = "X-Request-ID"
	HeaderXContentTypeOptions   = "X-Content-Type-Options"
	HeaderXFrameOptions         = "X-Frame-Options"
	HeaderXXSSProtection        = "X-XSS-Protection"
	HeaderReferrerPolicy        = "Referrer-Policy"
	HeaderContentSecurityPolicy = "Content-Security-Policy"
)

// ContentTypeJSON is the media type of every API response body.
const ContentTypeJSON = "application/json"

// Values applied by the security headers middleware.
const (
	FrameOptionsDeny           = "DENY"
	XSSProtectionModeBlock     = "1; mode=block"
	ContentTypeOptionsNoSniff  = "nosniff"
	ReferrerPolicyStrictOrigin = "strict-origin-when-cross-origin"
	CSPDefaultSrc              = "default-src 'self'"
)

// Session token transports.
const (
	// BearerTokenPrefix prefixes an Authorization header carrying a JWT.
	BearerTokenPrefix = "Bearer "

	// AuthTokenCookie is the cookie fallback set at login.
	AuthTokenCookie = "auth_token"
)
