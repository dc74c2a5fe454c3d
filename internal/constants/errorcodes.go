// Package constants provides shared constant values used throughout the application.
//
// The errorcodes.go file defines the human-readable error messages paired with the
// machine-readable error codes from httpcodes.go. Messages sent to clients are
// deliberately generic for authentication failures so that responses never reveal
// whether an account exists or which part of a credential check failed.
package constants

// Error messages returned to API clients.
const (
	// MsgInvalidCredentials is returned whenever a login attempt fails,
	// regardless of whether the account exists or the password was wrong.
	MsgInvalidCredentials = "Invalid email or password."

	// MsgInvalidToken is returned when a password reset token is missing,
	// malformed, already consumed, or expired. The cases are indistinguishable
	// to the caller.
	MsgInvalidToken = "Invalid or expired token."

	// MsgAuthRequired is returned when a protected endpoint is called without
	// valid authentication.
	MsgAuthRequired = "Authentication required."

	// MsgForbidden is returned when an authenticated user lacks the role
	// required for an operation.
	MsgForbidden = "You do not have permission to perform this action."

	// MsgEmailTaken is returned when registration is attempted with an email
	// address that is already in use.
	MsgEmailTaken = "A user with this email already exists."

	// MsgUserNotFound is returned when a requested user does not exist.
	MsgUserNotFound = "User not found."

	// MsgResetRequested is returned from the forgot-password endpoint whether or
	// not the email maps to an account.
	MsgResetRequested = "If the email address is registered, a confirmation link has been sent."

	// MsgPasswordChanged is returned after a staged password change is confirmed.
	MsgPasswordChanged = "Password updated successfully."

	// MsgLoggedOut is returned from the logout endpoint.
	MsgLoggedOut = "Logged out successfully."

	// MsgInternalError is the generic message for unexpected server failures.
	MsgInternalError = "An internal error occurred. Please try again later."

	// MsgResourceNotFound is the generic not-found message.
	MsgResourceNotFound = "The requested resource could not be found."

	// MsgMethodNotAllowed is returned for unsupported HTTP methods.
	MsgMethodNotAllowed = "Method not allowed for this endpoint."

	// MsgRequestBodyTooLarge is returned when a JSON body exceeds the size cap.
	MsgRequestBodyTooLarge = "Request body is too large."

	// MsgEmptyRequestBody is returned when a required JSON body is missing.
	MsgEmptyRequestBody = "Request body must not be empty."

	// MsgMalformedJSON is returned when a JSON body cannot be parsed.
	MsgMalformedJSON = "Request body contains malformed JSON."

	// MsgWeakPassword is returned when a password fails the strength rule.
	MsgWeakPassword = "Password must contain at least 3 of the following: uppercase letters, lowercase letters, numbers, and special characters"

	// MsgPhotoTooLarge is returned when an uploaded photo exceeds the size cap.
	MsgPhotoTooLarge = "Photo exceeds the maximum allowed size."

	// MsgUnsupportedImage is returned when an uploaded photo cannot be decoded.
	MsgUnsupportedImage = "Uploaded file is not a supported image format."

	// MsgServiceUnavailable is returned by the health endpoint when the
	// database cannot be reached.
	MsgServiceUnavailable = "Service is not healthy."
)

// Validation error detail keys used in structured validation responses.
const (
	// ValidationFieldKey is the detail key holding the offending field name.
	ValidationFieldKey = "field"

	// ValidationReasonKey is the detail key holding the failure reason.
	ValidationReasonKey = "reason"
)
