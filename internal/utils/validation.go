package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vkotliar/profile-backend/internal/constants"
)

// validate holds the process-wide validator. It is lazily built by
// GetValidator so tests that skip InitValidator still work.
var validate *validator.Validate

// InitValidator builds the shared validator and wires in the custom rules.
func InitValidator() {
	validate = validator.New()

	// Report field names from the json tag so error payloads match
	// what the client actually sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation("strong_password", passwordStrengthRule); err != nil {
		log.Error().Err(err).Msg("Failed to register strong_password validation")
	}

	log.Info().Msg("Validator initialized")
}

// GetValidator returns the shared validator, building it on first use.
func GetValidator() *validator.Validate {
	if validate == nil {
		InitValidator()
	}
	return validate
}

// DecodeJSON reads a single JSON object from the request body into v,
// translating the decoder's errors into client-facing AppErrors.
func DecodeJSON(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, constants.MaxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return decodeError(err)
	}

	// A second value after the first object is almost always a client bug.
	if dec.More() {
		return NewBadRequestError("Request body must only contain a single JSON object")
	}
	return nil
}

// decodeError maps a json.Decoder failure onto an AppError the handler
// layer can write directly.
func decodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var invalidErr *json.InvalidUnmarshalError

	switch {
	case err.Error() == "http: request body too large":
		return NewBadRequestError(constants.MsgRequestBodyTooLarge)
	case errors.Is(err, io.EOF):
		return NewBadRequestError(constants.MsgEmptyRequestBody)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return NewBadRequestError(constants.MsgMalformedJSON)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return NewValidationError("unknown_field", fmt.Sprintf("Request body contains unknown field %s", field))
	case errors.As(err, &syntaxErr):
		return NewBadRequestError(fmt.Sprintf("Request body contains malformed JSON (at position %d)", syntaxErr.Offset))
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return NewValidationError(typeErr.Field, fmt.Sprintf("Must be a %s", typeErr.Type.String()))
		}
		return NewBadRequestError(fmt.Sprintf("Request body contains incorrect JSON type (at position %d)", typeErr.Offset))
	case errors.As(err, &invalidErr):
		return NewInternalServerError(err)
	default:
		return NewBadRequestError(fmt.Sprintf("Error decoding JSON: %s", err.Error()))
	}
}

// ValidateStruct runs tag validation on v and folds the result into a
// single AppError. One failing field yields a field error; several
// yield one error carrying a per-field detail map.
func ValidateStruct(v interface{}) error {
	err := GetValidator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewBadRequestError(err.Error())
	}

	if len(fieldErrs) == 1 {
		e := fieldErrs[0]
		return NewValidationError(e.Field(), tagMessage(e))
	}

	details := make(map[string]string, len(fieldErrs))
	for _, e := range fieldErrs {
		details[e.Field()] = tagMessage(e)
	}
	return NewValidationErrorWithDetails("Multiple validation errors", details)
}

// DecodeAndValidate is the usual handler entry point: decode the body,
// then validate the resulting struct.
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := DecodeJSON(r, v); err != nil {
		return err
	}
	return ValidateStruct(v)
}

// tagMessage turns a failed validation tag into a message safe to show
// to the client.
func tagMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		if e.Type().Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters long", e.Param())
		}
		return fmt.Sprintf("Must be at least %s", e.Param())
	case "max":
		if e.Type().Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters long", e.Param())
		}
		return fmt.Sprintf("Must be at most %s", e.Param())
	case "eqfield":
		return fmt.Sprintf("Must match the %s field", e.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(e.Param(), " ", ", "))
	case "e164":
		return "Must be a valid phone number in international format"
	case "strong_password":
		return constants.MsgWeakPassword
	default:
		return fmt.Sprintf("Failed validation on the '%s' tag", e.Tag())
	}
}

// passwordStrengthRule accepts a password containing at least three of:
// uppercase letters, lowercase letters, digits, punctuation/symbols.
func passwordStrengthRule(fl validator.FieldLevel) bool {
	var upper, lower, digit, symbol bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}

	classes := 0
	for _, ok := range []bool{upper, lower, digit, symbol} {
		if ok {
			classes++
		}
	}
	return classes >= 3
}

// NewValidationErrorWithDetails builds a validation error carrying a
// message per failed field.
func NewValidationErrorWithDetails(message string, details map[string]string) *AppError {
	detailsMap := make(map[string]interface{}, len(details))
	for k, v := range details {
		detailsMap[k] = v
	}
	return &AppError{
		Err:        ErrValidation,
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Details:    detailsMap,
	}
}

// IsValidEmail reports whether email passes the validator's email rule.
func IsValidEmail(email string) bool {
	return GetValidator().Var(email, "email") == nil
}

// ValidatePassword enforces the account password policy: length bounds
// plus the strength rule.
func ValidatePassword(password string) error {
	if len(password) < constants.MinPasswordLength {
		return NewValidationError("password", fmt.Sprintf("Password must be at least %d characters long", constants.MinPasswordLength))
	}
	if len(password) > constants.MaxPasswordLength {
		return NewValidationError("password", fmt.Sprintf("Password must be at most %d characters long", constants.MaxPasswordLength))
	}
	if err := GetValidator().Var(password, "strong_password"); err != nil {
		return NewValidationError("password", constants.MsgWeakPassword)
	}
	return nil
}
