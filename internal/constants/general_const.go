package constants

// Route prefixes.
const (
	// APIBasePath prefixes every API endpoint.
	APIBasePath = "/api"

	// HealthPath is the readiness probe endpoint.
	HealthPath = "/health"

	// UploadsBasePath is where stored profile photos are served from.
	UploadsBasePath = "/uploads"
)

// ParamUserID is the URL parameter naming a user in a route.
const ParamUserID = "userID"

// Query string parameters.
const (
	QueryParamPage     = "page"
	QueryParamPageSize = "page_size"

	// QueryParamToken carries a password-reset confirmation token.
	QueryParamToken = "token"
)

// FormFieldPhoto is the multipart field carrying an uploaded profile photo.
const FormFieldPhoto = "photo"
