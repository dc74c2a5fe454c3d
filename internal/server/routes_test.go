package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vkotliar/profile-backend/internal/auth"
	"github.com/vkotliar/profile-backend/internal/config"
	"github.com/vkotliar/profile-backend/internal/constants"
	"github.com/vkotliar/profile-backend/internal/handlers"
	"github.com/vkotliar/profile-backend/internal/models"
	"github.com/vkotliar/profile-backend/internal/server"
	"github.com/vkotliar/profile-backend/internal/utils"
)

func init() {
	utils.InitValidator()
}

// MockDB is a mock implementation of the server.DBHealthChecker interface
type MockDB struct {
	HealthCheckFunc func(ctx context.Context) error
}

func (m *MockDB) HealthCheck(ctx context.Context) error {
	if m.HealthCheckFunc != nil {
		return m.HealthCheckFunc(ctx)
	}
	return nil
}

func (m *MockDB) Close() {}

// stubAuthService satisfies handlers.AuthServiceInterface with canned responses.
type stubAuthService struct{}

func (s *stubAuthService) RegisterUser(ctx context.Context, reg *models.UserRegistration) (*models.User, error) {
	return &models.User{ID: 1, Name: reg.Name, Email: reg.Email, Role: constants.RoleUser}, nil
}

func (s *stubAuthService) AuthenticateUser(ctx context.Context, creds *models.UserCredentials) (*models.User, string, error) {
	return &models.User{ID: 1, Email: creds.Email, Role: constants.RoleUser}, "stub-token", nil
}

// stubResetService satisfies handlers.PasswordResetServiceInterface.
type stubResetService struct{}

func (s *stubResetService) RequestReset(ctx context.Context, req *models.ForgotPasswordRequest) error {
	return nil
}

func (s *stubResetService) RequestChange(ctx context.Context, userID int64, req *models.ChangePasswordRequest) error {
	return nil
}

func (s *stubResetService) ConfirmChange(ctx context.Context, plaintextToken string) error {
	return nil
}

// stubUserService satisfies handlers.UserServiceInterface.
type stubUserService struct{}

func (s *stubUserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return &models.User{ID: id, Name: "Stub User", Email: "stub@example.com", Role: constants.RoleUser}, nil
}

func (s *stubUserService) UpdateProfile(ctx context.Context, id int64, update *models.ProfileUpdate) (*models.User, error) {
	return &models.User{ID: id}, nil
}

func (s *stubUserService) UpdatePhoto(ctx context.Context, id int64, photo io.Reader) (*models.User, error) {
	return &models.User{ID: id}, nil
}

func (s *stubUserService) ListUsers(ctx context.Context, page, pageSize int) ([]*models.User, int, error) {
	return []*models.User{}, 0, nil
}

func (s *stubUserService) UpdateRole(ctx context.Context, id int64, role string) (*models.User, error) {
	return &models.User{ID: id, Role: role}, nil
}

func (s *stubUserService) DeleteUser(ctx context.Context, id int64) error {
	return nil
}

// newTestServer builds a server with stubbed services and a healthy mock
// database, ready to route requests.
func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	cfg := &config.AppConfig{
		App: config.AppSettings{
			Environment: "test",
			Name:        "profile-backend-test",
			Version:     "test-version",
		},
		CORS: config.CORSSettings{
			AllowedOrigins:   []string{"*"},
			AllowCredentials: true,
		},
		JWT: config.JWTSettings{
			Secret: "test-secret",
			Expiry: 15 * time.Minute,
			Issuer: "test-issuer",
		},
		Uploads: config.UploadSettings{
			Dir: t.TempDir(),
		},
	}

	jwtService := auth.NewJWTService(&cfg.JWT)

	srv := &server.Server{
		Config: cfg,
		Db:     &MockDB{},
		Auth: &server.AuthProviders{
			JWTService:  jwtService,
			PasswordCfg: auth.DefaultPasswordConfig(),
		},
		Handlers: &server.Handlers{
			AuthHandler:          handlers.NewAuthHandler(&stubAuthService{}, jwtService),
			PasswordResetHandler: handlers.NewPasswordResetHandler(&stubResetService{}),
			UserHandler:          handlers.NewUserHandler(&stubUserService{}),
		},
	}

	srv.SetupRoutes()
	return srv
}

func bearerToken(t *testing.T, srv *server.Server, userID int64, role string) string {
	t.Helper()

	token, _, err := srv.Auth.JWTService.GenerateAccessToken(userID, "someone@example.com", role)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return constants.BearerTokenPrefix + token
}

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		healthCheck    func(ctx context.Context) error
		expectedStatus int
	}{
		{
			name:           "healthy",
			healthCheck:    func(ctx context.Context) error { return nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unhealthy",
			healthCheck:    func(ctx context.Context) error { return errors.New("connection refused") },
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			srv.Db = &MockDB{HealthCheckFunc: tt.healthCheck}

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()

			srv.GetRouter().ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Health check returned status %d, want %d", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestVersionEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rr := httptest.NewRecorder()

	srv.GetRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Version endpoint returned status %d, want %d", rr.Code, http.StatusOK)
	}

	var envelope struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Failed to parse response body: %v", err)
	}

	if !envelope.Success {
		t.Error("Expected success response")
	}
	if envelope.Data["version"] != "test-version" {
		t.Errorf("Expected version 'test-version', got %q", envelope.Data["version"])
	}
	if envelope.Data["environment"] != "test" {
		t.Errorf("Expected environment 'test', got %q", envelope.Data["environment"])
	}
}

// TestRoutesExist verifies that all expected routes are registered.
// Chi returns 405 Method Not Allowed for a known path with the wrong
// method, and 404 for an unknown path; a registered route with the
// right method returns neither.
func TestRoutesExist(t *testing.T) {
	srv := newTestServer(t)
	router := srv.GetRouter()

	expectedRoutes := []struct {
		method string
		path   string
	}{
		{"POST", "/api/auth/register"},
		{"POST", "/api/auth/login"},
		{"POST", "/api/auth/logout"},
		{"POST", "/api/auth/forgot-password"},
		{"GET", "/api/auth/confirm-password"},
		{"POST", "/api/auth/change-password"},
		{"GET", "/api/users/me"},
		{"PUT", "/api/users/me/profile"},
		{"POST", "/api/users/me/photo"},
		{"DELETE", "/api/users/me"},
		{"GET", "/api/users"},
		{"GET", "/api/users/42"},
		{"PUT", "/api/users/42/role"},
	}

	for _, route := range expectedRoutes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			if rr.Code == http.StatusNotFound || rr.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s not registered (status %d)", route.method, route.path, rr.Code)
			}
		})
	}
}

func TestProtectedRoutesRequireAuthentication(t *testing.T) {
	srv := newTestServer(t)
	router := srv.GetRouter()

	protectedRoutes := []struct {
		method string
		path   string
	}{
		{"POST", "/api/auth/logout"},
		{"POST", "/api/auth/change-password"},
		{"GET", "/api/users/me"},
		{"PUT", "/api/users/me/profile"},
		{"POST", "/api/users/me/photo"},
		{"DELETE", "/api/users/me"},
		{"GET", "/api/users"},
	}

	for _, route := range protectedRoutes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401 without token, got %d", rr.Code)
			}
		})
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	srv := newTestServer(t)
	router := srv.GetRouter()

	adminRoutes := []struct {
		method string
		path   string
	}{
		{"PUT", "/api/users/42/role"},
	}

	for _, route := range adminRoutes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			req.Header.Set(constants.HeaderAuthorization, bearerToken(t, srv, 1, constants.RoleUser))
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusForbidden {
				t.Errorf("Expected status 403 for non-admin, got %d", rr.Code)
			}
		})
	}
}

func TestAuthenticatedUserCanListUsers(t *testing.T) {
	srv := newTestServer(t)
	router := srv.GetRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set(constants.HeaderAuthorization, bearerToken(t, srv, 1, constants.RoleUser))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 for authenticated user, got %d", rr.Code)
	}
}

func TestAdminCanUpdateRole(t *testing.T) {
	srv := newTestServer(t)
	router := srv.GetRouter()

	body := `{"role":"admin"}`
	req := httptest.NewRequest(http.MethodPut, "/api/users/42/role", strings.NewReader(body))
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	req.Header.Set(constants.HeaderAuthorization, bearerToken(t, srv, 1, constants.RoleAdmin))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 for admin role update, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestAuthenticatedUserCanFetchProfile(t *testing.T) {
	srv := newTestServer(t)
	router := srv.GetRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set(constants.HeaderAuthorization, bearerToken(t, srv, 7, constants.RoleUser))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var envelope struct {
		Success bool        `json:"success"`
		Data    models.User `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Failed to parse response body: %v", err)
	}

	if !envelope.Success {
		t.Error("Expected success response")
	}
	if envelope.Data.ID != 7 {
		t.Errorf("Expected user ID 7, got %d", envelope.Data.ID)
	}
}

func TestRegisterRouteAcceptsValidBody(t *testing.T) {
	srv := newTestServer(t)
	router := srv.GetRouter()

	body := `{"name":"Vera Kot","email":"vera@example.com","password":"Str0ngPass!","confirm_password":"Str0ngPass!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestSecurityHeadersAppliedToAllRoutes(t *testing.T) {
	srv := newTestServer(t)
	router := srv.GetRouter()

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected X-Content-Type-Options header on responses")
	}
}
