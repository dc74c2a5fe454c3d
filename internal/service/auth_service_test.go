package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vkotliar/profile-backend/internal/auth"
	"github.com/vkotliar/profile-backend/internal/config"
	"github.com/vkotliar/profile-backend/internal/constants"
	"github.com/vkotliar/profile-backend/internal/models"
	"github.com/vkotliar/profile-backend/internal/utils"
)

// Mock implementations for testing
type MockUserRepository struct {
	users        map[int64]*models.User
	usersByEmail map[string]*models.User
	nextID       int64
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:        make(map[int64]*models.User),
		usersByEmail: make(map[string]*models.User),
		nextID:       1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if _, ok := m.usersByEmail[user.Email]; ok {
		return utils.NewDuplicateError("User", "email", user.Email)
	}

	user.ID = m.nextID
	m.nextID++
	if user.Role == "" {
		user.Role = constants.RoleUser
	}

	m.users[user.ID] = user
	m.usersByEmail[user.Email] = user

	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("User", id)
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.usersByEmail[email]
	if !ok {
		return nil, utils.NewNotFoundError("User", email)
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id int64, update *models.ProfileUpdate) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("User", id)
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	user.UpdatedAt = time.Now()

	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) SetPhotoURL(ctx context.Context, id int64, photoURL string) error {
	user, ok := m.users[id]
	if !ok {
		return utils.NewNotFoundError("User", id)
	}
	user.PhotoURL = photoURL
	return nil
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	user, ok := m.users[id]
	if !ok {
		return utils.NewNotFoundError("User", id)
	}
	user.Role = role
	return nil
}

func (m *MockUserRepository) ChangePassword(ctx context.Context, id int64, passwordHash, salt string) error {
	user, ok := m.users[id]
	if !ok {
		return utils.NewNotFoundError("User", id)
	}
	user.PasswordHash = passwordHash
	user.Salt = salt
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	users := make([]*models.User, 0)
	i := 0
	for id := int64(1); id < m.nextID; id++ {
		user, ok := m.users[id]
		if !ok {
			continue
		}
		if i >= offset && len(users) < limit {
			copied := *user
			users = append(users, &copied)
		}
		i++
	}
	return users, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := m.usersByEmail[email]
	return ok, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	user, ok := m.users[id]
	if !ok {
		return utils.NewNotFoundError("User", id)
	}
	delete(m.usersByEmail, user.Email)
	delete(m.users, id)
	return nil
}

type MockPasswordResetRepository struct {
	tokens   map[string]*models.PasswordResetToken
	userRepo *MockUserRepository
}

func NewMockPasswordResetRepository(userRepo *MockUserRepository) *MockPasswordResetRepository {
	return &MockPasswordResetRepository{
		tokens:   make(map[string]*models.PasswordResetToken),
		userRepo: userRepo,
	}
}

func (m *MockPasswordResetRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	for hash, existing := range m.tokens {
		if existing.UserID == token.UserID && !existing.IsUsed() {
			delete(m.tokens, hash)
		}
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *MockPasswordResetRepository) ConsumeAndChangePassword(ctx context.Context, tokenHash string) (int64, error) {
	token, ok := m.tokens[tokenHash]
	if !ok {
		return 0, utils.ErrInvalidToken
	}
	if token.IsUsed() {
		return 0, utils.ErrUsedToken
	}
	if token.IsExpired() {
		return 0, utils.ErrExpiredToken
	}

	now := time.Now()
	token.UsedAt = &now

	if err := m.userRepo.ChangePassword(ctx, token.UserID, token.NewPasswordHash, token.NewSalt); err != nil {
		return 0, err
	}

	for hash, other := range m.tokens {
		if other.UserID == token.UserID && hash != tokenHash {
			delete(m.tokens, hash)
		}
	}

	return token.UserID, nil
}

func (m *MockPasswordResetRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	for hash, token := range m.tokens {
		if token.UserID == userID {
			delete(m.tokens, hash)
		}
	}
	return nil
}

func (m *MockPasswordResetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	var count int64
	for hash, token := range m.tokens {
		if token.IsExpired() {
			delete(m.tokens, hash)
			count++
		}
	}
	return count, nil
}

// MockMailer records sent confirmation emails.
type MockMailer struct {
	sentTo     []string
	sentTokens []string
	failSend   bool
}

func (m *MockMailer) SendPasswordConfirmEmail(toEmail, toName, token string) error {
	if m.failSend {
		return errors.New("send failed")
	}
	m.sentTo = append(m.sentTo, toEmail)
	m.sentTokens = append(m.sentTokens, token)
	return nil
}

// testPasswordConfig uses minimal settings for faster tests.
func testPasswordConfig() *auth.PasswordConfig {
	return &auth.PasswordConfig{
		Memory:      16 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(&config.JWTSettings{
		Secret: "test-secret",
		Expiry: 15 * time.Minute,
		Issuer: "test-issuer",
	})
}

func TestNewAuthService(t *testing.T) {
	userRepo := NewMockUserRepository()

	service := NewAuthService(userRepo, testJWTService(), testPasswordConfig())

	if service == nil {
		t.Error("Expected non-nil service")
	}
}

func TestAuthService_RegisterUser(t *testing.T) {
	userRepo := NewMockUserRepository()
	service := NewAuthService(userRepo, testJWTService(), testPasswordConfig())

	reg := &models.UserRegistration{
		Name:            "Vera Kotliar",
		Email:           "vera@example.com",
		Phone:           "+4712345678",
		Password:        "Sup3rSecret!",
		ConfirmPassword: "Sup3rSecret!",
	}

	user, err := service.RegisterUser(context.Background(), reg)
	if err != nil {
		t.Fatalf("RegisterUser() error = %v", err)
	}

	if user.ID == 0 {
		t.Error("Expected user to be assigned an ID")
	}
	if user.Role != constants.RoleUser {
		t.Errorf("Expected role %q, got %q", constants.RoleUser, user.Role)
	}
	if user.PasswordHash != "" || user.Salt != "" {
		t.Error("Expected sanitized user without password material")
	}

	stored := userRepo.usersByEmail["vera@example.com"]
	if stored == nil {
		t.Fatal("Expected user to be persisted")
	}
	if stored.PasswordHash == "" || stored.Salt == "" {
		t.Error("Expected stored user to have hashed password and salt")
	}
	if stored.PasswordHash == "Sup3rSecret!" {
		t.Error("Password must not be stored in plaintext")
	}
}

func TestAuthService_RegisterUser_PasswordMismatch(t *testing.T) {
	service := NewAuthService(NewMockUserRepository(), testJWTService(), testPasswordConfig())

	reg := &models.UserRegistration{
		Name:            "Vera Kotliar",
		Email:           "vera@example.com",
		Password:        "Sup3rSecret!",
		ConfirmPassword: "different",
	}

	_, err := service.RegisterUser(context.Background(), reg)
	if err == nil {
		t.Fatal("Expected error for mismatched passwords")
	}
	if !utils.IsValidationError(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestAuthService_RegisterUser_DuplicateEmail(t *testing.T) {
	userRepo := NewMockUserRepository()
	service := NewAuthService(userRepo, testJWTService(), testPasswordConfig())

	reg := &models.UserRegistration{
		Name:            "Vera Kotliar",
		Email:           "vera@example.com",
		Password:        "Sup3rSecret!",
		ConfirmPassword: "Sup3rSecret!",
	}

	if _, err := service.RegisterUser(context.Background(), reg); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}

	_, err := service.RegisterUser(context.Background(), reg)
	if err == nil {
		t.Fatal("Expected error for duplicate email")
	}
	if !utils.IsDuplicateError(err) {
		t.Errorf("Expected duplicate error, got %v", err)
	}
}

func TestAuthService_AuthenticateUser(t *testing.T) {
	userRepo := NewMockUserRepository()
	passwordCfg := testPasswordConfig()
	service := NewAuthService(userRepo, testJWTService(), passwordCfg)

	testPassword := "Sup3rSecret!"
	hash, salt, err := auth.HashPassword(testPassword, passwordCfg)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Name:         "Vera Kotliar",
		Email:        "vera@example.com",
		PasswordHash: hash,
		Salt:         salt,
	}
	if err := userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	creds := &models.UserCredentials{
		Email:    "vera@example.com",
		Password: testPassword,
	}

	authenticatedUser, accessToken, err := service.AuthenticateUser(context.Background(), creds)
	if err != nil {
		t.Fatalf("AuthenticateUser() error = %v", err)
	}
	if authenticatedUser.ID != user.ID {
		t.Errorf("Expected ID = %d, got %d", user.ID, authenticatedUser.ID)
	}
	if accessToken == "" {
		t.Error("Expected non-empty access token")
	}
	if authenticatedUser.PasswordHash != "" {
		t.Error("Expected sanitized user")
	}
}

func TestAuthService_AuthenticateUser_FailuresAreIndistinguishable(t *testing.T) {
	userRepo := NewMockUserRepository()
	passwordCfg := testPasswordConfig()
	service := NewAuthService(userRepo, testJWTService(), passwordCfg)

	hash, salt, err := auth.HashPassword("Sup3rSecret!", passwordCfg)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if err := userRepo.Create(context.Background(), &models.User{
		Email:        "vera@example.com",
		PasswordHash: hash,
		Salt:         salt,
	}); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	// Wrong password for an existing account.
	_, _, errWrongPassword := service.AuthenticateUser(context.Background(), &models.UserCredentials{
		Email:    "vera@example.com",
		Password: "wrongpassword",
	})
	if errWrongPassword == nil {
		t.Fatal("Expected error for wrong password")
	}

	// Unknown account.
	_, _, errUnknownUser := service.AuthenticateUser(context.Background(), &models.UserCredentials{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if errUnknownUser == nil {
		t.Fatal("Expected error for unknown user")
	}

	// Both failures must be the same error so the caller cannot tell
	// which credential part was wrong.
	if errWrongPassword.Error() != errUnknownUser.Error() {
		t.Errorf("Expected identical errors, got %q and %q", errWrongPassword.Error(), errUnknownUser.Error())
	}
	if !errors.Is(errWrongPassword, utils.ErrInvalidCredentials) || !errors.Is(errUnknownUser, utils.ErrInvalidCredentials) {
		t.Error("Expected invalid credentials errors")
	}
}

func TestAuthService_VerifyCurrentPassword(t *testing.T) {
	userRepo := NewMockUserRepository()
	passwordCfg := testPasswordConfig()
	service := NewAuthService(userRepo, testJWTService(), passwordCfg)

	hash, salt, err := auth.HashPassword("Sup3rSecret!", passwordCfg)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{
		Email:        "vera@example.com",
		PasswordHash: hash,
		Salt:         salt,
	}
	if err := userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	if err := service.VerifyCurrentPassword(context.Background(), user.ID, "Sup3rSecret!"); err != nil {
		t.Errorf("VerifyCurrentPassword() error = %v", err)
	}

	err = service.VerifyCurrentPassword(context.Background(), user.ID, "wrongpassword")
	if !errors.Is(err, utils.ErrInvalidCredentials) {
		t.Errorf("Expected invalid credentials error, got %v", err)
	}
}
