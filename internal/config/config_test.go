package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, `
app:
  environment: test
  name: TestApp
  version: 1.0.0
server:
  host: 127.0.0.1
  port: 9090
  read_timeout: 5s
  write_timeout: 10s
database:
  host: localhost
  port: 5432
  name: test_db
  user: testuser
  password: testpass
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Environment != "test" {
		t.Errorf("App.Environment = %q, want %q", cfg.App.Environment, "test")
	}
	if cfg.App.Name != "TestApp" {
		t.Errorf("App.Name = %q, want %q", cfg.App.Name, "TestApp")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
}

func TestLoadWithInvalidPath(t *testing.T) {
	// With no file and no environment, validation fails on the missing
	// database user.
	if _, err := Load("non_existent_config.yaml"); err == nil {
		t.Fatal("Load() with non-existent file should fail validation")
	}
}

func TestGet(t *testing.T) {
	origCfg := cfg
	defer func() { cfg = origCfg }()

	testCfg := &AppConfig{App: AppSettings{Name: "TestApp"}}
	cfg = testCfg

	if got := Get(); got != testCfg {
		t.Errorf("Get() = %v, want the configured instance", got)
	}
}

func TestDatabaseSettings_ConnectionString(t *testing.T) {
	settings := DatabaseSettings{
		Host:     "localhost",
		Port:     5432,
		Name:     "testdb",
		User:     "user",
		Password: "pass",
		SSLMode:  "disable",
	}

	want := "host=localhost port=5432 user=user password=pass dbname=testdb sslmode=disable"
	if got := settings.ConnectionString(); got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}

func TestServerSettings_ServerAddress(t *testing.T) {
	settings := ServerSettings{Host: "localhost", Port: 8080}
	if got := settings.ServerAddress(); got != "localhost:8080" {
		t.Errorf("ServerAddress() = %q, want localhost:8080", got)
	}
}

func TestAppSettings_Environment(t *testing.T) {
	tests := []struct {
		environment  string
		isDev        bool
		isProduction bool
		isTest       bool
	}{
		{"development", true, false, false},
		{"production", false, true, false},
		{"test", false, false, true},
		{"unknown", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			settings := AppSettings{Environment: tt.environment}

			if got := settings.IsDevelopment(); got != tt.isDev {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.isDev)
			}
			if got := settings.IsProduction(); got != tt.isProduction {
				t.Errorf("IsProduction() = %v, want %v", got, tt.isProduction)
			}
			if got := settings.IsTest(); got != tt.isTest {
				t.Errorf("IsTest() = %v, want %v", got, tt.isTest)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	cfg := &AppConfig{}
	setDefaults(cfg)

	if cfg.App.Environment != "development" {
		t.Errorf("App.Environment = %q, want development", cfg.App.Environment)
	}
	if cfg.App.Name != "profile-backend" {
		t.Errorf("App.Name = %q, want profile-backend", cfg.App.Name)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want localhost", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.JWT.Expiry != 24*time.Hour {
		t.Errorf("JWT.Expiry = %v, want 24h", cfg.JWT.Expiry)
	}
	if cfg.PasswordReset.TokenTTL != time.Hour {
		t.Errorf("PasswordReset.TokenTTL = %v, want 1h", cfg.PasswordReset.TokenTTL)
	}
	if cfg.Uploads.MaxBytes != 5<<20 {
		t.Errorf("Uploads.MaxBytes = %d, want %d", cfg.Uploads.MaxBytes, 5<<20)
	}
}

// validConfig returns a config that passes validation; tests mutate a
// single field to probe each rule.
func validConfig() *AppConfig {
	return &AppConfig{
		App:      AppSettings{Environment: "development"},
		Database: DatabaseSettings{User: "testuser"},
		JWT:      JWTSettings{Secret: "some-secret"},
		Logging:  LoggingSettings{Level: "info"},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*AppConfig)
		shouldErr bool
	}{
		{
			name:   "valid config",
			mutate: func(c *AppConfig) {},
		},
		{
			// An unknown environment falls back to development with a warning.
			name:   "invalid environment",
			mutate: func(c *AppConfig) { c.App.Environment = "invalid" },
		},
		{
			name: "production with placeholder JWT secret",
			mutate: func(c *AppConfig) {
				c.App.Environment = "production"
				c.JWT.Secret = "changeme"
			},
			shouldErr: true,
		},
		{
			name:      "missing database user",
			mutate:    func(c *AppConfig) { c.Database.User = "" },
			shouldErr: true,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *AppConfig) { c.Logging.Level = "invalid" },
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if (err != nil) != tt.shouldErr {
				t.Errorf("validateConfig() error = %v, shouldErr %v", err, tt.shouldErr)
			}
		})
	}
}
