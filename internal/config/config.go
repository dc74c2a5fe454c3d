// Package config handles loading, validation and access of application
// configuration. Configuration is read from an optional YAML file, then
// overridden by environment variables, then filled in with defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/vkotliar/profile-backend/internal/constants"
)

// AppConfig is the root of the configuration tree.
type AppConfig struct {
	App           AppSettings           `yaml:"app"`
	Database      DatabaseSettings      `yaml:"database"`
	Server        ServerSettings        `yaml:"server"`
	JWT           JWTSettings           `yaml:"jwt"`
	PasswordReset PasswordResetSettings `yaml:"password_reset"`
	Logging       LoggingSettings       `yaml:"logging"`
	CORS          CORSSettings          `yaml:"cors"`
	PasswordHash  HashSettings          `yaml:"password_hash"`
	Email         EmailSettings         `yaml:"email"`
	Uploads       UploadSettings        `yaml:"uploads"`
	Maintenance   MaintenanceSettings   `yaml:"maintenance"`
}

// AppSettings identifies the deployment.
type AppSettings struct {
	Environment string `yaml:"environment" env:"APP_ENV"`
	Name        string `yaml:"name" env:"APP_NAME"`
	Version     string `yaml:"version" env:"APP_VERSION"`
}

// DatabaseSettings configures the PostgreSQL pool.
type DatabaseSettings struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	Name     string `yaml:"name" env:"DB_NAME"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE"`
	MaxConns int    `yaml:"max_conns" env:"DB_MAX_CONNS"`
	MinConns int    `yaml:"min_conns" env:"DB_MIN_CONNS"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// JWTSettings configures session token signing.
type JWTSettings struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET"`
	Expiry time.Duration `yaml:"expiry" env:"JWT_EXPIRY"`
	Issuer string        `yaml:"issuer" env:"JWT_ISSUER"`
}

// PasswordResetSettings configures the confirmed password change flow.
type PasswordResetSettings struct {
	TokenTTL time.Duration `yaml:"token_ttl" env:"PASSWORD_RESET_TOKEN_TTL"`
	// ConfirmBaseURL is the public URL confirmation links point at,
	// e.g. https://app.example.com/api/auth/confirm-password.
	ConfirmBaseURL string `yaml:"confirm_base_url" env:"PASSWORD_RESET_CONFIRM_URL"`
}

// LoggingSettings configures zerolog output.
type LoggingSettings struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"`
	RequestLog bool   `yaml:"request_log" env:"LOG_REQUESTS"`
}

// CORSSettings configures cross-origin access.
type CORSSettings struct {
	AllowedOrigins   []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	AllowCredentials bool     `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS"`
}

// HashSettings holds the Argon2id cost parameters.
type HashSettings struct {
	Memory      uint32 `yaml:"memory" env:"HASH_MEMORY"`
	Iterations  uint32 `yaml:"iterations" env:"HASH_ITERATIONS"`
	Parallelism uint8  `yaml:"parallelism" env:"HASH_PARALLELISM"`
	SaltLength  uint32 `yaml:"salt_length" env:"HASH_SALT_LENGTH"`
	KeyLength   uint32 `yaml:"key_length" env:"HASH_KEY_LENGTH"`
}

// EmailSettings configures outbound mail delivery.
type EmailSettings struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	FromAddress    string `yaml:"from_address" env:"EMAIL_FROM_ADDRESS"`
	FromName       string `yaml:"from_name" env:"EMAIL_FROM_NAME"`
}

// UploadSettings configures profile photo storage and processing.
type UploadSettings struct {
	Dir          string `yaml:"dir" env:"UPLOAD_DIR"`
	MaxBytes     int64  `yaml:"max_bytes" env:"UPLOAD_MAX_BYTES"`
	MaxDimension int    `yaml:"max_dimension" env:"UPLOAD_MAX_DIMENSION"`
	JPEGQuality  int    `yaml:"jpeg_quality" env:"UPLOAD_JPEG_QUALITY"`
}

// MaintenanceSettings configures the background maintenance ticker.
type MaintenanceSettings struct {
	Interval time.Duration `yaml:"interval" env:"MAINTENANCE_INTERVAL"`
}

// ConnectionString renders the lib/pq connection string.
func (dbs *DatabaseSettings) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbs.Host, dbs.Port, dbs.User, dbs.Password, dbs.Name, dbs.SSLMode,
	)
}

// ServerAddress renders the host:port listen address.
func (ss *ServerSettings) ServerAddress() string {
	return fmt.Sprintf("%s:%d", ss.Host, ss.Port)
}

func (as *AppSettings) IsDevelopment() bool {
	return strings.ToLower(as.Environment) == constants.EnvDevelopment
}

func (as *AppSettings) IsProduction() bool {
	return strings.ToLower(as.Environment) == constants.EnvProduction
}

func (as *AppSettings) IsTest() bool {
	return strings.ToLower(as.Environment) == constants.EnvTest
}

// cfg is the configuration Load last produced, exposed through Get.
var cfg *AppConfig

// Load reads the YAML file at configPath when present, overlays
// environment variables, fills defaults and validates the result.
func Load(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := LoadEnv(config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	setDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = config
	logConfig(config)
	return config, nil
}

// Get returns the loaded configuration.
func Get() *AppConfig {
	if cfg == nil {
		log.Fatal().Msg("configuration not loaded")
	}
	return cfg
}

// setDefaults fills every zero-valued setting with its default.
func setDefaults(config *AppConfig) {
	defaultString(&config.App.Environment, constants.EnvDevelopment)
	defaultString(&config.App.Name, "profile-backend")
	defaultString(&config.App.Version, "1.0.0")

	defaultString(&config.Server.Host, constants.DefaultServerHost)
	defaultInt(&config.Server.Port, constants.DefaultServerPort)
	defaultDuration(&config.Server.ReadTimeout, constants.DefaultReadTimeout)
	defaultDuration(&config.Server.WriteTimeout, constants.DefaultWriteTimeout)
	defaultDuration(&config.Server.IdleTimeout, constants.DefaultIdleTimeout)
	defaultDuration(&config.Server.ShutdownTimeout, constants.DefaultShutdownTimeout)

	defaultString(&config.Database.Host, constants.DefaultDBHost)
	defaultInt(&config.Database.Port, constants.DefaultDBPort)
	defaultString(&config.Database.Name, constants.DefaultDBName)
	defaultString(&config.Database.SSLMode, "disable")
	defaultInt(&config.Database.MaxConns, constants.DefaultMaxOpenConns)
	defaultInt(&config.Database.MinConns, constants.DefaultMaxIdleConns)

	defaultDuration(&config.JWT.Expiry, constants.DefaultJWTExpiry)
	defaultString(&config.JWT.Issuer, constants.DefaultJWTIssuer)

	defaultDuration(&config.PasswordReset.TokenTTL, constants.DefaultPasswordResetTokenTTL)

	defaultString(&config.Logging.Level, constants.DefaultLogLevel)
	defaultString(&config.Logging.Format, constants.DefaultLogFormat)

	if len(config.CORS.AllowedOrigins) == 0 {
		config.CORS.AllowedOrigins = []string{"*"}
	}

	if config.PasswordHash.Memory == 0 {
		config.PasswordHash.Memory = constants.Argon2Memory
	}
	if config.PasswordHash.Iterations == 0 {
		config.PasswordHash.Iterations = constants.Argon2Time
	}
	if config.PasswordHash.Parallelism == 0 {
		config.PasswordHash.Parallelism = constants.Argon2Threads
	}
	if config.PasswordHash.SaltLength == 0 {
		config.PasswordHash.SaltLength = constants.SaltLength
	}
	if config.PasswordHash.KeyLength == 0 {
		config.PasswordHash.KeyLength = constants.Argon2KeyLength
	}

	defaultString(&config.Uploads.Dir, constants.DefaultUploadDir)
	if config.Uploads.MaxBytes == 0 {
		config.Uploads.MaxBytes = constants.MaxUploadBytes
	}
	defaultInt(&config.Uploads.MaxDimension, constants.PhotoMaxDimension)
	defaultInt(&config.Uploads.JPEGQuality, constants.PhotoJPEGQuality)

	defaultDuration(&config.Maintenance.Interval, constants.DefaultMaintenanceInterval)
}

func defaultString(target *string, value string) {
	if *target == "" {
		*target = value
	}
}

func defaultInt(target *int, value int) {
	if *target == 0 {
		*target = value
	}
}

func defaultDuration(target *time.Duration, value time.Duration) {
	if *target == 0 {
		*target = value
	}
}

// validLogLevels are the zerolog levels the logger accepts.
var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true,
	"error": true, "fatal": true, "panic": true,
}

// validateConfig rejects configurations the application cannot run
// with. An unknown environment degrades to development; a placeholder
// JWT secret in production is fatal.
func validateConfig(config *AppConfig) error {
	env := strings.ToLower(config.App.Environment)
	if env != constants.EnvDevelopment && env != constants.EnvTest && env != constants.EnvProduction {
		log.Warn().Str("environment", config.App.Environment).Msg("Invalid environment, defaulting to development")
		config.App.Environment = constants.EnvDevelopment
	}

	if config.App.IsProduction() && (config.JWT.Secret == "" || config.JWT.Secret == "changeme") {
		return fmt.Errorf("JWT secret must be set in production")
	}

	if config.Database.User == "" {
		return fmt.Errorf("database user must be set")
	}

	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// logConfig logs the effective configuration with secrets redacted.
func logConfig(config *AppConfig) {
	logCfg := *config
	if logCfg.Database.Password != "" {
		logCfg.Database.Password = constants.LogRedactedValue
	}
	if logCfg.JWT.Secret != "" {
		logCfg.JWT.Secret = constants.LogRedactedValue
	}
	if logCfg.Email.SendGridAPIKey != "" {
		logCfg.Email.SendGridAPIKey = constants.LogRedactedValue
	}

	log.Info().
		Str("environment", logCfg.App.Environment).
		Str("version", logCfg.App.Version).
		Str("server", logCfg.Server.ServerAddress()).
		Str("db_host", logCfg.Database.Host).
		Int("db_port", logCfg.Database.Port).
		Str("db_name", logCfg.Database.Name).
		Str("upload_dir", logCfg.Uploads.Dir).
		Str("log_level", logCfg.Logging.Level).
		Msg("Configuration loaded")
}
