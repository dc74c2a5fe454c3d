// Package server wires the application together and manages the HTTP
// server lifecycle: startup, routing, periodic maintenance and
// graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/vkotliar/profile-backend/internal/auth"
	"github.com/vkotliar/profile-backend/internal/config"
	"github.com/vkotliar/profile-backend/internal/constants"
	"github.com/vkotliar/profile-backend/internal/database"
	"github.com/vkotliar/profile-backend/internal/handlers"
	"github.com/vkotliar/profile-backend/internal/repository"
	"github.com/vkotliar/profile-backend/internal/service"
	"github.com/vkotliar/profile-backend/internal/storage"
	"github.com/vkotliar/profile-backend/migrations"
	"github.com/vkotliar/profile-backend/scripts"
)

// Handlers groups the HTTP handlers mounted by SetupRoutes.
type Handlers struct {
	AuthHandler          *handlers.AuthHandler
	PasswordResetHandler *handlers.PasswordResetHandler
	UserHandler          *handlers.UserHandler
}

// AuthProviders groups the authentication dependencies: token signing
// and password hashing configuration.
type AuthProviders struct {
	JWTService  *auth.JWTService
	PasswordCfg *auth.PasswordConfig
}

// Server owns every component of the running API. The exported fields
// let route tests assemble a Server around stub services.
type Server struct {
	Config   *config.AppConfig
	Db       DBHealthChecker
	Handlers *Handlers
	Auth     *AuthProviders

	pool         *database.Pool
	router       chi.Router
	httpServer   *http.Server
	resetService *service.PasswordResetService
}

// NewServer builds a fully wired server. Initialization order matters:
// auth providers come first because the seeder hashes the bootstrap
// admin password, then database, repositories, services, handlers and
// finally the routes.
func NewServer(cfg *config.AppConfig) (*Server, error) {
	s := &Server{Config: cfg}

	if err := s.setupAuthProviders(); err != nil {
		return nil, fmt.Errorf("failed to set up auth providers: %w", err)
	}
	if err := s.setupDatabase(); err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}
	if err := s.setupRepositories(); err != nil {
		return nil, fmt.Errorf("failed to set up repositories: %w", err)
	}
	if err := s.setupServices(); err != nil {
		return nil, fmt.Errorf("failed to set up services: %w", err)
	}
	if err := s.setupHandlers(); err != nil {
		return nil, fmt.Errorf("failed to set up handlers: %w", err)
	}
	s.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

func (s *Server) setupAuthProviders() error {
	s.Auth = &AuthProviders{
		JWTService:  auth.NewJWTService(&s.Config.JWT),
		PasswordCfg: auth.ConfigFromAppConfig(s.Config),
	}
	return nil
}

// setupDatabase connects the pool, brings the schema up to date and
// seeds the bootstrap data.
func (s *Server) setupDatabase() error {
	db, err := database.Connect(s.Config)
	if err != nil {
		return err
	}
	s.pool = db
	s.Db = db

	if err := migrations.NewMigrator(db).RunMigrations(context.Background()); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	if err := scripts.NewSeeder(db, s.Auth.PasswordCfg).SeedDatabase(context.Background()); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	return nil
}

// repositories holds the data-access layer shared by the services.
var repositories struct {
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
}

func (s *Server) setupRepositories() error {
	repositories.userRepo = repository.NewUserRepository(s.pool)
	repositories.resetRepo = repository.NewPasswordResetRepository(s.pool)
	return nil
}

// services holds the business-logic layer consumed by the handlers.
var services struct {
	authService  *service.AuthService
	resetService *service.PasswordResetService
	userService  *service.UserService
}

func (s *Server) setupServices() error {
	if s.Auth == nil || s.Auth.JWTService == nil {
		return fmt.Errorf("JWT service not initialized")
	}
	if s.Auth.PasswordCfg == nil {
		return fmt.Errorf("password config not initialized")
	}

	photoStore, err := storage.NewLocalPhotoStore(&s.Config.Uploads)
	if err != nil {
		return fmt.Errorf("failed to set up photo store: %w", err)
	}

	// Outside production a missing SendGrid key degrades to logging
	// confirmation links instead of failing startup.
	var mailer service.PasswordResetMailer
	mailer, err = service.NewEmailService(&s.Config.Email, &s.Config.PasswordReset)
	if err != nil {
		if s.Config.App.IsProduction() {
			return fmt.Errorf("failed to set up email service: %w", err)
		}
		log.Warn().Err(err).Msg("Email delivery not configured, confirmation links will be logged instead")
		mailer = service.NewLogMailer(&s.Config.PasswordReset)
	}

	services.authService = service.NewAuthService(
		repositories.userRepo,
		s.Auth.JWTService,
		s.Auth.PasswordCfg,
	)
	services.resetService = service.NewPasswordResetService(
		repositories.userRepo,
		repositories.resetRepo,
		services.authService,
		mailer,
		s.Auth.PasswordCfg,
		&s.Config.PasswordReset,
	)
	services.userService = service.NewUserService(
		repositories.userRepo,
		repositories.resetRepo,
		photoStore,
	)

	s.resetService = services.resetService
	return nil
}

func (s *Server) setupHandlers() error {
	s.Handlers = &Handlers{
		AuthHandler:          handlers.NewAuthHandler(services.authService, s.Auth.JWTService),
		PasswordResetHandler: handlers.NewPasswordResetHandler(services.resetService),
		UserHandler:          handlers.NewUserHandler(services.userService),
	}
	if s.Handlers.AuthHandler == nil {
		return fmt.Errorf("failed to initialize AuthHandler")
	}
	return nil
}

// Start serves HTTP until the process receives SIGINT/SIGTERM or the
// listener fails, then shuts down gracefully within the configured
// timeout. The maintenance ticker is scheduled here as well.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.Config.Server.ServerAddress()).
			Msg("Starting server")
		serverErrors <- s.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	s.SetupMaintenanceTasks()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info().
			Str("signal", sig.String()).
			Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			// Graceful shutdown failed; drop the connections.
			if closeErr := s.httpServer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests and closes the database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Info().Msg("Server stopped gracefully")

	if s.Db != nil {
		s.Db.Close()
		log.Info().Msg("Database connection closed")
	}
	return nil
}

// SetupMaintenanceTasks starts the background ticker that purges
// expired password reset tokens so the table does not accumulate
// stale rows.
func (s *Server) SetupMaintenanceTasks() {
	ticker := time.NewTicker(s.Config.Maintenance.Interval)
	go func() {
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), constants.MaintenanceTaskTimeout)

			if count, err := s.resetService.PurgeExpired(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to purge expired password reset tokens")
			} else if count > 0 {
				log.Info().Int64("count", count).Msg("Purged expired password reset tokens")
			}

			cancel()
		}
	}()
}
