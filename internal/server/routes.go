package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/vkotliar/profile-backend/internal/constants"
	"github.com/vkotliar/profile-backend/internal/middleware"
	"github.com/vkotliar/profile-backend/internal/utils"
)

// SetupRoutes builds the router: global middleware, unprotected health
// and version endpoints, static serving of uploaded photos, and the
// /api tree split into public auth endpoints, bearer-protected user
// endpoints and the admin-only role endpoint.
func (s *Server) SetupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.CORS(&s.Config.CORS))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogging())
	r.Use(middleware.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(constants.MaxUploadBytes))

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)

	// Uploaded profile photos.
	fileServer := http.FileServer(http.Dir(s.Config.Uploads.Dir))
	r.Handle(constants.UploadsBasePath+"/*", http.StripPrefix(constants.UploadsBasePath+"/", fileServer))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.Handlers.AuthHandler.Register)
			r.Post("/login", s.Handlers.AuthHandler.Login)
			r.Post("/forgot-password", s.Handlers.PasswordResetHandler.ForgotPassword)

			// Confirmation links arrive from email, so the endpoint
			// cannot require a bearer token.
			r.Get("/confirm-password", s.Handlers.PasswordResetHandler.ConfirmChange)

			r.Group(func(r chi.Router) {
				r.Use(middleware.JWTAuth(s.Auth.JWTService))
				r.Post("/logout", s.Handlers.AuthHandler.Logout)
				r.Post("/change-password", s.Handlers.PasswordResetHandler.ChangePassword)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.JWTAuth(s.Auth.JWTService))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", s.Handlers.UserHandler.GetCurrentUser)
				r.Put("/profile", s.Handlers.UserHandler.UpdateProfile)
				r.Post("/photo", s.Handlers.UserHandler.UploadPhoto)
				r.Delete("/", s.Handlers.UserHandler.DeleteAccount)
			})

			r.Get("/", s.Handlers.UserHandler.ListUsers)
			r.Get("/{userID}", s.Handlers.UserHandler.GetUser)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly())
				r.Put("/{userID}/role", s.Handlers.UserHandler.UpdateRole)
			})
		})
	})

	s.router = r
}

// GetRouter exposes the configured router, mainly for tests that mount
// it on an httptest server.
func (s *Server) GetRouter() chi.Router {
	return s.router
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{
		"version":     s.Config.App.Version,
		"environment": s.Config.App.Environment,
	})
}

// handleHealth reports whether the service and its database are reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.Db == nil {
		utils.Error(w, http.StatusServiceUnavailable, constants.CodeServiceUnavailable, constants.MsgServiceUnavailable, nil)
		return
	}

	if err := s.Db.HealthCheck(r.Context()); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		utils.Error(w, http.StatusServiceUnavailable, constants.CodeServiceUnavailable, constants.MsgServiceUnavailable, nil)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.Config.App.Version,
	})
}
