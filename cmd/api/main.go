// Package main starts the profile backend API server: user registration,
// authentication, profile management and the confirmed password change flow.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vkotliar/profile-backend/internal/config"
	"github.com/vkotliar/profile-backend/internal/server"
	"github.com/vkotliar/profile-backend/internal/utils"
)

// Build metadata, injected through -ldflags at release time.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func init() {
	// A missing .env is fine; configuration can come from the
	// environment or the YAML file alone.
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded; relying on process environment")
	}
}

func main() {
	var (
		configPath  string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "path to the YAML configuration file")
	flag.BoolVar(&showVersion, "version", false, "print build information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("Profile Backend API Server\nVersion: %s\nCommit: %s\nBuild Date: %s\n", version, commit, buildDate)
		return
	}

	// Bootstrap logger until the configured one takes over.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}
	if version != "dev" {
		cfg.App.Version = version
	}

	utils.InitLogger(cfg)
	utils.InitValidator()

	log.Info().
		Str("version", cfg.App.Version).
		Str("environment", cfg.App.Environment).
		Msg("Starting profile backend API server")

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Server initialization failed")
	}

	// Start blocks until shutdown and schedules the maintenance ticker.
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server terminated with error")
	}
}
