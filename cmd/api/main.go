package main

import (
	"os"
	"path/filepath"

	"github.com/acesped/portal/internal/pkg/logger"
	"github.com/acesped/portal/internal/server"
)

// @title ACE-SPED Portal API
// @version 1.0
// @description Admissions and student lifecycle for the ACE-SPED centre.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join("configs", "config.yaml")
	}

	srv, err := server.NewServer(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
