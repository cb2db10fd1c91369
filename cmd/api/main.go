package main

import (
	"os"

	"github.com/attendly/attendly/internal/pkg/logger"
	"github.com/attendly/attendly/internal/server"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// @title Attendly API
// @version 1.0
// @description Attendance management API for colleges: hierarchy, lectures, marking, reports and dashboards

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer(version)
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
