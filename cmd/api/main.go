package main

import (
	"os"

	"github.com/nsbs/certify/internal/pkg/logger"
	"github.com/nsbs/certify/internal/server"
)

// @title NSBS Certification API
// @version 1.0
// @description Exam attempts, grading, certificate issuance and public verification.

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

// @securityDefinitions.apikey AdminKey
// @in header
// @name X-Admin-Key

func main() {
	srv, err := server.NewServer()
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
