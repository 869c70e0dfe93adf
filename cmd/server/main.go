package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rrens/smart-assistant/internal/api"
	"github.com/Rrens/smart-assistant/internal/bootstrap"
	"github.com/Rrens/smart-assistant/internal/config"
	"github.com/Rrens/smart-assistant/internal/logger"
	"github.com/Rrens/smart-assistant/internal/notify"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	envLoaded := ""
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			envLoaded = p
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logFile, err := logger.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	if envLoaded == "" {
		log.Warn().Msg(".env file not found in any standard location")
	} else {
		log.Debug().Str("path", envLoaded).Msg("Loaded .env")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("backend", cfg.API.ResolvedBaseURL()).
		Msg("Starting smart assistant gateway")

	// Notifications are logged and buffered for GET /notifications
	buffer := notify.NewBuffer(100)
	components, err := bootstrap.New(cfg, notify.Multi{notify.LogNotifier{}, buffer})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize components")
	}
	defer func() {
		if err := components.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	// Initialize router
	router := api.NewRouter(cfg, api.Dependencies{
		Client:         components.Client,
		Auth:           components.Auth,
		Chat:           components.Chat,
		KnowledgeBases: components.KnowledgeBases,
		Responders:     components.Responders,
		Notifications:  buffer,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		log.Error().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
