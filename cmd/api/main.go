package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilmari/storydesk/internal/api"
	"github.com/ilmari/storydesk/internal/config"
	"github.com/ilmari/storydesk/internal/logger"
	"github.com/ilmari/storydesk/internal/metrics"
	"github.com/ilmari/storydesk/internal/provider/media3p"
	"github.com/ilmari/storydesk/internal/repository"
	"github.com/ilmari/storydesk/internal/service"
	"github.com/ilmari/storydesk/internal/storage"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Initialize logger first so config errors are logged consistently
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	metrics.Init("storydesk-api", version, cfg.Server.Mode)

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	storyRepo := repository.NewStoryRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	// Initialize media provider
	if !cfg.Providers.Media3P.Enabled {
		appLogger.Warn("Media3P provider is disabled; media search will return errors")
	}
	providerClient := media3p.NewClient(&media3p.Config{
		BaseURL:  cfg.Providers.Media3P.BaseURL,
		APIKey:   cfg.Providers.Media3P.APIKey,
		PageSize: cfg.Providers.Media3P.PageSize,
	})

	// Object storage resolves public URLs for mirrored library assets
	objectStorage, err := storage.NewStorage(&storage.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}

	// Initialize services
	storyService := service.NewStoryService(storyRepo, appLogger)
	mediaService := service.NewMediaService(providerClient, resourceRepo, objectStorage, appLogger)

	// Setup router
	router := api.SetupRouter(cfg, appLogger, storyService, mediaService, categoryRepo)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
