package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/ilmari/storydesk/internal/config"
	"github.com/ilmari/storydesk/internal/logger"
	"github.com/ilmari/storydesk/internal/provider/media3p"
	"github.com/ilmari/storydesk/internal/repository"
	"github.com/ilmari/storydesk/internal/service"
	"github.com/ilmari/storydesk/internal/storage"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "storydesk-mediasync",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	limit := flag.Int("limit", 100, "Maximum number of media items to sync")
	retryPending := flag.Bool("retry", false, "Retry pending resources instead of syncing new ones")
	force := flag.Bool("force", false, "Force re-process items, skip duplicate checks")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	if !cfg.Providers.Media3P.Enabled {
		appLogger.Fatal("Media3P provider is disabled in config")
	}

	appLogger.WithFields(logger.Fields{
		"limit": *limit,
		"retry": *retryPending,
		"force": *force,
	}).Info("Starting media sync")

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	resourceRepo := repository.NewResourceRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize S3-compatible storage (supports R2, S3, MinIO)
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

	// Ensure bucket exists
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
	}

	// Initialize media provider
	providerClient := media3p.NewClient(&media3p.Config{
		BaseURL:  cfg.Providers.Media3P.BaseURL,
		APIKey:   cfg.Providers.Media3P.APIKey,
		PageSize: cfg.Providers.Media3P.PageSize,
	})

	syncService := service.NewSyncService(providerClient, resourceRepo, objectStorage, appLogger, &cfg.Sync)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	// Run sync
	if *retryPending {
		stats, err := syncService.RetryPending(ctx, *limit)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to retry pending resources")
		}
		appLogger.WithFields(logger.Fields{
			"total":     stats.TotalItems,
			"processed": stats.ProcessedItems,
			"failed":    stats.FailedItems,
		}).Info("Retry completed")
	} else {
		stats, err := syncService.Run(ctx, *limit, &service.SyncOptions{
			Force: *force,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to sync from provider")
		}
		appLogger.WithFields(logger.Fields{
			"total":     stats.TotalItems,
			"processed": stats.ProcessedItems,
			"skipped":   stats.SkippedItems,
			"failed":    stats.FailedItems,
			"uploaded":  humanize.Bytes(uint64(stats.UploadedBytes)),
		}).Info("Sync completed")
	}
}
