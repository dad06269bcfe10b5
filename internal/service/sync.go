package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ilmari/storydesk/internal/config"
	"github.com/ilmari/storydesk/internal/domain"
	"github.com/ilmari/storydesk/internal/logger"
	"github.com/ilmari/storydesk/internal/media"
	"github.com/ilmari/storydesk/internal/metrics"
	"github.com/ilmari/storydesk/internal/provider"
	"github.com/ilmari/storydesk/internal/repository"
	"github.com/ilmari/storydesk/internal/storage"
)

// SyncService pulls media from a provider, normalizes it and mirrors the
// full-size assets into object storage so the dashboard never hotlinks
// the provider's CDN.
type SyncService struct {
	provider     provider.Provider
	resourceRepo *repository.ResourceRepository
	storage      storage.ObjectStorage
	client       *resty.Client
	logger       *logger.Logger
	workers      int
	batchSize    int
}

// NewSyncService creates a new sync service.
func NewSyncService(
	p provider.Provider,
	resourceRepo *repository.ResourceRepository,
	objectStorage storage.ObjectStorage,
	log *logger.Logger,
	cfg *config.SyncConfig,
) *SyncService {
	client := resty.New()
	client.SetTimeout(60 * time.Second)
	client.SetRetryCount(cfg.RetryCount)

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 10
	}

	return &SyncService{
		provider:     p,
		resourceRepo: resourceRepo,
		storage:      objectStorage,
		client:       client,
		logger:       log,
		workers:      workers,
		batchSize:    batchSize,
	}
}

// log returns a logger from context if available, otherwise returns the service logger
func (s *SyncService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// SyncStats holds statistics for a sync run
type SyncStats struct {
	TotalItems     int64
	ProcessedItems int64
	SkippedItems   int64
	FailedItems    int64
	UploadedBytes  int64
	StartTime      time.Time
	EndTime        time.Time
}

// SyncOptions holds options for a sync run
type SyncOptions struct {
	Force bool // If true, re-process items that already exist locally
}

// Run pulls up to limit items from the provider and processes them
// through a worker pool. Items already mirrored are skipped unless
// opts.Force is set; items the normalizer rejects count as skipped.
func (s *SyncService) Run(ctx context.Context, limit int, opts *SyncOptions) (*SyncStats, error) {
	if opts == nil {
		opts = &SyncOptions{}
	}

	stats := &SyncStats{
		StartTime: time.Now(),
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldProvider: s.provider.GetProviderID(),
		"limit":              limit,
		"force":              opts.Force,
	}).Info("Starting sync")

	// Create work channel and results channel
	itemsChan := make(chan provider.Media, s.workers*2)
	resultsChan := make(chan *syncResult, s.workers*2)

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID, itemsChan, resultsChan, opts)
		}(i)
	}

	// Start result collector
	done := make(chan struct{})
	go func() {
		providerID := s.provider.GetProviderID()
		for result := range resultsChan {
			switch {
			case result.skipped:
				atomic.AddInt64(&stats.SkippedItems, 1)
				metrics.SyncItemsTotal.WithLabelValues(providerID, "skipped").Inc()
			case result.err != nil:
				atomic.AddInt64(&stats.FailedItems, 1)
				metrics.SyncItemsTotal.WithLabelValues(providerID, "failed").Inc()
				s.log(ctx).WithFields(logger.Fields{
					"media_id": result.mediaID,
				}).WithError(result.err).Error("Failed to process item")
			default:
				atomic.AddInt64(&stats.ProcessedItems, 1)
				atomic.AddInt64(&stats.UploadedBytes, result.uploadedBytes)
				metrics.SyncItemsTotal.WithLabelValues(providerID, "processed").Inc()
				metrics.SyncUploadBytes.Add(float64(result.uploadedBytes))
			}
		}
		close(done)
	}()

	// Fetch items from the provider
	cursor := ""
	totalFetched := 0
feed:
	for {
		if ctx.Err() != nil {
			break
		}

		remaining := limit - totalFetched
		if remaining <= 0 {
			break
		}

		batchLimit := s.batchSize
		if batchLimit > remaining {
			batchLimit = remaining
		}

		items, nextCursor, err := s.provider.FetchBatch(ctx, cursor, batchLimit)
		if err != nil {
			s.log(ctx).WithError(err).Error("Failed to fetch batch")
			break
		}

		if len(items) == 0 {
			break
		}

		atomic.AddInt64(&stats.TotalItems, int64(len(items)))
		totalFetched += len(items)

		for _, item := range items {
			select {
			case itemsChan <- item:
			case <-ctx.Done():
				break feed
			}
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	// Close items channel and wait for workers
	close(itemsChan)
	wg.Wait()

	// Close results channel and wait for collector
	close(resultsChan)
	<-done

	stats.EndTime = time.Now()

	s.log(ctx).WithFields(logger.Fields{
		"total":          stats.TotalItems,
		"processed":      stats.ProcessedItems,
		"skipped":        stats.SkippedItems,
		"failed":         stats.FailedItems,
		"uploaded_bytes": stats.UploadedBytes,
		"duration":       stats.EndTime.Sub(stats.StartTime).String(),
	}).Info("Sync completed")

	return stats, nil
}

type syncResult struct {
	mediaID       string
	skipped       bool
	uploadedBytes int64
	err           error
}

func (s *SyncService) worker(ctx context.Context, workerID int, items <-chan provider.Media, results chan<- *syncResult, opts *SyncOptions) {
	for item := range items {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result := &syncResult{mediaID: item.ID}

		// Check if already mirrored
		if !opts.Force {
			exists, err := s.resourceRepo.ExistsByProviderID(ctx, item.Provider, item.ID)
			if err != nil {
				result.err = fmt.Errorf("failed to check existence: %w", err)
				results <- result
				continue
			}
			if exists {
				result.skipped = true
				results <- result
				continue
			}
		}

		uploadedBytes, err := s.processItem(ctx, item)
		if err != nil {
			if errors.Is(err, media.ErrUnsupportedType) {
				// Videos and other non-image media are expected in the
				// provider feed and are not failures.
				result.skipped = true
			} else {
				result.err = err
			}
		} else {
			result.uploadedBytes = uploadedBytes
		}

		results <- result
	}
}

// processItem normalizes one provider item, records it as pending,
// mirrors the full-size asset into object storage and activates the
// record. Returns the number of bytes actually uploaded (zero when the
// object was already present in storage).
func (s *SyncService) processItem(ctx context.Context, item provider.Media) (int64, error) {
	res, err := media.Normalize(item)
	if err != nil {
		return 0, err
	}

	// Persist the record before touching the network so an interrupted
	// sync leaves a pending row the retry flow can finish.
	res.Status = domain.ResourceStatusPending
	if err := s.resourceRepo.Upsert(ctx, res); err != nil {
		return 0, fmt.Errorf("failed to save pending resource: %w", err)
	}

	uploadedBytes, err := s.mirrorAsset(ctx, res)
	if err != nil {
		return 0, err
	}

	res.Status = domain.ResourceStatusActive
	if err := s.resourceRepo.Upsert(ctx, res); err != nil {
		// Rollback the uploaded file ONLY if this run uploaded it; the
		// record stays pending for the retry flow.
		if uploadedBytes > 0 {
			if delErr := s.storage.Delete(ctx, res.StorageKey); delErr != nil {
				s.log(ctx).WithFields(logger.Fields{
					"storage_key": res.StorageKey,
				}).WithError(delErr).Error("Failed to rollback storage upload")
			}
		}
		return 0, fmt.Errorf("failed to save resource: %w", err)
	}

	return uploadedBytes, nil
}

// mirrorAsset downloads the full-size asset from the provider, probes
// its dimensions and uploads it to object storage, filling in the
// storage fields on res. Returns the number of bytes actually uploaded
// (zero when the object was already present in storage).
func (s *SyncService) mirrorAsset(ctx context.Context, res *domain.Resource) (int64, error) {
	imageData, err := s.downloadAsset(ctx, res.SRC)
	if err != nil {
		return 0, fmt.Errorf("failed to download asset: %w", err)
	}

	md5Hash := calculateMD5(imageData)

	// Trust the downloaded bytes over the provider's declared dimensions
	width, height, err := media.ProbeDimensions(imageData)
	if err != nil {
		s.log(ctx).WithFields(logger.Fields{
			"resource_id": res.ID.String(),
		}).WithError(err).Warn("Failed to probe image dimensions, keeping provider values")
	} else {
		res.Width = width
		res.Height = height
	}

	// Upload to storage (MD5 prefix bucketing, hides provider info)
	storageKey := storage.ObjectKey(md5Hash, media.ExtensionForMime(res.MimeType))

	existsInStorage, err := s.storage.Exists(ctx, storageKey)
	if err != nil {
		return 0, fmt.Errorf("failed to check storage existence: %w", err)
	}

	var uploadedBytes int64
	if !existsInStorage {
		if err := s.storage.Upload(ctx, storageKey, bytes.NewReader(imageData), int64(len(imageData)), res.MimeType); err != nil {
			return 0, fmt.Errorf("failed to upload to storage: %w", err)
		}
		uploadedBytes = int64(len(imageData))
	} else {
		s.log(ctx).WithField("storage_key", storageKey).Debug("File already exists in storage, skipping upload")
	}

	res.StorageKey = storageKey
	res.FileSize = int64(len(imageData))
	return uploadedBytes, nil
}

// downloadAsset fetches the asset bytes from the provider's CDN.
func (s *SyncService) downloadAsset(ctx context.Context, url string) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

func calculateMD5(data []byte) string {
	hash := md5.Sum(data)
	return hex.EncodeToString(hash[:])
}

// RetryPending finishes resources stuck in pending status. A pending
// row without a storage key comes from a sync interrupted before the
// asset was mirrored, so the download and upload are redone from the
// provider URL; otherwise the asset is already in storage and only
// probing and activation are redone.
func (s *SyncService) RetryPending(ctx context.Context, limit int) (*SyncStats, error) {
	stats := &SyncStats{
		StartTime: time.Now(),
	}

	resources, err := s.resourceRepo.ListByStatus(ctx, domain.ResourceStatusPending, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending resources: %w", err)
	}

	stats.TotalItems = int64(len(resources))

	for i := range resources {
		if ctx.Err() != nil {
			break
		}

		res := &resources[i]

		if res.StorageKey == "" {
			uploadedBytes, err := s.mirrorAsset(ctx, res)
			if err != nil {
				s.log(ctx).WithError(err).Error("Failed to mirror asset")
				stats.FailedItems++
				continue
			}
			stats.UploadedBytes += uploadedBytes
		} else {
			reader, err := s.storage.Download(ctx, res.StorageKey)
			if err != nil {
				s.log(ctx).WithError(err).Error("Failed to download from storage")
				stats.FailedItems++
				continue
			}

			imageData, err := io.ReadAll(reader)
			reader.Close()
			if err != nil {
				s.log(ctx).WithError(err).Error("Failed to read asset data")
				stats.FailedItems++
				continue
			}

			width, height, err := media.ProbeDimensions(imageData)
			if err != nil {
				s.log(ctx).WithError(err).Warn("Failed to probe image dimensions")
				stats.FailedItems++
				continue
			}

			res.Width = width
			res.Height = height
			res.FileSize = int64(len(imageData))
		}

		res.Status = domain.ResourceStatusActive

		if err := s.resourceRepo.Update(ctx, res); err != nil {
			s.log(ctx).WithError(err).Error("Failed to update resource")
			stats.FailedItems++
			continue
		}

		stats.ProcessedItems++
	}

	stats.EndTime = time.Now()
	return stats, nil
}
