package service

import (
	"context"
	"fmt"

	"github.com/ilmari/storydesk/internal/domain"
	"github.com/ilmari/storydesk/internal/logger"
	"github.com/ilmari/storydesk/internal/media"
	"github.com/ilmari/storydesk/internal/metrics"
	"github.com/ilmari/storydesk/internal/provider"
	"github.com/ilmari/storydesk/internal/repository"
)

// AssetURLResolver maps a storage key to the public URL clients fetch
// the mirrored asset from.
type AssetURLResolver interface {
	GetURL(key string) string
}

// MediaService exposes provider search and the local media library to
// the dashboard's inserter panel.
type MediaService struct {
	provider     provider.Provider
	resourceRepo *repository.ResourceRepository
	assets       AssetURLResolver
	logger       *logger.Logger
}

// NewMediaService creates a new media service.
// Parameters:
//   - p: the upstream media provider used for live search.
//   - resourceRepo: repository for stored resources.
//   - assets: resolver for mirrored asset URLs, typically object storage.
//   - log: logger instance.
// Returns:
//   - *MediaService: initialized media service.
func NewMediaService(p provider.Provider, resourceRepo *repository.ResourceRepository, assets AssetURLResolver, log *logger.Logger) *MediaService {
	return &MediaService{
		provider:     p,
		resourceRepo: resourceRepo,
		assets:       assets,
		logger:       log,
	}
}

// log returns a logger from context if available, otherwise returns the service logger
func (s *MediaService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// SearchProvider queries the upstream provider and normalizes each hit
// into a resource. Items the normalizer rejects (videos, items without
// size variants) are logged and dropped; the total still reflects the
// provider's count so pagination stays aligned with the upstream pages.
func (s *MediaService) SearchProvider(ctx context.Context, query string, page, perPage int) (*domain.ResourceList, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	items, total, err := s.provider.Search(ctx, query, page, perPage)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(s.provider.GetProviderID(), "error").Inc()
		return nil, fmt.Errorf("provider search failed: %w", err)
	}
	metrics.ProviderRequestsTotal.WithLabelValues(s.provider.GetProviderID(), "success").Inc()

	resources := make([]domain.Resource, 0, len(items))
	for _, item := range items {
		res, err := media.Normalize(item)
		if err != nil {
			s.log(ctx).WithFields(logger.Fields{
				logger.FieldProvider: item.Provider,
				"media_id":           item.ID,
			}).Warnf("skipping unusable media item: %v", err)
			continue
		}
		resources = append(resources, *res)
	}

	totalPages := 0
	if perPage > 0 {
		totalPages = (total + perPage - 1) / perPage
	}

	return &domain.ResourceList{
		Resources:  resources,
		Total:      int64(total),
		TotalPages: totalPages,
		Page:       page,
	}, nil
}

// ListLibrary returns one page of locally stored, active resources.
// An empty resourceType means all types.
func (s *MediaService) ListLibrary(ctx context.Context, resourceType domain.ResourceType, page, perPage int) (*domain.ResourceList, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	resources, total, err := s.resourceRepo.List(ctx, resourceType, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}
	if resources == nil {
		resources = []domain.Resource{}
	}

	// Mirrored assets are served from object storage, never the
	// provider's CDN.
	for i := range resources {
		if resources[i].StorageKey != "" {
			resources[i].SRC = s.assets.GetURL(resources[i].StorageKey)
		}
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	return &domain.ResourceList{
		Resources:  resources,
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
	}, nil
}
