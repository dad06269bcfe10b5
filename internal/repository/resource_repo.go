package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ilmari/storydesk/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResourceRepository handles media resource data operations.
type ResourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new ResourceRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ResourceRepository: repository instance bound to db.
func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Upsert creates or updates a resource record keyed by provider fields.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - resource: resource record to create or update.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *ResourceRepository) Upsert(ctx context.Context, resource *domain.Resource) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_id"}},
		UpdateAll: true,
	}).Create(resource).Error
}

// GetByID retrieves a resource by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: resource ID.
// Returns:
//   - *domain.Resource: resource record if found.
//   - error: non-nil if lookup fails, gorm.ErrRecordNotFound when absent.
func (r *ResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Resource, error) {
	var resource domain.Resource
	if err := r.db.WithContext(ctx).First(&resource, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

// List retrieves active resources with optional type filtering and pagination.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - resourceType: resource type to filter by; empty means all.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Resource: matching resource records, newest first.
//   - int64: total number of matching records.
//   - error: non-nil if a query fails.
func (r *ResourceRepository) List(ctx context.Context, resourceType domain.ResourceType, limit, offset int) ([]domain.Resource, int64, error) {
	base := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&domain.Resource{}).
			Where("status = ?", domain.ResourceStatusActive)
		if resourceType != "" {
			tx = tx.Where("type = ?", resourceType)
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count resources: %w", err)
	}

	var resources []domain.Resource
	if err := base().
		Order("creation_date DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&resources).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list resources: %w", err)
	}

	return resources, total, nil
}

// ListByStatus retrieves resources by status with pagination.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - status: resource status to filter by.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Resource: matching resource records.
//   - error: non-nil if the query fails.
func (r *ResourceRepository) ListByStatus(ctx context.Context, status domain.ResourceStatus, limit, offset int) ([]domain.Resource, error) {
	var resources []domain.Resource
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Limit(limit).
		Offset(offset).
		Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

// Update updates an existing resource record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - resource: resource record with updated fields.
// Returns:
//   - error: non-nil if the update fails.
func (r *ResourceRepository) Update(ctx context.Context, resource *domain.Resource) error {
	return r.db.WithContext(ctx).Save(resource).Error
}

// ExistsByProviderID checks if a fully mirrored resource from the given
// provider exists. Pending rows do not count: they belong to interrupted
// syncs and must stay eligible for re-processing.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - provider: provider identifier.
//   - providerID: provider-specific media ID.
// Returns:
//   - bool: true if an active record exists.
//   - error: non-nil if the lookup fails.
func (r *ResourceRepository) ExistsByProviderID(ctx context.Context, provider, providerID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Resource{}).
		Where("provider = ? AND provider_id = ? AND status = ?", provider, providerID, domain.ResourceStatusActive).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateStatus updates the status of a resource.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: resource ID.
//   - status: new status.
// Returns:
//   - error: non-nil if the update fails.
func (r *ResourceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ResourceStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Resource{}).Where("id = ?", id).Update("status", status).Error
}

// Delete removes a resource by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: resource ID to delete.
// Returns:
//   - error: non-nil if the delete fails.
func (r *ResourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Resource{}, "id = ?", id).Error
}
