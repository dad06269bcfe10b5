package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ilmari/storydesk/internal/domain"
	"gorm.io/gorm"
)

// StoryRepository handles story data operations.
type StoryRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new StoryRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *StoryRepository: repository instance bound to db.
func NewStoryRepository(db *gorm.DB) *StoryRepository {
	return &StoryRepository{db: db}
}

// ListStoriesQuery carries the filtering, ordering and paging parameters
// for story listings.
type ListStoriesQuery struct {
	Status  domain.StoryStatus
	OrderBy domain.SortOption
	Order   domain.SortDirection
	Search  string
	Limit   int
	Offset  int
}

// List retrieves a page of stories plus the total number of matches.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - q: listing parameters; a zero Order falls back to the option default.
// Returns:
//   - []domain.Story: the requested page, in listing order.
//   - int64: total number of stories matching the filter and search.
//   - error: non-nil if a query fails.
func (r *StoryRepository) List(ctx context.Context, q ListStoriesQuery) ([]domain.Story, int64, error) {
	var total int64
	if err := r.applyFilters(r.db.WithContext(ctx).Model(&domain.Story{}), q).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count stories: %w", err)
	}

	var stories []domain.Story
	if err := r.applyFilters(r.db.WithContext(ctx).Model(&domain.Story{}), q).
		Order(orderClause(q.OrderBy, q.Order)).
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&stories).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list stories: %w", err)
	}

	return stories, total, nil
}

// applyFilters adds the status and search conditions to a query chain.
func (r *StoryRepository) applyFilters(tx *gorm.DB, q ListStoriesQuery) *gorm.DB {
	if q.Status != "" && q.Status != domain.StoryStatusAll {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Search != "" {
		pattern := "%" + strings.ToLower(escapeLike(q.Search)) + "%"
		tx = tx.Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern)
	}
	return tx
}

// orderClause maps a sort option and direction to an ORDER BY clause.
// An invalid direction falls back to the option's default; the story ID
// breaks ties so pages never overlap.
func orderClause(option domain.SortOption, direction domain.SortDirection) string {
	if !direction.Valid() {
		direction = option.DefaultDirection()
	}

	column := "updated_at"
	switch option {
	case domain.SortByTitle:
		column = "title"
	case domain.SortByCreated:
		column = "created_at"
	case domain.SortByModified:
		column = "updated_at"
	case domain.SortByAuthor:
		column = "author"
	}

	return fmt.Sprintf("%s %s, id ASC", column, strings.ToUpper(string(direction)))
}

// escapeLike escapes LIKE wildcards in user-supplied search text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// Create inserts a new story record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - story: story record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *StoryRepository) Create(ctx context.Context, story *domain.Story) error {
	return r.db.WithContext(ctx).Create(story).Error
}

// GetByID retrieves a story by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: story ID.
// Returns:
//   - *domain.Story: story record if found.
//   - error: non-nil if lookup fails, gorm.ErrRecordNotFound when absent.
func (r *StoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Story, error) {
	var story domain.Story
	if err := r.db.WithContext(ctx).First(&story, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

// ExistsBySlug checks if a story with the given slug exists.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - slug: slug to look up.
// Returns:
//   - bool: true if a record exists.
//   - error: non-nil if the lookup fails.
func (r *StoryRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Story{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rename updates the title of a story.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: story ID.
//   - title: new title.
// Returns:
//   - error: non-nil if the update fails, gorm.ErrRecordNotFound when the
//     story does not exist.
func (r *StoryRepository) Rename(ctx context.Context, id uuid.UUID, title string) error {
	res := r.db.WithContext(ctx).Model(&domain.Story{}).Where("id = ?", id).Update("title", title)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStatus updates the status of a story.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: story ID.
//   - status: new status.
// Returns:
//   - error: non-nil if the update fails, gorm.ErrRecordNotFound when the
//     story does not exist.
func (r *StoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.StoryStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Story{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a story by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: story ID to delete.
// Returns:
//   - error: non-nil if the delete fails, gorm.ErrRecordNotFound when the
//     story does not exist.
func (r *StoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Story{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByStatus counts stories grouped by status.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - map[domain.StoryStatus]int64: story count per status; statuses with
//     no stories are absent.
//   - error: non-nil if the query fails.
func (r *StoryRepository) CountByStatus(ctx context.Context) (map[domain.StoryStatus]int64, error) {
	var rows []struct {
		Status domain.StoryStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&domain.Story{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count stories by status: %w", err)
	}

	counts := make(map[domain.StoryStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
