package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ilmari/storydesk/internal/domain"
	"github.com/ilmari/storydesk/internal/logger"
	"github.com/ilmari/storydesk/internal/metrics"
	"github.com/ilmari/storydesk/internal/repository"
)

const (
	// DefaultPerPage is the page size used when the request has none.
	DefaultPerPage = 20
	// MaxPerPage bounds the page size a single request may ask for.
	MaxPerPage = 100

	// maxSlugAttempts bounds the numbered-suffix probing before falling
	// back to a random suffix.
	maxSlugAttempts = 50
)

// StoryService handles story listing and mutations for the dashboard.
type StoryService struct {
	storyRepo *repository.StoryRepository
	logger    *logger.Logger
}

// NewStoryService creates a new story service.
// Parameters:
//   - storyRepo: repository for story records.
//   - log: logger instance.
// Returns:
//   - *StoryService: initialized story service.
func NewStoryService(storyRepo *repository.StoryRepository, log *logger.Logger) *StoryService {
	return &StoryService{
		storyRepo: storyRepo,
		logger:    log,
	}
}

// log returns a logger from context if available, otherwise returns the service logger
func (s *StoryService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// List returns one page of stories plus the totals the dashboard derives
// its pagination cursor from. Page and per-page values are clamped to
// sane bounds; an empty status means no status filtering.
func (s *StoryService) List(ctx context.Context, q domain.StoryQuery) (*domain.StoryList, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	status := q.Status
	if status == "" {
		status = domain.StoryStatusAll
	}
	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = domain.SortByModified
	}

	stories, total, err := s.storyRepo.List(ctx, repository.ListStoriesQuery{
		Status:  status,
		OrderBy: orderBy,
		Order:   q.Order,
		Search:  strings.TrimSpace(q.SearchTerm),
		Limit:   perPage,
		Offset:  (page - 1) * perPage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	if stories == nil {
		stories = []domain.Story{}
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	return &domain.StoryList{
		Stories:    stories,
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
	}, nil
}

// CreateStoryInput carries the fields for a new story.
type CreateStoryInput struct {
	Title   string
	Excerpt string
	Author  string
	Status  domain.StoryStatus
	Meta    domain.MetaMap
}

// Create inserts a new story. An empty status defaults to draft.
func (s *StoryService) Create(ctx context.Context, in CreateStoryInput) (*domain.Story, error) {
	status := in.Status
	if status == "" {
		status = domain.StoryStatusDraft
	}

	slug, err := s.uniqueSlug(ctx, Slugify(in.Title))
	if err != nil {
		metrics.StoryMutationsTotal.WithLabelValues("create", "error").Inc()
		return nil, err
	}

	story := &domain.Story{
		ID:      uuid.New(),
		Title:   in.Title,
		Slug:    slug,
		Excerpt: in.Excerpt,
		Author:  in.Author,
		Status:  status,
		Meta:    in.Meta,
	}
	if err := s.storyRepo.Create(ctx, story); err != nil {
		metrics.StoryMutationsTotal.WithLabelValues("create", "error").Inc()
		return nil, fmt.Errorf("failed to create story: %w", err)
	}

	metrics.StoryMutationsTotal.WithLabelValues("create", "success").Inc()
	s.log(ctx).WithFields(logger.Fields{
		logger.FieldStoryID: story.ID.String(),
		"slug":              story.Slug,
	}).Info("story created")

	return story, nil
}

// Get retrieves a single story by ID.
func (s *StoryService) Get(ctx context.Context, id uuid.UUID) (*domain.Story, error) {
	return s.storyRepo.GetByID(ctx, id)
}

// Rename changes the title of a story. The slug is left untouched so
// existing story links keep working.
func (s *StoryService) Rename(ctx context.Context, id uuid.UUID, title string) error {
	if err := s.storyRepo.Rename(ctx, id, title); err != nil {
		metrics.StoryMutationsTotal.WithLabelValues("rename", "error").Inc()
		return err
	}
	metrics.StoryMutationsTotal.WithLabelValues("rename", "success").Inc()
	return nil
}

// UpdateStatus changes the status of a story.
func (s *StoryService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.StoryStatus) error {
	if err := s.storyRepo.UpdateStatus(ctx, id, status); err != nil {
		metrics.StoryMutationsTotal.WithLabelValues("status", "error").Inc()
		return err
	}
	metrics.StoryMutationsTotal.WithLabelValues("status", "success").Inc()
	return nil
}

// Duplicate copies an existing story into a new draft titled
// "<title> (Copy)" and returns the copy.
func (s *StoryService) Duplicate(ctx context.Context, id uuid.UUID) (*domain.Story, error) {
	source, err := s.storyRepo.GetByID(ctx, id)
	if err != nil {
		metrics.StoryMutationsTotal.WithLabelValues("duplicate", "error").Inc()
		return nil, err
	}

	title := source.Title + " (Copy)"
	slug, err := s.uniqueSlug(ctx, Slugify(title))
	if err != nil {
		metrics.StoryMutationsTotal.WithLabelValues("duplicate", "error").Inc()
		return nil, err
	}

	copy := &domain.Story{
		ID:       uuid.New(),
		Title:    title,
		Slug:     slug,
		Excerpt:  source.Excerpt,
		Author:   source.Author,
		Status:   domain.StoryStatusDraft,
		PosterID: source.PosterID,
		Meta:     source.Meta,
	}
	if err := s.storyRepo.Create(ctx, copy); err != nil {
		metrics.StoryMutationsTotal.WithLabelValues("duplicate", "error").Inc()
		return nil, fmt.Errorf("failed to duplicate story: %w", err)
	}

	metrics.StoryMutationsTotal.WithLabelValues("duplicate", "success").Inc()
	s.log(ctx).WithFields(logger.Fields{
		"source_id":         id.String(),
		logger.FieldStoryID: copy.ID.String(),
	}).Info("story duplicated")

	return copy, nil
}

// Delete removes a story.
func (s *StoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.storyRepo.Delete(ctx, id); err != nil {
		metrics.StoryMutationsTotal.WithLabelValues("delete", "error").Inc()
		return err
	}
	metrics.StoryMutationsTotal.WithLabelValues("delete", "success").Inc()
	return nil
}

// StatusCounts returns story counts per status for the dashboard's
// filter tabs, including a synthetic entry for the all filter.
func (s *StoryService) StatusCounts(ctx context.Context) (map[domain.StoryStatus]int64, error) {
	counts, err := s.storyRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	counts[domain.StoryStatusAll] = total

	return counts, nil
}

// uniqueSlug probes numbered suffixes until the slug is free, matching
// how web publishing tools disambiguate repeated titles.
func (s *StoryService) uniqueSlug(ctx context.Context, base string) (string, error) {
	if base == "" {
		base = "story"
	}

	slug := base
	for i := 2; ; i++ {
		exists, err := s.storyRepo.ExistsBySlug(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
		if i > maxSlugAttempts {
			return fmt.Sprintf("%s-%s", base, uuid.New().String()[:8]), nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Slugify lowercases a title and collapses every non-alphanumeric run
// into a single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
