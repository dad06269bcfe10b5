package service

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/ilmari/storydesk/internal/domain"
	"github.com/ilmari/storydesk/internal/logger"
	"github.com/ilmari/storydesk/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.Story{}, &domain.Resource{}, &domain.Category{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func quietLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Output: io.Discard})
}

func newTestStoryService(t *testing.T) *StoryService {
	t.Helper()
	return NewStoryService(repository.NewStoryRepository(newTestDB(t)), quietLogger())
}

func mustCreate(t *testing.T, svc *StoryService, title string, status domain.StoryStatus) *domain.Story {
	t.Helper()
	story, err := svc.Create(context.Background(), CreateStoryInput{
		Title:  title,
		Author: "tester",
		Status: status,
	})
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", title, err)
	}
	return story
}

func TestStoryService_Create_Defaults(t *testing.T) {
	svc := newTestStoryService(t)

	story := mustCreate(t, svc, "Hello World", "")

	if story.Status != domain.StoryStatusDraft {
		t.Errorf("expected default status draft, got %s", story.Status)
	}
	if story.Slug != "hello-world" {
		t.Errorf("expected slug hello-world, got %s", story.Slug)
	}
}

func TestStoryService_Create_SlugCollision(t *testing.T) {
	svc := newTestStoryService(t)

	first := mustCreate(t, svc, "Hello World", "")
	second := mustCreate(t, svc, "Hello World", "")
	third := mustCreate(t, svc, "Hello World", "")

	if first.Slug != "hello-world" {
		t.Errorf("expected first slug hello-world, got %s", first.Slug)
	}
	if second.Slug != "hello-world-2" {
		t.Errorf("expected second slug hello-world-2, got %s", second.Slug)
	}
	if third.Slug != "hello-world-3" {
		t.Errorf("expected third slug hello-world-3, got %s", third.Slug)
	}
}

func TestStoryService_List_Pagination(t *testing.T) {
	svc := newTestStoryService(t)
	ctx := context.Background()

	titles := []string{"One", "Two", "Three", "Four", "Five"}
	for _, title := range titles {
		mustCreate(t, svc, title, domain.StoryStatusDraft)
	}

	list, err := svc.List(ctx, domain.StoryQuery{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list.Total != 5 {
		t.Errorf("expected total 5, got %d", list.Total)
	}
	if list.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", list.TotalPages)
	}
	if len(list.Stories) != 2 {
		t.Errorf("expected 2 stories on page, got %d", len(list.Stories))
	}
	if list.Page != 1 {
		t.Errorf("expected page 1, got %d", list.Page)
	}

	last, err := svc.List(ctx, domain.StoryQuery{Page: 3, PerPage: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(last.Stories) != 1 {
		t.Errorf("expected 1 story on last page, got %d", len(last.Stories))
	}
}

func TestStoryService_List_EmptyResult(t *testing.T) {
	svc := newTestStoryService(t)

	list, err := svc.List(context.Background(), domain.StoryQuery{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list.Stories == nil {
		t.Error("expected non-nil stories slice for empty result")
	}
	if len(list.Stories) != 0 {
		t.Errorf("expected 0 stories, got %d", len(list.Stories))
	}
	if list.Total != 0 {
		t.Errorf("expected total 0, got %d", list.Total)
	}
	if list.TotalPages != 0 {
		t.Errorf("expected 0 total pages, got %d", list.TotalPages)
	}
}

func TestStoryService_List_ClampsPage(t *testing.T) {
	svc := newTestStoryService(t)
	mustCreate(t, svc, "Only", domain.StoryStatusDraft)

	list, err := svc.List(context.Background(), domain.StoryQuery{Page: 0})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list.Page != 1 {
		t.Errorf("expected page clamped to 1, got %d", list.Page)
	}
	if len(list.Stories) != 1 {
		t.Errorf("expected 1 story, got %d", len(list.Stories))
	}
}

func TestStoryService_Duplicate(t *testing.T) {
	svc := newTestStoryService(t)
	ctx := context.Background()

	source, err := svc.Create(ctx, CreateStoryInput{
		Title:   "Original",
		Excerpt: "an excerpt",
		Author:  "ada",
		Status:  domain.StoryStatusPublished,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	copy, err := svc.Duplicate(ctx, source.ID)
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}

	if copy.ID == source.ID {
		t.Error("expected duplicate to get a new ID")
	}
	if copy.Title != "Original (Copy)" {
		t.Errorf("expected title %q, got %q", "Original (Copy)", copy.Title)
	}
	if copy.Status != domain.StoryStatusDraft {
		t.Errorf("expected duplicate status draft, got %s", copy.Status)
	}
	if copy.Excerpt != source.Excerpt {
		t.Errorf("expected excerpt %q, got %q", source.Excerpt, copy.Excerpt)
	}
	if copy.Author != source.Author {
		t.Errorf("expected author %q, got %q", source.Author, copy.Author)
	}

	// Duplicating the same story again must not collide on the slug.
	again, err := svc.Duplicate(ctx, source.ID)
	if err != nil {
		t.Fatalf("second Duplicate failed: %v", err)
	}
	if again.Slug == copy.Slug {
		t.Errorf("expected distinct slugs for repeated duplicates, both got %q", again.Slug)
	}
}

func TestStoryService_Duplicate_NotFound(t *testing.T) {
	svc := newTestStoryService(t)

	_, err := svc.Duplicate(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error for missing story")
	}
}

func TestStoryService_StatusCounts(t *testing.T) {
	svc := newTestStoryService(t)
	ctx := context.Background()

	mustCreate(t, svc, "One", domain.StoryStatusDraft)
	mustCreate(t, svc, "Two", domain.StoryStatusDraft)
	mustCreate(t, svc, "Three", domain.StoryStatusPublished)

	counts, err := svc.StatusCounts(ctx)
	if err != nil {
		t.Fatalf("StatusCounts failed: %v", err)
	}

	if counts[domain.StoryStatusDraft] != 2 {
		t.Errorf("expected 2 drafts, got %d", counts[domain.StoryStatusDraft])
	}
	if counts[domain.StoryStatusPublished] != 1 {
		t.Errorf("expected 1 published, got %d", counts[domain.StoryStatusPublished])
	}
	if counts[domain.StoryStatusAll] != 3 {
		t.Errorf("expected all count 3, got %d", counts[domain.StoryStatusAll])
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "simple", title: "Hello World", want: "hello-world"},
		{name: "punctuation", title: "What's New? (2026 Edition)", want: "what-s-new-2026-edition"},
		{name: "leading and trailing junk", title: "  --Spaced Out--  ", want: "spaced-out"},
		{name: "unicode collapses", title: "Café au lait", want: "caf-au-lait"},
		{name: "empty", title: "", want: ""},
		{name: "only junk", title: "!!!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}
