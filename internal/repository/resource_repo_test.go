package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ilmari/storydesk/internal/domain"
)

func testResource(provider, providerID, title string) *domain.Resource {
	return &domain.Resource{
		ID:           uuid.NewSHA1(uuid.NameSpaceURL, []byte(provider+"/"+providerID)),
		Type:         domain.ResourceTypeImage,
		MimeType:     "image/jpeg",
		Width:        640,
		Height:       480,
		SRC:          "https://cdn.example/" + providerID,
		CreationDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Title:        title,
		Provider:     provider,
		ProviderID:   providerID,
		Status:       domain.ResourceStatusActive,
		Sizes: domain.SizeMap{
			"full": {SourceURL: "https://cdn.example/" + providerID, Width: 640, Height: 480},
		},
	}
}

func TestResourceRepository_UpsertKeyedByProvider(t *testing.T) {
	repo := NewResourceRepository(newTestDB(t))
	ctx := context.Background()

	first := testResource("media3p", "m-1", "First Title")
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := testResource("media3p", "m-1", "Replaced Title")
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resources, total, err := repo.List(ctx, "", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("expected one resource after double upsert, got %d", total)
	}
	if len(resources) != 1 || resources[0].Title != "Replaced Title" {
		t.Errorf("expected updated title, got %+v", resources)
	}
}

func TestResourceRepository_ExistsByProviderID(t *testing.T) {
	repo := NewResourceRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.Upsert(ctx, testResource("media3p", "m-1", "One")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exists, err := repo.ExistsByProviderID(ctx, "media3p", "m-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected resource to exist")
	}

	exists, err = repo.ExistsByProviderID(ctx, "media3p", "m-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected resource to be absent")
	}

	// A pending row marks an unfinished mirror and must not count.
	pending := testResource("media3p", "m-3", "Pending")
	pending.Status = domain.ResourceStatusPending
	if err := repo.Upsert(ctx, pending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exists, err = repo.ExistsByProviderID(ctx, "media3p", "m-3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected pending resource not to count as existing")
	}
}

func TestResourceRepository_ListFiltersInactive(t *testing.T) {
	repo := NewResourceRepository(newTestDB(t))
	ctx := context.Background()

	active := testResource("media3p", "m-1", "Active")
	if err := repo.Upsert(ctx, active); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pending := testResource("media3p", "m-2", "Pending")
	pending.Status = domain.ResourceStatusPending
	if err := repo.Upsert(ctx, pending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resources, total, err := repo.List(ctx, domain.ResourceTypeImage, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(resources) != 1 {
		t.Fatalf("expected only the active resource, got total=%d len=%d", total, len(resources))
	}
	if resources[0].Title != "Active" {
		t.Errorf("expected the active resource, got %q", resources[0].Title)
	}
}

func TestResourceRepository_SizesRoundTrip(t *testing.T) {
	repo := NewResourceRepository(newTestDB(t))
	ctx := context.Background()

	in := testResource("media3p", "m-1", "With Sizes")
	in.Sizes = domain.SizeMap{
		"thumbnail": {File: "f-t", SourceURL: "https://cdn.example/t", MimeType: "image/jpeg", Width: 150, Height: 100},
		"full":      {File: "f-f", SourceURL: "https://cdn.example/f", MimeType: "image/jpeg", Width: 640, Height: 427},
	}
	in.Attribution = &domain.Attribution{Author: domain.Author{DisplayName: "Ada", URL: "https://example.com/ada"}}

	if err := repo.Upsert(ctx, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetByID(ctx, in.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Sizes) != 2 {
		t.Fatalf("expected two size variants, got %d", len(got.Sizes))
	}
	if got.Sizes["full"].Width != 640 {
		t.Errorf("expected full width 640, got %d", got.Sizes["full"].Width)
	}
	if got.Attribution == nil || got.Attribution.Author.DisplayName != "Ada" {
		t.Errorf("expected attribution to round trip, got %+v", got.Attribution)
	}
}
