package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/ilmari/storydesk/internal/domain"
	"github.com/ilmari/storydesk/internal/provider"
	"github.com/ilmari/storydesk/internal/repository"
)

func newTestMediaService(t *testing.T, p provider.Provider) (*MediaService, *repository.ResourceRepository) {
	t.Helper()
	resourceRepo := repository.NewResourceRepository(newTestDB(t))
	return NewMediaService(p, resourceRepo, newMemStorage(), quietLogger()), resourceRepo
}

func TestMediaService_SearchProvider_SkipsUnusable(t *testing.T) {
	p := &fakeProvider{items: []provider.Media{
		imageItem("m-1", "https://cdn.fake/m-1.png"),
		{ID: "m-2", Provider: "fake", Type: provider.TypeVideo, MimeType: "video/mp4"},
		{ID: "m-3", Provider: "fake", Type: provider.TypeImage, MimeType: "image/png"},
	}}
	svc, _ := newTestMediaService(t, p)

	list, err := svc.SearchProvider(context.Background(), "query", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(list.Resources) != 1 {
		t.Fatalf("expected 1 usable resource, got %d", len(list.Resources))
	}
	if list.Resources[0].ProviderID != "m-1" {
		t.Errorf("expected resource m-1, got %s", list.Resources[0].ProviderID)
	}
	// The video and the sizeless image are dropped, but totals still
	// follow the provider count so paging stays aligned upstream
	if list.Total != 3 {
		t.Errorf("expected total 3, got %d", list.Total)
	}
	if list.TotalPages != 1 {
		t.Errorf("expected 1 total page, got %d", list.TotalPages)
	}
}

func TestMediaService_ListLibrary(t *testing.T) {
	svc, resourceRepo := newTestMediaService(t, &fakeProvider{})
	ctx := context.Background()

	seed := []domain.Resource{
		{ID: uuid.New(), Type: domain.ResourceTypeImage, Provider: "fake", ProviderID: "a", Status: domain.ResourceStatusActive},
		{ID: uuid.New(), Type: domain.ResourceTypeImage, Provider: "fake", ProviderID: "b", Status: domain.ResourceStatusActive},
		{ID: uuid.New(), Type: domain.ResourceTypeVideo, Provider: "fake", ProviderID: "c", Status: domain.ResourceStatusActive},
		{ID: uuid.New(), Type: domain.ResourceTypeImage, Provider: "fake", ProviderID: "d", Status: domain.ResourceStatusPending},
	}
	for i := range seed {
		if err := resourceRepo.Upsert(ctx, &seed[i]); err != nil {
			t.Fatalf("failed to seed resource: %v", err)
		}
	}

	images, err := svc.ListLibrary(ctx, domain.ResourceTypeImage, 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if images.Total != 2 || len(images.Resources) != 2 {
		t.Errorf("expected 2 active images, got total %d with %d resources", images.Total, len(images.Resources))
	}

	all, err := svc.ListLibrary(ctx, "", 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if all.Total != 3 {
		t.Errorf("expected total 3 active resources, got %d", all.Total)
	}
	if all.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", all.TotalPages)
	}
	if len(all.Resources) != 1 {
		t.Errorf("expected 1 resource on page, got %d", len(all.Resources))
	}
}

func TestMediaService_ListLibrary_MirroredURLs(t *testing.T) {
	svc, resourceRepo := newTestMediaService(t, &fakeProvider{})
	ctx := context.Background()

	seed := []domain.Resource{
		{ID: uuid.New(), Type: domain.ResourceTypeImage, Provider: "fake", ProviderID: "a",
			SRC: "https://cdn.fake/a.png", StorageKey: "ab/abcd.png", Status: domain.ResourceStatusActive},
		{ID: uuid.New(), Type: domain.ResourceTypeImage, Provider: "fake", ProviderID: "b",
			SRC: "https://cdn.fake/b.png", Status: domain.ResourceStatusActive},
	}
	for i := range seed {
		if err := resourceRepo.Upsert(ctx, &seed[i]); err != nil {
			t.Fatalf("failed to seed resource: %v", err)
		}
	}

	list, err := svc.ListLibrary(ctx, domain.ResourceTypeImage, 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.Resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(list.Resources))
	}

	srcByProvider := make(map[string]string, len(list.Resources))
	for _, res := range list.Resources {
		srcByProvider[res.ProviderID] = res.SRC
	}

	// A mirrored resource is served from storage; one without a storage
	// key keeps its provider URL.
	if got := srcByProvider["a"]; got != "mem://ab/abcd.png" {
		t.Errorf("expected mirrored URL for a, got %q", got)
	}
	if got := srcByProvider["b"]; got != "https://cdn.fake/b.png" {
		t.Errorf("expected provider URL for b, got %q", got)
	}
}
