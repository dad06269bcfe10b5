package provider

import (
	"context"
	"time"
)

// Provider media type values on the wire.
const (
	TypeImage = "image"
	TypeVideo = "video"
)

// Media represents a raw media record from a third-party provider,
// before normalization into a domain resource.
type Media struct {
	ID           string    // Unique ID within the provider
	Provider     string    // Provider identifier, set by the client
	Type         string    // Provider media type ("image", "video", ...)
	MimeType     string    // Mime type of the primary asset
	URL          string    // Canonical asset or page URL
	Title        string    // Display title (may be empty)
	Alt          string    // Alt text (may be empty)
	CreationDate time.Time // When the media was created at the provider
	Author       *Author   // Attribution, nil when the provider reports none
	Sizes        []Size    // Available size variants, provider order
}

// Size is a single size variant of a provider media record.
type Size struct {
	Name      string // Variant name ("thumbnail", "full", ...)
	File      string // File identifier within the provider
	SourceURL string // Direct URL for this variant
	MimeType  string // Mime type of this variant
	Width     int
	Height    int
}

// Author carries provider-side attribution for a media record.
type Author struct {
	DisplayName string
	URL         string
}

// Provider defines the interface for third-party media providers.
type Provider interface {
	// GetProviderID returns the unique identifier for this provider.
	// Parameters: none.
	// Returns:
	//   - string: stable provider identifier.
	GetProviderID() string

	// GetDisplayName returns a human-readable name for this provider.
	// Parameters: none.
	// Returns:
	//   - string: display-friendly provider name.
	GetDisplayName() string

	// Search fetches a page of media records matching a query.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - query: free-text search query, empty for curated/recent media.
	//   - page: 1-based page number.
	//   - perPage: maximum number of records per page.
	// Returns:
	//   - items: page of media records.
	//   - total: total number of matching records at the provider.
	//   - err: non-nil if the provider call fails.
	Search(ctx context.Context, query string, page, perPage int) (items []Media, total int, err error)

	// FetchBatch fetches a batch of media records starting from the given cursor.
	// Used by the library sync pipeline.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - cursor: pagination cursor or empty for the first batch.
	//   - limit: maximum number of records to fetch.
	// Returns:
	//   - items: batch of media records.
	//   - nextCursor: cursor for the next batch or empty if done.
	//   - err: non-nil if fetching fails.
	FetchBatch(ctx context.Context, cursor string, limit int) (items []Media, nextCursor string, err error)
}
