package storage

import (
	"context"
	"fmt"
	"io"
)

// ObjectStorage defines the interface for media asset storage operations
type ObjectStorage interface {
	// EnsureBucket creates the bucket if it does not exist yet
	EnsureBucket(ctx context.Context) error

	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download downloads an object from storage
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the URL for accessing an object
	GetURL(key string) string

	// Delete deletes an object from storage
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)
}

// ObjectKey builds the storage key for an asset from its content hash.
// The two-character prefix buckets objects so no single directory grows
// unbounded, and the hash hides provider coordinates from the key.
func ObjectKey(md5Hash, ext string) string {
	return fmt.Sprintf("%s/%s.%s", md5Hash[:2], md5Hash, ext)
}
