package storage

import "strings"

// NewStorage builds the object storage client for the configured
// endpoint. When the config leaves Type empty it is inferred from the
// endpoint host: Cloudflare R2 and AWS S3 hosts are recognized, and
// anything else, the local MinIO default (localhost:9000) included,
// is treated as a generic S3-compatible service.
func NewStorage(cfg *S3Config) (ObjectStorage, error) {
	if cfg.Type == "" {
		cfg.Type = inferStorageType(cfg.Endpoint)
	}

	return NewS3Storage(cfg)
}

// inferStorageType classifies an endpoint by its host. The raw config
// value may still carry a scheme or path here, so it is stripped the
// same way NewS3Storage strips it.
func inferStorageType(endpoint string) StorageType {
	host := strings.ToLower(normalizeEndpoint(endpoint))

	switch {
	case strings.HasSuffix(host, ".r2.cloudflarestorage.com"):
		return StorageTypeR2
	case host == "s3.amazonaws.com" || strings.HasSuffix(host, ".amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
