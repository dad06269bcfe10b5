package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ResourceType represents the media kind of a resource.
type ResourceType string

const (
	ResourceTypeImage ResourceType = "image"
	ResourceTypeVideo ResourceType = "video"
)

// Valid reports whether the resource type is recognized.
func (t ResourceType) Valid() bool {
	return t == ResourceTypeImage || t == ResourceTypeVideo
}

// ResourceStatus represents the library processing status of a resource.
// Values include ResourceStatusPending, ResourceStatusActive, and
// ResourceStatusFailed.
type ResourceStatus string

const (
	ResourceStatusPending ResourceStatus = "pending"
	ResourceStatusActive  ResourceStatus = "active"
	ResourceStatusFailed  ResourceStatus = "failed"
)

// Author identifies the creator a provider attributes a media item to.
type Author struct {
	DisplayName string `json:"displayName"`
	URL         string `json:"url,omitempty"`
}

// Attribution carries provider attribution for a resource. The field is
// absent entirely when the provider reports no author.
type Attribution struct {
	Author Author `json:"author"`
}

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded attribution, or nil when absent.
//   - error: non-nil if marshaling fails.
func (a *Attribution) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (a *Attribution) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan Attribution")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// SizeVariant describes one named rendition of a media resource.
type SizeVariant struct {
	File      string `json:"file"`
	SourceURL string `json:"source_url"`
	MimeType  string `json:"mime_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// SizeMap is a custom type for storing the size-variant mapping as JSON in
// the database, keyed by variant name.
type SizeMap map[string]SizeVariant

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the map.
//   - error: non-nil if marshaling fails.
func (s SizeMap) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (s *SizeMap) Scan(value interface{}) error {
	if value == nil {
		*s = SizeMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan SizeMap")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, s)
}

// Resource represents a normalized media record used by the story editor.
// SRC, Width, Height, and MimeType describe the full asset, the widest
// rendition the provider offers; Sizes holds every named rendition.
type Resource struct {
	ID           uuid.UUID    `gorm:"type:text;primaryKey" json:"id"`
	Type         ResourceType `gorm:"type:text;not null" json:"type"`
	MimeType     string       `gorm:"type:text" json:"mime_type"`
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	SRC          string       `gorm:"column:src;type:text" json:"src"`
	CreationDate time.Time    `json:"creation_date"`
	Title        string       `gorm:"type:text" json:"title,omitempty"`
	Alt          string       `gorm:"type:text" json:"alt,omitempty"`
	Attribution  *Attribution `gorm:"type:text" json:"attribution,omitempty"`
	Sizes        SizeMap      `gorm:"type:text" json:"sizes"`

	// Library bookkeeping, populated by the sync pipeline.
	Provider   string         `gorm:"type:text;not null;index:idx_resources_provider,unique" json:"provider"`
	ProviderID string         `gorm:"type:text;not null;index:idx_resources_provider,unique" json:"provider_id"`
	StorageKey string         `gorm:"type:text" json:"storage_key,omitempty"`
	FileSize   int64          `json:"file_size,omitempty"`
	Status     ResourceStatus `gorm:"type:text;index:idx_resources_status;default:pending" json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TableName returns the database table name for Resource.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Resource) TableName() string {
	return "resources"
}

// ResourceList is one page of library resources together with paging totals.
type ResourceList struct {
	Resources  []Resource `json:"resources"`
	Total      int64      `json:"total"`
	TotalPages int        `json:"total_pages"`
	Page       int        `json:"page"`
}
