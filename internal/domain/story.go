package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// StoryStatus represents the publication status of a story.
// Values include StoryStatusDraft, StoryStatusPublished, StoryStatusFuture,
// and StoryStatusPrivate.
type StoryStatus string

const (
	StoryStatusDraft     StoryStatus = "draft"
	StoryStatusPublished StoryStatus = "published"
	StoryStatusFuture    StoryStatus = "future"
	StoryStatusPrivate   StoryStatus = "private"

	// StoryStatusAll is a filter value, never stored on a record.
	StoryStatusAll StoryStatus = "all"
)

// Valid reports whether the status is one of the storable values.
// Parameters: none.
// Returns:
//   - bool: true for draft, published, future, or private.
func (s StoryStatus) Valid() bool {
	switch s {
	case StoryStatusDraft, StoryStatusPublished, StoryStatusFuture, StoryStatusPrivate:
		return true
	}
	return false
}

// MetaMap is a custom type for storing arbitrary display metadata as JSON
// in the database.
type MetaMap map[string]interface{}

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the map.
//   - error: non-nil if marshaling fails.
func (m MetaMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
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
func (m *MetaMap) Scan(value interface{}) error {
	if value == nil {
		*m = MetaMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan MetaMap")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, m)
}

// Story represents a story managed by the dashboard.
// Fields include identifiers, publication state, authorship, and arbitrary
// display metadata owned by the editor.
type Story struct {
	ID        uuid.UUID   `gorm:"type:text;primaryKey" json:"id"`
	Title     string      `gorm:"type:text;not null" json:"title"`
	Slug      string      `gorm:"type:text;uniqueIndex:idx_stories_slug" json:"slug"`
	Excerpt   string      `gorm:"type:text" json:"excerpt,omitempty"`
	Author    string      `gorm:"type:text;index:idx_stories_author" json:"author"`
	Status    StoryStatus `gorm:"type:text;index:idx_stories_status;default:draft" json:"status"`
	PosterID  *uuid.UUID  `gorm:"type:text" json:"poster_id,omitempty"`
	Meta      MetaMap     `gorm:"type:text" json:"meta,omitempty"`
	CreatedAt time.Time   `gorm:"index:idx_stories_created" json:"created_at"`
	UpdatedAt time.Time   `gorm:"index:idx_stories_updated" json:"updated_at"`
}

// TableName returns the database table name for Story.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Story) TableName() string {
	return "stories"
}
