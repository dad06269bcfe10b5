package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category is a taxonomy term stories can be filed under. ParentID is nil
// for top-level terms.
type Category struct {
	ID        uuid.UUID  `gorm:"type:text;primaryKey" json:"id"`
	Name      string     `gorm:"type:text;not null" json:"name"`
	Slug      string     `gorm:"type:text;uniqueIndex:idx_categories_slug" json:"slug"`
	ParentID  *uuid.UUID `gorm:"type:text" json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string {
	return "categories"
}
