package domain

// SortOption represents a column the story list can be ordered by.
type SortOption string

const (
	SortByTitle    SortOption = "title"
	SortByCreated  SortOption = "date"
	SortByModified SortOption = "modified"
	SortByAuthor   SortOption = "author"
)

// Valid reports whether the sort option is recognized.
func (o SortOption) Valid() bool {
	switch o {
	case SortByTitle, SortByCreated, SortByModified, SortByAuthor:
		return true
	}
	return false
}

// DefaultDirection returns the direction used when no explicit direction
// accompanies the option. Text columns sort ascending, time columns
// newest-first.
func (o SortOption) DefaultDirection() SortDirection {
	switch o {
	case SortByTitle, SortByAuthor:
		return SortAsc
	default:
		return SortDesc
	}
}

// SortDirection represents an explicit list ordering direction.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Valid reports whether the direction is recognized.
func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

// Flip returns the opposite direction.
func (d SortDirection) Flip() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// ViewStyle represents the presentation mode of the story list.
type ViewStyle string

const (
	ViewStyleGrid ViewStyle = "grid"
	ViewStyleList ViewStyle = "list"
)

// StoryQuery carries the listing parameters a fetch request is issued with.
// Direction is left empty outside list view; the server then applies the
// option's default direction.
type StoryQuery struct {
	Status     StoryStatus   `json:"status,omitempty"`
	OrderBy    SortOption    `json:"orderby,omitempty"`
	Order      SortDirection `json:"order,omitempty"`
	SearchTerm string        `json:"search,omitempty"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
}

// StoryList is one page of listing results together with the totals the
// pagination cursor is derived from.
type StoryList struct {
	Stories    []Story `json:"stories"`
	Total      int64   `json:"total"`
	TotalPages int     `json:"total_pages"`
	Page       int     `json:"page"`
}
