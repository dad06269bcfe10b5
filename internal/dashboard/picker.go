package dashboard

import (
	"strings"

	"github.com/google/uuid"
	"github.com/ilmari/storydesk/internal/domain"
)

// Picker models the category-picker widget: the available terms, which
// of them are selected (in selection order), and a name filter typed by
// the user. It is driven from the UI loop only and needs no locking.
type Picker struct {
	categories []domain.Category
	selected   map[uuid.UUID]bool
	order      []uuid.UUID
	filter     string
}

// NewPicker creates a picker over the given categories.
func NewPicker(categories []domain.Category) *Picker {
	p := &Picker{
		selected: make(map[uuid.UUID]bool),
	}
	p.SetCategories(categories)
	return p
}

// SetCategories replaces the available terms, dropping selections that
// no longer exist.
func (p *Picker) SetCategories(categories []domain.Category) {
	p.categories = make([]domain.Category, len(categories))
	copy(p.categories, categories)

	known := make(map[uuid.UUID]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	kept := p.order[:0]
	for _, id := range p.order {
		if known[id] {
			kept = append(kept, id)
		} else {
			delete(p.selected, id)
		}
	}
	p.order = kept
}

// SetFilter sets the name filter applied by Visible.
func (p *Picker) SetFilter(text string) {
	p.filter = text
}

// Filter returns the active name filter.
func (p *Picker) Filter() string {
	return p.filter
}

// Visible returns the categories whose name contains the filter text,
// case-insensitively, in their original order. An empty filter shows
// everything.
func (p *Picker) Visible() []domain.Category {
	if p.filter == "" {
		out := make([]domain.Category, len(p.categories))
		copy(out, p.categories)
		return out
	}

	needle := strings.ToLower(p.filter)
	out := make([]domain.Category, 0, len(p.categories))
	for _, c := range p.categories {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

// Toggle flips the selection state of the given term and reports the
// new state. Unknown identifiers are ignored.
func (p *Picker) Toggle(id uuid.UUID) bool {
	if p.find(id) == nil {
		return false
	}

	if p.selected[id] {
		delete(p.selected, id)
		for i, sel := range p.order {
			if sel == id {
				p.order = append(p.order[:i], p.order[i+1:]...)
				break
			}
		}
		return false
	}

	p.selected[id] = true
	p.order = append(p.order, id)
	return true
}

// IsSelected reports whether the given term is selected.
func (p *Picker) IsSelected(id uuid.UUID) bool {
	return p.selected[id]
}

// Selected returns the selected categories in the order they were
// picked.
func (p *Picker) Selected() []domain.Category {
	out := make([]domain.Category, 0, len(p.order))
	for _, id := range p.order {
		if c := p.find(id); c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// Clear deselects everything.
func (p *Picker) Clear() {
	p.selected = make(map[uuid.UUID]bool)
	p.order = p.order[:0]
}

func (p *Picker) find(id uuid.UUID) *domain.Category {
	for i := range p.categories {
		if p.categories[i].ID == id {
			return &p.categories[i]
		}
	}
	return nil
}
