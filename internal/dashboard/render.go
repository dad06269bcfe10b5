package dashboard

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/ilmari/storydesk/internal/domain"
)

// GridConfig configures the grid renderer.
type GridConfig struct {
	Columns   int // cells per row
	CellWidth int // printed width of one cell
}

// DefaultGridConfig returns the grid layout used when none is given.
func DefaultGridConfig() GridConfig {
	return GridConfig{Columns: 3, CellWidth: 24}
}

// ListConfig configures the list renderer.
type ListConfig struct {
	TitleWidth  int
	ShowAuthor  bool
	ShowUpdated bool
}

// DefaultListConfig returns the list layout used when none is given.
func DefaultListConfig() ListConfig {
	return ListConfig{TitleWidth: 48, ShowAuthor: true, ShowUpdated: true}
}

// Renderer turns an ordered story window into printable lines.
type Renderer interface {
	Render(stories []domain.Story) []string
}

// GridRenderer lays stories out in fixed-width card cells, several per
// row. An empty window renders nothing at all; the surrounding view
// decides what message, if any, takes the grid's place.
type GridRenderer struct {
	cfg GridConfig
}

// NewGridRenderer creates a grid renderer with the given layout.
func NewGridRenderer(cfg GridConfig) GridRenderer {
	if cfg.Columns < 1 {
		cfg.Columns = 1
	}
	if cfg.CellWidth < 8 {
		cfg.CellWidth = 8
	}
	return GridRenderer{cfg: cfg}
}

// Render renders rows of title cells, each row followed by a matching
// row of status cells.
func (r GridRenderer) Render(stories []domain.Story) []string {
	if len(stories) == 0 {
		return nil
	}

	var lines []string
	for start := 0; start < len(stories); start += r.cfg.Columns {
		end := start + r.cfg.Columns
		if end > len(stories) {
			end = len(stories)
		}
		row := stories[start:end]

		titles := make([]string, len(row))
		metas := make([]string, len(row))
		for i, story := range row {
			titles[i] = fmt.Sprintf("%-*s", r.cfg.CellWidth, truncate(story.Title, r.cfg.CellWidth))
			meta := string(story.Status)
			if !story.UpdatedAt.IsZero() {
				meta += " · " + humanize.Time(story.UpdatedAt)
			}
			metas[i] = fmt.Sprintf("%-*s", r.cfg.CellWidth, truncate(meta, r.cfg.CellWidth))
		}

		lines = append(lines,
			strings.TrimRight(strings.Join(titles, "  "), " "),
			strings.TrimRight(strings.Join(metas, "  "), " "),
			"",
		)
	}

	// Drop the trailing blank separator.
	return lines[:len(lines)-1]
}

// ListRenderer prints one line per story with inline status, author and
// modification age.
type ListRenderer struct {
	cfg ListConfig
}

// NewListRenderer creates a list renderer with the given layout.
func NewListRenderer(cfg ListConfig) ListRenderer {
	if cfg.TitleWidth < 8 {
		cfg.TitleWidth = 8
	}
	return ListRenderer{cfg: cfg}
}

// Render renders one row per story.
func (r ListRenderer) Render(stories []domain.Story) []string {
	lines := make([]string, 0, len(stories))
	for _, story := range stories {
		line := fmt.Sprintf("[%-9s] %-*s", story.Status, r.cfg.TitleWidth, truncate(story.Title, r.cfg.TitleWidth))
		if r.cfg.ShowAuthor && story.Author != "" {
			line += "  " + story.Author
		}
		if r.cfg.ShowUpdated && !story.UpdatedAt.IsZero() {
			line += "  " + humanize.Time(story.UpdatedAt)
		}
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return lines
}

// truncate shortens s to at most width runes, marking the cut with an
// ellipsis when room allows.
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
