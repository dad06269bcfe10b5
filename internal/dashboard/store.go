// Package dashboard implements the story listing screen of the terminal
// client: an incrementally loaded, sorted and filtered story window, the
// controller that drives fetches against the API, and the grid/list
// renderers that present the same ordered window two ways.
package dashboard

import (
	"sync"

	"github.com/google/uuid"
	"github.com/ilmari/storydesk/internal/domain"
)

// Store owns the fetched story window: the records themselves, the
// accumulated ordering index and the pagination totals the last fetch
// reported. All access is mutex-guarded because fetch results arrive
// from the API client's goroutine while the UI loop reads.
//
// Fetch results carry the generation number of the request that caused
// them; results from a superseded generation are rejected so a slow
// response can never overwrite newer state.
type Store struct {
	mu      sync.Mutex
	stories map[uuid.UUID]domain.Story
	order   []uuid.UUID

	total      int64
	totalPages int

	loading bool
	gen     uint64 // generation of the most recently issued fetch

	// version bumps on every content or order change; the ordered
	// sequence is memoized against it.
	version     uint64
	memo        []domain.Story
	memoVersion uint64
}

// NewStore creates an empty story store.
func NewStore() *Store {
	return &Store{
		stories: make(map[uuid.UUID]domain.Story),
		version: 1,
	}
}

// BeginFetch marks a fetch of the given generation as in flight. Later
// generations supersede earlier ones.
func (s *Store) BeginFetch(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen = gen
	s.loading = true
}

// ApplyResult merges one page of fetch results into the store. A page-1
// result replaces the ordering index wholesale; later pages append, with
// identifiers already present keeping their position. Returns false
// without touching any state when the result belongs to a superseded
// generation.
func (s *Store) ApplyResult(gen uint64, list *domain.StoryList) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}

	if list.Page <= 1 {
		s.order = s.order[:0]
	}

	seen := make(map[uuid.UUID]bool, len(s.order))
	for _, id := range s.order {
		seen[id] = true
	}
	for _, story := range list.Stories {
		s.stories[story.ID] = story
		if !seen[story.ID] {
			s.order = append(s.order, story.ID)
			seen[story.ID] = true
		}
	}

	s.total = list.Total
	s.totalPages = list.TotalPages
	s.loading = false
	s.version++
	return true
}

// FailFetch clears the loading flag for a failed fetch. Stale failures
// are ignored just like stale results.
func (s *Store) FailFetch(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}
	s.loading = false
	return true
}

// ClearOrder drops the accumulated ordering index while keeping the
// fetched records cached. Used when a new search term starts a fresh
// fetch sequence.
func (s *Store) ClearOrder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return
	}
	s.order = s.order[:0]
	s.version++
}

// IsLoading reports whether a fetch is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Totals returns the story total and page total from the most recent
// applied fetch result.
func (s *Store) Totals() (total int64, totalPages int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total, s.totalPages
}

// Version returns the current mutation counter.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// OrderedStories returns the full records of the ordering index, in
// order. The slice is memoized and recomputed only after a content or
// order change; callers must treat it as read-only.
func (s *Store) OrderedStories() []domain.Story {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.memo == nil || s.memoVersion != s.version {
		out := make([]domain.Story, 0, len(s.order))
		for _, id := range s.order {
			if story, ok := s.stories[id]; ok {
				out = append(out, story)
			}
		}
		s.memo = out
		s.memoVersion = s.version
	}
	return s.memo
}
