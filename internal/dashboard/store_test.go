package dashboard

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ilmari/storydesk/internal/domain"
)

func testStory(title string) domain.Story {
	return domain.Story{
		ID:        uuid.New(),
		Title:     title,
		Status:    domain.StoryStatusDraft,
		UpdatedAt: time.Now(),
	}
}

func storyList(page, totalPages int, stories ...domain.Story) *domain.StoryList {
	total := int64(len(stories))
	if totalPages > 1 {
		total = int64(totalPages * len(stories))
	}
	return &domain.StoryList{
		Stories:    stories,
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
	}
}

func orderedTitles(stories []domain.Story) []string {
	titles := make([]string, len(stories))
	for i, s := range stories {
		titles[i] = s.Title
	}
	return titles
}

func equalTitles(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStore_ApplyResult_AppendsAcrossPages(t *testing.T) {
	s := NewStore()
	a, b, c := testStory("A"), testStory("B"), testStory("C")

	s.BeginFetch(1)
	if !s.ApplyResult(1, storyList(1, 2, a, b)) {
		t.Fatal("expected page 1 result to apply")
	}
	s.BeginFetch(2)
	if !s.ApplyResult(2, storyList(2, 2, b, c)) {
		t.Fatal("expected page 2 result to apply")
	}

	got := orderedTitles(s.OrderedStories())
	want := []string{"A", "B", "C"}
	if !equalTitles(got, want) {
		t.Errorf("expected order %v, got %v", want, got)
	}
}

func TestStore_ApplyResult_PageOneReplaces(t *testing.T) {
	s := NewStore()
	a, b, c := testStory("A"), testStory("B"), testStory("C")

	s.BeginFetch(1)
	s.ApplyResult(1, storyList(1, 1, a, b))
	s.BeginFetch(2)
	s.ApplyResult(2, storyList(1, 1, c))

	got := orderedTitles(s.OrderedStories())
	if !equalTitles(got, []string{"C"}) {
		t.Errorf("expected page-1 result to replace order, got %v", got)
	}
}

func TestStore_ApplyResult_StaleGenerationRejected(t *testing.T) {
	s := NewStore()
	a, b := testStory("A"), testStory("B")

	s.BeginFetch(1)
	s.BeginFetch(2)

	if s.ApplyResult(1, storyList(1, 1, a)) {
		t.Error("expected superseded generation to be rejected")
	}
	if len(s.OrderedStories()) != 0 {
		t.Error("expected rejected result to leave the store untouched")
	}
	if !s.IsLoading() {
		t.Error("expected loading flag to survive a stale result")
	}

	if !s.ApplyResult(2, storyList(1, 1, b)) {
		t.Fatal("expected current generation to apply")
	}
	got := orderedTitles(s.OrderedStories())
	if !equalTitles(got, []string{"B"}) {
		t.Errorf("expected order [B], got %v", got)
	}
	if s.IsLoading() {
		t.Error("expected loading flag cleared after current result")
	}
}

func TestStore_FailFetch(t *testing.T) {
	s := NewStore()

	s.BeginFetch(1)
	s.BeginFetch(2)

	if s.FailFetch(1) {
		t.Error("expected stale failure to be ignored")
	}
	if !s.IsLoading() {
		t.Error("expected loading flag to survive a stale failure")
	}

	if !s.FailFetch(2) {
		t.Error("expected current failure to clear loading")
	}
	if s.IsLoading() {
		t.Error("expected loading flag cleared")
	}
}

func TestStore_ClearOrder(t *testing.T) {
	s := NewStore()
	a := testStory("A")

	s.BeginFetch(1)
	s.ApplyResult(1, storyList(1, 1, a))
	before := s.Version()

	s.ClearOrder()
	if len(s.OrderedStories()) != 0 {
		t.Error("expected empty order after clear")
	}
	if s.Version() == before {
		t.Error("expected version bump after clear")
	}

	// Clearing an already empty order is not a change.
	v := s.Version()
	s.ClearOrder()
	if s.Version() != v {
		t.Error("expected no version bump for clearing an empty order")
	}
}

func TestStore_OrderedStoriesMemoized(t *testing.T) {
	s := NewStore()
	a, b := testStory("A"), testStory("B")

	s.BeginFetch(1)
	s.ApplyResult(1, storyList(1, 2, a))

	first := s.OrderedStories()
	second := s.OrderedStories()
	if len(first) == 0 || &first[0] != &second[0] {
		t.Error("expected repeated reads to return the memoized slice")
	}

	s.BeginFetch(2)
	s.ApplyResult(2, storyList(2, 2, b))

	third := s.OrderedStories()
	if len(third) != 2 {
		t.Fatalf("expected 2 stories after second page, got %d", len(third))
	}
	if &third[0] == &first[0] {
		t.Error("expected recomputed slice after a content change")
	}
}

func TestStore_Totals(t *testing.T) {
	s := NewStore()

	total, totalPages := s.Totals()
	if total != 0 || totalPages != 0 {
		t.Errorf("expected zero totals on empty store, got %d/%d", total, totalPages)
	}

	s.BeginFetch(1)
	s.ApplyResult(1, &domain.StoryList{
		Stories:    []domain.Story{testStory("A")},
		Total:      41,
		TotalPages: 3,
		Page:       1,
	})

	total, totalPages = s.Totals()
	if total != 41 {
		t.Errorf("expected total 41, got %d", total)
	}
	if totalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", totalPages)
	}
}
