package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/ilmari/storydesk/internal/domain"
)

// DefaultSearchDebounce is how long search input must rest before it
// takes effect as the applied search term.
const DefaultSearchDebounce = 800 * time.Millisecond

// Fetcher issues an asynchronous story fetch. Implementations must
// return promptly and later deliver the outcome to the store via
// ApplyResult or FailFetch, tagged with the same generation number.
type Fetcher interface {
	FetchStories(ctx context.Context, gen uint64, query domain.StoryQuery)
}

// Options configures a Controller.
type Options struct {
	PerPage        int
	SearchDebounce time.Duration
	View           domain.ViewStyle
}

// Controller owns the listing parameters of the story screen: status
// filter, sort option and direction, applied search term, view style
// and the pagination cursor. Every applied parameter change restarts
// the fetch sequence at page 1 under a fresh generation number.
//
// The sort direction is kept empty until the user picks one; an empty
// direction means the sort option's own default, applied server-side.
// It is only sent with the request at all while the list view is
// active.
type Controller struct {
	store         *Store
	fetcher       Fetcher
	perPage       int
	debounceDelay time.Duration

	mu          sync.Mutex
	status      domain.StoryStatus
	orderBy     domain.SortOption
	direction   domain.SortDirection
	view        domain.ViewStyle
	searchInput string
	searchTerm  string
	page        int
	gen         uint64
	debounce    *time.Timer
}

// NewController creates a controller over the given store and fetcher.
func NewController(store *Store, fetcher Fetcher, opts Options) *Controller {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	delay := opts.SearchDebounce
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	view := opts.View
	if view == "" {
		view = domain.ViewStyleGrid
	}

	return &Controller{
		store:         store,
		fetcher:       fetcher,
		perPage:       perPage,
		debounceDelay: delay,
		status:        domain.StoryStatusAll,
		orderBy:       domain.SortByModified,
		view:          view,
		page:          1,
	}
}

// Refresh issues a fetch with the current parameters.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	gen, query := c.beginFetchLocked()
	c.mu.Unlock()
	c.fetcher.FetchStories(ctx, gen, query)
}

// SetStatus applies a status filter and restarts the fetch sequence.
func (c *Controller) SetStatus(ctx context.Context, status domain.StoryStatus) {
	c.mu.Lock()
	if c.status == status {
		c.mu.Unlock()
		return
	}
	c.status = status
	c.page = 1
	gen, query := c.beginFetchLocked()
	c.mu.Unlock()
	c.fetcher.FetchStories(ctx, gen, query)
}

// SetSortOption applies a sort option and restarts the fetch sequence.
// The explicit direction is dropped so the new option sorts by its own
// default until the user picks a direction again.
func (c *Controller) SetSortOption(ctx context.Context, option domain.SortOption) {
	c.mu.Lock()
	if c.orderBy == option {
		c.mu.Unlock()
		return
	}
	c.orderBy = option
	c.direction = ""
	c.page = 1
	gen, query := c.beginFetchLocked()
	c.mu.Unlock()
	c.fetcher.FetchStories(ctx, gen, query)
}

// SetSortDirection applies an explicit sort direction and restarts the
// fetch sequence.
func (c *Controller) SetSortDirection(ctx context.Context, direction domain.SortDirection) {
	c.mu.Lock()
	if c.direction == direction {
		c.mu.Unlock()
		return
	}
	c.direction = direction
	c.page = 1
	gen, query := c.beginFetchLocked()
	c.mu.Unlock()
	c.fetcher.FetchStories(ctx, gen, query)
}

// ToggleDirection flips the effective sort direction.
func (c *Controller) ToggleDirection(ctx context.Context) {
	c.mu.Lock()
	effective := c.effectiveDirectionLocked()
	c.mu.Unlock()
	c.SetSortDirection(ctx, effective.Flip())
}

// SetView switches the presentation mode. The ordered window is left
// untouched: toggling between grid and list re-renders the same
// sequence and never refetches.
func (c *Controller) SetView(view domain.ViewStyle) {
	c.mu.Lock()
	c.view = view
	c.mu.Unlock()
}

// SetSearchInput records raw search input and (re)arms the debounce
// timer. The input becomes the applied search term only after it has
// rested for the configured delay.
func (c *Controller) SetSearchInput(ctx context.Context, text string) {
	c.mu.Lock()
	c.searchInput = text
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounce = time.AfterFunc(c.debounceDelay, func() {
		c.applySearch(ctx, text)
	})
	c.mu.Unlock()
}

// applySearch runs when the debounce timer fires. A change to a
// non-empty term wipes the accumulated ordering before the fetch so
// stale rows never show under a new search; clearing the term back to
// empty keeps the window visible until fresh results arrive.
func (c *Controller) applySearch(ctx context.Context, text string) {
	c.mu.Lock()
	if c.searchTerm == text {
		c.mu.Unlock()
		return
	}
	c.searchTerm = text
	c.page = 1
	if text != "" {
		c.store.ClearOrder()
	}
	gen, query := c.beginFetchLocked()
	c.mu.Unlock()
	c.fetcher.FetchStories(ctx, gen, query)
}

// LoadMore advances the pagination cursor by one page and fetches it.
// It is a no-op while a fetch is in flight or once every page is
// loaded.
func (c *Controller) LoadMore(ctx context.Context) {
	c.mu.Lock()
	if c.store.IsLoading() || c.allPagesLoadedLocked() {
		c.mu.Unlock()
		return
	}
	c.page++
	gen, query := c.beginFetchLocked()
	c.mu.Unlock()
	c.fetcher.FetchStories(ctx, gen, query)
}

// AllPagesLoaded reports whether the cursor has reached the last page
// the server reported. Before any result has arrived the page total is
// zero and this resolves to true, so no speculative fetch is issued.
func (c *Controller) AllPagesLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allPagesLoadedLocked()
}

func (c *Controller) allPagesLoadedLocked() bool {
	_, totalPages := c.store.Totals()
	return c.page >= totalPages
}

// OrderedStories returns the current ordered story window.
func (c *Controller) OrderedStories() []domain.Story {
	return c.store.OrderedStories()
}

// Totals returns the story total and page total from the most recent
// fetch result.
func (c *Controller) Totals() (total int64, totalPages int) {
	return c.store.Totals()
}

// IsLoading reports whether a fetch is in flight.
func (c *Controller) IsLoading() bool {
	return c.store.IsLoading()
}

// Close stops the pending debounce timer, if any.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
}

// beginFetchLocked allocates the next generation, marks it in flight
// and snapshots the request parameters. Callers dispatch to the
// fetcher after releasing the lock.
func (c *Controller) beginFetchLocked() (uint64, domain.StoryQuery) {
	c.gen++
	c.store.BeginFetch(c.gen)
	return c.gen, c.queryLocked()
}

// queryLocked builds the fetch parameters. The direction parameter is
// only carried while the list view is active; the grid has no
// direction control.
func (c *Controller) queryLocked() domain.StoryQuery {
	query := domain.StoryQuery{
		Status:     c.status,
		OrderBy:    c.orderBy,
		SearchTerm: c.searchTerm,
		Page:       c.page,
		PerPage:    c.perPage,
	}
	if c.view == domain.ViewStyleList {
		query.Order = c.direction
	}
	return query
}

func (c *Controller) effectiveDirectionLocked() domain.SortDirection {
	if c.direction != "" {
		return c.direction
	}
	return c.orderBy.DefaultDirection()
}

// Status returns the active status filter.
func (c *Controller) Status() domain.StoryStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// OrderBy returns the active sort option.
func (c *Controller) OrderBy() domain.SortOption {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderBy
}

// EffectiveDirection returns the direction the list is effectively
// sorted by: the explicit choice if one was made, the sort option's
// default otherwise.
func (c *Controller) EffectiveDirection() domain.SortDirection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effectiveDirectionLocked()
}

// View returns the active view style.
func (c *Controller) View() domain.ViewStyle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// SearchInput returns the raw, possibly not yet applied search input.
func (c *Controller) SearchInput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchInput
}

// SearchTerm returns the applied search term.
func (c *Controller) SearchTerm() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchTerm
}

// Page returns the current pagination cursor.
func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}
