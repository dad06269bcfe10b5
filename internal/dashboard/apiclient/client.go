// Package apiclient is the dashboard's HTTP client for the storydesk
// API. Story fetches run asynchronously and land in the dashboard
// store under the generation number of the request; everything else is
// a plain synchronous call.
package apiclient

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/ilmari/storydesk/internal/dashboard"
	"github.com/ilmari/storydesk/internal/domain"
	"github.com/ilmari/storydesk/internal/logger"
)

// Client talks to the storydesk API.
type Client struct {
	client   *resty.Client
	store    *dashboard.Store
	logger   *logger.Logger
	onUpdate func()
}

// apiError is the error envelope the API wraps failures in.
type apiError struct {
	Error string `json:"error"`
}

// NewClient creates a new API client.
// Parameters:
//   - baseURL: API base URL, e.g. http://localhost:8080.
//   - store: dashboard store fetch results are delivered to.
//   - log: logger instance.
//   - onUpdate: called after an asynchronous fetch settles; used by the
//     UI loop to redraw. May be nil.
// Returns:
//   - *Client: initialized client.
func NewClient(baseURL string, store *dashboard.Store, log *logger.Logger, onUpdate func()) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	client.SetTimeout(30 * time.Second)
	client.SetHeader("Accept", "application/json")

	return &Client{
		client:   client,
		store:    store,
		logger:   log,
		onUpdate: onUpdate,
	}
}

// FetchStories asynchronously fetches one page of the story listing and
// delivers it to the store under the request's generation number. The
// store rejects results whose generation has been superseded, so a slow
// response cannot clobber a newer one.
func (c *Client) FetchStories(ctx context.Context, gen uint64, query domain.StoryQuery) {
	go func() {
		defer c.notify()

		params := map[string]string{
			"page":     strconv.Itoa(query.Page),
			"per_page": strconv.Itoa(query.PerPage),
		}
		if query.Status != "" {
			params["status"] = string(query.Status)
		}
		if query.OrderBy != "" {
			params["orderby"] = string(query.OrderBy)
		}
		if query.Order != "" {
			params["order"] = string(query.Order)
		}
		if query.SearchTerm != "" {
			params["search"] = query.SearchTerm
		}

		var list domain.StoryList
		resp, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetResult(&list).
			SetError(&apiError{}).
			Get("/api/v1/stories")
		if err != nil {
			c.logger.WithError(err).Error("Failed to fetch stories")
			c.store.FailFetch(gen)
			return
		}
		if resp.StatusCode() != 200 {
			c.logger.WithField(logger.FieldStatus, resp.StatusCode()).
				Errorf("Story fetch failed: %s", errorMessage(resp))
			c.store.FailFetch(gen)
			return
		}

		c.store.ApplyResult(gen, &list)
	}()
}

func (c *Client) notify() {
	if c.onUpdate != nil {
		c.onUpdate()
	}
}

// Categories fetches all taxonomy terms.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var result struct {
		Categories []domain.Category `json:"categories"`
		Total      int               `json:"total"`
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&apiError{}).
		Get("/api/v1/categories")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("categories request failed: %s", errorMessage(resp))
	}

	return result.Categories, nil
}

// StatusCounts fetches the per-status story counts for the filter tabs.
func (c *Client) StatusCounts(ctx context.Context) (map[domain.StoryStatus]int64, error) {
	var result struct {
		Counts map[domain.StoryStatus]int64 `json:"counts"`
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&apiError{}).
		Get("/api/v1/stories/counts")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch counts: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("counts request failed: %s", errorMessage(resp))
	}

	return result.Counts, nil
}

// CreateStory creates a new draft story with the given title.
func (c *Client) CreateStory(ctx context.Context, title string) (*domain.Story, error) {
	var story domain.Story

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"title": title}).
		SetResult(&story).
		SetError(&apiError{}).
		Post("/api/v1/stories")
	if err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}
	if resp.StatusCode() != 201 {
		return nil, fmt.Errorf("create request failed: %s", errorMessage(resp))
	}

	return &story, nil
}

// RenameStory changes a story's title.
func (c *Client) RenameStory(ctx context.Context, id uuid.UUID, title string) (*domain.Story, error) {
	var story domain.Story

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"title": title}).
		SetResult(&story).
		SetError(&apiError{}).
		Patch("/api/v1/stories/" + id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to rename story: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("rename request failed: %s", errorMessage(resp))
	}

	return &story, nil
}

// DuplicateStory copies a story into a new draft.
func (c *Client) DuplicateStory(ctx context.Context, id uuid.UUID) (*domain.Story, error) {
	var story domain.Story

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&story).
		SetError(&apiError{}).
		Post("/api/v1/stories/" + id.String() + "/duplicate")
	if err != nil {
		return nil, fmt.Errorf("failed to duplicate story: %w", err)
	}
	if resp.StatusCode() != 201 {
		return nil, fmt.Errorf("duplicate request failed: %s", errorMessage(resp))
	}

	return &story, nil
}

// DeleteStory removes a story.
func (c *Client) DeleteStory(ctx context.Context, id uuid.UUID) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetError(&apiError{}).
		Delete("/api/v1/stories/" + id.String())
	if err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	if resp.StatusCode() != 204 {
		return fmt.Errorf("delete request failed: %s", errorMessage(resp))
	}

	return nil
}

// errorMessage extracts the API error message from a failed response,
// falling back to the HTTP status line.
func errorMessage(resp *resty.Response) string {
	if e, ok := resp.Error().(*apiError); ok && e.Error != "" {
		return e.Error
	}
	return resp.Status()
}
