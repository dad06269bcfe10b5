package media3p

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ilmari/storydesk/internal/provider"
)

const (
	ProviderID   = "media3p"
	ProviderName = "Media3P"

	defaultPageSize = 30
)

// Client implements the Provider interface against the Media3P HTTP API.
type Client struct {
	client   *resty.Client
	endpoint string
	pageSize int
}

// Config holds configuration for the Media3P client.
type Config struct {
	BaseURL  string
	APIKey   string
	PageSize int
}

// NewClient creates a new Media3P client.
// Parameters:
//   - cfg: client configuration including base URL and API key.
//
// Returns:
//   - *Client: initialized Media3P client.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	// Set timeout to prevent hanging requests
	client.SetTimeout(30 * time.Second)

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Client{
		client:   client,
		endpoint: cfg.BaseURL + "/media",
		pageSize: pageSize,
	}
}

// GetProviderID returns the unique identifier for this provider.
func (c *Client) GetProviderID() string {
	return ProviderID
}

// GetDisplayName returns a human-readable name for this provider.
func (c *Client) GetDisplayName() string {
	return ProviderName
}

// Media3P API request/response structures
type mediaListResponse struct {
	Media         []mediaItem `json:"media"`
	TotalMedia    int         `json:"total_media"`
	NextPageToken string      `json:"next_page_token"`
	Error         string      `json:"error,omitempty"`
}

type mediaItem struct {
	ID         string       `json:"id"`
	Type       string       `json:"type"`
	MimeType   string       `json:"mime_type"`
	URL        string       `json:"url"`
	Title      string       `json:"title"`
	AltText    string       `json:"alt_text"`
	CreateTime string       `json:"create_time"`
	Author     *mediaAuthor `json:"author,omitempty"`
	Sizes      []mediaSize  `json:"sizes"`
}

type mediaAuthor struct {
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
}

type mediaSize struct {
	Name      string `json:"name"`
	File      string `json:"file"`
	SourceURL string `json:"source_url"`
	MimeType  string `json:"mime_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Search fetches a page of media records matching a query.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - query: free-text search query, empty for curated media.
//   - page: 1-based page number.
//   - perPage: maximum number of records per page.
//
// Returns:
//   - []provider.Media: page of media records.
//   - int: total number of matching records at the provider.
//   - error: non-nil if the API call fails.
func (c *Client) Search(ctx context.Context, query string, page, perPage int) ([]provider.Media, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = c.pageSize
	}

	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("per_page", strconv.Itoa(perPage))
	if query != "" {
		req.SetQueryParam("query", query)
	}

	// The error envelope shares the response shape, so failures decode
	// into the same struct.
	var resp mediaListResponse
	httpResp, err := req.SetResult(&resp).SetError(&resp).Get(c.endpoint)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to call Media3P API: %w", err)
	}

	if httpResp.StatusCode() != 200 {
		if resp.Error != "" {
			return nil, 0, fmt.Errorf("Media3P API error: %s", resp.Error)
		}
		return nil, 0, fmt.Errorf("Media3P API error: status %d", httpResp.StatusCode())
	}

	items := make([]provider.Media, 0, len(resp.Media))
	for _, item := range resp.Media {
		items = append(items, convertItem(item))
	}

	return items, resp.TotalMedia, nil
}

// FetchBatch fetches a batch of media records starting from the given cursor.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - cursor: opaque page token from a previous call, empty for the first batch.
//   - limit: maximum number of records to fetch.
//
// Returns:
//   - []provider.Media: batch of media records.
//   - string: next page token or empty if done.
//   - error: non-nil if the API call fails.
func (c *Client) FetchBatch(ctx context.Context, cursor string, limit int) ([]provider.Media, string, error) {
	if limit <= 0 {
		limit = c.pageSize
	}

	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("page_size", strconv.Itoa(limit))
	if cursor != "" {
		req.SetQueryParam("page_token", cursor)
	}

	var resp mediaListResponse
	httpResp, err := req.SetResult(&resp).SetError(&resp).Get(c.endpoint)
	if err != nil {
		return nil, "", fmt.Errorf("failed to call Media3P API: %w", err)
	}

	if httpResp.StatusCode() != 200 {
		if resp.Error != "" {
			return nil, "", fmt.Errorf("Media3P API error: %s", resp.Error)
		}
		return nil, "", fmt.Errorf("Media3P API error: status %d", httpResp.StatusCode())
	}

	items := make([]provider.Media, 0, len(resp.Media))
	for _, item := range resp.Media {
		items = append(items, convertItem(item))
	}

	return items, resp.NextPageToken, nil
}

// convertItem maps a wire media item to the provider type.
func convertItem(item mediaItem) provider.Media {
	media := provider.Media{
		ID:       item.ID,
		Provider: ProviderID,
		Type:     item.Type,
		MimeType: item.MimeType,
		URL:      item.URL,
		Title:    item.Title,
		Alt:      item.AltText,
	}

	// Best effort: a missing or malformed timestamp stays zero
	if item.CreateTime != "" {
		if t, err := time.Parse(time.RFC3339, item.CreateTime); err == nil {
			media.CreationDate = t
		}
	}

	if item.Author != nil {
		media.Author = &provider.Author{
			DisplayName: item.Author.DisplayName,
			URL:         item.Author.URL,
		}
	}

	for _, size := range item.Sizes {
		media.Sizes = append(media.Sizes, provider.Size{
			Name:      size.Name,
			File:      size.File,
			SourceURL: size.SourceURL,
			MimeType:  size.MimeType,
			Width:     size.Width,
			Height:    size.Height,
		})
	}

	return media
}
