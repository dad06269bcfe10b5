package media3p

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

const searchResponse = `{
	"media": [
		{
			"id": "photo-1",
			"type": "image",
			"mime_type": "image/jpeg",
			"url": "https://media3p.example/photo-1",
			"title": "Morning Fog",
			"alt_text": "Fog over a valley",
			"create_time": "2024-03-01T10:00:00Z",
			"author": {"display_name": "Ansel A.", "url": "https://media3p.example/u/ansel"},
			"sizes": [
				{"name": "thumbnail", "file": "photo-1-150.jpg", "source_url": "https://cdn.media3p.example/photo-1-150.jpg", "mime_type": "image/jpeg", "width": 150, "height": 100},
				{"name": "full", "file": "photo-1.jpg", "source_url": "https://cdn.media3p.example/photo-1.jpg", "mime_type": "image/jpeg", "width": 2048, "height": 1365}
			]
		},
		{
			"id": "photo-2",
			"type": "image",
			"mime_type": "image/png",
			"url": "https://media3p.example/photo-2",
			"title": "Untitled",
			"sizes": []
		}
	],
	"total_media": 57,
	"next_page_token": "tok-2"
}`

// newTestClient starts a stub Media3P server and returns a client pointed at
// it plus the query values of every request received.
func newTestClient(t *testing.T, status int, body string) (*Client, *[]url.Values) {
	t.Helper()

	var requests []url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected Authorization header 'Bearer test-key', got %q", got)
		}
		if r.URL.Path != "/media" {
			t.Errorf("expected path /media, got %s", r.URL.Path)
		}
		requests = append(requests, r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(&Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
	})
	return client, &requests
}

func TestClient_Search(t *testing.T) {
	client, requests := newTestClient(t, http.StatusOK, searchResponse)

	items, total, err := client.Search(context.Background(), "fog", 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if total != 57 {
		t.Errorf("expected total 57, got %d", total)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	query := (*requests)[0]
	if got := query.Get("query"); got != "fog" {
		t.Errorf("expected query param 'fog', got %q", got)
	}
	if got := query.Get("page"); got != "2" {
		t.Errorf("expected page param '2', got %q", got)
	}
	if got := query.Get("per_page"); got != "10" {
		t.Errorf("expected per_page param '10', got %q", got)
	}

	first := items[0]
	if first.ID != "photo-1" {
		t.Errorf("expected ID photo-1, got %s", first.ID)
	}
	if first.Provider != ProviderID {
		t.Errorf("expected provider %s, got %s", ProviderID, first.Provider)
	}
	if first.Type != "image" || first.MimeType != "image/jpeg" {
		t.Errorf("unexpected type/mime: %s/%s", first.Type, first.MimeType)
	}
	if first.Alt != "Fog over a valley" {
		t.Errorf("unexpected alt text: %q", first.Alt)
	}
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if !first.CreationDate.Equal(want) {
		t.Errorf("expected creation date %v, got %v", want, first.CreationDate)
	}
	if first.Author == nil || first.Author.DisplayName != "Ansel A." {
		t.Errorf("expected author Ansel A., got %+v", first.Author)
	}
	if len(first.Sizes) != 2 {
		t.Fatalf("expected 2 sizes, got %d", len(first.Sizes))
	}
	if first.Sizes[1].Width != 2048 || first.Sizes[1].SourceURL != "https://cdn.media3p.example/photo-1.jpg" {
		t.Errorf("unexpected full size: %+v", first.Sizes[1])
	}

	second := items[1]
	if second.Author != nil {
		t.Errorf("expected nil author, got %+v", second.Author)
	}
	if !second.CreationDate.IsZero() {
		t.Errorf("expected zero creation date, got %v", second.CreationDate)
	}
}

func TestClient_Search_Defaults(t *testing.T) {
	client, requests := newTestClient(t, http.StatusOK, `{"media": [], "total_media": 0}`)

	if _, _, err := client.Search(context.Background(), "", 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	query := (*requests)[0]
	if got := query.Get("page"); got != "1" {
		t.Errorf("expected page clamped to '1', got %q", got)
	}
	if got := query.Get("per_page"); got != "30" {
		t.Errorf("expected default per_page '30', got %q", got)
	}
	if query.Has("query") {
		t.Errorf("expected no query param for empty search, got %q", query.Get("query"))
	}
}

func TestClient_Search_APIError(t *testing.T) {
	client, _ := newTestClient(t, http.StatusTooManyRequests, `{"error": "rate limit exceeded"}`)

	_, _, err := client.Search(context.Background(), "fog", 1, 10)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := err.Error(); got != "Media3P API error: rate limit exceeded" {
		t.Errorf("unexpected error message: %q", got)
	}
}

func TestClient_FetchBatch(t *testing.T) {
	client, requests := newTestClient(t, http.StatusOK, searchResponse)

	items, next, err := client.FetchBatch(context.Background(), "", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if next != "tok-2" {
		t.Errorf("expected next token tok-2, got %q", next)
	}

	if _, _, err := client.FetchBatch(context.Background(), next, 25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := (*requests)[0]
	if first.Has("page_token") {
		t.Errorf("expected no page_token on first batch, got %q", first.Get("page_token"))
	}
	if got := first.Get("page_size"); got != "25" {
		t.Errorf("expected page_size '25', got %q", got)
	}
	second := (*requests)[1]
	if got := second.Get("page_token"); got != "tok-2" {
		t.Errorf("expected page_token 'tok-2', got %q", got)
	}
}
