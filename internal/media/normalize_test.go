package media

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ilmari/storydesk/internal/domain"
	"github.com/ilmari/storydesk/internal/provider"
)

func imageMedia(sizes ...provider.Size) provider.Media {
	return provider.Media{
		ID:       "m-1",
		Provider: "media3p",
		Type:     provider.TypeImage,
		MimeType: "image/jpeg",
		URL:      "https://cdn.example/m-1",
		Title:    "Sunrise",
		Alt:      "A sunrise over hills",
		Sizes:    sizes,
	}
}

func TestNormalize_FullAssetLargestWidth(t *testing.T) {
	media := imageMedia(
		provider.Size{Name: "thumbnail", File: "m-1-thumb", SourceURL: "https://cdn.example/m-1/100", MimeType: "image/jpeg", Width: 100, Height: 67},
		provider.Size{Name: "large", File: "m-1-large", SourceURL: "https://cdn.example/m-1/300", MimeType: "image/jpeg", Width: 300, Height: 200},
		provider.Size{Name: "medium", File: "m-1-med", SourceURL: "https://cdn.example/m-1/200", MimeType: "image/jpeg", Width: 200, Height: 133},
	)

	res, err := Normalize(media)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Width != 300 {
		t.Errorf("expected full asset width 300, got %d", res.Width)
	}
	if res.Height != 200 {
		t.Errorf("expected full asset height 200, got %d", res.Height)
	}
	if res.SRC != "https://cdn.example/m-1/300" {
		t.Errorf("expected SRC of the 300-width variant, got %q", res.SRC)
	}
	if res.Type != domain.ResourceTypeImage {
		t.Errorf("expected image type, got %s", res.Type)
	}
}

func TestNormalize_FullAssetTieKeepsFirst(t *testing.T) {
	media := imageMedia(
		provider.Size{Name: "a", SourceURL: "https://cdn.example/m-1/a", Width: 300, Height: 200},
		provider.Size{Name: "b", SourceURL: "https://cdn.example/m-1/b", Width: 300, Height: 200},
	)

	res, err := Normalize(media)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.SRC != "https://cdn.example/m-1/a" {
		t.Errorf("expected the earliest variant to win the tie, got %q", res.SRC)
	}
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		media   provider.Media
		wantErr error
	}{
		{
			name:    "image without size variants",
			media:   imageMedia(),
			wantErr: ErrNoSizes,
		},
		{
			name: "video is unimplemented",
			media: provider.Media{
				ID:       "v-1",
				Provider: "media3p",
				Type:     provider.TypeVideo,
				Sizes:    []provider.Size{{Name: "full", Width: 1920, Height: 1080}},
			},
			wantErr: ErrUnsupportedType,
		},
		{
			name: "unknown media type",
			media: provider.Media{
				ID:       "x-1",
				Provider: "media3p",
				Type:     "audio",
			},
			wantErr: ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Normalize(tt.media)
			if res != nil {
				t.Errorf("expected nil resource, got %+v", res)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNormalize_Attribution(t *testing.T) {
	withAuthor := imageMedia(provider.Size{Name: "full", SourceURL: "https://cdn.example/m-1/full", Width: 640, Height: 480})
	withAuthor.Author = &provider.Author{DisplayName: "Ada Example", URL: "https://media3p.example/ada"}

	res, err := Normalize(withAuthor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Attribution == nil {
		t.Fatal("expected attribution when author is present")
	}
	if res.Attribution.Author.DisplayName != "Ada Example" {
		t.Errorf("expected author display name, got %q", res.Attribution.Author.DisplayName)
	}
	if res.Attribution.Author.URL != "https://media3p.example/ada" {
		t.Errorf("expected author URL, got %q", res.Attribution.Author.URL)
	}

	withoutAuthor := imageMedia(provider.Size{Name: "full", SourceURL: "https://cdn.example/m-1/full", Width: 640, Height: 480})

	res, err = Normalize(withoutAuthor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Attribution != nil {
		t.Errorf("expected no attribution when author is absent, got %+v", res.Attribution)
	}
}

func TestNormalize_SizesMap(t *testing.T) {
	media := imageMedia(
		provider.Size{Name: "thumbnail", File: "f-thumb", SourceURL: "https://cdn.example/m-1/t", MimeType: "image/jpeg", Width: 150, Height: 100},
		provider.Size{Name: "full", File: "f-full", SourceURL: "https://cdn.example/m-1/f", MimeType: "image/jpeg", Width: 640, Height: 427},
	)

	res, err := Normalize(media)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.SizeMap{
		"thumbnail": {File: "f-thumb", SourceURL: "https://cdn.example/m-1/t", MimeType: "image/jpeg", Width: 150, Height: 100},
		"full":      {File: "f-full", SourceURL: "https://cdn.example/m-1/f", MimeType: "image/jpeg", Width: 640, Height: 427},
	}
	if diff := cmp.Diff(want, res.Sizes); diff != "" {
		t.Errorf("sizes map mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	media := imageMedia(provider.Size{Name: "full", SourceURL: "https://cdn.example/m-1/full", Width: 640, Height: 480})

	first, err := Normalize(media)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Normalize(media)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected stable resource ID, got %s and %s", first.ID, second.ID)
	}

	other := media
	other.ID = "m-2"
	third, err := Normalize(other)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third.ID == first.ID {
		t.Error("expected distinct provider items to map to distinct resource IDs")
	}
}
