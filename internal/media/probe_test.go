package media

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func TestProbeDimensions(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 12, 8))); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}

	width, height, err := ProbeDimensions(buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if width != 12 || height != 8 {
		t.Errorf("expected 12x8, got %dx%d", width, height)
	}
}

func TestProbeDimensions_InvalidData(t *testing.T) {
	_, _, err := ProbeDimensions([]byte("not an image"))
	if err == nil {
		t.Error("expected error for non-image data")
	}
}

func TestExtensionForMime(t *testing.T) {
	tests := []struct {
		mimeType string
		expected string
	}{
		{"image/jpeg", "jpg"},
		{"image/png", "png"},
		{"image/gif", "gif"},
		{"image/webp", "webp"},
		{"video/mp4", "mp4"},
		{"application/pdf", "bin"},
		{"", "bin"},
	}

	for _, tt := range tests {
		if got := ExtensionForMime(tt.mimeType); got != tt.expected {
			t.Errorf("ExtensionForMime(%q) = %q, want %q", tt.mimeType, got, tt.expected)
		}
	}
}
