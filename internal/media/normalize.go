// Package media normalizes third-party provider records into domain
// resources and probes asset dimensions.
package media

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ilmari/storydesk/internal/domain"
	"github.com/ilmari/storydesk/internal/provider"
)

var (
	// ErrUnsupportedType indicates the provider media type has no
	// normalization path (video is not implemented).
	ErrUnsupportedType = errors.New("unsupported media type")
	// ErrNoSizes indicates an image arrived without any size variants.
	ErrNoSizes = errors.New("media has no size variants")
)

// Normalize maps a raw provider media record to a domain resource.
// It is pure: deterministic for a given input, no side effects.
// The caller decides whether to skip the item or abort on error.
func Normalize(media provider.Media) (*domain.Resource, error) {
	switch media.Type {
	case provider.TypeImage:
		return normalizeImage(media)
	default:
		return nil, fmt.Errorf("media type %q: %w", media.Type, ErrUnsupportedType)
	}
}

func normalizeImage(media provider.Media) (*domain.Resource, error) {
	if len(media.Sizes) == 0 {
		return nil, fmt.Errorf("image %s: %w", media.ID, ErrNoSizes)
	}

	// Full asset is the variant with the strictly largest width; on equal
	// widths the earliest variant in provider order is kept.
	full := media.Sizes[0]
	for _, size := range media.Sizes[1:] {
		if size.Width > full.Width {
			full = size
		}
	}

	sizes := make(domain.SizeMap, len(media.Sizes))
	for _, size := range media.Sizes {
		sizes[size.Name] = domain.SizeVariant{
			File:      size.File,
			SourceURL: size.SourceURL,
			MimeType:  size.MimeType,
			Width:     size.Width,
			Height:    size.Height,
		}
	}

	mimeType := full.MimeType
	if mimeType == "" {
		mimeType = media.MimeType
	}

	res := &domain.Resource{
		ID:           resourceID(media.Provider, media.ID),
		Type:         domain.ResourceTypeImage,
		MimeType:     mimeType,
		Width:        full.Width,
		Height:       full.Height,
		SRC:          full.SourceURL,
		CreationDate: media.CreationDate,
		Title:        media.Title,
		Alt:          media.Alt,
		Sizes:        sizes,
		Provider:     media.Provider,
		ProviderID:   media.ID,
	}

	if media.Author != nil {
		res.Attribution = &domain.Attribution{
			Author: domain.Author{
				DisplayName: media.Author.DisplayName,
				URL:         media.Author.URL,
			},
		}
	}

	return res, nil
}

// resourceID derives a stable ID from the provider coordinates so repeated
// syncs of the same item always map to the same resource.
func resourceID(providerID, mediaID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(providerID+"/"+mediaID))
}
