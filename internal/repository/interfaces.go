package repository

import (
	"context"
	"image"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// Load retrieves the image addressed by ref
	Load(ctx context.Context, ref string) (image.Image, error)

	// Save writes img as PNG to ref
	Save(ctx context.Context, ref string, img image.Image) error

	// ValidateRef reports whether ref can be loaded by this repository
	ValidateRef(ref string) error
}

// RefKind names the backend a ref resolves to.
type RefKind string

const (
	KindLocal RefKind = "local"
	KindHTTP  RefKind = "http"
	KindBlob  RefKind = "azure"
)
