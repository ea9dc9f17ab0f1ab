package repository

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/anime-shed/lineart-prep/internal/storage"
)

// RoutingImageRepository implements ImageRepository by dispatching each ref
// to the store that owns its scheme.
type RoutingImageRepository struct {
	local   storage.ImageStore
	fetcher storage.ImageFetcher
	blob    storage.ImageStore
}

// NewImageRepository creates a repository. fetcher and blob may be nil, in
// which case refs needing them fail with ErrStoreUnavailable.
func NewImageRepository(local storage.ImageStore, fetcher storage.ImageFetcher, blob storage.ImageStore) *RoutingImageRepository {
	return &RoutingImageRepository{
		local:   local,
		fetcher: fetcher,
		blob:    blob,
	}
}

// KindOf classifies a ref by its scheme.
func KindOf(ref string) RefKind {
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return KindHTTP
	case strings.HasPrefix(ref, storage.BlobScheme):
		return KindBlob
	default:
		return KindLocal
	}
}

// Load retrieves an image from the store owning ref
func (r *RoutingImageRepository) Load(ctx context.Context, ref string) (image.Image, error) {
	if err := r.ValidateRef(ref); err != nil {
		return nil, err
	}

	switch KindOf(ref) {
	case KindHTTP:
		return r.fetcher.FetchImage(ctx, ref)
	case KindBlob:
		return r.blob.GetImage(ctx, ref)
	default:
		return r.local.GetImage(ctx, ref)
	}
}

// Save writes img to ref. http(s) refs are read-only.
func (r *RoutingImageRepository) Save(ctx context.Context, ref string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: nil image for %s", ErrInvalidRef, ref)
	}

	switch KindOf(ref) {
	case KindHTTP:
		return fmt.Errorf("%w: %s", ErrReadOnlyRef, ref)
	case KindBlob:
		if r.blob == nil {
			return fmt.Errorf("%w: azure blob storage is not configured", ErrStoreUnavailable)
		}
		return r.blob.PutImage(ctx, ref, img)
	default:
		if ref == "" {
			return ErrInvalidRef
		}
		return r.local.PutImage(ctx, ref, img)
	}
}

// ValidateRef checks that ref is non-empty and its store is configured
func (r *RoutingImageRepository) ValidateRef(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return ErrInvalidRef
	}

	switch KindOf(ref) {
	case KindHTTP:
		if r.fetcher == nil {
			return fmt.Errorf("%w: http fetching is disabled", ErrStoreUnavailable)
		}
	case KindBlob:
		if r.blob == nil {
			return fmt.Errorf("%w: azure blob storage is not configured", ErrStoreUnavailable)
		}
		if _, _, err := storage.ParseBlobRef(ref); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRef, err)
		}
	default:
		if r.local == nil {
			return fmt.Errorf("%w: local storage is disabled", ErrStoreUnavailable)
		}
	}
	return nil
}
