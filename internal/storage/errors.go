package storage

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrNotFound is returned when the referenced image does not exist.
	ErrNotFound = errors.New("image not found")

	// ErrInvalidRef is returned for refs a store cannot address.
	ErrInvalidRef = errors.New("invalid image reference")

	// ErrUndecodable wraps every failure to turn bytes into an image.
	ErrUndecodable = errors.New("undecodable image")
)

// ImageFetcher reads images over the network.
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)
}

// ImageStore reads and writes images addressed by a ref.
type ImageStore interface {
	GetImage(ctx context.Context, ref string) (image.Image, error)
	PutImage(ctx context.Context, ref string, img image.Image) error
}
