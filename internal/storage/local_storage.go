package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore reads and writes images on the local filesystem.
type LocalStore struct{}

// NewLocalStore creates a filesystem store.
func NewLocalStore() *LocalStore {
	return &LocalStore{}
}

func (s *LocalStore) GetImage(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	img, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// PutImage writes img as PNG, creating parent directories as needed. The
// destination only ever holds a complete file: encoding goes to a temp file
// in the same directory which is then renamed.
func (s *LocalStore) PutImage(ctx context.Context, path string, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".lineart-*.png")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := EncodePNG(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode png: %w", err)
	}
	// CreateTemp opens with 0600; outputs are ordinary readable files.
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
