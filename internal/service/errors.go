package service

import (
	"context"
	"errors"

	apperrors "github.com/anime-shed/lineart-prep/internal/errors"
	"github.com/anime-shed/lineart-prep/internal/filter"
	"github.com/anime-shed/lineart-prep/internal/repository"
	"github.com/anime-shed/lineart-prep/internal/storage"
)

// loadError classifies a failure to read ref
func loadError(ref string, err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.NewTimeoutError("timed out loading "+ref, err)
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.NewNotFoundError("image not found: "+ref, err)
	case errors.Is(err, storage.ErrUndecodable):
		return apperrors.NewDecodeError("cannot decode "+ref, err)
	case errors.Is(err, repository.ErrInvalidRef),
		errors.Is(err, repository.ErrStoreUnavailable),
		errors.Is(err, storage.ErrInvalidRef):
		return apperrors.NewValidationError("cannot load "+ref, err)
	case repository.KindOf(ref) == repository.KindHTTP:
		return apperrors.NewNetworkError("failed to fetch "+ref, err)
	default:
		return apperrors.NewStorageError("failed to read "+ref, err)
	}
}

// saveError classifies a failure to write ref
func saveError(ref string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.NewTimeoutError("timed out writing "+ref, err)
	case errors.Is(err, repository.ErrReadOnlyRef),
		errors.Is(err, repository.ErrStoreUnavailable),
		errors.Is(err, repository.ErrInvalidRef),
		errors.Is(err, storage.ErrInvalidRef):
		return apperrors.NewValidationError("cannot write "+ref, err)
	default:
		return apperrors.NewStorageError("failed to write "+ref, err)
	}
}

// pipelineError classifies a failure inside Process or Embed
func pipelineError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.NewTimeoutError("pipeline did not finish in time", err)
	case errors.Is(err, filter.ErrPlacementOutOfBounds):
		return apperrors.NewProcessingError("line art does not fit on the background", err)
	case errors.Is(err, filter.ErrEmptyImage):
		return apperrors.NewDecodeError("image has no pixels", err)
	case errors.Is(err, filter.ErrInvalidSize):
		return apperrors.NewValidationError("invalid reference size", err)
	default:
		return apperrors.NewProcessingError("pipeline failed", err)
	}
}
