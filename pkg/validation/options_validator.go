package validation

import (
	"fmt"

	apperrors "github.com/anime-shed/lineart-prep/internal/errors"
	"github.com/anime-shed/lineart-prep/internal/pipeline"
	"github.com/anime-shed/lineart-prep/internal/strategy"
)

// Upper bounds for user-supplied pipeline settings
const (
	MaxReferenceSide = 8192
	MaxSESize        = 64
	MaxIterations    = 64
	MaxPlacement     = 1 << 16
)

// ValidateProcessOptions rejects settings the cleanup pipeline cannot run with
func ValidateProcessOptions(opts pipeline.ProcessOptions) error {
	if err := validateReferenceBox(opts.MaxWidth, opts.MaxHeight); err != nil {
		return err
	}
	if _, err := strategy.ParseMode(string(opts.Mode)); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	if opts.SESize < 0 || opts.SESize > MaxSESize {
		return apperrors.NewValidationError(fmt.Sprintf("se_size must be between 1 and %d", MaxSESize), nil)
	}
	// Negative iterations mean "until stable" for thickening only
	if opts.Iterations < 0 && opts.Mode != strategy.ModeThickening {
		return apperrors.NewValidationError("negative iterations are only supported by thickening", nil)
	}
	if opts.Iterations > MaxIterations {
		return apperrors.NewValidationError(fmt.Sprintf("iterations must be at most %d", MaxIterations), nil)
	}
	if opts.DisplayLevel < 0 {
		return apperrors.NewValidationError("display level cannot be negative", nil)
	}
	return nil
}

// ValidateEmbedOptions rejects settings the compositing pipeline cannot run with
func ValidateEmbedOptions(opts pipeline.EmbedOptions) error {
	if err := validateReferenceBox(opts.MaxWidth, opts.MaxHeight); err != nil {
		return err
	}
	if opts.Left < 0 || opts.Top < 0 {
		return apperrors.NewValidationError("placement must not be negative", nil)
	}
	if opts.Left > MaxPlacement || opts.Top > MaxPlacement {
		return apperrors.NewValidationError(fmt.Sprintf("placement must be at most %d", MaxPlacement), nil)
	}
	if opts.DisplayLevel < 0 {
		return apperrors.NewValidationError("display level cannot be negative", nil)
	}
	return nil
}

func validateReferenceBox(width, height int) error {
	if width <= 0 || height <= 0 {
		return apperrors.NewValidationError(fmt.Sprintf("reference size must be positive, got %dx%d", width, height), nil)
	}
	if width > MaxReferenceSide || height > MaxReferenceSide {
		return apperrors.NewValidationError(fmt.Sprintf("reference size must be at most %d per side", MaxReferenceSide), nil)
	}
	return nil
}
