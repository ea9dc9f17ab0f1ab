package pipeline

import (
	"context"
	"fmt"
	"image"

	"github.com/anime-shed/lineart-prep/internal/filter"
	"github.com/anime-shed/lineart-prep/internal/strategy"
)

// ProcessResult is the output of Process.
type ProcessResult struct {
	Image         *image.NRGBA
	Threshold     uint8
	Interpolation filter.Interpolation
	Strategy      string
}

// EmbedResult is the output of Embed.
type EmbedResult struct {
	Image         *image.NRGBA
	Placement     image.Rectangle
	Interpolation filter.Interpolation
}

// Process turns scanned or drawn line art into a printable stencil: a white
// sheet whose strokes are transparent. Stages run in order: resize, Otsu
// binarisation, inversion, line-weight strategy, inversion, alpha mask.
func Process(ctx context.Context, src image.Image, opts ProcessOptions) (*ProcessResult, error) {
	if src == nil {
		return nil, fmt.Errorf("nil image provided")
	}
	lw, err := strategy.NewStrategy(opts.Mode, opts.SESize, opts.Iterations)
	if err != nil {
		return nil, err
	}
	rec := stageRecorder{level: opts.DisplayLevel, levels: processLevels, inspector: opts.Inspector}

	// Stencils are always resampled with the area kernel, even when enlarged.
	interp := filter.InterArea
	gray := filter.ToGray(src)
	resized, err := filter.ResizeByLargerDimWith(gray, opts.MaxWidth, opts.MaxHeight, interp)
	if err != nil {
		return nil, fmt.Errorf("resize: %w", err)
	}
	rec.record(StageResized, resized)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	binary, level := filter.OtsuThreshold(resized)
	rec.record(StageThresholded, binary)

	strokes := filter.Invert(binary)
	rec.record(StageInverted, strokes)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	weighted, err := lw.Apply(strokes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", lw.GetStrategyName(), err)
	}
	rec.record(lw.StageName(), weighted)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sheet := filter.Invert(weighted)
	rec.record(StageReinverted, sheet)

	out := filter.TransparentBackground(sheet, filter.AlphaWhereNonBlack)
	rec.record(StageTransparent, out)

	return &ProcessResult{
		Image:         out,
		Threshold:     level,
		Interpolation: interp,
		Strategy:      lw.GetStrategyName(),
	}, nil
}

// Embed places line art on a background photo. The line art's gray level
// becomes the alpha of the background inside the placement rectangle, so
// dark strokes turn into see-through cut-outs while the rest of the photo
// stays opaque.
func Embed(ctx context.Context, src, bg image.Image, opts EmbedOptions) (*EmbedResult, error) {
	if src == nil || bg == nil {
		return nil, fmt.Errorf("nil image provided")
	}
	rec := stageRecorder{level: opts.DisplayLevel, levels: embedLevels, inspector: opts.Inspector}

	gray := filter.ToGray(src)
	rec.record(StageInput, gray)

	resized, interp, err := filter.ResizeByLargerDim(gray, opts.MaxWidth, opts.MaxHeight)
	if err != nil {
		return nil, fmt.Errorf("resize: %w", err)
	}
	rec.record(StageResized, resized)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inverted := filter.Invert(resized)
	rec.record(StageInverted, inverted)

	masked := filter.TransparentBackground(inverted, filter.AlphaWhereBlack)
	rec.record(StageTransparent, masked)

	restored := filter.InvertNRGBA(masked)
	rec.record(StageReinverted, restored)

	cut := filter.GrayFromNRGBA(restored)
	rec.record(StageCut, cut)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := filter.CompositeAlpha(bg, cut, opts.Placement())
	if err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}
	place := image.Rectangle{Min: opts.Placement(), Max: opts.Placement().Add(cut.Bounds().Size())}
	rec.record(StageCropped, out.SubImage(place))
	rec.record(StageComposite, out)

	return &EmbedResult{
		Image:         out,
		Placement:     place,
		Interpolation: interp,
	}, nil
}
