package pipeline

import (
	"image"

	"github.com/anime-shed/lineart-prep/internal/strategy"
)

// ProcessOptions configures the line-art cleanup pipeline.
type ProcessOptions struct {
	// Reference box for the larger image dimension
	MaxWidth  int
	MaxHeight int

	// Line-weight stage
	Mode       strategy.Mode
	SESize     int
	Iterations int

	// Stage inspection
	DisplayLevel int
	Inspector    StageInspector
}

// EmbedOptions configures compositing line art onto a background photo.
type EmbedOptions struct {
	MaxWidth  int
	MaxHeight int

	// Top-left corner of the line art on the background
	Left int
	Top  int

	// Extra directory level under output/, used to keep experiment runs apart
	Subdir string

	DisplayLevel int
	Inspector    StageInspector
}

// DefaultProcessOptions returns the settings used for printable line art.
func DefaultProcessOptions() ProcessOptions {
	return ProcessOptions{
		MaxWidth:  1600,
		MaxHeight: 1400,
		Mode:      strategy.ModeClosing,
		SESize:    strategy.DefaultClosingSize,
	}
}

// DefaultEmbedOptions returns the settings used for background previews.
func DefaultEmbedOptions() EmbedOptions {
	return EmbedOptions{
		MaxWidth:  1024,
		MaxHeight: 1024,
		Left:      1600,
		Top:       750,
	}
}

// WithMode switches the line-weight mode and resets SESize/Iterations to
// that mode's defaults.
func (o ProcessOptions) WithMode(mode strategy.Mode) ProcessOptions {
	o.Mode = mode
	o.SESize = 0
	o.Iterations = 0
	return o
}

// WithMaxSize sets the reference box.
func (o ProcessOptions) WithMaxSize(width, height int) ProcessOptions {
	o.MaxWidth = width
	o.MaxHeight = height
	return o
}

// WithInspector attaches a stage inspector at the given display level.
func (o ProcessOptions) WithInspector(level int, inspector StageInspector) ProcessOptions {
	o.DisplayLevel = level
	o.Inspector = inspector
	return o
}

// WithPlacement sets where the line art lands on the background.
func (o EmbedOptions) WithPlacement(left, top int) EmbedOptions {
	o.Left = left
	o.Top = top
	return o
}

// WithMaxSize sets the reference box.
func (o EmbedOptions) WithMaxSize(width, height int) EmbedOptions {
	o.MaxWidth = width
	o.MaxHeight = height
	return o
}

// WithInspector attaches a stage inspector at the given display level.
func (o EmbedOptions) WithInspector(level int, inspector StageInspector) EmbedOptions {
	o.DisplayLevel = level
	o.Inspector = inspector
	return o
}

// Placement returns the top-left corner as a point.
func (o EmbedOptions) Placement() image.Point {
	return image.Point{X: o.Left, Y: o.Top}
}
