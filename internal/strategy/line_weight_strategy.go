package strategy

import (
	"fmt"
	"image"
	"strings"

	"github.com/anime-shed/lineart-prep/internal/filter"
)

// Mode names a line-weight strategy.
type Mode string

const (
	// ModeClosing bridges gaps with a rectangular closing.
	ModeClosing Mode = "closing"
	// ModeThickening grows strokes with binary homotopic thickening.
	ModeThickening Mode = "thickening"
	// ModeThinning keeps only what successive openings strip away.
	ModeThinning Mode = "thinning"
)

const (
	DefaultClosingSize        = 5
	DefaultThickenIterations  = 1
	DefaultThinningSize       = 6
	DefaultThinningIterations = 3
)

// Modes lists every supported mode.
func Modes() []Mode {
	return []Mode{ModeClosing, ModeThickening, ModeThinning}
}

// ParseMode accepts a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes() {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported line-weight mode %q (want closing, thickening or thinning)", s)
}

// LineWeightStrategy changes stroke width on an inverted binary mask, where
// strokes are white on black.
type LineWeightStrategy interface {
	Apply(mask *image.Gray) (*image.Gray, error)
	GetStrategyName() string
	// StageName is the label the pipeline gives the stage's output.
	StageName() string
}

// ClosingStrategy applies a rectangular closing.
type ClosingStrategy struct {
	element filter.StructuringElement
}

// NewClosingStrategy creates a closing strategy with a size x size element.
func NewClosingStrategy(size int) (LineWeightStrategy, error) {
	se, err := filter.RectElement(size)
	if err != nil {
		return nil, err
	}
	return &ClosingStrategy{element: se}, nil
}

func (s *ClosingStrategy) Apply(mask *image.Gray) (*image.Gray, error) {
	return filter.Close(mask, s.element), nil
}

func (s *ClosingStrategy) GetStrategyName() string {
	return string(ModeClosing)
}

func (s *ClosingStrategy) StageName() string {
	return "closed"
}

// ThickeningStrategy applies binary thickening.
type ThickeningStrategy struct {
	iterations int
}

// NewThickeningStrategy creates a thickening strategy. iterations <= 0 runs
// until the mask stops changing.
func NewThickeningStrategy(iterations int) LineWeightStrategy {
	return &ThickeningStrategy{iterations: iterations}
}

func (s *ThickeningStrategy) Apply(mask *image.Gray) (*image.Gray, error) {
	return filter.Thicken(mask, s.iterations), nil
}

func (s *ThickeningStrategy) GetStrategyName() string {
	return string(ModeThickening)
}

func (s *ThickeningStrategy) StageName() string {
	return "thickened"
}

// ThinningStrategy applies erosion-based thinning.
type ThinningStrategy struct {
	element    filter.StructuringElement
	iterations int
}

// NewThinningStrategy creates a thinning strategy.
func NewThinningStrategy(size, iterations int) (LineWeightStrategy, error) {
	se, err := filter.RectElement(size)
	if err != nil {
		return nil, err
	}
	if iterations < 1 {
		return nil, fmt.Errorf("thinning iterations must be >= 1, got %d", iterations)
	}
	return &ThinningStrategy{element: se, iterations: iterations}, nil
}

func (s *ThinningStrategy) Apply(mask *image.Gray) (*image.Gray, error) {
	return filter.Thin(mask, s.element, s.iterations)
}

func (s *ThinningStrategy) GetStrategyName() string {
	return string(ModeThinning)
}

func (s *ThinningStrategy) StageName() string {
	return "thinned"
}

// NewStrategy builds the strategy for mode. seSize and iterations of zero
// select that mode's default; negative thickening iterations run to a fixed
// point.
func NewStrategy(mode Mode, seSize, iterations int) (LineWeightStrategy, error) {
	switch mode {
	case ModeClosing:
		if seSize == 0 {
			seSize = DefaultClosingSize
		}
		return NewClosingStrategy(seSize)
	case ModeThickening:
		if iterations == 0 {
			iterations = DefaultThickenIterations
		}
		return NewThickeningStrategy(iterations), nil
	case ModeThinning:
		if seSize == 0 {
			seSize = DefaultThinningSize
		}
		if iterations == 0 {
			iterations = DefaultThinningIterations
		}
		return NewThinningStrategy(seSize, iterations)
	default:
		return nil, fmt.Errorf("unsupported line-weight mode %q", mode)
	}
}
