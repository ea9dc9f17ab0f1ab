package analyzer

import (
	"github.com/anime-shed/lineart-prep/pkg/models"
)

// LineArtMetrics is an alias to the shared models.LineArtMetrics
type LineArtMetrics = models.LineArtMetrics

// stripTotals holds per-strip accumulators before they are merged
type stripTotals struct {
	transparent, opaque int
	lumas               []float64
}
