package analyzer

import "image"

// MetricsCalculator summarises a pipeline output
type MetricsCalculator interface {
	Calculate(img image.Image) LineArtMetrics

	// AlphaLaplacianVariance measures how crisp the stroke edges are
	AlphaLaplacianVariance(img *image.NRGBA) float64
}
