package analyzer

import (
	"image"
	"time"

	"github.com/anime-shed/lineart-prep/pkg/validation"
)

// AnalysisReport couples an output's metrics with the quality issues found
type AnalysisReport struct {
	Metrics  LineArtMetrics
	Issues   []validation.QualityIssue
	Duration time.Duration
}

// Messages returns the issue messages in order.
func (r AnalysisReport) Messages() []string {
	messages := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// LineArtAnalyzer measures a finished image and runs quality checks on it
type LineArtAnalyzer interface {
	Analyze(img image.Image) AnalysisReport
}

// coreAnalyzer orchestrates the metrics calculator and quality validator
type coreAnalyzer struct {
	metricsCalculator MetricsCalculator
	qualityValidator  *validation.QualityValidator
}

// NewLineArtAnalyzer creates an analyzer with default thresholds
func NewLineArtAnalyzer(opts MetricsOptions) LineArtAnalyzer {
	return NewLineArtAnalyzerWith(NewMetricsCalculator(opts), validation.NewQualityValidator())
}

// NewLineArtAnalyzerWith creates an analyzer from explicit components
func NewLineArtAnalyzerWith(calc MetricsCalculator, validator *validation.QualityValidator) LineArtAnalyzer {
	return &coreAnalyzer{
		metricsCalculator: calc,
		qualityValidator:  validator,
	}
}

// Analyze computes metrics then validates them
func (ca *coreAnalyzer) Analyze(img image.Image) AnalysisReport {
	start := time.Now()

	metrics := ca.metricsCalculator.Calculate(img)
	issues := ca.qualityValidator.ValidateOutput(metrics)

	return AnalysisReport{
		Metrics:  metrics,
		Issues:   issues,
		Duration: time.Since(start),
	}
}
