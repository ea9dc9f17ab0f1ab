package validation

import (
	"github.com/anime-shed/lineart-prep/pkg/models"
)

// Issue severities
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// QualityThresholds defines configurable thresholds for output validation
type QualityThresholds struct {
	// Ink coverage above this usually means strokes merged into blobs
	MaxInkCoverage float64

	// Ink coverage below this (but non-zero) means only specks survived
	MinInkCoverage float64

	// Outputs smaller than this on either side are flagged
	MinWidth  int
	MinHeight int
}

// DefaultQualityThresholds returns the default quality thresholds
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		MaxInkCoverage: 0.5,
		MinInkCoverage: 0.0005,
		MinWidth:       64,
		MinHeight:      64,
	}
}

// QualityValidator checks pipeline outputs for signs of a bad threshold or
// line-weight setting
type QualityValidator struct {
	thresholds QualityThresholds
}

// NewQualityValidator creates a new quality validator with default thresholds
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		thresholds: DefaultQualityThresholds(),
	}
}

// NewQualityValidatorWithThresholds creates a quality validator with custom thresholds
func NewQualityValidatorWithThresholds(thresholds QualityThresholds) *QualityValidator {
	return &QualityValidator{
		thresholds: thresholds,
	}
}

// QualityIssue represents a quality validation issue
type QualityIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error", "warning", "info"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// ValidateOutput inspects the metrics of a finished line-art image
func (qv *QualityValidator) ValidateOutput(m models.LineArtMetrics) []QualityIssue {
	var issues []QualityIssue

	if m.Width == 0 || m.Height == 0 {
		return append(issues, QualityIssue{
			Type:     "empty_output",
			Message:  "Output image has no pixels.",
			Severity: SeverityError,
		})
	}

	// 1. Line work present at all
	switch {
	case m.InkCoverage == 0:
		issues = append(issues, QualityIssue{
			Type:     "no_strokes",
			Message:  "Output has no line work. The source may be blank or too light.",
			Severity: SeverityWarning,
		})
	case m.InkCoverage < qv.thresholds.MinInkCoverage:
		issues = append(issues, QualityIssue{
			Type:        "sparse_strokes",
			Message:     "Only a few specks of line work survived. Try the thickening mode.",
			Severity:    SeverityWarning,
			ActualValue: m.InkCoverage,
			Threshold:   qv.thresholds.MinInkCoverage,
		})
	case m.InkCoverage > qv.thresholds.MaxInkCoverage:
		issues = append(issues, QualityIssue{
			Type:        "ink_flooded",
			Message:     "Most of the output is ink. Strokes have likely merged; use a smaller structuring element.",
			Severity:    SeverityWarning,
			ActualValue: m.InkCoverage,
			Threshold:   qv.thresholds.MaxInkCoverage,
		})
	}

	// 2. Resolution
	if m.Width < qv.thresholds.MinWidth || m.Height < qv.thresholds.MinHeight {
		issues = append(issues, QualityIssue{
			Type:     "low_resolution",
			Message:  "Output is very small; fine strokes will not survive.",
			Severity: SeverityInfo,
		})
	}

	return issues
}

// ConvertIssuesToMessages converts quality issues to plain messages
func (qv *QualityValidator) ConvertIssuesToMessages(issues []QualityIssue) []string {
	var messages []string
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasCriticalIssues checks if there are any critical (error severity) issues
func (qv *QualityValidator) HasCriticalIssues(issues []QualityIssue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}
