package models

import "time"

// JobKind names the pipeline a job ran.
type JobKind string

const (
	JobProcess JobKind = "process"
	JobEmbed   JobKind = "embed"
)

// JobResult describes one finished (or failed) pipeline run
type JobResult struct {
	ID                string    `json:"id"`
	Kind              JobKind   `json:"kind"`
	InputRef          string    `json:"input_ref"`
	BackgroundRef     string    `json:"background_ref,omitempty"`
	OutputRef         string    `json:"output_ref,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`

	// Process only
	Mode      string `json:"mode,omitempty"`
	Threshold *uint8 `json:"otsu_threshold,omitempty"`

	// Embed only
	Placement *Point `json:"placement,omitempty"`

	Interpolation string          `json:"interpolation,omitempty"`
	Metrics       *LineArtMetrics `json:"metrics,omitempty"`
	Warnings      []string        `json:"warnings,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// Succeeded reports whether the job produced an output.
func (r *JobResult) Succeeded() bool {
	return r != nil && r.Error == ""
}

// Point is a pixel position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LineArtMetrics summarises a transparent line-art PNG
type LineArtMetrics struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Fraction of pixels that are fully transparent (the stroke cut-outs)
	InkCoverage float64 `json:"ink_coverage"`

	// Fraction of pixels that are fully opaque
	OpaqueCoverage float64 `json:"opaque_coverage"`

	// Luma statistics over non-transparent pixels, 0-255
	MeanLuma   float64 `json:"mean_luma"`
	LumaStdDev float64 `json:"luma_stddev"`

	// Laplacian variance of the alpha channel; higher means crisper edges
	EdgeSharpness float64 `json:"edge_sharpness"`
}
