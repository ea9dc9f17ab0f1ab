package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	JobID   string `json:"job_id,omitempty"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Azure     bool   `json:"azure_enabled"`
}

// MetricsResponse is returned by GET /metrics
type MetricsResponse struct {
	TotalJobs       int64            `json:"total_jobs"`
	SuccessfulJobs  int64            `json:"successful_jobs"`
	FailedJobs      int64            `json:"failed_jobs"`
	JobsByKind      map[string]int64 `json:"jobs_by_kind"`
	AvgDurationSec  float64          `json:"avg_duration_sec"`
	ImagesLoaded    int64            `json:"images_loaded"`
	ImageLoadErrors int64            `json:"image_load_errors"`
}

// BatchResponse lists per-input results in input order
type BatchResponse struct {
	Results   []JobResult `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}
