package analyzer

// MetricsOptions tunes the metrics calculator
type MetricsOptions struct {
	// Pixels with alpha at or below InkAlphaMax count as ink
	InkAlphaMax uint8

	// Images smaller than this are measured on a single goroutine
	ParallelThreshold int

	// MaxWorkers caps the strip goroutines; 0 uses runtime.NumCPU()
	MaxWorkers int

	// SkipSharpness disables the alpha Laplacian pass
	SkipSharpness bool
}

// DefaultOptions returns default metrics options
func DefaultOptions() MetricsOptions {
	return MetricsOptions{
		InkAlphaMax:       0,
		ParallelThreshold: 100000,
		MaxWorkers:        0,
	}
}

// FastOptions skips the sharpness pass
func FastOptions() MetricsOptions {
	opts := DefaultOptions()
	opts.SkipSharpness = true
	return opts
}

// WithInkAlphaMax treats faint strokes up to alpha as ink
func (opts MetricsOptions) WithInkAlphaMax(alpha uint8) MetricsOptions {
	opts.InkAlphaMax = alpha
	return opts
}

// WithMaxWorkers caps the number of strip goroutines
func (opts MetricsOptions) WithMaxWorkers(n int) MetricsOptions {
	opts.MaxWorkers = n
	return opts
}
