package analyzer

import (
	"image"
	"image/draw"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// metricsCalculator implements MetricsCalculator with Gonum statistics
type metricsCalculator struct {
	opts      MetricsOptions
	slicePool sync.Pool
}

// NewMetricsCalculator creates a new metrics calculator using Gonum
func NewMetricsCalculator(opts MetricsOptions) MetricsCalculator {
	return &metricsCalculator{
		opts: opts,
		slicePool: sync.Pool{
			New: func() interface{} {
				return make([]float64, 0, 1024)
			},
		},
	}
}

// Calculate measures coverage, luma and edge sharpness of a line-art image
func (mc *metricsCalculator) Calculate(img image.Image) LineArtMetrics {
	if img == nil {
		return LineArtMetrics{}
	}
	nrgba := toNRGBA(img)
	bounds := nrgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	// Handle empty images
	if width == 0 || height == 0 {
		return LineArtMetrics{}
	}

	totals := mc.collect(nrgba)

	pixelCount := float64(width * height)
	m := LineArtMetrics{
		Width:          width,
		Height:         height,
		InkCoverage:    float64(totals.transparent) / pixelCount,
		OpaqueCoverage: float64(totals.opaque) / pixelCount,
	}

	switch len(totals.lumas) {
	case 0:
	case 1:
		m.MeanLuma = totals.lumas[0]
	default:
		m.MeanLuma, m.LumaStdDev = stat.MeanStdDev(totals.lumas, nil)
	}

	if !mc.opts.SkipSharpness {
		m.EdgeSharpness = mc.AlphaLaplacianVariance(nrgba)
	}
	return m
}

// collect scans the image in horizontal strips, in parallel for large images
func (mc *metricsCalculator) collect(img *image.NRGBA) stripTotals {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width*height < mc.opts.ParallelThreshold {
		return mc.scanStrip(img, bounds.Min.Y, bounds.Max.Y)
	}

	numWorkers := mc.opts.MaxWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if height < numWorkers {
		numWorkers = height
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers // ceil division

	// Strips are merged in order so the luma sample is deterministic
	parts := make([]stripTotals, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		startY := bounds.Min.Y + i*rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > bounds.Max.Y {
			endY = bounds.Max.Y
		}
		if startY >= endY {
			continue
		}
		wg.Add(1)
		go func(i, startY, endY int) {
			defer wg.Done()
			parts[i] = mc.scanStrip(img, startY, endY)
		}(i, startY, endY)
	}
	wg.Wait()

	var total stripTotals
	total.lumas = make([]float64, 0, width*height)
	for _, p := range parts {
		total.transparent += p.transparent
		total.opaque += p.opaque
		total.lumas = append(total.lumas, p.lumas...)
	}
	return total
}

func (mc *metricsCalculator) scanStrip(img *image.NRGBA, startY, endY int) stripTotals {
	bounds := img.Bounds()
	t := stripTotals{lumas: make([]float64, 0, (endY-startY)*bounds.Dx())}

	for y := startY; y < endY; y++ {
		row := img.Pix[img.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			p := row[4*x : 4*x+4]
			a := p[3]
			if a <= mc.opts.InkAlphaMax {
				t.transparent++
				continue
			}
			if a == 0xff {
				t.opaque++
			}
			// Rec. 601 luma of the straight (non-premultiplied) colour
			t.lumas = append(t.lumas, 0.299*float64(p[0])+0.587*float64(p[1])+0.114*float64(p[2]))
		}
	}
	return t
}

// AlphaLaplacianVariance computes the variance of the Laplacian of the alpha channel
func (mc *metricsCalculator) AlphaLaplacianVariance(img *image.NRGBA) float64 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	// Get reusable slice from pool
	data := mc.slicePool.Get().([]float64)
	defer func() { mc.slicePool.Put(data[:0]) }()

	// Ensure capacity for all Laplacian values
	if n := (width - 2) * (height - 2); cap(data) < n {
		data = make([]float64, 0, n)
	}

	alpha := func(x, y int) float64 {
		return float64(img.Pix[img.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)+3])
	}

	// Laplacian kernel: [0, 1, 0; 1, -4, 1; 0, 1, 0]
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			laplacian := -4*alpha(x, y) + alpha(x, y-1) + alpha(x, y+1) + alpha(x-1, y) + alpha(x+1, y)
			data = append(data, laplacian)
		}
	}

	v := stat.Variance(data, nil)
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	bounds := img.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
	return dst
}
