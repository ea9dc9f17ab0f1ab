package filter

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// float32 machine epsilon; classes lighter than this are ignored.
const otsuEpsilon = 1.1920929e-07

var grayLevels = func() []float64 {
	levels := make([]float64, 256)
	for i := range levels {
		levels[i] = float64(i)
	}
	return levels
}()

// Histogram counts samples per gray level.
func Histogram(src *image.Gray) []float64 {
	hist := make([]float64, 256)
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := src.PixOffset(b.Min.X, y)
		for _, v := range src.Pix[i : i+b.Dx()] {
			hist[v]++
		}
	}
	return hist
}

// OtsuLevel returns the cutoff t that maximises the between-class variance
// of [0,t] against (t,255]. Ties keep the lowest t. A single-level image
// yields 0.
func OtsuLevel(src *image.Gray) uint8 {
	hist := Histogram(src)
	total := floats.Sum(hist)
	if total == 0 {
		return 0
	}

	mu := stat.Mean(grayLevels, hist)

	var q1, sum1, maxSigma float64
	level := 0
	for i, count := range hist {
		p := count / total
		q1 += p
		sum1 += float64(i) * p
		q2 := 1 - q1

		if math.Min(q1, q2) < otsuEpsilon || math.Max(q1, q2) > 1-otsuEpsilon {
			continue
		}

		mu1 := sum1 / q1
		mu2 := (mu - q1*mu1) / q2
		sigma := q1 * q2 * (mu1 - mu2) * (mu1 - mu2)
		if sigma > maxSigma {
			maxSigma = sigma
			level = i
		}
	}
	return uint8(level)
}

// Threshold maps samples above t to 255 and the rest to 0.
func Threshold(src *image.Gray, t uint8) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		si := src.PixOffset(b.Min.X, y)
		di := dst.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			if src.Pix[si+x] > t {
				dst.Pix[di+x] = 255
			}
		}
	}
	return dst
}

// OtsuThreshold binarises src at its Otsu level and returns that level.
func OtsuThreshold(src *image.Gray) (*image.Gray, uint8) {
	t := OtsuLevel(src)
	return Threshold(src, t), t
}
