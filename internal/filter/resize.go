package filter

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

// ErrInvalidSize is returned for non-positive target dimensions.
var ErrInvalidSize = errors.New("filter: target size must be positive")

// Interpolation selects the resampling kernel.
type Interpolation int

const (
	// InterArea averages the source pixels under each destination pixel. On
	// enlargement it picks the nearest source pixel.
	InterArea Interpolation = iota
	// InterCubic is used for enlarging (Catmull-Rom).
	InterCubic
)

func (i Interpolation) String() string {
	switch i {
	case InterCubic:
		return "cubic"
	default:
		return "area"
	}
}

// areaKernel is a box filter. x/image widens kernel support by the scale
// factor when shrinking, so integer factors give exact block averages.
var areaKernel = &draw.Kernel{Support: 0.5, At: func(float64) float64 { return 1 }}

func (i Interpolation) scaler() draw.Scaler {
	if i == InterCubic {
		return draw.CatmullRom
	}
	return areaKernel
}

// Resize scales src to exactly width x height.
func Resize(src *image.Gray, width, height int, interp Interpolation) (*image.Gray, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}
	sb := src.Bounds()
	if isEmpty(sb) {
		return nil, ErrEmptyImage
	}

	dst := image.NewGray(image.Rect(0, 0, width, height))
	if sb.Dx() == width && sb.Dy() == height {
		draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Src)
		return dst, nil
	}

	interp.scaler().Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	return dst, nil
}

// TargetSize computes the aspect-preserving size that fits the larger
// dimension to its reference. Landscape and square inputs are driven by
// wRef, portrait inputs by hRef. Shrinking picks InterArea, anything else
// InterCubic.
func TargetSize(w, h, wRef, hRef int) (int, int, Interpolation) {
	var width, height int
	interp := InterCubic

	if w >= h {
		width = wRef
		height = int(float64(h) * (float64(wRef) / float64(w)))
		if w > wRef {
			interp = InterArea
		}
	} else {
		height = hRef
		width = int(float64(w) * (float64(hRef) / float64(h)))
		if h > hRef {
			interp = InterArea
		}
	}

	return max(width, 1), max(height, 1), interp
}

// ResizeByLargerDim resizes src with TargetSize and reports the kernel used.
func ResizeByLargerDim(src *image.Gray, wRef, hRef int) (*image.Gray, Interpolation, error) {
	return resizeByLargerDim(src, wRef, hRef, nil)
}

// ResizeByLargerDimWith resizes src to the TargetSize dimensions but always
// samples with interp.
func ResizeByLargerDimWith(src *image.Gray, wRef, hRef int, interp Interpolation) (*image.Gray, error) {
	dst, _, err := resizeByLargerDim(src, wRef, hRef, &interp)
	return dst, err
}

func resizeByLargerDim(src *image.Gray, wRef, hRef int, force *Interpolation) (*image.Gray, Interpolation, error) {
	if wRef <= 0 || hRef <= 0 {
		return nil, InterArea, ErrInvalidSize
	}
	b := src.Bounds()
	if isEmpty(b) {
		return nil, InterArea, ErrEmptyImage
	}

	width, height, interp := TargetSize(b.Dx(), b.Dy(), wRef, hRef)
	if force != nil {
		interp = *force
	}
	dst, err := Resize(src, width, height, interp)
	return dst, interp, err
}
