package filter

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

var (
	// ErrEmptyImage is returned for images with a zero width or height.
	ErrEmptyImage = errors.New("filter: empty image")
	// ErrSizeMismatch is returned when two buffers must share dimensions and do not.
	ErrSizeMismatch = errors.New("filter: image sizes differ")
)

// ToGray converts img to 8-bit luma using the 0.299/0.587/0.114 weights of
// color.GrayModel. Transparent pixels are flattened onto white first, since
// line art with a cleared background is meant to be read as white paper.
// The result always has its origin at (0,0).
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	rect := image.Rect(0, 0, b.Dx(), b.Dy())
	dst := image.NewGray(rect)

	if g, ok := img.(*image.Gray); ok {
		draw.Draw(dst, rect, g, b.Min, draw.Src)
		return dst
	}

	flat := image.NewRGBA(rect)
	draw.Draw(flat, rect, image.White, image.Point{}, draw.Src)
	draw.Draw(flat, rect, img, b.Min, draw.Over)
	draw.Draw(dst, rect, flat, image.Point{}, draw.Src)
	return dst
}

// Invert returns 255-v for every sample.
func Invert(src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	w := b.Dx()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		si := src.PixOffset(b.Min.X, y)
		di := dst.PixOffset(b.Min.X, y)
		for x := 0; x < w; x++ {
			dst.Pix[di+x] = 255 - src.Pix[si+x]
		}
	}
	return dst
}

// InvertNRGBA inverts all four channels, alpha included.
func InvertNRGBA(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	n := 4 * b.Dx()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		si := src.PixOffset(b.Min.X, y)
		di := dst.PixOffset(b.Min.X, y)
		for i := 0; i < n; i++ {
			dst.Pix[di+i] = 255 - src.Pix[si+i]
		}
	}
	return dst
}

// GrayFromNRGBA takes the luma of the colour channels and drops alpha.
func GrayFromNRGBA(src *image.NRGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < b.Dx(); x++ {
			p := src.Pix[si+4*x:]
			r, g, bl := uint32(p[0]), uint32(p[1]), uint32(p[2])
			dst.Pix[di+x] = uint8((19595*r + 38470*g + 7471*bl + 1<<15) >> 16)
		}
	}
	return dst
}

// Or returns the per-sample maximum of a and b.
func Or(a, b *image.Gray) (*image.Gray, error) {
	return combine(a, b, func(x, y uint8) uint8 { return max(x, y) })
}

// Subtract returns a-b, saturating at zero.
func Subtract(a, b *image.Gray) (*image.Gray, error) {
	return combine(a, b, func(x, y uint8) uint8 {
		if y >= x {
			return 0
		}
		return x - y
	})
}

func combine(a, b *image.Gray, op func(x, y uint8) uint8) (*image.Gray, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return nil, ErrSizeMismatch
	}
	dst := image.NewGray(image.Rect(0, 0, ab.Dx(), ab.Dy()))
	for y := 0; y < ab.Dy(); y++ {
		ai := a.PixOffset(ab.Min.X, ab.Min.Y+y)
		bi := b.PixOffset(bb.Min.X, bb.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < ab.Dx(); x++ {
			dst.Pix[di+x] = op(a.Pix[ai+x], b.Pix[bi+x])
		}
	}
	return dst, nil
}

func isEmpty(r image.Rectangle) bool {
	return r.Dx() <= 0 || r.Dy() <= 0
}
