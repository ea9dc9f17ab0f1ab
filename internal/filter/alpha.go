package filter

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ErrPlacementOutOfBounds is returned when an overlay would not fit inside
// its background.
var ErrPlacementOutOfBounds = errors.New("filter: placement outside background")

// AlphaRule decides which gray samples become opaque.
type AlphaRule int

const (
	// AlphaWhereBlack makes only pure black (0) opaque.
	AlphaWhereBlack AlphaRule = iota
	// AlphaWhereNonBlack makes every sample above 0 opaque.
	AlphaWhereNonBlack
)

func (r AlphaRule) opaque(v uint8) bool {
	if r == AlphaWhereNonBlack {
		return v > 0
	}
	return v == 0
}

// TransparentBackground expands src to NRGBA, copying the gray value into
// the colour channels and deriving alpha from rule.
func TransparentBackground(src *image.Gray, rule AlphaRule) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < b.Dx(); x++ {
			v := src.Pix[si+x]
			p := dst.Pix[di+4*x : di+4*x+4]
			p[0], p[1], p[2] = v, v, v
			if rule.opaque(v) {
				p[3] = 255
			}
		}
	}
	return dst
}

// CompositeAlpha returns an opaque NRGBA copy of bg in which the rectangle
// of mask's size placed at `at` takes mask as its alpha channel. Colours in
// that rectangle stay those of bg.
func CompositeAlpha(bg image.Image, mask *image.Gray, at image.Point) (*image.NRGBA, error) {
	bb := bg.Bounds()
	if isEmpty(bb) {
		return nil, ErrEmptyImage
	}

	rect := image.Rect(0, 0, bb.Dx(), bb.Dy())
	out := image.NewNRGBA(rect)
	draw.Draw(out, rect, bg, bb.Min, draw.Src)

	mb := mask.Bounds()
	place := image.Rectangle{Min: at, Max: at.Add(mb.Size())}
	if !place.In(rect) {
		return nil, fmt.Errorf("%w: %v does not fit in %v", ErrPlacementOutOfBounds, place, rect)
	}

	for y := 0; y < rect.Dy(); y++ {
		row := out.Pix[y*out.Stride:]
		for x := 0; x < rect.Dx(); x++ {
			row[4*x+3] = 255
		}
	}

	for y := 0; y < mb.Dy(); y++ {
		mi := mask.PixOffset(mb.Min.X, mb.Min.Y+y)
		oi := out.PixOffset(place.Min.X, place.Min.Y+y)
		for x := 0; x < mb.Dx(); x++ {
			out.Pix[oi+4*x+3] = mask.Pix[mi+x]
		}
	}
	return out, nil
}
