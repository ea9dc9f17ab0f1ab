package filter

import (
	"fmt"
	"image"
)

// StructuringElement is a filled rectangle with an anchor inside it.
type StructuringElement struct {
	Width, Height int
	Anchor        image.Point
}

// RectElement builds a size x size element anchored at (size/2, size/2).
func RectElement(size int) (StructuringElement, error) {
	if size < 1 {
		return StructuringElement{}, fmt.Errorf("filter: structuring element size must be >= 1, got %d", size)
	}
	return StructuringElement{
		Width:  size,
		Height: size,
		Anchor: image.Point{X: size / 2, Y: size / 2},
	}, nil
}

// Erode takes the minimum over the element footprint. Pixels outside the
// image do not take part.
func Erode(src *image.Gray, se StructuringElement) *image.Gray {
	return rankFilter(src, se, func(a, b uint8) uint8 { return min(a, b) })
}

// Dilate takes the maximum over the element footprint.
func Dilate(src *image.Gray, se StructuringElement) *image.Gray {
	return rankFilter(src, se, func(a, b uint8) uint8 { return max(a, b) })
}

// Open is erosion followed by dilation.
func Open(src *image.Gray, se StructuringElement) *image.Gray {
	return Dilate(Erode(src, se), se)
}

// Close is dilation followed by erosion. It bridges gaps narrower than the
// element, which is what keeps broken strokes printable.
func Close(src *image.Gray, se StructuringElement) *image.Gray {
	return Erode(Dilate(src, se), se)
}

// Thin accumulates, over the given number of erosions, the parts of each
// eroded image that an opening removes.
func Thin(src *image.Gray, se StructuringElement, iterations int) (*image.Gray, error) {
	b := src.Bounds()
	thin := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	cur := src

	for n := 0; n < iterations; n++ {
		eroded := Erode(cur, se)
		subset, err := Subtract(eroded, Open(eroded, se))
		if err != nil {
			return nil, err
		}
		if thin, err = Or(subset, thin); err != nil {
			return nil, err
		}
		cur = eroded
	}
	return thin, nil
}

// rankFilter runs a rectangular min/max as a row pass then a column pass.
func rankFilter(src *image.Gray, se StructuringElement, pick func(a, b uint8) uint8) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	rect := image.Rect(0, 0, w, h)
	if isEmpty(b) {
		return image.NewGray(rect)
	}

	rows := image.NewGray(rect)
	for y := 0; y < h; y++ {
		in := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		out := rows.Pix[y*rows.Stride:]
		for x := 0; x < w; x++ {
			lo := max(x-se.Anchor.X, 0)
			hi := min(x-se.Anchor.X+se.Width, w)
			v := in[lo]
			for i := lo + 1; i < hi; i++ {
				v = pick(v, in[i])
			}
			out[x] = v
		}
	}

	dst := image.NewGray(rect)
	stride := rows.Stride
	for y := 0; y < h; y++ {
		lo := max(y-se.Anchor.Y, 0)
		hi := min(y-se.Anchor.Y+se.Height, h)
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			v := rows.Pix[lo*stride+x]
			for j := lo + 1; j < hi; j++ {
				v = pick(v, rows.Pix[j*stride+x])
			}
			out[x] = v
		}
	}
	return dst
}
