package filter

import "image"

// ring lists the 8-neighbourhood clockwise from the top-left corner, so a
// 45 degree clockwise rotation is a shift by one position.
var ring = [8]image.Point{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 0},
	{X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: 0},
}

// interval is a hit-or-miss template: hit offsets must be foreground and
// miss offsets background.
type interval struct {
	hit  []image.Point
	miss []image.Point
}

// thickInterval is the homotopic thickening template rotated rot*45 degrees
// clockwise. Unrotated: top row foreground, centre and bottom row background.
func thickInterval(rot int) interval {
	at := func(i int) image.Point { return ring[(i+rot)%8] }
	return interval{
		hit:  []image.Point{at(0), at(1), at(2)},
		miss: []image.Point{{}, at(4), at(5), at(6)},
	}
}

// Thicken grows the foreground (samples > 0) of a binary image. Each
// iteration applies the thickening template at eight rotations in turn,
// adding every hit to the image before the next rotation is tried.
// iterations <= 0 repeats until nothing changes. The result is 0/255.
func Thicken(src *image.Gray, iterations int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if isEmpty(b) {
		return dst
	}

	fg := make([]bool, w*h)
	for y := 0; y < h; y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			fg[y*w+x] = src.Pix[si+x] > 0
		}
	}

	limit := iterations
	if limit <= 0 {
		limit = w * h
	}

	for n := 0; n < limit; n++ {
		changed := false
		for rot := 0; rot < 8; rot++ {
			hits := hitOrMiss(fg, w, h, thickInterval(rot))
			for i, hit := range hits {
				if hit && !fg[i] {
					fg[i] = true
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	for i, on := range fg {
		if on {
			dst.Pix[(i/w)*dst.Stride+i%w] = 255
		}
	}
	return dst
}

// hitOrMiss marks every pixel whose neighbourhood matches iv. A neighbour
// outside the image satisfies both the hit and the miss set, as with
// erosions that ignore the border.
func hitOrMiss(fg []bool, w, h int, iv interval) []bool {
	at := func(x, y int, outside bool) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return outside
		}
		return fg[y*w+x]
	}

	out := make([]bool, len(fg))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			match := true
			for _, p := range iv.hit {
				if !at(x+p.X, y+p.Y, true) {
					match = false
					break
				}
			}
			if !match {
				continue
			}
			for _, p := range iv.miss {
				if at(x+p.X, y+p.Y, false) {
					match = false
					break
				}
			}
			out[y*w+x] = match
		}
	}
	return out
}
