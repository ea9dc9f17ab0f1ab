package filter

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grayFromRows builds a gray image from literal rows.
func grayFromRows(rows ...[]uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, len(rows[0]), len(rows)))
	for y, row := range rows {
		copy(img.Pix[y*img.Stride:], row)
	}
	return img
}

func uniformGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func countValue(img *image.Gray, v uint8) int {
	n := 0
	for _, p := range img.Pix {
		if p == v {
			n++
		}
	}
	return n
}

func TestToGray_FlattensTransparencyOntoWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 12, 11))
	src.SetNRGBA(10, 10, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(11, 10, color.NRGBA{R: 12, G: 34, B: 56, A: 0})

	gray := ToGray(src)

	assert.Equal(t, image.Rect(0, 0, 2, 1), gray.Bounds())
	assert.Equal(t, uint8(76), gray.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), gray.GrayAt(1, 0).Y)
}

func TestToGray_SubImageOfGray(t *testing.T) {
	src := grayFromRows(
		[]uint8{1, 2, 3},
		[]uint8{4, 5, 6},
	)
	sub := src.SubImage(image.Rect(1, 0, 3, 2)).(*image.Gray)

	gray := ToGray(sub)

	assert.Equal(t, []uint8{2, 3, 5, 6}, gray.Pix)
}

func TestInvert(t *testing.T) {
	src := grayFromRows([]uint8{0, 30, 255})
	inv := Invert(src)

	assert.Equal(t, []uint8{255, 225, 0}, inv.Pix)
	assert.Equal(t, src.Pix, Invert(inv).Pix)
	assert.Equal(t, []uint8{0, 30, 255}, src.Pix, "input must not change")
}

func TestInvertNRGBA_IncludesAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	inv := InvertNRGBA(src)

	assert.Equal(t, color.NRGBA{R: 245, G: 235, B: 225, A: 0}, inv.NRGBAAt(0, 0))
}

func TestGrayFromNRGBA_IgnoresAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 17, G: 17, B: 17, A: 0})
	src.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 3})

	gray := GrayFromNRGBA(src)

	assert.Equal(t, []uint8{17, 255}, gray.Pix)
}

func TestOrAndSubtract(t *testing.T) {
	a := grayFromRows([]uint8{10, 200, 0})
	b := grayFromRows([]uint8{20, 50, 0})

	or, err := Or(a, b)
	require.NoError(t, err)
	assert.Equal(t, []uint8{20, 200, 0}, or.Pix)

	sub, err := Subtract(a, b)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 150, 0}, sub.Pix)

	_, err = Or(a, uniformGray(2, 1, 0))
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestTargetSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wRef, hRef   int
		wantW, wantH int
		wantInterp   Interpolation
	}{
		{"landscape shrink", 2000, 1000, 1600, 1400, 1600, 800, InterArea},
		{"portrait shrink", 1000, 2000, 1600, 1400, 700, 1400, InterArea},
		{"landscape enlarge", 800, 400, 1600, 1400, 1600, 800, InterCubic},
		{"portrait enlarge", 300, 700, 1024, 1024, 438, 1024, InterCubic},
		{"square uses width", 1600, 1600, 1600, 1400, 1600, 1600, InterCubic},
		{"truncates", 1000, 3, 1024, 1024, 1024, 3, InterCubic},
		{"clamps to one", 5000, 1, 1024, 1024, 1024, 1, InterArea},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, interp := TargetSize(tt.w, tt.h, tt.wRef, tt.hRef)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
			assert.Equal(t, tt.wantInterp, interp)
		})
	}
}

func TestResizeByLargerDim(t *testing.T) {
	src := uniformGray(40, 20, 90)

	dst, interp, err := ResizeByLargerDim(src, 20, 100)
	require.NoError(t, err)

	assert.Equal(t, InterArea, interp)
	assert.Equal(t, image.Rect(0, 0, 20, 10), dst.Bounds())
	for _, v := range dst.Pix {
		assert.InDelta(t, 90, int(v), 1)
	}

	up, interp, err := ResizeByLargerDim(uniformGray(10, 10, 200), 25, 25)
	require.NoError(t, err)
	assert.Equal(t, InterCubic, interp)
	assert.Equal(t, image.Rect(0, 0, 25, 25), up.Bounds())
	for _, v := range up.Pix {
		assert.InDelta(t, 200, int(v), 1)
	}
}

func TestResize_AreaAveragesBlocks(t *testing.T) {
	src := grayFromRows(
		[]uint8{10, 20, 0, 0},
		[]uint8{30, 40, 0, 200},
		[]uint8{100, 100, 200, 200},
		[]uint8{100, 100, 200, 200},
	)

	dst, err := Resize(src, 2, 2, InterArea)
	require.NoError(t, err)
	assert.Equal(t, []uint8{25, 50, 100, 200}, dst.Pix)
}

func TestResize_AreaKeepsStrokeInItsBlock(t *testing.T) {
	src := uniformGray(8, 8, 0)
	for y := 0; y < 8; y++ {
		src.SetGray(0, y, color.Gray{Y: 200})
	}

	dst, err := Resize(src, 4, 4, InterArea)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		assert.Equal(t, uint8(100), dst.GrayAt(0, y).Y, "row %d", y)
		for x := 1; x < 4; x++ {
			assert.Equal(t, uint8(0), dst.GrayAt(x, y).Y, "pixel (%d,%d)", x, y)
		}
	}
}

func TestResizeByLargerDimWith(t *testing.T) {
	src := grayFromRows([]uint8{0, 255}, []uint8{255, 0})

	dst, err := ResizeByLargerDimWith(src, 4, 4, InterArea)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), dst.Bounds())
	for _, v := range dst.Pix {
		assert.Contains(t, []uint8{0, 255}, v)
	}
	assert.Equal(t, uint8(0), dst.GrayAt(1, 1).Y)
	assert.Equal(t, uint8(255), dst.GrayAt(2, 1).Y)

	_, err = ResizeByLargerDimWith(src, 0, 4, InterArea)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestResize_Errors(t *testing.T) {
	_, err := Resize(uniformGray(4, 4, 0), 0, 3, InterArea)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = Resize(image.NewGray(image.Rect(0, 0, 0, 3)), 2, 2, InterArea)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, _, err = ResizeByLargerDim(uniformGray(4, 4, 0), -1, 10)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestResize_SameSizeCopies(t *testing.T) {
	src := grayFromRows([]uint8{1, 2}, []uint8{3, 4})
	dst, err := Resize(src, 2, 2, InterCubic)
	require.NoError(t, err)

	assert.Equal(t, src.Pix, dst.Pix)
	dst.Pix[0] = 99
	assert.Equal(t, uint8(1), src.Pix[0])
}

func TestOtsuLevel_Bimodal(t *testing.T) {
	src := uniformGray(10, 10, 220)
	for x := 0; x < 10; x++ {
		src.SetGray(x, 4, color.Gray{Y: 30})
		src.SetGray(x, 5, color.Gray{Y: 30})
	}

	binary, level := OtsuThreshold(src)

	assert.Equal(t, uint8(30), level)
	assert.Equal(t, 20, countValue(binary, 0))
	assert.Equal(t, 80, countValue(binary, 255))
	assert.Equal(t, uint8(0), binary.GrayAt(3, 4).Y)
}

func TestOtsuLevel_SplitsBetweenClusters(t *testing.T) {
	src := grayFromRows([]uint8{10, 12, 14, 200, 202, 204})
	level := OtsuLevel(src)

	assert.GreaterOrEqual(t, level, uint8(14))
	assert.Less(t, level, uint8(200))
}

func TestOtsuLevel_Uniform(t *testing.T) {
	assert.Equal(t, uint8(0), OtsuLevel(uniformGray(5, 5, 128)))
	assert.Equal(t, uint8(0), OtsuLevel(image.NewGray(image.Rect(0, 0, 0, 0))))
}

func TestThreshold_StrictlyGreater(t *testing.T) {
	src := grayFromRows([]uint8{99, 100, 101})
	assert.Equal(t, []uint8{0, 0, 255}, Threshold(src, 100).Pix)
}

func TestRectElement(t *testing.T) {
	se, err := RectElement(5)
	require.NoError(t, err)
	assert.Equal(t, image.Point{X: 2, Y: 2}, se.Anchor)

	se, err = RectElement(6)
	require.NoError(t, err)
	assert.Equal(t, image.Point{X: 3, Y: 3}, se.Anchor)

	_, err = RectElement(0)
	assert.Error(t, err)
}

func TestErodeDilate_SinglePixel(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 7, 7))
	src.SetGray(3, 3, color.Gray{Y: 255})
	se, _ := RectElement(3)

	assert.Equal(t, 0, countValue(Erode(src, se), 255))

	dilated := Dilate(src, se)
	assert.Equal(t, 9, countValue(dilated, 255))
	assert.Equal(t, uint8(255), dilated.GrayAt(2, 2).Y)
	assert.Equal(t, uint8(255), dilated.GrayAt(4, 4).Y)
	assert.Equal(t, uint8(0), dilated.GrayAt(5, 3).Y)
}

func TestErode_IgnoresOutsidePixels(t *testing.T) {
	src := uniformGray(4, 4, 255)
	se, _ := RectElement(3)

	assert.Equal(t, 16, countValue(Erode(src, se), 255))
}

func TestClose_BridgesGap(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 7, 7))
	for _, x := range []int{0, 1, 2, 4, 5, 6} {
		src.SetGray(x, 3, color.Gray{Y: 255})
	}
	se, _ := RectElement(3)

	closed := Close(src, se)

	for x := 0; x < 7; x++ {
		assert.Equal(t, uint8(255), closed.GrayAt(x, 3).Y, "x=%d", x)
	}
	assert.Equal(t, 7, countValue(closed, 255))
}

func TestOpen_RemovesSpeckKeepsBlock(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 9, 9))
	src.SetGray(0, 8, color.Gray{Y: 255})
	for y := 2; y < 5; y++ {
		for x := 2; x < 5; x++ {
			src.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	se, _ := RectElement(3)

	opened := Open(src, se)

	assert.Equal(t, uint8(0), opened.GrayAt(0, 8).Y)
	assert.Equal(t, 9, countValue(opened, 255))
}

func TestThin_CollapsesBlockToCentre(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 15, 15))
	for y := 3; y < 12; y++ {
		for x := 3; x < 12; x++ {
			src.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	se, _ := RectElement(3)

	thin, err := Thin(src, se, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, countValue(thin, 255))

	thin, err = Thin(src, se, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, countValue(thin, 255))
	assert.Equal(t, uint8(255), thin.GrayAt(7, 7).Y)
}

func TestThicken_GrowsBelowLine(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 5, 5))
	for x := 0; x < 5; x++ {
		src.SetGray(x, 1, color.Gray{Y: 255})
	}

	out := Thicken(src, 1)

	for x := 0; x < 5; x++ {
		assert.Equal(t, uint8(255), out.GrayAt(x, 1).Y, "line pixel %d kept", x)
	}
	for x := 1; x <= 3; x++ {
		assert.Equal(t, uint8(255), out.GrayAt(x, 2).Y, "pixel (%d,2) added", x)
	}
	assert.Equal(t, len(out.Pix), countValue(out, 0)+countValue(out, 255), "output is binary")
}

func TestThicken_IsMonotone(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 12, 12))
	for x := 2; x < 10; x++ {
		src.SetGray(x, 5, color.Gray{Y: 180})
	}

	once := Thicken(src, 1)
	full := Thicken(src, 0)

	for i := range src.Pix {
		if src.Pix[i] > 0 {
			assert.Equal(t, uint8(255), once.Pix[i])
		}
		if once.Pix[i] > 0 {
			assert.Equal(t, uint8(255), full.Pix[i])
		}
	}
	assert.Greater(t, countValue(once, 255), 8)
	assert.GreaterOrEqual(t, countValue(full, 255), countValue(once, 255))
}

func TestThicken_FullImageIsFixed(t *testing.T) {
	assert.Equal(t, 36, countValue(Thicken(uniformGray(6, 6, 9), 0), 255))
}

// Neighbours outside the image satisfy both the hit and the miss set.
func TestThicken_BorderNeighbours(t *testing.T) {
	render := func(img *image.Gray) []string {
		var rows []string
		for y := 0; y < img.Bounds().Dy(); y++ {
			row := make([]byte, img.Bounds().Dx())
			for x := range row {
				row[x] = '.'
				if img.GrayAt(x, y).Y > 0 {
					row[x] = '#'
				}
			}
			rows = append(rows, string(row))
		}
		return rows
	}

	empty := Thicken(uniformGray(6, 6, 0), 1)
	assert.Equal(t, []string{
		"######",
		".....#",
		"#....#",
		"#....#",
		"#....#",
		"######",
	}, render(empty))

	column := uniformGray(6, 6, 0)
	for y := 0; y < 6; y++ {
		column.SetGray(0, y, color.Gray{Y: 255})
	}
	assert.Equal(t, []string{
		"#.####",
		"#....#",
		"##...#",
		"##...#",
		"#....#",
		"#.####",
	}, render(Thicken(column, 1)))
}

func TestTransparentBackground(t *testing.T) {
	src := grayFromRows([]uint8{0, 1, 255})

	black := TransparentBackground(src, AlphaWhereBlack)
	assert.Equal(t, color.NRGBA{A: 255}, black.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 1, G: 1, B: 1}, black.NRGBAAt(1, 0))
	assert.Equal(t, uint8(0), black.NRGBAAt(2, 0).A)

	nonBlack := TransparentBackground(src, AlphaWhereNonBlack)
	assert.Equal(t, uint8(0), nonBlack.NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(255), nonBlack.NRGBAAt(1, 0).A)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, nonBlack.NRGBAAt(2, 0))
}

func TestCompositeAlpha(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := 0; i < len(bg.Pix); i += 4 {
		bg.Pix[i], bg.Pix[i+3] = 200, 255
	}
	mask := grayFromRows(
		[]uint8{0, 64, 128},
		[]uint8{255, 10, 20},
	)

	out, err := CompositeAlpha(bg, mask, image.Point{X: 4, Y: 5})
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{R: 200, A: 255}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 200, A: 0}, out.NRGBAAt(4, 5))
	assert.Equal(t, uint8(128), out.NRGBAAt(6, 5).A)
	assert.Equal(t, uint8(20), out.NRGBAAt(6, 6).A)
	assert.Equal(t, uint8(255), out.NRGBAAt(7, 6).A)
}

func TestCompositeAlpha_OutOfBounds(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 10, 10))
	mask := uniformGray(4, 4, 255)

	_, err := CompositeAlpha(bg, mask, image.Point{X: 7, Y: 0})
	assert.ErrorIs(t, err, ErrPlacementOutOfBounds)

	_, err = CompositeAlpha(bg, mask, image.Point{X: 6, Y: 6})
	assert.NoError(t, err)
}
