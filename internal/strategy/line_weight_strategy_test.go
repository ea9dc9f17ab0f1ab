package strategy

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func brokenStroke() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 9, 9))
	for x := 0; x < 9; x++ {
		if x == 4 {
			continue
		}
		img.SetGray(x, 4, color.Gray{Y: 255})
	}
	return img
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Thickening ")
	require.NoError(t, err)
	assert.Equal(t, ModeThickening, m)

	_, err = ParseMode("dilation")
	assert.Error(t, err)
}

func TestNewStrategy_Defaults(t *testing.T) {
	tests := []struct {
		mode      Mode
		wantName  string
		wantStage string
	}{
		{ModeClosing, "closing", "closed"},
		{ModeThickening, "thickening", "thickened"},
		{ModeThinning, "thinning", "thinned"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			s, err := NewStrategy(tt.mode, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, s.GetStrategyName())
			assert.Equal(t, tt.wantStage, s.StageName())
		})
	}
}

func TestNewStrategy_Invalid(t *testing.T) {
	_, err := NewStrategy("erode", 5, 1)
	assert.Error(t, err)

	_, err = NewStrategy(ModeClosing, -3, 0)
	assert.Error(t, err)

	_, err = NewThinningStrategy(3, 0)
	assert.Error(t, err)
}

func TestClosingStrategy_BridgesGap(t *testing.T) {
	s, err := NewStrategy(ModeClosing, 3, 0)
	require.NoError(t, err)

	out, err := s.Apply(brokenStroke())
	require.NoError(t, err)
	assert.Equal(t, uint8(255), out.GrayAt(4, 4).Y)
}

func TestThickeningStrategy_AddsPixels(t *testing.T) {
	s, err := NewStrategy(ModeThickening, 0, 1)
	require.NoError(t, err)

	in := brokenStroke()
	out, err := s.Apply(in)
	require.NoError(t, err)

	var before, after int
	for i := range in.Pix {
		if in.Pix[i] > 0 {
			before++
		}
		if out.Pix[i] > 0 {
			after++
		}
	}
	assert.Greater(t, after, before)
}

func TestThinningStrategy_KeepsSize(t *testing.T) {
	s, err := NewStrategy(ModeThinning, 3, 2)
	require.NoError(t, err)

	out, err := s.Apply(brokenStroke())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 9, 9), out.Bounds())
}
