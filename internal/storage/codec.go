package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"

	// Register raster decoders, including WebP, BMP and TIFF from x/image.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FormatSVG is the format name Decode reports for SVG input.
const FormatSVG = "svg"

// maxSVGSide caps the raster size of an SVG so a huge viewBox cannot
// allocate gigabytes.
const maxSVGSide = 8192

// Decode reads an image and reports its format ("png", "jpeg", "webp",
// "svg", ...). SVG documents are rasterised at their viewBox size onto white.
// Read errors are returned as is; anything else wraps ErrUndecodable.
func Decode(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	if looksLikeSVG(data) {
		img, err := DecodeSVG(data)
		if err != nil {
			return nil, FormatSVG, fmt.Errorf("%w: %w", ErrUndecodable, err)
		}
		return img, FormatSVG, nil
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	return img, format, nil
}

// DecodeSVG rasterises an SVG document.
func DecodeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}

	viewBoxW := float64(icon.ViewBox.W)
	viewBoxH := float64(icon.ViewBox.H)
	width, height := int(viewBoxW), int(viewBoxH)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("svg has empty viewBox %vx%v", viewBoxW, viewBoxH)
	}
	if width > maxSVGSide || height > maxSVGSide {
		return nil, fmt.Errorf("svg viewBox %dx%d exceeds %d pixels", width, height, maxSVGSide)
	}

	icon.SetTarget(0, 0, viewBoxW, viewBoxH)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	scanner.SetClip(img.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)

	icon.Draw(raster, 1.0)
	return img, nil
}

// EncodePNG writes the provided image to the writer as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// PNGBytes encodes img as PNG into memory.
func PNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	head = bytes.TrimSpace(bytes.TrimPrefix(head, []byte("\xef\xbb\xbf")))
	if bytes.HasPrefix(head, []byte("<svg")) {
		return true
	}
	return (bytes.HasPrefix(head, []byte("<?xml")) || bytes.HasPrefix(head, []byte("<!DOCTYPE svg"))) &&
		bytes.Contains(head, []byte("<svg"))
}
