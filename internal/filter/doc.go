// Package filter holds the image primitives the line-art pipelines are built
// from: luma conversion, inversion, resizing, Otsu binarisation, rectangular
// morphology, binary thickening, alpha masks and compositing.
//
// Every function is pure. Inputs are never modified and each call returns a
// freshly allocated buffer. Grayscale buffers are *image.Gray; anything that
// carries transparency is *image.NRGBA so that the alpha written to a PNG is
// exactly the mask that was computed.
package filter
