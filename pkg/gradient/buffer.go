// Package gradient turns an RGB image into per-axis edge-strength signals and
// extracts the local maxima that mark likely grid boundaries.
package gradient

import (
	"image"
	"image/color"

	"gonum.org/v1/gonum/mat"
)

// Channels is the number of color planes held by a Buffer.
const Channels = 3

// Buffer is a channel x row x column array of non-negative samples.
//
// Samples come from 8-bit channel values, all exactly representable as
// float64, so a Buffer never holds NaN.
type Buffer struct {
	// planes[c] has one row per image row and one column per image column.
	planes [Channels]*mat.Dense

	width  int
	height int
}

// FromImage converts img into a Buffer of its red, green and blue channels.
// Alpha is discarded after un-premultiplying.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	b := &Buffer{width: width, height: height}
	if width == 0 || height == 0 {
		return b
	}

	r := make([]float64, width*height)
	g := make([]float64, width*height)
	bl := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			idx := y*width + x
			r[idx] = float64(c.R)
			g[idx] = float64(c.G)
			bl[idx] = float64(c.B)
		}
	}

	b.planes[0] = mat.NewDense(height, width, r)
	b.planes[1] = mat.NewDense(height, width, g)
	b.planes[2] = mat.NewDense(height, width, bl)
	return b
}

// Width returns the number of columns.
func (b *Buffer) Width() int { return b.width }

// Height returns the number of rows.
func (b *Buffer) Height() int { return b.height }

// Plane returns channel c (0 red, 1 green, 2 blue). It is nil for an empty buffer.
func (b *Buffer) Plane(c int) *mat.Dense { return b.planes[c] }

// Extent returns the image size along axis: width for Horizontal, height for Vertical.
func (b *Buffer) Extent(axis Axis) int {
	if axis == Horizontal {
		return b.width
	}
	return b.height
}
