package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// BoundaryColor is the color GridOverlay draws detected grid lines with.
var BoundaryColor = color.NRGBA{R: 255, G: 0, B: 255, A: 255}

// Viewer writes intermediary renderings of the inference pipeline so a
// wrong estimate can be inspected.
type Viewer struct {
	// dir is the root directory stage images are written under
	dir string
}

// NewViewer creates a viewer rooted at dir
func NewViewer(dir string) *Viewer {
	return &Viewer{dir: dir}
}

// EnergyImage renders an edge energy map as grayscale, scaled so the
// strongest edge is white. An all-zero map renders black.
func EnergyImage(energy *mat.Dense) *image.Gray {
	rows, cols := energy.Dims()
	img := image.NewGray(image.Rect(0, 0, cols, rows))

	peak := mat.Max(energy)
	if peak <= 0 {
		return img
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(energy.At(y, x) / peak * 255)})
		}
	}
	return img
}

// SignalImage plots a 1-D edge signal as white vertical bars on black, one
// column per sample, with the largest sample reaching the full height.
func SignalImage(signal []float64, height int) (*image.Gray, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("signal is empty")
	}
	if height <= 0 {
		return nil, fmt.Errorf("height must be positive")
	}

	img := image.NewGray(image.Rect(0, 0, len(signal), height))
	peak := floats.Max(signal)
	if peak <= 0 {
		return img, nil
	}

	for x, v := range signal {
		bar := int(v / peak * float64(height))
		for y := height - bar; y < height; y++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return img, nil
}

// GridOverlay copies img and draws a line after every column index in
// columns and every row index in rows. Peak index i marks the boundary
// between pixels i and i+1, so the line is drawn on pixel i+1. Indices
// falling outside the image are skipped.
func GridOverlay(img image.Image, columns, rows []int) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	for _, c := range columns {
		x := c + 1
		if x <= 0 || x >= w {
			continue
		}
		for y := 0; y < h; y++ {
			out.SetNRGBA(x, y, BoundaryColor)
		}
	}
	for _, r := range rows {
		y := r + 1
		if y <= 0 || y >= h {
			continue
		}
		for x := 0; x < w; x++ {
			out.SetNRGBA(x, y, BoundaryColor)
		}
	}
	return out
}

// SaveImage saves img as a PNG file
func (v *Viewer) SaveImage(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// SaveStage writes img to <dir>/<stage>/<name>.png, creating directories
// as needed, and returns the written path.
func (v *Viewer) SaveStage(stage, name string, img image.Image) (string, error) {
	stageDir := filepath.Join(v.dir, stage)
	if err := os.MkdirAll(stageDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create stage directory: %w", err)
	}

	path := filepath.Join(stageDir, name+".png")
	if err := v.SaveImage(img, path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, nil
}
