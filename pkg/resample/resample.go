// Package resample loads pixel-art images, shrinks them by an integer pixel
// size, and writes the result.
package resample

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pixelsnap/pkg/gridsize"
)

// Filter names a downsampling kernel.
type Filter string

const (
	// FilterBox averages each pixelSize x pixelSize block.
	FilterBox Filter = "box"
	// FilterNearest keeps one source pixel per block.
	FilterNearest Filter = "nearest"
	// FilterLanczos applies a Lanczos3 kernel. It can blur across block edges.
	FilterLanczos Filter = "lanczos"
)

// ParseFilter validates a filter name. The empty string selects FilterBox.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(s)); f {
	case "":
		return FilterBox, nil
	case FilterBox, FilterNearest, FilterLanczos:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want box, nearest or lanczos)", s)
	}
}

// Load decodes the image at path and returns it with its format name.
func Load(path string) (image.Image, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to decode %s", path)
	}
	return img, format, nil
}

// Downsample shrinks img by pixelSize in both directions. It refuses, with a
// gridsize.IndivisibleDimensionError, any size that does not tile the image.
func Downsample(img image.Image, pixelSize int, filter Filter) (image.Image, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if err := gridsize.CheckDivisible(pixelSize, width, height); err != nil {
		return nil, err
	}

	w, h := width/pixelSize, height/pixelSize
	if pixelSize == 1 {
		return imaging.Clone(img), nil
	}

	switch filter {
	case FilterBox, "":
		return imaging.Resize(img, w, h, imaging.Box), nil
	case FilterNearest:
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
		return dst, nil
	case FilterLanczos:
		return resize.Resize(uint(w), uint(h), img, resize.Lanczos3), nil
	default:
		return nil, fmt.Errorf("unknown filter %q", filter)
	}
}

// Save encodes img to path, choosing the encoder from the file extension:
// .png, .webp (lossless), .bmp, .tif or .tiff.
func Save(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !SupportedOutput(ext) {
		return fmt.Errorf("unsupported output format %q", ext)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	switch ext {
	case ".png":
		err = png.Encode(file, img)
	case ".webp":
		err = webp.Encode(file, img, &webp.Options{Lossless: true})
	case ".bmp":
		err = bmp.Encode(file, img)
	case ".tif", ".tiff":
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate})
	}
	if err != nil {
		file.Close()
		os.Remove(path)
		return errors.Wrapf(err, "failed to encode %s", path)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// SupportedOutput reports whether Save can write files with extension ext
// (including the leading dot).
func SupportedOutput(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".webp", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}

// SupportedInput reports whether Load can decode files with extension ext.
func SupportedInput(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}
