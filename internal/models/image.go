package models

import (
	"time"
)

// Job is one image to shrink
type Job struct {
	// Index is the position of this job in the batch
	Index int

	// Input is the path of the source image
	Input string

	// Output is the path the downsampled image is written to
	Output string
}

// Result is the outcome of processing one Job
type Result struct {
	Job

	// Format is the decoded input format (png, jpeg, ...)
	Format string

	// Width and Height are the source image dimensions in pixels
	Width  int
	Height int

	// HorizontalSize and VerticalSize are the per-axis grid estimates
	HorizontalSize int
	VerticalSize   int

	// PixelSize is the combined estimate; zero when inference failed
	// before both axes were estimated
	PixelSize int

	// HorizontalSpread and VerticalSpread measure how irregular the detected
	// grid spacing was on each axis
	HorizontalSpread float64
	VerticalSpread   float64

	// Duration is the wall time spent on this image
	Duration time.Duration

	// Err is set when the image could not be shrunk
	Err error
}

// OK reports whether the image was shrunk and written
func (r Result) OK() bool {
	return r.Err == nil
}

// OutputSize returns the logical resolution, or zeros if unknown
func (r Result) OutputSize() (int, int) {
	if r.PixelSize <= 0 {
		return 0, 0
	}
	return r.Width / r.PixelSize, r.Height / r.PixelSize
}

// Summary aggregates the results of a batch
type Summary struct {
	// Results holds one entry per job, in job order
	Results []Result

	// Succeeded and Failed count the results by outcome
	Succeeded int
	Failed    int

	// Elapsed is the wall time of the whole batch
	Elapsed time.Duration
}
