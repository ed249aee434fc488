// Package gridsize estimates the pixel size of pixel art from the boundary
// peaks found by package gradient.
//
// Each axis is reduced independently: the distances between consecutive peaks
// form the spacing set, its median (with a divisibility tie-break for even
// sets) is the axis estimate, and the greatest common divisor of the two axis
// estimates is the final pixel size.
package gridsize

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat"

	"pixelsnap/pkg/gradient"
	"pixelsnap/pkg/median"
	"pixelsnap/pkg/selection"
)

// ErrEmptySpacingSet is returned when an axis has fewer than two peaks.
var ErrEmptySpacingSet = errors.New("gridsize: fewer than two peaks, no spacing to measure")

// ErrIndivisibleDimension is matched by every *IndivisibleDimensionError.
var ErrIndivisibleDimension = errors.New("gridsize: pixel size does not divide image dimensions")

// IndivisibleDimensionError reports a pixel size that does not tile the image exactly.
type IndivisibleDimensionError struct {
	PixelSize int
	Width     int
	Height    int
}

func (e *IndivisibleDimensionError) Error() string {
	return fmt.Sprintf("gridsize: pixel size %d does not divide %dx%d", e.PixelSize, e.Width, e.Height)
}

// Is makes errors.Is(err, ErrIndivisibleDimension) hold.
func (e *IndivisibleDimensionError) Is(target error) bool {
	return target == ErrIndivisibleDimension
}

// Diff returns the first difference xs[i+1] - xs[i]. It has one element
// fewer than xs, and is nil for fewer than two elements.
func Diff[T constraints.Integer | constraints.Float](xs []T) []T {
	if len(xs) < 2 {
		return nil
	}
	out := make([]T, len(xs)-1)
	for i := range out {
		out[i] = xs[i+1] - xs[i]
	}
	return out
}

// Spacing returns the distances between consecutive peaks.
func Spacing(peaks []int) (selection.NonEmpty[int], error) {
	ne, err := selection.NewNonEmpty(Diff(peaks))
	if err != nil {
		return ne, ErrEmptySpacingSet
	}
	return ne, nil
}

// Reconcile reduces a spacing median to one grid size. An odd median is used
// as is. For an even pair (a, b) the mean is used when it is an integer;
// otherwise b wins if it divides extent, and a is the fallback.
func Reconcile(m median.Median[int], extent int) int {
	return m.Reduce(func(a, b int) int {
		switch {
		case (a+b)%2 == 0:
			return (a + b) / 2
		case extent%b == 0:
			return b
		default:
			return a
		}
	})
}

// EstimateAxis returns the grid size implied by one axis's peaks. extent is
// the image size along the orthogonal axis, used by Reconcile.
func EstimateAxis(peaks []int, extent int) (int, error) {
	spacing, err := Spacing(peaks)
	if err != nil {
		return 0, err
	}
	return Reconcile(median.Of(spacing), extent), nil
}

// Combine merges the two axis estimates into one isotropic pixel size.
func Combine(horizontal, vertical int) int {
	return gcd(horizontal, vertical)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// CheckDivisible returns an *IndivisibleDimensionError unless pixelSize
// evenly divides both width and height.
func CheckDivisible(pixelSize, width, height int) error {
	if pixelSize <= 0 || width%pixelSize != 0 || height%pixelSize != 0 {
		return &IndivisibleDimensionError{PixelSize: pixelSize, Width: width, Height: height}
	}
	return nil
}

// Estimate is the outcome of running both axes of one image.
type Estimate struct {
	// Horizontal and Vertical are the per-axis grid sizes.
	Horizontal int
	Vertical   int

	// PixelSize is gcd(Horizontal, Vertical).
	PixelSize int

	// HorizontalSpread and VerticalSpread are the population standard
	// deviations of each axis's spacing set. Zero means perfectly regular.
	HorizontalSpread float64
	VerticalSpread   float64
}

// Estimator infers pixel sizes from image buffers.
type Estimator struct {
	Boundary gradient.BoundaryPolicy
}

// NewEstimator returns an Estimator using the given boundary policy.
func NewEstimator(boundary gradient.BoundaryPolicy) *Estimator {
	return &Estimator{Boundary: boundary}
}

// Estimate runs the full inference on b. When the resulting pixel size does
// not tile the image, the filled Estimate is returned together with an
// *IndivisibleDimensionError.
func (e *Estimator) Estimate(b *gradient.Buffer) (Estimate, error) {
	var est Estimate

	h, hSpread, err := e.axis(b, gradient.Horizontal)
	if err != nil {
		return est, err
	}
	v, vSpread, err := e.axis(b, gradient.Vertical)
	if err != nil {
		return est, err
	}

	est = Estimate{
		Horizontal:       h,
		Vertical:         v,
		PixelSize:        Combine(h, v),
		HorizontalSpread: hSpread,
		VerticalSpread:   vSpread,
	}
	return est, CheckDivisible(est.PixelSize, b.Width(), b.Height())
}

func (e *Estimator) axis(b *gradient.Buffer, axis gradient.Axis) (int, float64, error) {
	peaks := gradient.Peaks(b, axis, e.Boundary)
	spacing, err := Spacing(peaks)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "%s axis", axis)
	}

	// spread is computed before median.Of reorders the spacing set
	samples := make([]float64, spacing.Len())
	for i, s := range spacing.Items() {
		samples[i] = float64(s)
	}
	spread := math.Sqrt(stat.PopVariance(samples, nil))

	// the tie-break tests the image size along the orthogonal axis:
	// height for column spacings, width for row spacings
	return Reconcile(median.Of(spacing), b.Extent(axis.Orthogonal())), spread, nil
}
