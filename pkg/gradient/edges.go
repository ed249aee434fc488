package gradient

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Axis selects the spatial direction along which differences are taken.
type Axis int

const (
	// Horizontal differences adjacent columns. Its peaks are vertical grid lines.
	Horizontal Axis = iota
	// Vertical differences adjacent rows. Its peaks are horizontal grid lines.
	Vertical
)

// Orthogonal returns the other axis.
func (a Axis) Orthogonal() Axis {
	if a == Horizontal {
		return Vertical
	}
	return Horizontal
}

func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// BoundaryPolicy controls whether the image edges count as peaks.
type BoundaryPolicy int

const (
	// IncludeSentinels adds index 0 and len(signal) around the detected peaks,
	// so the distance from each image edge to the nearest peak is a spacing sample.
	IncludeSentinels BoundaryPolicy = iota
	// ExcludeSentinels keeps only strict interior local maxima.
	ExcludeSentinels
)

func (p BoundaryPolicy) String() string {
	switch p {
	case IncludeSentinels:
		return "sentinels"
	case ExcludeSentinels:
		return "interior"
	default:
		return fmt.Sprintf("BoundaryPolicy(%d)", int(p))
	}
}

// ParseBoundaryPolicy accepts the names produced by BoundaryPolicy.String.
func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch s {
	case "sentinels", "":
		return IncludeSentinels, nil
	case "interior":
		return ExcludeSentinels, nil
	default:
		return 0, fmt.Errorf("unknown boundary policy %q (want sentinels or interior)", s)
	}
}

// EdgeEnergy returns the per-position gradient magnitude along axis: the
// first difference of every channel, squared, summed over channels and
// square-rooted. The result has one fewer column (Horizontal) or row
// (Vertical) than the image. It is nil when the image is narrower than two
// pixels along axis.
func EdgeEnergy(b *Buffer, axis Axis) *mat.Dense {
	h, w := b.height, b.width
	if w == 0 || h == 0 || b.Extent(axis) < 2 {
		return nil
	}

	rows, cols := h, w
	if axis == Horizontal {
		cols--
	} else {
		rows--
	}

	energy := mat.NewDense(rows, cols, nil)
	var d mat.Dense
	for _, plane := range b.planes {
		var next, prev mat.Matrix
		if axis == Horizontal {
			next = plane.Slice(0, h, 1, w)
			prev = plane.Slice(0, h, 0, w-1)
		} else {
			next = plane.Slice(1, h, 0, w)
			prev = plane.Slice(0, h-1, 0, w)
		}

		d.Sub(next, prev)
		d.MulElem(&d, &d)
		energy.Add(energy, &d)
	}

	// A sum of squares is never negative, so the square root is always defined.
	energy.Apply(func(_, _ int, v float64) float64 { return math.Sqrt(v) }, energy)
	return energy
}

// EdgeSignal collapses the edge energy along axis into one value per
// boundary position by summing over the orthogonal direction.
func EdgeSignal(b *Buffer, axis Axis) []float64 {
	energy := EdgeEnergy(b, axis)
	if energy == nil {
		return nil
	}
	return collapse(energy, axis)
}

func collapse(energy *mat.Dense, axis Axis) []float64 {
	rows, cols := energy.Dims()
	if axis == Horizontal {
		signal := make([]float64, cols)
		col := make([]float64, rows)
		for j := 0; j < cols; j++ {
			mat.Col(col, j, energy)
			signal[j] = floats.Sum(col)
		}
		return signal
	}

	signal := make([]float64, rows)
	for i := 0; i < rows; i++ {
		signal[i] = floats.Sum(energy.RawRowView(i))
	}
	return signal
}

// FindPeaks returns the indices i where signal[i-1] < signal[i] > signal[i+1],
// in increasing order, bracketed by 0 and len(signal) under IncludeSentinels.
// An empty signal yields [0] under IncludeSentinels.
func FindPeaks(signal []float64, policy BoundaryPolicy) []int {
	var peaks []int
	if policy == IncludeSentinels {
		peaks = append(peaks, 0)
	}

	for i := 1; i < len(signal)-1; i++ {
		if signal[i-1] < signal[i] && signal[i] > signal[i+1] {
			peaks = append(peaks, i)
		}
	}

	if policy == IncludeSentinels && len(signal) > 0 {
		peaks = append(peaks, len(signal))
	}
	return peaks
}

// Peaks runs the full pipeline for one axis of b.
func Peaks(b *Buffer, axis Axis, policy BoundaryPolicy) []int {
	return FindPeaks(EdgeSignal(b, axis), policy)
}
