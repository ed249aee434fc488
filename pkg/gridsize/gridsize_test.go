package gridsize

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelsnap/pkg/gradient"
	"pixelsnap/pkg/median"
)

// pixelArt builds a cols x rows grid of logical pixels, each size x size
// source pixels, with colors that differ between every pair of neighbours.
func pixelArt(cols, rows, size int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, cols*size, rows*size))
	for y := 0; y < rows*size; y++ {
		for x := 0; x < cols*size; x++ {
			cx, cy := x/size, y/size
			img.Set(x, y, color.NRGBA{
				R: uint8(40 * (cx % 5)),
				G: uint8(60 * (cy % 4)),
				B: uint8(30 * ((cx + cy) % 3)),
				A: 255,
			})
		}
	}
	return img
}

func checkerboard(width, height, cell int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/cell+y/cell)%2 == 1 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

// bands builds a grayscale image whose colour changes after every listed
// column and row index, so interior edge peaks land exactly on those indices.
func bands(width, height int, colBreaks, rowBreaks []int) image.Image {
	band := func(pos int, breaks []int) int {
		n := 0
		for _, b := range breaks {
			if b < pos {
				n++
			}
		}
		return n
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(60*band(x, colBreaks) + 15*band(y, rowBreaks))})
		}
	}
	return img
}

func TestDiff(t *testing.T) {
	assert.Equal(t, []int{-4, 1, 5}, Diff([]int{5, 1, 2, 7}))
	assert.Equal(t, []float64{0.5}, Diff([]float64{1, 1.5}))
	assert.Nil(t, Diff([]int{3}))
	assert.Nil(t, Diff[int](nil))
}

func TestSpacing(t *testing.T) {
	s, err := Spacing([]int{0, 3, 7})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, s.Items())

	for _, peaks := range [][]int{nil, {}, {4}} {
		_, err := Spacing(peaks)
		assert.True(t, errors.Is(err, ErrEmptySpacingSet), "peaks %v", peaks)
	}
}

func TestReconcile(t *testing.T) {
	cases := []struct {
		name   string
		median median.Median[int]
		extent int
		want   int
	}{
		// 4+6 is even, so the mean wins before divisibility is consulted
		{"even sum uses mean", median.Even(4, 6), 18, 5},
		{"odd sum prefers divisor", median.Even(3, 4), 16, 4},
		{"odd sum falls back to smaller", median.Even(3, 4), 17, 3},
		{"odd sum where only smaller divides", median.Even(3, 4), 9, 3},
		{"odd median passes through", median.Odd(7), 10, 7},
		{"equal pair", median.Even(4, 4), 13, 4},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Reconcile(c.median, c.extent))
		})
	}
}

func TestEstimateAxis(t *testing.T) {
	size, err := EstimateAxis([]int{0, 3, 7, 11, 15}, 16)
	require.NoError(t, err)
	assert.Equal(t, 4, size)

	size, err = EstimateAxis([]int{0, 3, 7}, 8)
	require.NoError(t, err)
	assert.Equal(t, 4, size)

	_, err = EstimateAxis([]int{0}, 8)
	assert.True(t, errors.Is(err, ErrEmptySpacingSet))
}

func TestCombine(t *testing.T) {
	assert.Equal(t, 2, Combine(6, 4))
	assert.Equal(t, 4, Combine(4, 8))
	assert.Equal(t, 1, Combine(3, 5))
	assert.Equal(t, 7, Combine(7, 7))
}

func TestCheckDivisible(t *testing.T) {
	assert.NoError(t, CheckDivisible(4, 8, 8))
	assert.NoError(t, CheckDivisible(1, 7, 3))

	err := CheckDivisible(3, 10, 9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndivisibleDimension))

	var ind *IndivisibleDimensionError
	require.True(t, errors.As(err, &ind))
	assert.Equal(t, IndivisibleDimensionError{PixelSize: 3, Width: 10, Height: 9}, *ind)

	assert.Error(t, CheckDivisible(4, 8, 10))
	assert.Error(t, CheckDivisible(0, 8, 8))
}

func TestEstimateCheckerboard(t *testing.T) {
	b := gradient.FromImage(checkerboard(8, 8, 4))

	est, err := NewEstimator(gradient.IncludeSentinels).Estimate(b)
	require.NoError(t, err)
	assert.Equal(t, 4, est.Horizontal)
	assert.Equal(t, 4, est.Vertical)
	assert.Equal(t, 4, est.PixelSize)
	assert.Zero(t, b.Width()%est.PixelSize)
	assert.Zero(t, b.Height()%est.PixelSize)
	// spacings are {3, 4} on both axes
	assert.InDelta(t, 0.5, est.HorizontalSpread, 1e-12)
	assert.InDelta(t, 0.5, est.VerticalSpread, 1e-12)
}

func TestEstimateCheckerboardInterior(t *testing.T) {
	// only one interior peak per axis: no spacing without the image edges
	b := gradient.FromImage(checkerboard(8, 8, 4))
	_, err := NewEstimator(gradient.ExcludeSentinels).Estimate(b)
	assert.True(t, errors.Is(err, ErrEmptySpacingSet))

	// a larger board has enough interior peaks
	b = gradient.FromImage(checkerboard(24, 24, 4))
	est, err := NewEstimator(gradient.ExcludeSentinels).Estimate(b)
	require.NoError(t, err)
	assert.Equal(t, 4, est.PixelSize)
	assert.Zero(t, est.HorizontalSpread)
}

func TestEstimatePixelArt(t *testing.T) {
	for _, size := range []int{2, 3, 5} {
		b := gradient.FromImage(pixelArt(12, 10, size))
		est, err := NewEstimator(gradient.IncludeSentinels).Estimate(b)
		require.NoError(t, err, "size %d", size)
		assert.Equal(t, size, est.PixelSize, "size %d", size)
	}
}

func TestEstimateIndivisible(t *testing.T) {
	// 3x3 cells on a 10x9 image: the last column is a partial cell
	img := image.NewGray(image.Rect(0, 0, 10, 9))
	for y := 0; y < 9; y++ {
		for x := 0; x < 10; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(70*((x/3)%3) + 20*((y/3)%3))})
		}
	}

	est, err := NewEstimator(gradient.ExcludeSentinels).Estimate(gradient.FromImage(img))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndivisibleDimension))
	assert.Equal(t, 3, est.PixelSize)
}

func TestEstimateNarrowImage(t *testing.T) {
	b := gradient.FromImage(image.NewRGBA(image.Rect(0, 0, 1, 4)))
	_, err := NewEstimator(gradient.IncludeSentinels).Estimate(b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptySpacingSet))
	assert.Contains(t, err.Error(), "horizontal axis")
}

func TestEstimateReconcilesAgainstOrthogonalDimension(t *testing.T) {
	// spacings {3, 4} on both axes of a 16x11 image: 16 is a multiple of 4,
	// 11 is a multiple of neither
	b := gradient.FromImage(bands(16, 11, []int{1, 4, 8}, []int{1, 4, 8}))
	require.Equal(t, []int{1, 4, 8}, gradient.Peaks(b, gradient.Horizontal, gradient.ExcludeSentinels))
	require.Equal(t, []int{1, 4, 8}, gradient.Peaks(b, gradient.Vertical, gradient.ExcludeSentinels))

	est, err := NewEstimator(gradient.ExcludeSentinels).Estimate(b)
	require.NoError(t, err)
	// column spacings are checked against the height, row spacings against the width
	assert.Equal(t, 3, est.Horizontal)
	assert.Equal(t, 4, est.Vertical)
	assert.Equal(t, 1, est.PixelSize)
}

func TestEstimateVerticalTieBreakUsesWidth(t *testing.T) {
	b := gradient.FromImage(bands(16, 11, []int{3, 7, 11}, []int{1, 4, 8}))

	est, err := NewEstimator(gradient.ExcludeSentinels).Estimate(b)
	assert.Equal(t, 4, est.Horizontal)
	assert.Equal(t, 4, est.Vertical)
	assert.Equal(t, 4, est.PixelSize)

	// 4 tiles the width but not the height
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndivisibleDimension))
}
