package gradient

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkerboard builds a width x height image of cell x cell squares
// alternating between black and white.
func checkerboard(width, height, cell int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{A: 255}
			if (x/cell+y/cell)%2 == 1 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(2, 3, 5, 5))
	img.Set(2, 3, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.Set(4, 4, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	b := FromImage(img)
	assert.Equal(t, 3, b.Width())
	assert.Equal(t, 2, b.Height())
	assert.Equal(t, 3, b.Extent(Horizontal))
	assert.Equal(t, 2, b.Extent(Vertical))

	assert.Equal(t, 10.0, b.Plane(0).At(0, 0))
	assert.Equal(t, 20.0, b.Plane(1).At(0, 0))
	assert.Equal(t, 30.0, b.Plane(2).At(0, 0))
	assert.Equal(t, 3.0, b.Plane(2).At(1, 2))
}

func TestEdgeEnergyShapeAndValues(t *testing.T) {
	b := FromImage(checkerboard(8, 8, 4))

	h := EdgeEnergy(b, Horizontal)
	require.NotNil(t, h)
	rows, cols := h.Dims()
	assert.Equal(t, 8, rows)
	assert.Equal(t, 7, cols)

	v := EdgeEnergy(b, Vertical)
	require.NotNil(t, v)
	rows, cols = v.Dims()
	assert.Equal(t, 7, rows)
	assert.Equal(t, 8, cols)

	full := 255 * math.Sqrt(3)
	for i := 0; i < 8; i++ {
		for j := 0; j < 7; j++ {
			want := 0.0
			if j == 3 {
				want = full
			}
			assert.InDelta(t, want, h.At(i, j), 1e-9, "h(%d,%d)", i, j)
			assert.GreaterOrEqual(t, h.At(i, j), 0.0)
		}
	}
}

func TestEdgeSignal(t *testing.T) {
	b := FromImage(checkerboard(8, 8, 4))
	full := 8 * 255 * math.Sqrt(3)

	for _, axis := range []Axis{Horizontal, Vertical} {
		signal := EdgeSignal(b, axis)
		require.Len(t, signal, 7, axis.String())
		for i, v := range signal {
			want := 0.0
			if i == 3 {
				want = full
			}
			assert.InDelta(t, want, v, 1e-6, "%s[%d]", axis, i)
		}
	}
}

func TestEdgeSignalAsymmetricImage(t *testing.T) {
	// vertical stripes two pixels wide: only the horizontal axis sees edges
	img := image.NewGray(image.Rect(0, 0, 6, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 6; x++ {
			if (x/2)%2 == 1 {
				img.SetGray(x, y, color.Gray{Y: 100})
			}
		}
	}
	b := FromImage(img)

	h := EdgeSignal(b, Horizontal)
	require.Len(t, h, 5)
	assert.InDelta(t, 3*100*math.Sqrt(3), h[1], 1e-9)
	assert.InDelta(t, 3*100*math.Sqrt(3), h[3], 1e-9)
	assert.Equal(t, []int{0, 1, 3, 5}, FindPeaks(h, IncludeSentinels))

	v := EdgeSignal(b, Vertical)
	require.Len(t, v, 2)
	assert.Equal(t, []float64{0, 0}, v)
}

func TestDegenerateExtent(t *testing.T) {
	b := FromImage(image.NewRGBA(image.Rect(0, 0, 1, 5)))

	assert.Nil(t, EdgeEnergy(b, Horizontal))
	assert.Nil(t, EdgeSignal(b, Horizontal))
	assert.Equal(t, []int{0}, Peaks(b, Horizontal, IncludeSentinels))
	assert.Empty(t, Peaks(b, Horizontal, ExcludeSentinels))

	assert.Len(t, EdgeSignal(b, Vertical), 4)

	empty := FromImage(image.NewRGBA(image.Rectangle{}))
	assert.Nil(t, EdgeSignal(empty, Vertical))
}

func TestFindPeaks(t *testing.T) {
	cases := []struct {
		name      string
		signal    []float64
		sentinels []int
		interior  []int
	}{
		{"single peak", []float64{0, 0, 0, 5, 0, 0, 0}, []int{0, 3, 7}, []int{3}},
		{"plateau is not a peak", []float64{0, 5, 5, 0}, []int{0, 4}, nil},
		{"edges are not interior peaks", []float64{9, 1, 9}, []int{0, 3}, nil},
		{"several peaks", []float64{0, 2, 1, 3, 1, 4, 0}, []int{0, 1, 3, 5, 7}, []int{1, 3, 5}},
		{"two samples", []float64{1, 2}, []int{0, 2}, nil},
		{"empty", nil, []int{0}, nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.sentinels, FindPeaks(c.signal, IncludeSentinels))
			assert.Equal(t, c.interior, FindPeaks(c.signal, ExcludeSentinels))
		})
	}
}

func TestParseBoundaryPolicy(t *testing.T) {
	for _, p := range []BoundaryPolicy{IncludeSentinels, ExcludeSentinels} {
		got, err := ParseBoundaryPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParseBoundaryPolicy("")
	require.NoError(t, err)
	assert.Equal(t, IncludeSentinels, got)

	_, err = ParseBoundaryPolicy("edges")
	assert.Error(t, err)
}

func TestAxisOrthogonal(t *testing.T) {
	assert.Equal(t, Vertical, Horizontal.Orthogonal())
	assert.Equal(t, Horizontal, Vertical.Orthogonal())

	b := FromImage(image.NewRGBA(image.Rect(0, 0, 16, 11)))
	assert.Equal(t, 11, b.Extent(Horizontal.Orthogonal()))
	assert.Equal(t, 16, b.Extent(Vertical.Orthogonal()))
}
