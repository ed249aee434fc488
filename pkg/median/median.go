// Package median computes exact medians through quickselect instead of a full sort.
package median

import (
	"cmp"

	"golang.org/x/exp/constraints"

	"pixelsnap/pkg/selection"
)

// Number is any element type that supports arithmetic reduction of a median pair.
type Number interface {
	constraints.Integer | constraints.Float
}

// Median is the median of a sequence. For an odd-length sequence it holds the
// single middle element; for an even-length one it holds both middle elements,
// smaller first, leaving the reduction to a scalar to the caller.
type Median[T any] struct {
	lo, hi T
	even   bool
}

// Odd builds the median of an odd-length sequence.
func Odd[T any](v T) Median[T] {
	return Median[T]{lo: v, hi: v}
}

// Even builds the median of an even-length sequence from its two middle
// elements, smaller first.
func Even[T any](smaller, bigger T) Median[T] {
	return Median[T]{lo: smaller, hi: bigger, even: true}
}

// IsEven reports whether the median came from an even-length sequence.
func (m Median[T]) IsEven() bool {
	return m.even
}

// Value returns the middle element of an odd-length sequence. For an even
// median it returns the smaller of the pair.
func (m Median[T]) Value() T {
	return m.lo
}

// Pair returns the two middle elements, smaller first. For an odd median both
// values are the same element.
func (m Median[T]) Pair() (T, T) {
	return m.lo, m.hi
}

// Reduce returns the odd median unchanged, or f applied to the even pair.
func (m Median[T]) Reduce(f func(smaller, bigger T) T) T {
	if !m.even {
		return m.lo
	}
	return f(m.lo, m.hi)
}

// Sum reduces an even median to the sum of its pair.
func Sum[T Number](m Median[T]) T {
	return m.Reduce(func(a, b T) T { return a + b })
}

// Mean reduces an even median to the mean of its pair. Integer types truncate.
func Mean[T Number](m Median[T]) T {
	return m.Reduce(func(a, b T) T { return (a + b) / 2 })
}

// Of returns the median of s. The elements of s are reordered in place.
func Of[T cmp.Ordered](s selection.NonEmpty[T]) Median[T] {
	items := s.Items()
	k := s.Len() / 2

	// k and k-1 are valid ranks: Len >= 1, and k >= 1 whenever Len is even.
	if s.Len()%2 == 0 {
		smaller := selection.SelectUnchecked(items, k-1, selection.MedianOfThree[T])
		bigger := selection.SelectUnchecked(items, k, selection.MedianOfThree[T])
		return Even(smaller, bigger)
	}
	return Odd(selection.SelectUnchecked(items, k, selection.MedianOfThree[T]))
}
