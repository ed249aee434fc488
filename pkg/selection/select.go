// Package selection implements partition-based k-th order statistic selection
// (quickselect) over slices of ordered elements.
//
// Selection reorders its input in place: after a call returning rank k, every
// element before position k compares less than or equal to the result and every
// element after it compares greater than or equal to it. The slice is not sorted.
package selection

import (
	"cmp"
	"fmt"

	"github.com/pkg/errors"
)

// ErrOutOfBounds is matched by every *OutOfBoundsError.
var ErrOutOfBounds = errors.New("selection: rank out of bounds")

// OutOfBoundsError reports a requested rank outside [0, Len).
type OutOfBoundsError struct {
	K   int
	Len int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("selection: rank %d out of bounds for length %d", e.K, e.Len)
}

// Is makes errors.Is(err, ErrOutOfBounds) hold.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// PivotFunc chooses the index of the pivot within a non-empty working slice.
type PivotFunc[T cmp.Ordered] func(s []T) int

// MedianOfThree returns the index of whichever of the first, middle and last
// elements lies between the other two.
func MedianOfThree[T cmp.Ordered](s []T) int {
	last := len(s) - 1
	mid := len(s) / 2
	first, middle, end := s[0], s[mid], s[last]

	switch {
	case (first <= middle && middle <= end) || (end <= middle && middle <= first):
		return mid
	case (middle <= first && first <= end) || (end <= first && first <= middle):
		return 0
	default:
		return last
	}
}

// LastIndex always picks the last element. Sorted input drives it to the
// quadratic worst case, which makes it useful for tests.
func LastIndex[T cmp.Ordered](s []T) int {
	return len(s) - 1
}

// Select returns the element that would occupy position k if s were sorted.
// It fails with an *OutOfBoundsError when k is not a valid index of s.
//
// NaN float elements break the total order and give unspecified results.
func Select[T cmp.Ordered](s []T, k int, pivot PivotFunc[T]) (T, error) {
	if k < 0 || k >= len(s) {
		var zero T
		return zero, &OutOfBoundsError{K: k, Len: len(s)}
	}
	return SelectUnchecked(s, k, pivot), nil
}

// SelectUnchecked is Select without the bounds check. The caller must
// guarantee 0 <= k < len(s), typically by deriving k from len(s) itself.
// Violating that contract is a programming error and panics.
func SelectUnchecked[T cmp.Ordered](s []T, k int, pivot PivotFunc[T]) T {
	for len(s) > 1 {
		p := s[pivot(s)]
		lt, gt := partition3(s, p)

		switch {
		case k < lt:
			s = s[:lt]
		case k < gt:
			return p
		default:
			s = s[gt:]
			k -= gt
		}
	}

	if len(s) != 1 || k != 0 {
		panic(fmt.Sprintf("selection: rank %d outside working slice of length %d", k, len(s)))
	}
	return s[0]
}

// partition3 rearranges s into elements less than p, equal to p and greater
// than p, and returns the boundaries: s[:lt] < p, s[lt:gt] == p, s[gt:] > p.
func partition3[T cmp.Ordered](s []T, p T) (lt, gt int) {
	lt, i, gt := 0, 0, len(s)
	for i < gt {
		switch {
		case s[i] < p:
			s[lt], s[i] = s[i], s[lt]
			lt++
			i++
		case s[i] > p:
			gt--
			s[i], s[gt] = s[gt], s[i]
		default:
			i++
		}
	}
	return lt, gt
}
