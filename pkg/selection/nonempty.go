package selection

import (
	"github.com/pkg/errors"
)

// ErrEmpty is returned when a NonEmpty is built from an empty slice.
var ErrEmpty = errors.New("selection: sequence is empty")

// NonEmpty wraps a slice that is known to hold at least one element.
// Code receiving a NonEmpty treats that as a precondition and does not
// re-check it.
type NonEmpty[T any] struct {
	items []T
}

// NewNonEmpty wraps items without copying. It returns ErrEmpty when items
// has no elements.
func NewNonEmpty[T any](items []T) (NonEmpty[T], error) {
	if len(items) == 0 {
		return NonEmpty[T]{}, ErrEmpty
	}
	return NonEmpty[T]{items: items}, nil
}

// MustNonEmpty is NewNonEmpty for slices whose length is guaranteed by
// construction. It panics on an empty slice.
func MustNonEmpty[T any](items []T) NonEmpty[T] {
	ne, err := NewNonEmpty(items)
	if err != nil {
		panic(err)
	}
	return ne
}

// Len returns the number of elements, always at least one.
func (n NonEmpty[T]) Len() int {
	return len(n.items)
}

// Items returns the wrapped slice. Selection reorders it in place.
func (n NonEmpty[T]) Items() []T {
	return n.items
}
