package sir

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena is a generic, append-only store. It hands out 1-based handles that
// stay valid for the life of the owning module: growing the backing slice
// never invalidates a handle returned by a prior Allocate, and nothing is
// ever freed before the whole unit is discarded (spec §3.5).
type Arena[T any] struct {
	data []*T
}

// NewArena returns an empty Arena, optionally sized for capHint elements.
func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{data: make([]*T, 0, capHint)}
}

// Allocate stores value and returns its 1-based handle.
func (a *Arena[T]) Allocate(value T) uint32 {
	elem := new(T)
	*elem = value
	a.data = append(a.data, elem)
	return a.Len()
}

// Get returns the element at handle, or nil for the zero handle.
func (a *Arena[T]) Get(handle uint32) *T {
	if handle == 0 {
		return nil
	}
	return a.data[handle-1]
}

// Len returns the number of elements allocated so far.
func (a *Arena[T]) Len() uint32 {
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("sir: arena length overflow: %w", err))
	}
	return n
}
