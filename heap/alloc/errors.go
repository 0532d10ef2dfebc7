package alloc

import "errors"

var (
	// ErrNoSpace indicates that the tail of the backing store is too small for the
	// request although the heap's capacity would be enough.
	ErrNoSpace = errors.New("alloc: not enough space at the tail")

	// ErrSizeMismatch indicates a class whose Size disagrees with the requested size
	// in a way that would let the tracer read past the payload.
	ErrSizeMismatch = errors.New("alloc: class needs more bytes than requested")
)
