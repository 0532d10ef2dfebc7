package heap

import "errors"

var (
	// ErrCapacityExceeded indicates a request that can never fit, even in an empty heap.
	ErrCapacityExceeded = errors.New("heap: request exceeds heap capacity")

	// ErrBadSize indicates a negative payload size or an invalid capacity.
	ErrBadSize = errors.New("heap: invalid size")

	// ErrCorruptMarker indicates an extent whose liveness marker is neither live nor
	// dead, or whose trailing mirror byte disagrees with its record.
	ErrCorruptMarker = errors.New("heap: corrupted liveness marker")

	// ErrBadSlide indicates an attempt to relocate an extent to a position that is not
	// strictly left of where it is.
	ErrBadSlide = errors.New("heap: extent relocation must move left")

	// ErrStaleHandle indicates use of a handle whose extent has been reclaimed.
	ErrStaleHandle = errors.New("heap: stale handle")

	// ErrForeignHandle indicates a handle that belongs to a different heap.
	ErrForeignHandle = errors.New("heap: handle belongs to another heap")

	// ErrSlotRange indicates a reference slot index outside the record's slots.
	ErrSlotRange = errors.New("heap: reference slot out of range")

	// ErrIDSpace indicates that all handle IDs of this heap have been used.
	ErrIDSpace = errors.New("heap: handle id space exhausted")

	// ErrClosed indicates use of a heap after Close.
	ErrClosed = errors.New("heap: closed")
)
