package gc

import "errors"

var (
	// ErrOutOfMemory indicates a request that still did not fit after a collection.
	ErrOutOfMemory = errors.New("gc: out of memory")

	// ErrPoisoned indicates a Runtime whose heap was found corrupt by an earlier
	// collection. Every call fails with it from then on.
	ErrPoisoned = errors.New("gc: runtime poisoned by heap corruption")

	// ErrNilClass indicates a Malloc call without a class.
	ErrNilClass = errors.New("gc: nil class")
)
