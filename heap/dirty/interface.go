package dirty

import "context"

// DirtyTracker is the minimal interface for recording modified byte ranges.
// Allocators and the compactor only need to report writes, not flush them.
type DirtyTracker interface {
	// Add marks length bytes starting at off as modified.
	Add(off, length int)
}

// FlushableTracker extends DirtyTracker with control over persistence.
type FlushableTracker interface {
	DirtyTracker

	// Flush writes the recorded ranges to the backing file.
	Flush(ctx context.Context, mode FlushMode) error
}

var _ FlushableTracker = (*Tracker)(nil)
