package alloc

import "github.com/joshuapare/heapkit/heap"

// Allocator hands out extents from a heap.
//
// Implementations:
//   - BumpAllocator: tail-only bump allocation
type Allocator interface {
	// Alloc reserves size payload bytes for an object of class cls (which may be nil
	// for opaque bytes) and returns its handle. The payload is zeroed.
	Alloc(size int, cls heap.Class) (*heap.Handle, error)
}

// Stats contains allocation statistics since the allocator was created.
type Stats struct {
	TotalAllocations uint64 `json:"total_allocations"` // Number of successful allocations
	TotalBytesAlloc  uint64 `json:"total_bytes"`       // Payload plus marker bytes handed out
	LargestAlloc     uint64 `json:"largest"`           // Largest single payload
	Failures         uint64 `json:"failures"`          // Requests rejected with ErrNoSpace
}
