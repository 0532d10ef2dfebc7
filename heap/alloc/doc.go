// Package alloc carves extents from the tail of a heap's backing store.
//
// # Overview
//
// BumpAllocator is the only allocator: every request is placed at the heap's cursor
// (NextFree), followed by one marker byte, and the cursor moves past it. There is no
// free list, no size classes and no in-place reuse. Space held by dead extents comes
// back only through compaction (heap/compact), after which the cursor sits right
// behind the last survivor again.
//
//	before: |A|m|B|m|..............|
//	                 ^ NextFree
//	Alloc(n):
//	after:  |A|m|B|m|C......|m|.....|
//	                           ^ NextFree
//
// # Usage Example
//
//	h, _ := heap.New(format.DefaultCapacity)
//	ba, err := alloc.NewBump(h, nil)
//	if err != nil {
//	    return err
//	}
//	hd, err := ba.Alloc(256, heap.NewBlob("buffer", 256))
//	switch {
//	case errors.Is(err, heap.ErrCapacityExceeded):
//	    // can never fit
//	case errors.Is(err, alloc.ErrNoSpace):
//	    // collect, then retry once
//	}
//
// # Failures
//
// A request whose payload plus marker exceeds the whole capacity fails with
// heap.ErrCapacityExceeded. A request that would fit an empty heap but not the current
// tail fails with ErrNoSpace, which is not fatal: the caller is expected to collect
// and retry (pkg/gc does exactly that, once).
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access externally
// or go through pkg/gc.
package alloc
