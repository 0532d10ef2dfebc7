package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// BumpAllocator is an append-only allocator over a heap's backing store.
//
// Key characteristics:
//   - O(1) allocation: check the tail, build the extent, advance the cursor
//   - No free lists, no indexes: the heap's Directory is the only bookkeeping
//   - Every extent gets one trailing marker byte, initially dead
type BumpAllocator struct {
	h  *heap.Heap
	dt DirtyTracker

	stats Stats
}

// NewBump creates a BumpAllocator for h.
//
// Parameters:
//   - h: The heap to allocate from
//   - dt: Dirty tracker notified of every carved extent (can be nil)
func NewBump(h *heap.Heap, dt DirtyTracker) (*BumpAllocator, error) {
	if h == nil {
		return nil, fmt.Errorf("alloc: nil heap")
	}
	if h.Closed() {
		return nil, heap.ErrClosed
	}
	return &BumpAllocator{h: h, dt: dt}, nil
}

// Alloc carves an extent [NextFree, NextFree+size] from the tail: size payload bytes
// followed by the marker byte at right. The payload is zeroed so stale bytes from
// reclaimed objects can never be read as references.
func (ba *BumpAllocator) Alloc(size int, cls heap.Class) (*heap.Handle, error) {
	if ba.h.Closed() {
		return nil, heap.ErrClosed
	}
	if err := ba.check(size, cls); err != nil {
		return nil, err
	}

	left := ba.h.NextFree()
	span := format.Span(size)
	if _, err := buf.CheckRange(ba.h.Capacity(), left, span); err != nil {
		ba.stats.Failures++
		return nil, fmt.Errorf("%w: need %d bytes at %d, %d available",
			ErrNoSpace, span, left, ba.h.Available())
	}

	e, err := ba.h.NewExtent(left, size, cls)
	if err != nil {
		return nil, err
	}
	hd := e.Handle()
	clear(hd.Bytes())

	ba.h.Directory().Append(e)
	if err := ba.h.SetNextFree(e.Right() + 1); err != nil {
		return nil, err
	}

	if ba.dt != nil {
		ba.dt.Add(e.Left(), e.Size())
	}

	ba.stats.TotalAllocations++
	ba.stats.TotalBytesAlloc += uint64(span)
	if uint64(size) > ba.stats.LargestAlloc {
		ba.stats.LargestAlloc = uint64(size)
	}
	return hd, nil
}

// Fits reports whether a payload of size bytes fits the current tail.
func (ba *BumpAllocator) Fits(size int) bool {
	if size < 0 {
		return false
	}
	_, err := buf.CheckRange(ba.h.Capacity(), ba.h.NextFree(), format.Span(size))
	return err == nil
}

// check rejects requests that can never succeed, whatever the heap's layout.
func (ba *BumpAllocator) check(size int, cls heap.Class) error {
	if size < 0 {
		return fmt.Errorf("%w: payload %d", heap.ErrBadSize, size)
	}
	span, ok := buf.AddOverflowSafe(size, format.MarkerSize)
	if !ok || span > ba.h.Capacity() {
		return fmt.Errorf("%w: %d bytes (with marker) > capacity %d",
			heap.ErrCapacityExceeded, span, ba.h.Capacity())
	}
	if cls != nil && cls.Size() > size {
		return fmt.Errorf("%w: %s needs %d, got %d", ErrSizeMismatch, cls.Name(), cls.Size(), size)
	}
	return nil
}

// Stats returns allocation counters.
func (ba *BumpAllocator) Stats() Stats { return ba.stats }

// Heap returns the heap this allocator carves from.
func (ba *BumpAllocator) Heap() *heap.Heap { return ba.h }

// Compile-time interface check
var _ Allocator = (*BumpAllocator)(nil)
