package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
)

// newTestHeap creates an in-memory heap for allocator tests.
func newTestHeap(t testing.TB, capacity int) *heap.Heap {
	t.Helper()
	h, err := heap.New(capacity)
	require.NoError(t, err)
	return h
}

// newTestBump returns a heap of the given capacity and a bump allocator over it.
func newTestBump(t testing.TB, capacity int, dt DirtyTracker) (*heap.Heap, *BumpAllocator) {
	t.Helper()
	h := newTestHeap(t, capacity)
	ba, err := NewBump(h, dt)
	require.NoError(t, err)
	return h, ba
}

// recordingTracker collects every range passed to Add.
type recordingTracker struct {
	ranges [][2]int
}

func (r *recordingTracker) Add(off, length int) {
	r.ranges = append(r.ranges, [2]int{off, length})
}
