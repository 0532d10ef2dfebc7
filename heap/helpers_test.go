package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestHeap returns an in-memory heap of the given capacity.
func newTestHeap(t testing.TB, capacity int) *Heap {
	t.Helper()
	h, err := New(capacity)
	require.NoError(t, err)
	return h
}

// carve does what the bump allocator does: build an extent at the cursor, link it,
// and advance the cursor past its marker.
func carve(t testing.TB, h *Heap, size int, cls Class) *Extent {
	t.Helper()
	e, err := h.NewExtent(h.NextFree(), size, cls)
	require.NoError(t, err)
	h.Directory().Append(e)
	require.NoError(t, h.SetNextFree(e.Right()+1))
	return e
}
