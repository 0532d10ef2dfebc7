package compact

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

// fixture is a heap with a bump allocator for building compaction scenarios.
type fixture struct {
	h  *heap.Heap
	ba *alloc.BumpAllocator
}

func newFixture(t testing.TB, capacity int) *fixture {
	t.Helper()
	h, err := heap.New(capacity)
	require.NoError(t, err)
	ba, err := alloc.NewBump(h, nil)
	require.NoError(t, err)
	return &fixture{h: h, ba: ba}
}

// alloc allocates size bytes and fills the payload with fill.
func (f *fixture) alloc(t testing.TB, size int, fill byte) *heap.Handle {
	t.Helper()
	hd, err := f.ba.Alloc(size, nil)
	require.NoError(t, err)
	for i := range hd.Bytes() {
		hd.Bytes()[i] = fill
	}
	return hd
}

// live marks each handle's extent live, standing in for a mark phase.
func (f *fixture) live(t testing.TB, hds ...*heap.Handle) {
	t.Helper()
	for _, hd := range hds {
		require.NoError(t, f.h.SetMarker(hd.Extent(), heap.MarkerLive))
	}
}

func fill(n int, b byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// recordingTracker collects every range passed to Add.
type recordingTracker struct {
	ranges [][2]int
}

func (r *recordingTracker) Add(off, length int) {
	r.ranges = append(r.ranges, [2]int{off, length})
}
