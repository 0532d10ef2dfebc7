package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// TestBumpAllocator_SimpleAlloc tests basic bump allocation.
func TestBumpAllocator_SimpleAlloc(t *testing.T) {
	h, ba := newTestBump(t, 1024, nil)

	hd, err := ba.Alloc(64, nil)
	require.NoError(t, err, "Alloc should succeed")
	require.True(t, hd.Valid())
	require.Len(t, hd.Bytes(), 64)

	e := hd.Extent()
	assert.Equal(t, 0, e.Left())
	assert.Equal(t, 64, e.Right())
	assert.Equal(t, 65, e.Size())
	assert.Equal(t, heap.MarkerDead, e.Marker(), "fresh extents start dead")
	assert.Equal(t, byte(format.MarkerCodeDead), h.Bytes()[e.Right()], "mirror byte written")
	assert.Equal(t, 65, h.NextFree())
	assert.Same(t, e, h.Directory().Last())
}

// TestBumpAllocator_Monotonic tests that every allocation starts right after the previous marker.
func TestBumpAllocator_Monotonic(t *testing.T) {
	h, ba := newTestBump(t, 4096, nil)

	prevRight := -1
	for i := range 10 {
		size := 3 + i*7
		hd, err := ba.Alloc(size, nil)
		require.NoError(t, err, "Alloc %d should succeed", i)

		e := hd.Extent()
		assert.Equal(t, prevRight+1, e.Left(), "alloc %d starts right after the previous marker", i)
		assert.Equal(t, e.Left()+size, e.Right())
		assert.Equal(t, e.Right()+1, h.NextFree())
		prevRight = e.Right()
	}
	assert.Equal(t, 10, h.Directory().Len())
	assert.Equal(t, 10, h.HandleCount())
}

// TestBumpAllocator_IDsIncrease tests that handle IDs are assigned in allocation order.
func TestBumpAllocator_IDsIncrease(t *testing.T) {
	_, ba := newTestBump(t, 256, nil)

	var prev heap.ID
	for range 5 {
		hd, err := ba.Alloc(8, nil)
		require.NoError(t, err)
		assert.Greater(t, hd.ID(), prev)
		prev = hd.ID()
	}
}

// TestBumpAllocator_ZeroesPayload tests that reused bytes never leak into a new object.
func TestBumpAllocator_ZeroesPayload(t *testing.T) {
	h, ba := newTestBump(t, 64, nil)
	for i := range h.Bytes() {
		h.Bytes()[i] = 0xAB
	}

	hd, err := ba.Alloc(16, heap.NewRecord("node", 2, 8))
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 16), hd.Bytes())
}

// TestBumpAllocator_ZeroSize tests that an empty payload still takes the marker byte.
func TestBumpAllocator_ZeroSize(t *testing.T) {
	h, ba := newTestBump(t, 8, nil)

	hd, err := ba.Alloc(0, nil)
	require.NoError(t, err)
	assert.Empty(t, hd.Bytes())
	assert.Equal(t, 1, hd.Extent().Size())
	assert.Equal(t, 1, h.NextFree())
}

// TestBumpAllocator_Capacity covers the boundaries around the heap's capacity.
func TestBumpAllocator_Capacity(t *testing.T) {
	const capacity = 100

	tests := []struct {
		name    string
		sizes   []int
		wantErr error
	}{
		{"exact fit", []int{capacity - 1}, nil},
		{"capacity payload", []int{capacity}, heap.ErrCapacityExceeded},
		{"capacity plus one", []int{capacity + 1}, heap.ErrCapacityExceeded},
		{"negative", []int{-1}, heap.ErrBadSize},
		{"tail too small", []int{60, 60}, ErrNoSpace},
		{"fills exactly", []int{49, 49}, nil},
		{"one byte past", []int{49, 49, 0}, ErrNoSpace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ba := newTestBump(t, capacity, nil)

			var err error
			for _, n := range tt.sizes {
				if _, err = ba.Alloc(n, nil); err != nil {
					break
				}
			}
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, capacity, h.NextFree())
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestBumpAllocator_FailureLeavesHeapUntouched tests that a rejected request changes nothing.
func TestBumpAllocator_FailureLeavesHeapUntouched(t *testing.T) {
	h, ba := newTestBump(t, 32, nil)
	_, err := ba.Alloc(20, nil)
	require.NoError(t, err)
	before := h.Stats()

	_, err = ba.Alloc(20, nil)
	require.ErrorIs(t, err, ErrNoSpace)

	assert.Equal(t, before, h.Stats())
	assert.Equal(t, 21, h.NextFree())
	assert.Equal(t, 1, h.HandleCount())
	assert.Equal(t, uint64(1), ba.Stats().Failures)
}

// TestBumpAllocator_ClassTooLarge tests that a class cannot claim more than its payload.
func TestBumpAllocator_ClassTooLarge(t *testing.T) {
	_, ba := newTestBump(t, 64, nil)

	_, err := ba.Alloc(4, heap.NewRecord("pair", 2, 0))
	require.ErrorIs(t, err, ErrSizeMismatch)

	hd, err := ba.Alloc(8, heap.NewRecord("pair", 2, 0))
	require.NoError(t, err)
	assert.Equal(t, "pair", hd.Class().Name())
}

// TestBumpAllocator_DirtyTracking tests that every carved extent is reported dirty.
func TestBumpAllocator_DirtyTracking(t *testing.T) {
	rt := &recordingTracker{}
	_, ba := newTestBump(t, 128, rt)

	_, err := ba.Alloc(10, nil)
	require.NoError(t, err)
	_, err = ba.Alloc(5, nil)
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{0, 11}, {11, 6}}, rt.ranges)
}

// TestBumpAllocator_Fits tests the tail-space query.
func TestBumpAllocator_Fits(t *testing.T) {
	_, ba := newTestBump(t, 10, nil)
	assert.True(t, ba.Fits(9))
	assert.False(t, ba.Fits(10))
	assert.False(t, ba.Fits(-1))

	_, err := ba.Alloc(4, nil)
	require.NoError(t, err)
	assert.True(t, ba.Fits(4))
	assert.False(t, ba.Fits(5))
}

// TestBumpAllocator_Stats tests the allocation counters.
func TestBumpAllocator_Stats(t *testing.T) {
	_, ba := newTestBump(t, 256, nil)
	for _, n := range []int{10, 40, 20} {
		_, err := ba.Alloc(n, nil)
		require.NoError(t, err)
	}

	s := ba.Stats()
	assert.Equal(t, uint64(3), s.TotalAllocations)
	assert.Equal(t, uint64(73), s.TotalBytesAlloc)
	assert.Equal(t, uint64(40), s.LargestAlloc)
}

// TestNewBump_Errors tests constructor validation.
func TestNewBump_Errors(t *testing.T) {
	_, err := NewBump(nil, nil)
	require.Error(t, err)

	h := newTestHeap(t, 16)
	require.NoError(t, h.Close())
	_, err = NewBump(h, nil)
	require.ErrorIs(t, err, heap.ErrClosed)
}
