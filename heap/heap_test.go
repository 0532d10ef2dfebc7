package heap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsBadCapacity(t *testing.T) {
	for _, c := range []int{0, -1} {
		_, err := New(c)
		require.ErrorIs(t, err, ErrBadSize, "capacity %d", c)
	}
}

func TestNewExtent_Layout(t *testing.T) {
	h := newTestHeap(t, 1024)

	e := carve(t, h, 250, nil)
	assert.Equal(t, 0, e.Left())
	assert.Equal(t, 250, e.Right())
	assert.Equal(t, 251, e.Size())
	assert.Equal(t, 250, e.PayloadSize())
	assert.Equal(t, MarkerDead, e.Marker())
	assert.Equal(t, byte('U'), h.Bytes()[e.Right()], "mirror byte starts dead")
	assert.Equal(t, 251, h.NextFree())

	hd := e.Handle()
	require.NotNil(t, hd)
	assert.Equal(t, ID(1), hd.ID())
	assert.Equal(t, 0, hd.Offset())
	assert.Len(t, hd.Bytes(), 250)
	assert.Equal(t, 250, cap(hd.Bytes()), "payload capacity must stop before the marker")
}

func TestNewExtent_Bounds(t *testing.T) {
	h := newTestHeap(t, 16)

	_, err := h.NewExtent(0, 16, nil)
	require.Error(t, err, "16 bytes of payload plus a marker cannot fit in 16")

	_, err = h.NewExtent(0, -1, nil)
	require.ErrorIs(t, err, ErrBadSize)

	e, err := h.NewExtent(0, 15, nil)
	require.NoError(t, err)
	assert.Equal(t, 16, e.Size())
}

func TestNewExtent_IDsNeverReused(t *testing.T) {
	h := newTestHeap(t, 64)
	a := carve(t, h, 4, nil)
	b := carve(t, h, 4, nil)

	h.Directory().RemoveAfter(h.Directory().Anchor())
	h.Release(a)

	c := carve(t, h, 4, nil)
	assert.Equal(t, ID(2), b.Handle().ID())
	assert.Equal(t, ID(3), c.Handle().ID())

	_, ok := h.Resolve(1)
	assert.False(t, ok, "released id must not resolve")
	got, ok := h.Resolve(3)
	require.True(t, ok)
	assert.Same(t, c.Handle(), got)
}

func TestSetMarker_MirrorsByte(t *testing.T) {
	h := newTestHeap(t, 64)
	e := carve(t, h, 10, nil)

	require.NoError(t, h.SetMarker(e, MarkerLive))
	assert.True(t, e.Live())
	assert.Equal(t, byte('M'), h.Bytes()[e.Right()])
	require.NoError(t, h.CheckMarker(e))

	err := h.SetMarker(e, Marker(7))
	require.ErrorIs(t, err, ErrCorruptMarker)
	assert.True(t, e.Live(), "invalid marker must not be stored")
}

func TestCheckMarker_DetectsCorruption(t *testing.T) {
	h := newTestHeap(t, 64)
	e := carve(t, h, 10, nil)

	h.Bytes()[e.Right()] = 'X'
	require.ErrorIs(t, h.CheckMarker(e), ErrCorruptMarker)

	h.Bytes()[e.Right()] = 'U'
	require.NoError(t, h.CheckMarker(e))

	e.mark = Marker(0)
	require.ErrorIs(t, h.CheckMarker(e), ErrCorruptMarker)
}

func TestSlide_OverlappingMove(t *testing.T) {
	h := newTestHeap(t, 64)
	gap := carve(t, h, 3, nil) // [0,3]
	e := carve(t, h, 10, nil)  // [4,14]

	hd := e.Handle()
	for i := range hd.Bytes() {
		hd.Bytes()[i] = byte('a' + i)
	}
	want := append([]byte(nil), hd.Bytes()...)

	delta, err := h.Slide(e, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, delta)
	assert.Equal(t, 2, e.Left())
	assert.Equal(t, 12, e.Right())
	assert.Equal(t, 2, hd.Offset(), "handle slot follows the extent")
	assert.Equal(t, want, hd.Bytes(), "overlapping move must preserve payload")
	assert.Equal(t, byte('U'), h.Bytes()[e.Right()], "marker byte travels with the extent")
	_ = gap
}

func TestSlide_RejectsNonLeftMoves(t *testing.T) {
	h := newTestHeap(t, 64)
	carve(t, h, 3, nil)
	e := carve(t, h, 5, nil)

	for _, to := range []int{e.Left(), e.Left() + 1, -1} {
		_, err := h.Slide(e, to)
		require.ErrorIs(t, err, ErrBadSlide, "slide to %d", to)
	}
	_, err := h.Slide(h.Directory().Anchor(), 0)
	require.ErrorIs(t, err, ErrBadSlide)
}

func TestRelease_InvalidatesHandle(t *testing.T) {
	h := newTestHeap(t, 64)
	e := carve(t, h, 8, nil)
	hd := e.Handle()

	h.Directory().RemoveAfter(h.Directory().Anchor())
	h.Release(e)

	assert.False(t, hd.Valid())
	assert.Nil(t, hd.Bytes())
	assert.Equal(t, -1, hd.Offset())
	_, err := hd.Payload()
	assert.True(t, errors.Is(err, ErrStaleHandle))
	assert.Equal(t, 0, h.HandleCount())
}

func TestClearMarks(t *testing.T) {
	h := newTestHeap(t, 64)
	a := carve(t, h, 4, nil)
	b := carve(t, h, 4, nil)
	require.NoError(t, h.SetMarker(a, MarkerLive))
	require.NoError(t, h.SetMarker(b, MarkerLive))

	h.ClearMarks()

	for _, e := range []*Extent{a, b} {
		assert.Equal(t, MarkerDead, e.Marker())
		assert.NoError(t, h.CheckMarker(e))
	}
}

func TestStats(t *testing.T) {
	h := newTestHeap(t, 4096)
	assert.Equal(t, Stats{Capacity: 4096, Free: 4096}, h.Stats())

	carve(t, h, 250, nil)
	carve(t, h, 1000, nil)

	s := h.Stats()
	assert.Equal(t, 2, s.Extents)
	assert.Equal(t, 1252, s.Used)
	assert.Equal(t, 4096-1252, s.Free)
	assert.Equal(t, h.Available(), s.Free, "with no dead gaps cursor and scan agree")
}

func TestSetNextFree_Bounds(t *testing.T) {
	h := newTestHeap(t, 10)
	require.NoError(t, h.SetNextFree(10))
	require.Error(t, h.SetNextFree(11))
	require.Error(t, h.SetNextFree(-1))
}

func TestClose_InvalidatesHandles(t *testing.T) {
	h := newTestHeap(t, 32)
	hd := carve(t, h, 4, nil).Handle()
	require.NoError(t, h.Close())

	assert.True(t, h.Closed())
	assert.False(t, hd.Valid())
	_, err := h.NewExtent(0, 1, nil)
	require.ErrorIs(t, err, ErrClosed)
}
