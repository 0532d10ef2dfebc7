package compact

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// TestCompact_DropsUnreachablePrefix replays a 250-byte garbage object followed by a
// 1000-byte live one.
func TestCompact_DropsUnreachablePrefix(t *testing.T) {
	f := newFixture(t, format.DefaultCapacity)
	garbage := f.alloc(t, 250, 0x11)
	kept := f.alloc(t, 1000, 0x22)
	f.live(t, kept)

	res, err := Compact(f.h)
	require.NoError(t, err)

	assert.Equal(t, Result{Survivors: 1, Reclaimed: 1, ReclaimedBytes: 251, Moved: 1, MovedBytes: 1001}, res)
	assert.Equal(t, 1, f.h.Directory().Len())
	e := f.h.Directory().First()
	assert.Equal(t, 0, e.Left())
	assert.Equal(t, 1001, e.Size())
	assert.Equal(t, 1001, f.h.NextFree())

	assert.False(t, garbage.Valid())
	assert.Nil(t, garbage.Bytes())
	require.True(t, kept.Valid())
	assert.Equal(t, 0, kept.Offset())
	assert.Equal(t, fill(1000, 0x22), kept.Bytes())
}

// TestCompact_PreservesSurvivorContent interleaves live and dead objects.
func TestCompact_PreservesSurvivorContent(t *testing.T) {
	f := newFixture(t, 4096)
	var kept []*heap.Handle
	for i := range 20 {
		hd := f.alloc(t, 10+i, byte(i))
		if i%3 == 0 {
			kept = append(kept, hd)
		}
	}
	f.live(t, kept...)

	res, err := Compact(f.h)
	require.NoError(t, err)
	assert.Equal(t, len(kept), res.Survivors)
	assert.Equal(t, 20-len(kept), res.Reclaimed)

	next := 0
	for _, hd := range kept {
		require.True(t, hd.Valid())
		i := int(hd.Bytes()[0])
		assert.Equal(t, fill(10+i, byte(i)), hd.Bytes(), "object %d", i)
		assert.Equal(t, next, hd.Offset(), "object %d is packed", i)
		next += hd.Extent().Size()
	}
	assert.Equal(t, next, f.h.NextFree())
}

// TestCompact_ReclaimsExactlyDeadSet checks the survivor set against the live set.
func TestCompact_ReclaimsExactlyDeadSet(t *testing.T) {
	f := newFixture(t, 2048)
	all := make([]*heap.Handle, 0, 12)
	for i := range 12 {
		all = append(all, f.alloc(t, 7, byte(i)))
	}
	liveSet := map[heap.ID]bool{}
	for _, i := range []int{1, 2, 5, 11} {
		f.live(t, all[i])
		liveSet[all[i].ID()] = true
	}

	_, err := Compact(f.h)
	require.NoError(t, err)

	for _, hd := range all {
		assert.Equal(t, liveSet[hd.ID()], hd.Valid(), "handle %d", hd.ID())
		_, found := f.h.Resolve(hd.ID())
		assert.Equal(t, liveSet[hd.ID()], found)
	}
	assert.Equal(t, len(liveSet), f.h.HandleCount())
}

// TestCompact_ResetsMarkers tests that survivors are dead again after compaction.
func TestCompact_ResetsMarkers(t *testing.T) {
	f := newFixture(t, 256)
	a := f.alloc(t, 4, 1)
	b := f.alloc(t, 4, 2)
	f.live(t, a, b)

	_, err := Compact(f.h)
	require.NoError(t, err)

	for e := range f.h.Directory().Iter() {
		assert.Equal(t, heap.MarkerDead, e.Marker())
		assert.Equal(t, byte(format.MarkerCodeDead), f.h.Bytes()[e.Right()])
	}
}

// TestCompact_Idempotent tests that compacting again without marking reclaims the rest,
// and that a third pass is a no-op.
func TestCompact_Idempotent(t *testing.T) {
	f := newFixture(t, 512)
	a := f.alloc(t, 30, 1)
	f.alloc(t, 30, 2)
	f.live(t, a)

	_, err := Compact(f.h)
	require.NoError(t, err)

	f.live(t, a)
	res, err := Compact(f.h)
	require.NoError(t, err)
	assert.Equal(t, Result{Survivors: 1}, res, "already packed survivor is not copied")
	assert.Equal(t, 31, f.h.NextFree())

	res, err = Compact(f.h)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Reclaimed)
	assert.Equal(t, 0, f.h.NextFree())
	assert.True(t, f.h.Directory().Tail().IsAnchor())

	res, err = Compact(f.h)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

// TestCompact_NothingLive tests that the directory and cursor are reset when nothing survives.
func TestCompact_NothingLive(t *testing.T) {
	f := newFixture(t, 128)
	for range 5 {
		f.alloc(t, 9, 0xFF)
	}

	res, err := Compact(f.h)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Reclaimed)
	assert.Equal(t, 50, res.ReclaimedBytes)
	assert.Equal(t, 0, f.h.Directory().Len())
	assert.Equal(t, 0, f.h.NextFree())
	assert.Equal(t, 0, f.h.HandleCount())

	// The tail must be usable again.
	hd := f.alloc(t, 3, 7)
	assert.Equal(t, 0, hd.Offset())
	assert.Same(t, hd.Extent(), f.h.Directory().First())
}

// TestCompact_DeadTail tests that dropping the last extents moves the directory tail back.
func TestCompact_DeadTail(t *testing.T) {
	f := newFixture(t, 128)
	a := f.alloc(t, 5, 1)
	f.alloc(t, 5, 2)
	f.alloc(t, 5, 3)
	f.live(t, a)

	_, err := Compact(f.h)
	require.NoError(t, err)
	assert.Same(t, a.Extent(), f.h.Directory().Tail())

	b := f.alloc(t, 5, 4)
	assert.Same(t, b.Extent(), a.Extent().Next())
	assert.Equal(t, 6, b.Offset())
}

// TestCompact_HandleStability tests that a handle taken before compaction still reaches
// the same bytes afterwards.
func TestCompact_HandleStability(t *testing.T) {
	f := newFixture(t, 1024)
	f.alloc(t, 100, 0)
	hd := f.alloc(t, 16, 0)
	copy(hd.Bytes(), "stable payload!!")
	f.live(t, hd)

	before := hd.Offset()
	_, err := Compact(f.h)
	require.NoError(t, err)

	assert.Less(t, hd.Offset(), before)
	assert.Equal(t, "stable payload!!", string(hd.Bytes()))
	got, ok := f.h.Resolve(hd.ID())
	require.True(t, ok)
	assert.Same(t, hd, got)
}

// TestCompact_CorruptMirrorAborts tests that a bad mirror byte stops compaction before
// anything changes.
func TestCompact_CorruptMirrorAborts(t *testing.T) {
	f := newFixture(t, 256)
	f.alloc(t, 10, 1)
	b := f.alloc(t, 10, 2)
	c := f.alloc(t, 10, 3)
	f.live(t, c)
	f.h.Bytes()[b.Extent().Right()] = 0x00

	snapshot := bytes.Clone(f.h.Bytes())
	cursor := f.h.NextFree()

	_, err := Compact(f.h)
	require.ErrorIs(t, err, heap.ErrCorruptMarker)

	assert.Equal(t, snapshot, f.h.Bytes())
	assert.Equal(t, cursor, f.h.NextFree())
	assert.Equal(t, 3, f.h.Directory().Len())
	assert.Equal(t, heap.MarkerLive, c.Extent().Marker())
	assert.True(t, b.Valid())
}

// TestCompact_DirtyRanges tests that only moved survivors are reported dirty.
func TestCompact_DirtyRanges(t *testing.T) {
	f := newFixture(t, 256)
	a := f.alloc(t, 3, 1)
	f.alloc(t, 3, 2)
	c := f.alloc(t, 3, 3)
	f.live(t, a, c)

	rt := &recordingTracker{}
	res, err := NewCompactor(f.h, rt).Compact()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Moved)
	assert.Equal(t, [][2]int{{4, 4}}, rt.ranges)
}

// TestCompact_ClosedHeap tests that a closed heap is rejected.
func TestCompact_ClosedHeap(t *testing.T) {
	f := newFixture(t, 16)
	require.NoError(t, f.h.Close())
	_, err := Compact(f.h)
	require.ErrorIs(t, err, heap.ErrClosed)
}

// Test_Fuzz_RandomCycles runs random allocate/mark/compact rounds and checks the
// packing invariants after each compaction.
func Test_Fuzz_RandomCycles(t *testing.T) {
	f := newFixture(t, 1<<14)
	rng := rand.New(rand.NewSource(42))
	want := map[*heap.Handle][]byte{}

	for round := range 50 {
		for range rng.Intn(20) {
			n := rng.Intn(64)
			if !f.ba.Fits(n) {
				break
			}
			hd := f.alloc(t, n, byte(rng.Intn(256)))
			want[hd] = bytes.Clone(hd.Bytes())
		}
		for hd := range want {
			if rng.Intn(2) == 0 {
				f.live(t, hd)
			} else {
				delete(want, hd)
			}
		}

		_, err := Compact(f.h)
		require.NoError(t, err, "round %d", round)

		used := 0
		prevRight := -1
		for e := range f.h.Directory().Iter() {
			require.Equal(t, prevRight+1, e.Left(), "round %d: gap before %v", round, e)
			prevRight = e.Right()
			used += e.Size()
		}
		require.Equal(t, used, f.h.NextFree(), "round %d", round)
		require.Equal(t, len(want), f.h.Directory().Len(), "round %d", round)
		for hd, b := range want {
			require.Equal(t, b, hd.Bytes(), "round %d: handle %d", round, hd.ID())
		}
	}
}
