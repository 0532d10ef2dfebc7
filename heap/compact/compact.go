package compact

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/dirty"
)

// Result summarises one compaction.
type Result struct {
	Survivors      int `json:"survivors"`
	Reclaimed      int `json:"reclaimed_extents"`
	ReclaimedBytes int `json:"reclaimed_bytes"`
	Moved          int `json:"moved_extents"`
	MovedBytes     int `json:"moved_bytes"`
}

func (r Result) String() string {
	return fmt.Sprintf("survivors=%d reclaimed=%d (%d bytes) moved=%d (%d bytes)",
		r.Survivors, r.Reclaimed, r.ReclaimedBytes, r.Moved, r.MovedBytes)
}

// Compactor runs sweep-and-slide compaction over one heap.
type Compactor struct {
	h  *heap.Heap
	dt dirty.DirtyTracker
}

// NewCompactor creates a compactor for h. dt, if not nil, is told about every byte
// range a survivor was moved to.
func NewCompactor(h *heap.Heap, dt dirty.DirtyTracker) *Compactor {
	return &Compactor{h: h, dt: dt}
}

// Compact reclaims every extent not marked live and closes all gaps between the
// survivors. It is linear in the number of extents plus the bytes moved, and a second
// call with nothing marked live in between reclaims everything that is left.
func (c *Compactor) Compact() (Result, error) {
	var res Result
	if c.h.Closed() {
		return res, heap.ErrClosed
	}

	dir := c.h.Directory()
	if err := dir.Walk(c.h.CheckMarker); err != nil {
		return res, err
	}

	if err := c.h.SetNextFree(0); err != nil {
		return res, err
	}
	prev := dir.Anchor()
	for cur := prev.Next(); cur != nil; {
		succ := cur.Next()

		if !cur.Live() {
			dir.RemoveAfter(prev)
			res.Reclaimed++
			res.ReclaimedBytes += cur.Size()
			c.h.Release(cur)
			cur = succ
			continue
		}

		if err := c.h.SetMarker(cur, heap.MarkerDead); err != nil {
			return res, err
		}
		next := c.h.NextFree()
		if cur.Left() != next {
			if cur.Left() < next {
				return res, fmt.Errorf("%w: extent at %d overlaps survivor ending at %d",
					ErrInvariant, cur.Left(), next)
			}
			if _, err := c.h.Slide(cur, next); err != nil {
				return res, err
			}
			res.Moved++
			res.MovedBytes += cur.Size()
			if c.dt != nil {
				c.dt.Add(cur.Left(), cur.Size())
			}
		}
		if err := c.h.SetNextFree(cur.Right() + 1); err != nil {
			return res, fmt.Errorf("%w: %w", ErrInvariant, err)
		}
		res.Survivors++

		prev = cur
		cur = succ
	}

	if err := dir.SetTail(prev); err != nil {
		return res, fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	return res, nil
}

// Compact is a convenience wrapper for a one-off compaction without dirty tracking.
func Compact(h *heap.Heap) (Result, error) {
	return NewCompactor(h, nil).Compact()
}
