package trace

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap"
)

// initialStackCapacity is the pre-allocated capacity for the traversal stack.
const initialStackCapacity = 256

// MarkStats describes one mark phase.
type MarkStats struct {
	Roots  int `json:"roots"`
	Marked int `json:"marked"` // extents set live, roots included
	Edges  int `json:"edges"`  // references followed, including ones to already-live extents
}

// Tracer marks everything reachable from a root set.
type Tracer struct {
	h     *heap.Heap
	roots *Roots
	stack []*heap.Handle
}

// NewTracer creates a tracer over h starting from roots.
func NewTracer(h *heap.Heap, roots *Roots) *Tracer {
	return &Tracer{
		h:     h,
		roots: roots,
		stack: make([]*heap.Handle, 0, initialStackCapacity),
	}
}

// Mark sets every extent reachable from the roots live. A reachable extent whose mirror
// byte disagrees with its marker fails with heap.ErrCorruptMarker. If Mark fails, every
// marker in the heap is reset to dead before returning, so a later Mark starts from
// scratch.
func (t *Tracer) Mark() (MarkStats, error) {
	var stats MarkStats
	if t.h.Closed() {
		return stats, heap.ErrClosed
	}
	stats.Roots = t.roots.Len()

	err := t.mark(&stats)
	t.stack = t.stack[:0]
	if err != nil {
		t.h.ClearMarks()
		return MarkStats{Roots: stats.Roots}, err
	}
	return stats, nil
}

func (t *Tracer) mark(stats *MarkStats) error {
	for root := range t.roots.All() {
		if !root.Valid() {
			return fmt.Errorf("%w: root %v", heap.ErrStaleHandle, root)
		}
		if err := t.push(root, stats); err != nil {
			return err
		}

		for len(t.stack) > 0 {
			hd := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]

			cls := hd.Class()
			if cls == nil {
				continue
			}

			var refErr error
			cls.Refs(hd.Bytes(), func(id heap.ID) {
				if refErr != nil {
					return
				}
				stats.Edges++
				child, ok := t.h.Resolve(id)
				if !ok {
					refErr = fmt.Errorf("%w: %v references id %d", ErrDanglingRef, hd, id)
					return
				}
				refErr = t.push(child, stats)
			})
			if refErr != nil {
				return refErr
			}
		}
	}
	return nil
}

// push marks hd live and queues it for scanning, unless it is live already. The
// marker is validated first so a corrupted mirror byte is reported, not overwritten.
func (t *Tracer) push(hd *heap.Handle, stats *MarkStats) error {
	e := hd.Extent()
	if err := t.h.CheckMarker(e); err != nil {
		return err
	}
	if e.Live() {
		return nil
	}
	if err := t.h.SetMarker(e, heap.MarkerLive); err != nil {
		return err
	}
	stats.Marked++
	t.stack = append(t.stack, hd)
	return nil
}
