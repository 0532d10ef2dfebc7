package trace

import (
	"fmt"
	"iter"
	"slices"

	"github.com/joshuapare/heapkit/heap"
)

// Roots is the set of handles that are reachable by definition. Membership is by
// handle identity, and iteration follows registration order.
type Roots struct {
	h       *heap.Heap
	handles []*heap.Handle
	index   map[*heap.Handle]struct{}
}

// NewRoots returns an empty root set for handles of h.
func NewRoots(h *heap.Heap) *Roots {
	return &Roots{h: h, index: make(map[*heap.Handle]struct{})}
}

// Register adds hd to the root set.
func (r *Roots) Register(hd *heap.Handle) error {
	if hd == nil || !hd.Valid() {
		return fmt.Errorf("%w: cannot root it", heap.ErrStaleHandle)
	}
	if hd.Heap() != r.h {
		return heap.ErrForeignHandle
	}
	if _, ok := r.index[hd]; ok {
		return fmt.Errorf("%w: %v", ErrAlreadyRegistered, hd)
	}
	r.index[hd] = struct{}{}
	r.handles = append(r.handles, hd)
	return nil
}

// Deregister removes hd from the root set.
func (r *Roots) Deregister(hd *heap.Handle) error {
	if _, ok := r.index[hd]; !ok {
		return fmt.Errorf("%w: %v", ErrNotRegistered, hd)
	}
	delete(r.index, hd)
	i := slices.Index(r.handles, hd)
	r.handles = slices.Delete(r.handles, i, i+1)
	return nil
}

// Contains reports whether hd is a root.
func (r *Roots) Contains(hd *heap.Handle) bool {
	_, ok := r.index[hd]
	return ok
}

// Len returns the number of roots.
func (r *Roots) Len() int { return len(r.handles) }

// All iterates over the roots in registration order.
func (r *Roots) All() iter.Seq[*heap.Handle] {
	return slices.Values(r.handles)
}
