package heap

import (
	"fmt"
	"math"
	"os"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Heap is one backing store plus the directory of extents carved from it.
// It is backed by process memory (New) or by a mapped file (Open).
type Heap struct {
	f      *os.File
	mapped bool
	data   []byte

	// nextFree is the first byte not claimed by any extent.
	nextFree int

	dir Directory

	// handles maps every live handle ID to its slot. IDs start at 1 and are never reused.
	handles map[ID]*Handle
	lastID  ID
}

// New creates a heap backed by a zeroed in-memory buffer of capacity bytes.
func New(capacity int) (*Heap, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrBadSize, capacity)
	}
	return newHeap(make([]byte, capacity), nil, false), nil
}

func newHeap(data []byte, f *os.File, mapped bool) *Heap {
	return &Heap{
		f:       f,
		mapped:  mapped,
		data:    data,
		handles: make(map[ID]*Handle),
	}
}

// Bytes returns the whole backing buffer.
func (h *Heap) Bytes() []byte { return h.data }

// Capacity returns the fixed size of the backing buffer.
func (h *Heap) Capacity() int { return len(h.data) }

// NextFree returns the offset of the first byte not claimed by any extent.
func (h *Heap) NextFree() int { return h.nextFree }

// Available returns the bytes left between NextFree and the end of the buffer.
// It only accounts for all free space right after a compaction; before that,
// dead extents still occupy their bytes.
func (h *Heap) Available() int { return len(h.data) - h.nextFree }

// SetNextFree moves the allocation cursor. Allocators advance it after carving an
// extent and the compactor rebuilds it from zero while re-laying survivors.
func (h *Heap) SetNextFree(off int) error {
	if off < 0 || off > len(h.data) {
		return fmt.Errorf("heap: cursor %d outside [0, %d]", off, len(h.data))
	}
	h.nextFree = off
	return nil
}

// Directory returns the heap's extent directory.
func (h *Heap) Directory() *Directory { return &h.dir }

// Closed reports whether Close has been called.
func (h *Heap) Closed() bool { return h.data == nil }

// File returns the file backing the heap, or nil for an in-memory heap.
func (h *Heap) File() *os.File { return h.f }

// Mapped reports whether Bytes is a shared memory mapping of File.
func (h *Heap) Mapped() bool { return h.mapped }

// Resolve returns the live handle with the given ID.
func (h *Heap) Resolve(id ID) (*Handle, bool) {
	hd, ok := h.handles[id]
	return hd, ok
}

// HandleCount returns the number of live handles, which equals Directory().Len().
func (h *Heap) HandleCount() int { return len(h.handles) }

// NewExtent builds a dead extent for a payload of size bytes starting at left, together
// with its handle. The extent is not linked into the directory and the cursor is not
// moved; that is the allocator's job.
func (h *Heap) NewExtent(left, size int, cls Class) (*Extent, error) {
	if h.Closed() {
		return nil, ErrClosed
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: payload %d", ErrBadSize, size)
	}
	span := format.Span(size)
	if _, err := buf.CheckRange(len(h.data), left, span); err != nil {
		return nil, fmt.Errorf("heap: extent at %d: %w", left, err)
	}
	if h.lastID == math.MaxUint32 {
		return nil, ErrIDSpace
	}
	h.lastID++

	e := &Extent{
		left:  left,
		right: left + size,
		size:  span,
		mark:  MarkerDead,
	}
	hd := &Handle{
		heap: h,
		id:   h.lastID,
		off:  left,
		n:    size,
		cls:  cls,
		ext:  e,
	}
	e.handle = hd
	h.handles[hd.id] = hd
	h.data[e.right] = MarkerDead.code()
	return e, nil
}

// SetMarker updates an extent's liveness marker and its trailing mirror byte.
func (h *Heap) SetMarker(e *Extent, m Marker) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %v at extent %d", ErrCorruptMarker, m, e.left)
	}
	e.mark = m
	h.data[e.right] = m.code()
	return nil
}

// CheckMarker validates an extent's marker and its mirror byte.
func (h *Heap) CheckMarker(e *Extent) error {
	if !e.mark.Valid() {
		return fmt.Errorf("%w: record holds %v (extent [%d, %d])", ErrCorruptMarker, e.mark, e.left, e.right)
	}
	if got := h.data[e.right]; got != e.mark.code() {
		return fmt.Errorf("%w: byte %d holds 0x%02x, record says %v (extent [%d, %d])",
			ErrCorruptMarker, e.right, got, e.mark, e.left, e.right)
	}
	return nil
}

// Slide relocates an extent so that it starts at newLeft, which must be strictly left
// of its current position. The byte range [left, right] is moved with copy, which has
// memmove semantics for overlapping ranges. left, right and the handle slot are all
// shifted by the same offset. Slide returns that offset.
func (h *Heap) Slide(e *Extent, newLeft int) (int, error) {
	if e.anchor {
		return 0, fmt.Errorf("%w: anchor cannot move", ErrBadSlide)
	}
	if newLeft < 0 || newLeft >= e.left {
		return 0, fmt.Errorf("%w: from %d to %d", ErrBadSlide, e.left, newLeft)
	}
	delta := e.left - newLeft
	copy(h.data[newLeft:newLeft+e.size], h.data[e.left:e.right+1])

	e.left = newLeft
	e.right -= delta
	if e.handle != nil {
		e.handle.off -= delta
	}
	return delta, nil
}

// Release invalidates the handle of an extent that has been unlinked from the directory.
func (h *Heap) Release(e *Extent) {
	hd := e.handle
	if hd == nil {
		return
	}
	delete(h.handles, hd.id)
	hd.ext = nil
	hd.off = -1
	e.handle = nil
}

// ClearMarks resets every extent to dead. The tracer calls it when a mark phase has to be
// abandoned so the next cycle starts unmarked.
func (h *Heap) ClearMarks() {
	for e := h.dir.First(); e != nil; e = e.next {
		e.mark = MarkerDead
		h.data[e.right] = MarkerDead.code()
	}
}
