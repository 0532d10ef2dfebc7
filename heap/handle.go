package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// ID identifies a handle within its heap. IDs are assigned in allocation order starting
// at 1 and are never reused, so a stored ID can never silently point at a newer object.
type ID uint32

// NilID is the ID that refers to no object.
const NilID ID = format.NilRef

// Handle is the stable slot through which a client reaches an extent's payload.
//
// The slot holds the payload's current offset. Compaction rewrites it when the extent
// moves, so the *Handle itself stays valid until the extent is reclaimed. After that,
// Valid reports false and Bytes returns nil.
type Handle struct {
	heap *Heap
	id   ID
	off  int
	n    int
	cls  Class
	ext  *Extent
}

// ID returns the handle's stable identifier.
func (hd *Handle) ID() ID { return hd.id }

// Class returns the class the object was allocated with; it may be nil.
func (hd *Handle) Class() Class { return hd.cls }

// Heap returns the heap that owns the handle.
func (hd *Handle) Heap() *Heap { return hd.heap }

// Valid reports whether the handle's extent is still in the heap.
func (hd *Handle) Valid() bool { return hd != nil && hd.ext != nil && !hd.heap.Closed() }

// Extent returns the extent the handle refers to, or nil once it has been reclaimed.
func (hd *Handle) Extent() *Extent { return hd.ext }

// Offset returns the payload's current offset in the backing store, or -1 when stale.
func (hd *Handle) Offset() int { return hd.off }

// Len returns the payload size in bytes.
func (hd *Handle) Len() int { return hd.n }

// Bytes dereferences the handle. The slice aliases the backing store and is only valid
// until the next compaction; its capacity is clipped so appends cannot reach the marker.
func (hd *Handle) Bytes() []byte {
	if !hd.Valid() {
		return nil
	}
	end := hd.off + hd.n
	return hd.heap.data[hd.off:end:end]
}

// Payload is Bytes with an error for stale handles.
func (hd *Handle) Payload() ([]byte, error) {
	if hd == nil {
		return nil, ErrStaleHandle
	}
	if !hd.Valid() {
		return nil, fmt.Errorf("%w: id %d", ErrStaleHandle, hd.id)
	}
	return hd.Bytes(), nil
}

func (hd *Handle) String() string {
	if hd == nil {
		return "<nil>"
	}
	name := "bytes"
	if hd.cls != nil {
		name = hd.cls.Name()
	}
	if !hd.Valid() {
		return fmt.Sprintf("#%d %s (stale)", hd.id, name)
	}
	return fmt.Sprintf("#%d %s @%d+%d", hd.id, name, hd.off, hd.n)
}
