package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Class describes a kind of object: how many payload bytes it needs and which other
// objects it references. The tracer calls Refs on every reached object to find its
// children, so Refs must only report IDs actually stored in payload.
type Class interface {
	Name() string
	Size() int
	Refs(payload []byte, visit func(ID))
}

// BlobClass is an object with opaque bytes and no references.
type BlobClass struct {
	name string
	size int
}

// NewBlob returns a class of size opaque bytes.
func NewBlob(name string, size int) *BlobClass {
	return &BlobClass{name: name, size: size}
}

func (c *BlobClass) Name() string { return c.name }

func (c *BlobClass) Size() int { return c.size }

func (c *BlobClass) Refs(_ []byte, _ func(ID)) {}

// RecordClass is an object whose payload starts with a fixed number of reference slots
// (little-endian uint32 IDs, NilID for none) followed by dataSize raw bytes.
//
//	| slot 0 | slot 1 | ... | slot n-1 | data ... |
type RecordClass struct {
	name     string
	slots    int
	dataSize int
}

// NewRecord returns a record class with the given number of reference slots and data bytes.
func NewRecord(name string, slots, dataSize int) *RecordClass {
	return &RecordClass{name: name, slots: slots, dataSize: dataSize}
}

func (c *RecordClass) Name() string { return c.name }

// Slots returns the number of reference slots.
func (c *RecordClass) Slots() int { return c.slots }

func (c *RecordClass) Size() int {
	n, ok := buf.MulOverflowSafe(c.slots, format.RefSize)
	if !ok {
		return -1
	}
	return n + c.dataSize
}

func (c *RecordClass) Refs(payload []byte, visit func(ID)) {
	for i := 0; i < c.slots; i++ {
		slot, ok := buf.Slice(payload, i*format.RefSize, format.RefSize)
		if !ok {
			return
		}
		if id := ID(buf.U32LE(slot)); id != NilID {
			visit(id)
		}
	}
}

// SetRef stores target's ID in slot i of obj. A nil target clears the slot.
func (c *RecordClass) SetRef(obj *Handle, i int, target *Handle) error {
	slot, err := c.slot(obj, i)
	if err != nil {
		return err
	}
	id := NilID
	if target != nil {
		if !target.Valid() {
			return fmt.Errorf("%w: ref target id %d", ErrStaleHandle, target.id)
		}
		if target.heap != obj.heap {
			return ErrForeignHandle
		}
		id = target.id
	}
	buf.PutU32LE(slot, uint32(id))
	return nil
}

// Ref returns the ID stored in slot i of obj.
func (c *RecordClass) Ref(obj *Handle, i int) (ID, error) {
	slot, err := c.slot(obj, i)
	if err != nil {
		return NilID, err
	}
	return ID(buf.U32LE(slot)), nil
}

// Data returns the raw bytes after the reference slots.
func (c *RecordClass) Data(obj *Handle) ([]byte, error) {
	p, err := obj.Payload()
	if err != nil {
		return nil, err
	}
	d, ok := buf.Slice(p, c.slots*format.RefSize, c.dataSize)
	if !ok {
		return nil, fmt.Errorf("heap: %s payload of %d bytes too small for record", c.name, len(p))
	}
	return d, nil
}

func (c *RecordClass) slot(obj *Handle, i int) ([]byte, error) {
	if i < 0 || i >= c.slots {
		return nil, fmt.Errorf("%w: %d of %d", ErrSlotRange, i, c.slots)
	}
	p, err := obj.Payload()
	if err != nil {
		return nil, err
	}
	s, ok := buf.Slice(p, i*format.RefSize, format.RefSize)
	if !ok {
		return nil, fmt.Errorf("%w: %d beyond %d-byte payload", ErrSlotRange, i, len(p))
	}
	return s, nil
}

var (
	_ Class = (*BlobClass)(nil)
	_ Class = (*RecordClass)(nil)
)
