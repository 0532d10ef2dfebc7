package heap

import (
	"fmt"
	"iter"
)

// Directory is the chain of extents in allocation (and memory) order.
//
// It starts with a permanent anchor that carries no data and is never removed, and it
// caches the tail so Append is O(1). The zero value is an empty directory.
type Directory struct {
	anchor Extent
	tail   *Extent
	n      int
}

func (d *Directory) lazyInit() {
	if d.tail == nil {
		d.anchor.anchor = true
		d.anchor.mark = MarkerDead
		d.tail = &d.anchor
	}
}

// Anchor returns the sentinel node. Its successor is the first extent.
func (d *Directory) Anchor() *Extent {
	d.lazyInit()
	return &d.anchor
}

// First returns the first extent, or nil when the directory is empty.
func (d *Directory) First() *Extent { return d.anchor.next }

// Tail returns the last node of the chain, which is the anchor when the directory is empty.
func (d *Directory) Tail() *Extent {
	d.lazyInit()
	return d.tail
}

// Last returns the last extent, or nil when the directory is empty.
func (d *Directory) Last() *Extent {
	if t := d.Tail(); !t.anchor {
		return t
	}
	return nil
}

// Len returns the number of extents, excluding the anchor.
func (d *Directory) Len() int { return d.n }

// Append links e after the current tail.
func (d *Directory) Append(e *Extent) {
	d.lazyInit()
	e.next = nil
	d.tail.next = e
	d.tail = e
	d.n++
}

// RemoveAfter unlinks the successor of prev and returns it, or nil when prev is the
// last node. The caller must read the successor's Next before calling if it intends
// to keep walking: the removed node is detached.
func (d *Directory) RemoveAfter(prev *Extent) *Extent {
	d.lazyInit()
	cur := prev.next
	if cur == nil {
		return nil
	}
	prev.next = cur.next
	cur.next = nil
	if d.tail == cur {
		d.tail = prev
	}
	d.n--
	return cur
}

// SetTail records e as the last node. e must be the anchor or an extent with no successor.
func (d *Directory) SetTail(e *Extent) error {
	d.lazyInit()
	if e.next != nil {
		return fmt.Errorf("heap: tail %v has a successor", e)
	}
	d.tail = e
	return nil
}

// Walk calls fn for every extent in order, stopping at the first error.
func (d *Directory) Walk(fn func(*Extent) error) error {
	for e := d.First(); e != nil; e = e.next {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// Iter returns an iterator over the extents in order. The directory must not be
// modified while iterating.
func (d *Directory) Iter() iter.Seq[*Extent] {
	return func(yield func(*Extent) bool) {
		for e := d.First(); e != nil; e = e.next {
			if !yield(e) {
				return
			}
		}
	}
}
