package verify

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap"
)

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates every invariant that holds at any point between operations.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(h *heap.Heap) error {
	if err := Directory(h); err != nil {
		return err
	}
	if err := Markers(h); err != nil {
		return err
	}
	if err := Cursor(h); err != nil {
		return err
	}
	return Handles(h)
}

// Directory validates extent ordering, bounds and size bookkeeping.
func Directory(h *heap.Heap) error {
	if h.Closed() {
		return &ValidationError{Type: "Directory", Message: "heap is closed", Offset: -1}
	}
	dir := h.Directory()
	capacity := h.Capacity()

	count := 0
	prevRight := -1
	var last *heap.Extent
	for e := dir.First(); e != nil; e = e.Next() {
		count++
		if e.Left() < 0 || e.Right() >= capacity {
			return &ValidationError{
				Type:    "Directory",
				Message: fmt.Sprintf("extent [%d, %d] outside buffer of %d bytes", e.Left(), e.Right(), capacity),
				Offset:  e.Left(),
			}
		}
		if e.Right() < e.Left() || e.Size() != e.Right()-e.Left()+1 {
			return &ValidationError{
				Type:    "Directory",
				Message: fmt.Sprintf("size %d inconsistent with [%d, %d]", e.Size(), e.Left(), e.Right()),
				Offset:  e.Left(),
			}
		}
		if e.Left() <= prevRight {
			return &ValidationError{
				Type:    "Directory",
				Message: fmt.Sprintf("extent starts at %d, previous marker at %d", e.Left(), prevRight),
				Offset:  e.Left(),
				Details: map[string]any{"prev_right": prevRight},
			}
		}
		prevRight = e.Right()
		last = e
	}

	if count != dir.Len() {
		return &ValidationError{
			Type:    "Directory",
			Message: fmt.Sprintf("chain has %d extents, length says %d", count, dir.Len()),
			Offset:  -1,
		}
	}
	if (last == nil && !dir.Tail().IsAnchor()) || (last != nil && dir.Tail() != last) {
		return &ValidationError{
			Type:    "Directory",
			Message: fmt.Sprintf("cached tail %v is not the last node", dir.Tail()),
			Offset:  -1,
		}
	}
	return nil
}

// Markers validates every extent's marker and mirror byte.
func Markers(h *heap.Heap) error {
	return h.Directory().Walk(func(e *heap.Extent) error {
		if err := h.CheckMarker(e); err != nil {
			return &ValidationError{Type: "Markers", Message: err.Error(), Offset: e.Right()}
		}
		return nil
	})
}

// Cursor validates that NextFree is inside the buffer and past the last extent.
func Cursor(h *heap.Heap) error {
	next := h.NextFree()
	if next < 0 || next > h.Capacity() {
		return &ValidationError{
			Type:    "Cursor",
			Message: fmt.Sprintf("next free %d outside [0, %d]", next, h.Capacity()),
			Offset:  -1,
		}
	}
	if last := h.Directory().Last(); last != nil && next <= last.Right() {
		return &ValidationError{
			Type:    "Cursor",
			Message: fmt.Sprintf("next free %d inside last extent [%d, %d]", next, last.Left(), last.Right()),
			Offset:  next,
		}
	}
	return nil
}

// Handles validates the handle of every extent.
func Handles(h *heap.Heap) error {
	err := h.Directory().Walk(func(e *heap.Extent) error {
		hd := e.Handle()
		if hd == nil || hd.Extent() != e {
			return &ValidationError{Type: "Handles", Message: "extent without its handle", Offset: e.Left()}
		}
		if hd.Offset() != e.Left() || hd.Len() != e.PayloadSize() {
			return &ValidationError{
				Type:    "Handles",
				Message: fmt.Sprintf("handle %v does not match extent [%d, %d]", hd, e.Left(), e.Right()),
				Offset:  e.Left(),
			}
		}
		if got, ok := h.Resolve(hd.ID()); !ok || got != hd {
			return &ValidationError{
				Type:    "Handles",
				Message: fmt.Sprintf("id %d does not resolve to its handle", hd.ID()),
				Offset:  e.Left(),
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if h.HandleCount() != h.Directory().Len() {
		return &ValidationError{
			Type:    "Handles",
			Message: fmt.Sprintf("%d live handles for %d extents", h.HandleCount(), h.Directory().Len()),
			Offset:  -1,
		}
	}
	return nil
}

// Packed validates the state a compaction leaves behind: extents back to back from
// offset 0, NextFree equal to their total size, and every marker reset to dead.
func Packed(h *heap.Heap) error {
	if err := AllInvariants(h); err != nil {
		return err
	}
	next := 0
	err := h.Directory().Walk(func(e *heap.Extent) error {
		if e.Left() != next {
			return &ValidationError{
				Type:    "Packed",
				Message: fmt.Sprintf("gap of %d bytes before extent", e.Left()-next),
				Offset:  next,
			}
		}
		if e.Live() {
			return &ValidationError{Type: "Packed", Message: "survivor still marked live", Offset: e.Right()}
		}
		next += e.Size()
		return nil
	})
	if err != nil {
		return err
	}
	if next != h.NextFree() {
		return &ValidationError{
			Type:    "Packed",
			Message: fmt.Sprintf("next free %d, survivors occupy %d", h.NextFree(), next),
			Offset:  -1,
		}
	}
	return nil
}
