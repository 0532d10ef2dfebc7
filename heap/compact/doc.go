// Package compact reclaims dead extents and slides survivors to the front of the heap.
//
// Compact is the only way space comes back to a heap. It assumes a mark phase
// (heap/trace) has just set every reachable extent live, and in one pass over the
// directory it:
//
//   - unlinks every extent still marked dead and invalidates its handle
//   - moves every live extent left so it starts right after the previous survivor
//   - resets survivors to dead for the next cycle
//   - leaves NextFree equal to the total size of the survivors
//
// Before anything is touched, every marker is validated against its mirror byte. A
// corrupted marker aborts the pass with heap.ErrCorruptMarker and the heap is left
// exactly as it was.
//
//	before: |A(live)|B(dead)|C(dead)|D(live)|.......|
//	after:  |A|D|...................................|
//	                ^ NextFree
//
// Handles of moved extents are rewritten in place, so clients holding a *heap.Handle
// keep reaching their object. Slices previously returned by Handle.Bytes are not
// updated and must be re-fetched.
package compact
