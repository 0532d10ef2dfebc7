// Package verify checks the structural invariants of a heap.
//
// # Overview
//
// The checks are read-only and are used by tests after every allocation and
// compaction scenario, and by heapctl after each simulated cycle.
//
// Validation categories:
//   - Directory: extents ordered, non-overlapping, inside the buffer, sizes consistent
//   - Markers: every record holds live or dead and its mirror byte agrees
//   - Cursor: NextFree sits at or after the last extent's marker byte
//   - Handles: every extent's handle resolves to it and points at its payload
//   - Packed: no gaps, cursor equals the survivors' total size, everything dead
//
// # Quick Start
//
//	if err := verify.AllInvariants(h); err != nil {
//	    var verr *verify.ValidationError
//	    if errors.As(err, &verr) {
//	        fmt.Printf("%s at 0x%X: %s\n", verr.Type, verr.Offset, verr.Message)
//	    }
//	}
//
// After a compaction, Packed additionally asserts that the heap is gap-free:
//
//	res, _ := compact.Compact(h)
//	if err := verify.Packed(h); err != nil {
//	    t.Fatalf("compaction left a gap: %v", err)
//	}
//
// # Limitations
//
// verify does not follow references between objects; a dangling reference is only
// detected by the tracer.
package verify
