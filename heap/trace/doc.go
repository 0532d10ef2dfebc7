// Package trace decides which extents survive the next compaction.
//
// A Roots registry holds the handles the client declares reachable. Tracer.Mark walks
// the object graph from every root, following the references each object's
// heap.Class reports, and sets every reached extent live. Everything left dead is
// garbage as far as heap/compact is concerned.
//
// The traversal is an iterative depth-first search with an explicit stack, so deep
// chains cannot overflow the goroutine stack. The live marker doubles as the visited
// set: an extent that is already live is never pushed again, which makes cycles safe.
//
// Example:
//
//	roots := trace.NewRoots(h)
//	_ = roots.Register(list)
//	stats, err := trace.NewTracer(h, roots).Mark()
//	if err != nil {
//	    return err // marks have been cleared
//	}
//	res, err := compact.Compact(h)
package trace
