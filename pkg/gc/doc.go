/*
Package gc is a compacting garbage-collected heap for a managed-object runtime.

A Runtime owns one fixed-capacity heap, a bump allocator over it, a root set and a
compactor. Allocation always happens at the tail. When the tail is too small, the
Runtime marks everything reachable from the protected roots, compacts the heap and
retries the request exactly once.

# Quick Start

	rt, err := gc.New(gc.DefaultOptions())
	if err != nil {
	    log.Fatal(err)
	}
	defer rt.Close()

	node := heap.NewRecord("node", 1, 8)
	head, err := rt.Malloc(node)
	if err != nil {
	    log.Fatal(err)
	}
	_ = rt.Protect(head)

	next, _ := rt.Malloc(node)
	_ = node.SetRef(head, 0, next) // next is reachable through head

# Handles

Malloc returns a *heap.Handle. The handle stays valid across collections because the
compactor rewrites its slot when the object moves. The slice returned by Handle.Bytes
does not: re-fetch it after any call that may collect (Malloc, Alloc, Collect).

References between objects are stored as heap.ID values inside payloads and resolved
with Runtime.Resolve, never as byte offsets.

# Failures

  - heap.ErrCapacityExceeded: the request can never fit; no collection is attempted
  - ErrOutOfMemory: the request did not fit even after a collection
  - ErrPoisoned: an earlier collection found a corrupted heap; the Runtime is unusable

# Thread Safety

All Runtime methods are safe for concurrent use. A collection holds the Runtime's lock
for its whole duration, so it is a stop-the-world pause for every other caller.
*/
package gc
