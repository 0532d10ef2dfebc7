// Package heap implements the backing store, extent directory and handle slots of a
// compacting heap.
//
// # Overview
//
// A Heap owns one fixed-capacity byte buffer and a cursor (NextFree) marking the first
// byte not yet claimed by any extent. Every allocation is an Extent: a contiguous byte
// range holding the payload followed by one reserved marker byte. Extents are chained in
// allocation order in a Directory, a singly linked list with a permanent anchor node and
// a cached tail.
//
//	offset 0                                                   capacity
//	|payload A|m|payload B|m|payload C|m|..........free..........|
//	                                    ^ NextFree
//
// # Handles
//
// Clients never receive payload addresses. Allocation returns a *Handle, a stable slot
// that records where the payload currently lives. When the compactor slides an extent
// to the left it rewrites the slot in place, so the *Handle stays valid for the whole
// life of the extent:
//
//	h, _ := a.Alloc(64, cls)
//	copy(h.Bytes(), "hello")   // dereference through the handle
//	_, _ = c.Compact()         // may relocate the payload
//	fmt.Println(h.Bytes()[:5]) // re-dereference after any collection
//
// A slice returned by Handle.Bytes must not be kept across a call that may compact.
//
// Each handle also carries an ID that is never reused within a heap. Objects store
// references to one another as IDs inside their payloads (see RecordClass), which keeps
// references valid across relocation without rewriting payload bytes.
//
// # Liveness markers
//
// The authoritative live/dead state of an extent is the Marker stored in the Extent
// record. The trailing byte of every extent mirrors it ('M' live, 'U' dead). The
// mirror is never used to decide liveness; the compactor compares it with the record
// and refuses to run when they disagree, which catches payload overruns and stray
// writes into the heap.
//
// # Backing stores
//
// New allocates the buffer in process memory. Open maps a file of exactly capacity
// bytes (mmap on linux, darwin and freebsd, a plain buffer elsewhere) so heap images can
// be inspected with external tools. Nothing is read back from an existing file: a heap
// always starts empty.
//
// # Thread Safety
//
// Heap, Directory and Handle are not safe for concurrent use. The pkg/gc Runtime wraps
// them with a mutex.
//
// # Related Packages
//
//   - github.com/joshuapare/heapkit/heap/alloc: bump allocation from the tail
//   - github.com/joshuapare/heapkit/heap/compact: sweep-and-slide compaction
//   - github.com/joshuapare/heapkit/heap/trace: root registry and mark phase
//   - github.com/joshuapare/heapkit/pkg/gc: allocate/collect/retry runtime
package heap
