package gc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/compact"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/heap/trace"
	"github.com/joshuapare/heapkit/heap/verify"
)

// CollectResult describes one collection.
type CollectResult struct {
	Mark     trace.MarkStats `json:"mark"`
	Compact  compact.Result  `json:"compact"`
	Duration time.Duration   `json:"duration_ns"`
}

// Totals accumulates the results of every collection a Runtime has run.
type Totals struct {
	Collections    uint64        `json:"collections"`
	Marked         uint64        `json:"marked"`
	Reclaimed      uint64        `json:"reclaimed_extents"`
	ReclaimedBytes uint64        `json:"reclaimed_bytes"`
	Moved          uint64        `json:"moved_extents"`
	MovedBytes     uint64        `json:"moved_bytes"`
	Pause          time.Duration `json:"pause_ns"`
}

func (t *Totals) add(res CollectResult) {
	t.Collections++
	t.Marked += uint64(res.Mark.Marked)
	t.Reclaimed += uint64(res.Compact.Reclaimed)
	t.ReclaimedBytes += uint64(res.Compact.ReclaimedBytes)
	t.Moved += uint64(res.Compact.Moved)
	t.MovedBytes += uint64(res.Compact.MovedBytes)
	t.Pause += res.Duration
}

// Runtime is a garbage-collected heap. The zero value is not usable; call New.
type Runtime struct {
	mu sync.Mutex

	h      *heap.Heap
	ba     *alloc.BumpAllocator
	roots  *trace.Roots
	tracer *trace.Tracer
	comp   *compact.Compactor
	dt     *dirty.Tracker

	opts Options
	log  *slog.Logger

	totals   Totals
	poisoned error
}

// New creates a Runtime with its own heap.
func New(opts Options) (*Runtime, error) {
	if opts.Capacity == 0 {
		opts.Capacity = DefaultOptions().Capacity
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var (
		h   *heap.Heap
		err error
	)
	if opts.Path != "" {
		h, err = heap.Open(opts.Path, opts.Capacity)
	} else {
		h, err = heap.New(opts.Capacity)
	}
	if err != nil {
		return nil, fmt.Errorf("gc: create heap: %w", err)
	}

	var dt *dirty.Tracker
	var adt alloc.DirtyTracker
	if h.File() != nil {
		dt = dirty.NewTracker(h)
		adt = dt
	}
	ba, err := alloc.NewBump(h, adt)
	if err != nil {
		h.Close()
		return nil, err
	}
	roots := trace.NewRoots(h)

	return &Runtime{
		h:      h,
		ba:     ba,
		roots:  roots,
		tracer: trace.NewTracer(h, roots),
		comp:   compact.NewCompactor(h, adt),
		dt:     dt,
		opts:   opts,
		log:    log,
	}, nil
}

// Malloc allocates an object of class cls, sized by cls.Size().
func (rt *Runtime) Malloc(cls heap.Class) (*heap.Handle, error) {
	if cls == nil {
		return nil, ErrNilClass
	}
	return rt.Alloc(cls.Size(), cls)
}

// Alloc allocates size payload bytes for an object of class cls, which may be nil for
// opaque bytes. If the tail is too small it collects and retries once.
func (rt *Runtime) Alloc(size int, cls heap.Class) (*heap.Handle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if err := rt.usable(); err != nil {
		return nil, err
	}

	hd, err := rt.ba.Alloc(size, cls)
	if !errors.Is(err, alloc.ErrNoSpace) {
		return hd, err
	}

	if _, cerr := rt.collect(); cerr != nil {
		return nil, cerr
	}

	hd, err = rt.ba.Alloc(size, cls)
	if errors.Is(err, alloc.ErrNoSpace) {
		rt.log.Warn("out of memory",
			"size", size,
			"available", rt.h.Available(),
			"capacity", rt.h.Capacity(),
			"roots", rt.roots.Len())
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d free after collection",
			ErrOutOfMemory, size, rt.h.Available(), rt.h.Capacity())
	}
	return hd, err
}

// Protect adds hd to the root set so it and everything it references survive
// collections.
func (rt *Runtime) Protect(hd *heap.Handle) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if err := rt.usable(); err != nil {
		return err
	}
	return rt.roots.Register(hd)
}

// Unprotect removes hd from the root set.
func (rt *Runtime) Unprotect(hd *heap.Handle) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if err := rt.usable(); err != nil {
		return err
	}
	return rt.roots.Deregister(hd)
}

// Collect marks everything reachable from the roots and compacts the heap. Calling it
// again without allocating in between changes nothing.
func (rt *Runtime) Collect() (CollectResult, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if err := rt.usable(); err != nil {
		return CollectResult{}, err
	}
	return rt.collect()
}

func (rt *Runtime) collect() (CollectResult, error) {
	var res CollectResult
	start := time.Now()

	ms, err := rt.tracer.Mark()
	if err != nil {
		if isCorruption(err) {
			rt.poisoned = err
		}
		return res, fmt.Errorf("gc: mark: %w", err)
	}
	res.Mark = ms

	cr, err := rt.comp.Compact()
	if err != nil {
		if isCorruption(err) {
			rt.poisoned = err
		}
		return res, fmt.Errorf("gc: compact: %w", err)
	}
	res.Compact = cr
	res.Duration = time.Since(start)
	rt.totals.add(res)

	if rt.opts.VerifyAfterCollect {
		if err := verify.Packed(rt.h); err != nil {
			rt.poisoned = err
			return res, fmt.Errorf("gc: verify: %w", err)
		}
	}

	rt.log.Debug("collection",
		"n", rt.totals.Collections,
		"roots", ms.Roots,
		"marked", ms.Marked,
		"reclaimed", cr.Reclaimed,
		"reclaimed_bytes", cr.ReclaimedBytes,
		"moved", cr.Moved,
		"moved_bytes", cr.MovedBytes,
		"next_free", rt.h.NextFree(),
		"duration", res.Duration)
	return res, nil
}

func isCorruption(err error) bool {
	return errors.Is(err, heap.ErrCorruptMarker) ||
		errors.Is(err, heap.ErrBadSlide) ||
		errors.Is(err, compact.ErrInvariant)
}

func (rt *Runtime) usable() error {
	if rt.poisoned != nil {
		return fmt.Errorf("%w: %w", ErrPoisoned, rt.poisoned)
	}
	if rt.h.Closed() {
		return heap.ErrClosed
	}
	return nil
}

// Stats returns the heap's occupancy.
func (rt *Runtime) Stats() heap.Stats {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.h.Stats()
}

// Available returns the bytes between the allocation cursor and the end of the heap.
func (rt *Runtime) Available() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.h.Available()
}

// Resolve returns the live handle with the given ID.
func (rt *Runtime) Resolve(id heap.ID) (*heap.Handle, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.h.Resolve(id)
}

// Roots returns the number of protected handles.
func (rt *Runtime) Roots() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.roots.Len()
}

// Collections returns the number of completed collections.
func (rt *Runtime) Collections() uint64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.totals.Collections
}

// Totals returns the accumulated results of all completed collections.
func (rt *Runtime) Totals() Totals {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.totals
}

// Protected reports whether hd is in the root set.
func (rt *Runtime) Protected(hd *heap.Handle) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.roots.Contains(hd)
}

// AllocStats returns the allocator's counters.
func (rt *Runtime) AllocStats() alloc.Stats {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.ba.Stats()
}

// Inspect calls fn with the underlying heap while holding the Runtime's lock. fn must
// only read: printing, verifying or taking statistics.
func (rt *Runtime) Inspect(fn func(h *heap.Heap) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.h.Closed() {
		return heap.ErrClosed
	}
	return fn(rt.h)
}

// Verify checks the heap's structural invariants.
func (rt *Runtime) Verify() error {
	return rt.Inspect(verify.AllInvariants)
}

// Flush writes the ranges changed since the last flush to the backing file. It is a
// no-op for an in-memory heap.
func (rt *Runtime) Flush(ctx context.Context) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if err := rt.usable(); err != nil {
		return err
	}
	if rt.dt == nil {
		return nil
	}
	return rt.dt.Flush(ctx, rt.opts.Flush)
}

// Close flushes a file-backed heap and releases it. Handles become invalid.
func (rt *Runtime) Close() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.h.Closed() {
		return nil
	}
	var flushErr error
	if rt.dt != nil && rt.poisoned == nil {
		flushErr = rt.dt.Flush(context.Background(), rt.opts.Flush)
	}
	return errors.Join(flushErr, rt.h.Close())
}
