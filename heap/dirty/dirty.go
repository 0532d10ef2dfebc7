package dirty

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	defaultRangeCapacity = 64
)

// FlushMode controls durability guarantees for a flush.
type FlushMode int

const (
	// FlushAuto syncs dirty ranges and then fdatasyncs the file.
	FlushAuto FlushMode = iota

	// FlushDataOnly only syncs the dirty ranges. The caller is responsible for a
	// later file sync.
	FlushDataOnly

	// FlushFull is FlushAuto plus F_FULLFSYNC on macOS.
	FlushFull
)

// Range represents a dirty byte range of the backing store.
type Range struct {
	Off int64 // Offset in the backing store
	Len int64 // Length in bytes
}

// Tracker accumulates dirty ranges and flushes them efficiently.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	h        *heap.Heap
	ranges   []Range // Raw ranges, coalesced at flush time
	pageSize int64
}

// NewTracker creates a dirty tracker for the given heap.
func NewTracker(h *heap.Heap) *Tracker {
	return &Tracker{
		h:        h,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: format.PageSize,
	}
}

// Add records a dirty range. Empty ranges are ignored.
func (t *Tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
}

// Pending returns the number of raw ranges recorded since the last flush.
func (t *Tracker) Pending() int { return len(t.ranges) }

// Flush persists all recorded ranges and clears them.
//
// The context is checked between ranges. If it is cancelled mid-flush some ranges
// may already be on disk while the rest stay recorded for the next attempt.
func (t *Tracker) Flush(ctx context.Context, mode FlushMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f := t.h.File()
	if f == nil {
		t.ranges = t.ranges[:0]
		return nil
	}
	data := t.h.Bytes()
	if data == nil {
		return heap.ErrClosed
	}

	if len(t.ranges) > 0 {
		ranges := clampRanges(t.coalesce(), int64(len(data)))
		var err error
		if t.h.Mapped() {
			err = flushMapped(ctx, data, ranges)
		} else {
			err = writeBack(ctx, f, data, ranges)
		}
		if err != nil {
			return err
		}
		t.ranges = t.ranges[:0]
	}

	if mode == FlushDataOnly {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fdatasync(f, mode == FlushFull)
}

// writeBack copies ranges of an unmapped store into its file.
func writeBack(ctx context.Context, f *os.File, data []byte, ranges []Range) error {
	for _, r := range ranges {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := f.WriteAt(data[r.Off:r.Off+r.Len], r.Off); err != nil {
			return fmt.Errorf("dirty: write back [%d, %d): %w", r.Off, r.Off+r.Len, err)
		}
	}
	return nil
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// DebugRanges returns a copy of the raw, uncoalesced ranges.
func (t *Tracker) DebugRanges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// DebugCoalescedRanges returns the page-aligned, merged ranges a flush would write.
func (t *Tracker) DebugCoalescedRanges() []Range {
	return t.coalesce()
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping/adjacent ranges.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize

		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}

		aligned[i] = Range{
			Off: start,
			Len: end - start,
		}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]

	for i := 1; i < len(aligned); i++ {
		next := aligned[i]

		if next.Off <= current.Off+current.Len {
			end := current.Off + current.Len
			nextEnd := next.Off + next.Len
			if nextEnd > end {
				end = nextEnd
			}
			current.Len = end - current.Off
		} else {
			merged = append(merged, current)
			current = next
		}
	}

	return append(merged, current)
}

// clampRanges trims page-aligned ranges to the store length; heap capacities need not
// be page multiples.
func clampRanges(ranges []Range, limit int64) []Range {
	out := ranges[:0]
	for _, r := range ranges {
		if r.Off >= limit {
			continue
		}
		if r.Off+r.Len > limit {
			r.Len = limit - r.Off
		}
		out = append(out, r)
	}
	return out
}
