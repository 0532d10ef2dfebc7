// Package dirty tracks which byte ranges of a heap's backing store have been written
// and flushes them to the backing file.
//
// Allocators record every carved extent and the compactor records every relocated one.
// For a file-backed heap (heap.Open) Flush page-aligns and coalesces the ranges, then
// syncs them with msync on mapped stores (FlushViewOfFile on Windows) or writes them
// back with WriteAt when the store is a plain buffer. In-memory heaps have nothing to
// flush and Flush only clears the ranges.
package dirty
