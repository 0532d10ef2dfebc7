package gc

import (
	"log/slog"

	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/internal/format"
)

// Options configures a Runtime.
//
// Use DefaultOptions() for production-ready defaults.
type Options struct {
	// Capacity is the fixed size of the backing store in bytes.
	// Default: 32 MiB (format.DefaultCapacity)
	Capacity int

	// Path backs the heap with a file of Capacity bytes instead of process memory.
	// The file is created or truncated; nothing in it is read back.
	// Default: "" (in-memory)
	Path string

	// Flush controls durability when Flush or Close writes a file-backed heap.
	// Default: dirty.FlushAuto
	Flush dirty.FlushMode

	// VerifyAfterCollect runs verify.Packed after every collection and poisons the
	// Runtime if it fails. Costs a full directory scan per collection.
	// Default: false
	VerifyAfterCollect bool

	// Logger receives a Debug record per collection and a Warn record per
	// out-of-memory failure.
	// Default: nil (discard)
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults for a Runtime.
func DefaultOptions() Options {
	return Options{
		Capacity:           format.DefaultCapacity,
		Path:               "",
		Flush:              dirty.FlushAuto,
		VerifyAfterCollect: false,
		Logger:             nil,
	}
}
