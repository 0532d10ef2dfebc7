// Package format houses the low-level layout constants and byte helpers shared by
// the heap packages. Nothing here knows about extents or handles; it only fixes
// the numbers that every layer has to agree on.
package format

const (
	// DefaultCapacity is the backing store size used when none is configured (32 MiB).
	DefaultCapacity = 32 << 20

	// MarkerSize is the number of bytes reserved after every payload for the
	// liveness marker mirror.
	MarkerSize = 1

	// RefSize is the encoded size of an object reference (a little-endian uint32 ID).
	RefSize = 4

	// NilRef is the reference value meaning "no object".
	NilRef = 0

	// PageSize is the granularity used when page-aligning dirty ranges.
	PageSize = 4096
)

// Marker byte codes written into the reserved trailing byte of each extent.
// 'U' and 'M' keep heap images readable in a hex dump.
const (
	MarkerCodeDead byte = 'U'
	MarkerCodeLive byte = 'M'
)

// Span returns the number of backing-store bytes an extent with the given
// payload size occupies, marker included.
func Span(payload int) int {
	return payload + MarkerSize
}
