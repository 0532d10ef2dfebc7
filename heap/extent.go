package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// Marker is the liveness state of an extent.
type Marker uint8

const (
	// MarkerDead means the extent was not reached by the last mark phase. Fresh extents
	// start dead and compaction resets survivors to dead.
	MarkerDead Marker = Marker(format.MarkerCodeDead)

	// MarkerLive means the extent was reached from a root.
	MarkerLive Marker = Marker(format.MarkerCodeLive)
)

// Valid reports whether m is exactly one of MarkerLive or MarkerDead.
func (m Marker) Valid() bool {
	return m == MarkerLive || m == MarkerDead
}

func (m Marker) code() byte { return byte(m) }

func (m Marker) String() string {
	switch m {
	case MarkerLive:
		return "live"
	case MarkerDead:
		return "dead"
	default:
		return fmt.Sprintf("Marker(0x%02x)", uint8(m))
	}
}

// Extent describes one allocation: payload bytes [left, right) and the marker byte at right.
type Extent struct {
	left  int
	right int
	size  int // payload + marker byte

	mark   Marker
	handle *Handle
	next   *Extent

	anchor bool
}

// Left returns the offset of the first payload byte.
func (e *Extent) Left() int { return e.left }

// Right returns the offset of the marker byte, one past the last payload byte.
func (e *Extent) Right() int { return e.right }

// Size returns the number of bytes the extent occupies, marker included.
func (e *Extent) Size() int { return e.size }

// PayloadSize returns the number of client-visible bytes.
func (e *Extent) PayloadSize() int {
	if e.anchor {
		return 0
	}
	return e.size - format.MarkerSize
}

// Marker returns the liveness marker stored in the record.
func (e *Extent) Marker() Marker { return e.mark }

// Live reports whether the extent is marked live.
func (e *Extent) Live() bool { return e.mark == MarkerLive }

// Handle returns the extent's handle slot; nil for the anchor.
func (e *Extent) Handle() *Handle { return e.handle }

// Next returns the following extent in allocation order, or nil at the end of the chain.
func (e *Extent) Next() *Extent { return e.next }

// IsAnchor reports whether e is the directory's permanent sentinel.
func (e *Extent) IsAnchor() bool { return e.anchor }

func (e *Extent) String() string {
	if e.anchor {
		return "anchor"
	}
	return fmt.Sprintf("extent[%d,%d] size=%d %v", e.left, e.right, e.size, e.mark)
}
