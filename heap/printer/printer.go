// Package printer renders a heap's extent directory and occupancy for humans and tools.
package printer

import (
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/heap"
)

const (
	DefaultMaxPayloadBytes = 16
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs human-readable text format.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// ShowAnchor includes the directory's sentinel node as the first entry.
	// Default: false
	ShowAnchor bool

	// ShowPayload includes a hex preview of each extent's payload.
	// Default: false
	ShowPayload bool

	// MaxPayloadBytes limits the payload preview. Set to 0 for no limit.
	// Default: 16
	MaxPayloadBytes int
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:          FormatText,
		ShowAnchor:      false,
		ShowPayload:     false,
		MaxPayloadBytes: DefaultMaxPayloadBytes,
	}
}

// Printer handles formatted output of heap structures.
type Printer struct {
	opts   Options
	writer io.Writer
	h      *heap.Heap
}

// New creates a new Printer for h writing to w.
//
// Example:
//
//	p := printer.New(h, os.Stdout, printer.DefaultOptions())
//	_ = p.PrintExtents()
//	_ = p.PrintStats()
func New(h *heap.Heap, w io.Writer, opts Options) *Printer {
	return &Printer{h: h, writer: w, opts: opts}
}

// PrintExtents prints every extent in directory order.
func (p *Printer) PrintExtents() error {
	if p.h.Closed() {
		return heap.ErrClosed
	}
	switch p.opts.Format {
	case FormatJSON:
		return p.printExtentsJSON()
	case FormatText:
		return p.printExtentsText()
	default:
		return p.printExtentsText()
	}
}

// PrintExtent prints a single extent.
func (p *Printer) PrintExtent(e *heap.Extent) error {
	if p.h.Closed() {
		return heap.ErrClosed
	}
	switch p.opts.Format {
	case FormatJSON:
		return p.printExtentJSON(e)
	case FormatText:
		return p.printExtentText(e)
	default:
		return p.printExtentText(e)
	}
}

// PrintStats prints the heap's occupancy summary.
func (p *Printer) PrintStats() error {
	if p.h.Closed() {
		return heap.ErrClosed
	}
	s := p.h.Stats()
	switch p.opts.Format {
	case FormatJSON:
		return p.printStatsJSON(s)
	case FormatText:
		return p.printStatsText(s)
	default:
		return p.printStatsText(s)
	}
}

// extents returns the nodes to print, starting with the anchor if requested.
func (p *Printer) extents() []*heap.Extent {
	dir := p.h.Directory()
	out := make([]*heap.Extent, 0, dir.Len()+1)
	if p.opts.ShowAnchor {
		out = append(out, dir.Anchor())
	}
	for e := range dir.Iter() {
		out = append(out, e)
	}
	return out
}

// preview returns the payload bytes to show for e, and whether they were truncated.
func (p *Printer) preview(e *heap.Extent) ([]byte, bool) {
	hd := e.Handle()
	if hd == nil {
		return nil, false
	}
	b := hd.Bytes()
	if p.opts.MaxPayloadBytes > 0 && len(b) > p.opts.MaxPayloadBytes {
		return b[:p.opts.MaxPayloadBytes], true
	}
	return b, false
}

func className(hd *heap.Handle) string {
	if hd == nil || hd.Class() == nil {
		return ""
	}
	return hd.Class().Name()
}

func mirror(h *heap.Heap, e *heap.Extent) string {
	if e.IsAnchor() {
		return "-"
	}
	return fmt.Sprintf("%c", h.Bytes()[e.Right()])
}
