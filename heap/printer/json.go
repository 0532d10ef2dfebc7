package printer

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/joshuapare/heapkit/heap"
)

// jsonExtent represents an extent in JSON format.
type jsonExtent struct {
	Anchor  bool   `json:"anchor,omitempty"`
	Left    int    `json:"left"`
	Right   int    `json:"right"`
	Size    int    `json:"size"`
	Marker  string `json:"marker"`
	Mirror  string `json:"mirror,omitempty"`
	Handle  uint32 `json:"handle,omitempty"`
	Class   string `json:"class,omitempty"`
	Payload string `json:"payload,omitempty"`
}

// jsonStats represents heap occupancy in JSON format.
type jsonStats struct {
	heap.Stats
	NextFree  int `json:"next_free"`
	Available int `json:"available"`
}

func (p *Printer) toJSON(e *heap.Extent) jsonExtent {
	if e.IsAnchor() {
		return jsonExtent{Anchor: true, Marker: e.Marker().String()}
	}
	je := jsonExtent{
		Left:   e.Left(),
		Right:  e.Right(),
		Size:   e.Size(),
		Marker: e.Marker().String(),
		Mirror: mirror(p.h, e),
	}
	if hd := e.Handle(); hd != nil {
		je.Handle = uint32(hd.ID())
		je.Class = className(hd)
	}
	if p.opts.ShowPayload {
		b, _ := p.preview(e)
		je.Payload = hex.EncodeToString(b)
	}
	return je
}

func (p *Printer) printExtentsJSON() error {
	list := p.extents()
	out := make([]jsonExtent, 0, len(list))
	for _, e := range list {
		out = append(out, p.toJSON(e))
	}
	return p.writeJSON(out)
}

func (p *Printer) printExtentJSON(e *heap.Extent) error {
	return p.writeJSON(p.toJSON(e))
}

func (p *Printer) printStatsJSON(s heap.Stats) error {
	return p.writeJSON(jsonStats{Stats: s, NextFree: p.h.NextFree(), Available: p.h.Available()})
}

func (p *Printer) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.writer, "%s\n", data)
	return err
}
