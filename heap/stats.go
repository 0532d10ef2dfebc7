package heap

import "fmt"

// Stats summarises heap occupancy.
type Stats struct {
	Extents  int `json:"extents"`
	Used     int `json:"used_bytes"`
	Free     int `json:"free_bytes"`
	Capacity int `json:"capacity"`
}

// Stats scans the directory and reports the extent count, the bytes they occupy
// (marker bytes included) and capacity minus that. It has no side effects and is not
// meaningful while a compaction is in progress.
func (h *Heap) Stats() Stats {
	s := Stats{Capacity: len(h.data)}
	for e := h.dir.First(); e != nil; e = e.next {
		s.Extents++
		s.Used += e.size
	}
	s.Free = s.Capacity - s.Used
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("extents=%d used=%d free=%d capacity=%d", s.Extents, s.Used, s.Free, s.Capacity)
}
