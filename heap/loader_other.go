//go:build !linux && !darwin && !freebsd

package heap

import (
	"fmt"
	"os"
)

// Open creates (or truncates) the file at path to exactly capacity bytes and keeps the
// heap in memory; heap/dirty writes modified ranges back to the file on flush.
func Open(path string, capacity int) (*Heap, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrBadSize, capacity)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(capacity)); err != nil {
		f.Close()
		return nil, fmt.Errorf("heap: size backing file: %w", err)
	}
	return newHeap(make([]byte, capacity), f, false), nil
}

// Close releases the buffer and closes the backing file, if any.
func (h *Heap) Close() error {
	var err error
	h.data = nil
	if h.f != nil {
		err = h.f.Close()
		h.f = nil
	}
	return err
}
