//go:build linux || darwin || freebsd

package heap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Open creates (or truncates) the file at path to exactly capacity bytes and maps it
// read-write so the heap's backing store is the file itself. The heap starts empty.
func Open(path string, capacity int) (*Heap, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrBadSize, capacity)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(capacity)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("heap: size backing file: %w", err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, capacity, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("heap: mmap failed: %w", err)
	}
	return newHeap(data, f, true), nil
}

// Close unmaps a file-backed heap and closes its file. Every handle becomes unusable.
func (h *Heap) Close() error {
	var err error
	if h.data != nil && h.mapped {
		err = unix.Munmap(h.data)
	}
	h.data = nil
	if h.f != nil {
		if cerr := h.f.Close(); err == nil {
			err = cerr
		}
		h.f = nil
	}
	return err
}
