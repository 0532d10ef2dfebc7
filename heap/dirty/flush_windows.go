//go:build windows

package dirty

import (
	"context"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// flushMapped flushes a mapped view with FlushViewOfFile.
func flushMapped(ctx context.Context, data []byte, _ []Range) error {
	if len(data) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := uintptr(unsafe.Pointer(&data[0]))
	return windows.FlushViewOfFile(addr, uintptr(len(data)))
}

// fdatasync flushes file buffers. The fullfsync flag only matters on macOS.
func fdatasync(f *os.File, _ bool) error {
	return windows.FlushFileBuffers(windows.Handle(f.Fd()))
}
