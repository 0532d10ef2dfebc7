//go:build darwin

package dirty

import (
	"context"
	"os"

	"golang.org/x/sys/unix"
)

// flushMapped flushes a mapping.
//
// On macOS msync() requires the address to match the original mmap() address, so
// sub-slices cannot be passed. The whole mapping is synced; the kernel only writes
// pages that are actually dirty.
func flushMapped(ctx context.Context, data []byte, _ []Range) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return unix.Msync(data, unix.MS_SYNC)
}

// fdatasync syncs the file, with F_FULLFSYNC when fullfsync is set.
func fdatasync(f *os.File, fullfsync bool) error {
	if fullfsync {
		_, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0)
		return err
	}
	// macOS doesn't have fdatasync, use fsync
	return unix.Fsync(int(f.Fd()))
}
