//go:build linux || freebsd

package dirty

import (
	"context"
	"os"

	"golang.org/x/sys/unix"
)

// flushMapped flushes individual dirty ranges of a mapping.
//
// On Linux and FreeBSD msync() accepts page-aligned sub-slices of the mapping.
func flushMapped(ctx context.Context, data []byte, ranges []Range) error {
	for _, r := range ranges {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := unix.Msync(data[r.Off:r.Off+r.Len], unix.MS_SYNC); err != nil {
			return err
		}
	}
	return nil
}

// fdatasync syncs file data. The fullfsync flag only matters on macOS.
func fdatasync(f *os.File, _ bool) error {
	return unix.Fdatasync(int(f.Fd()))
}
