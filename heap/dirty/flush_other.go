//go:build !linux && !freebsd && !darwin && !windows

package dirty

import (
	"context"
	"errors"
	"os"
)

// flushMapped is never reached on platforms where heaps are not mapped.
func flushMapped(context.Context, []byte, []Range) error {
	return errors.New("dirty: mapped stores are not supported on this platform")
}

func fdatasync(f *os.File, _ bool) error {
	return f.Sync()
}
