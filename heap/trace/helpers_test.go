package trace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

// node is a record with two reference slots and four data bytes.
var node = heap.NewRecord("node", 2, 4)

type fixture struct {
	h     *heap.Heap
	ba    *alloc.BumpAllocator
	roots *Roots
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	h, err := heap.New(1 << 16)
	require.NoError(t, err)
	ba, err := alloc.NewBump(h, nil)
	require.NoError(t, err)
	return &fixture{h: h, ba: ba, roots: NewRoots(h)}
}

func (f *fixture) node(t testing.TB) *heap.Handle {
	t.Helper()
	hd, err := f.ba.Alloc(node.Size(), node)
	require.NoError(t, err)
	return hd
}

func (f *fixture) blob(t testing.TB, n int) *heap.Handle {
	t.Helper()
	hd, err := f.ba.Alloc(n, heap.NewBlob("blob", n))
	require.NoError(t, err)
	return hd
}

func link(t testing.TB, from *heap.Handle, slot int, to *heap.Handle) {
	t.Helper()
	require.NoError(t, node.SetRef(from, slot, to))
}

func (f *fixture) mark(t testing.TB) MarkStats {
	t.Helper()
	stats, err := NewTracer(f.h, f.roots).Mark()
	require.NoError(t, err)
	return stats
}

func live(hds ...*heap.Handle) []bool {
	out := make([]bool, len(hds))
	for i, hd := range hds {
		out[i] = hd.Extent().Live()
	}
	return out
}
