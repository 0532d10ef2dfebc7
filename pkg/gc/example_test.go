package gc_test

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/pkg/gc"
)

// Example shows allocation, rooting and a collection.
func Example() {
	opts := gc.DefaultOptions()
	opts.Capacity = 4096
	rt, err := gc.New(opts)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer rt.Close()

	pair := heap.NewRecord("pair", 2, 0)
	root, _ := rt.Malloc(pair)
	_ = rt.Protect(root)

	left, _ := rt.Malloc(heap.NewBlob("left", 100))
	_, _ = rt.Malloc(heap.NewBlob("garbage", 500))
	_ = pair.SetRef(root, 0, left)

	res, err := rt.Collect()
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.Compact)
	fmt.Println(rt.Stats())
	// Output:
	// survivors=2 reclaimed=1 (501 bytes) moved=0 (0 bytes)
	// extents=2 used=110 free=3986 capacity=4096
}
