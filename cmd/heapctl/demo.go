package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/printer"
	"github.com/joshuapare/heapkit/pkg/gc"
)

var (
	demoShowAnchor  bool
	demoShowPayload bool
)

func init() {
	cmd := newDemoCmd()
	cmd.Flags().BoolVar(&demoShowAnchor, "anchor", false, "Include the directory anchor in extent listings")
	cmd.Flags().BoolVar(&demoShowPayload, "payload", false, "Include a hex preview of each payload")
	rootCmd.AddCommand(cmd)
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Replay the reference allocate/collect scenario",
		Long: `The demo command allocates 250 and 1000 bytes, keeps only the second
object as a root, collects, and then allocates 499999 and 4999999 bytes, printing
the extent directory and heap status between steps.

Example:
  heapctl demo
  heapctl demo --payload --anchor
  heapctl demo --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
	return cmd
}

// demoStep records the heap after one step of the demo.
type demoStep struct {
	Step     string            `json:"step"`
	Stats    heap.Stats        `json:"stats"`
	NextFree int               `json:"next_free"`
	Collect  *gc.CollectResult `json:"collect,omitempty"`
}

const demoRule = "------------------------------------------------------------------"

func runDemo() error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	opts := printer.DefaultOptions()
	opts.ShowAnchor = demoShowAnchor
	opts.ShowPayload = demoShowPayload

	var steps []demoStep
	record := func(name string, res *gc.CollectResult) error {
		return rt.Inspect(func(h *heap.Heap) error {
			steps = append(steps, demoStep{Step: name, Stats: h.Stats(), NextFree: h.NextFree(), Collect: res})
			return nil
		})
	}
	show := func(fn func(h *heap.Heap, p *printer.Printer) error) error {
		if jsonOut || quiet {
			return nil
		}
		return rt.Inspect(func(h *heap.Heap) error {
			return fn(h, printer.New(h, stdout, opts))
		})
	}
	rule := func() {
		if !jsonOut {
			printInfo("\n%s\n", demoRule)
		}
	}
	extents := func(_ *heap.Heap, p *printer.Printer) error { return p.PrintExtents() }
	stats := func(_ *heap.Heap, p *printer.Printer) error { return p.PrintStats() }

	if _, err := rt.Alloc(250, nil); err != nil {
		return fmt.Errorf("allocate 250 bytes: %w", err)
	}
	kept, err := rt.Alloc(1000, nil)
	if err != nil {
		return fmt.Errorf("allocate 1000 bytes: %w", err)
	}
	copy(kept.Bytes(), "survivor")
	if err := rt.Protect(kept); err != nil {
		return err
	}
	if err := record("allocate 250, 1000", nil); err != nil {
		return err
	}
	if err := show(func(_ *heap.Heap, p *printer.Printer) error {
		if err := p.PrintStats(); err != nil {
			return err
		}
		return p.PrintExtents()
	}); err != nil {
		return err
	}

	rule()
	res, err := rt.Collect()
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	printVerbose("Collected: %v in %v\n", res.Compact, res.Duration)
	if err := record("collect", &res); err != nil {
		return err
	}
	if err := show(extents); err != nil {
		return err
	}

	rule()
	if err := show(func(h *heap.Heap, p *printer.Printer) error {
		if last := h.Directory().Last(); last != nil {
			return p.PrintExtent(last)
		}
		return nil
	}); err != nil {
		return err
	}

	for _, n := range []int{499999, 4999999} {
		if _, err := rt.Alloc(n, nil); err != nil {
			return fmt.Errorf("allocate %s bytes: %w", formatNumber(int64(n)), err)
		}
	}
	if err := record("allocate 499999, 4999999", nil); err != nil {
		return err
	}

	rule()
	if err := show(extents); err != nil {
		return err
	}
	rule()
	if err := show(stats); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(steps)
	}
	last := steps[len(steps)-1]
	printInfo("free position is now %s\n", formatNumber(int64(last.NextFree)))
	printVerbose("%s\n", strings.TrimSpace(last.Stats.String()))
	return nil
}
