package main

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/pkg/gc"
)

var (
	simRounds    int
	simBatch     int
	simMaxSize   int
	simKeep      float64
	simLink      float64
	simRelease   float64
	simSeed      int64
	simMap       bool
	simMapWidth  int
	simNoVerify  bool
	simFailOnOOM bool
)

func init() {
	cmd := newSimulateCmd()
	cmd.Flags().IntVar(&simRounds, "rounds", 100, "Number of mutator rounds")
	cmd.Flags().IntVar(&simBatch, "batch", 64, "Allocations per round")
	cmd.Flags().IntVar(&simMaxSize, "max-size", 4096, "Largest data size of an allocated cell")
	cmd.Flags().Float64Var(&simKeep, "keep", 0.05, "Probability that a new cell becomes a root")
	cmd.Flags().Float64Var(&simLink, "link", 0.3, "Probability that a new cell is linked from a root")
	cmd.Flags().Float64Var(&simRelease, "release", 0.2, "Probability that a root is released at the end of a round")
	cmd.Flags().Int64Var(&simSeed, "seed", 1, "Random seed")
	cmd.Flags().BoolVar(&simMap, "map", false, "Draw the heap layout after the run (after every round with --verbose)")
	cmd.Flags().IntVar(&simMapWidth, "map-width", 64, "Width of the heap layout map in cells")
	cmd.Flags().BoolVar(&simNoVerify, "no-verify", false, "Skip invariant checks after each round")
	cmd.Flags().BoolVar(&simFailOnOOM, "fail-on-oom", false, "Stop at the first out-of-memory failure")
	rootCmd.AddCommand(cmd)
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a randomized mutator workload against the collector",
		Long: `The simulate command allocates linked cells of random sizes, keeps a random
subset reachable from roots, and lets the heap collect whenever the tail runs out.
Heap invariants are verified after every round.

Example:
  heapctl simulate
  heapctl simulate --capacity 1048576 --rounds 500 --map
  heapctl simulate --seed 42 --keep 0.2 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate()
		},
	}
	return cmd
}

// SimulationReport summarises a simulate run.
type SimulationReport struct {
	Rounds         int         `json:"rounds"`
	Allocations    int         `json:"allocations"`
	AllocatedBytes int64       `json:"allocated_bytes"`
	OutOfMemory    int         `json:"out_of_memory"`
	Roots          int         `json:"roots"`
	Totals         gc.Totals   `json:"totals"`
	Allocator      alloc.Stats `json:"allocator"`
	Final          heap.Stats  `json:"final"`
	Elapsed        string      `json:"elapsed"`
}

// cell is a record with two child slots and a variable data area.
func cellClass(dataSize int) *heap.RecordClass {
	return heap.NewRecord("cell", 2, dataSize)
}

// mutator drives random allocations against a Runtime.
type mutator struct {
	rt    *gc.Runtime
	rng   *rand.Rand
	roots []*heap.Handle
	rep   SimulationReport
}

func (m *mutator) round() error {
	for range simBatch {
		cls := cellClass(m.rng.Intn(simMaxSize + 1))
		hd, err := m.rt.Malloc(cls)
		switch {
		case errors.Is(err, gc.ErrOutOfMemory):
			m.rep.OutOfMemory++
			if simFailOnOOM {
				return err
			}
			continue
		case err != nil:
			return err
		}
		m.rep.Allocations++
		m.rep.AllocatedBytes += int64(hd.Len() + 1)

		data, err := cls.Data(hd)
		if err != nil {
			return err
		}
		for i := range data {
			data[i] = byte(hd.ID())
		}

		switch r := m.rng.Float64(); {
		case r < simKeep:
			if err := m.rt.Protect(hd); err != nil {
				return err
			}
			m.roots = append(m.roots, hd)
		case r < simKeep+simLink && len(m.roots) > 0:
			parent := m.roots[m.rng.Intn(len(m.roots))]
			pcls := parent.Class().(*heap.RecordClass)
			if err := pcls.SetRef(parent, m.rng.Intn(pcls.Slots()), hd); err != nil {
				return err
			}
		}
	}

	kept := m.roots[:0]
	for _, hd := range m.roots {
		if m.rng.Float64() < simRelease {
			if err := m.rt.Unprotect(hd); err != nil {
				return err
			}
			continue
		}
		kept = append(kept, hd)
	}
	clear(m.roots[len(kept):])
	m.roots = kept
	return nil
}

// check verifies the heap and that every cell reachable from a root still holds the
// bytes it was filled with.
func (m *mutator) check() error {
	if err := m.rt.Verify(); err != nil {
		return err
	}
	seen := map[heap.ID]bool{}
	stack := slices.Clone(m.roots)
	for len(stack) > 0 {
		hd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[hd.ID()] {
			continue
		}
		seen[hd.ID()] = true

		cls := hd.Class().(*heap.RecordClass)
		data, err := cls.Data(hd)
		if err != nil {
			return err
		}
		for _, b := range data {
			if b != byte(hd.ID()) {
				return fmt.Errorf("cell %v: payload changed", hd)
			}
		}
		for i := range cls.Slots() {
			id, err := cls.Ref(hd, i)
			if err != nil {
				return err
			}
			if id == heap.NilID {
				continue
			}
			child, ok := m.rt.Resolve(id)
			if !ok {
				return fmt.Errorf("cell %v: child %d was reclaimed", hd, id)
			}
			stack = append(stack, child)
		}
	}
	return nil
}

func (m *mutator) printMap() error {
	return m.rt.Inspect(func(h *heap.Heap) error {
		printInfo("%s\n", renderHeapMap(h, m.isRoot, simMapWidth))
		return nil
	})
}

// isRoot is called with the Runtime's lock held, so it consults the mutator's own
// root list rather than the Runtime.
func (m *mutator) isRoot(hd *heap.Handle) bool {
	return slices.Contains(m.roots, hd)
}

func runSimulate() error {
	if simBatch <= 0 || simRounds <= 0 || simMaxSize < 0 {
		return fmt.Errorf("--rounds and --batch must be positive and --max-size non-negative")
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	m := &mutator{rt: rt, rng: rand.New(rand.NewSource(simSeed))}
	start := time.Now()

	for i := range simRounds {
		if err := m.round(); err != nil {
			return fmt.Errorf("round %d: %w", i+1, err)
		}
		if !simNoVerify {
			if err := m.check(); err != nil {
				return fmt.Errorf("round %d: %w", i+1, err)
			}
		}
		m.rep.Rounds++

		if verbose && !jsonOut {
			s := rt.Stats()
			printVerbose("round %4d: %s extents, %s used, %d roots, %d collections\n",
				i+1, formatNumber(int64(s.Extents)), formatBytes(int64(s.Used)),
				len(m.roots), rt.Collections())
			if simMap {
				if err := m.printMap(); err != nil {
					return err
				}
			}
		}
	}

	m.rep.Roots = len(m.roots)
	m.rep.Totals = rt.Totals()
	m.rep.Allocator = rt.AllocStats()
	m.rep.Final = rt.Stats()
	m.rep.Elapsed = time.Since(start).Round(time.Microsecond).String()

	if jsonOut {
		return printJSON(m.rep)
	}

	printSimulationReport(m.rep)
	if simMap && !verbose {
		printInfo("\n")
		if err := m.printMap(); err != nil {
			return err
		}
	}
	if simMap {
		printInfo("%s\n", heapMapLegend())
	}
	return nil
}

func printSimulationReport(r SimulationReport) {
	printInfo("Simulation: %d rounds in %s\n", r.Rounds, r.Elapsed)
	printInfo("\n")
	printInfo("  Allocations:     %s (%s)\n", formatNumber(int64(r.Allocations)), formatBytes(r.AllocatedBytes))
	printInfo("  Out of memory:   %s\n", formatNumber(int64(r.OutOfMemory)))
	printInfo("  Tail misses:     %s (largest cell %s)\n",
		formatNumber(int64(r.Allocator.Failures)), formatBytes(int64(r.Allocator.LargestAlloc)))
	printInfo("  Collections:     %s\n", formatNumber(int64(r.Totals.Collections)))
	printInfo("  Reclaimed:       %s extents (%s)\n",
		formatNumber(int64(r.Totals.Reclaimed)), formatBytes(int64(r.Totals.ReclaimedBytes)))
	printInfo("  Moved:           %s extents (%s)\n",
		formatNumber(int64(r.Totals.Moved)), formatBytes(int64(r.Totals.MovedBytes)))
	printInfo("  Total pause:     %s\n", r.Totals.Pause.Round(time.Microsecond))
	printInfo("\n")
	printInfo("  Live extents:    %s\n", formatNumber(int64(r.Final.Extents)))
	printInfo("  Used:            %s of %s\n", formatBytes(int64(r.Final.Used)), formatBytes(int64(r.Final.Capacity)))
	printInfo("  Roots:           %d\n", r.Roots)
}
