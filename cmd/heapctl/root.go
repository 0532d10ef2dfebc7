package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
	"github.com/joshuapare/heapkit/pkg/gc"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	debug    bool
	capacity int
	heapFile string

	// stdout receives all regular output; tests replace it.
	stdout io.Writer = os.Stdout

	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Drive and inspect a compacting garbage-collected heap",
	Long: `heapctl exercises heapkit's extent heap: it replays allocation scenarios,
runs randomized mutator workloads against the collector, and opens an interactive
explorer over a live heap.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if capacity <= 0 {
			return fmt.Errorf("--capacity must be positive, got %d", capacity)
		}
		c, err := logger.Init(logger.Options{Enabled: debug, Level: slog.LevelDebug})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to init logging: %v\n", err)
			return nil
		}
		logFile = c
		logger.Info("starting heapctl", "command", cmd.Name(), "capacity", capacity, "file", heapFile)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
			logFile = nil
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		IntVar(&capacity, "capacity", format.DefaultCapacity, "Heap capacity in bytes")
	rootCmd.PersistentFlags().
		StringVar(&heapFile, "file", "", "Back the heap with this file instead of memory")
	rootCmd.PersistentFlags().
		BoolVarP(&debug, "debug", "d", false, "Write debug logs to ~/.heapkit/logs")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// newRuntime creates a Runtime from the global flags.
func newRuntime() (*gc.Runtime, error) {
	opts := gc.DefaultOptions()
	opts.Capacity = capacity
	opts.Path = heapFile
	opts.Logger = logger.L
	rt, err := gc.New(opts)
	if err != nil {
		return nil, err
	}
	printVerbose("Heap: %s", formatBytes(int64(capacity)))
	if heapFile != "" {
		printVerbose(" backed by %s", heapFile)
	}
	printVerbose("\n")
	return rt, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
