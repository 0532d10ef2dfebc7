package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/logger"
)

var exploreSeed int64

func init() {
	cmd := newExploreCmd()
	cmd.Flags().Int64Var(&exploreSeed, "seed", 1, "Random seed for allocation sizes")
	rootCmd.AddCommand(cmd)
}

func newExploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Interactively allocate, protect and collect objects",
		Long: `The explore command opens a terminal UI over a fresh heap. Allocate blobs and
linked records, toggle which objects are roots, run collections and watch the
extent directory and heap layout change.

Example:
  heapctl explore
  heapctl explore --capacity 65536
  heapctl explore --file scratch.heap`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplore()
		},
	}
	return cmd
}

func runExplore() error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	m := newExplorer(rt, exploreSeed)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("explorer exited", "error", err)
		return fmt.Errorf("explorer: %w", err)
	}
	return nil
}
