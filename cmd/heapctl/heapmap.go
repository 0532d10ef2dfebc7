package main

import (
	"strings"

	"github.com/joshuapare/heapkit/heap"
)

// Map cell kinds, in increasing display priority.
const (
	cellFree = iota
	cellUsed
	cellRooted
)

var cellGlyphs = [...]string{
	cellFree:   "·",
	cellUsed:   "▒",
	cellRooted: "█",
}

// heapCells splits the heap into width equal cells and classifies each by the most
// important extent overlapping it.
func heapCells(h *heap.Heap, rooted func(*heap.Handle) bool, width int) []int {
	if width <= 0 || h.Capacity() == 0 {
		return nil
	}
	cells := make([]int, width)
	per := (h.Capacity() + width - 1) / width

	for e := range h.Directory().Iter() {
		kind := cellUsed
		if rooted != nil && rooted(e.Handle()) {
			kind = cellRooted
		}
		for i := e.Left() / per; i <= e.Right()/per && i < width; i++ {
			cells[i] = max(cells[i], kind)
		}
	}
	return cells
}

// renderHeapMap draws one line of width cells showing which parts of the heap hold
// extents, and which of those are roots.
func renderHeapMap(h *heap.Heap, rooted func(*heap.Handle) bool, width int) string {
	styles := [...]func(...string) string{
		cellFree:   mapFreeStyle.Render,
		cellUsed:   mapUsedStyle.Render,
		cellRooted: mapRootedStyle.Render,
	}

	var b strings.Builder
	for _, kind := range heapCells(h, rooted, width) {
		b.WriteString(styles[kind](cellGlyphs[kind]))
	}
	return b.String()
}

// heapMapLegend explains the glyphs of renderHeapMap.
func heapMapLegend() string {
	return mapRootedStyle.Render(cellGlyphs[cellRooted]) + " root  " +
		mapUsedStyle.Render(cellGlyphs[cellUsed]) + " allocated  " +
		mapFreeStyle.Render(cellGlyphs[cellFree]) + " free"
}
