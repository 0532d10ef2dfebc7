package main

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/logger"
	"github.com/joshuapare/heapkit/pkg/gc"
)

// Objects the explorer allocates.
const (
	blobMinSize = 16
	blobMaxSize = 512
)

var nodeClass = heap.NewRecord("node", 2, 24)

// extentRow is a snapshot of one extent, taken after every heap operation.
type extentRow struct {
	ID      heap.ID
	Class   string
	Left    int
	Right   int
	Size    int
	Root    bool
	Refs    []heap.ID
	Preview string
}

// explorer is the bubbletea model of the explore command.
type explorer struct {
	rt   *gc.Runtime
	keys KeyMap
	rng  *rand.Rand

	// roots mirrors the Runtime's root set so rendering under Inspect needs no
	// second lock.
	roots map[heap.ID]*heap.Handle

	rows    []extentRow
	stats   heap.Stats
	heapMap string

	cursor int
	offset int
	width  int
	height int

	showHelp  bool
	status    string
	statusErr bool

	copyText func(string) error
}

func newExplorer(rt *gc.Runtime, seed int64) *explorer {
	m := &explorer{
		rt:       rt,
		keys:     DefaultKeyMap(),
		rng:      rand.New(rand.NewSource(seed)),
		roots:    make(map[heap.ID]*heap.Handle),
		width:    100,
		height:   30,
		copyText: clipboard.WriteAll,
	}
	m.refresh()
	m.setStatus("a: allocate blob  n: allocate node  ?: help")
	return m
}

func (m *explorer) Init() tea.Cmd {
	return nil
}

// refresh snapshots the directory, the stats and the heap map.
func (m *explorer) refresh() {
	err := m.rt.Inspect(func(h *heap.Heap) error {
		m.rows = m.rows[:0]
		for e := range h.Directory().Iter() {
			m.rows = append(m.rows, m.rowFor(e))
		}
		m.stats = h.Stats()
		m.heapMap = renderHeapMap(h, m.isRoot, m.mapWidth())
		return nil
	})
	if err != nil {
		m.fail(err)
	}
	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	m.scroll()
}

func (m *explorer) rowFor(e *heap.Extent) extentRow {
	hd := e.Handle()
	row := extentRow{
		ID:    hd.ID(),
		Class: "bytes",
		Left:  e.Left(),
		Right: e.Right(),
		Size:  e.Size(),
		Root:  m.isRoot(hd),
	}
	payload := hd.Bytes()
	if cls := hd.Class(); cls != nil {
		row.Class = cls.Name()
		cls.Refs(payload, func(id heap.ID) { row.Refs = append(row.Refs, id) })
		if rc, ok := cls.(*heap.RecordClass); ok {
			payload, _ = rc.Data(hd)
		}
	}
	row.Preview = strings.TrimRight(payloadText(payload), ".")
	return row
}

func (m *explorer) isRoot(hd *heap.Handle) bool {
	_, ok := m.roots[hd.ID()]
	return ok
}

func (m *explorer) mapWidth() int {
	return max(m.width-4, 8)
}

// listHeight is the number of extent rows that fit on screen.
func (m *explorer) listHeight() int {
	return max(m.height-14, 3)
}

func (m *explorer) scroll() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = max(m.offset, 0)
}

func (m *explorer) selected() (*heap.Handle, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil, false
	}
	return m.rt.Resolve(m.rows[m.cursor].ID)
}

func (m *explorer) selectID(id heap.ID) {
	for i, r := range m.rows {
		if r.ID == id {
			m.cursor = i
			m.scroll()
			return
		}
	}
}

func (m *explorer) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

func (m *explorer) fail(err error) {
	logger.Warn("explorer operation failed", "error", err)
	m.status = err.Error()
	m.statusErr = true
}

func (m *explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if key.Matches(msg, m.keys.Esc) || key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
				m.showHelp = false
			}
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *explorer) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.listHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.move(m.listHeight())
	case key.Matches(msg, m.keys.Home):
		m.move(-len(m.rows))
	case key.Matches(msg, m.keys.End):
		m.move(len(m.rows))

	case key.Matches(msg, m.keys.AllocBlob):
		m.allocBlob()
	case key.Matches(msg, m.keys.AllocRecord):
		m.allocNode()
	case key.Matches(msg, m.keys.Protect):
		m.toggleRoot()
	case key.Matches(msg, m.keys.Collect):
		m.collect()
	case key.Matches(msg, m.keys.Verify):
		if err := m.rt.Verify(); err != nil {
			m.fail(err)
		} else {
			m.setStatus("heap verified: %s", m.stats)
		}
	case key.Matches(msg, m.keys.CopyStats):
		m.copyStats()
	}
	return m, nil
}

func (m *explorer) move(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
	m.scroll()
}

func (m *explorer) allocBlob() {
	size := blobMinSize + m.rng.Intn(blobMaxSize-blobMinSize+1)
	hd, err := m.rt.Malloc(heap.NewBlob("blob", size))
	if err != nil {
		m.allocFailed(err)
		return
	}
	copy(hd.Bytes(), fmt.Sprintf("blob #%d", hd.ID()))
	m.refresh()
	m.selectID(hd.ID())
	m.setStatus("allocated blob #%d (%s)", hd.ID(), formatBytes(int64(size)))
}

// allocNode allocates a node and links it from the selected node, if any, using its
// first empty slot or overwriting slot 0 when both are taken.
func (m *explorer) allocNode() {
	var pcls *heap.RecordClass
	parent, hasParent := m.selected()
	if hasParent {
		pcls, hasParent = parent.Class().(*heap.RecordClass)
	}

	hd, err := m.rt.Malloc(nodeClass)
	if err != nil {
		m.allocFailed(err)
		return
	}
	data, err := nodeClass.Data(hd)
	if err != nil {
		m.fail(err)
		return
	}
	copy(data, fmt.Sprintf("node #%d", hd.ID()))

	// The allocation may have collected the parent.
	if hasParent && !parent.Valid() {
		hasParent = false
	}
	if !hasParent {
		m.refresh()
		m.selectID(hd.ID())
		m.setStatus("allocated node #%d", hd.ID())
		return
	}

	slot := 0
	for i := range pcls.Slots() {
		if id, err := pcls.Ref(parent, i); err == nil && id == heap.NilID {
			slot = i
			break
		}
	}
	if err := pcls.SetRef(parent, slot, hd); err != nil {
		m.fail(err)
		return
	}
	m.refresh()
	m.selectID(hd.ID())
	m.setStatus("allocated node #%d, linked from #%d slot %d", hd.ID(), parent.ID(), slot)
}

func (m *explorer) allocFailed(err error) {
	m.refresh()
	if errors.Is(err, gc.ErrOutOfMemory) {
		m.status = "out of memory: unprotect something and collect"
		m.statusErr = true
		logger.Warn("explorer out of memory", "error", err)
		return
	}
	m.fail(err)
}

func (m *explorer) toggleRoot() {
	hd, ok := m.selected()
	if !ok {
		return
	}
	if m.isRoot(hd) {
		if err := m.rt.Unprotect(hd); err != nil {
			m.fail(err)
			return
		}
		delete(m.roots, hd.ID())
		m.setStatus("#%d is no longer a root", hd.ID())
	} else {
		if err := m.rt.Protect(hd); err != nil {
			m.fail(err)
			return
		}
		m.roots[hd.ID()] = hd
		m.setStatus("#%d is now a root", hd.ID())
	}
	m.refresh()
}

func (m *explorer) collect() {
	var keep heap.ID
	if m.cursor < len(m.rows) {
		keep = m.rows[m.cursor].ID
	}
	res, err := m.rt.Collect()
	if err != nil {
		m.refresh()
		m.fail(err)
		return
	}
	m.refresh()
	m.selectID(keep)
	m.setStatus("collected in %s: %s", res.Duration, res.Compact)
}

func (m *explorer) statsText() string {
	t := m.rt.Totals()
	return fmt.Sprintf("%s roots=%d collections=%d reclaimed=%d (%d bytes) moved=%d (%d bytes)",
		m.stats, len(m.roots), t.Collections, t.Reclaimed, t.ReclaimedBytes, t.Moved, t.MovedBytes)
}

func (m *explorer) copyStats() {
	if err := m.copyText(m.statsText()); err != nil {
		m.fail(fmt.Errorf("copy to clipboard: %w", err))
		return
	}
	m.setStatus("copied heap stats to clipboard")
}
