package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/joshuapare/heapkit/heap"
)

// View renders the entire UI
func (m *explorer) View() string {
	if m.showHelp {
		helpOverlay := overlay.New(
			&helpModal{keys: m.keys},
			&mainView{model: m},
			overlay.Center,
			overlay.Center,
			0,
			0,
		)
		return helpOverlay.View()
	}
	return m.renderMain()
}

func (m *explorer) renderMain() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderMap(),
		m.renderList(),
		m.renderDetail(),
		m.renderStatus(),
	)
}

func (m *explorer) renderHeader() string {
	used := fmt.Sprintf("%s of %s used, %s extents, %d roots",
		formatBytes(int64(m.stats.Used)),
		formatBytes(int64(m.stats.Capacity)),
		formatNumber(int64(m.stats.Extents)),
		len(m.roots))
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		headerStyle.Render("Heap Explorer"),
		"  ",
		pathStyle.Render(used),
	)
}

func (m *explorer) renderMap() string {
	return paneStyle.Width(m.width - 2).Render(m.heapMap + "\n" + heapMapLegend())
}

const listHeader = "     ID  CLASS       LEFT      RIGHT       SIZE  REFS"

func (m *explorer) renderList() string {
	var b strings.Builder
	b.WriteString(tableHeaderStyle.Render(listHeader))

	if len(m.rows) == 0 {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render("heap is empty"))
	}

	end := min(m.offset+m.listHeight(), len(m.rows))
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		badge := " "
		if r.Root {
			badge = rootBadgeStyle.Render("●")
		}
		line := fmt.Sprintf("%6d  %-8s %7d  %9d  %9d  %s",
			r.ID, truncate(r.Class, 8), r.Left, r.Right, r.Size, formatRefs(r.Refs))
		b.WriteString("\n")
		b.WriteString(badge)
		if i == m.cursor {
			b.WriteString(tableSelectedStyle.Render(line))
		} else {
			b.WriteString(tableRowStyle.Render(line))
		}
	}

	title := fmt.Sprintf("Extents (%d)", len(m.rows))
	return paneStyle.Width(m.width - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, statusCountStyle.Render(title), b.String()))
}

func (m *explorer) renderDetail() string {
	if m.cursor >= len(m.rows) {
		return ""
	}
	r := m.rows[m.cursor]
	role := "reachable only if referenced"
	if r.Root {
		role = "root"
	}
	text := fmt.Sprintf("#%d %s, %s span at [%d, %d], %s\npayload: %q",
		r.ID, r.Class, formatBytes(int64(r.Size)), r.Left, r.Right, role,
		truncate(r.Preview, max(m.width-16, 8)))
	return paneStyle.Width(m.width - 2).Render(text)
}

func (m *explorer) renderStatus() string {
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}

func formatRefs(refs []heap.ID) string {
	if len(refs) == 0 {
		return "-"
	}
	parts := make([]string, len(refs))
	for i, id := range refs {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	return strings.Join(parts, ",")
}

// mainView wraps the main UI for use as overlay background
type mainView struct {
	model *explorer
}

func (v *mainView) Init() tea.Cmd { return nil }

func (v *mainView) Update(tea.Msg) (tea.Model, tea.Cmd) { return v, nil }

func (v *mainView) View() string { return v.model.renderMain() }

// helpModal lists every key binding in a centered box.
type helpModal struct {
	keys KeyMap
}

func (h *helpModal) Init() tea.Cmd { return nil }

func (h *helpModal) Update(tea.Msg) (tea.Model, tea.Cmd) { return h, nil }

func (h *helpModal) View() string {
	var b strings.Builder
	b.WriteString(helpTitleStyle.Render("Keyboard Shortcuts"))
	for i, group := range h.keys.FullHelp() {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, binding := range group {
			help := binding.Help()
			b.WriteString("\n")
			b.WriteString(helpKeyStyle.Render(help.Key))
			b.WriteString("  ")
			b.WriteString(helpDescStyle.Render(help.Desc))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(statusStyle.Render("esc or ? to close"))
	return modalStyle.Render(b.String())
}
