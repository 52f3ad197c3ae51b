package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// scheduleDetail coalesces detail-pane renders: only the newest request
// inside the debounce window renders.
func (m *appModel) scheduleDetail() tea.Cmd {
	m.detailSeq++
	if m.debounce <= 0 {
		m.renderDetail()
		return nil
	}
	seq := m.detailSeq
	return tea.Tick(m.debounce, func(time.Time) tea.Msg { return detailRenderMsg{seq: seq} })
}

// detailMarkdown describes the selected node.
func (m *appModel) detailMarkdown() string {
	id := m.ed.Selected()
	n, ok := m.ed.Tree().FindByID(id)
	if !ok {
		return "_Nothing selected._\n\nDrag a block from the palette onto the canvas or the outline."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", n.Label)
	fmt.Fprintf(&b, "`%s` · `<%s>` · depth %d · %d children\n\n", n.ID(), n.TypeTag, n.Depth(), n.ChildCount())
	if c := strings.TrimSpace(n.Content); c != "" {
		b.WriteString(c)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *appModel) renderDetail() {
	if m.layout.detail.w <= 0 {
		return
	}
	md := m.detailMarkdown()
	key := strconv.Itoa(m.layout.detail.w) + "\x00" + md
	if key == m.detailFor {
		return
	}
	m.detailFor = key
	m.detail.SetContent(renderMarkdown(md, m.layout.detail.w))
	m.detail.GotoTop()
}
