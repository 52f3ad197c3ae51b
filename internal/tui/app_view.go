package tui

import (
	"fmt"
	"strings"

	"arbor/internal/canvas"
	"arbor/internal/outline"
	"arbor/internal/tree"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	if !m.seenWindowSize || m.width <= 0 || m.height <= 0 {
		return ""
	}
	l := m.layout
	header := m.renderHeader()

	var body string
	if m.modal == modalConfirmDelete {
		body = lipgloss.Place(m.width, l.bodyH, lipgloss.Center, lipgloss.Center, m.renderDeleteModal())
	} else {
		body = m.renderBody()
	}

	return strings.Join([]string{
		normalizePane(header, m.width, 1),
		normalizePane(body, m.width, l.bodyH),
		normalizePane(m.renderStatus(), m.width, 1),
		normalizePane(m.help.View(m.keys), m.width, 1),
	}, "\n")
}

func (m appModel) renderHeader() string {
	h := m.ed.History()
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("arbor")
	stats := fmt.Sprintf("%d nodes · undo %d/%d", m.ed.Tree().Len(), h.Cursor(), h.Len()-1)
	return title + "  " + styleMuted().Render(stats)
}

func (m appModel) paneTitle(title string, p pane, width int) string {
	return normalizePane(stylePaneTitle(m.focus == p).Render(title), width, 1)
}

func (m appModel) renderBody() string {
	l := m.layout
	paletteCol := m.paneTitle("Blocks", panePalette, l.palette.w) + "\n" + m.renderPalette()

	canvasTitle := "Canvas"
	opts := m.ed.Canvas().Options()
	if !opts.Borders {
		canvasTitle += " (borders off)"
	}
	canvasCol := m.paneTitle(canvasTitle, paneCanvas, l.canvas.w) + "\n" +
		normalizePane(m.ed.Canvas().Render(canvas.DefaultStyles()), l.canvas.w, l.canvas.h)

	rightCol := strings.Join([]string{
		m.paneTitle("Outline", paneOutline, l.outline.w),
		normalizePane(m.ed.Outline().Render(outline.DefaultStyles()), l.outline.w, l.outline.h),
		m.paneTitle("Node", paneDetail, l.detail.w),
		normalizePane(m.detail.View(), l.detail.w, l.detail.h),
	}, "\n")

	sepLines := make([]string, l.bodyH)
	for i := range sepLines {
		sepLines[i] = "│"
	}
	sep := lipgloss.NewStyle().Foreground(colorPaneSeparator).Render(strings.Join(sepLines, "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		normalizePane(paletteCol, l.palette.w, l.bodyH), sep,
		normalizePane(canvasCol, l.canvas.w, l.bodyH), sep,
		normalizePane(rightCol, l.outline.w, l.bodyH),
	)
}

func (m appModel) renderStatus() string {
	if m.minibuffer != "" {
		if m.minibufferErr {
			return styleError().Render(m.minibuffer)
		}
		return m.minibuffer
	}
	s := m.ed.Session()
	if s.Active() {
		what := s.Template().DisplayLabel()
		if n := s.Node(); n != nil {
			what = n.Label
		}
		if g := m.ed.Outline().Ghost(); g != "" {
			what = g
		}
		hint := "release over the canvas or outline to drop · esc cancels"
		if h, ok := s.Hover(); ok {
			hint = fmt.Sprintf("%s %s · %s", h.Result.Zone, h.Result.Target, hint)
		}
		return styleMuted().Render("Dragging " + what + ": " + hint)
	}
	return ""
}

func (m appModel) renderDeleteModal() string {
	id := m.ed.PendingDelete()
	label := id
	count := 0
	if n, ok := m.ed.Tree().FindByID(id); ok {
		label = n.Label
		count = subtreeSize(n)
	}
	body := fmt.Sprintf("Delete %q (%s)?", label, id)
	if count > 1 {
		body += fmt.Sprintf("\nThis also removes %d nested nodes.", count-1)
	}
	return renderConfirmModal(m.width, "Delete node", body, "Delete", "Cancel", m.confirmFocus)
}

func subtreeSize(n *tree.Node) int {
	c := 1
	for _, ch := range n.Children() {
		c += subtreeSize(ch)
	}
	return c
}
