package tui

import (
	"errors"
	"fmt"
	"time"

	"arbor/internal/canvas"
	"arbor/internal/drag"
	"arbor/internal/editor"
	"arbor/internal/history"
	"arbor/internal/model"
	"arbor/internal/outline"
	"arbor/internal/tree"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.seenWindowSize = true
		m.resize(msg.Width, msg.Height)
		return m, nil

	case detailRenderMsg:
		// Debounce: only the newest request renders.
		if msg.seq == m.detailSeq {
			m.renderDetail()
		}
		return m, nil

	case minibufferClearMsg:
		if msg.seq == m.minibufferSeq {
			m.minibuffer = ""
			m.minibufferErr = false
		}
		return m, nil

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.modal != modalNone {
			cmd := m.updateModal(msg)
			return m, cmd
		}
		cmd := m.updateKey(msg)
		return m, cmd
	}
	return m, nil
}

func (m *appModel) showMinibuffer(text string) tea.Cmd {
	m.minibuffer = text
	m.minibufferErr = false
	m.minibufferSeq++
	seq := m.minibufferSeq
	return tea.Tick(minibufferTTL, func(time.Time) tea.Msg { return minibufferClearMsg{seq: seq} })
}

func (m *appModel) showError(err error) tea.Cmd {
	cmd := m.showMinibuffer(describeError(err))
	m.minibufferErr = true
	return cmd
}

// describeError turns engine errors into minibuffer text.
func describeError(err error) string {
	switch {
	case errors.Is(err, editor.ErrMissingDropTarget):
		return "Drop cancelled: no drop zone there"
	case errors.Is(err, tree.ErrInvalidMove):
		return "Cannot drop a node into itself or its descendants"
	case errors.Is(err, model.ErrInvalidTemplate):
		return "Invalid block: " + err.Error()
	case errors.Is(err, history.ErrUnderflow):
		return "Nothing to undo"
	case errors.Is(err, history.ErrOverflow):
		return "Nothing to redo"
	case errors.Is(err, outline.ErrNoSelection):
		return "Nothing selected"
	default:
		return err.Error()
	}
}

func viewForPane(p pane) string {
	if p == paneOutline {
		return outline.ViewName
	}
	return canvas.ViewName
}

func (m *appModel) cycleFocus(dir int) {
	m.focus = pane((int(m.focus) + dir + int(paneCount)) % int(paneCount))
}

func (m *appModel) updateKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit
	case key.Matches(msg, k.Cancel):
		m.press = nil
		if m.dragging || m.ed.Session().Active() {
			m.dragging = false
			m.ed.EndDrag()
			return m.showMinibuffer("Drag cancelled")
		}
		return nil
	case key.Matches(msg, k.Focus):
		m.cycleFocus(1)
		return nil
	case key.Matches(msg, k.FocusBack):
		m.cycleFocus(-1)
		return nil
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, k.Undo):
		if err := m.ed.Undo(); err != nil {
			return m.showError(err)
		}
		return m.scheduleDetail()
	case key.Matches(msg, k.Redo):
		if err := m.ed.Redo(); err != nil {
			return m.showError(err)
		}
		return m.scheduleDetail()
	case key.Matches(msg, k.Borders):
		on := m.ed.ToggleBorders()
		return m.showMinibuffer("Borders " + onOff(on))
	case key.Matches(msg, k.Padding):
		on := m.ed.TogglePadding()
		return m.showMinibuffer("Drag padding " + onOff(on))
	case key.Matches(msg, k.Copy):
		b, err := m.ed.Tree().Marshal()
		if err == nil {
			err = copyToClipboard(string(b))
		}
		if err != nil {
			m.log.Warn("copy failed", zap.Error(err))
			return m.showError(err)
		}
		return m.showMinibuffer(fmt.Sprintf("Copied %d nodes", m.ed.Tree().Len()))
	}

	switch m.focus {
	case panePalette:
		return m.updatePaletteKey(msg)
	case paneCanvas, paneOutline:
		return m.updateTreeKey(msg)
	case paneDetail:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return cmd
	}
	return nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (m *appModel) updatePaletteKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.Up):
		m.paletteCursor = nextTemplate(m.entries, m.paletteCursor, -1)
		m.ensurePaletteVisible()
	case key.Matches(msg, k.Down):
		m.paletteCursor = nextTemplate(m.entries, m.paletteCursor, 1)
		m.ensurePaletteVisible()
	case key.Matches(msg, k.Insert):
		t, ok := m.selectedTemplate()
		if !ok {
			return nil
		}
		n, err := m.ed.Insert(t)
		if err != nil {
			return m.showError(err)
		}
		return tea.Batch(m.showMinibuffer("Inserted "+n.Label), m.scheduleDetail())
	}
	return nil
}

func (m *appModel) updateTreeKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.MoveUp), key.Matches(msg, k.MoveDown):
		delta := 1
		if key.Matches(msg, k.MoveUp) {
			delta = -1
		}
		if _, err := m.ed.MoveSelected(delta); err != nil {
			return m.showError(err)
		}
		return m.scheduleDetail()
	case key.Matches(msg, k.Up):
		m.ed.SelectRelative(-1)
		return m.scheduleDetail()
	case key.Matches(msg, k.Down):
		m.ed.SelectRelative(1)
		return m.scheduleDetail()
	case key.Matches(msg, k.Delete):
		removed, err := m.ed.RequestDelete()
		if err != nil {
			return m.showError(err)
		}
		if removed {
			return tea.Batch(m.showMinibuffer("Deleted"), m.scheduleDetail())
		}
		if m.ed.PendingDelete() != "" {
			m.modal = modalConfirmDelete
			m.confirmFocus = confirmFocusCancel
		}
		return nil
	case key.Matches(msg, k.Collapse):
		m.ed.ToggleCollapsed(m.ed.Selected())
		return nil
	case key.Matches(msg, k.PageUp), key.Matches(msg, k.PageDown):
		delta := m.layout.canvas.h / 2
		if key.Matches(msg, k.PageUp) {
			delta = -delta
		}
		if m.focus == paneOutline {
			m.ed.Outline().Scroll(delta)
		} else {
			m.ed.Canvas().Scroll(delta)
		}
		return nil
	}
	return nil
}

func (m *appModel) updateModal(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	confirm := false
	switch {
	case key.Matches(msg, k.ModalFocus):
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
		return nil
	case msg.String() == "enter":
		confirm = m.confirmFocus == confirmFocusConfirm
	case key.Matches(msg, k.Confirm):
		confirm = true
	case key.Matches(msg, k.Decline):
	default:
		return nil
	}
	m.modal = modalNone
	if !confirm {
		m.ed.CancelDelete()
		return m.showMinibuffer("Delete cancelled")
	}
	if err := m.ed.ConfirmDelete(); err != nil {
		return m.showError(err)
	}
	return tea.Batch(m.showMinibuffer("Deleted"), m.scheduleDetail())
}

func (m *appModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.modal != modalNone {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		delta := 1
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -1
		}
		m.scrollAt(msg.X, msg.Y, delta)
		return nil
	}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		return m.mousePress(msg.X, msg.Y)
	case tea.MouseActionMotion:
		return m.mouseMotion(msg.X, msg.Y)
	case tea.MouseActionRelease:
		return m.mouseRelease(msg.X, msg.Y)
	}
	return nil
}

func (m *appModel) scrollAt(x, y, delta int) {
	l := m.layout
	switch {
	case l.canvas.contains(x, y):
		m.ed.Canvas().Scroll(delta)
	case l.outline.contains(x, y):
		m.ed.Outline().Scroll(delta)
	case l.detail.contains(x, y):
		if delta < 0 {
			m.detail.LineUp(1)
		} else {
			m.detail.LineDown(1)
		}
	case l.palette.contains(x, y):
		m.paletteScroll += delta
		if limit := len(m.entries) - l.palette.h; m.paletteScroll > limit {
			m.paletteScroll = limit
		}
		if m.paletteScroll < 0 {
			m.paletteScroll = 0
		}
	}
}

func (m *appModel) mousePress(x, y int) tea.Cmd {
	l := m.layout
	m.press = nil
	if m.dragging {
		// A press without a release in between; start over.
		m.dragging = false
		m.ed.EndDrag()
	}
	switch {
	case l.palette.contains(x, y):
		m.focus = panePalette
		i, ok := m.paletteAt(y - l.palette.y)
		if !ok {
			return nil
		}
		m.paletteCursor = i
		t := m.entries[i].template
		m.press = &pressState{pane: panePalette, template: &t}
	case l.canvas.contains(x, y):
		m.focus = paneCanvas
		id, ok := m.ed.SelectAt(l.canvas.local(x, y))
		if ok {
			m.press = &pressState{pane: paneCanvas, id: id}
		}
		return m.scheduleDetail()
	case l.outline.contains(x, y):
		m.focus = paneOutline
		id, ok := m.ed.SelectRowAt(l.outline.local(x, y))
		if ok {
			m.press = &pressState{pane: paneOutline, id: id}
		}
		return m.scheduleDetail()
	case l.detail.contains(x, y):
		m.focus = paneDetail
	}
	return nil
}

func (m *appModel) mouseMotion(x, y int) tea.Cmd {
	if m.press == nil {
		return nil
	}
	if !m.dragging {
		p := m.press
		if p.template != nil {
			m.ed.BeginTemplateDrag("palette", *p.template)
		} else if err := m.ed.BeginNodeDrag(viewForPane(p.pane), p.id); err != nil {
			m.press = nil
			return m.showError(err)
		}
		m.dragging = true
	}
	view, pt := m.dropTarget(x, y)
	if _, err := m.ed.DragOver(view, pt); err != nil {
		m.log.Debug("drag over", zap.String("view", view), zap.Error(err))
	}
	return nil
}

func (m *appModel) mouseRelease(x, y int) tea.Cmd {
	m.press = nil
	if !m.dragging {
		return nil
	}
	m.dragging = false
	view, pt := m.dropTarget(x, y)
	n, err := m.ed.Drop(view, pt)
	if err != nil {
		return m.showError(err)
	}
	return tea.Batch(m.showMinibuffer("Placed "+n.Label), m.scheduleDetail())
}

// dropTarget maps a screen cell to a view and a point in its coordinates.
// Anything outside the outline is tried against the canvas, which reports
// points beyond its bounds as having no zone.
func (m *appModel) dropTarget(x, y int) (string, drag.Point) {
	l := m.layout
	if l.outline.contains(x, y) {
		return outline.ViewName, l.outline.local(x, y)
	}
	return canvas.ViewName, l.canvas.local(x, y)
}
