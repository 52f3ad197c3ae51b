package tui

import (
	"strings"
	"testing"
	"time"

	"arbor/internal/canvas"
	"arbor/internal/editor"
	"arbor/internal/outline"
	"arbor/internal/palette"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"
	"github.com/muesli/termenv"
	"go.uber.org/zap/zaptest"
)

// With a 100x30 window the panes are:
//
//	palette x 0..23   y 2..27
//	canvas  x 25..70  y 2..27
//	outline x 72..99  y 2..18
//	detail  x 72..99  y 20..27
func newTestModel(t *testing.T, debounce time.Duration) appModel {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
	ed, err := editor.New(editor.Options{
		Canvas:  canvas.Options{Margin: 2, Borders: true, Padding: true},
		Outline: outline.Options{ConfirmDelete: true},
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("editor.New: %v", err)
	}
	m := newAppModel(ed, palette.Builtin(), Options{Debounce: debounce, Log: zaptest.NewLogger(t)})
	return update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

func update(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	mm, _ := m.Update(msg)
	out, ok := mm.(appModel)
	if !ok {
		t.Fatalf("unexpected model type %T", mm)
	}
	return out
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func mouse(action tea.MouseAction, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

func labels(m appModel) []string {
	var out []string
	for _, n := range m.ed.Snapshot() {
		out = append(out, n.Label)
	}
	return out
}

// insertBasics inserts Div, Span and Textarea from the palette by keyboard.
func insertBasics(t *testing.T, m appModel) appModel {
	t.Helper()
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, runes("j"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, runes("j"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if diff := cmp.Diff([]string{"Div", "Span", "Textarea"}, labels(m)); diff != "" {
		t.Fatalf("setup (-want +got):\n%s", diff)
	}
	return m
}

func TestLayoutPanes(t *testing.T) {
	l := computeLayout(100, 30)
	want := paneLayout{
		bodyH:   27,
		palette: rect{x: 0, y: 2, w: 24, h: 26},
		canvas:  rect{x: 25, y: 2, w: 46, h: 26},
		outline: rect{x: 72, y: 2, w: 28, h: 17},
		detail:  rect{x: 72, y: 20, w: 28, h: 8},
	}
	if diff := cmp.Diff(want, l, cmp.AllowUnexported(paneLayout{}, rect{})); diff != "" {
		t.Fatalf("layout (-want +got):\n%s", diff)
	}
}

func TestMouseDragFromPaletteToCanvas(t *testing.T) {
	m := newTestModel(t, 0)
	m = update(t, m, mouse(tea.MouseActionPress, 3, 3))
	if m.press == nil || m.press.template == nil || m.press.template.TypeTag != "div" {
		t.Fatalf("press on the first block should arm a template drag, got %+v", m.press)
	}
	m = update(t, m, mouse(tea.MouseActionMotion, 30, 6))
	if !m.ed.Session().Active() {
		t.Fatalf("motion should start the drag")
	}
	if !strings.Contains(m.renderStatus(), "Dragging Div") {
		t.Fatalf("status should describe the drag, got %q", m.renderStatus())
	}
	m = update(t, m, mouse(tea.MouseActionRelease, 30, 6))

	snap := m.ed.Snapshot()
	if len(snap) != 1 || snap[0].TypeTag != "div" {
		t.Fatalf("expected one div, got %+v", snap)
	}
	if m.ed.Session().Active() || m.dragging {
		t.Fatalf("release must end the drag")
	}
	if m.ed.Selected() != snap[0].ID {
		t.Fatalf("dropped node should be selected")
	}
	if !strings.Contains(m.detail.View(), snap[0].ID) {
		t.Fatalf("detail pane should describe the new node:\n%s", m.detail.View())
	}
}

func TestMouseDropOutsideCancels(t *testing.T) {
	m := newTestModel(t, 0)
	m = update(t, m, mouse(tea.MouseActionPress, 3, 3))
	m = update(t, m, mouse(tea.MouseActionMotion, 30, 6))
	m = update(t, m, mouse(tea.MouseActionRelease, 5, 6))
	if m.ed.Tree().Len() != 0 {
		t.Fatalf("drop over the palette must not insert")
	}
	if !m.minibufferErr || !strings.Contains(m.minibuffer, "cancelled") {
		t.Fatalf("expected a cancellation message, got %q", m.minibuffer)
	}
}

func TestEscCancelsDrag(t *testing.T) {
	m := newTestModel(t, 0)
	m = update(t, m, mouse(tea.MouseActionPress, 3, 3))
	m = update(t, m, mouse(tea.MouseActionMotion, 30, 6))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.ed.Session().Active() || m.dragging || m.press != nil {
		t.Fatalf("esc must reset the drag")
	}
	m = update(t, m, mouse(tea.MouseActionRelease, 30, 6))
	if m.ed.Tree().Len() != 0 {
		t.Fatalf("release after esc must not drop")
	}
}

func TestOutlineDragReorders(t *testing.T) {
	m := newTestModel(t, 0)
	m = insertBasics(t, m)

	// Textarea is the third outline row (local y 6..8); drop it on the top
	// band of the first row.
	m = update(t, m, mouse(tea.MouseActionPress, 74, 9))
	if m.focus != paneOutline || m.ed.Selected() != "node-3" {
		t.Fatalf("press should select the row, got focus=%v selected=%q", m.focus, m.ed.Selected())
	}
	m = update(t, m, mouse(tea.MouseActionMotion, 74, 2))
	if m.ed.Outline().Ghost() == "" {
		t.Fatalf("outline drags show a ghost")
	}
	m = update(t, m, mouse(tea.MouseActionRelease, 74, 2))
	if diff := cmp.Diff([]string{"Textarea", "Div", "Span"}, labels(m)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}

func TestKeyboardMoveUndoRedo(t *testing.T) {
	m := newTestModel(t, 0)
	m = insertBasics(t, m)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != paneCanvas {
		t.Fatalf("tab should focus the canvas")
	}
	m = update(t, m, runes("K"))
	if diff := cmp.Diff([]string{"Div", "Textarea", "Span"}, labels(m)); diff != "" {
		t.Fatalf("after move (-want +got):\n%s", diff)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	if diff := cmp.Diff([]string{"Div", "Span", "Textarea"}, labels(m)); diff != "" {
		t.Fatalf("after undo (-want +got):\n%s", diff)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	if diff := cmp.Diff([]string{"Div", "Textarea", "Span"}, labels(m)); diff != "" {
		t.Fatalf("after redo (-want +got):\n%s", diff)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	if m.minibuffer != "Nothing to redo" {
		t.Fatalf("expected overflow message, got %q", m.minibuffer)
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	m := newTestModel(t, 0)
	m = insertBasics(t, m)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m = update(t, m, runes("x"))
	if m.modal != modalConfirmDelete || m.ed.Tree().Len() != 3 {
		t.Fatalf("delete should open the confirm modal first")
	}
	if !strings.Contains(m.View(), "Delete node") {
		t.Fatalf("modal should be rendered")
	}
	m = update(t, m, runes("n"))
	if m.modal != modalNone || m.ed.PendingDelete() != "" || m.ed.Tree().Len() != 3 {
		t.Fatalf("n must cancel without deleting")
	}

	m = update(t, m, runes("x"))
	m = update(t, m, runes("y"))
	if m.modal != modalNone || m.ed.Tree().Len() != 2 {
		t.Fatalf("y must delete, %d nodes left", m.ed.Tree().Len())
	}

	// Enter follows the focused button, which starts on Cancel.
	m = update(t, m, runes("x"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.ed.Tree().Len() != 2 {
		t.Fatalf("enter on Cancel must keep the node")
	}
}

func TestCollapseAndToggles(t *testing.T) {
	m := newTestModel(t, 0)
	m = update(t, m, runes("j"))
	m = update(t, m, runes("j"))
	m = update(t, m, runes("j"))
	m = update(t, m, runes("j"))
	m = update(t, m, runes("j"))
	if tmpl, _ := m.selectedTemplate(); tmpl.TypeTag != "section" {
		t.Fatalf("expected section under the cursor, got %q", tmpl.TypeTag)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m = update(t, m, mouse(tea.MouseActionPress, 3, 3))
	m = update(t, m, mouse(tea.MouseActionMotion, 74, 3))
	m = update(t, m, mouse(tea.MouseActionRelease, 74, 3))
	if m.ed.Tree().Len() != 2 {
		t.Fatalf("expected div dropped inside the section, got %d nodes", m.ed.Tree().Len())
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if err := m.ed.Select("node-1"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if !m.ed.Outline().IsCollapsed("node-1") || len(m.ed.Outline().Rows()) != 1 {
		t.Fatalf("space should collapse the section")
	}

	m = update(t, m, runes("b"))
	if m.ed.Canvas().Options().Borders {
		t.Fatalf("b should turn borders off")
	}
	m = update(t, m, runes("p"))
	if m.ed.Canvas().Options().Padding {
		t.Fatalf("p should turn padding off")
	}
}

func TestCopyTree(t *testing.T) {
	var got string
	prev := writeClipboard
	writeClipboard = func(s string) error { got = s; return nil }
	t.Cleanup(func() { writeClipboard = prev })

	m := newTestModel(t, 0)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, runes("c"))
	if !strings.Contains(got, `"type":"div"`) {
		t.Fatalf("clipboard should hold the serialized tree, got %q", got)
	}
	if m.minibuffer != "Copied 1 nodes" {
		t.Fatalf("unexpected message %q", m.minibuffer)
	}
}

func TestDetailRenderIsDebounced(t *testing.T) {
	m := newTestModel(t, 50*time.Millisecond)
	before := m.detail.View()
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.detail.View() != before {
		t.Fatalf("detail must wait for the debounce tick")
	}
	stale := m.detailSeq - 1
	m = update(t, m, detailRenderMsg{seq: stale})
	if m.detail.View() != before {
		t.Fatalf("stale ticks are ignored")
	}
	m = update(t, m, detailRenderMsg{seq: m.detailSeq})
	if !strings.Contains(m.detail.View(), "node-1") {
		t.Fatalf("latest tick renders the selection:\n%s", m.detail.View())
	}
}

func TestViewRendersPanes(t *testing.T) {
	m := newTestModel(t, 0)
	out := m.View()
	lines := strings.Split(out, "\n")
	if len(lines) != 30 {
		t.Fatalf("expected 30 lines, got %d", len(lines))
	}
	for _, want := range []string{"arbor", "Blocks", "Canvas", "Outline", "Node", canvas.PlaceholderText, outline.EmptyText, "Basic"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view should contain %q", want)
		}
	}
}
