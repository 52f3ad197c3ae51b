package script

import (
	"errors"
	"strings"
	"testing"

	"arbor/internal/canvas"
	"arbor/internal/editor"
	"arbor/internal/outline"
	"arbor/internal/palette"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"
)

func newPlayer(t *testing.T) (*Player, *editor.Editor) {
	t.Helper()
	e, err := editor.New(editor.Options{
		Canvas:  canvas.Options{Width: 40, Height: 20, Margin: 2},
		Outline: outline.Options{Width: 30, Height: 30, ConfirmDelete: true},
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("editor.New: %v", err)
	}
	return NewPlayer(e, palette.Builtin(), zaptest.NewLogger(t)), e
}

func decode(t *testing.T, src string) *Script {
	t.Helper()
	sc, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return sc
}

const threeRows = `
steps:
  - drag: {template: div, label: A}
  - drop: {view: canvas, x: 5, y: 5}
  - drag: {template: div, label: B}
  - drop: {view: canvas, x: 5, y: 10}
  - drag: {template: div, label: C}
  - drop: {view: canvas, x: 5, y: 15}
`

func topLabels(e *editor.Editor) []string {
	var out []string
	for _, n := range e.Snapshot() {
		out = append(out, n.Label)
	}
	return out
}

func TestReplayReordersSiblings(t *testing.T) {
	p, e := newPlayer(t)
	sc := decode(t, threeRows+`
  - drag: {node: node-1}
    from: canvas
  - over: {view: canvas, x: 5, y: 5}
  - drop: {view: canvas, x: 5, y: 5}
    expect: ok
`)
	res, err := p.Run(sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]string{"B", "A", "C"}, topLabels(e)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	over := res[7]
	if over.Action != "over" || over.Node != "node-2" || over.Zone != "below" {
		t.Fatalf("unexpected hover result %+v", over)
	}
}

func TestReplayUndoRedoAndExpectations(t *testing.T) {
	p, e := newPlayer(t)
	sc := decode(t, threeRows+`
  - undo: true
  - undo: true
  - undo: true
  - undo: true
    expect: underflow
  - redo: true
  - delete: node-9
    expect: not-found
  - delete: node-1
`)
	if _, err := p.Run(sc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.Tree().Len() != 0 {
		t.Fatalf("expected an empty tree, got %d nodes", e.Tree().Len())
	}
	if !e.History().CanUndo() || e.History().CanRedo() {
		t.Fatalf("delete after undo should drop redo states")
	}
}

func TestReplayUsesCatalogTemplates(t *testing.T) {
	p, e := newPlayer(t)
	sc := decode(t, `
steps:
  - drag: {template: layout-2-columns}
  - drop: {view: canvas, x: 1, y: 1}
`)
	if _, err := p.Run(sc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	snap := e.Snapshot()
	if len(snap) != 1 || snap[0].Label == "" || snap[0].Label == "layout-2-columns" {
		t.Fatalf("catalog label should be used, got %+v", snap)
	}
}

func TestReplayFailsOnUnmetExpectation(t *testing.T) {
	p, _ := newPlayer(t)
	sc := decode(t, `
steps:
  - drag: {template: "bad tag"}
  - drop: {view: canvas, x: 1, y: 1}
    expect: ok
`)
	res, err := p.Run(sc)
	if !errors.Is(err, ErrExpectation) {
		t.Fatalf("expected ErrExpectation, got %v", err)
	}
	if len(res) != 2 || !strings.Contains(res[1].Error, "invalid template") {
		t.Fatalf("unexpected results %+v", res)
	}
}

func TestRejectedStepsDoNotStopReplay(t *testing.T) {
	p, e := newPlayer(t)
	sc := decode(t, `
steps:
  - drop: {view: canvas, x: 1, y: 1}
  - drag: {template: span}
  - drop: {view: outline, x: 1, y: 1}
`)
	res, err := p.Run(sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res[0].Error == "" || e.Tree().Len() != 1 {
		t.Fatalf("first drop fails, the later one lands: %+v", res)
	}
}

func TestDecodeValidation(t *testing.T) {
	_, err := Decode(strings.NewReader(`
steps:
  - undo: true
    redo: true
  - over: {view: sidebar, x: 1, y: 1}
  - drag: {}
  - select: node-1
    expect: sometimes
`))
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	if n := len(multierr.Errors(err)); n != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", n, err)
	}

	if _, err := Decode(strings.NewReader("steps:\n  - jump: true\n")); err == nil {
		t.Fatalf("unknown keys must be rejected")
	}
	sc, err := Decode(strings.NewReader(""))
	if err != nil || len(sc.Steps) != 0 {
		t.Fatalf("empty script: %+v %v", sc, err)
	}
}
