package history

import (
	"errors"
	"testing"

	"arbor/internal/model"
	"arbor/internal/tree"
)

func attach(t *testing.T, tr *tree.Tree, m *Manager) {
	t.Helper()
	tr.OnCommit(func(tree.Commit) {
		if err := m.Save(); err != nil {
			t.Fatalf("Save: %v", err)
		}
	})
}

func appendNode(t *testing.T, tr *tree.Tree, tag string) *tree.Node {
	t.Helper()
	n := tree.NewNode(model.Template{TypeTag: tag})
	if err := tr.InsertRelative(n, nil, tree.Append); err != nil {
		t.Fatalf("insert %s: %v", tag, err)
	}
	return n
}

func marshal(t *testing.T, tr *tree.Tree) string {
	t.Helper()
	b, err := tr.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return string(b)
}

func TestInitialSnapshotBoundsUndo(t *testing.T) {
	tr := tree.New()
	m, err := New(tr, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.Len() != 1 || m.CanUndo() || m.CanRedo() {
		t.Fatalf("fresh manager: len=%d undo=%v redo=%v", m.Len(), m.CanUndo(), m.CanRedo())
	}
	if err := m.Undo(); !errors.Is(err, ErrUnderflow) {
		t.Fatalf("expected ErrUnderflow, got %v", err)
	}
	if err := m.Redo(); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	tr := tree.New()
	m, _ := New(tr, 0)
	attach(t, tr, m)

	states := []string{marshal(t, tr)}
	for _, tag := range []string{"div", "span", "section", "footer"} {
		appendNode(t, tr, tag)
		states = append(states, marshal(t, tr))
	}
	final := marshal(t, tr)

	for n := 1; n <= len(states)-1; n++ {
		for i := 0; i < n; i++ {
			if err := m.Undo(); err != nil {
				t.Fatalf("undo %d/%d: %v", i+1, n, err)
			}
		}
		if got := marshal(t, tr); got != states[len(states)-1-n] {
			t.Fatalf("after %d undos: got %s want %s", n, got, states[len(states)-1-n])
		}
		for i := 0; i < n; i++ {
			if err := m.Redo(); err != nil {
				t.Fatalf("redo %d/%d: %v", i+1, n, err)
			}
		}
		if got := marshal(t, tr); got != final {
			t.Fatalf("after %d redos: got %s want %s", n, got, final)
		}
	}
}

func TestMutationAfterUndoDiscardsRedo(t *testing.T) {
	tr := tree.New()
	m, _ := New(tr, 0)
	attach(t, tr, m)
	appendNode(t, tr, "div")
	appendNode(t, tr, "span")

	if err := m.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !m.CanRedo() {
		t.Fatalf("expected a redo state")
	}
	appendNode(t, tr, "footer")
	if m.CanRedo() {
		t.Fatalf("new mutation must discard redo states")
	}
	if err := m.Redo(); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("expected [empty, div, div+footer], got %d entries", m.Len())
	}
}

func TestLimitDropsOldest(t *testing.T) {
	tr := tree.New()
	m, _ := New(tr, 3)
	attach(t, tr, m)
	for _, tag := range []string{"a", "b", "c", "d"} {
		appendNode(t, tr, tag)
	}
	if m.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", m.Len())
	}
	if err := m.Undo(); err != nil {
		t.Fatalf("undo 1: %v", err)
	}
	if err := m.Undo(); err != nil {
		t.Fatalf("undo 2: %v", err)
	}
	if err := m.Undo(); !errors.Is(err, ErrUnderflow) {
		t.Fatalf("expected ErrUnderflow at the cap, got %v", err)
	}
	if tr.Len() != 2 {
		t.Fatalf("oldest kept state has two nodes, got %d", tr.Len())
	}
}
