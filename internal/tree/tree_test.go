package tree

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"arbor/internal/model"

	"github.com/google/go-cmp/cmp"
)

func mk(tag string) *Node { return NewNode(model.Template{TypeTag: tag}) }

func mustInsert(t *testing.T, tr *Tree, n, ref *Node, pos Position) {
	t.Helper()
	if err := tr.InsertRelative(n, ref, pos); err != nil {
		t.Fatalf("InsertRelative(%s, %v): %v", n.TypeTag, pos, err)
	}
}

func tags(ns []*Node) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.TypeTag)
	}
	return out
}

func TestInsertPositions(t *testing.T) {
	tr := New()
	a, b, c, d := mk("a"), mk("b"), mk("c"), mk("d")
	mustInsert(t, tr, a, nil, Append)
	mustInsert(t, tr, b, a, After)
	mustInsert(t, tr, c, a, Before)
	mustInsert(t, tr, d, b, InsideFirst)

	if diff := cmp.Diff([]string{"c", "a", "b"}, tags(tr.Root().Children())); diff != "" {
		t.Fatalf("top-level order (-want +got):\n%s", diff)
	}
	if d.Parent() != b || d.Depth() != 1 {
		t.Fatalf("expected d inside b at depth 1")
	}
	if tr.Len() != 4 {
		t.Fatalf("expected 4 nodes, got %d", tr.Len())
	}
}

func TestInsertRejectsSelfAndDescendant(t *testing.T) {
	tr := New()
	a, b, c := mk("a"), mk("b"), mk("c")
	mustInsert(t, tr, a, nil, Append)
	mustInsert(t, tr, b, a, InsideLast)
	mustInsert(t, tr, c, b, InsideLast)

	before, err := tr.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	commits := 0
	tr.OnCommit(func(Commit) { commits++ })

	for _, ref := range []*Node{a, b, c} {
		for _, pos := range []Position{Before, After, InsideFirst, InsideLast, Append} {
			if ref == a && (pos == Before || pos == After) {
				continue
			}
			err := tr.InsertRelative(a, ref, pos)
			if !errors.Is(err, ErrInvalidMove) {
				t.Fatalf("move a %v %s: expected ErrInvalidMove, got %v", pos, ref.TypeTag, err)
			}
		}
	}
	after, _ := tr.Marshal()
	if !bytes.Equal(before, after) {
		t.Fatalf("tree changed after rejected moves:\n%s\n%s", before, after)
	}
	if commits != 0 {
		t.Fatalf("rejected moves must not commit, got %d", commits)
	}
}

func TestMoveExistingReparents(t *testing.T) {
	tr := New()
	a, b, c := mk("a"), mk("b"), mk("c")
	mustInsert(t, tr, a, nil, Append)
	mustInsert(t, tr, b, nil, Append)
	mustInsert(t, tr, c, a, InsideLast)

	mustInsert(t, tr, c, b, After)
	if a.ChildCount() != 0 {
		t.Fatalf("expected c to leave a")
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, tags(tr.Root().Children())); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	// Each node has exactly one parent.
	seen := map[*Node]bool{}
	tr.Walk(func(n *Node, _ int) bool {
		if seen[n] {
			t.Fatalf("node %s visited twice", n.TypeTag)
		}
		seen[n] = true
		return true
	})
}

func TestSerializeAssignsStableIDs(t *testing.T) {
	tr := New()
	a, b := mk("div"), mk("span")
	mustInsert(t, tr, a, nil, Append)
	mustInsert(t, tr, b, a, InsideLast)

	if a.ID() != "" {
		t.Fatalf("ids are assigned lazily")
	}
	first, _ := tr.Marshal()
	second, _ := tr.Marshal()
	if !bytes.Equal(first, second) {
		t.Fatalf("serialization must be idempotent:\n%s\n%s", first, second)
	}
	if a.ID() != "node-1" || b.ID() != "node-2" {
		t.Fatalf("unexpected ids %q %q", a.ID(), b.ID())
	}
	got, ok := tr.FindByID("node-2")
	if !ok || got != b {
		t.Fatalf("FindByID did not return b")
	}
}

func TestSerializeEmptyTree(t *testing.T) {
	b, err := New().Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != "[]" {
		t.Fatalf("expected [], got %s", b)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	tr := New()
	a, b := mk("section"), mk("p")
	mustInsert(t, tr, a, nil, Append)
	mustInsert(t, tr, b, a, InsideLast)
	snap, _ := tr.Marshal()
	gen := tr.Generation()

	mustInsert(t, tr, mk("footer"), nil, Append)
	if err := tr.RestoreJSON(snap); err != nil {
		t.Fatalf("RestoreJSON: %v", err)
	}
	got, _ := tr.Marshal()
	if !bytes.Equal(snap, got) {
		t.Fatalf("restore mismatch:\n%s\n%s", snap, got)
	}
	if tr.Generation() == gen {
		t.Fatalf("restore must bump generation")
	}
	if tr.Attached(a) {
		t.Fatalf("pre-restore pointers must be detached")
	}

	// New ids continue after the restored ones.
	n := mk("aside")
	mustInsert(t, tr, n, nil, Append)
	tr.AssignIDs()
	if n.ID() != "node-3" {
		t.Fatalf("expected node-3, got %q", n.ID())
	}
}

func TestRestoreRejectsDuplicateIDs(t *testing.T) {
	tr := New()
	err := tr.Restore([]model.SnapshotNode{{ID: "node-1", TypeTag: "a"}, {ID: "node-1", TypeTag: "b"}})
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if tr.Len() != 0 {
		t.Fatalf("failed restore must leave the tree unchanged")
	}
}

func TestMoveSibling(t *testing.T) {
	tr := New()
	a, b, c := mk("a"), mk("b"), mk("c")
	for _, n := range []*Node{a, b, c} {
		mustInsert(t, tr, n, nil, Append)
	}
	moved, err := tr.MoveSibling(c, -1)
	if err != nil || !moved {
		t.Fatalf("MoveSibling: moved=%v err=%v", moved, err)
	}
	if diff := cmp.Diff([]string{"a", "c", "b"}, tags(tr.Root().Children())); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	moved, err = tr.MoveSibling(a, -1)
	if err != nil || moved {
		t.Fatalf("expected no-op at the start, moved=%v err=%v", moved, err)
	}
	if _, err := tr.MoveSibling(mk("x"), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for detached node, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	tr := New()
	a, b := mk("a"), mk("b")
	mustInsert(t, tr, a, nil, Append)
	mustInsert(t, tr, b, a, InsideLast)
	var kinds []CommitKind
	tr.OnCommit(func(c Commit) { kinds = append(kinds, c.Kind) })

	if err := tr.Remove(a); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if tr.Len() != 0 || tr.Attached(b) {
		t.Fatalf("subtree must be removed")
	}
	if err := tr.Remove(a); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second remove: expected ErrNotFound, got %v", err)
	}
	if diff := cmp.Diff([]CommitKind{CommitRemove}, kinds); diff != "" {
		t.Fatalf("commits (-want +got):\n%s", diff)
	}
}

func TestInsertRejectsUnknownPosition(t *testing.T) {
	tr := New()
	a, b := mk("a"), mk("b")
	mustInsert(t, tr, a, nil, Append)
	mustInsert(t, tr, b, nil, Append)
	before, _ := tr.Marshal()
	commits := 0
	tr.OnCommit(func(Commit) { commits++ })

	if err := tr.InsertRelative(a, b, Position(42)); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove, got %v", err)
	}
	if !tr.Attached(a) || a.Parent() != tr.Root() {
		t.Fatalf("rejected insert must leave a in place")
	}
	after, _ := tr.Marshal()
	if !bytes.Equal(before, after) || commits != 0 {
		t.Fatalf("tree changed after rejected insert (commits=%d):\n%s\n%s", commits, before, after)
	}
}

func TestAssignIDsInDocumentOrder(t *testing.T) {
	tr := New()
	a, b, c := mk("a"), mk("b"), mk("c")
	mustInsert(t, tr, a, nil, Append)
	mustInsert(t, tr, c, nil, Append)
	mustInsert(t, tr, b, a, InsideLast)

	tr.AssignIDs()
	got := []string{a.ID(), b.ID(), c.ID()}
	if diff := cmp.Diff([]string{"node-1", "node-2", "node-3"}, got); diff != "" {
		t.Fatalf("ids (-want +got):\n%s", diff)
	}
	tr.AssignIDs()
	if a.ID() != "node-1" || c.ID() != "node-3" {
		t.Fatalf("assigned ids must not change")
	}
}

// checkShape verifies that every attached node is reached exactly once, that
// parent links match the walk, and that the walk agrees with Walk/Attached.
func checkShape(t *testing.T, tr *Tree, pool []*Node) {
	t.Helper()
	seen := map[*Node]bool{}
	var visit func(p *Node, depth int)
	visit = func(p *Node, depth int) {
		if depth > len(pool)+1 {
			t.Fatalf("tree deeper than its node count: cycle")
		}
		for _, c := range p.Children() {
			if seen[c] {
				t.Fatalf("%s reached twice", describe(c))
			}
			seen[c] = true
			if c.Parent() != p {
				t.Fatalf("%s: parent link does not match its container", describe(c))
			}
			if c.Contains(p) {
				t.Fatalf("%s contains its own parent", describe(c))
			}
			visit(c, depth+1)
		}
	}
	visit(tr.Root(), 0)

	walked := 0
	tr.Walk(func(n *Node, _ int) bool {
		walked++
		if !seen[n] {
			t.Fatalf("Walk visited %s outside the child links", describe(n))
		}
		return true
	})
	if walked != len(seen) || tr.Len() != len(seen) {
		t.Fatalf("walk saw %d nodes, child links %d, Len %d", walked, len(seen), tr.Len())
	}
	for _, n := range pool {
		if tr.Attached(n) != seen[n] {
			t.Fatalf("%s: Attached=%v but reached=%v", describe(n), tr.Attached(n), seen[n])
		}
	}
}

func TestRandomMutationsKeepTreeShape(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprintf("seed-%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			tr := New()
			var pool []*Node
			attached := func() []*Node {
				var out []*Node
				tr.Walk(func(n *Node, _ int) bool {
					out = append(out, n)
					return true
				})
				return out
			}

			for step := 0; step < 300; step++ {
				live := attached()
				before, err := tr.Marshal()
				if err != nil {
					t.Fatalf("Marshal: %v", err)
				}

				switch op := rng.Intn(10); {
				case op < 6 || len(live) == 0:
					var n *Node
					if len(pool) == 0 || rng.Intn(3) == 0 {
						n = mk(fmt.Sprintf("n%d", len(pool)))
						pool = append(pool, n)
					} else {
						n = pool[rng.Intn(len(pool))]
					}
					var ref *Node
					if len(live) > 0 && rng.Intn(4) != 0 {
						ref = live[rng.Intn(len(live))]
					}
					pos := Position(rng.Intn(5))
					if rng.Intn(20) == 0 {
						pos = Position(5 + rng.Intn(10))
					}
					wantErr := pos > Append ||
						(ref != nil && (ref == n || n.Contains(ref))) ||
						(ref == nil && (pos == Before || pos == After))
					err := tr.InsertRelative(n, ref, pos)
					if wantErr != (err != nil) {
						t.Fatalf("step %d: insert %s %v: wantErr=%v err=%v", step, describe(n), pos, wantErr, err)
					}
					if err != nil {
						if after, _ := tr.Marshal(); !bytes.Equal(before, after) {
							t.Fatalf("step %d: rejected insert changed the tree:\n%s\n%s", step, before, after)
						}
					}
				case op < 8:
					n := live[rng.Intn(len(live))]
					if _, err := tr.MoveSibling(n, rng.Intn(3)-1); err != nil {
						t.Fatalf("step %d: MoveSibling: %v", step, err)
					}
				default:
					n := live[rng.Intn(len(live))]
					if err := tr.Remove(n); err != nil {
						t.Fatalf("step %d: Remove: %v", step, err)
					}
				}
				checkShape(t, tr, pool)
			}
		})
	}
}
