package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"arbor/internal/model"
)

var (
	// ErrInvalidMove is returned when an insertion would make a node its own
	// ancestor (drop onto itself or into one of its descendants).
	ErrInvalidMove = errors.New("invalid move")
	// ErrNotFound is returned for references that are not attached to the tree.
	ErrNotFound = errors.New("node not found")
)

const idPrefix = "node-"

// Position is where InsertRelative places a node relative to its reference.
type Position int

const (
	Before Position = iota
	After
	InsideFirst
	InsideLast
	// Append adds to the end of the reference container (the root when the
	// reference is nil).
	Append
)

func (p Position) String() string {
	switch p {
	case Before:
		return "before"
	case After:
		return "after"
	case InsideFirst:
		return "insideFirst"
	case InsideLast:
		return "insideLast"
	case Append:
		return "append"
	default:
		return "position(" + strconv.Itoa(int(p)) + ")"
	}
}

// CommitKind names the structural mutation that produced a commit.
type CommitKind string

const (
	CommitInsert  CommitKind = "insert"
	CommitRemove  CommitKind = "remove"
	CommitReorder CommitKind = "reorder"
)

// Commit describes one successful structural mutation.
type Commit struct {
	Kind CommitKind
	Node *Node
}

// Tree is the canonical document. It is single-writer: views read it and call
// its mutation methods, never patch nodes directly.
type Tree struct {
	root       *Node
	nextID     int
	generation int
	observers  []func(Commit)
}

func New() *Tree {
	return &Tree{root: &Node{}}
}

// Root returns the implicit, non-draggable container.
func (t *Tree) Root() *Node { return t.root }

// Generation is bumped by Restore; node pointers obtained before the bump are stale.
func (t *Tree) Generation() int { return t.generation }

// OnCommit registers fn to run after every successful mutation.
func (t *Tree) OnCommit(fn func(Commit)) {
	t.observers = append(t.observers, fn)
}

func (t *Tree) commit(kind CommitKind, n *Node) {
	c := Commit{Kind: kind, Node: n}
	for _, fn := range t.observers {
		fn(c)
	}
}

// Attached reports whether n is reachable from the root.
func (t *Tree) Attached(n *Node) bool {
	if n == nil {
		return false
	}
	return t.root.Contains(n)
}

// Len counts every node except the root.
func (t *Tree) Len() int {
	c := 0
	t.Walk(func(*Node, int) bool {
		c++
		return true
	})
	return c
}

// Walk visits nodes depth-first in document order. Returning false from fn
// skips the node's subtree.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	var walk func(p *Node, depth int)
	walk = func(p *Node, depth int) {
		for _, c := range p.children {
			if fn(c, depth) {
				walk(c, depth+1)
			}
		}
	}
	walk(t.root, 0)
}

// FindByID returns the attached node with the given id.
func (t *Tree) FindByID(id string) (*Node, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	var found *Node
	t.Walk(func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.id == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// CheckMove validates that n may be placed relative to ref without mutating
// anything. A nil ref stands for the root container.
func (t *Tree) CheckMove(n, ref *Node, pos Position) error {
	if n == nil || n == t.root {
		return fmt.Errorf("%w: cannot move the root", ErrInvalidMove)
	}
	if pos < Before || pos > Append {
		return fmt.Errorf("%w: unknown %s", ErrInvalidMove, pos)
	}
	if ref == nil {
		ref = t.root
	}
	if !t.Attached(ref) {
		return ErrNotFound
	}
	if ref == n || n.Contains(ref) {
		return fmt.Errorf("%w: %s onto itself or a descendant", ErrInvalidMove, describe(n))
	}
	if ref == t.root && (pos == Before || pos == After) {
		return fmt.Errorf("%w: root has no siblings", ErrInvalidMove)
	}
	return nil
}

// InsertRelative detaches n from its current parent (if any) and places it
// relative to ref. On error the tree is left unchanged and no commit fires.
func (t *Tree) InsertRelative(n, ref *Node, pos Position) error {
	if err := t.CheckMove(n, ref, pos); err != nil {
		return err
	}
	if ref == nil {
		ref = t.root
	}
	n.detach()
	switch pos {
	case Before:
		ref.parent.insertAt(n, ref.Index())
	case After:
		ref.parent.insertAt(n, ref.Index()+1)
	case InsideFirst:
		ref.insertAt(n, 0)
	default:
		ref.insertAt(n, -1)
	}
	t.commit(CommitInsert, n)
	return nil
}

// Remove detaches n and its subtree. Confirmation is the caller's policy.
func (t *Tree) Remove(n *Node) error {
	if n == nil || n == t.root || !t.Attached(n) {
		return ErrNotFound
	}
	n.detach()
	t.commit(CommitRemove, n)
	return nil
}

// MoveSibling shifts n by delta positions among its siblings. It returns false
// (and commits nothing) when the move would leave the sibling range.
func (t *Tree) MoveSibling(n *Node, delta int) (bool, error) {
	if n == nil || n == t.root || !t.Attached(n) {
		return false, ErrNotFound
	}
	if delta == 0 {
		return false, nil
	}
	p := n.parent
	i := n.Index()
	j := i + delta
	if j < 0 || j >= len(p.children) {
		return false, nil
	}
	n.detach()
	p.insertAt(n, j)
	t.commit(CommitReorder, n)
	return true, nil
}

// AssignIDs gives every attached node without an id the next `node-N` id in
// document order. An assigned id never changes.
func (t *Tree) AssignIDs() {
	t.Walk(func(n *Node, _ int) bool {
		if n.id == "" {
			t.nextID++
			n.id = idPrefix + strconv.Itoa(t.nextID)
		}
		return true
	})
}

// Serialize returns the ordered, nested content of the tree, assigning
// missing ids first.
func (t *Tree) Serialize() []model.SnapshotNode {
	t.AssignIDs()
	return t.serializeChildren(t.root)
}

func (t *Tree) serializeChildren(p *Node) []model.SnapshotNode {
	out := make([]model.SnapshotNode, 0, len(p.children))
	for _, c := range p.children {
		out = append(out, model.SnapshotNode{
			ID:       c.id,
			TypeTag:  c.TypeTag,
			Label:    c.Label,
			Content:  c.Content,
			Children: t.serializeChildren(c),
		})
	}
	return out
}

// Marshal serializes the tree to its canonical JSON snapshot.
func (t *Tree) Marshal() ([]byte, error) {
	return json.Marshal(t.Serialize())
}

// Restore replaces the whole content with snap. Node pointers held before the
// call are detached and must be re-resolved by id. No commit fires.
func (t *Tree) Restore(snap []model.SnapshotNode) error {
	seen := map[string]bool{}
	maxID := t.nextID
	var build func(p *Node, xs []model.SnapshotNode) error
	build = func(p *Node, xs []model.SnapshotNode) error {
		for _, x := range xs {
			if x.ID != "" {
				if seen[x.ID] {
					return fmt.Errorf("restore: duplicate id %q", x.ID)
				}
				seen[x.ID] = true
				if s, ok := strings.CutPrefix(x.ID, idPrefix); ok {
					if v, err := strconv.Atoi(s); err == nil && v > maxID {
						maxID = v
					}
				}
			}
			n := &Node{id: x.ID, TypeTag: x.TypeTag, Label: x.Label, Content: x.Content}
			p.insertAt(n, -1)
			if err := build(n, x.Children); err != nil {
				return err
			}
		}
		return nil
	}
	fresh := &Node{}
	if err := build(fresh, snap); err != nil {
		return err
	}
	for _, c := range t.root.children {
		c.parent = nil
	}
	t.root.children = fresh.children
	for _, c := range t.root.children {
		c.parent = t.root
	}
	t.nextID = maxID
	t.generation++
	return nil
}

// RestoreJSON decodes a snapshot produced by Marshal and restores it.
func (t *Tree) RestoreJSON(b []byte) error {
	var snap []model.SnapshotNode
	if err := json.Unmarshal(b, &snap); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	return t.Restore(snap)
}

func describe(n *Node) string {
	if n.id != "" {
		return n.id
	}
	return "<" + n.TypeTag + ">"
}
