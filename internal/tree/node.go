package tree

import "arbor/internal/model"

// Node is one element of the document. Structure (parent/children) is only
// changed through Tree methods so the tree stays acyclic.
type Node struct {
	id       string
	TypeTag  string
	Label    string
	Content  string
	children []*Node
	parent   *Node
}

// NewNode instantiates a template. The id is assigned on first serialization.
func NewNode(t model.Template) *Node {
	return &Node{
		TypeTag: t.TypeTag,
		Label:   t.DisplayLabel(),
		Content: t.Content,
	}
}

// ID returns the node id, or "" if the node was never serialized.
func (n *Node) ID() string { return n.id }

// Parent returns the parent container. The root and detached nodes return nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the ordered child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Index returns the position of n among its siblings, -1 when detached.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// Contains reports whether other is n or one of n's descendants.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Depth is 0 for top-level nodes.
func (n *Node) Depth() int {
	d := -1
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

func (n *Node) detach() {
	p := n.parent
	if p == nil {
		return
	}
	i := n.Index()
	if i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	n.parent = nil
}

func (n *Node) insertAt(child *Node, i int) {
	if i < 0 || i > len(n.children) {
		i = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	child.parent = n
}

// IsAncestor reports whether a is a proper ancestor of b.
func IsAncestor(a, b *Node) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	return a.Contains(b)
}
