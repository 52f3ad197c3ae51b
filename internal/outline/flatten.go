package outline

import "arbor/internal/tree"

// Row is one visible outline line.
type Row struct {
	ID          string
	TypeTag     string
	Label       string
	Depth       int
	Children    int
	HasChildren bool
	Collapsed   bool
}

// Flatten walks t in document order and skips the subtrees of collapsed
// nodes. Ids are assigned first so every row has one.
func Flatten(t *tree.Tree, collapsed map[string]bool) []Row {
	t.AssignIDs()
	var out []Row
	t.Walk(func(n *tree.Node, depth int) bool {
		id := n.ID()
		out = append(out, Row{
			ID:          id,
			TypeTag:     n.TypeTag,
			Label:       n.Label,
			Depth:       depth,
			Children:    n.ChildCount(),
			HasChildren: n.ChildCount() > 0,
			Collapsed:   collapsed[id],
		})
		return !collapsed[id]
	})
	return out
}
