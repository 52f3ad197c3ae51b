package canvas

import (
	"strings"

	"arbor/internal/drag"
	"arbor/internal/tree"

	xansi "github.com/charmbracelet/x/ansi"
)

// Box is one laid-out node. Rect includes the border; Inner is the node's
// own drop zone (where its children live).
type Box struct {
	ID      string
	TypeTag string
	Label   string
	Depth   int
	Inline  bool
	Rect    drag.Rect
	Inner   drag.Rect
}

// Layout is a projection of the tree into terminal cells. It is rebuilt from
// the tree after every committed mutation; it never owns nodes.
type Layout struct {
	Root     drag.Rect
	boxes    map[string]*Box
	order    []string
	children map[string][]string
	parent   map[string]string
}

// Box returns the box for id.
func (l *Layout) Box(id string) (*Box, bool) {
	b, ok := l.boxes[id]
	return b, ok
}

// Boxes returns the boxes in document order.
func (l *Layout) Boxes() []*Box {
	out := make([]*Box, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.boxes[id])
	}
	return out
}

// Children returns child ids of container ("" is the root).
func (l *Layout) Children(container string) []string {
	return l.children[container]
}

// Candidates returns the resolver input for one container. Rects span cell
// centers (a box covering columns 0..7 reports X=0 W=7) so that the gap cell
// between two inline boxes lies outside both.
func (l *Layout) Candidates(container string) []drag.Candidate {
	ids := l.children[container]
	out := make([]drag.Candidate, 0, len(ids))
	for _, id := range ids {
		r := l.boxes[id].Rect
		out = append(out, drag.Candidate{ID: id, Rect: drag.Rect{X: r.X, Y: r.Y, W: r.W - 1, H: r.H - 1}})
	}
	return out
}

// ZoneRect is the interior of a container ("" is the root).
func (l *Layout) ZoneRect(container string) drag.Rect {
	if container == "" {
		return l.Root
	}
	if b, ok := l.boxes[container]; ok {
		return b.Inner
	}
	return drag.Rect{}
}

// ContainerAt returns the deepest drop zone whose interior holds p. ok is
// false when p lies outside the canvas.
func (l *Layout) ContainerAt(p drag.Point) (id string, ok bool) {
	if !l.Root.Contains(p) {
		return "", false
	}
	best, bestDepth := "", -1
	for _, bid := range l.order {
		b := l.boxes[bid]
		if b.Inner.Contains(p) && b.Depth > bestDepth {
			best, bestDepth = bid, b.Depth
		}
	}
	return best, true
}

// NodeAt returns the deepest box (border included) under p.
func (l *Layout) NodeAt(p drag.Point) (string, bool) {
	best, bestDepth := "", -1
	for _, bid := range l.order {
		b := l.boxes[bid]
		if b.Rect.Contains(p) && b.Depth > bestDepth {
			best, bestDepth = bid, b.Depth
		}
	}
	return best, best != ""
}

// Height is the laid-out content height in cells.
func (l *Layout) Height() int { return int(l.Root.H) }

var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "button": true, "code": true, "em": true,
	"i": true, "img": true, "input": true, "label": true, "small": true,
	"span": true, "strong": true, "col": true,
}

// IsInline reports whether a type tag flows horizontally.
func IsInline(tag string) bool {
	return inlineTags[strings.ToLower(tag)]
}

type layoutOptions struct {
	width  int
	height int
	// gap is the blank line inserted between stacked children; set while a
	// drag is in progress when padding is enabled.
	gap int
}

const (
	minInlineW = 8
	inlineGap  = 1
)

// BuildLayout lays out t in a width x height cell area (height is a minimum;
// content taller than it extends the root zone).
func BuildLayout(t *tree.Tree, o layoutOptions) *Layout {
	l := &Layout{
		boxes:    map[string]*Box{},
		children: map[string][]string{},
		parent:   map[string]string{},
	}
	w := o.width
	if w < minInlineW {
		w = minInlineW
	}
	// Ids are assigned lazily; the layout needs them.
	t.AssignIDs()
	h := l.flow(t.Root(), "", 0, 0, w, 0, o)
	if h < o.height {
		h = o.height
	}
	l.Root = drag.Rect{X: 0, Y: 0, W: float64(w), H: float64(h)}
	return l
}

// flow places the children of p inside the area starting at (x, y) with
// width w and returns the used height.
func (l *Layout) flow(p *tree.Node, pid string, x, y, w, depth int, o layoutOptions) int {
	cx, cy, lineH := x, y, 0
	newline := func() {
		if cx > x || lineH > 0 {
			cy += lineH + o.gap
		}
		cx, lineH = x, 0
	}
	for _, c := range p.Children() {
		if IsInline(c.TypeTag) {
			cw := inlineWidth(c)
			if cw > w {
				cw = w
			}
			if cx > x && cx+cw > x+w {
				newline()
			}
			ch := l.place(c, pid, cx, cy, cw, depth, true, o)
			cx += cw + inlineGap
			if ch > lineH {
				lineH = ch
			}
			continue
		}
		newline()
		ch := l.place(c, pid, x, cy, w, depth, false, o)
		cy += ch + o.gap
	}
	newline()
	used := cy - y
	if used > 0 && o.gap > 0 {
		used -= o.gap
	}
	return used
}

func (l *Layout) place(n *tree.Node, pid string, x, y, w, depth int, inline bool, o layoutOptions) int {
	id := n.ID()
	b := &Box{ID: id, TypeTag: n.TypeTag, Label: n.Label, Depth: depth, Inline: inline}
	l.boxes[id] = b
	l.order = append(l.order, id)
	l.children[pid] = append(l.children[pid], id)
	l.parent[id] = pid

	innerW := w - 2
	if innerW < 1 {
		innerW = 1
	}
	inner := 1
	if n.ChildCount() > 0 {
		if ih := l.flow(n, id, x+1, y+1, innerW, depth+1, o); ih > 0 {
			inner = ih
		}
	}
	h := inner + 2
	b.Rect = drag.Rect{X: float64(x), Y: float64(y), W: float64(w), H: float64(h)}
	b.Inner = drag.Rect{X: float64(x + 1), Y: float64(y + 1), W: float64(innerW), H: float64(inner)}
	return h
}

func inlineWidth(n *tree.Node) int {
	w := xansi.StringWidth(titleFor(n.TypeTag, n.Label)) + 4
	if w < minInlineW {
		w = minInlineW
	}
	return w
}

func titleFor(tag, label string) string {
	label = strings.TrimSpace(label)
	if label == "" || strings.EqualFold(label, tag) {
		return tag
	}
	return tag + ": " + label
}
