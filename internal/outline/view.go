package outline

import (
	"errors"
	"fmt"

	"arbor/internal/drag"
	"arbor/internal/tree"

	"go.uber.org/zap"
)

// ViewName identifies the outline in hovers and change logs.
const ViewName = "outline"

// DefaultRowHeight gives each row exact 25/50/25 drop bands when rows are
// hit at cell centers.
const DefaultRowHeight = 3

// ErrNoSelection is returned by selection-driven operations when nothing is
// selected.
var ErrNoSelection = errors.New("no selection")

type Options struct {
	Width     int
	Height    int
	RowHeight int
	// ConfirmDelete makes RequestDelete stage a pending delete instead of
	// removing the node right away.
	ConfirmDelete bool
}

// View is the indented, collapsible projection of the tree. Its collapsed
// set and selection are keyed by node id so they survive re-renders and
// history restores.
type View struct {
	opts Options
	log  *zap.Logger

	rows      []Row
	collapsed map[string]bool
	selected  string
	pending   string
	scroll    int

	indicator Indicator
	showing   bool
	ghost     string
}

// Indicator marks the drop band under the pointer.
type Indicator struct {
	Target string
	Zone   drag.Zone
	Valid  bool
}

func New(opts Options, log *zap.Logger) *View {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = DefaultRowHeight
	}
	return &View{opts: opts, log: log.Named(ViewName), collapsed: map[string]bool{}}
}

func (v *View) Options() Options { return v.opts }

func (v *View) Resize(w, h int) {
	v.opts.Width, v.opts.Height = w, h
	v.clampScroll()
}

// Rebuild re-flattens the tree. Collapsed entries and the selection for
// nodes that no longer exist are dropped; everything else is kept.
func (v *View) Rebuild(t *tree.Tree) {
	v.rows = Flatten(t, v.collapsed)
	live := map[string]bool{}
	t.Walk(func(n *tree.Node, _ int) bool {
		live[n.ID()] = true
		return true
	})
	for id := range v.collapsed {
		if !live[id] {
			delete(v.collapsed, id)
		}
	}
	if v.selected != "" && !live[v.selected] {
		v.selected = ""
	}
	if v.pending != "" && !live[v.pending] {
		v.pending = ""
	}
	v.clampScroll()
}

func (v *View) Rows() []Row { return v.rows }

// RowIndex returns the visible row index of id.
func (v *View) RowIndex(id string) int {
	for i, r := range v.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// ToggleCollapsed flips a node's collapsed flag. Leaves cannot collapse.
func (v *View) ToggleCollapsed(t *tree.Tree, id string) bool {
	n, ok := t.FindByID(id)
	if !ok || n.ChildCount() == 0 {
		return false
	}
	if v.collapsed[id] {
		delete(v.collapsed, id)
	} else {
		v.collapsed[id] = true
	}
	v.Rebuild(t)
	return true
}

func (v *View) IsCollapsed(id string) bool { return v.collapsed[id] }

// Select sets the single selection. Selecting a hidden node expands its
// ancestors.
func (v *View) Select(t *tree.Tree, id string) bool {
	if id == "" {
		v.selected = ""
		return true
	}
	n, ok := t.FindByID(id)
	if !ok {
		return false
	}
	expanded := false
	for p := n.Parent(); p != nil; p = p.Parent() {
		if v.collapsed[p.ID()] {
			delete(v.collapsed, p.ID())
			expanded = true
		}
	}
	if expanded {
		v.Rebuild(t)
	}
	v.selected = id
	v.ensureVisible(v.RowIndex(id))
	return true
}

func (v *View) Selected() string { return v.selected }

// SelectRelative moves the selection by delta visible rows.
func (v *View) SelectRelative(delta int) string {
	if len(v.rows) == 0 {
		return ""
	}
	i := v.RowIndex(v.selected)
	switch {
	case i < 0 && delta >= 0:
		i = 0
	case i < 0:
		i = len(v.rows) - 1
	default:
		i += delta
	}
	if i < 0 {
		i = 0
	}
	if i >= len(v.rows) {
		i = len(v.rows) - 1
	}
	v.selected = v.rows[i].ID
	v.ensureVisible(i)
	return v.selected
}

// MoveSelected shifts the selected node among its siblings.
func (v *View) MoveSelected(t *tree.Tree, delta int) (bool, error) {
	if v.selected == "" {
		return false, ErrNoSelection
	}
	n, ok := t.FindByID(v.selected)
	if !ok {
		return false, fmt.Errorf("move: %w: %s", tree.ErrNotFound, v.selected)
	}
	moved, err := t.MoveSibling(n, delta)
	if err != nil || !moved {
		return false, err
	}
	v.log.Debug("moved sibling", zap.String("node", v.selected), zap.Int("delta", delta))
	return true, nil
}

// RequestDelete stages the selected node for deletion. Without confirmation
// enabled it removes the node immediately and returns removed=true.
func (v *View) RequestDelete(t *tree.Tree) (removed bool, err error) {
	if v.selected == "" {
		return false, ErrNoSelection
	}
	v.pending = v.selected
	if v.opts.ConfirmDelete {
		return false, nil
	}
	return true, v.ConfirmDelete(t)
}

// PendingDelete returns the node awaiting confirmation.
func (v *View) PendingDelete() string { return v.pending }

// ConfirmDelete removes the pending node and selects its neighbor row.
func (v *View) ConfirmDelete(t *tree.Tree) error {
	id := v.pending
	v.pending = ""
	if id == "" {
		return ErrNoSelection
	}
	n, ok := t.FindByID(id)
	if !ok {
		return fmt.Errorf("delete: %w: %s", tree.ErrNotFound, id)
	}
	prev := v.selected
	if v.selected == id {
		v.selected = v.neighborAfterRemoval(n)
	}
	if err := t.Remove(n); err != nil {
		v.selected = prev
		return err
	}
	v.log.Debug("removed node", zap.String("node", id))
	return nil
}

// CancelDelete drops the pending delete. It is idempotent.
func (v *View) CancelDelete() bool {
	if v.pending == "" {
		return false
	}
	v.pending = ""
	return true
}

func (v *View) neighborAfterRemoval(n *tree.Node) string {
	i := v.RowIndex(n.ID())
	if i < 0 {
		return ""
	}
	for j := i + 1; j < len(v.rows); j++ {
		if v.rows[j].Depth <= v.rows[i].Depth {
			return v.rows[j].ID
		}
	}
	if i > 0 {
		return v.rows[i-1].ID
	}
	return ""
}

// RowRects returns each visible row's rectangle in content coordinates.
func (v *View) RowRects() []drag.Candidate {
	h := float64(v.opts.RowHeight)
	out := make([]drag.Candidate, 0, len(v.rows))
	for i, r := range v.rows {
		out = append(out, drag.Candidate{ID: r.ID, Rect: drag.Rect{X: 0, Y: float64(i) * h, W: float64(v.opts.Width), H: h}})
	}
	return out
}

// Resolve maps a viewport point (cell coordinates; the cell center is used)
// to a drop band. ok is false outside the outline.
func (v *View) Resolve(p drag.Point) (drag.Hover, bool) {
	if p.X < 0 || p.Y < 0 || p.X >= float64(v.opts.Width) || (v.opts.Height > 0 && p.Y >= float64(v.opts.Height)) {
		return drag.Hover{}, false
	}
	cp := drag.Point{X: p.X + 0.5, Y: p.Y + float64(v.scroll) + 0.5}
	res := drag.ResolveRows(cp, v.RowRects())
	h := drag.Hover{View: ViewName, Result: res}
	if res.Zone == drag.ZoneBelowLast {
		// Below the whole list means after the last top-level node.
		for i := len(v.rows) - 1; i >= 0; i-- {
			if v.rows[i].Depth == 0 {
				h.Result.Target = v.rows[i].ID
				break
			}
		}
	}
	return h, true
}

// RowAt returns the visible row under the viewport point p.
func (v *View) RowAt(p drag.Point) (Row, bool) {
	if p.X < 0 || p.Y < 0 || p.X >= float64(v.opts.Width) {
		return Row{}, false
	}
	i := (int(p.Y) + v.scroll) / v.opts.RowHeight
	if i < 0 || i >= len(v.rows) {
		return Row{}, false
	}
	return v.rows[i], true
}

func (v *View) ShowIndicator(h drag.Hover, valid bool) {
	v.indicator = Indicator{Target: h.Result.Target, Zone: h.Result.Zone, Valid: valid}
	v.showing = true
}

// HideIndicator is idempotent.
func (v *View) HideIndicator() bool {
	if !v.showing {
		return false
	}
	v.showing = false
	v.indicator = Indicator{}
	return true
}

func (v *View) Indicator() (Indicator, bool) { return v.indicator, v.showing }

// SetGhost shows a drag label while an outline drag is in progress.
func (v *View) SetGhost(label string) { v.ghost = label }

func (v *View) Ghost() string { return v.ghost }

// Drop commits the session's payload at h.
func (v *View) Drop(t *tree.Tree, s *drag.Session, h drag.Hover) (*tree.Node, error) {
	n, err := s.Apply(t, h)
	if err != nil {
		v.log.Debug("drop rejected",
			zap.String("zone", h.Result.Zone.String()),
			zap.String("target", h.Result.Target),
			zap.Error(err))
		return nil, err
	}
	return n, nil
}

// Scroll moves the viewport by delta rows of cells.
func (v *View) Scroll(delta int) {
	v.scroll += delta
	v.clampScroll()
}

func (v *View) ScrollY() int { return v.scroll }

func (v *View) clampScroll() {
	max := len(v.rows)*v.opts.RowHeight - v.opts.Height
	if max < 0 {
		max = 0
	}
	if v.scroll > max {
		v.scroll = max
	}
	if v.scroll < 0 {
		v.scroll = 0
	}
}

func (v *View) ensureVisible(i int) {
	if i < 0 || v.opts.Height <= 0 {
		return
	}
	top := i * v.opts.RowHeight
	bottom := top + v.opts.RowHeight
	if top < v.scroll {
		v.scroll = top
	}
	if bottom > v.scroll+v.opts.Height {
		v.scroll = bottom - v.opts.Height
	}
	v.clampScroll()
}
