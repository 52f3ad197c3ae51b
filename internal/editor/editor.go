// Package editor wires the tree, the drag session, both views, history and
// change notification into one single-threaded engine.
package editor

import (
	"errors"
	"fmt"

	"arbor/internal/canvas"
	"arbor/internal/drag"
	"arbor/internal/history"
	"arbor/internal/model"
	"arbor/internal/notify"
	"arbor/internal/outline"
	"arbor/internal/tree"

	"go.uber.org/zap"
)

var (
	// ErrMissingDropTarget is returned when the pointer is outside every drop
	// zone. The drag is treated as cancelled.
	ErrMissingDropTarget = errors.New("missing drop target")
	// ErrNoDrag is returned by drag operations while idle.
	ErrNoDrag = errors.New("no drag in progress")
)

// Change kinds published for history moves; structural commits use the
// tree's commit kind.
const (
	KindUndo = "undo"
	KindRedo = "redo"
)

type Options struct {
	Canvas       canvas.Options
	Outline      outline.Options
	HistoryLimit int
}

// Editor owns the canonical tree. Views only read it and call its mutation
// methods through the editor; every commit is saved to history and marks the
// projections dirty. Projections are rebuilt once per editor operation,
// however many commits it made, and each commit is published after that with
// the selection the operation ended on.
type Editor struct {
	log      *zap.Logger
	tree     *tree.Tree
	session  drag.Session
	canvas   *canvas.View
	outline  *outline.View
	history  *history.Manager
	notifier *notify.Notifier

	dirty   bool
	pending []pendingChange
}

// pendingChange is a commit waiting to be published once the operation has
// settled its selection.
type pendingChange struct {
	kind string
	tree []model.SnapshotNode
}

func New(opts Options, log *zap.Logger) (*Editor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	t := tree.New()
	h, err := history.New(t, opts.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	e := &Editor{
		log:      log,
		tree:     t,
		canvas:   canvas.New(opts.Canvas, log),
		outline:  outline.New(opts.Outline, log),
		history:  h,
		notifier: notify.New(),
	}
	t.OnCommit(e.onCommit)
	e.rebuild()
	return e, nil
}

func (e *Editor) Tree() *tree.Tree           { return e.tree }
func (e *Editor) Canvas() *canvas.View       { return e.canvas }
func (e *Editor) Outline() *outline.View     { return e.outline }
func (e *Editor) History() *history.Manager  { return e.history }
func (e *Editor) Notifier() *notify.Notifier { return e.notifier }
func (e *Editor) Session() *drag.Session     { return &e.session }

// Snapshot returns the serialized tree.
func (e *Editor) Snapshot() []model.SnapshotNode { return e.tree.Serialize() }

func (e *Editor) onCommit(c tree.Commit) {
	if err := e.history.Save(); err != nil {
		e.log.Error("history save failed", zap.Error(err))
	}
	e.pending = append(e.pending, pendingChange{kind: string(c.Kind), tree: e.tree.Serialize()})
	e.dirty = true
}

// settle rebuilds both projections if a commit happened since the last one.
func (e *Editor) settle() {
	if !e.dirty {
		return
	}
	e.dirty = false
	e.rebuild()
}

// flush settles the projections and publishes queued commits.
func (e *Editor) flush() {
	e.settle()
	pending := e.pending
	e.pending = nil
	for _, c := range pending {
		e.notifier.Publish(c.kind, e.outline.Selected(), c.tree)
	}
}

func (e *Editor) rebuild() {
	e.canvas.Relayout(e.tree)
	e.canvas.SyncPlaceholder(e.tree)
	e.outline.Rebuild(e.tree)
	e.canvas.Select(e.outline.Selected())
}

// Resize sets the cell size of both views.
func (e *Editor) Resize(canvasW, canvasH, outlineW, outlineH int) {
	e.canvas.Resize(canvasW, canvasH)
	e.outline.Resize(outlineW, outlineH)
	e.rebuild()
}

// BeginTemplateDrag starts dragging a palette template. The template is
// validated when it is dropped.
func (e *Editor) BeginTemplateDrag(origin string, t model.Template) {
	if e.session.StartTemplate(origin, t) {
		e.log.Debug("cleared leftover drag state")
	}
	e.beginVisuals("")
}

// BeginNodeDrag starts dragging an existing node.
func (e *Editor) BeginNodeDrag(origin, id string) error {
	n, ok := e.tree.FindByID(id)
	if !ok {
		return fmt.Errorf("drag: %w: %s", tree.ErrNotFound, id)
	}
	if e.session.StartNode(origin, n) {
		e.log.Debug("cleared leftover drag state")
	}
	ghost := ""
	if origin == outline.ViewName {
		ghost = outline.RowTitle(outline.Row{TypeTag: n.TypeTag, Label: n.Label})
	}
	e.beginVisuals(ghost)
	return nil
}

func (e *Editor) beginVisuals(ghost string) {
	e.canvas.HideIndicator()
	e.outline.HideIndicator()
	e.outline.SetGhost(ghost)
	e.canvas.SetSpacing(e.tree, true)
}

// DragOver evaluates the pointer at p in view. The indicator is shown in that
// view (marked invalid for self/descendant targets) and hidden elsewhere.
func (e *Editor) DragOver(view string, p drag.Point) (drag.Hover, error) {
	if !e.session.Active() {
		return drag.Hover{}, ErrNoDrag
	}
	h, ok := e.resolve(view, p)
	if !ok {
		e.session.ClearHover()
		e.canvas.HideIndicator()
		e.outline.HideIndicator()
		return drag.Hover{}, ErrMissingDropTarget
	}
	valid := e.validHover(h) == nil
	switch view {
	case canvas.ViewName:
		e.outline.HideIndicator()
		e.canvas.ShowIndicator(h, valid)
	case outline.ViewName:
		e.canvas.HideIndicator()
		e.outline.ShowIndicator(h, valid)
	}
	e.session.Over(h)
	return h, nil
}

func (e *Editor) resolve(view string, p drag.Point) (drag.Hover, bool) {
	switch view {
	case canvas.ViewName:
		return e.canvas.Resolve(p, e.session.DraggedID())
	case outline.ViewName:
		return e.outline.Resolve(p)
	default:
		return drag.Hover{}, false
	}
}

func (e *Editor) validHover(h drag.Hover) error {
	n := e.session.Node()
	if n == nil {
		return nil
	}
	refID, pos := h.Placement()
	var ref *tree.Node
	if refID != "" {
		r, ok := e.tree.FindByID(refID)
		if !ok {
			return tree.ErrNotFound
		}
		ref = r
	}
	return e.tree.CheckMove(n, ref, pos)
}

// Drop ends the drag at p in view. On success the new or moved node is
// selected and returned; on any error nothing changed and the drag is
// cancelled.
func (e *Editor) Drop(view string, p drag.Point) (*tree.Node, error) {
	if !e.session.Active() {
		return nil, ErrNoDrag
	}
	defer e.flush()
	h, ok := e.resolve(view, p)
	if !ok {
		e.log.Debug("drop outside any zone", zap.String("view", view), zap.Float64("x", p.X), zap.Float64("y", p.Y))
		e.EndDrag()
		return nil, ErrMissingDropTarget
	}
	var (
		n   *tree.Node
		err error
	)
	switch view {
	case outline.ViewName:
		n, err = e.outline.Drop(e.tree, &e.session, h)
	default:
		n, err = e.canvas.Drop(e.tree, &e.session, h)
	}
	e.EndDrag()
	if err != nil {
		e.log.Warn("drop rejected", zap.String("view", view), zap.String("zone", h.Result.Zone.String()), zap.Error(err))
		return nil, err
	}
	e.settle()
	e.selectID(n.ID())
	return n, nil
}

// EndDrag cancels or finishes the drag. It is idempotent.
func (e *Editor) EndDrag() bool {
	changed := e.session.Reset()
	if e.canvas.HideIndicator() {
		changed = true
	}
	if e.outline.HideIndicator() {
		changed = true
	}
	if e.outline.Ghost() != "" {
		e.outline.SetGhost("")
		changed = true
	}
	if e.canvas.SetSpacing(e.tree, false) {
		changed = true
	}
	return changed
}

// Undo restores the previous snapshot. At the oldest snapshot it returns
// history.ErrUnderflow and changes nothing.
func (e *Editor) Undo() error {
	if err := e.history.Undo(); err != nil {
		e.log.Debug("undo ignored", zap.Error(err))
		return err
	}
	e.rebind(KindUndo)
	return nil
}

// Redo restores the next snapshot, or returns history.ErrOverflow.
func (e *Editor) Redo() error {
	if err := e.history.Redo(); err != nil {
		e.log.Debug("redo ignored", zap.Error(err))
		return err
	}
	e.rebind(KindRedo)
	return nil
}

// rebind treats restored content as freshly attached: the drag and its
// visuals are dropped, projections are rebuilt, and id-keyed view state is
// pruned to ids that still exist.
func (e *Editor) rebind(kind string) {
	e.EndDrag()
	e.outline.CancelDelete()
	e.dirty = false
	e.pending = nil
	e.rebuild()
	e.notifier.Publish(kind, e.outline.Selected(), e.tree.Serialize())
}

// Select sets the single selection in both views ("" clears).
func (e *Editor) Select(id string) error {
	if id != "" {
		if _, ok := e.tree.FindByID(id); !ok {
			return fmt.Errorf("select: %w: %s", tree.ErrNotFound, id)
		}
	}
	e.selectID(id)
	return nil
}

func (e *Editor) selectID(id string) {
	e.outline.Select(e.tree, id)
	e.canvas.Select(e.outline.Selected())
}

func (e *Editor) Selected() string { return e.outline.Selected() }

// SelectRelative moves the selection by delta outline rows.
func (e *Editor) SelectRelative(delta int) string {
	id := e.outline.SelectRelative(delta)
	e.canvas.Select(id)
	return id
}

// SelectAt selects the canvas node under the viewport point p.
func (e *Editor) SelectAt(p drag.Point) (string, bool) {
	id, ok := e.canvas.NodeAt(p)
	if !ok {
		return "", false
	}
	e.selectID(id)
	return id, true
}

// SelectRowAt selects the outline row under the viewport point p.
func (e *Editor) SelectRowAt(p drag.Point) (string, bool) {
	r, ok := e.outline.RowAt(p)
	if !ok {
		return "", false
	}
	e.selectID(r.ID)
	return r.ID, true
}

// Insert places a template after the selected node, or at the end of the
// root when nothing is selected. It is the keyboard path from the palette.
func (e *Editor) Insert(t model.Template) (*tree.Node, error) {
	if err := t.Validate(); err != nil {
		e.log.Debug("insert rejected", zap.String("type", t.TypeTag), zap.Error(err))
		return nil, err
	}
	defer e.flush()
	var ref *tree.Node
	pos := tree.Append
	if n, ok := e.tree.FindByID(e.outline.Selected()); ok {
		ref, pos = n, tree.After
	}
	n := tree.NewNode(t)
	if err := e.tree.InsertRelative(n, ref, pos); err != nil {
		return nil, err
	}
	e.settle()
	e.selectID(n.ID())
	return n, nil
}

// MoveSelected shifts the selected node by delta among its siblings.
func (e *Editor) MoveSelected(delta int) (bool, error) {
	defer e.flush()
	return e.outline.MoveSelected(e.tree, delta)
}

// RequestDelete stages (or, without confirmation, performs) deletion of the
// selected node.
func (e *Editor) RequestDelete() (bool, error) {
	defer e.flush()
	return e.outline.RequestDelete(e.tree)
}

func (e *Editor) PendingDelete() string { return e.outline.PendingDelete() }

// ConfirmDelete removes the node staged by RequestDelete.
func (e *Editor) ConfirmDelete() error {
	defer e.flush()
	if err := e.outline.ConfirmDelete(e.tree); err != nil {
		return err
	}
	e.canvas.Select(e.outline.Selected())
	return nil
}

func (e *Editor) CancelDelete() bool { return e.outline.CancelDelete() }

// ToggleCollapsed flips an outline node's collapsed flag.
func (e *Editor) ToggleCollapsed(id string) bool {
	return e.outline.ToggleCollapsed(e.tree, id)
}

// ToggleBorders flips canvas box outlines and returns the new state.
func (e *Editor) ToggleBorders() bool {
	on := !e.canvas.Options().Borders
	e.canvas.SetBorders(on)
	return on
}

// TogglePadding flips drag spacing and returns the new state.
func (e *Editor) TogglePadding() bool {
	on := !e.canvas.Options().Padding
	e.canvas.SetPadding(on)
	e.canvas.Relayout(e.tree)
	return on
}
