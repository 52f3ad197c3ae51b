package canvas

import (
	"arbor/internal/drag"
	"arbor/internal/tree"

	"go.uber.org/zap"
)

// ViewName identifies the canvas in hovers and change logs.
const ViewName = "canvas"

// Options configure a View.
type Options struct {
	Width  int
	Height int
	// Margin is the resolver's vertical preference window, in cells. Zero
	// lets the vertical axis win only on an exact center hit; callers
	// normally pass drag.DefaultMargin.
	Margin float64
	// Borders draws box outlines; Padding spreads children apart while a drag
	// is in progress.
	Borders bool
	Padding bool
}

// Indicator is the insertion marker for the current hover.
type Indicator struct {
	Zone  drag.Zone
	Rect  drag.Rect
	Valid bool
}

// View projects the tree as nested drop zones. It holds no nodes, only the
// last layout computed from the tree.
type View struct {
	opts   Options
	log    *zap.Logger
	layout *Layout

	spacing     bool
	indicator   Indicator
	showing     bool
	placeholder bool
	selected    string
	scrollY     int
}

func New(opts Options, log *zap.Logger) *View {
	if log == nil {
		log = zap.NewNop()
	}
	return &View{opts: opts, log: log.Named(ViewName), layout: &Layout{}, placeholder: true}
}

func (v *View) Options() Options { return v.opts }

// Resize changes the viewport; call Relayout afterwards.
func (v *View) Resize(w, h int) {
	v.opts.Width, v.opts.Height = w, h
}

// SetBorders toggles box outlines.
func (v *View) SetBorders(on bool) { v.opts.Borders = on }

// SetPadding toggles drag spacing. It only takes effect during a drag.
func (v *View) SetPadding(on bool) { v.opts.Padding = on }

// Relayout recomputes the projection from t.
func (v *View) Relayout(t *tree.Tree) {
	gap := 0
	if v.spacing && v.opts.Padding {
		gap = 1
	}
	v.layout = BuildLayout(t, layoutOptions{width: v.opts.Width, height: v.opts.Height, gap: gap})
	if v.selected != "" {
		if _, ok := v.layout.Box(v.selected); !ok {
			v.selected = ""
		}
	}
	v.clampScroll()
}

// Layout returns the last computed layout.
func (v *View) Layout() *Layout { return v.layout }

// SetSpacing turns drag spacing on or off and reports whether the layout
// changed.
func (v *View) SetSpacing(t *tree.Tree, on bool) bool {
	if v.spacing == on {
		return false
	}
	v.spacing = on
	if !v.opts.Padding {
		return false
	}
	v.Relayout(t)
	return true
}

// Resolve finds the drop zone under the viewport point p and runs the
// resolver among its children, skipping dragged. ok is false when p is
// outside the canvas.
func (v *View) Resolve(p drag.Point, dragged string) (drag.Hover, bool) {
	if p.X < 0 || p.Y < 0 || (v.opts.Height > 0 && p.Y >= float64(v.opts.Height)) {
		return drag.Hover{}, false
	}
	p = v.ToContent(p)
	container, ok := v.layout.ContainerAt(p)
	if !ok {
		return drag.Hover{}, false
	}
	r := drag.Resolver{Margin: v.opts.Margin}
	res := r.Resolve(p, v.layout.Candidates(container), dragged)
	if b, ok := v.layout.Box(res.Target); ok {
		res.Rect = b.Rect
	} else {
		res.Rect = v.layout.ZoneRect(container)
	}
	return drag.Hover{View: ViewName, Container: container, Result: res}, true
}

// ShowIndicator positions the insertion marker for h.
func (v *View) ShowIndicator(h drag.Hover, valid bool) {
	v.indicator = indicatorFor(v.layout, h, valid)
	v.showing = true
}

// HideIndicator removes the marker. It is idempotent.
func (v *View) HideIndicator() bool {
	if !v.showing {
		return false
	}
	v.showing = false
	v.indicator = Indicator{}
	return true
}

// Indicator returns the visible marker, if any.
func (v *View) Indicator() (Indicator, bool) { return v.indicator, v.showing }

func indicatorFor(l *Layout, h drag.Hover, valid bool) Indicator {
	r := h.Result.Rect
	if b, ok := l.Box(h.Result.Target); ok {
		r = b.Rect
	}
	ind := Indicator{Zone: h.Result.Zone, Valid: valid}
	switch h.Result.Zone {
	case drag.ZoneAbove, drag.ZoneAboveFirst:
		ind.Rect = drag.Rect{X: r.X, Y: r.Y, W: r.W, H: 1}
	case drag.ZoneBelow, drag.ZoneBelowLast:
		ind.Rect = drag.Rect{X: r.X, Y: r.Bottom() - 1, W: r.W, H: 1}
	case drag.ZoneLeft:
		ind.Rect = drag.Rect{X: r.X, Y: r.Y, W: 1, H: r.H}
	case drag.ZoneRight:
		ind.Rect = drag.Rect{X: r.Right() - 1, Y: r.Y, W: 1, H: r.H}
	case drag.ZoneInside:
		ind.Rect = r
	default:
		ind.Rect = l.ZoneRect(h.Container)
	}
	return ind
}

// SyncPlaceholder shows the empty-state placeholder iff the tree has no
// children. It reports whether visibility changed; calling it twice in a
// row never changes anything the second time.
func (v *View) SyncPlaceholder(t *tree.Tree) bool {
	want := t.Root().ChildCount() == 0
	if v.placeholder == want {
		return false
	}
	v.placeholder = want
	return true
}

// PlaceholderVisible reports the placeholder state.
func (v *View) PlaceholderVisible() bool { return v.placeholder }

// Select marks id as the selected box ("" clears).
func (v *View) Select(id string) { v.selected = id }

func (v *View) Selected() string { return v.selected }

// NodeAt maps a viewport point to the deepest node under it.
func (v *View) NodeAt(p drag.Point) (string, bool) {
	return v.layout.NodeAt(v.ToContent(p))
}

// ToContent converts viewport coordinates to layout coordinates.
func (v *View) ToContent(p drag.Point) drag.Point {
	return drag.Point{X: p.X, Y: p.Y + float64(v.scrollY)}
}

// Scroll moves the viewport by delta rows.
func (v *View) Scroll(delta int) {
	v.scrollY += delta
	v.clampScroll()
}

func (v *View) ScrollY() int { return v.scrollY }

func (v *View) clampScroll() {
	max := v.layout.Height() - v.opts.Height
	if max < 0 {
		max = 0
	}
	if v.scrollY > max {
		v.scrollY = max
	}
	if v.scrollY < 0 {
		v.scrollY = 0
	}
}

// Drop commits the session's payload at h. Errors are diagnostics only; the
// tree is unchanged when one is returned.
func (v *View) Drop(t *tree.Tree, s *drag.Session, h drag.Hover) (*tree.Node, error) {
	n, err := s.Apply(t, h)
	if err != nil {
		v.log.Debug("drop rejected",
			zap.String("zone", h.Result.Zone.String()),
			zap.String("target", h.Result.Target),
			zap.String("container", h.Container),
			zap.Error(err))
		return nil, err
	}
	v.log.Debug("drop committed",
		zap.String("node", n.ID()),
		zap.String("type", n.TypeTag),
		zap.String("zone", h.Result.Zone.String()))
	return n, nil
}
