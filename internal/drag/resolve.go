package drag

import "math"

// Zone is the resolved insertion relationship relative to a candidate.
type Zone int

const (
	ZoneNone Zone = iota
	ZoneAbove
	ZoneBelow
	ZoneLeft
	ZoneRight
	ZoneInside
	ZoneEmpty
	ZoneAboveFirst
	ZoneBelowLast
)

func (z Zone) String() string {
	switch z {
	case ZoneAbove:
		return "above"
	case ZoneBelow:
		return "below"
	case ZoneLeft:
		return "left"
	case ZoneRight:
		return "right"
	case ZoneInside:
		return "inside"
	case ZoneEmpty:
		return "empty"
	case ZoneAboveFirst:
		return "above-first"
	case ZoneBelowLast:
		return "below-last"
	default:
		return "none"
	}
}

// Leading reports whether the zone inserts before its target.
func (z Zone) Leading() bool {
	return z == ZoneAbove || z == ZoneLeft || z == ZoneAboveFirst
}

// Candidate is one sibling box inside the active container.
type Candidate struct {
	ID   string
	Rect Rect
}

// Result is the resolver output. Target is empty for ZoneEmpty and ZoneNone.
type Result struct {
	Target string
	Zone   Zone
	Rect   Rect
}

// DefaultMargin is the vertical-axis preference window in terminal cells.
const DefaultMargin = 2

// Resolver turns a pointer position into an insertion decision among the
// children of one container.
type Resolver struct {
	// Margin is how close (on the vertical axis) the pointer must be to a
	// vertical-axis candidate's center for it to beat a horizontal-axis one.
	Margin float64
}

// Resolve is a pure function of its inputs. Candidates are in document order;
// the one whose ID equals exclude (the dragged node) is ignored.
func (r Resolver) Resolve(p Point, siblings []Candidate, exclude string) Result {
	cands := make([]Candidate, 0, len(siblings))
	for _, c := range siblings {
		if exclude != "" && c.ID == exclude {
			continue
		}
		cands = append(cands, c)
	}
	if len(cands) == 0 {
		return Result{Zone: ZoneEmpty}
	}

	var (
		hx, vy       *Candidate
		minXD, minYD = math.Inf(1), math.Inf(1)
	)
	for i := range cands {
		c := &cands[i]
		if c.Rect.withinY(p.Y) {
			if d := dist(p.X, c.Rect.CenterX()); d < minXD {
				minXD = d
				hx = c
			}
		}
		if c.Rect.withinX(p.X) {
			if d := dist(p.Y, c.Rect.CenterY()); d < minYD {
				minYD = d
				vy = c
			}
		}
	}

	switch {
	case hx != nil && (vy == nil || minYD > r.Margin):
		z := ZoneRight
		if p.X < hx.Rect.CenterX() {
			z = ZoneLeft
		}
		return Result{Target: hx.ID, Zone: z, Rect: hx.Rect}
	case vy != nil:
		z := ZoneBelow
		if p.Y < vy.Rect.CenterY() {
			z = ZoneAbove
		}
		return Result{Target: vy.ID, Zone: z, Rect: vy.Rect}
	}

	first, last := cands[0], cands[len(cands)-1]
	if p.Y < first.Rect.Top() {
		return Result{Target: first.ID, Zone: ZoneAboveFirst, Rect: first.Rect}
	}
	if p.Y > last.Rect.Bottom() {
		return Result{Target: last.ID, Zone: ZoneBelowLast, Rect: last.Rect}
	}
	return Result{Zone: ZoneNone}
}

// Row band boundaries for list drops: top quarter, middle half, bottom quarter.
const (
	rowAboveFrac = 0.25
	rowBelowFrac = 0.75
)

// ResolveRows is the vertical-list variant: each row splits into
// above/inside/below bands, with edge handling for the whole list. Rows must
// be sorted top to bottom.
func ResolveRows(p Point, rows []Candidate) Result {
	if len(rows) == 0 {
		return Result{Zone: ZoneEmpty}
	}
	first, last := rows[0], rows[len(rows)-1]
	if p.Y < first.Rect.Top() {
		return Result{Target: first.ID, Zone: ZoneAboveFirst, Rect: first.Rect}
	}
	if p.Y >= last.Rect.Bottom() {
		return Result{Target: last.ID, Zone: ZoneBelowLast, Rect: last.Rect}
	}
	for _, row := range rows {
		if p.Y < row.Rect.Top() || p.Y >= row.Rect.Bottom() || row.Rect.H <= 0 {
			continue
		}
		frac := (p.Y - row.Rect.Top()) / row.Rect.H
		z := ZoneInside
		switch {
		case frac < rowAboveFrac:
			z = ZoneAbove
		case frac >= rowBelowFrac:
			z = ZoneBelow
		}
		return Result{Target: row.ID, Zone: z, Rect: row.Rect}
	}
	return Result{Zone: ZoneNone}
}
