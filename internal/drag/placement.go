package drag

import "arbor/internal/tree"

// Placement maps the hover onto a tree insertion: ref is the id of the
// reference node ("" for the root) and pos says where relative to it.
func (h Hover) Placement() (ref string, pos tree.Position) {
	switch h.Result.Zone {
	case ZoneAbove, ZoneLeft, ZoneAboveFirst:
		return h.Result.Target, tree.Before
	case ZoneBelow, ZoneRight, ZoneBelowLast:
		return h.Result.Target, tree.After
	case ZoneInside:
		return h.Result.Target, tree.InsideLast
	default:
		return h.Container, tree.Append
	}
}
