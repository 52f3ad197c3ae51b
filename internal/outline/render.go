package outline

import (
	"fmt"
	"strings"

	"arbor/internal/drag"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// Styles for the outline renderer.
type Styles struct {
	Row       lipgloss.Style
	Meta      lipgloss.Style
	Selected  lipgloss.Style
	Pending   lipgloss.Style
	Indicator lipgloss.Style
	Invalid   lipgloss.Style
	Empty     lipgloss.Style
}

func DefaultStyles() Styles {
	ac := func(light, dark string) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: light, Dark: dark}
	}
	return Styles{
		Row:       lipgloss.NewStyle(),
		Meta:      lipgloss.NewStyle().Foreground(ac("244", "243")),
		Selected:  lipgloss.NewStyle().Background(ac("#e9e9e9", "#262626")).Bold(true),
		Pending:   lipgloss.NewStyle().Foreground(ac("160", "203")).Strikethrough(true),
		Indicator: lipgloss.NewStyle().Foreground(ac("28", "42")).Bold(true),
		Invalid:   lipgloss.NewStyle().Foreground(ac("160", "203")).Bold(true),
		Empty:     lipgloss.NewStyle().Foreground(ac("244", "243")).Italic(true),
	}
}

// EmptyText is shown when the tree has no nodes.
const EmptyText = "(no nodes)"

func twisty(r Row) string {
	switch {
	case !r.HasChildren:
		return "•"
	case r.Collapsed:
		return "▸"
	default:
		return "▾"
	}
}

// RowTitle is the text shown for one row.
func RowTitle(r Row) string {
	label := strings.TrimSpace(r.Label)
	if label == "" || strings.EqualFold(label, r.TypeTag) {
		return r.TypeTag
	}
	return r.TypeTag + ": " + label
}

// Render draws the visible rows. Each row occupies RowHeight lines: a spacer
// that carries the "above" marker, the title, and a meta line that carries
// the "below" marker.
func (v *View) Render(st Styles) string {
	w, h := v.opts.Width, v.opts.Height
	if w <= 0 || h <= 0 {
		return ""
	}
	var lines []string
	if len(v.rows) == 0 {
		lines = append(lines, st.Empty.Render(xansi.Truncate(EmptyText, w, "…")))
		if v.showing {
			lines = append(lines, v.marker(st, w, 0))
		}
	}
	for _, r := range v.rows {
		lines = append(lines, v.renderRow(st, r, w)...)
	}
	if v.scroll > 0 && v.scroll < len(lines) {
		lines = lines[v.scroll:]
	}
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	if v.ghost != "" && len(lines) > 0 {
		lines[len(lines)-1] = st.Indicator.Render(xansi.Truncate("dragging "+v.ghost, w, "…"))
	}
	for i, l := range lines {
		lines[i] = padRight(l, w)
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderRow(st Styles, r Row, w int) []string {
	rh := v.opts.RowHeight
	indent := strings.Repeat("  ", r.Depth)
	title := xansi.Truncate(indent+twisty(r)+" "+RowTitle(r), w, "…")
	meta := fmt.Sprintf("%s  #%s", indent, r.ID)
	if r.Children > 0 {
		meta += fmt.Sprintf(" · %d children", r.Children)
	}
	meta = xansi.Truncate(meta, w, "…")

	titleStyle := st.Row
	switch {
	case r.ID == v.pending:
		titleStyle = st.Pending
	case r.ID == v.selected:
		titleStyle = st.Selected
	}
	ind, marked := v.indicator, v.showing && v.indicator.Target == r.ID
	if marked && ind.Zone == drag.ZoneInside {
		titleStyle = st.Indicator
		if !ind.Valid {
			titleStyle = st.Invalid
		}
		title += " ⏎"
	}

	out := make([]string, rh)
	mid := rh / 2
	out[mid] = titleStyle.Render(padRight(title, w))
	if mid+1 < rh {
		out[mid+1] = st.Meta.Render(meta)
	}
	if marked && rh >= 3 {
		switch ind.Zone {
		case drag.ZoneAbove, drag.ZoneAboveFirst:
			out[0] = v.marker(st, w, r.Depth)
		case drag.ZoneBelow, drag.ZoneBelowLast:
			out[rh-1] = v.marker(st, w, r.Depth)
		}
	}
	return out
}

func (v *View) marker(st Styles, w, depth int) string {
	style := st.Indicator
	if !v.indicator.Valid {
		style = st.Invalid
	}
	indent := 2 * depth
	if indent >= w {
		indent = 0
	}
	return strings.Repeat(" ", indent) + style.Render(strings.Repeat("━", w-indent))
}

func padRight(s string, w int) string {
	if n := xansi.StringWidth(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}
