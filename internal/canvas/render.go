package canvas

import (
	"strings"

	"arbor/internal/drag"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// PlaceholderText is drawn on an empty canvas.
const PlaceholderText = "Drag a block here"

// Styles are the lipgloss styles the renderer paints with.
type Styles struct {
	Text        lipgloss.Style
	Border      lipgloss.Style
	Label       lipgloss.Style
	Selected    lipgloss.Style
	Indicator   lipgloss.Style
	Invalid     lipgloss.Style
	Placeholder lipgloss.Style
}

// DefaultStyles uses adaptive colors so the canvas reads on light and dark
// terminals.
func DefaultStyles() Styles {
	ac := func(light, dark string) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: light, Dark: dark}
	}
	return Styles{
		Text:        lipgloss.NewStyle(),
		Border:      lipgloss.NewStyle().Foreground(ac("250", "240")),
		Label:       lipgloss.NewStyle().Foreground(ac("240", "245")),
		Selected:    lipgloss.NewStyle().Foreground(ac("27", "75")).Bold(true),
		Indicator:   lipgloss.NewStyle().Foreground(ac("28", "42")).Bold(true),
		Invalid:     lipgloss.NewStyle().Foreground(ac("160", "203")).Bold(true),
		Placeholder: lipgloss.NewStyle().Foreground(ac("244", "243")).Italic(true),
	}
}

type cellClass uint8

const (
	clsText cellClass = iota
	clsBorder
	clsLabel
	clsSelected
	clsIndicator
	clsInvalid
	clsPlaceholder
)

type grid struct {
	w, h  int
	runes [][]rune
	cls   [][]cellClass
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, runes: make([][]rune, h), cls: make([][]cellClass, h)}
	for y := 0; y < h; y++ {
		g.runes[y] = []rune(strings.Repeat(" ", w))
		g.cls[y] = make([]cellClass, w)
	}
	return g
}

func (g *grid) set(x, y int, r rune, c cellClass) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.runes[y][x] = r
	g.cls[y][x] = c
}

func (g *grid) paint(x, y int, c cellClass) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.cls[y][x] = c
}

func (g *grid) text(x, y, max int, s string, c cellClass) {
	s = xansi.Truncate(s, max, "…")
	for _, r := range s {
		if max <= 0 {
			return
		}
		g.set(x, y, r, c)
		x++
		max--
	}
}

// Render draws the visible part of the canvas.
func (v *View) Render(st Styles) string {
	w, h := v.opts.Width, v.opts.Height
	if w <= 0 || h <= 0 {
		return ""
	}
	off := v.scrollY
	g := newGrid(w, h)

	for _, b := range v.layout.Boxes() {
		v.drawBox(g, b, off)
	}
	if v.placeholder {
		msg := xansi.Truncate(PlaceholderText, w, "…")
		x := (w - xansi.StringWidth(msg)) / 2
		g.text(x, h/2, w, msg, clsPlaceholder)
	}
	if v.showing {
		v.drawIndicator(g, off)
	}
	return g.String(st)
}

func (v *View) drawBox(g *grid, b *Box, off int) {
	x0, y0 := int(b.Rect.X), int(b.Rect.Y)-off
	x1, y1 := int(b.Rect.Right())-1, int(b.Rect.Bottom())-1-off
	cls := clsBorder
	if b.ID == v.selected {
		cls = clsSelected
	}
	if v.opts.Borders || b.ID == v.selected {
		for x := x0 + 1; x < x1; x++ {
			g.set(x, y0, '─', cls)
			g.set(x, y1, '─', cls)
		}
		for y := y0 + 1; y < y1; y++ {
			g.set(x0, y, '│', cls)
			g.set(x1, y, '│', cls)
		}
		g.set(x0, y0, '┌', cls)
		g.set(x1, y0, '┐', cls)
		g.set(x0, y1, '└', cls)
		g.set(x1, y1, '┘', cls)
	}
	lcls := clsLabel
	if b.ID == v.selected {
		lcls = clsSelected
	}
	g.text(x0+1, y0, x1-x0-1, titleFor(b.TypeTag, b.Label), lcls)
}

func (v *View) drawIndicator(g *grid, off int) {
	ind := v.indicator
	cls := clsIndicator
	if !ind.Valid {
		cls = clsInvalid
	}
	x0, y0 := int(ind.Rect.X), int(ind.Rect.Y)-off
	x1, y1 := int(ind.Rect.Right()), int(ind.Rect.Bottom())-off
	switch ind.Zone {
	case drag.ZoneAbove, drag.ZoneAboveFirst, drag.ZoneBelow, drag.ZoneBelowLast:
		for x := x0; x < x1; x++ {
			g.set(x, y0, '━', cls)
		}
	case drag.ZoneLeft, drag.ZoneRight:
		for y := y0; y < y1; y++ {
			g.set(x0, y, '┃', cls)
		}
	default:
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				g.paint(x, y, cls)
			}
		}
		if y0 >= 0 && y0 < g.h && x0 >= 0 && x0 < g.w && g.runes[y0][x0] == ' ' {
			g.text(x0, y0, x1-x0, "+", cls)
		}
	}
}

// String joins the grid rows, styling runs of equal class together.
func (g *grid) String(st Styles) string {
	style := func(c cellClass) lipgloss.Style {
		switch c {
		case clsBorder:
			return st.Border
		case clsLabel:
			return st.Label
		case clsSelected:
			return st.Selected
		case clsIndicator:
			return st.Indicator
		case clsInvalid:
			return st.Invalid
		case clsPlaceholder:
			return st.Placeholder
		default:
			return st.Text
		}
	}
	var b strings.Builder
	for y := 0; y < g.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= g.w; x++ {
			if x < g.w && g.cls[y][x] == g.cls[y][start] {
				continue
			}
			b.WriteString(style(g.cls[y][start]).Render(string(g.runes[y][start:x])))
			start = x
		}
	}
	return b.String()
}
