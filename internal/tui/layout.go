package tui

import (
	"strings"

	"arbor/internal/drag"

	xansi "github.com/charmbracelet/x/ansi"
)

const (
	paletteWidth    = 24
	minOutlineWidth = 28
	minCanvasWidth  = 10
	headerRows      = 1
	footerRows      = 2
)

// rect is a pane's content area in screen cells.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// local converts a screen cell to pane coordinates. Points outside the pane
// map outside it too, which the views treat as "no zone".
func (r rect) local(x, y int) drag.Point {
	return drag.Point{X: float64(x - r.x), Y: float64(y - r.y)}
}

// paneLayout is palette | canvas | outline over detail, each pane with a
// title row above its content.
type paneLayout struct {
	bodyH   int
	palette rect
	canvas  rect
	outline rect
	detail  rect
}

func computeLayout(width, height int) paneLayout {
	bodyH := height - headerRows - footerRows
	if bodyH < 4 {
		bodyH = 4
	}
	contentH := bodyH - 1
	top := headerRows + 1

	ow := width / 4
	if ow < minOutlineWidth {
		ow = minOutlineWidth
	}
	cw := width - paletteWidth - ow - 2
	if cw < minCanvasWidth {
		cw = minCanvasWidth
	}
	detailH := contentH / 3
	outlineH := contentH - detailH - 1
	if outlineH < 1 {
		outlineH = 1
	}
	ox := paletteWidth + 1 + cw + 1
	return paneLayout{
		bodyH:   bodyH,
		palette: rect{x: 0, y: top, w: paletteWidth, h: contentH},
		canvas:  rect{x: paletteWidth + 1, y: top, w: cw, h: contentH},
		outline: rect{x: ox, y: top, w: ow, h: outlineH},
		detail:  rect{x: ox, y: top + outlineH + 1, w: ow, h: detailH},
	}
}

// normalizePane forces s to exactly width columns (ANSI-aware) and height
// lines, so lipgloss.JoinHorizontal keeps panes aligned.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		w := xansi.StringWidth(ln)
		if w > width {
			switch {
			case width <= 0:
				ln = ""
			case width == 1:
				ln = xansi.Cut(ln, 0, 1)
			default:
				ln = xansi.Cut(ln, 0, width-1) + "…"
			}
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}
