package tui

import (
	"strings"

	"arbor/internal/model"
	"arbor/internal/palette"

	"github.com/charmbracelet/lipgloss"
)

// paletteEntry is one line of the palette pane: a category heading or a
// draggable template.
type paletteEntry struct {
	heading  string
	template model.Template
}

func (e paletteEntry) isTemplate() bool { return e.heading == "" }

func paletteEntries(c *palette.Catalog) []paletteEntry {
	var out []paletteEntry
	if c == nil {
		return out
	}
	for _, cat := range c.Categories {
		if len(cat.Templates) == 0 {
			continue
		}
		out = append(out, paletteEntry{heading: cat.Title()})
		for _, t := range cat.Templates {
			if t.Category == "" {
				t.Category = cat.Name
			}
			out = append(out, paletteEntry{template: t})
		}
	}
	return out
}

// nextTemplate returns the index of the next template entry from i in
// direction dir, or i when there is none.
func nextTemplate(entries []paletteEntry, i, dir int) int {
	for j := i + dir; j >= 0 && j < len(entries); j += dir {
		if entries[j].isTemplate() {
			return j
		}
	}
	return i
}

func templateTitle(t model.Template) string {
	icon := strings.TrimSpace(t.Icon)
	if icon == "" {
		icon = "▪"
	}
	return icon + " " + t.DisplayLabel()
}

func (m *appModel) ensurePaletteVisible() {
	h := m.layout.palette.h
	if h <= 0 {
		return
	}
	if m.paletteCursor < m.paletteScroll {
		m.paletteScroll = m.paletteCursor
		// Keep the category heading in view when scrolling up to its first entry.
		if m.paletteScroll > 0 && !m.entries[m.paletteScroll-1].isTemplate() {
			m.paletteScroll--
		}
	}
	if m.paletteCursor >= m.paletteScroll+h {
		m.paletteScroll = m.paletteCursor - h + 1
	}
}

// paletteAt returns the entry index under a palette-local row.
func (m *appModel) paletteAt(row int) (int, bool) {
	i := row + m.paletteScroll
	if row < 0 || i < 0 || i >= len(m.entries) || !m.entries[i].isTemplate() {
		return 0, false
	}
	return i, true
}

func (m *appModel) renderPalette() string {
	r := m.layout.palette
	heading := lipgloss.NewStyle().Bold(true).Foreground(colorChromeMutedFg)
	var lines []string
	for i := m.paletteScroll; i < len(m.entries) && len(lines) < r.h; i++ {
		e := m.entries[i]
		if !e.isTemplate() {
			lines = append(lines, heading.Render(e.heading))
			continue
		}
		ln := " " + templateTitle(e.template)
		if i == m.paletteCursor {
			st := lipgloss.NewStyle()
			if m.focus == panePalette {
				st = styleSelectedRow()
			} else {
				st = st.Bold(true)
			}
			ln = st.Render(normalizePane(ln, r.w, 1))
		}
		lines = append(lines, ln)
	}
	if len(lines) == 0 {
		lines = append(lines, styleMuted().Render("(empty catalog)"))
	}
	return normalizePane(strings.Join(lines, "\n"), r.w, r.h)
}
