package tui

import (
	"time"

	"arbor/internal/editor"
	"arbor/internal/model"
	"arbor/internal/palette"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/zap"
)

type pane int

const (
	panePalette pane = iota
	paneCanvas
	paneOutline
	paneDetail
	paneCount
)

type modalKind int

const (
	modalNone modalKind = iota
	modalConfirmDelete
)

// Options configures the TUI.
type Options struct {
	// Debounce is the window for coalescing detail-pane renders. Zero
	// renders synchronously.
	Debounce time.Duration
	Log      *zap.Logger
}

// pressState records a left-button press until it turns into a drag or is
// released.
type pressState struct {
	pane     pane
	id       string
	template *model.Template
}

type detailRenderMsg struct{ seq int }

type minibufferClearMsg struct{ seq int }

const minibufferTTL = 3 * time.Second

type appModel struct {
	ed      *editor.Editor
	catalog *palette.Catalog
	log     *zap.Logger

	keys   keyMap
	help   help.Model
	detail viewport.Model

	width, height  int
	seenWindowSize bool
	layout         paneLayout
	focus          pane

	entries       []paletteEntry
	paletteCursor int
	paletteScroll int

	modal        modalKind
	confirmFocus confirmModalFocus

	press    *pressState
	dragging bool

	debounce      time.Duration
	detailSeq     int
	detailFor     string
	minibuffer    string
	minibufferErr bool
	minibufferSeq int
}

func newAppModel(ed *editor.Editor, catalog *palette.Catalog, opts Options) appModel {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	m := appModel{
		ed:       ed,
		catalog:  catalog,
		log:      log.Named("tui"),
		keys:     defaultKeyMap(),
		help:     help.New(),
		detail:   viewport.New(0, 0),
		focus:    panePalette,
		entries:  paletteEntries(catalog),
		debounce: opts.Debounce,
	}
	m.paletteCursor = nextTemplate(m.entries, -1, 1)
	if m.paletteCursor < 0 {
		m.paletteCursor = 0
	}
	return m
}

func (m *appModel) resize(width, height int) {
	m.width, m.height = width, height
	m.layout = computeLayout(width, height)
	l := m.layout
	m.ed.Resize(l.canvas.w, l.canvas.h, l.outline.w, l.outline.h)
	m.detail.Width, m.detail.Height = l.detail.w, l.detail.h
	m.help.Width = width
	m.detailFor = ""
	m.renderDetail()
	m.ensurePaletteVisible()
}

func (m *appModel) selectedTemplate() (model.Template, bool) {
	if m.paletteCursor < 0 || m.paletteCursor >= len(m.entries) || !m.entries[m.paletteCursor].isTemplate() {
		return model.Template{}, false
	}
	return m.entries[m.paletteCursor].template, true
}
