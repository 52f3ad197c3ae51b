// Package tui is the interactive terminal frontend: a block palette, the
// canvas, the outline and a detail pane for the selected node.
package tui

import (
	"context"

	"arbor/internal/editor"
	"arbor/internal/palette"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(ctx context.Context, ed *editor.Editor, catalog *palette.Catalog, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()
	m := newAppModel(ed, catalog, opts)
	_, err := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	).Run()
	return err
}
