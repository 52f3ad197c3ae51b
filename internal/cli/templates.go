package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"arbor/internal/palette"

	"github.com/spf13/cobra"
)

func newTemplatesCmd(app *App) *cobra.Command {
	var export string
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"blocks"},
		Short:   "List the block catalog",
		Long:    "List the block catalog the editor drags from. With --export the catalog is written to a .yaml or .sqlite file instead.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := palette.Load(cmd.Context(), app.cfg.Catalog)
			if err != nil {
				return writeErr(cmd, err)
			}
			if export != "" {
				if err := exportCatalog(cmd, catalog, export); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{"exportedTo": export, "templates": catalog.Len()},
				})
			}
			return writeOut(cmd, app, map[string]any{"data": catalog.Categories})
		},
	}
	cmd.Flags().StringVar(&export, "export", "", "Write the catalog to a .yaml or .sqlite file")
	return cmd
}

func exportCatalog(cmd *cobra.Command, c *palette.Catalog, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := palette.EncodeYAML(f, c); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	case ".sqlite", ".sqlite3", ".db":
		return palette.WriteSQLite(cmd.Context(), path, c)
	default:
		return fmt.Errorf("unsupported catalog extension %q (want .yaml or .sqlite)", filepath.Ext(path))
	}
}
