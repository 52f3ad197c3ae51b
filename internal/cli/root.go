// Package cli holds the arbor cobra commands.
package cli

import (
	"fmt"
	"os"
	"strings"

	"arbor/internal/canvas"
	"arbor/internal/config"
	"arbor/internal/editor"
	"arbor/internal/format"
	"arbor/internal/outline"
	"arbor/internal/palette"
	"arbor/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	ConfigPath string
	Catalog    string
	Format     string
	PrettyJSON bool
	Changes    string

	cfg *config.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "arbor",
		Short:        "Arbor: drag-and-drop tree editor for the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive editor
  arbor

  # List the block catalog as YAML
  arbor templates --format yaml

  # Replay a script headlessly and print the resulting tree
  arbor play steps.yaml
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			return err
		}
		if app.Catalog != "" {
			cfg.Catalog = app.Catalog
		}
		app.cfg = cfg
		// The TUI owns the terminal, so only subcommands log to the console.
		log, err := cfg.Logging.Prepare(cmd != cmd.Root())
		if err != nil {
			return err
		}
		app.log = log
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.log != nil {
			_ = app.log.Sync()
		}
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("ARBOR_CONFIG", ""), "Path to config.json (default: ~/.arbor/config.json)")
	cmd.PersistentFlags().StringVar(&app.Catalog, "catalog", "", "Block catalog (.yaml or .sqlite); overrides the config file")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("ARBOR_FORMAT", "json"), "Output format ("+strings.Join(format.Names, "|")+")")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON and EDN output")
	cmd.PersistentFlags().StringVar(&app.Changes, "changes", "", "Append every committed change as a JSON line to this file")

	cmd.AddCommand(newTemplatesCmd(app))
	cmd.AddCommand(newPlayCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	catalog, err := palette.Load(cmd.Context(), app.cfg.Catalog)
	if err != nil {
		return err
	}
	ed, err := newEditor(app.cfg, app.log)
	if err != nil {
		return err
	}
	sink, err := openSink(app, ed, app.cfg.Debounce())
	if err != nil {
		return err
	}
	defer sink.Close()
	app.log.Info("editor started", zap.String("session", ed.Notifier().SessionID()), zap.Int("templates", catalog.Len()))
	return tui.Run(cmd.Context(), ed, catalog, tui.Options{Debounce: app.cfg.Debounce(), Log: app.log})
}

// newEditor builds an editor from cfg. Sizes are placeholders until a
// frontend or script resizes the views.
func newEditor(cfg *config.Config, log *zap.Logger) (*editor.Editor, error) {
	return editor.New(editor.Options{
		Canvas: canvas.Options{
			Width:   80,
			Height:  24,
			Margin:  cfg.AxisMargin(),
			Borders: cfg.BordersOn(),
			Padding: cfg.PaddingOn(),
		},
		Outline: outline.Options{
			Width:         40,
			Height:        24,
			RowHeight:     cfg.OutlineRowHeight,
			ConfirmDelete: cfg.ConfirmDeleteOn(),
		},
		HistoryLimit: cfg.HistoryLimit,
	}, log)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
