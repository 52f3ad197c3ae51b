package cli

import (
	"arbor/internal/palette"
	"arbor/internal/script"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPlayCmd(app *App) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "play <script.yaml>",
		Short: "Replay a script of drag and key events and print the resulting tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := script.Load(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			catalog, err := palette.Load(cmd.Context(), app.cfg.Catalog)
			if err != nil {
				return writeErr(cmd, err)
			}
			ed, err := newEditor(app.cfg, app.log)
			if err != nil {
				return writeErr(cmd, err)
			}
			// Every change is recorded; there is no render loop to protect.
			sink, err := openSink(app, ed, 0)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sink.Close()

			results, runErr := script.NewPlayer(ed, catalog, app.log).Run(sc)
			app.log.Debug("script finished", zap.String("script", args[0]), zap.Int("steps", len(results)), zap.Error(runErr))

			data := map[string]any{
				"session": ed.Notifier().SessionID(),
				"tree":    ed.Snapshot(),
			}
			if !quiet {
				data["steps"] = results
			}
			if err := writeOut(cmd, app, map[string]any{"data": data}); err != nil {
				return err
			}
			if runErr != nil {
				return writeErr(cmd, runErr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Only print the resulting tree")
	return cmd
}
