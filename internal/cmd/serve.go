package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// serveCmd represents the serve command.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the mcbans backend service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, errApp := NewMCBans()
			if errApp != nil {
				return errApp
			}

			defer func() {
				if errClose := app.Close(ctx); errClose != nil {
					slog.Error("Error closing", slog.String("error", errClose.Error()))
				}
			}()

			if errSetup := app.Init(ctx); errSetup != nil {
				return errSetup
			}

			app.StartBackground(ctx)

			if errServe := app.Serve(ctx); errServe != nil {
				return errServe
			}

			return nil
		},
	}
}
