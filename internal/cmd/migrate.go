package cmd

import (
	"log/slog"
	"os"

	"github.com/leighmacdonald/mcbans/internal/config"
	"github.com/leighmacdonald/mcbans/internal/database"
	"github.com/leighmacdonald/mcbans/pkg/log"
	"github.com/spf13/cobra"
)

// migrateCmd loads the db schema.
func migrateCmd() *cobra.Command {
	var downAll = false

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(_ *cobra.Command, _ []string) {
			conf, errConfig := config.Read(cfgFile)
			if errConfig != nil {
				slog.Error("Failed to read config", log.ErrAttr(errConfig))
				os.Exit(1)
			}

			action := database.MigrationAction(database.MigrateUp)
			if downAll {
				action = database.MigrateDn
			}

			if errMigrate := database.Migrate(action, conf.DB.DSN); errMigrate != nil {
				slog.Error("Could not migrate schema", log.ErrAttr(errMigrate))
				os.Exit(1)
			}

			slog.Info("Migration complete")
		},
	}

	cmd.Flags().BoolVarP(&downAll, "down", "d", false, "Fully reverts all migrations")

	return cmd
}
