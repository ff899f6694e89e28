package commands

import (
	"github.com/spf13/cobra"

	"github.com/vireolabs/beacon/config"
	"github.com/vireolabs/beacon/db"
	"github.com/vireolabs/beacon/errors"
	"github.com/vireolabs/beacon/logger"
)

// MigrateCmd applies pending database migrations.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "load configuration")
		}

		database, err := db.Open(cfg.Database.Path, logger.Logger)
		if err != nil {
			return err
		}
		defer database.Close()

		return db.Migrate(database, logger.Logger)
	},
}
