package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vireolabs/beacon/auth"
	"github.com/vireolabs/beacon/catalog"
	"github.com/vireolabs/beacon/config"
	"github.com/vireolabs/beacon/db"
	"github.com/vireolabs/beacon/errors"
	"github.com/vireolabs/beacon/logger"
)

// DatasetsCmd manages the dataset catalogue.
var DatasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Manage the dataset catalogue",
}

var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogued datasets and their access tiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		datasets, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(datasets) == 0 {
			fmt.Println("catalogue is empty")
			return nil
		}
		for _, d := range datasets {
			fmt.Printf("%-20s %-12s %s\n", d.ID, d.Tier.String(), d.Description)
		}
		return nil
	},
}

var datasetsAddCmd = &cobra.Command{
	Use:   "add <id> <tier> [description]",
	Short: "Add or update a dataset (tier: PUBLIC, REGISTERED, CONTROLLED)",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tier, err := auth.ParseTier(strings.ToUpper(args[1]))
		if err != nil {
			return err
		}

		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		dataset := catalog.Dataset{ID: args[0], Tier: tier}
		if len(args) == 3 {
			dataset.Description = args[2]
		}
		if err := store.Upsert(cmd.Context(), dataset); err != nil {
			return err
		}
		fmt.Printf("dataset %s registered as %s\n", dataset.ID, tier.String())
		return nil
	},
}

func init() {
	DatasetsCmd.AddCommand(datasetsListCmd)
	DatasetsCmd.AddCommand(datasetsAddCmd)
}

// openStore opens the catalogue with migrations applied, returning a cleanup
// function that closes the database.
func openStore() (*catalog.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "load configuration")
	}

	database, err := db.Open(cfg.Database.Path, logger.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, nil, err
	}
	return catalog.NewStore(database, logger.Logger), func() { database.Close() }, nil
}
