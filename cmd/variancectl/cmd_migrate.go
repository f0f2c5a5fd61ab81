package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eightball/variance/pkg/infra/gormstore"
)

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			store, err := gormstore.NewStore(cfg.Database.Driver, cfg.Database.DSN, true)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "schema migrated (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}
