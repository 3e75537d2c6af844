package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.db.AutoMigrate(models...); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			a.logger.Info("Schema migrated", zap.Int("tables", len(models)))
			return nil
		},
	}
}
