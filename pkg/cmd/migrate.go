package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkozyrev/softvault/pkg/configs"
	"github.com/dkozyrev/softvault/pkg/internal/model"
	"github.com/dkozyrev/softvault/pkg/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "create or update the catalog schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.InitConfig(configPath); err != nil {
			return fmt.Errorf("init config: %w", err)
		}

		ctx := context.Background()

		mgr, err := storage.Init(ctx)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		defer mgr.Close()

		dbc := mgr.GetDBClient()
		if dbc == nil {
			return fmt.Errorf("database not configured")
		}

		if err := dbc.GetDB().WithContext(ctx).AutoMigrate(model.AllModels()...); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		cmd.Println("schema up to date")

		return nil
	},
}

func registerMigrateCommands() {
	rootCmd.AddCommand(migrateCmd)
}
