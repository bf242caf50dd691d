package main

import (
	"fmt"

	"Wanderfund/config"
	"Wanderfund/internal/infrastructure"
	"Wanderfund/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the ledger tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger.Init(cfg)

			cfg.Database.AutoMigrate = false
			db, err := infrastructure.NewDb(cfg)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err == nil {
				defer sqlDB.Close()
			}

			if err := infrastructure.RunMigrations(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}
