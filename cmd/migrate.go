package cmd

import (
	"context"
	"log"

	"github.com/frahmantamala/leave-request/internal/storage"
	"github.com/frahmantamala/leave-request/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "apply the embedded schema migrations",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Database.Validate(); err != nil {
		log.Fatalf("database config: %v", err)
	}
	setupLogger(cfg)

	store, err := storage.Open(cfg.Database, logger.LoggerWrapper())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx, migrateRollback); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	return nil
}
