package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/leave-request/internal/storage"
	"github.com/frahmantamala/leave-request/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	seedEmail    string
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default user",
	Long:  `Create the default user from DEFAULT_USER and DEFAULT_USER_PASSWORD (or the flags). Existing users are left untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		if err := cfg.Database.Validate(); err != nil {
			log.Fatalf("database config: %v", err)
		}
		setupLogger(cfg)

		email, password := cfg.DefaultUser.Email, cfg.DefaultUser.Password
		if seedEmail != "" {
			email = seedEmail
		}
		if seedPassword != "" {
			password = seedPassword
		}
		if email == "" {
			log.Fatal("no user to seed: set DEFAULT_USER or pass --email")
		}

		store, err := storage.Open(cfg.Database, logger.LoggerWrapper())
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer store.Close()

		if err := store.Migrate(ctx, false); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}

		created, err := store.SeedUser(ctx, email, password)
		if err != nil {
			log.Fatalf("failed to seed user: %v", err)
		}

		if created {
			fmt.Println("Seeded user:", email)
		} else {
			fmt.Println("User already exists:", email)
		}
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "email of the user to create")
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "password of the user to create")
}
