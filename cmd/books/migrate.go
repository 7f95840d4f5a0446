package main

import (
	"errors"
	"fmt"

	"github.com/SscSPs/books_backend/internal/platform/config"
	"github.com/SscSPs/books_backend/internal/platform/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(database.Up), string(database.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.DatabaseURL == "" {
				return errors.New("PGSQL_URL is required to run migrations")
			}
			logger := newLogger(cfg)
			return database.Migrate(logger, cfg.DatabaseURL, cfg.MigrationsPath, database.Direction(args[0]))
		},
	}
}
