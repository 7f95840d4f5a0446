package main

import (
	"os"

	"github.com/spf13/cobra"
)

// @title Books Backend API
// @version 1.0
// @description Double-entry bookkeeping core: chart of accounts, journal entries, reports and bank reconciliation.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	rootCmd := &cobra.Command{
		Use:   "books",
		Short: "Double-entry bookkeeping backend",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand(), newMigrateCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
