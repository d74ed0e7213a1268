package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexloop/lexloop/internal/infrastructure/config"
	"github.com/lexloop/lexloop/internal/infrastructure/database"
)

var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, cleanup, err := database.NewConnection(cfg)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cleanup()

		if err := database.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		cmd.Println("database schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
}
