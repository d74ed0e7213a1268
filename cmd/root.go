package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lexloop",
	Short: "Vocabulary learning backend",
	Long:  "lexloop is a spaced-repetition vocabulary learning service with books, review plans, tests and placement assessments.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
