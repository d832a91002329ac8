package main

import (
	"os"

	"github.com/ikkim/restaurant-ops-backend/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	logger.Initialize(logger.Config{
		Level:       "info",
		Format:      "console",
		EnableColor: true,
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Development helpers for the restaurant ops backend",
	Long: `seed loads stores into the database the same way the onboarding wizard
registers them, and issues access tokens for local testing.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(tokenCmd)
}
