// Package cmd holds the arb-monitor CLI commands.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "arb-monitor",
	Short: "Polymarket arbitrage monitor",
	Long: `Polymarket arbitrage monitor that periodically scans active markets
and reports pricing inconsistencies.

Three detection rules run on each scan: probability sums deviating from 1.0
within a single market, complementary pricing across listings of the same
event, and wide bid-ask spreads on markets flagged by earlier scans. Novel
opportunities are delivered to the console or a Telegram chat.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Missing .env is fine; the environment may be set directly.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
