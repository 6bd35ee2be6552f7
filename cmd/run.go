package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polyarb/arb-monitor/internal/app"
	"github.com/polyarb/arb-monitor/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the periodic scan loop",
	Long: `Starts the arbitrage monitor, which will:
1. Fetch active markets from the Gamma API every scan interval
2. Run the probability-sum, cross-market and spread detection rules
3. Notify novel opportunities via console or Telegram
4. Serve metrics and health endpoints over HTTP

The loop runs until SIGINT or SIGTERM.`,
	RunE: runMonitor,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
}

func runMonitor(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
