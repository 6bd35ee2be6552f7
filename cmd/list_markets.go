package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/polyarb/arb-monitor/internal/gamma"
	"github.com/polyarb/arb-monitor/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var listMarketsCmd = &cobra.Command{
	Use:   "list-markets",
	Short: "List active markets from the Polymarket Gamma API",
	Long:  `Fetches and displays active markets from the Polymarket Gamma API for debugging purposes.`,
	RunE:  runListMarkets,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(listMarketsCmd)
	listMarketsCmd.Flags().IntP("limit", "l", 20, "Maximum number of markets to fetch")
	listMarketsCmd.Flags().BoolP("verbose", "v", false, "Show detailed market information")
}

func runListMarkets(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

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

	limit, _ := cmd.Flags().GetInt("limit")
	verbose, _ := cmd.Flags().GetBool("verbose")

	client := gamma.NewClient(&gamma.Config{
		GammaURL: cfg.GammaURL,
		ClobURL:  cfg.ClobURL,
		Timeout:  cfg.RequestTimeout,
		Logger:   logger,
	})

	fmt.Printf("Fetching up to %d active markets from Polymarket...\n\n", limit)

	markets := client.FetchMarkets(ctx, limit, 0, true, 0)
	if len(markets) == 0 {
		fmt.Println("No active markets found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tQUESTION\tVOLUME\tPROB SUM\n")
	fmt.Fprintf(w, "--\t--------\t------\t--------\n")

	for i := range markets {
		market := &markets[i]

		question := market.Question
		if len(question) > 60 {
			question = question[:57] + "..."
		}

		fmt.Fprintf(w, "%s\t%s\t%.0f\t%.4f\n",
			market.ID, question, market.Volume, market.ProbSum())

		if verbose {
			fmt.Fprintf(w, "\tCondition: %s\n", market.ConditionID)
			fmt.Fprintf(w, "\tLiquidity: %.0f, Status: %s\n", market.Liquidity, market.Status)
			for _, out := range market.Outcomes {
				fmt.Fprintf(w, "\t%s: %.3f\n", out.Name, out.Price)
			}
			fmt.Fprintf(w, "\n")
		}
	}

	_ = w.Flush()

	fmt.Printf("\nTotal: %d markets\n", len(markets))

	return nil
}
