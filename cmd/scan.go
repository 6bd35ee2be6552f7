package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/polyarb/arb-monitor/internal/detect"
	"github.com/polyarb/arb-monitor/internal/gamma"
	"github.com/polyarb/arb-monitor/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single scan cycle and print a report",
	Long: `Fetches active markets, runs all detection rules once and prints the
detected opportunities as a table. Useful for spot checks and cron-style
reporting; nothing is notified or persisted.`,
	RunE: runScan,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().IntP("top", "t", 10, "Maximum number of opportunities to display")
}

func runScan(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
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

	top, _ := cmd.Flags().GetInt("top")

	client := gamma.NewClient(&gamma.Config{
		GammaURL: cfg.GammaURL,
		ClobURL:  cfg.ClobURL,
		Timeout:  cfg.RequestTimeout,
		Logger:   logger,
	})

	detector := detect.New(detect.Config{
		ProbSumThreshold:  cfg.ProbSumThreshold,
		SpreadThreshold:   cfg.SpreadThreshold,
		DedupeWindow:      cfg.DedupeWindow,
		MaxFlaggedMarkets: cfg.MaxFlaggedMarkets,
		Logger:            logger,
	}, client)

	fmt.Printf("Scanning up to %d active markets...\n\n", cfg.MaxMarkets)

	markets := client.FetchMarkets(ctx, cfg.MaxMarkets, 0, true, cfg.MinVolume)
	if len(markets) == 0 {
		fmt.Println("No markets fetched; check connectivity and filters.")
		return nil
	}

	opportunities := detector.Scan(ctx, markets)
	if len(opportunities) == 0 {
		fmt.Printf("Scanned %d markets: no opportunities found.\n", len(markets))
		return nil
	}

	if top > 0 && len(opportunities) > top {
		opportunities = opportunities[:top]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TYPE\tPROFIT\tMARKETS\n")
	fmt.Fprintf(w, "----\t------\t-------\n")

	for _, opp := range opportunities {
		questions := make([]string, 0, len(opp.Markets))
		for _, m := range opp.Markets {
			q := m.Question
			if len(q) > 50 {
				q = q[:47] + "..."
			}
			questions = append(questions, q)
		}
		fmt.Fprintf(w, "%s\t%.2f%%\t%s\n",
			opp.Type, opp.ProfitEstimate*100, strings.Join(questions, " | "))
	}

	_ = w.Flush()

	fmt.Printf("\nScanned %d markets, found %d opportunities.\n", len(markets), len(opportunities))

	return nil
}
