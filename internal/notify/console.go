package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/polyarb/arb-monitor/internal/detect"
)

const consoleRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// ConsoleSink pretty-prints opportunities to stdout.
type ConsoleSink struct {
	out    io.Writer
	logger *zap.Logger
}

// NewConsoleSink creates a console sink.
func NewConsoleSink(logger *zap.Logger) *ConsoleSink {
	return &ConsoleSink{
		out:    os.Stdout,
		logger: logger,
	}
}

// Notify pretty-prints an opportunity. It always succeeds.
func (c *ConsoleSink) Notify(_ context.Context, opp *detect.Opportunity) bool {
	fmt.Fprintln(c.out, "\n"+consoleRule)
	fmt.Fprintf(c.out, "🎯 ARBITRAGE OPPORTUNITY DETECTED\n")
	fmt.Fprintln(c.out, consoleRule)
	fmt.Fprintf(c.out, "ID:       %s\n", opp.ID)
	fmt.Fprintf(c.out, "Type:     %s\n", opp.Type)
	fmt.Fprintf(c.out, "Profit:   %.2f%%\n", opp.ProfitEstimate*100)
	fmt.Fprintf(c.out, "Time:     %s\n", opp.DetectedAt.Format("2006-01-02 15:04:05"))
	for _, m := range opp.Markets {
		fmt.Fprintf(c.out, "Market:   %s\n", m.Question)
		prices := make([]string, 0, len(m.Outcomes))
		for _, out := range m.Outcomes {
			prices = append(prices, fmt.Sprintf("%s=%.3f", out.Name, out.Price))
		}
		fmt.Fprintf(c.out, "  Prices: %s\n", strings.Join(prices, "  "))
	}
	if action, ok := opp.Details["action"].(string); ok && action != "" {
		fmt.Fprintf(c.out, "Action:   %s\n", action)
	}
	fmt.Fprintln(c.out, consoleRule)

	opp.MarkNotified()
	DeliveriesTotal.WithLabelValues(c.Name()).Inc()
	return true
}

// NotifySummary prints the cycle roll-up line. It always succeeds.
func (c *ConsoleSink) NotifySummary(_ context.Context, count int) bool {
	fmt.Fprintln(c.out, formatSummary(count))
	return true
}

// Name returns the sink identifier.
func (c *ConsoleSink) Name() string {
	return "console"
}
