// Package notify delivers detected opportunities to an output channel. The
// sink is chosen once at startup: Telegram when a bot token and chat id are
// configured, console otherwise.
package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/polyarb/arb-monitor/internal/detect"
	"github.com/polyarb/arb-monitor/pkg/config"
)

// Sink delivers a single opportunity. Notify reports whether delivery
// succeeded and marks the opportunity notified on success. NotifySummary
// delivers the cycle roll-up that follows the per-opportunity messages when
// a scan finds more than one.
type Sink interface {
	Notify(ctx context.Context, opp *detect.Opportunity) bool
	NotifySummary(ctx context.Context, count int) bool
	Name() string
}

// ForConfig selects the sink variant from configuration.
func ForConfig(cfg *config.Config, logger *zap.Logger) Sink {
	if cfg.TelegramConfigured() {
		logger.Info("notification-sink-selected", zap.String("sink", "telegram"))
		return NewTelegramSink(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
	}

	logger.Info("notification-sink-selected", zap.String("sink", "console"))
	return NewConsoleSink(logger)
}

// formatSummary renders the end-of-cycle roll-up message.
func formatSummary(count int) string {
	return fmt.Sprintf("📊 Found %d new opportunities this scan", count)
}

// formatOpportunity renders a single opportunity as a plain-text message.
func formatOpportunity(opp *detect.Opportunity) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🚨 Arbitrage opportunity: %s\n", opp.Type)
	fmt.Fprintf(&b, "Estimated profit: %.2f%%\n", opp.ProfitEstimate*100)

	for _, m := range opp.Markets {
		fmt.Fprintf(&b, "Market: %s\n", m.Question)
		for _, out := range m.Outcomes {
			fmt.Fprintf(&b, "  %s: %.3f\n", out.Name, out.Price)
		}
	}

	if action, ok := opp.Details["action"].(string); ok && action != "" {
		fmt.Fprintf(&b, "Action: %s\n", action)
	}

	return b.String()
}
