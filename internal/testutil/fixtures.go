// Package testutil provides fixtures and mock servers shared by tests.
package testutil

import (
	"fmt"
	"time"

	"github.com/polyarb/arb-monitor/internal/detect"
	"github.com/polyarb/arb-monitor/pkg/types"
)

// BinaryMarket creates an active yes/no market with the given prices.
func BinaryMarket(id, question string, yesPrice, noPrice float64) types.Market {
	return types.Market{
		ID:          id,
		ConditionID: "0xcond-" + id,
		Question:    question,
		Outcomes: []types.Outcome{
			{Name: "Yes", Price: yesPrice},
			{Name: "No", Price: noPrice},
		},
		Volume:    50000,
		Liquidity: 5000,
		Status:    types.StatusActive,
	}
}

// GammaMarket creates a wire-format market the way the Gamma API serves it:
// outcomes, prices and token ids as JSON-encoded strings, volume as a quoted
// number.
func GammaMarket(id, question string, yesPrice, noPrice float64) types.GammaMarket {
	return types.GammaMarket{
		ID:            id,
		ConditionID:   "0xcond-" + id,
		Question:      question,
		Outcomes:      `["Yes", "No"]`,
		OutcomePrices: fmt.Sprintf(`["%.3f", "%.3f"]`, yesPrice, noPrice),
		ClobTokenIDs:  fmt.Sprintf(`["%s-yes", "%s-no"]`, id, id),
		Volume:        50000,
		Liquidity:     5000,
		Active:        true,
	}
}

// Opportunity creates a probability-sum opportunity over one binary market.
func Opportunity(id string, profit float64) *detect.Opportunity {
	return &detect.Opportunity{
		ID:             id,
		Type:           detect.TypeProbSum,
		Markets:        []types.Market{BinaryMarket("m1", "Will it happen?", 0.55, 0.52)},
		ProfitEstimate: profit,
		Details:        map[string]any{"action": "sell overweight outcomes"},
		DetectedAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}
