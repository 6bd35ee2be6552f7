package detect

import (
	"time"

	"github.com/polyarb/arb-monitor/pkg/types"
	"go.uber.org/zap"
)

// detectProbSum emits an opportunity for every market whose outcome prices
// deviate from summing to 1.0 by more than the configured threshold.
//
// Side effect: each triggering market is flagged for the orderbook-level
// spread check. The insert is idempotent, keyed by market id.
func (d *Detector) detectProbSum(markets []types.Market, bucket time.Time) []*Opportunity {
	var opportunities []*Opportunity

	for i := range markets {
		market := markets[i]
		if len(market.Outcomes) < 2 {
			continue
		}

		probSum := market.ProbSum()
		deviation := market.ProbImbalance()

		if deviation <= d.cfg.ProbSumThreshold {
			continue
		}

		var profit float64
		var action string
		if probSum > 1.0 {
			profit = (probSum - 1.0) / probSum
			action = "sell overweight outcomes"
		} else {
			profit = 1.0 - probSum
			action = "buy underweight outcomes"
		}

		opportunities = append(opportunities, &Opportunity{
			ID:             opportunityID(TypeProbSum, bucket, market.ConditionID),
			Type:           TypeProbSum,
			Markets:        []types.Market{market},
			ProfitEstimate: profit,
			Details: map[string]any{
				"prob_sum":     probSum,
				"deviation":    deviation,
				"action":       action,
				"condition_id": market.ConditionID,
			},
			DetectedAt: d.now(),
		})

		d.flagged.Add(market)
	}

	if len(opportunities) > 0 {
		OpportunitiesDetectedTotal.WithLabelValues(string(TypeProbSum)).Add(float64(len(opportunities)))
		d.logger.Info("prob-sum-anomalies", zap.Int("count", len(opportunities)))
	}

	return opportunities
}
