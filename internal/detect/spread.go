package detect

import (
	"context"
	"sync"
	"time"

	"github.com/polyarb/arb-monitor/pkg/types"
	"go.uber.org/zap"
)

// detectSpread is the escalation tier: it runs only over the flagged-markets
// set, never the full market list. Token-id resolution fans out concurrently
// per market and joins before the spread lookups start; spread and midpoint
// lookups are batched at SpreadBatchSize ids per call.
//
// Markets with no token mapping are silently skipped; that is expected, not
// an error. A missing midpoint defaults to 0.5 rather than dropping the
// opportunity.
func (d *Detector) detectSpread(ctx context.Context, bucket time.Time) []*Opportunity {
	if d.feed == nil {
		return nil
	}

	flagged := d.flagged.Markets()
	if len(flagged) == 0 {
		return nil
	}

	allTokens, tokenMarket := d.resolveTokens(ctx, flagged)
	if len(allTokens) == 0 {
		return nil
	}

	spreads := make(map[string]float64, len(allTokens))
	for _, batch := range chunkTokens(allTokens, SpreadBatchSize) {
		for token, spread := range d.feed.FetchSpreads(ctx, batch) {
			spreads[token] = spread
		}
	}

	// Walk allTokens (not the spreads map) so output order is stable.
	var wideTokens []string
	for _, token := range allTokens {
		if spreads[token] > d.cfg.SpreadThreshold {
			wideTokens = append(wideTokens, token)
		}
	}
	if len(wideTokens) == 0 {
		return nil
	}

	midpoints := make(map[string]float64, len(wideTokens))
	for _, batch := range chunkTokens(wideTokens, SpreadBatchSize) {
		for token, mid := range d.feed.FetchMidpoints(ctx, batch) {
			midpoints[token] = mid
		}
	}

	var opportunities []*Opportunity

	for _, token := range wideTokens {
		market, found := tokenMarket[token]
		if !found {
			continue
		}

		mid, found := midpoints[token]
		if !found {
			mid = types.DefaultOutcomePrice
		}

		opportunities = append(opportunities, &Opportunity{
			ID:             opportunityID(TypeSpread, bucket, market.ID),
			Type:           TypeSpread,
			Markets:        []types.Market{market},
			ProfitEstimate: spreads[token],
			Details: map[string]any{
				"spread":    spreads[token],
				"mid_price": mid,
				"token_id":  token,
				"action":    "quote inside the spread",
			},
			DetectedAt: d.now(),
		})
	}

	if len(opportunities) > 0 {
		OpportunitiesDetectedTotal.WithLabelValues(string(TypeSpread)).Add(float64(len(opportunities)))
		d.logger.Info("spread-opportunities",
			zap.Int("count", len(opportunities)),
			zap.Int("flagged-markets", len(flagged)))
	}

	return opportunities
}

// resolveTokens fans out the per-market token-id lookups concurrently and
// joins them, preserving flagged-set order in the returned token list.
func (d *Detector) resolveTokens(ctx context.Context, flagged []types.Market) ([]string, map[string]types.Market) {
	perMarket := make([][]string, len(flagged))

	var wg sync.WaitGroup
	for i := range flagged {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			perMarket[idx] = d.feed.FetchTokenIDs(ctx, flagged[idx])
		}(i)
	}
	wg.Wait()

	var allTokens []string
	tokenMarket := make(map[string]types.Market)

	for i, tokens := range perMarket {
		for _, token := range tokens {
			allTokens = append(allTokens, token)
			tokenMarket[token] = flagged[i]
		}
	}

	return allTokens, tokenMarket
}

func chunkTokens(tokens []string, size int) [][]string {
	var chunks [][]string
	for len(tokens) > size {
		chunks = append(chunks, tokens[:size])
		tokens = tokens[size:]
	}
	if len(tokens) > 0 {
		chunks = append(chunks, tokens)
	}
	return chunks
}
