package detect

import (
	"sort"
	"strings"
	"time"

	"github.com/polyarb/arb-monitor/pkg/types"
	"go.uber.org/zap"
)

// stopWords are dropped from questions before grouping.
var stopWords = map[string]bool{
	"will": true, "the": true, "a": true, "an": true, "be": true,
	"is": true, "are": true, "to": true, "of": true, "in": true, "on": true,
}

// groupKeyTokens is how many significant question tokens form a group key.
const groupKeyTokens = 3

// detectCrossMarket partitions markets into similarity groups and tests each
// pair within a group for exploitable complementary pricing.
//
// The grouping is deliberately coarse; false-positive groups are resolved by
// the pair test, not by the grouping step.
func (d *Detector) detectCrossMarket(markets []types.Market, bucket time.Time) []*Opportunity {
	groups := groupSimilarMarkets(markets)

	// Map iteration order is random; sort keys so repeated scans over the
	// same input produce the same opportunity order.
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var opportunities []*Opportunity

	for _, key := range keys {
		group := groups[key]
		for i := range group {
			for j := i + 1; j < len(group); j++ {
				opp := d.checkPair(group[i], group[j], bucket)
				if opp != nil {
					opportunities = append(opportunities, opp)
				}
			}
		}
	}

	if len(opportunities) > 0 {
		OpportunitiesDetectedTotal.WithLabelValues(string(TypeCrossMarket)).Add(float64(len(opportunities)))
		d.logger.Info("cross-market-opportunities", zap.Int("count", len(opportunities)))
	}

	return opportunities
}

// groupSimilarMarkets buckets markets by the first significant words of
// their question. Groups with fewer than two markets are dropped.
func groupSimilarMarkets(markets []types.Market) map[string][]types.Market {
	groups := make(map[string][]types.Market)

	for i := range markets {
		words := significantWords(markets[i].Question)
		if len(words) == 0 {
			continue
		}
		if len(words) > groupKeyTokens {
			words = words[:groupKeyTokens]
		}

		key := strings.Join(words, " ")
		groups[key] = append(groups[key], markets[i])
	}

	for key, group := range groups {
		if len(group) < 2 {
			delete(groups, key)
		}
	}

	return groups
}

func significantWords(question string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(question)) {
		if !stopWords[w] {
			words = append(words, w)
		}
	}
	return words
}

// checkPair tests two markets for complementary-pricing arbitrage: buying
// YES on one and NO on the other costs less than the guaranteed $1 payout.
// Both markets must be binary yes/no and must not share a condition id
// (same condition means same contract, not two legs).
func (d *Detector) checkPair(m1, m2 types.Market, bucket time.Time) *Opportunity {
	if m1.ConditionID == m2.ConditionID {
		return nil
	}

	yes1, no1, ok1 := yesNoPrices(m1)
	yes2, no2, ok2 := yesNoPrices(m2)
	if !ok1 || !ok2 {
		return nil
	}

	comboA := yes1 + no2 // buy YES on m1, NO on m2
	comboB := no1 + yes2 // buy NO on m1, YES on m2

	profitA := 0.0
	if comboA < 1.0 {
		profitA = 1.0 - comboA
	}
	profitB := 0.0
	if comboB < 1.0 {
		profitB = 1.0 - comboB
	}

	bestProfit := profitA
	if profitB > profitA {
		bestProfit = profitB
	}

	if bestProfit <= d.cfg.SpreadThreshold {
		return nil
	}

	// On an exact tie, prefer combo A. Arbitrary but deterministic.
	details := map[string]any{"payout": 1.0, "profit": bestProfit}
	if profitA >= profitB {
		details["buy_yes_on"] = m1.ID
		details["buy_no_on"] = m2.ID
		details["cost"] = comboA
		details["action"] = "buy YES on " + m1.ID + " + buy NO on " + m2.ID
	} else {
		details["buy_no_on"] = m1.ID
		details["buy_yes_on"] = m2.ID
		details["cost"] = comboB
		details["action"] = "buy NO on " + m1.ID + " + buy YES on " + m2.ID
	}

	return &Opportunity{
		ID:             opportunityID(TypeCrossMarket, bucket, m1.ConditionID, m2.ConditionID),
		Type:           TypeCrossMarket,
		Markets:        []types.Market{m1, m2},
		ProfitEstimate: bestProfit,
		Details:        details,
		DetectedAt:     d.now(),
	}
}

// yesNoPrices extracts the yes and no prices from a binary market. Returns
// ok=false for anything that is not exactly a yes/no pair; non-binary
// markets get no partial credit.
func yesNoPrices(m types.Market) (yes, no float64, ok bool) {
	if len(m.Outcomes) != 2 {
		return 0, 0, false
	}

	var haveYes, haveNo bool
	for _, o := range m.Outcomes {
		switch strings.ToLower(o.Name) {
		case "yes":
			yes = o.Price
			haveYes = true
		case "no":
			no = o.Price
			haveNo = true
		}
	}

	return yes, no, haveYes && haveNo
}
