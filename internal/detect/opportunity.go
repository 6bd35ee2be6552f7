package detect

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/polyarb/arb-monitor/pkg/types"
)

// Type identifies which detection rule produced an opportunity.
type Type string

const (
	// TypeProbSum fires when a market's outcome probabilities don't sum to 1.
	TypeProbSum Type = "prob_sum"
	// TypeCrossMarket fires on complementary pricing across two listings of
	// the same event.
	TypeCrossMarket Type = "cross_market"
	// TypeSpread fires on a wide bid-ask spread in a flagged market.
	TypeSpread Type = "spread"
	// TypeLiquidityArb is defined but not yet produced by any rule.
	TypeLiquidityArb Type = "liquidity_arb"
)

// Opportunity is a detected pricing inconsistency. It is created by exactly
// one detection rule and never mutated afterwards, except the Notified flag
// which the notification sink sets once.
type Opportunity struct {
	ID             string
	Type           Type
	Markets        []types.Market
	ProfitEstimate float64
	Details        map[string]any
	DetectedAt     time.Time
	Notified       bool
}

// MarkNotified records that the opportunity was delivered. Safe to call more
// than once; the flag only ever transitions false -> true.
func (o *Opportunity) MarkNotified() {
	o.Notified = true
}

// MarketIDs returns the ids of the involved markets in sorted order.
func (o *Opportunity) MarketIDs() []string {
	ids := make([]string, len(o.Markets))
	for i := range o.Markets {
		ids[i] = o.Markets[i].ID
	}
	sort.Strings(ids)
	return ids
}

// DedupKey is the aggregator's dedup key: type plus sorted market ids.
func (o *Opportunity) DedupKey() string {
	return string(o.Type) + "|" + strings.Join(o.MarketIDs(), ",")
}

// String returns a compact human-readable representation.
func (o *Opportunity) String() string {
	return fmt.Sprintf("Opportunity[%s] type=%s markets=%s profit=%.4f",
		o.ID, o.Type, strings.Join(o.MarketIDs(), ","), o.ProfitEstimate)
}

// opportunityID derives a deterministic id from the rule type, the sorted
// identity keys of the involved markets, and a coarse time bucket. Within a
// bucket the same underlying condition always yields the same id, so the
// seen-set can suppress repeats; once the bucket rolls over a persisting
// condition re-fires with a fresh id.
func opportunityID(t Type, bucket time.Time, keys ...string) string {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	return fmt.Sprintf("%s_%s_%d", t, strings.Join(sorted, "_"), bucket.Unix())
}
