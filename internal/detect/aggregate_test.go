package detect

import (
	"testing"
	"time"

	"github.com/polyarb/arb-monitor/pkg/types"
)

func opp(t Type, profit float64, marketIDs ...string) *Opportunity {
	markets := make([]types.Market, len(marketIDs))
	for i, id := range marketIDs {
		markets[i] = types.Market{ID: id, ConditionID: id}
	}
	return &Opportunity{
		ID:             opportunityID(t, time.Unix(0, 0), marketIDs...),
		Type:           t,
		Markets:        markets,
		ProfitEstimate: profit,
		DetectedAt:     time.Unix(0, 0),
	}
}

func TestAggregateDedupFirstWins(t *testing.T) {
	first := opp(TypeProbSum, 0.10, "m1")
	duplicate := opp(TypeProbSum, 0.08, "m1")

	unique := Aggregate([]*Opportunity{first, duplicate})

	if len(unique) != 1 {
		t.Fatalf("expected 1 opportunity after dedup, got %d", len(unique))
	}
	if unique[0] != first {
		t.Errorf("first occurrence must win, got profit %v", unique[0].ProfitEstimate)
	}
}

func TestAggregateKeyIncludesType(t *testing.T) {
	probSum := opp(TypeProbSum, 0.10, "m1")
	spread := opp(TypeSpread, 0.05, "m1")

	unique := Aggregate([]*Opportunity{probSum, spread})

	if len(unique) != 2 {
		t.Fatalf("different types on the same market are distinct, got %d", len(unique))
	}
}

func TestAggregateMarketOrderInsensitive(t *testing.T) {
	ab := opp(TypeCrossMarket, 0.10, "a", "b")
	ba := opp(TypeCrossMarket, 0.09, "b", "a")

	unique := Aggregate([]*Opportunity{ab, ba})

	if len(unique) != 1 {
		t.Fatalf("market id order must not matter, got %d", len(unique))
	}
}

func TestAggregatePreservesOrder(t *testing.T) {
	opps := []*Opportunity{
		opp(TypeProbSum, 0.05, "m1"),
		opp(TypeCrossMarket, 0.20, "m2", "m3"),
		opp(TypeSpread, 0.03, "m4"),
	}

	unique := Aggregate(opps)

	if len(unique) != 3 {
		t.Fatalf("expected all 3 to survive, got %d", len(unique))
	}
	for i := range opps {
		if unique[i] != opps[i] {
			t.Errorf("position %d: order not preserved", i)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}
