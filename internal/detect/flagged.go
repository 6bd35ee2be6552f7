package detect

import "github.com/polyarb/arb-monitor/pkg/types"

// FlaggedSet holds markets promoted from the cheap probability-sum scan to
// the expensive orderbook-level spread check. Entries persist across scan
// cycles until explicitly cleared, but the set is bounded: once full, the
// oldest insertion is evicted to make room.
//
// The set is owned by the single scan goroutine; it is not safe for
// concurrent use.
type FlaggedSet struct {
	max   int
	order []string
	byID  map[string]types.Market
}

// NewFlaggedSet creates a flagged-markets set bounded to max entries.
func NewFlaggedSet(max int) *FlaggedSet {
	if max <= 0 {
		max = 256
	}
	return &FlaggedSet{
		max:  max,
		byID: make(map[string]types.Market),
	}
}

// Add inserts a market keyed by its id. Idempotent: re-adding an existing
// market refreshes the snapshot but keeps its insertion position.
func (f *FlaggedSet) Add(m types.Market) {
	if _, exists := f.byID[m.ID]; exists {
		f.byID[m.ID] = m
		return
	}

	if len(f.order) >= f.max {
		oldest := f.order[0]
		f.order = f.order[1:]
		delete(f.byID, oldest)
	}

	f.order = append(f.order, m.ID)
	f.byID[m.ID] = m
}

// Markets returns the flagged markets in insertion order.
func (f *FlaggedSet) Markets() []types.Market {
	markets := make([]types.Market, 0, len(f.order))
	for _, id := range f.order {
		markets = append(markets, f.byID[id])
	}
	return markets
}

// Len returns the number of flagged markets.
func (f *FlaggedSet) Len() int {
	return len(f.order)
}

// Clear empties the set. This is the external step that stops flagged
// markets from being re-checked every cycle.
func (f *FlaggedSet) Clear() {
	f.order = f.order[:0]
	f.byID = make(map[string]types.Market)
}
