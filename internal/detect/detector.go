package detect

import (
	"context"
	"time"

	"github.com/polyarb/arb-monitor/pkg/types"
	"go.uber.org/zap"
)

// PriceFeed provides the orderbook-level lookups needed by the spread rule.
// Implementations degrade to empty results on transport errors; the rule
// treats absence as "skip", never as a failure.
type PriceFeed interface {
	// FetchTokenIDs resolves the CLOB token ids for a market's outcomes.
	// May be empty: not every market carries a token mapping.
	FetchTokenIDs(ctx context.Context, market types.Market) []string

	// FetchSpreads batch-fetches bid-ask spreads. Callers pass at most
	// SpreadBatchSize token ids per call.
	FetchSpreads(ctx context.Context, tokenIDs []string) map[string]float64

	// FetchMidpoints batch-fetches midpoint prices.
	FetchMidpoints(ctx context.Context, tokenIDs []string) map[string]float64
}

// SpreadBatchSize is the maximum number of token ids per spread/midpoint
// request, matching the CLOB API batch limit.
const SpreadBatchSize = 100

// Config holds detector configuration.
type Config struct {
	ProbSumThreshold  float64
	SpreadThreshold   float64
	DedupeWindow      time.Duration
	MaxFlaggedMarkets int
	Logger            *zap.Logger
}

// Detector runs the arbitrage detection rules over market snapshots.
//
// Rules share no state except the flagged-markets set, which the
// probability-sum rule writes and the spread rule reads. The detector is
// driven by a single scan goroutine; it is not safe for concurrent Scan
// calls.
type Detector struct {
	cfg     Config
	feed    PriceFeed
	flagged *FlaggedSet
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a detector. feed may be nil, in which case the spread rule is
// skipped entirely (detection degrades to the two snapshot-only rules).
func New(cfg Config, feed PriceFeed) *Detector {
	if cfg.DedupeWindow <= 0 {
		cfg.DedupeWindow = 15 * time.Minute
	}

	return &Detector{
		cfg:     cfg,
		feed:    feed,
		flagged: NewFlaggedSet(cfg.MaxFlaggedMarkets),
		logger:  cfg.Logger,
		now:     time.Now,
	}
}

// Scan runs all detection rules over the given market snapshots and returns
// the aggregated, deduplicated opportunities. Rule order is fixed: ProbSum,
// CrossMarket, Spread. Re-running on identical input within the same dedupe
// window yields an identical result.
func (d *Detector) Scan(ctx context.Context, markets []types.Market) []*Opportunity {
	start := d.now()
	bucket := start.Truncate(d.cfg.DedupeWindow)

	d.logger.Debug("detection-starting", zap.Int("market-count", len(markets)))

	opportunities := d.detectProbSum(markets, bucket)
	opportunities = append(opportunities, d.detectCrossMarket(markets, bucket)...)
	opportunities = append(opportunities, d.detectSpread(ctx, bucket)...)

	unique := Aggregate(opportunities)

	for _, opp := range unique {
		OpportunityProfit.WithLabelValues(string(opp.Type)).Observe(opp.ProfitEstimate)
	}

	FlaggedMarkets.Set(float64(d.flagged.Len()))
	DetectionDurationSeconds.Observe(time.Since(start).Seconds())

	d.logger.Info("detection-complete",
		zap.Int("market-count", len(markets)),
		zap.Int("candidates", len(opportunities)),
		zap.Int("opportunities", len(unique)))

	return unique
}

// FlaggedMarkets returns the markets currently promoted to the spread check,
// in insertion order.
func (d *Detector) FlaggedMarkets() []types.Market {
	return d.flagged.Markets()
}

// ClearFlagged empties the flagged-markets set.
func (d *Detector) ClearFlagged() {
	d.flagged.Clear()
	FlaggedMarkets.Set(0)
}
