// Package scanner drives the periodic scan loop: fetch active markets, run
// the detection rules, filter out opportunities already delivered in the
// current dedupe window, and push the rest to the notification sink.
package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polyarb/arb-monitor/internal/detect"
	"github.com/polyarb/arb-monitor/pkg/types"
)

// Phase is the scanner's current position in the scan cycle.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseFetching  Phase = "fetching"
	PhaseDetecting Phase = "detecting"
	PhaseNotifying Phase = "notifying"
	PhaseSleeping  Phase = "sleeping"
	PhaseStopped   Phase = "stopped"
)

// statsLogEvery controls how often the cumulative stats line is emitted.
const statsLogEvery = 10

// MarketSource supplies active markets for a scan cycle.
type MarketSource interface {
	FetchMarkets(ctx context.Context, limit, offset int, activeOnly bool, minVolume float64) []types.Market
}

// OpportunityDetector runs the detection rules over a market snapshot.
type OpportunityDetector interface {
	Scan(ctx context.Context, markets []types.Market) []*detect.Opportunity
}

// Notifier delivers opportunities. Notify reports whether delivery
// succeeded; NotifySummary delivers the cycle roll-up when a scan finds
// more than one opportunity.
type Notifier interface {
	Notify(ctx context.Context, opp *detect.Opportunity) bool
	NotifySummary(ctx context.Context, count int) bool
	Name() string
}

// Config holds scanner configuration.
type Config struct {
	Source       MarketSource
	Detector     OpportunityDetector
	Sink         Notifier
	ScanInterval time.Duration
	ErrorBackoff time.Duration
	MaxMarkets   int
	MinVolume    float64
	MinLiquidity float64
	DedupeWindow time.Duration
	Logger       *zap.Logger
}

// Stats is a snapshot of the scanner's cumulative counters.
type Stats struct {
	Scans           int64     `json:"scans"`
	Opportunities   int64     `json:"opportunities"`
	Notifications   int64     `json:"notifications"`
	Errors          int64     `json:"errors"`
	Phase           Phase     `json:"phase"`
	LastCycleAt     time.Time `json:"last_cycle_at"`
	LastCycleID     string    `json:"last_cycle_id"`
	LastMarkets     int       `json:"last_markets"`
	LastNew         int       `json:"last_new_opportunities"`
	SeenSetSize     int       `json:"seen_set_size"`
	StartedAt       time.Time `json:"started_at"`
}

// CycleResult summarizes one scan cycle.
type CycleResult struct {
	CycleID       string
	Markets       int
	Opportunities []*detect.Opportunity
	Notified      int
	Failed        bool
	Duration      time.Duration
}

// Scanner runs scan cycles, one at a time.
type Scanner struct {
	source       MarketSource
	detector     OpportunityDetector
	sink         Notifier
	scanInterval time.Duration
	errorBackoff time.Duration
	maxMarkets   int
	minVolume    float64
	minLiquidity float64
	dedupeWindow time.Duration
	logger       *zap.Logger

	mu    sync.RWMutex
	phase Phase
	seen  map[string]time.Time // opportunity id -> bucket the id was minted in
	stats Stats

	now func() time.Time
}

// New creates a scanner.
func New(cfg *Config) *Scanner {
	return &Scanner{
		source:       cfg.Source,
		detector:     cfg.Detector,
		sink:         cfg.Sink,
		scanInterval: cfg.ScanInterval,
		errorBackoff: cfg.ErrorBackoff,
		maxMarkets:   cfg.MaxMarkets,
		minVolume:    cfg.MinVolume,
		minLiquidity: cfg.MinLiquidity,
		dedupeWindow: cfg.DedupeWindow,
		logger:       cfg.Logger,
		phase:        PhaseIdle,
		seen:         make(map[string]time.Time),
		now:          time.Now,
	}
}

// Run executes scan cycles until the context is cancelled. A failed cycle
// sleeps for the error backoff instead of the full scan interval; the loop
// itself never returns on a bad cycle.
func (s *Scanner) Run(ctx context.Context) error {
	s.logger.Info("scanner-starting",
		zap.Duration("scan-interval", s.scanInterval),
		zap.Duration("error-backoff", s.errorBackoff),
		zap.Int("max-markets", s.maxMarkets),
		zap.Float64("min-volume", s.minVolume))

	s.mu.Lock()
	s.stats.StartedAt = s.now()
	s.mu.Unlock()

	for {
		result := s.RunOnce(ctx)

		wait := s.scanInterval
		if result.Failed {
			wait = s.errorBackoff
		}

		s.setPhase(PhaseSleeping)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.setPhase(PhaseStopped)
			s.logger.Info("scanner-stopping")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RunOnce executes a single scan cycle: fetch, detect, notify.
func (s *Scanner) RunOnce(ctx context.Context) CycleResult {
	cycleID := uuid.New().String()
	log := s.logger.With(zap.String("cycle-id", cycleID))
	start := s.now()

	result := CycleResult{CycleID: cycleID}
	defer func() {
		ScanDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	s.setPhase(PhaseFetching)
	markets := s.fetchMarkets(ctx)
	result.Markets = len(markets)

	if len(markets) == 0 {
		// A transport failure and a genuinely empty universe are
		// indistinguishable here; both are a no-op cycle, not a clean
		// empty scan.
		result.Failed = true
		ScanErrorsTotal.Inc()
		s.recordCycle(cycleID, result, start)
		log.Warn("scan-cycle-no-markets",
			zap.Duration("duration", time.Since(start)))
		return result
	}

	s.setPhase(PhaseDetecting)
	opportunities := s.detector.Scan(ctx, markets)
	fresh := s.filterSeen(opportunities, start)
	result.Opportunities = fresh

	s.setPhase(PhaseNotifying)
	for _, opp := range fresh {
		NewOpportunitiesTotal.WithLabelValues(string(opp.Type)).Inc()
		if s.sink == nil {
			continue
		}
		if s.sink.Notify(ctx, opp) {
			result.Notified++
			NotificationsSentTotal.Inc()
		} else {
			NotificationErrorsTotal.Inc()
			log.Warn("notification-failed",
				zap.String("opportunity-id", opp.ID),
				zap.String("sink", s.sink.Name()))
		}
	}

	if s.sink != nil && len(fresh) > 1 {
		s.sink.NotifySummary(ctx, len(fresh))
	}

	result.Duration = time.Since(start)
	ScansTotal.Inc()
	stats := s.recordCycle(cycleID, result, start)

	log.Info("scan-cycle-complete",
		zap.Int("markets", result.Markets),
		zap.Int("opportunities", len(opportunities)),
		zap.Int("new-opportunities", len(fresh)),
		zap.Int("notified", result.Notified),
		zap.Duration("duration", result.Duration))

	if stats.Scans > 0 && stats.Scans%statsLogEvery == 0 {
		log.Info("scanner-stats",
			zap.Int64("scans", stats.Scans),
			zap.Int64("opportunities", stats.Opportunities),
			zap.Int64("notifications", stats.Notifications),
			zap.Int64("errors", stats.Errors),
			zap.Int("seen-set-size", stats.SeenSetSize))
	}

	return result
}

// fetchMarkets pulls the market snapshot for this cycle and applies the
// liquidity floor. The source already applies the volume floor and the
// market cap.
func (s *Scanner) fetchMarkets(ctx context.Context) []types.Market {
	markets := s.source.FetchMarkets(ctx, s.maxMarkets, 0, true, s.minVolume)
	if s.minLiquidity <= 0 {
		return markets
	}

	filtered := markets[:0]
	for _, m := range markets {
		if m.Liquidity >= s.minLiquidity {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// filterSeen returns the opportunities whose ids have not been delivered in
// the current dedupe window, records the fresh ones, and evicts entries two
// or more windows old.
func (s *Scanner) filterSeen(opportunities []*detect.Opportunity, now time.Time) []*detect.Opportunity {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-2 * s.dedupeWindow)
	for id, bucket := range s.seen {
		if bucket.Before(cutoff) {
			delete(s.seen, id)
		}
	}

	var fresh []*detect.Opportunity
	for _, opp := range opportunities {
		if _, ok := s.seen[opp.ID]; ok {
			DuplicateOpportunitiesTotal.Inc()
			continue
		}
		s.seen[opp.ID] = opp.DetectedAt.Truncate(s.dedupeWindow)
		fresh = append(fresh, opp)
	}

	SeenSetSize.Set(float64(len(s.seen)))
	return fresh
}

// recordCycle updates cumulative counters and returns the new snapshot.
func (s *Scanner) recordCycle(cycleID string, result CycleResult, start time.Time) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if result.Failed {
		s.stats.Errors++
	} else {
		s.stats.Scans++
		s.stats.Opportunities += int64(len(result.Opportunities))
		s.stats.Notifications += int64(result.Notified)
	}
	s.stats.LastCycleAt = start
	s.stats.LastCycleID = cycleID
	s.stats.LastMarkets = result.Markets
	s.stats.LastNew = len(result.Opportunities)
	s.stats.SeenSetSize = len(s.seen)
	return s.stats
}

// Stats returns a snapshot of the scanner's counters.
func (s *Scanner) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := s.stats
	stats.Phase = s.phase
	stats.SeenSetSize = len(s.seen)
	return stats
}

func (s *Scanner) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}
