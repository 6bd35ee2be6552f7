package scanner

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/polyarb/arb-monitor/internal/detect"
	"github.com/polyarb/arb-monitor/internal/testutil"
	"github.com/polyarb/arb-monitor/pkg/types"
)

type fakeSource struct {
	markets []types.Market
	calls   int
}

func (f *fakeSource) FetchMarkets(_ context.Context, _, _ int, _ bool, _ float64) []types.Market {
	f.calls++
	return f.markets
}

type fakeDetector struct {
	opportunities []*detect.Opportunity
	scans         [][]types.Market
}

func (f *fakeDetector) Scan(_ context.Context, markets []types.Market) []*detect.Opportunity {
	f.scans = append(f.scans, markets)
	return f.opportunities
}

type fakeSink struct {
	delivered []*detect.Opportunity
	summaries []int
	fail      bool
}

func (f *fakeSink) Notify(_ context.Context, opp *detect.Opportunity) bool {
	if f.fail {
		return false
	}
	opp.MarkNotified()
	f.delivered = append(f.delivered, opp)
	return true
}

func (f *fakeSink) NotifySummary(_ context.Context, count int) bool {
	if f.fail {
		return false
	}
	f.summaries = append(f.summaries, count)
	return true
}

func (f *fakeSink) Name() string { return "fake" }

func newTestScanner(source *fakeSource, detector *fakeDetector, sink Notifier) *Scanner {
	logger, _ := zap.NewDevelopment()
	s := New(&Config{
		Source:       source,
		Detector:     detector,
		Sink:         sink,
		ScanInterval: 30 * time.Second,
		ErrorBackoff: 5 * time.Second,
		MaxMarkets:   500,
		MinVolume:    10000,
		MinLiquidity: 1000,
		DedupeWindow: 15 * time.Minute,
		Logger:       logger,
	})
	s.now = func() time.Time {
		return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func TestRunOnceNotifiesFreshOpportunities(t *testing.T) {
	source := &fakeSource{markets: []types.Market{
		testutil.BinaryMarket("m1", "Will it happen?", 0.55, 0.52),
	}}
	detector := &fakeDetector{opportunities: []*detect.Opportunity{
		testutil.Opportunity("prob_sum_0x1_100", 0.05),
		testutil.Opportunity("prob_sum_0x2_100", 0.05),
	}}
	sink := &fakeSink{}

	s := newTestScanner(source, detector, sink)
	result := s.RunOnce(context.Background())

	if result.Failed {
		t.Fatal("expected cycle to succeed")
	}
	if result.Notified != 2 {
		t.Errorf("expected 2 notifications, got %d", result.Notified)
	}
	if len(sink.delivered) != 2 {
		t.Errorf("expected sink to receive 2 opportunities, got %d", len(sink.delivered))
	}
	for _, opp := range sink.delivered {
		if !opp.Notified {
			t.Errorf("expected opportunity %s to be marked notified", opp.ID)
		}
	}
}

func TestRunOnceSendsSummaryForMultipleOpportunities(t *testing.T) {
	source := &fakeSource{markets: []types.Market{
		testutil.BinaryMarket("m1", "Will it happen?", 0.55, 0.52),
	}}
	detector := &fakeDetector{opportunities: []*detect.Opportunity{
		testutil.Opportunity("prob_sum_0x1_100", 0.05),
		testutil.Opportunity("prob_sum_0x2_100", 0.04),
		testutil.Opportunity("prob_sum_0x3_100", 0.03),
	}}
	sink := &fakeSink{}

	s := newTestScanner(source, detector, sink)
	s.RunOnce(context.Background())

	if len(sink.summaries) != 1 {
		t.Fatalf("expected 1 summary delivery, got %d", len(sink.summaries))
	}
	if sink.summaries[0] != 3 {
		t.Errorf("expected summary count 3, got %d", sink.summaries[0])
	}
}

func TestRunOnceSkipsSummaryForSingleOpportunity(t *testing.T) {
	source := &fakeSource{markets: []types.Market{
		testutil.BinaryMarket("m1", "Will it happen?", 0.55, 0.52),
	}}
	detector := &fakeDetector{opportunities: []*detect.Opportunity{
		testutil.Opportunity("prob_sum_0x1_100", 0.05),
	}}
	sink := &fakeSink{}

	s := newTestScanner(source, detector, sink)
	s.RunOnce(context.Background())

	if len(sink.summaries) != 0 {
		t.Errorf("expected no summary for a single opportunity, got %v", sink.summaries)
	}
}

func TestRunOnceSuppressesSeenOpportunities(t *testing.T) {
	source := &fakeSource{markets: []types.Market{
		testutil.BinaryMarket("m1", "Will it happen?", 0.55, 0.52),
	}}
	detector := &fakeDetector{opportunities: []*detect.Opportunity{
		testutil.Opportunity("prob_sum_0x1_100", 0.05),
	}}
	sink := &fakeSink{}

	s := newTestScanner(source, detector, sink)

	first := s.RunOnce(context.Background())
	if len(first.Opportunities) != 1 {
		t.Fatalf("expected 1 fresh opportunity in first cycle, got %d", len(first.Opportunities))
	}

	second := s.RunOnce(context.Background())
	if len(second.Opportunities) != 0 {
		t.Errorf("expected 0 fresh opportunities in second cycle, got %d", len(second.Opportunities))
	}
	if len(sink.delivered) != 1 {
		t.Errorf("expected exactly 1 delivery across both cycles, got %d", len(sink.delivered))
	}
}

func TestSeenSetEvictsStaleEntries(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{markets: []types.Market{
		testutil.BinaryMarket("m1", "Will it happen?", 0.55, 0.52),
	}}
	detector := &fakeDetector{opportunities: []*detect.Opportunity{
		testutil.Opportunity("prob_sum_0x1_100", 0.05),
	}}
	sink := &fakeSink{}

	s := newTestScanner(source, detector, sink)
	s.now = func() time.Time { return t0 }
	s.RunOnce(context.Background())

	if len(s.seen) != 1 {
		t.Fatalf("expected 1 seen entry, got %d", len(s.seen))
	}

	// Two dedupe windows later the old entry is stale; the same id would
	// be delivered again.
	s.now = func() time.Time { return t0.Add(31 * time.Minute) }
	result := s.RunOnce(context.Background())

	if len(result.Opportunities) != 1 {
		t.Errorf("expected stale id to be re-delivered, got %d fresh", len(result.Opportunities))
	}
	if len(s.seen) != 1 {
		t.Errorf("expected stale entry evicted, seen set has %d entries", len(s.seen))
	}
}

func TestRunOnceFailedFetch(t *testing.T) {
	source := &fakeSource{} // no markets
	detector := &fakeDetector{}
	sink := &fakeSink{}

	s := newTestScanner(source, detector, sink)
	result := s.RunOnce(context.Background())

	if !result.Failed {
		t.Error("expected cycle to be marked failed")
	}
	if len(detector.scans) != 0 {
		t.Error("expected detector not to run on a failed fetch")
	}

	stats := s.Stats()
	if stats.Errors != 1 {
		t.Errorf("expected 1 error, got %d", stats.Errors)
	}
	if stats.Scans != 0 {
		t.Errorf("expected 0 completed scans, got %d", stats.Scans)
	}
}

func TestRunOnceAppliesLiquidityFloor(t *testing.T) {
	thin := testutil.BinaryMarket("thin", "Will it happen?", 0.5, 0.5)
	thin.Liquidity = 100

	source := &fakeSource{markets: []types.Market{
		testutil.BinaryMarket("liquid", "Will it happen?", 0.5, 0.5),
		thin,
	}}
	detector := &fakeDetector{}
	sink := &fakeSink{}

	s := newTestScanner(source, detector, sink)
	s.RunOnce(context.Background())

	if len(detector.scans) != 1 {
		t.Fatalf("expected 1 detector scan, got %d", len(detector.scans))
	}
	got := detector.scans[0]
	if len(got) != 1 || got[0].ID != "liquid" {
		t.Errorf("expected only the liquid market to reach detection, got %v", got)
	}
}

func TestRunOnceNilSink(t *testing.T) {
	source := &fakeSource{markets: []types.Market{
		testutil.BinaryMarket("m1", "Will it happen?", 0.55, 0.52),
	}}
	detector := &fakeDetector{opportunities: []*detect.Opportunity{
		testutil.Opportunity("prob_sum_0x1_100", 0.05),
	}}

	s := newTestScanner(source, detector, nil)
	result := s.RunOnce(context.Background())

	if result.Failed {
		t.Error("expected cycle to succeed without a sink")
	}
	if result.Notified != 0 {
		t.Errorf("expected 0 notifications without a sink, got %d", result.Notified)
	}
	if len(result.Opportunities) != 1 {
		t.Errorf("expected opportunity still counted as fresh, got %d", len(result.Opportunities))
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	source := &fakeSource{markets: []types.Market{
		testutil.BinaryMarket("m1", "Will it happen?", 0.55, 0.52),
	}}
	detector := &fakeDetector{}
	sink := &fakeSink{}

	s := newTestScanner(source, detector, sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	// The in-flight cycle still completed before the loop observed the
	// cancellation.
	if source.calls != 1 {
		t.Errorf("expected exactly 1 fetch before stopping, got %d", source.calls)
	}
	if s.Stats().Phase != PhaseStopped {
		t.Errorf("expected phase %s, got %s", PhaseStopped, s.Stats().Phase)
	}
}

func TestStatsAccumulate(t *testing.T) {
	source := &fakeSource{markets: []types.Market{
		testutil.BinaryMarket("m1", "Will it happen?", 0.55, 0.52),
	}}
	detector := &fakeDetector{opportunities: []*detect.Opportunity{
		testutil.Opportunity("prob_sum_0x1_100", 0.05),
	}}
	sink := &fakeSink{}

	s := newTestScanner(source, detector, sink)
	s.RunOnce(context.Background())
	s.RunOnce(context.Background())

	stats := s.Stats()
	if stats.Scans != 2 {
		t.Errorf("expected 2 scans, got %d", stats.Scans)
	}
	if stats.Opportunities != 1 {
		t.Errorf("expected 1 cumulative opportunity, got %d", stats.Opportunities)
	}
	if stats.Notifications != 1 {
		t.Errorf("expected 1 cumulative notification, got %d", stats.Notifications)
	}
	if stats.LastCycleID == "" {
		t.Error("expected last cycle id to be recorded")
	}
}
