package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/polyarb/arb-monitor/internal/detect"
	"github.com/polyarb/arb-monitor/internal/gamma"
	"github.com/polyarb/arb-monitor/internal/notify"
	"github.com/polyarb/arb-monitor/internal/scanner"
	"github.com/polyarb/arb-monitor/pkg/cache"
	"github.com/polyarb/arb-monitor/pkg/config"
	"github.com/polyarb/arb-monitor/pkg/healthprobe"
	"github.com/polyarb/arb-monitor/pkg/httpserver"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	probe := healthprobe.New("arb-monitor")

	tokenCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	client := setupClient(cfg, logger, tokenCache)
	detector := setupDetector(cfg, logger, client)
	sink := notify.ForConfig(cfg, logger)
	scan := setupScanner(cfg, logger, client, detector, sink)
	httpServer := setupHTTPServer(cfg, logger, probe, scan)

	return &App{
		cfg:        cfg,
		logger:     logger,
		probe:      probe,
		httpServer: httpServer,
		cache:      tokenCache,
		client:     client,
		sink:       sink,
		scanner:    scan,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
}

func setupClient(cfg *config.Config, logger *zap.Logger, tokenCache cache.Cache) *gamma.Client {
	return gamma.NewClient(&gamma.Config{
		GammaURL: cfg.GammaURL,
		ClobURL:  cfg.ClobURL,
		Timeout:  cfg.RequestTimeout,
		Cache:    tokenCache,
		Logger:   logger,
	})
}

func setupDetector(cfg *config.Config, logger *zap.Logger, client *gamma.Client) *detect.Detector {
	return detect.New(detect.Config{
		ProbSumThreshold:  cfg.ProbSumThreshold,
		SpreadThreshold:   cfg.SpreadThreshold,
		DedupeWindow:      cfg.DedupeWindow,
		MaxFlaggedMarkets: cfg.MaxFlaggedMarkets,
		Logger:            logger,
	}, client)
}

func setupScanner(
	cfg *config.Config,
	logger *zap.Logger,
	client *gamma.Client,
	detector *detect.Detector,
	sink notify.Sink,
) *scanner.Scanner {
	return scanner.New(&scanner.Config{
		Source:       client,
		Detector:     detector,
		Sink:         sink,
		ScanInterval: cfg.ScanInterval,
		ErrorBackoff: cfg.ErrorBackoff,
		MaxMarkets:   cfg.MaxMarkets,
		MinVolume:    cfg.MinVolume,
		MinLiquidity: cfg.MinLiquidity,
		DedupeWindow: cfg.DedupeWindow,
		Logger:       logger,
	})
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	probe *healthprobe.Probe,
	scan *scanner.Scanner,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:           cfg.HTTPPort,
		Logger:         logger,
		Probe:          probe,
		StatusProvider: scan,
	})
}
